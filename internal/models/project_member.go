package models

import (
	"time"
)

// Membership lifecycle.
const (
	MemberStatusPending  = "PENDING"
	MemberStatusAccepted = "ACCEPTED"
	MemberStatusRejected = "REJECTED"
)

// ProjectMember records a user's (or pending invitee's) relationship to a
// project. The target is either a resolved user (UserID set) or a bare
// invited email (UserID nil until the invite is accepted). The unique
// indexes are the backstop against concurrent duplicate invites.
//
// Exactly one row per project carries IsOwner; it is written at project
// creation and never granted by invite.
type ProjectMember struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	ProjectID    uint       `gorm:"uniqueIndex:idx_project_user;uniqueIndex:idx_project_email;not null" json:"project_id"`
	Project      *Project   `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	UserID       *uint      `gorm:"uniqueIndex:idx_project_user" json:"user_id"`
	User         *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	InvitedEmail string     `gorm:"uniqueIndex:idx_project_email;size:255" json:"invited_email"`
	Role         string     `gorm:"size:50;not null" json:"role"` // project-scoped role
	Status       string     `gorm:"size:20;not null" json:"status"`
	IsOwner      bool       `gorm:"default:false" json:"is_owner"`
	InvitedByID  *uint      `json:"invited_by_id"`
	InvitedBy    *User      `gorm:"foreignKey:InvitedByID" json:"invited_by,omitempty"`
	InvitedAt    *time.Time `json:"invited_at"`
	Message      string     `gorm:"size:500" json:"message"`
	JoinedAt     *time.Time `json:"joined_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (ProjectMember) TableName() string { return "project_members" }
