package services

import (
	"github.com/bugnest/backend/internal/models"
	"gorm.io/gorm"
)

// AccessLevel is the result of reconciling a user's global role with their
// project-scoped membership. It is the single authorization primitive both
// the membership and bug engines consult; no other code inspects roles for
// project access decisions.
type AccessLevel int

const (
	AccessNone AccessLevel = iota
	AccessMember
	AccessOwner
	AccessAdmin
)

// Access describes what an actor may do within one project.
type Access struct {
	Level      AccessLevel
	Membership *models.ProjectMember // nil for AccessNone, may be nil for AccessAdmin
}

// CanManageMembers reports whether the actor may invite or remove members.
func (a Access) CanManageMembers() bool {
	return a.Level == AccessAdmin || a.Level == AccessOwner
}

// IsAcceptedMember reports whether the actor participates in the project,
// either as a platform admin or through an accepted membership.
func (a Access) IsAcceptedMember() bool {
	return a.Level != AccessNone
}

// ResolveAccess reports the actor's standing in a project. It is a pure
// query: a missing membership row yields AccessNone rather than an error,
// and callers decide whether that is fatal.
func ResolveAccess(db *gorm.DB, projectID uint, actor *models.User) Access {
	if actor.Role == models.RoleAdmin {
		return Access{Level: AccessAdmin}
	}

	var member models.ProjectMember
	err := db.Where("project_id = ? AND user_id = ?", projectID, actor.ID).
		First(&member).Error
	if err != nil {
		return Access{Level: AccessNone}
	}

	if member.Status != models.MemberStatusAccepted {
		return Access{Level: AccessNone}
	}
	if member.IsOwner {
		return Access{Level: AccessOwner, Membership: &member}
	}
	return Access{Level: AccessMember, Membership: &member}
}
