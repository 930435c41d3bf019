package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	BugPriorityLow     = "LOW"
	BugPriorityMedium  = "MEDIUM"
	BugPriorityHigh    = "HIGH"
	BugPriorityHighest = "HIGHEST"
)

const (
	BugStatusOpen       = "OPEN"
	BugStatusInProgress = "IN_PROGRESS"
	BugStatusReview     = "REVIEW"
	BugStatusTesting    = "TESTING"
	BugStatusClosed     = "CLOSED"
)

// Bug is a defect report. BugID is the human-readable ticket code
// ("ALP-3"); the numeric suffix is allocated per project and never reused,
// with the unique index as the backstop against concurrent allocation.
type Bug struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	BugID       string         `gorm:"uniqueIndex;size:40;not null" json:"bug_id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Priority    string         `gorm:"size:20;not null" json:"priority"`
	Status      string         `gorm:"size:20;not null" json:"status"`
	ProjectID   uint           `gorm:"index;not null" json:"project_id"`
	Project     *Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	CreatorID   uint           `gorm:"not null" json:"creator_id"`
	Creator     *User          `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	AssigneeID  *uint          `json:"assignee_id"`
	Assignee    *User          `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Bug) TableName() string { return "bugs" }

// ValidBugPriority reports whether p is a defined priority.
func ValidBugPriority(p string) bool {
	switch p {
	case BugPriorityLow, BugPriorityMedium, BugPriorityHigh, BugPriorityHighest:
		return true
	}
	return false
}

// ValidBugStatus reports whether s is a defined status.
func ValidBugStatus(s string) bool {
	switch s {
	case BugStatusOpen, BugStatusInProgress, BugStatusReview, BugStatusTesting, BugStatusClosed:
		return true
	}
	return false
}
