package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ProjectStatusActive   = "ACTIVE"
	ProjectStatusArchived = "ARCHIVED"
)

// Project is an organization-of-one that members are invited into and bugs
// are raised against. Key is the uppercase prefix embedded in bug IDs
// ("BNF" -> "BNF-1"); it must not change once bugs exist.
type Project struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:200;not null" json:"name"`
	Key         string         `gorm:"column:project_key;uniqueIndex;size:20;not null" json:"project_key"`
	Description string         `gorm:"type:text" json:"description"`
	Status      string         `gorm:"size:20;default:ACTIVE" json:"status"`
	CreatorID   uint           `gorm:"not null" json:"creator_id"`
	Creator     *User          `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Project) TableName() string { return "projects" }
