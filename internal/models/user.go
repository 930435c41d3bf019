package models

import (
	"time"

	"gorm.io/gorm"
)

// Global roles. The global role gates platform-wide permissions and the bug
// status transitions a user may perform; it is distinct from the
// project-scoped role stored on ProjectMember.
const (
	RoleAdmin     = "ADMIN"
	RoleManager   = "MANAGER"
	RoleDeveloper = "DEVELOPER"
	RoleTester    = "TESTER"
)

const (
	UserStatusActive   = "ACTIVE"
	UserStatusInactive = "INACTIVE"
)

// User represents a platform account.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	Email     string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string         `gorm:"size:255" json:"-"` // bcrypt hash, empty for LDAP users
	Role      string         `gorm:"size:50;default:DEVELOPER" json:"role"`
	Status    string         `gorm:"size:20;default:ACTIVE" json:"status"`
	AuthType  string         `gorm:"size:20;default:local" json:"auth_type"` // local, ldap
	LastLogin *time.Time     `json:"last_login"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

// ValidRole reports whether r is one of the defined global roles.
func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleManager, RoleDeveloper, RoleTester:
		return true
	}
	return false
}
