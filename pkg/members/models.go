// Package members provides member management and authentication for librakeep.
package members

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role represents the access level of a member
type Role string

const (
	RoleAdmin  Role = "ADMIN"  // Librarian: full catalog and member management
	RoleMember Role = "MEMBER" // Regular member: borrow and return books
)

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleMember:
		return true
	default:
		return false
	}
}

// Member represents a library member
type Member struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Role      Role      `gorm:"not null;default:'MEMBER'" json:"role"`
	Password  string    `gorm:"not null" json:"-"` // bcrypt hash, never returned in JSON
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// BeforeCreate hook for Member model
func (m *Member) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}
