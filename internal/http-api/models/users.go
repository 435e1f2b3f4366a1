package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the access level of an account.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

func (r Role) IsAdmin() bool     { return r == RoleAdmin }
func (r Role) IsModerator() bool { return r == RoleModerator }

type User struct {
	ID               string    `gorm:"primaryKey;type:uuid" json:"id"`
	Username         string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email            string    `gorm:"size:254;uniqueIndex;not null" json:"email"`
	FirstName        string    `gorm:"size:150" json:"first_name"`
	LastName         string    `gorm:"size:150" json:"last_name"`
	Bio              string    `gorm:"type:text" json:"bio"`
	Role             Role      `gorm:"size:20;default:'user';not null" json:"role"`
	IsSuperuser      bool      `gorm:"default:false;not null" json:"-"`
	ConfirmationCode string    `gorm:"size:255" json:"-"` // bcrypt hash, empty when no code is outstanding
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// BeforeCreate hook to set UUID and default role before creating a User
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = RoleUser
	}
	return
}

func (User) TableName() string {
	return "users"
}

// IsAdmin is true for the admin role and for superuser accounts.
func (user *User) IsAdmin() bool {
	return user.Role.IsAdmin() || user.IsSuperuser
}

func (user *User) IsModerator() bool {
	return user.Role.IsModerator()
}
