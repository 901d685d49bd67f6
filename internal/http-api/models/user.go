package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// Roles lists every assignable role.
var Roles = []string{RoleUser, RoleModerator, RoleAdmin}

type User struct {
	ID           string     `gorm:"primaryKey;type:uuid" json:"id"`
	Email        string     `gorm:"uniqueIndex;size:254;not null" json:"email"`
	Username     *string    `gorm:"uniqueIndex;size:20" json:"username"`
	FirstName    string     `gorm:"size:150;not null" json:"first_name"`
	LastName     string     `gorm:"size:150;not null" json:"last_name"`
	Bio          string     `gorm:"size:500;not null" json:"bio"`
	Role         string     `gorm:"size:10;not null;check:role IN ('user','moderator','admin')" json:"role"`
	IsActive     bool       `gorm:"not null" json:"is_active"`
	IsStaff      bool       `gorm:"not null" json:"is_staff"`
	IsSuperuser  bool       `gorm:"not null" json:"is_superuser"`
	PasswordHash *string    `gorm:"column:password_hash" json:"-"`
	DateJoined   time.Time  `gorm:"autoCreateTime;index" json:"date_joined"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// BeforeCreate hook to set UUID before creating a User
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = RoleUser
	}
	return
}

// DisplayName is what reviews and comments show as their author.
func (user *User) DisplayName() string {
	if user.Username != nil && *user.Username != "" {
		return *user.Username
	}
	return user.Email
}

func (User) TableName() string {
	return "users"
}
