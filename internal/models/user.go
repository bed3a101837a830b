package models

import (
	"strings"
	"time"
)

// User is an account belonging to an invited guest or an administrator.
// Emails are matched exactly (case-sensitive) and never rewritten.
type User struct {
	BaseModel

	Email     string `gorm:"uniqueIndex;not null" json:"email"`
	FirstName string `gorm:"not null" json:"first_name"`
	LastName  string `gorm:"not null" json:"last_name"`

	// PasswordHash is only ever written through pkg/crypto.HashPassword.
	PasswordHash string `gorm:"not null" json:"-"`

	Admin bool `gorm:"default:false" json:"admin"`

	Verified         bool       `gorm:"default:false" json:"verified"`
	VerificationCode *string    `json:"-"`
	VerifiedOn       *time.Time `json:"verified_on"`

	// At most one recovery code is outstanding; issuing a new one replaces
	// the previous value and invalidates it.
	RecoveryCode        *string    `json:"-"`
	RecoveryGeneratedOn *time.Time `json:"-"`

	GroupID *string          `gorm:"type:uuid" json:"group_id"`
	Group   *InvitationGroup `gorm:"foreignKey:GroupID" json:"group,omitempty"`
}

// FullName joins the user's names for display and token claims.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
