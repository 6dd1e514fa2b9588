package model

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// AccountState is the lifecycle state of a user account. Deletion is always a transition to
// AccountDeactivated; records are never removed.
type AccountState int

const (
	AccountActive AccountState = iota
	AccountDeactivated
)

func (s AccountState) String() string {
	if s == AccountActive {
		return "active"
	}
	return "deactivated"
}

var ErrAccountActive = errors.New("account is already active")

// User represents an identity record
type User struct {
	ID           string    `gorm:"type:char(24);primaryKey" json:"id"`
	FirstName    string    `gorm:"type:varchar(100);not null" json:"firstName"`
	LastName     string    `gorm:"type:varchar(100);not null" json:"lastName"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"` // never serialized
	RoleID       string    `gorm:"type:char(24);not null;index" json:"roleId"`
	Role         *Role     `gorm:"foreignKey:RoleID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"role,omitempty"`
	IsActive     bool      `gorm:"not null;index" json:"isActive"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = NewID()
	}
	return nil
}

func (u *User) State() AccountState {
	if u.IsActive {
		return AccountActive
	}
	return AccountDeactivated
}

// Deactivate is the soft delete transition.
func (u *User) Deactivate() {
	u.IsActive = false
}

// Reactivation carries the fields overwritten when a deactivated account is reclaimed.
type Reactivation struct {
	FirstName    string
	LastName     string
	PasswordHash string
	Role         *Role
}

// Reactivate reclaims a deactivated account in place. The id and email are kept.
func (u *User) Reactivate(r Reactivation) error {
	if u.State() == AccountActive {
		return ErrAccountActive
	}
	u.FirstName = r.FirstName
	u.LastName = r.LastName
	u.PasswordHash = r.PasswordHash
	u.RoleID = r.Role.ID
	u.Role = r.Role
	u.IsActive = true
	return nil
}

// RoleName returns the populated role name or "" when the role was not loaded.
func (u *User) RoleName() string {
	if u.Role == nil {
		return ""
	}
	return u.Role.RoleName
}

// NormalizeEmail trims and lower-cases an address before storage or lookup.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
