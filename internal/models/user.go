package models

import "time"

// Account roles. The role names travel inside JWT claims and must stay stable.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// Account statuses. Accounts are never hard-deleted; "delete" flips the
// status to inactive.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// User represents a login-capable account with a role and status.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Role      string    `gorm:"size:32;not null;default:user" json:"role"`
	Status    string    `gorm:"size:16;not null;default:active;index" json:"status"`
	Avatar    string    `gorm:"size:255" json:"avatar,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAdmin reports whether the role grants admin-level access.
func IsAdmin(role string) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}
