package models

import (
	"time"

	"gorm.io/datatypes"
)

// Activity actions. The enum mirrors what the frontend filters on.
const (
	ActionLogin  = "LOGIN"
	ActionLogout = "LOGOUT"
	ActionCreate = "CREATE"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
	ActionView   = "VIEW"
	ActionOther  = "OTHER"
)

// ActivityLog is an immutable audit record. Rows are append-only: nothing in
// the application mutates or deletes them. Actor name and role are snapshotted
// at write time so entries survive later account edits.
type ActivityLog struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	ActorID     uint              `gorm:"index;not null" json:"actor_id"`
	ActorName   string            `gorm:"size:255" json:"actor_name"`
	ActorRole   string            `gorm:"size:32" json:"actor_role"`
	Action      string            `gorm:"size:16;index;not null" json:"action"`
	Module      string            `gorm:"size:64;index" json:"module"`
	Description string            `gorm:"type:text" json:"description"`
	IPAddress   string            `gorm:"size:64" json:"ip_address"`
	UserAgent   string            `gorm:"size:512" json:"user_agent"`
	Details     datatypes.JSONMap `gorm:"type:json" json:"details,omitempty"`
	CreatedAt   time.Time         `gorm:"index" json:"created_at"`
}
