package models

import "time"

// Settings is the global application singleton. The first read creates it
// lazily with defaults; afterwards it is only updated in place.
type Settings struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AppName      string    `gorm:"size:255;not null" json:"app_name"`
	SupportEmail string    `gorm:"size:255;not null" json:"support_email"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
