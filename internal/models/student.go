package models

import "time"

// Student is an enrollment record managed by admins. Courses and Documents are
// stored as comma-joined strings; documents accumulate across edits while the
// photo is replaced outright.
type Student struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	FatherName    string    `gorm:"size:255;not null" json:"father_name"`
	Qualification string    `gorm:"size:255;not null" json:"qualification"`
	Gender        string    `gorm:"size:16;not null" json:"gender"`
	Courses       string    `gorm:"type:text;not null" json:"courses"`
	MobileNo      string    `gorm:"size:20;not null" json:"mobile_no"`
	Address       string    `gorm:"type:text;not null" json:"address"`
	Photo         string    `gorm:"size:255" json:"photo,omitempty"`
	Documents     string    `gorm:"type:text" json:"documents,omitempty"`
	TotalAmount   float64   `gorm:"not null;default:0" json:"total_amount"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
