package dto

import (
	"time"

	"github.com/kavyadav/adminhub-api/internal/models"
)

// SettingsResponse serializes the application settings singleton.
type SettingsResponse struct {
	ID           uint      `json:"id"`
	AppName      string    `json:"app_name"`
	SupportEmail string    `json:"support_email"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewSettingsResponse maps the settings model to its response shape.
func NewSettingsResponse(settings models.Settings) SettingsResponse {
	return SettingsResponse{
		ID:           settings.ID,
		AppName:      settings.AppName,
		SupportEmail: settings.SupportEmail,
		UpdatedAt:    settings.UpdatedAt,
	}
}

// UpdateSettingsRequest captures settings changes.
type UpdateSettingsRequest struct {
	AppName      *string `json:"app_name" validate:"omitempty,min=1,max=255"`
	SupportEmail *string `json:"support_email" validate:"omitempty,email"`
}
