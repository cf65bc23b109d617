package dto

import (
	"time"

	"github.com/kavyadav/adminhub-api/internal/models"
)

// ActivityLogResponse serializes an audit entry.
type ActivityLogResponse struct {
	ID          uint                   `json:"id"`
	ActorID     uint                   `json:"actor_id"`
	ActorName   string                 `json:"actor_name"`
	ActorRole   string                 `json:"actor_role"`
	Action      string                 `json:"action"`
	Module      string                 `json:"module"`
	Description string                 `json:"description"`
	IPAddress   string                 `json:"ip_address"`
	UserAgent   string                 `json:"user_agent"`
	Details     map[string]interface{} `json:"details,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

// NewActivityLogResponse maps an audit entry model to its response shape.
func NewActivityLogResponse(entry models.ActivityLog) ActivityLogResponse {
	return ActivityLogResponse{
		ID:          entry.ID,
		ActorID:     entry.ActorID,
		ActorName:   entry.ActorName,
		ActorRole:   entry.ActorRole,
		Action:      entry.Action,
		Module:      entry.Module,
		Description: entry.Description,
		IPAddress:   entry.IPAddress,
		UserAgent:   entry.UserAgent,
		Details:     entry.Details,
		CreatedAt:   entry.CreatedAt,
	}
}

// NewActivityLogResponses maps a slice of audit entries.
func NewActivityLogResponses(entries []models.ActivityLog) []ActivityLogResponse {
	out := make([]ActivityLogResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, NewActivityLogResponse(entry))
	}
	return out
}
