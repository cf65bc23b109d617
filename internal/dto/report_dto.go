package dto

import "github.com/kavyadav/adminhub-api/internal/repository"

// UserTotals summarizes account counts by status.
type UserTotals struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
}

// ReportStatsResponse aggregates system-wide activity for the reporting view.
// Window aggregates cover the trailing 30 days.
type ReportStatsResponse struct {
	Users         UserTotals                `json:"users"`
	ActivityCount int64                     `json:"activity_count"`
	ByAction      []repository.ActionCount  `json:"by_action"`
	ByModule      []repository.ModuleCount  `json:"by_module"`
	TopActors     []repository.ActorCount   `json:"top_actors"`
}

// UserReportResponse is the per-account activity report.
type UserReportResponse struct {
	User       UserResponse             `json:"user"`
	Activities []ActivityLogResponse    `json:"activities"`
	ByAction   []repository.ActionCount `json:"by_action"`
}
