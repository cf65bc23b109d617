package dto

// StatCard is a named dashboard figure with a change hint for the frontend.
type StatCard struct {
	Label  string `json:"label"`
	Value  int64  `json:"value"`
	Change string `json:"change,omitempty"`
}

// ChartPoint is one day of the dashboard series. Days are emitted oldest
// first with today last.
type ChartPoint struct {
	Date       string `json:"date"`
	Activities int64  `json:"activities"`
	NewUsers   int64  `json:"new_users"`
}

// DashboardResponse is the role-dependent dashboard payload.
type DashboardResponse struct {
	Stats            []StatCard            `json:"stats"`
	Chart            []ChartPoint          `json:"chart"`
	RecentActivities []ActivityLogResponse `json:"recent_activities"`
}
