package dashboard

// Overview is the per-user badge payload shown on app open: everything that
// may need the caller's attention right now.
type Overview struct {
	AccessibleLeads     int   `json:"accessible_leads"`
	PendingCallTasks    int   `json:"pending_call_tasks"`
	PendingHelpRequests int   `json:"pending_help_requests"`
	UpcomingAlarms      int64 `json:"upcoming_alarms"`
}
