package models

import "time"

// Notification is a single per-user notice. Rows are immutable after
// creation except for the read flag.
type Notification struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Type       string     `json:"type"`     // incident, assignment, status_change, threat_alert, system
	Title      string     `json:"title"`
	Message    string     `json:"message"`
	Severity   string     `json:"severity"` // info, warning, danger, success
	IsRead     bool       `json:"is_read"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
	IncidentID *string    `json:"incident_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ListNotificationsRequest represents query parameters for a user's
// notification feed.
type ListNotificationsRequest struct {
	UserID     string
	UnreadOnly bool
	Limit      int
	Offset     int
}
