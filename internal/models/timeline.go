package models

import "time"

// TimelineEvent is one entry in an incident's investigation timeline.
type TimelineEvent struct {
	ID          string    `json:"id"`
	IncidentID  string    `json:"incident_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Description string    `json:"description"`
	EventType   string    `json:"event_type"` // detection, response, containment, investigation, recovery, update, escalation, other
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// AddTimelineEventRequest represents the request to append a timeline entry
type AddTimelineEventRequest struct {
	OccurredAt  time.Time `json:"occurred_at"`
	Description string    `json:"description"`
	EventType   string    `json:"event_type,omitempty"`
}
