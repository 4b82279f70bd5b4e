package models

import "time"

// Incident represents a tracked security incident.
type Incident struct {
	ID           string     `json:"id"`
	Code         string     `json:"code"` // human-readable, INC-<year>-<seq>
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Organization string     `json:"organization"`
	OccurredAt   time.Time  `json:"occurred_at"`
	Type         string     `json:"type"`     // ransomware, phishing, malware, ddos, data-breach, defacement, apt, insider, supply-chain, other
	Severity     string     `json:"severity"` // critical, high, medium, low
	Status       string     `json:"status"`   // open, investigating, containment, eradication, recovery, resolved, closed
	RiskScore    int        `json:"risk_score"`
	Tags         []string   `json:"tags"`
	CreatedBy    string     `json:"created_by"`
	AssignedTo   *string    `json:"assigned_to,omitempty"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
	ClosedAt     *time.Time `json:"closed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
	IOCCount     int        `json:"ioc_count,omitempty"` // Calculated field
}

// IsOpen reports whether the incident is still being worked.
func (i *Incident) IsOpen() bool {
	return i.Status != "resolved" && i.Status != "closed"
}

// DaysOpen returns the whole days elapsed since the incident occurred,
// measured at the given instant. Never negative.
func (i *Incident) DaysOpen(now time.Time) int {
	days := int(now.Sub(i.OccurredAt).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// CreateIncidentRequest represents the request to record a new incident
type CreateIncidentRequest struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Organization string     `json:"organization"`
	OccurredAt   time.Time  `json:"occurred_at"`
	Type         string     `json:"type"`
	Severity     string     `json:"severity"`
	Tags         []string   `json:"tags,omitempty"`
	AssignedTo   *string    `json:"assigned_to,omitempty"`
	IOCs         []IOCInput `json:"iocs,omitempty"`
	NotifyTeam   bool       `json:"notify_team,omitempty"`
}

// IOCInput is an indicator submitted inline with an incident.
type IOCInput struct {
	Type       string   `json:"type"`
	Value      string   `json:"value"`
	Confidence string   `json:"confidence,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Notes      string   `json:"notes,omitempty"`
}

// UpdateIncidentRequest represents a partial incident update
type UpdateIncidentRequest struct {
	Title        *string  `json:"title,omitempty"`
	Description  *string  `json:"description,omitempty"`
	Organization *string  `json:"organization,omitempty"`
	Type         *string  `json:"type,omitempty"`
	Severity     *string  `json:"severity,omitempty"`
	Status       *string  `json:"status,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	AssignedTo   *string  `json:"assigned_to,omitempty"`
}

// ListIncidentsRequest represents query parameters for listing incidents
type ListIncidentsRequest struct {
	Page     int
	Limit    int
	Status   string
	Severity string
	Type     string
	Search   string
}

// ListIncidentsResponse represents the response for listing incidents
type ListIncidentsResponse struct {
	Incidents  []*Incident `json:"incidents"`
	Pagination Pagination  `json:"pagination"`
}

// IncidentStat is one row of the grouped incident counts.
type IncidentStat struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Status   string `json:"status"`
	Count    int    `json:"count"`
}

// Pagination represents pagination metadata
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}
