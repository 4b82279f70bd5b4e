package service

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ReportService renders plain-text incident reports for export.
type ReportService struct {
	incidents *IncidentService
	now       func() time.Time
}

func NewReportService(incidents *IncidentService) *ReportService {
	return &ReportService{incidents: incidents, now: time.Now}
}

// IncidentReport renders a full plain-text report for the incident:
// summary, indicators, timeline, and an attribution analysis section.
func (s *ReportService) IncidentReport(ctx context.Context, incidentID string) (string, error) {
	detail, err := s.incidents.GetIncident(ctx, incidentID)
	if err != nil {
		return "", err
	}

	matches, err := s.incidents.Attribute(ctx, incidentID)
	if err != nil {
		return "", err
	}

	inc := detail.Incident
	var b strings.Builder

	section := func(title string) {
		fmt.Fprintf(&b, "\n%s\n%s\n", title, strings.Repeat("-", len(title)))
	}

	fmt.Fprintf(&b, "INCIDENT REPORT %s\n", inc.Code)
	fmt.Fprintf(&b, "Generated: %s\n", s.now().UTC().Format(time.RFC3339))

	section("SUMMARY")
	fmt.Fprintf(&b, "Title:        %s\n", inc.Title)
	fmt.Fprintf(&b, "Organization: %s\n", inc.Organization)
	fmt.Fprintf(&b, "Type:         %s\n", inc.Type)
	fmt.Fprintf(&b, "Severity:     %s\n", inc.Severity)
	fmt.Fprintf(&b, "Status:       %s\n", inc.Status)
	fmt.Fprintf(&b, "Risk score:   %d/100\n", inc.RiskScore)
	fmt.Fprintf(&b, "Occurred:     %s\n", inc.OccurredAt.UTC().Format(time.RFC3339))
	if inc.ResolvedAt != nil {
		fmt.Fprintf(&b, "Resolved:     %s\n", inc.ResolvedAt.UTC().Format(time.RFC3339))
	}
	if inc.ClosedAt != nil {
		fmt.Fprintf(&b, "Closed:       %s\n", inc.ClosedAt.UTC().Format(time.RFC3339))
	}
	if inc.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", inc.Description)
	}

	section("INDICATORS OF COMPROMISE")
	if len(detail.IOCs) == 0 {
		b.WriteString("None recorded.\n")
	}
	for _, ioc := range detail.IOCs {
		status := "active"
		if !ioc.IsActive {
			status = "inactive"
		}
		fmt.Fprintf(&b, "[%s] %s (confidence: %s, %s)\n", ioc.Type, ioc.Value, ioc.Confidence, status)
	}

	section("TIMELINE")
	if len(detail.Timeline) == 0 {
		b.WriteString("None recorded.\n")
	}
	for _, ev := range detail.Timeline {
		fmt.Fprintf(&b, "%s  [%s] %s\n", ev.OccurredAt.UTC().Format("2006-01-02 15:04"), ev.EventType, ev.Description)
	}

	section("ATTRIBUTION ANALYSIS")
	if len(matches) == 0 {
		b.WriteString("No candidate threat actors matched the available evidence.\n")
	}
	for _, m := range matches {
		fmt.Fprintf(&b, "%s: score %d (%s confidence)\n", m.Actor, m.Score, m.Confidence)
		for _, ev := range m.Indicators {
			fmt.Fprintf(&b, "  - %s\n", ev)
		}
	}

	return b.String(), nil
}
