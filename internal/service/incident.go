package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/secureops-systems/secureops/internal/attribution"
	"github.com/secureops-systems/secureops/internal/logging"
	"github.com/secureops-systems/secureops/internal/metrics"
	"github.com/secureops-systems/secureops/internal/models"
	"github.com/secureops-systems/secureops/internal/notify"
	"github.com/secureops-systems/secureops/internal/repository"
	"github.com/secureops-systems/secureops/internal/risk"
)

// Dispatcher fans out notifications. Satisfied by *notify.Dispatcher.
type Dispatcher interface {
	Dispatch(ctx context.Context, audience notify.Audience, ev notify.Event) ([]string, error)
}

// IncidentDetail is an incident with its indicators and timeline.
type IncidentDetail struct {
	*models.Incident
	IOCs     []*models.IOC           `json:"iocs"`
	Timeline []*models.TimelineEvent `json:"timeline"`
}

// IncidentService handles business logic for incidents: codes, derived
// risk scores, timelines, and the notifications incidents generate.
type IncidentService struct {
	repo       repository.Repository
	dispatcher Dispatcher
	engine     *attribution.Engine
	logger     *logging.Logger
	now        func() time.Time
}

func NewIncidentService(repo repository.Repository, dispatcher Dispatcher, engine *attribution.Engine, logger *logging.Logger) *IncidentService {
	if logger == nil {
		logger = logging.Default()
	}
	return &IncidentService{
		repo:       repo,
		dispatcher: dispatcher,
		engine:     engine,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateIncident records a new incident, computes its risk score,
// attaches any inline indicators, and optionally notifies the team.
func (s *IncidentService) CreateIncident(ctx context.Context, req *models.CreateIncidentRequest, userID string) (*models.Incident, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if !validIncidentTypes[req.Type] {
		return nil, fmt.Errorf("invalid incident type: %s", req.Type)
	}
	if !validSeverities[req.Severity] {
		return nil, fmt.Errorf("invalid severity: %s", req.Severity)
	}
	if req.OccurredAt.IsZero() {
		return nil, fmt.Errorf("occurred_at is required")
	}

	now := s.now()
	inc := &models.Incident{
		ID:           uuid.NewString(),
		Title:        req.Title,
		Description:  req.Description,
		Organization: req.Organization,
		OccurredAt:   req.OccurredAt,
		Type:         req.Type,
		Severity:     req.Severity,
		Status:       "open",
		Tags:         req.Tags,
		CreatedBy:    userID,
		AssignedTo:   req.AssignedTo,
		CreatedAt:    now,
	}
	if inc.Tags == nil {
		inc.Tags = []string{}
	}
	inc.RiskScore = risk.Score(inc.Severity, inc.Type, inc.Status, inc.DaysOpen(now))

	if err := s.repo.CreateIncident(ctx, inc); err != nil {
		return nil, fmt.Errorf("failed to create incident: %w", err)
	}
	metrics.IncidentsCreated.WithLabelValues(inc.Severity, inc.Type).Inc()

	s.appendTimeline(ctx, inc.ID, inc.OccurredAt, "Incident reported", "detection", userID)

	for _, input := range req.IOCs {
		if err := s.attachIOC(ctx, inc.ID, input, userID); err != nil {
			// The incident row is already committed; a bad inline
			// indicator is logged and skipped rather than failing the
			// whole request.
			s.logger.WarnContext(ctx, "skipping inline IOC",
				logging.IncidentID(inc.ID), logging.IOCType(input.Type), logging.Error(err))
		}
	}

	if req.NotifyTeam && s.dispatcher != nil {
		_, err := s.dispatcher.Dispatch(ctx, notify.Team(), notify.Event{
			Type:       "incident",
			Title:      fmt.Sprintf("New incident: %s", inc.Code),
			Message:    fmt.Sprintf("%s (%s/%s)", inc.Title, inc.Severity, inc.Type),
			Severity:   notificationSeverity(inc.Severity),
			IncidentID: &inc.ID,
		})
		if err != nil {
			s.logger.WarnContext(ctx, "failed to notify team of new incident",
				logging.IncidentID(inc.ID), logging.Error(err))
		}
	}

	return s.repo.GetIncidentByID(ctx, inc.ID)
}

func (s *IncidentService) attachIOC(ctx context.Context, incidentID string, input models.IOCInput, userID string) error {
	if !validIOCTypes[input.Type] {
		return fmt.Errorf("invalid IOC type: %s", input.Type)
	}

	confidence := input.Confidence
	if confidence == "" {
		confidence = "medium"
	}
	if !validConfidences[confidence] {
		return fmt.Errorf("invalid confidence: %s", confidence)
	}

	ioc := &models.IOC{
		ID:         uuid.NewString(),
		Type:       input.Type,
		Value:      input.Value,
		Confidence: confidence,
		Tags:       input.Tags,
		Notes:      input.Notes,
		IsActive:   true,
		IncidentID: incidentID,
		CreatedBy:  userID,
		CreatedAt:  s.now(),
	}
	if ioc.Tags == nil {
		ioc.Tags = []string{}
	}

	ioc.Normalize()
	if ioc.Value == "" || !ioc.ValidValue() {
		return fmt.Errorf("invalid %s value: %q", ioc.Type, input.Value)
	}

	if err := s.repo.CreateIOC(ctx, ioc); err != nil {
		return err
	}
	metrics.IOCsCreated.WithLabelValues(ioc.Type).Inc()
	return nil
}

// GetIncident retrieves an incident with its indicators and timeline.
func (s *IncidentService) GetIncident(ctx context.Context, id string) (*IncidentDetail, error) {
	inc, err := s.repo.GetIncidentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	iocs, err := s.repo.ListIOCsByIncident(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load incident IOCs: %w", err)
	}

	timeline, err := s.repo.ListTimeline(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load incident timeline: %w", err)
	}

	return &IncidentDetail{Incident: inc, IOCs: iocs, Timeline: timeline}, nil
}

// ListIncidents retrieves a paginated, filtered list of incidents
func (s *IncidentService) ListIncidents(ctx context.Context, req *models.ListIncidentsRequest) (*models.ListIncidentsResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Status != "" && !validStatuses[req.Status] {
		return nil, fmt.Errorf("invalid status: %s", req.Status)
	}
	if req.Severity != "" && !validSeverities[req.Severity] {
		return nil, fmt.Errorf("invalid severity: %s", req.Severity)
	}

	incidents, total, err := s.repo.ListIncidents(ctx, req)
	if err != nil {
		return nil, err
	}

	totalPages := (total + req.Limit - 1) / req.Limit

	return &models.ListIncidentsResponse{
		Incidents: incidents,
		Pagination: models.Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// RecentIncidents retrieves the most recently created incidents.
func (s *IncidentService) RecentIncidents(ctx context.Context, limit int) ([]*models.Incident, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}
	return s.repo.ListRecentIncidents(ctx, limit)
}

// UpdateIncident applies a partial update. The risk score is recomputed
// and persisted in the same transaction as the field changes; a status
// change stamps resolution timestamps, appends a timeline entry, and
// notifies the creator and assignee.
func (s *IncidentService) UpdateIncident(ctx context.Context, id string, req *models.UpdateIncidentRequest, userID string) (*models.Incident, error) {
	if req.Type != nil && !validIncidentTypes[*req.Type] {
		return nil, fmt.Errorf("invalid incident type: %s", *req.Type)
	}
	if req.Severity != nil && !validSeverities[*req.Severity] {
		return nil, fmt.Errorf("invalid severity: %s", *req.Severity)
	}
	if req.Status != nil && !validStatuses[*req.Status] {
		return nil, fmt.Errorf("invalid status: %s", *req.Status)
	}

	now := s.now()
	var oldStatus string

	inc, err := s.repo.MutateIncident(ctx, id, func(inc *models.Incident) error {
		oldStatus = inc.Status

		if req.Title != nil {
			inc.Title = *req.Title
		}
		if req.Description != nil {
			inc.Description = *req.Description
		}
		if req.Organization != nil {
			inc.Organization = *req.Organization
		}
		if req.Type != nil {
			inc.Type = *req.Type
		}
		if req.Severity != nil {
			inc.Severity = *req.Severity
		}
		if req.Tags != nil {
			inc.Tags = req.Tags
		}
		if req.AssignedTo != nil {
			inc.AssignedTo = req.AssignedTo
		}
		if req.Status != nil && *req.Status != inc.Status {
			inc.Status = *req.Status
			// resolved_at and closed_at record the first transition
			// into the status and are never overwritten
			if inc.Status == "resolved" && inc.ResolvedAt == nil {
				inc.ResolvedAt = &now
			}
			if inc.Status == "closed" && inc.ClosedAt == nil {
				inc.ClosedAt = &now
			}
		}

		inc.RiskScore = risk.Score(inc.Severity, inc.Type, inc.Status, inc.DaysOpen(now))
		inc.UpdatedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	if req.Status != nil && inc.Status != oldStatus {
		s.appendTimeline(ctx, inc.ID, now,
			fmt.Sprintf("Status changed from %s to %s", oldStatus, inc.Status), "update", userID)
		s.notifyStatusChange(ctx, inc, oldStatus, userID)
	}

	return inc, nil
}

func (s *IncidentService) notifyStatusChange(ctx context.Context, inc *models.Incident, oldStatus, actorID string) {
	if s.dispatcher == nil {
		return
	}

	// The creator and assignee are told, except the user who made the
	// change.
	recipients := []string{}
	if inc.CreatedBy != actorID {
		recipients = append(recipients, inc.CreatedBy)
	}
	if inc.AssignedTo != nil && *inc.AssignedTo != actorID {
		recipients = append(recipients, *inc.AssignedTo)
	}
	if len(recipients) == 0 {
		return
	}

	_, err := s.dispatcher.Dispatch(ctx, notify.Users(recipients...), notify.Event{
		Type:       "status_change",
		Title:      fmt.Sprintf("Incident %s: %s", inc.Code, inc.Status),
		Message:    fmt.Sprintf("Status changed from %s to %s", oldStatus, inc.Status),
		Severity:   notificationSeverity(inc.Severity),
		IncidentID: &inc.ID,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to send status change notifications",
			logging.IncidentID(inc.ID), logging.Error(err))
	}
}

func (s *IncidentService) appendTimeline(ctx context.Context, incidentID string, occurredAt time.Time, description, eventType, userID string) {
	ev := &models.TimelineEvent{
		ID:          uuid.NewString(),
		IncidentID:  incidentID,
		OccurredAt:  occurredAt,
		Description: description,
		EventType:   eventType,
		CreatedBy:   userID,
		CreatedAt:   s.now(),
	}
	if err := s.repo.AddTimelineEvent(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "failed to append timeline entry",
			logging.IncidentID(incidentID), logging.Error(err))
	}
}

// DeleteIncident removes an incident. Only an admin or the incident's
// creator may delete it.
func (s *IncidentService) DeleteIncident(ctx context.Context, id, userID, role string) error {
	inc, err := s.repo.GetIncidentByID(ctx, id)
	if err != nil {
		return err
	}

	if role != "admin" && inc.CreatedBy != userID {
		return ErrForbidden
	}

	return s.repo.DeleteIncident(ctx, id)
}

// IncidentStats retrieves incident counts grouped by type, severity
// and status.
func (s *IncidentService) IncidentStats(ctx context.Context) ([]models.IncidentStat, error) {
	return s.repo.IncidentStats(ctx)
}

// AddTimelineEvent appends a manual entry to an incident's timeline.
func (s *IncidentService) AddTimelineEvent(ctx context.Context, incidentID string, req *models.AddTimelineEventRequest, userID string) (*models.TimelineEvent, error) {
	if req.Description == "" {
		return nil, fmt.Errorf("description is required")
	}

	eventType := req.EventType
	if eventType == "" {
		eventType = "update"
	}
	if !validEventTypes[eventType] {
		return nil, fmt.Errorf("invalid event type: %s", eventType)
	}

	occurredAt := req.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = s.now()
	}

	// Reject timeline entries for incidents that do not exist
	if _, err := s.repo.GetIncidentByID(ctx, incidentID); err != nil {
		return nil, err
	}

	ev := &models.TimelineEvent{
		ID:          uuid.NewString(),
		IncidentID:  incidentID,
		OccurredAt:  occurredAt,
		Description: req.Description,
		EventType:   eventType,
		CreatedBy:   userID,
		CreatedAt:   s.now(),
	}

	if err := s.repo.AddTimelineEvent(ctx, ev); err != nil {
		return nil, fmt.Errorf("failed to add timeline event: %w", err)
	}

	return ev, nil
}

// Attribute runs heuristic threat attribution over the incident's
// active indicators. A high-confidence top match raises a threat alert
// for the whole team.
func (s *IncidentService) Attribute(ctx context.Context, incidentID string) ([]attribution.Match, error) {
	inc, err := s.repo.GetIncidentByID(ctx, incidentID)
	if err != nil {
		return nil, err
	}

	iocs, err := s.repo.ListIOCsByIncident(ctx, incidentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load incident IOCs: %w", err)
	}

	indicators := map[string][]string{}
	for _, ioc := range iocs {
		if !ioc.IsActive {
			continue
		}
		indicators[ioc.Type] = append(indicators[ioc.Type], ioc.Value)
	}

	matches := s.engine.Analyze(indicators, inc.Type, inc.Description)
	metrics.AttributionRuns.Inc()

	if len(matches) > 0 && matches[0].Confidence == "high" && s.dispatcher != nil {
		top := matches[0]
		_, err := s.dispatcher.Dispatch(ctx, notify.Team(), notify.Event{
			Type:       "threat_alert",
			Title:      fmt.Sprintf("Possible %s activity", top.Actor),
			Message:    fmt.Sprintf("Attribution for %s matched %s with score %d", inc.Code, top.Actor, top.Score),
			Severity:   "danger",
			IncidentID: &inc.ID,
		})
		if err != nil {
			s.logger.WarnContext(ctx, "failed to send threat alert",
				logging.IncidentID(inc.ID), logging.Error(err))
		}
	}

	return matches, nil
}
