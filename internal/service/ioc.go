package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/secureops-systems/secureops/internal/metrics"
	"github.com/secureops-systems/secureops/internal/models"
	"github.com/secureops-systems/secureops/internal/repository"
)

// IOCService handles business logic for indicators of compromise.
type IOCService struct {
	repo repository.Repository
	now  func() time.Time
}

func NewIOCService(repo repository.Repository) *IOCService {
	return &IOCService{repo: repo, now: time.Now}
}

// CreateIOC registers a new indicator against an incident. The value is
// normalized before storage; a (type, value) collision with an existing
// indicator returns repository.ErrDuplicateIOC.
func (s *IOCService) CreateIOC(ctx context.Context, req *models.CreateIOCRequest, userID string) (*models.IOC, error) {
	if !validIOCTypes[req.Type] {
		return nil, fmt.Errorf("invalid IOC type: %s", req.Type)
	}
	if req.IncidentID == "" {
		return nil, fmt.Errorf("incident_id is required")
	}

	confidence := req.Confidence
	if confidence == "" {
		confidence = "medium"
	}
	if !validConfidences[confidence] {
		return nil, fmt.Errorf("invalid confidence: %s", confidence)
	}

	if _, err := s.repo.GetIncidentByID(ctx, req.IncidentID); err != nil {
		return nil, err
	}

	ioc := &models.IOC{
		ID:         uuid.NewString(),
		Type:       req.Type,
		Value:      req.Value,
		Confidence: confidence,
		Tags:       req.Tags,
		Notes:      req.Notes,
		IsActive:   true,
		IncidentID: req.IncidentID,
		CreatedBy:  userID,
		CreatedAt:  s.now(),
	}
	if ioc.Tags == nil {
		ioc.Tags = []string{}
	}

	ioc.Normalize()
	if ioc.Value == "" || !ioc.ValidValue() {
		return nil, fmt.Errorf("invalid %s value: %q", ioc.Type, req.Value)
	}

	if err := s.repo.CreateIOC(ctx, ioc); err != nil {
		return nil, err
	}
	metrics.IOCsCreated.WithLabelValues(ioc.Type).Inc()

	return ioc, nil
}

// GetIOC retrieves a single indicator by ID.
func (s *IOCService) GetIOC(ctx context.Context, id string) (*models.IOC, error) {
	return s.repo.GetIOCByID(ctx, id)
}

// ListIOCs retrieves a paginated, filtered list of indicators
func (s *IOCService) ListIOCs(ctx context.Context, req *models.ListIOCsRequest) (*models.ListIOCsResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Type != "" && !validIOCTypes[req.Type] {
		return nil, fmt.Errorf("invalid IOC type: %s", req.Type)
	}

	iocs, total, err := s.repo.ListIOCs(ctx, req)
	if err != nil {
		return nil, err
	}

	totalPages := (total + req.Limit - 1) / req.Limit

	return &models.ListIOCsResponse{
		IOCs: iocs,
		Pagination: models.Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// UpdateIOC applies a partial update to an indicator. The type and
// value are immutable; deactivation is done through is_active.
func (s *IOCService) UpdateIOC(ctx context.Context, id string, req *models.UpdateIOCRequest) (*models.IOC, error) {
	if req.Confidence != nil && !validConfidences[*req.Confidence] {
		return nil, fmt.Errorf("invalid confidence: %s", *req.Confidence)
	}

	ioc, err := s.repo.GetIOCByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Confidence != nil {
		ioc.Confidence = *req.Confidence
	}
	if req.Tags != nil {
		ioc.Tags = req.Tags
	}
	if req.Notes != nil {
		ioc.Notes = *req.Notes
	}
	if req.IsActive != nil {
		ioc.IsActive = *req.IsActive
	}
	now := s.now()
	ioc.UpdatedAt = &now

	if err := s.repo.UpdateIOC(ctx, ioc); err != nil {
		return nil, err
	}

	return ioc, nil
}

// DeleteIOC removes an indicator, freeing its (type, value) pair for
// re-registration.
func (s *IOCService) DeleteIOC(ctx context.Context, id string) error {
	return s.repo.DeleteIOC(ctx, id)
}
