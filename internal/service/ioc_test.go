package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secureops-systems/secureops/internal/models"
	"github.com/secureops-systems/secureops/internal/repository"
)

func newTestIOCService(repo repository.Repository) *IOCService {
	svc := NewIOCService(repo)
	svc.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }
	return svc
}

func incidentAwareRepo() *mockRepository {
	return &mockRepository{
		getIncidentByIDFunc: func(ctx context.Context, id string) (*models.Incident, error) {
			if id == "inc-1" {
				return &models.Incident{ID: id}, nil
			}
			return nil, repository.ErrIncidentNotFound
		},
	}
}

func TestCreateIOCNormalizesValue(t *testing.T) {
	tests := []struct {
		name      string
		iocType   string
		value     string
		wantValue string
		wantHash  string
	}{
		{"domain strips scheme and path", "domain", "https://Evil.Example.COM/malicious/path", "evil.example.com", ""},
		{"hash lowercased and classified", "hash", "D41D8CD98F00B204E9800998ECF8427E", "d41d8cd98f00b204e9800998ecf8427e", "md5"},
		{"sha256 classified", "hash", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", "sha256"},
		{"email lowercased", "email", "Phisher@Evil.COM", "phisher@evil.com", ""},
		{"ip unchanged", "ip", "203.0.113.7", "203.0.113.7", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := incidentAwareRepo()
			var created *models.IOC
			repo.createIOCFunc = func(ctx context.Context, ioc *models.IOC) error {
				created = ioc
				return nil
			}
			svc := newTestIOCService(repo)

			ioc, err := svc.CreateIOC(context.Background(), &models.CreateIOCRequest{
				Type:       tt.iocType,
				Value:      tt.value,
				IncidentID: "inc-1",
			}, "user-1")
			require.NoError(t, err)

			assert.Equal(t, created, ioc)
			assert.Equal(t, tt.wantValue, ioc.Value)
			assert.Equal(t, "medium", ioc.Confidence)
			assert.True(t, ioc.IsActive)
			if tt.wantHash != "" {
				require.NotNil(t, ioc.HashType)
				assert.Equal(t, tt.wantHash, *ioc.HashType)
			}
		})
	}
}

func TestCreateIOCValidation(t *testing.T) {
	svc := newTestIOCService(incidentAwareRepo())

	tests := []struct {
		name string
		req  *models.CreateIOCRequest
	}{
		{"invalid type", &models.CreateIOCRequest{Type: "registry-key", Value: "x", IncidentID: "inc-1"}},
		{"missing incident", &models.CreateIOCRequest{Type: "ip", Value: "203.0.113.7"}},
		{"invalid confidence", &models.CreateIOCRequest{Type: "ip", Value: "203.0.113.7", IncidentID: "inc-1", Confidence: "certain"}},
		{"malformed ip", &models.CreateIOCRequest{Type: "ip", Value: "999.1.1.1", IncidentID: "inc-1"}},
		{"malformed hash", &models.CreateIOCRequest{Type: "hash", Value: "zzzz", IncidentID: "inc-1"}},
		{"blank value", &models.CreateIOCRequest{Type: "domain", Value: "   ", IncidentID: "inc-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateIOC(context.Background(), tt.req, "user-1")
			assert.Error(t, err)
		})
	}
}

func TestCreateIOCUnknownIncident(t *testing.T) {
	svc := newTestIOCService(incidentAwareRepo())

	_, err := svc.CreateIOC(context.Background(), &models.CreateIOCRequest{
		Type:       "ip",
		Value:      "203.0.113.7",
		IncidentID: "missing",
	}, "user-1")
	assert.ErrorIs(t, err, repository.ErrIncidentNotFound)
}

func TestCreateIOCDuplicate(t *testing.T) {
	repo := incidentAwareRepo()
	repo.createIOCFunc = func(ctx context.Context, ioc *models.IOC) error {
		return repository.ErrDuplicateIOC
	}
	svc := newTestIOCService(repo)

	_, err := svc.CreateIOC(context.Background(), &models.CreateIOCRequest{
		Type:       "ip",
		Value:      "203.0.113.7",
		IncidentID: "inc-1",
	}, "user-1")
	assert.ErrorIs(t, err, repository.ErrDuplicateIOC)
}

func TestUpdateIOC(t *testing.T) {
	stored := &models.IOC{
		ID:         "ioc-1",
		Type:       "domain",
		Value:      "evil.example.com",
		Confidence: "medium",
		IsActive:   true,
	}
	var updated *models.IOC
	repo := &mockRepository{
		getIOCByIDFunc: func(ctx context.Context, id string) (*models.IOC, error) {
			if id == stored.ID {
				return stored, nil
			}
			return nil, repository.ErrIOCNotFound
		},
		updateIOCFunc: func(ctx context.Context, ioc *models.IOC) error {
			updated = ioc
			return nil
		},
	}
	svc := newTestIOCService(repo)

	confidence := "high"
	inactive := false
	ioc, err := svc.UpdateIOC(context.Background(), "ioc-1", &models.UpdateIOCRequest{
		Confidence: &confidence,
		IsActive:   &inactive,
	})
	require.NoError(t, err)

	assert.Equal(t, updated, ioc)
	assert.Equal(t, "high", ioc.Confidence)
	assert.False(t, ioc.IsActive)
	assert.Equal(t, "evil.example.com", ioc.Value) // value is immutable
	require.NotNil(t, ioc.UpdatedAt)
}

func TestUpdateIOCInvalidConfidence(t *testing.T) {
	svc := newTestIOCService(&mockRepository{})

	confidence := "certain"
	_, err := svc.UpdateIOC(context.Background(), "ioc-1", &models.UpdateIOCRequest{Confidence: &confidence})
	assert.Error(t, err)
}

func TestListIOCsPaginationDefaults(t *testing.T) {
	var gotReq *models.ListIOCsRequest
	repo := &mockRepository{
		listIOCsFunc: func(ctx context.Context, req *models.ListIOCsRequest) ([]*models.IOC, int, error) {
			gotReq = req
			return nil, 7, nil
		},
	}
	svc := newTestIOCService(repo)

	resp, err := svc.ListIOCs(context.Background(), &models.ListIOCsRequest{Page: -1, Limit: 0})
	require.NoError(t, err)

	assert.Equal(t, 1, gotReq.Page)
	assert.Equal(t, 20, gotReq.Limit)
	assert.Equal(t, 1, resp.Pagination.TotalPages)
}
