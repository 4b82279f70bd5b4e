package service

import (
	"context"

	"github.com/secureops-systems/secureops/internal/models"
	"github.com/secureops-systems/secureops/internal/notify"
	"github.com/secureops-systems/secureops/internal/repository"
)

// mockRepository is a mock implementation of repository.Repository
type mockRepository struct {
	createIncidentFunc      func(ctx context.Context, inc *models.Incident) error
	getIncidentByIDFunc     func(ctx context.Context, id string) (*models.Incident, error)
	listIncidentsFunc       func(ctx context.Context, req *models.ListIncidentsRequest) ([]*models.Incident, int, error)
	listRecentIncidentsFunc func(ctx context.Context, limit int) ([]*models.Incident, error)
	mutateIncidentFunc      func(ctx context.Context, id string, mutate func(*models.Incident) error) (*models.Incident, error)
	deleteIncidentFunc      func(ctx context.Context, id string) error
	incidentStatsFunc       func(ctx context.Context) ([]models.IncidentStat, error)

	createIOCFunc          func(ctx context.Context, ioc *models.IOC) error
	getIOCByIDFunc         func(ctx context.Context, id string) (*models.IOC, error)
	listIOCsFunc           func(ctx context.Context, req *models.ListIOCsRequest) ([]*models.IOC, int, error)
	listIOCsByIncidentFunc func(ctx context.Context, incidentID string) ([]*models.IOC, error)
	updateIOCFunc          func(ctx context.Context, ioc *models.IOC) error
	deleteIOCFunc          func(ctx context.Context, id string) error

	addTimelineEventFunc func(ctx context.Context, ev *models.TimelineEvent) error
	listTimelineFunc     func(ctx context.Context, incidentID string) ([]*models.TimelineEvent, error)

	createUserFunc      func(ctx context.Context, user *models.User) error
	getUserByEmailFunc  func(ctx context.Context, email string) (*models.User, error)
	getUserByIDFunc     func(ctx context.Context, id string) (*models.User, error)
	updateLastLoginFunc func(ctx context.Context, id string) error

	unreadCountFunc func(ctx context.Context, userID string) (int, error)
}

func (m *mockRepository) CreateIncident(ctx context.Context, inc *models.Incident) error {
	if m.createIncidentFunc != nil {
		return m.createIncidentFunc(ctx, inc)
	}
	return nil
}

func (m *mockRepository) GetIncidentByID(ctx context.Context, id string) (*models.Incident, error) {
	if m.getIncidentByIDFunc != nil {
		return m.getIncidentByIDFunc(ctx, id)
	}
	return nil, repository.ErrIncidentNotFound
}

func (m *mockRepository) ListIncidents(ctx context.Context, req *models.ListIncidentsRequest) ([]*models.Incident, int, error) {
	if m.listIncidentsFunc != nil {
		return m.listIncidentsFunc(ctx, req)
	}
	return nil, 0, nil
}

func (m *mockRepository) ListRecentIncidents(ctx context.Context, limit int) ([]*models.Incident, error) {
	if m.listRecentIncidentsFunc != nil {
		return m.listRecentIncidentsFunc(ctx, limit)
	}
	return nil, nil
}

func (m *mockRepository) MutateIncident(ctx context.Context, id string, mutate func(*models.Incident) error) (*models.Incident, error) {
	if m.mutateIncidentFunc != nil {
		return m.mutateIncidentFunc(ctx, id, mutate)
	}
	return nil, repository.ErrIncidentNotFound
}

func (m *mockRepository) DeleteIncident(ctx context.Context, id string) error {
	if m.deleteIncidentFunc != nil {
		return m.deleteIncidentFunc(ctx, id)
	}
	return nil
}

func (m *mockRepository) IncidentStats(ctx context.Context) ([]models.IncidentStat, error) {
	if m.incidentStatsFunc != nil {
		return m.incidentStatsFunc(ctx)
	}
	return nil, nil
}

func (m *mockRepository) CreateIOC(ctx context.Context, ioc *models.IOC) error {
	if m.createIOCFunc != nil {
		return m.createIOCFunc(ctx, ioc)
	}
	return nil
}

func (m *mockRepository) GetIOCByID(ctx context.Context, id string) (*models.IOC, error) {
	if m.getIOCByIDFunc != nil {
		return m.getIOCByIDFunc(ctx, id)
	}
	return nil, repository.ErrIOCNotFound
}

func (m *mockRepository) ListIOCs(ctx context.Context, req *models.ListIOCsRequest) ([]*models.IOC, int, error) {
	if m.listIOCsFunc != nil {
		return m.listIOCsFunc(ctx, req)
	}
	return nil, 0, nil
}

func (m *mockRepository) ListIOCsByIncident(ctx context.Context, incidentID string) ([]*models.IOC, error) {
	if m.listIOCsByIncidentFunc != nil {
		return m.listIOCsByIncidentFunc(ctx, incidentID)
	}
	return nil, nil
}

func (m *mockRepository) UpdateIOC(ctx context.Context, ioc *models.IOC) error {
	if m.updateIOCFunc != nil {
		return m.updateIOCFunc(ctx, ioc)
	}
	return nil
}

func (m *mockRepository) DeleteIOC(ctx context.Context, id string) error {
	if m.deleteIOCFunc != nil {
		return m.deleteIOCFunc(ctx, id)
	}
	return nil
}

func (m *mockRepository) AddTimelineEvent(ctx context.Context, ev *models.TimelineEvent) error {
	if m.addTimelineEventFunc != nil {
		return m.addTimelineEventFunc(ctx, ev)
	}
	return nil
}

func (m *mockRepository) ListTimeline(ctx context.Context, incidentID string) ([]*models.TimelineEvent, error) {
	if m.listTimelineFunc != nil {
		return m.listTimelineFunc(ctx, incidentID)
	}
	return nil, nil
}

func (m *mockRepository) CreateUser(ctx context.Context, user *models.User) error {
	if m.createUserFunc != nil {
		return m.createUserFunc(ctx, user)
	}
	return nil
}

func (m *mockRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.getUserByEmailFunc != nil {
		return m.getUserByEmailFunc(ctx, email)
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if m.getUserByIDFunc != nil {
		return m.getUserByIDFunc(ctx, id)
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockRepository) ListActiveUserIDs(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (m *mockRepository) ListActiveAdminIDs(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (m *mockRepository) UpdateLastLogin(ctx context.Context, id string) error {
	if m.updateLastLoginFunc != nil {
		return m.updateLastLoginFunc(ctx, id)
	}
	return nil
}

func (m *mockRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	return nil
}

func (m *mockRepository) ListNotifications(ctx context.Context, req *models.ListNotificationsRequest) ([]*models.Notification, error) {
	return nil, nil
}

func (m *mockRepository) UnreadCount(ctx context.Context, userID string) (int, error) {
	if m.unreadCountFunc != nil {
		return m.unreadCountFunc(ctx, userID)
	}
	return 0, nil
}

func (m *mockRepository) MarkNotificationRead(ctx context.Context, id, userID string) error {
	return nil
}

func (m *mockRepository) MarkAllNotificationsRead(ctx context.Context, userID string, ids []string) error {
	return nil
}

func (m *mockRepository) DeleteNotification(ctx context.Context, id, userID string) error {
	return nil
}

func (m *mockRepository) Close() error { return nil }

// mockDispatcher records dispatched events.
type mockDispatcher struct {
	events    []notify.Event
	audiences []notify.Audience
	err       error
}

func (m *mockDispatcher) Dispatch(ctx context.Context, audience notify.Audience, ev notify.Event) ([]string, error) {
	m.audiences = append(m.audiences, audience)
	m.events = append(m.events, ev)
	return nil, m.err
}
