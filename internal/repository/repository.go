package repository

import (
	"context"
	"errors"

	"github.com/secureops-systems/secureops/internal/models"
)

var (
	ErrIncidentNotFound     = errors.New("incident not found")
	ErrIOCNotFound          = errors.New("IOC not found")
	ErrDuplicateIOC         = errors.New("IOC already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrUserExists           = errors.New("user already exists")
	ErrNotificationNotFound = errors.New("notification not found")
)

// IncidentRepository persists incidents and their derived risk scores.
type IncidentRepository interface {
	CreateIncident(ctx context.Context, inc *models.Incident) error
	GetIncidentByID(ctx context.Context, id string) (*models.Incident, error)
	ListIncidents(ctx context.Context, req *models.ListIncidentsRequest) ([]*models.Incident, int, error)
	ListRecentIncidents(ctx context.Context, limit int) ([]*models.Incident, error)

	// MutateIncident loads the incident, applies mutate, and persists the
	// result within a single transaction. This is the invariant-maintaining
	// boundary for derived fields: a reader can never observe an incident
	// whose severity, type, or status changed but whose risk score is stale.
	MutateIncident(ctx context.Context, id string, mutate func(*models.Incident) error) (*models.Incident, error)

	DeleteIncident(ctx context.Context, id string) error
	IncidentStats(ctx context.Context) ([]models.IncidentStat, error)
}

// IOCRepository persists indicators of compromise.
type IOCRepository interface {
	// CreateIOC inserts a new indicator. A (type, value) collision returns
	// ErrDuplicateIOC; submissions never overwrite an existing row.
	CreateIOC(ctx context.Context, ioc *models.IOC) error
	GetIOCByID(ctx context.Context, id string) (*models.IOC, error)
	ListIOCs(ctx context.Context, req *models.ListIOCsRequest) ([]*models.IOC, int, error)
	ListIOCsByIncident(ctx context.Context, incidentID string) ([]*models.IOC, error)
	UpdateIOC(ctx context.Context, ioc *models.IOC) error
	DeleteIOC(ctx context.Context, id string) error
}

// TimelineRepository persists incident timeline entries.
type TimelineRepository interface {
	AddTimelineEvent(ctx context.Context, ev *models.TimelineEvent) error
	ListTimeline(ctx context.Context, incidentID string) ([]*models.TimelineEvent, error)
}

// UserRepository persists analyst accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListActiveUserIDs(ctx context.Context) ([]string, error)
	ListActiveAdminIDs(ctx context.Context) ([]string, error)
	UpdateLastLogin(ctx context.Context, id string) error
}

// NotificationRepository persists per-user notifications.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, req *models.ListNotificationsRequest) ([]*models.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkNotificationRead(ctx context.Context, id, userID string) error
	MarkAllNotificationsRead(ctx context.Context, userID string, ids []string) error
	DeleteNotification(ctx context.Context, id, userID string) error
}

// Repository is the full persistence surface of the service.
type Repository interface {
	IncidentRepository
	IOCRepository
	TimelineRepository
	UserRepository
	NotificationRepository
	Close() error
}
