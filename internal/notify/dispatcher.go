package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/secureops-systems/secureops/internal/logging"
	"github.com/secureops-systems/secureops/internal/metrics"
	"github.com/secureops-systems/secureops/internal/models"
)

// SubjectUserPrefix is the per-user subject prefix notification events
// are published on for downstream consumers (websocket fan-out, email
// relays). The recipient's user ID is appended.
const SubjectUserPrefix = "notifications.user."

// Store persists notifications.
type Store interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
}

// Directory resolves recipient groups to user IDs.
type Directory interface {
	ListActiveUserIDs(ctx context.Context) ([]string, error)
	ListActiveAdminIDs(ctx context.Context) ([]string, error)
}

// Publisher emits notification events to a message bus. *nats.Conn
// satisfies this.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Audience selects who receives an event: the whole active team, the
// active admins, or an explicit list of user IDs.
type Audience struct {
	group   string
	userIDs []string
}

func Team() Audience {
	return Audience{group: "team"}
}

func Admins() Audience {
	return Audience{group: "admins"}
}

func Users(ids ...string) Audience {
	return Audience{userIDs: ids}
}

// Event describes one notification to fan out.
type Event struct {
	Type       string
	Title      string
	Message    string
	Severity   string
	IncidentID *string
}

// Dispatcher fans events out to recipients as stored notifications.
// The bus publisher and unread cache are optional; a nil value
// disables that side effect.
type Dispatcher struct {
	store     Store
	directory Directory
	publisher Publisher
	cache     *UnreadCache
	logger    *logging.Logger
}

func NewDispatcher(store Store, directory Directory, publisher Publisher, cache *UnreadCache, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{
		store:     store,
		directory: directory,
		publisher: publisher,
		cache:     cache,
		logger:    logger,
	}
}

// Resolve expands the audience into a deduplicated recipient list.
// Explicit lists keep their first-occurrence order.
func (d *Dispatcher) Resolve(ctx context.Context, audience Audience) ([]string, error) {
	switch audience.group {
	case "team":
		return d.directory.ListActiveUserIDs(ctx)
	case "admins":
		return d.directory.ListActiveAdminIDs(ctx)
	}

	seen := make(map[string]bool, len(audience.userIDs))
	recipients := make([]string, 0, len(audience.userIDs))
	for _, id := range audience.userIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		recipients = append(recipients, id)
	}
	return recipients, nil
}

// Dispatch creates one notification per recipient. Each insert is
// independent: a failure for one recipient does not stop delivery to
// the rest. The returned error joins every per-recipient failure; the
// returned IDs are the notifications that were created.
func (d *Dispatcher) Dispatch(ctx context.Context, audience Audience, ev Event) ([]string, error) {
	recipients, err := d.Resolve(ctx, audience)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve recipients: %w", err)
	}

	severity := ev.Severity
	if severity == "" {
		severity = "info"
	}

	var created []string
	var errs []error
	now := time.Now()

	for _, userID := range recipients {
		n := &models.Notification{
			ID:         uuid.NewString(),
			UserID:     userID,
			Type:       ev.Type,
			Title:      ev.Title,
			Message:    ev.Message,
			Severity:   severity,
			IncidentID: ev.IncidentID,
			CreatedAt:  now,
		}

		if err := d.store.CreateNotification(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("recipient %s: %w", userID, err))
			continue
		}
		created = append(created, n.ID)
		metrics.NotificationsDispatched.Inc()

		if d.cache != nil {
			if err := d.cache.Invalidate(ctx, userID); err != nil {
				d.logger.WarnContext(ctx, "failed to invalidate unread cache",
					logging.UserID(userID), logging.Error(err))
			}
		}

		d.publish(ctx, n)
	}

	if len(errs) > 0 {
		return created, errors.Join(errs...)
	}
	return created, nil
}

// publish emits the stored notification on the recipient's subject.
// Publish failures are logged, never returned: real-time delivery is
// best effort on top of the durable row.
func (d *Dispatcher) publish(ctx context.Context, n *models.Notification) {
	if d.publisher == nil {
		return
	}

	payload, err := json.Marshal(n)
	if err != nil {
		d.logger.WarnContext(ctx, "failed to marshal notification event", logging.Error(err))
		return
	}

	if err := d.publisher.Publish(SubjectUserPrefix+n.UserID, payload); err != nil {
		d.logger.WarnContext(ctx, "failed to publish notification event",
			logging.UserID(n.UserID), logging.Error(err))
	}
}
