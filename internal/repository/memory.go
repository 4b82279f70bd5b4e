package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/secureops-systems/secureops/internal/models"
)

// InMemoryRepository is a map-backed Repository for development and tests.
type InMemoryRepository struct {
	incidents     map[string]*models.Incident
	iocs          map[string]*models.IOC
	iocKeys       map[string]string // "type|value" -> IOC ID
	timeline      map[string][]*models.TimelineEvent
	users         map[string]*models.User
	usersByEmail  map[string]*models.User
	notifications map[string]*models.Notification
	mu            sync.RWMutex
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		incidents:     make(map[string]*models.Incident),
		iocs:          make(map[string]*models.IOC),
		iocKeys:       make(map[string]string),
		timeline:      make(map[string][]*models.TimelineEvent),
		users:         make(map[string]*models.User),
		usersByEmail:  make(map[string]*models.User),
		notifications: make(map[string]*models.Notification),
	}
}

func (r *InMemoryRepository) Close() error {
	return nil
}

func (r *InMemoryRepository) CreateIncident(ctx context.Context, inc *models.Incident) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	year := inc.CreatedAt.Year()
	prefix := fmt.Sprintf("INC-%d-", year)
	seq := 1
	for _, existing := range r.incidents {
		if strings.HasPrefix(existing.Code, prefix) {
			seq++
		}
	}
	inc.Code = fmt.Sprintf("%s%04d", prefix, seq)

	r.incidents[inc.ID] = inc
	return nil
}

func (r *InMemoryRepository) iocCount(incidentID string) int {
	count := 0
	for _, ioc := range r.iocs {
		if ioc.IncidentID == incidentID {
			count++
		}
	}
	return count
}

func (r *InMemoryRepository) GetIncidentByID(ctx context.Context, id string) (*models.Incident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inc, exists := r.incidents[id]
	if !exists {
		return nil, ErrIncidentNotFound
	}

	out := *inc
	out.IOCCount = r.iocCount(id)
	return &out, nil
}

func matchesIncident(inc *models.Incident, req *models.ListIncidentsRequest) bool {
	if req.Status != "" && inc.Status != req.Status {
		return false
	}
	if req.Severity != "" && inc.Severity != req.Severity {
		return false
	}
	if req.Type != "" && inc.Type != req.Type {
		return false
	}
	if req.Search != "" {
		needle := strings.ToLower(req.Search)
		if !strings.Contains(strings.ToLower(inc.Title), needle) &&
			!strings.Contains(strings.ToLower(inc.Description), needle) &&
			!strings.Contains(strings.ToLower(inc.Code), needle) {
			return false
		}
	}
	return true
}

func (r *InMemoryRepository) ListIncidents(ctx context.Context, req *models.ListIncidentsRequest) ([]*models.Incident, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []*models.Incident{}
	for _, inc := range r.incidents {
		if matchesIncident(inc, req) {
			out := *inc
			out.IOCCount = r.iocCount(inc.ID)
			matched = append(matched, &out)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (req.Page - 1) * req.Limit
	if start >= total {
		return []*models.Incident{}, total, nil
	}
	end := start + req.Limit
	if end > total {
		end = total
	}

	return matched[start:end], total, nil
}

func (r *InMemoryRepository) ListRecentIncidents(ctx context.Context, limit int) ([]*models.Incident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	incidents := []*models.Incident{}
	for _, inc := range r.incidents {
		out := *inc
		incidents = append(incidents, &out)
	}

	sort.Slice(incidents, func(i, j int) bool {
		return incidents[i].CreatedAt.After(incidents[j].CreatedAt)
	})

	if len(incidents) > limit {
		incidents = incidents[:limit]
	}
	return incidents, nil
}

func (r *InMemoryRepository) MutateIncident(ctx context.Context, id string, mutate func(*models.Incident) error) (*models.Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inc, exists := r.incidents[id]
	if !exists {
		return nil, ErrIncidentNotFound
	}

	// Mutate a copy; only publish it if mutate succeeds.
	updated := *inc
	if err := mutate(&updated); err != nil {
		return nil, err
	}

	r.incidents[id] = &updated
	out := updated
	return &out, nil
}

func (r *InMemoryRepository) DeleteIncident(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.incidents[id]; !exists {
		return ErrIncidentNotFound
	}

	delete(r.incidents, id)
	delete(r.timeline, id)
	for iocID, ioc := range r.iocs {
		if ioc.IncidentID == id {
			delete(r.iocKeys, iocKey(ioc.Type, ioc.Value))
			delete(r.iocs, iocID)
		}
	}
	return nil
}

func (r *InMemoryRepository) IncidentStats(ctx context.Context) ([]models.IncidentStat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := map[string]*models.IncidentStat{}
	for _, inc := range r.incidents {
		key := inc.Type + "|" + inc.Severity + "|" + inc.Status
		if s, ok := counts[key]; ok {
			s.Count++
			continue
		}
		counts[key] = &models.IncidentStat{
			Type:     inc.Type,
			Severity: inc.Severity,
			Status:   inc.Status,
			Count:    1,
		}
	}

	stats := []models.IncidentStat{}
	for _, s := range counts {
		stats = append(stats, *s)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Type < stats[j].Type
	})
	return stats, nil
}

func iocKey(iocType, value string) string {
	return iocType + "|" + value
}

func (r *InMemoryRepository) CreateIOC(ctx context.Context, ioc *models.IOC) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := iocKey(ioc.Type, ioc.Value)
	if _, exists := r.iocKeys[key]; exists {
		return ErrDuplicateIOC
	}

	r.iocs[ioc.ID] = ioc
	r.iocKeys[key] = ioc.ID
	return nil
}

func (r *InMemoryRepository) GetIOCByID(ctx context.Context, id string) (*models.IOC, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ioc, exists := r.iocs[id]
	if !exists {
		return nil, ErrIOCNotFound
	}
	out := *ioc
	return &out, nil
}

func (r *InMemoryRepository) ListIOCs(ctx context.Context, req *models.ListIOCsRequest) ([]*models.IOC, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []*models.IOC{}
	for _, ioc := range r.iocs {
		if req.Type != "" && ioc.Type != req.Type {
			continue
		}
		if req.IncidentID != "" && ioc.IncidentID != req.IncidentID {
			continue
		}
		if req.Search != "" {
			needle := strings.ToLower(req.Search)
			if !strings.Contains(strings.ToLower(ioc.Value), needle) &&
				!strings.Contains(strings.ToLower(ioc.Notes), needle) {
				continue
			}
		}
		out := *ioc
		matched = append(matched, &out)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (req.Page - 1) * req.Limit
	if start >= total {
		return []*models.IOC{}, total, nil
	}
	end := start + req.Limit
	if end > total {
		end = total
	}

	return matched[start:end], total, nil
}

func (r *InMemoryRepository) ListIOCsByIncident(ctx context.Context, incidentID string) ([]*models.IOC, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	iocs := []*models.IOC{}
	for _, ioc := range r.iocs {
		if ioc.IncidentID == incidentID {
			out := *ioc
			iocs = append(iocs, &out)
		}
	}

	sort.Slice(iocs, func(i, j int) bool {
		return iocs[i].CreatedAt.Before(iocs[j].CreatedAt)
	})
	return iocs, nil
}

func (r *InMemoryRepository) UpdateIOC(ctx context.Context, ioc *models.IOC) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.iocs[ioc.ID]
	if !exists {
		return ErrIOCNotFound
	}

	updated := *existing
	updated.Confidence = ioc.Confidence
	updated.Tags = ioc.Tags
	updated.Notes = ioc.Notes
	updated.IsActive = ioc.IsActive
	updated.UpdatedAt = ioc.UpdatedAt
	r.iocs[ioc.ID] = &updated
	return nil
}

func (r *InMemoryRepository) DeleteIOC(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ioc, exists := r.iocs[id]
	if !exists {
		return ErrIOCNotFound
	}

	delete(r.iocKeys, iocKey(ioc.Type, ioc.Value))
	delete(r.iocs, id)
	return nil
}

func (r *InMemoryRepository) AddTimelineEvent(ctx context.Context, ev *models.TimelineEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.timeline[ev.IncidentID] = append(r.timeline[ev.IncidentID], ev)
	return nil
}

func (r *InMemoryRepository) ListTimeline(ctx context.Context, incidentID string) ([]*models.TimelineEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := make([]*models.TimelineEvent, len(r.timeline[incidentID]))
	copy(events, r.timeline[incidentID])

	sort.Slice(events, func(i, j int) bool {
		return events[i].OccurredAt.Before(events[j].OccurredAt)
	})
	return events, nil
}

func (r *InMemoryRepository) CreateUser(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, exists := r.usersByEmail[email]; exists {
		return ErrUserExists
	}

	user.Email = email
	r.users[user.ID] = user
	r.usersByEmail[email] = user
	return nil
}

func (r *InMemoryRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.usersByEmail[strings.ToLower(email)]
	if !exists {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (r *InMemoryRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[id]
	if !exists {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (r *InMemoryRepository) ListActiveUserIDs(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := []string{}
	for _, user := range r.users {
		if user.IsActive {
			ids = append(ids, user.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *InMemoryRepository) ListActiveAdminIDs(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := []string{}
	for _, user := range r.users {
		if user.IsActive && user.IsAdmin() {
			ids = append(ids, user.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *InMemoryRepository) UpdateLastLogin(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.users[id]
	if !exists {
		return ErrUserNotFound
	}

	now := time.Now()
	user.LastLoginAt = &now
	return nil
}

func (r *InMemoryRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.notifications[n.ID] = n
	return nil
}

func (r *InMemoryRepository) ListNotifications(ctx context.Context, req *models.ListNotificationsRequest) ([]*models.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []*models.Notification{}
	for _, n := range r.notifications {
		if n.UserID != req.UserID {
			continue
		}
		if req.UnreadOnly && n.IsRead {
			continue
		}
		out := *n
		matched = append(matched, &out)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if req.Offset >= len(matched) {
		return []*models.Notification{}, nil
	}
	matched = matched[req.Offset:]
	if req.Limit > 0 && len(matched) > req.Limit {
		matched = matched[:req.Limit]
	}
	return matched, nil
}

func (r *InMemoryRepository) UnreadCount(ctx context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *InMemoryRepository) MarkNotificationRead(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, exists := r.notifications[id]
	if !exists || n.UserID != userID {
		return ErrNotificationNotFound
	}

	if !n.IsRead {
		now := time.Now()
		n.IsRead = true
		n.ReadAt = &now
	}
	return nil
}

func (r *InMemoryRepository) MarkAllNotificationsRead(ctx context.Context, userID string, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	wanted := map[string]bool{}
	for _, id := range ids {
		wanted[id] = true
	}

	now := time.Now()
	for _, n := range r.notifications {
		if n.UserID != userID || n.IsRead {
			continue
		}
		if len(wanted) > 0 && !wanted[n.ID] {
			continue
		}
		n.IsRead = true
		n.ReadAt = &now
	}
	return nil
}

func (r *InMemoryRepository) DeleteNotification(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, exists := r.notifications[id]
	if !exists || n.UserID != userID {
		return ErrNotificationNotFound
	}

	delete(r.notifications, id)
	return nil
}
