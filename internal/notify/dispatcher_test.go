package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secureops-systems/secureops/internal/models"
)

type mockStore struct {
	createFunc func(ctx context.Context, n *models.Notification) error
	created    []*models.Notification
}

func (m *mockStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	if m.createFunc != nil {
		if err := m.createFunc(ctx, n); err != nil {
			return err
		}
	}
	m.created = append(m.created, n)
	return nil
}

type mockDirectory struct {
	userIDs  []string
	adminIDs []string
	err      error
}

func (m *mockDirectory) ListActiveUserIDs(ctx context.Context) ([]string, error) {
	return m.userIDs, m.err
}

func (m *mockDirectory) ListActiveAdminIDs(ctx context.Context) ([]string, error) {
	return m.adminIDs, m.err
}

type mockPublisher struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (m *mockPublisher) Publish(subject string, data []byte) error {
	if m.err != nil {
		return m.err
	}
	m.subjects = append(m.subjects, subject)
	m.payloads = append(m.payloads, data)
	return nil
}

func TestDispatchToExplicitRecipients(t *testing.T) {
	store := &mockStore{}
	dir := &mockDirectory{}
	d := NewDispatcher(store, dir, nil, nil, nil)

	incidentID := "inc-1"
	ids, err := d.Dispatch(context.Background(), Users("u1", "u2", "u1", "", "u3"), Event{
		Type:       "incident",
		Title:      "New incident",
		Message:    "Triage required",
		Severity:   "warning",
		IncidentID: &incidentID,
	})
	require.NoError(t, err)

	// Duplicates and empty IDs are dropped, order preserved
	require.Len(t, ids, 3)
	require.Len(t, store.created, 3)
	assert.Equal(t, []string{"u1", "u2", "u3"}, []string{
		store.created[0].UserID, store.created[1].UserID, store.created[2].UserID,
	})

	for _, n := range store.created {
		assert.Equal(t, "incident", n.Type)
		assert.Equal(t, "warning", n.Severity)
		assert.False(t, n.IsRead)
		require.NotNil(t, n.IncidentID)
		assert.Equal(t, "inc-1", *n.IncidentID)
	}
}

func TestDispatchToTeamAndAdmins(t *testing.T) {
	dir := &mockDirectory{
		userIDs:  []string{"u1", "u2", "u3"},
		adminIDs: []string{"u1"},
	}

	tests := []struct {
		name     string
		audience Audience
		want     int
	}{
		{"team", Team(), 3},
		{"admins", Admins(), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockStore{}
			d := NewDispatcher(store, dir, nil, nil, nil)

			ids, err := d.Dispatch(context.Background(), tt.audience, Event{Type: "system", Title: "Maintenance"})
			require.NoError(t, err)
			assert.Len(t, ids, tt.want)
			assert.Len(t, store.created, tt.want)
		})
	}
}

func TestDispatchDefaultSeverity(t *testing.T) {
	store := &mockStore{}
	d := NewDispatcher(store, &mockDirectory{}, nil, nil, nil)

	_, err := d.Dispatch(context.Background(), Users("u1"), Event{Type: "system", Title: "Hello"})
	require.NoError(t, err)
	require.Len(t, store.created, 1)
	assert.Equal(t, "info", store.created[0].Severity)
}

func TestDispatchPartialFailure(t *testing.T) {
	insertErr := errors.New("insert failed")
	store := &mockStore{
		createFunc: func(ctx context.Context, n *models.Notification) error {
			if n.UserID == "u2" {
				return insertErr
			}
			return nil
		},
	}
	d := NewDispatcher(store, &mockDirectory{}, nil, nil, nil)

	ids, err := d.Dispatch(context.Background(), Users("u1", "u2", "u3"), Event{Type: "incident", Title: "x"})

	// u1 and u3 still get their notifications
	assert.Len(t, ids, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, insertErr)
	assert.Contains(t, err.Error(), "u2")
}

func TestDispatchDirectoryError(t *testing.T) {
	dir := &mockDirectory{err: errors.New("db down")}
	d := NewDispatcher(&mockStore{}, dir, nil, nil, nil)

	_, err := d.Dispatch(context.Background(), Team(), Event{Type: "system", Title: "x"})
	assert.Error(t, err)
}

func TestDispatchPublishesEvent(t *testing.T) {
	store := &mockStore{}
	pub := &mockPublisher{}
	d := NewDispatcher(store, &mockDirectory{}, pub, nil, nil)

	_, err := d.Dispatch(context.Background(), Users("u1", "u2"), Event{Type: "incident", Title: "x"})
	require.NoError(t, err)

	require.Len(t, pub.subjects, 2)
	assert.Equal(t, SubjectUserPrefix+"u1", pub.subjects[0])
	assert.Equal(t, SubjectUserPrefix+"u2", pub.subjects[1])
	assert.Contains(t, string(pub.payloads[0]), `"title":"x"`)
}

func TestDispatchNoRecipientsSkipsPublish(t *testing.T) {
	pub := &mockPublisher{}
	d := NewDispatcher(&mockStore{}, &mockDirectory{}, pub, nil, nil)

	ids, err := d.Dispatch(context.Background(), Users(), Event{Type: "system", Title: "x"})
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Empty(t, pub.subjects)
}

func TestDispatchPublishFailureIsNotFatal(t *testing.T) {
	store := &mockStore{}
	pub := &mockPublisher{err: errors.New("nats down")}
	d := NewDispatcher(store, &mockDirectory{}, pub, nil, nil)

	ids, err := d.Dispatch(context.Background(), Users("u1"), Event{Type: "incident", Title: "x"})
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}
