package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secureops-systems/secureops/internal/attribution"
	"github.com/secureops-systems/secureops/internal/handlers"
	"github.com/secureops-systems/secureops/internal/middleware"
	"github.com/secureops-systems/secureops/internal/models"
	"github.com/secureops-systems/secureops/internal/notify"
	"github.com/secureops-systems/secureops/internal/repository"
	"github.com/secureops-systems/secureops/internal/service"
	"github.com/secureops-systems/secureops/pkg/tokens"
)

type testEnv struct {
	srv  *httptest.Server
	repo *repository.InMemoryRepository

	adminID, analystID, viewerID          string
	adminToken, analystToken, viewerToken string
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	repo := repository.NewInMemoryRepository()
	tg := tokens.NewTokenGenerator("router-test-secret", 15*time.Minute)
	engine := attribution.NewEngine(attribution.DefaultProfiles())
	dispatcher := notify.NewDispatcher(repo, repo, nil, nil, nil)

	authSvc := service.NewAuthService(repo, tg)
	incidentSvc := service.NewIncidentService(repo, dispatcher, engine, nil)
	iocSvc := service.NewIOCService(repo)
	threatSvc := service.NewThreatService(engine)
	notificationSvc := service.NewNotificationService(repo, nil, nil)
	reportSvc := service.NewReportService(incidentSvc)

	h := handlers.NewHandler(authSvc, incidentSvc, iocSvc, threatSvc, notificationSvc, reportSvc, nil)
	router := NewRouter(h, middleware.NewAuthMiddleware(tg), middleware.CORSConfig{AllowedOrigins: []string{"*"}})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	env := &testEnv{srv: srv, repo: repo}

	accounts := []struct {
		email, role string
		id, token   *string
	}{
		{"admin@example.com", "admin", &env.adminID, &env.adminToken},
		{"analyst@example.com", "analyst", &env.analystID, &env.analystToken},
		{"viewer@example.com", "viewer", &env.viewerID, &env.viewerToken},
	}
	for _, a := range accounts {
		user, err := authSvc.CreateUser(context.Background(), &models.CreateUserRequest{
			Email:    a.email,
			Name:     strings.Split(a.email, "@")[0],
			Password: "router-test-password",
			Role:     a.role,
		})
		require.NoError(t, err)
		token, err := tg.GenerateAccessToken(user.ID, user.Role)
		require.NoError(t, err)
		*a.id = user.ID
		*a.token = token
	}

	return env
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, e.srv.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func (e *testEnv) createIncident(t *testing.T, token string, req *models.CreateIncidentRequest) *models.Incident {
	t.Helper()

	resp := e.do(t, http.MethodPost, "/api/v1/incidents", token, req)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var inc models.Incident
	decodeBody(t, resp, &inc)
	return &inc
}

func TestAuthRequired(t *testing.T) {
	env := setupTestServer(t)

	resp := env.do(t, http.MethodGet, "/api/v1/incidents", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/incidents", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// health and metrics stay public
	resp = env.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoginAndMe(t *testing.T) {
	env := setupTestServer(t)

	resp := env.do(t, http.MethodPost, "/api/v1/auth/login", "", &models.LoginRequest{
		Email:    "analyst@example.com",
		Password: "router-test-password",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var login models.LoginResponse
	decodeBody(t, resp, &login)
	assert.NotEmpty(t, login.AccessToken)
	assert.Equal(t, "Bearer", login.TokenType)
	require.NotNil(t, login.User)
	assert.Equal(t, "analyst@example.com", login.User.Email)

	resp = env.do(t, http.MethodGet, "/api/v1/auth/me", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var me models.User
	decodeBody(t, resp, &me)
	assert.Equal(t, env.analystID, me.ID)

	resp = env.do(t, http.MethodPost, "/api/v1/auth/login", "", &models.LoginRequest{
		Email:    "analyst@example.com",
		Password: "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestViewerIsReadOnly(t *testing.T) {
	env := setupTestServer(t)

	resp := env.do(t, http.MethodPost, "/api/v1/incidents", env.viewerToken, &models.CreateIncidentRequest{
		Title:      "Attempted write",
		Type:       "other",
		Severity:   "low",
		OccurredAt: time.Now(),
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/incidents", env.viewerToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestIncidentLifecycle(t *testing.T) {
	env := setupTestServer(t)

	inc := env.createIncident(t, env.analystToken, &models.CreateIncidentRequest{
		Title:       "Ransomware outbreak",
		Description: "Multiple hosts encrypting files",
		Type:        "ransomware",
		Severity:    "critical",
		OccurredAt:  time.Now().Add(-2 * time.Hour),
		AssignedTo:  &env.adminID,
		IOCs: []models.IOCInput{
			{Type: "ip", Value: "203.0.113.50"},
		},
	})

	assert.Regexp(t, regexp.MustCompile(`^INC-\d{4}-\d{4}$`), inc.Code)
	assert.Equal(t, "open", inc.Status)
	assert.Equal(t, 90, inc.RiskScore)

	// detail includes indicators and the automatic detection entry
	resp := env.do(t, http.MethodGet, "/api/v1/incidents/"+inc.ID, env.viewerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var detail struct {
		models.Incident
		IOCs     []*models.IOC           `json:"iocs"`
		Timeline []*models.TimelineEvent `json:"timeline"`
	}
	decodeBody(t, resp, &detail)
	require.Len(t, detail.IOCs, 1)
	assert.Equal(t, "203.0.113.50", detail.IOCs[0].Value)
	require.Len(t, detail.Timeline, 1)
	assert.Equal(t, "detection", detail.Timeline[0].EventType)

	// admin resolves it; the analyst creator gets notified
	status := "resolved"
	resp = env.do(t, http.MethodPut, "/api/v1/incidents/"+inc.ID, env.adminToken, &models.UpdateIncidentRequest{
		Status: &status,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.Incident
	decodeBody(t, resp, &updated)
	assert.Equal(t, "resolved", updated.Status)
	require.NotNil(t, updated.ResolvedAt)

	resp = env.do(t, http.MethodGet, "/api/v1/notifications/unread-count", env.analystToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var count map[string]int
	decodeBody(t, resp, &count)
	assert.Equal(t, 1, count["count"])

	resp = env.do(t, http.MethodGet, "/api/v1/notifications", env.analystToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var feed struct {
		Notifications []*models.Notification `json:"notifications"`
	}
	decodeBody(t, resp, &feed)
	require.Len(t, feed.Notifications, 1)
	assert.Equal(t, "status_change", feed.Notifications[0].Type)

	// marking read zeroes the count
	resp = env.do(t, http.MethodPut, "/api/v1/notifications/"+feed.Notifications[0].ID+"/read", env.analystToken, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/notifications/unread-count", env.analystToken, nil)
	decodeBody(t, resp, &count)
	assert.Equal(t, 0, count["count"])
}

func TestDeleteIncidentPermissions(t *testing.T) {
	env := setupTestServer(t)

	inc := env.createIncident(t, env.analystToken, &models.CreateIncidentRequest{
		Title:      "Owned by analyst",
		Type:       "malware",
		Severity:   "medium",
		OccurredAt: time.Now(),
	})

	// a second analyst is neither admin nor creator
	other := setupSecondAnalyst(t, env)
	resp := env.do(t, http.MethodDelete, "/api/v1/incidents/"+inc.ID, other, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/api/v1/incidents/"+inc.ID, env.adminToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/incidents/"+inc.ID, env.adminToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func setupSecondAnalyst(t *testing.T, env *testEnv) string {
	t.Helper()

	tg := tokens.NewTokenGenerator("router-test-secret", 15*time.Minute)
	authSvc := service.NewAuthService(env.repo, tg)
	user, err := authSvc.CreateUser(context.Background(), &models.CreateUserRequest{
		Email:    "analyst2@example.com",
		Name:     "analyst2",
		Password: "router-test-password",
	})
	require.NoError(t, err)
	token, err := tg.GenerateAccessToken(user.ID, user.Role)
	require.NoError(t, err)
	return token
}

func TestIOCConflict(t *testing.T) {
	env := setupTestServer(t)

	inc := env.createIncident(t, env.analystToken, &models.CreateIncidentRequest{
		Title:      "C2 infrastructure",
		Type:       "malware",
		Severity:   "high",
		OccurredAt: time.Now(),
	})

	req := &models.CreateIOCRequest{Type: "domain", Value: "evil.example.com", IncidentID: inc.ID}

	resp := env.do(t, http.MethodPost, "/api/v1/iocs", env.analystToken, req)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/v1/iocs", env.analystToken, req)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// scheme and case differences normalize to the same value
	resp = env.do(t, http.MethodPost, "/api/v1/iocs", env.analystToken, &models.CreateIOCRequest{
		Type: "domain", Value: "https://EVIL.example.com/", IncidentID: inc.ID,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestThreatActorEndpoints(t *testing.T) {
	env := setupTestServer(t)

	resp := env.do(t, http.MethodGet, "/api/v1/threat-actors?country=Russia", env.viewerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list struct {
		Actors []attribution.Profile `json:"actors"`
	}
	decodeBody(t, resp, &list)
	require.Len(t, list.Actors, 2)

	resp = env.do(t, http.MethodGet, "/api/v1/threat-actors/Fancy%20Bear", env.viewerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var actor attribution.Profile
	decodeBody(t, resp, &actor)
	assert.Equal(t, "APT28", actor.Name)

	resp = env.do(t, http.MethodGet, "/api/v1/threat-actors/nobody", env.viewerToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestIncidentReportEndpoint(t *testing.T) {
	env := setupTestServer(t)

	inc := env.createIncident(t, env.analystToken, &models.CreateIncidentRequest{
		Title:       "Phishing with implants",
		Description: "Spear phishing delivering X-Agent implants",
		Type:        "phishing",
		Severity:    "high",
		OccurredAt:  time.Now(),
		IOCs: []models.IOCInput{
			{Type: "domain", Value: "acrobatrelay.com"},
		},
	})

	resp := env.do(t, http.MethodGet, "/api/v1/incidents/"+inc.ID+"/report", env.viewerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	report := string(body)
	assert.Contains(t, report, fmt.Sprintf("INCIDENT REPORT %s", inc.Code))
	assert.Contains(t, report, "ATTRIBUTION ANALYSIS")
	assert.Contains(t, report, "APT28")
}

func TestRecentAndStats(t *testing.T) {
	env := setupTestServer(t)

	for i := 0; i < 3; i++ {
		env.createIncident(t, env.analystToken, &models.CreateIncidentRequest{
			Title:      fmt.Sprintf("Incident %d", i),
			Type:       "ddos",
			Severity:   "low",
			OccurredAt: time.Now(),
		})
	}

	resp := env.do(t, http.MethodGet, "/api/v1/incidents/recent?limit=2", env.viewerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var recent struct {
		Incidents []*models.Incident `json:"incidents"`
	}
	decodeBody(t, resp, &recent)
	assert.Len(t, recent.Incidents, 2)

	resp = env.do(t, http.MethodGet, "/api/v1/incidents/stats", env.viewerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats struct {
		Stats []models.IncidentStat `json:"stats"`
	}
	decodeBody(t, resp, &stats)
	require.NotEmpty(t, stats.Stats)

	total := 0
	for _, s := range stats.Stats {
		total += s.Count
	}
	assert.Equal(t, 3, total)
}

func TestTimelineAndAttributionEndpoints(t *testing.T) {
	env := setupTestServer(t)

	inc := env.createIncident(t, env.analystToken, &models.CreateIncidentRequest{
		Title:       "APT intrusion",
		Description: "WellMess beacons to vaccine-themed infrastructure",
		Type:        "supply-chain",
		Severity:    "critical",
		OccurredAt:  time.Now(),
	})

	resp := env.do(t, http.MethodPost, "/api/v1/incidents/"+inc.ID+"/timeline", env.analystToken, &models.AddTimelineEventRequest{
		Description: "Blocked C2 egress",
		EventType:   "containment",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var ev models.TimelineEvent
	decodeBody(t, resp, &ev)
	assert.Equal(t, "containment", ev.EventType)
	assert.Equal(t, env.analystID, ev.CreatedBy)

	resp = env.do(t, http.MethodPost, "/api/v1/incidents/"+inc.ID+"/attribution", env.analystToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Matches []attribution.Match `json:"matches"`
	}
	decodeBody(t, resp, &result)
	require.NotEmpty(t, result.Matches)
	assert.Equal(t, "APT29", result.Matches[0].Actor)
}
