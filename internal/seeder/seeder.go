// Package seeder populates a repository with realistic demo data for
// development and load testing.
package seeder

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/secureops-systems/secureops/internal/models"
	"github.com/secureops-systems/secureops/internal/repository"
	"github.com/secureops-systems/secureops/internal/risk"
)

// Options controls how much demo data is generated.
type Options struct {
	Users     int
	Incidents int
	// MaxIOCs is the upper bound of indicators attached per incident.
	MaxIOCs int
	// Password is assigned to every seeded account.
	Password string
	// TimeSpread is how far back incident occurrence times reach.
	TimeSpread time.Duration
}

// DefaultOptions returns the options used by the seed command.
func DefaultOptions() Options {
	return Options{
		Users:      5,
		Incidents:  25,
		MaxIOCs:    4,
		Password:   "secureops-demo",
		TimeSpread: 30 * 24 * time.Hour,
	}
}

// Summary reports what a seeding run created.
type Summary struct {
	Users     int
	Incidents int
	IOCs      int
	Events    int
}

var (
	incidentTypes = []string{"ransomware", "phishing", "malware", "ddos", "data-breach", "defacement", "apt", "insider", "supply-chain", "other"}
	severities    = []string{"critical", "high", "medium", "low"}
	statuses      = []string{"open", "investigating", "containment", "eradication", "recovery", "resolved", "closed"}
	confidences   = []string{"low", "medium", "high"}
	roles         = []string{"admin", "analyst", "analyst", "analyst", "viewer"}
)

type Seeder struct {
	repo repository.Repository
	rng  *rand.Rand
}

func New(repo repository.Repository, seed int64) *Seeder {
	gofakeit.Seed(seed)
	return &Seeder{
		repo: repo,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// Run generates users, incidents with indicators and timelines, and a
// welcome notification per user. The first seeded user is always an
// admin with a stable email so demo logins are predictable.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.Users < 1 {
		opts.Users = 1
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash seed password: %w", err)
	}

	summary := &Summary{}
	now := time.Now()

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		user := &models.User{
			ID:           uuid.NewString(),
			Name:         gofakeit.Name(),
			PasswordHash: string(hash),
			Role:         roles[i%len(roles)],
			IsActive:     true,
			CreatedAt:    now,
		}
		if i == 0 {
			user.Email = "admin@secureops.local"
			user.Role = "admin"
		} else {
			user.Email = strings.ToLower(gofakeit.Email())
		}

		if err := s.repo.CreateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to seed user: %w", err)
		}
		users = append(users, user)
		summary.Users++
	}

	for i := 0; i < opts.Incidents; i++ {
		creator := users[s.rng.Intn(len(users))]
		occurred := now.Add(-time.Duration(s.rng.Int63n(int64(opts.TimeSpread))))

		inc := &models.Incident{
			ID:           uuid.NewString(),
			Title:        incidentTitle(),
			Description:  gofakeit.Paragraph(1, 3, 12, " "),
			Organization: gofakeit.Company(),
			OccurredAt:   occurred,
			Type:         incidentTypes[s.rng.Intn(len(incidentTypes))],
			Severity:     severities[s.rng.Intn(len(severities))],
			Status:       statuses[s.rng.Intn(len(statuses))],
			Tags:         []string{gofakeit.HackerNoun(), gofakeit.HackerAdjective()},
			CreatedBy:    creator.ID,
			CreatedAt:    occurred,
		}
		if other := users[s.rng.Intn(len(users))]; other.ID != creator.ID {
			inc.AssignedTo = &other.ID
		}
		if inc.Status == "resolved" {
			t := occurred.Add(48 * time.Hour)
			inc.ResolvedAt = &t
		}
		if inc.Status == "closed" {
			t := occurred.Add(96 * time.Hour)
			inc.ClosedAt = &t
		}
		inc.RiskScore = risk.Score(inc.Severity, inc.Type, inc.Status, inc.DaysOpen(now))

		if err := s.repo.CreateIncident(ctx, inc); err != nil {
			return nil, fmt.Errorf("failed to seed incident: %w", err)
		}
		summary.Incidents++

		ev := &models.TimelineEvent{
			ID:          uuid.NewString(),
			IncidentID:  inc.ID,
			OccurredAt:  occurred,
			Description: "Incident reported",
			EventType:   "detection",
			CreatedBy:   creator.ID,
			CreatedAt:   occurred,
		}
		if err := s.repo.AddTimelineEvent(ctx, ev); err != nil {
			return nil, fmt.Errorf("failed to seed timeline event: %w", err)
		}
		summary.Events++

		for j := 0; j < s.rng.Intn(opts.MaxIOCs+1); j++ {
			ioc := s.randomIOC(inc.ID, creator.ID, occurred)
			if err := s.repo.CreateIOC(ctx, ioc); err != nil {
				// random values can collide on the (type, value) key
				continue
			}
			summary.IOCs++
		}
	}

	for _, user := range users {
		n := &models.Notification{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			Type:      "system",
			Title:     "Welcome to SecureOps",
			Message:   "Demo data has been loaded into your workspace.",
			Severity:  "info",
			CreatedAt: now,
		}
		if err := s.repo.CreateNotification(ctx, n); err != nil {
			return nil, fmt.Errorf("failed to seed notification: %w", err)
		}
	}

	return summary, nil
}

func (s *Seeder) randomIOC(incidentID, userID string, createdAt time.Time) *models.IOC {
	ioc := &models.IOC{
		ID:         uuid.NewString(),
		Confidence: confidences[s.rng.Intn(len(confidences))],
		Tags:       []string{gofakeit.HackerNoun()},
		IsActive:   s.rng.Intn(10) > 1,
		IncidentID: incidentID,
		CreatedBy:  userID,
		CreatedAt:  createdAt,
	}

	switch s.rng.Intn(5) {
	case 0:
		ioc.Type = "ip"
		ioc.Value = gofakeit.IPv4Address()
	case 1:
		ioc.Type = "domain"
		ioc.Value = strings.ToLower(gofakeit.DomainName())
	case 2:
		ioc.Type = "hash"
		ioc.Value = strings.ToLower(gofakeit.HexUint256()[2:])
	case 3:
		ioc.Type = "email"
		ioc.Value = strings.ToLower(gofakeit.Email())
	default:
		ioc.Type = "url"
		ioc.Value = strings.ToLower(gofakeit.URL())
	}

	ioc.Normalize()
	return ioc
}

func incidentTitle() string {
	return fmt.Sprintf("%s %s on %s",
		gofakeit.HackerAdjective(), gofakeit.HackerNoun(), gofakeit.AppName())
}
