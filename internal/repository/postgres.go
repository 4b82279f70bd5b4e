package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/secureops-systems/secureops/internal/models"
)

const uniqueViolation = "23505"

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, connString string) (*PostgresRepository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// CreateIncident inserts a new incident, assigning its code from a
// per-year sequence. The count and insert run in one transaction so
// concurrent creates cannot mint the same code.
func (r *PostgresRepository) CreateIncident(ctx context.Context, inc *models.Incident) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	year := inc.CreatedAt.Year()
	var seq int
	if err := tx.QueryRow(ctx,
		"SELECT COUNT(*) + 1 FROM incidents WHERE code LIKE $1",
		fmt.Sprintf("INC-%d-%%", year),
	).Scan(&seq); err != nil {
		return fmt.Errorf("failed to allocate incident code: %w", err)
	}
	inc.Code = fmt.Sprintf("INC-%d-%04d", year, seq)

	query := `
		INSERT INTO incidents (
			id, code, title, description, organization, occurred_at,
			type, severity, status, risk_score, tags, created_by,
			assigned_to, resolved_at, closed_at, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err = tx.Exec(ctx, query,
		inc.ID, inc.Code, inc.Title, inc.Description, inc.Organization, inc.OccurredAt,
		inc.Type, inc.Severity, inc.Status, inc.RiskScore, inc.Tags, inc.CreatedBy,
		inc.AssignedTo, inc.ResolvedAt, inc.ClosedAt, inc.CreatedAt, inc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("incident code collision for %s: %w", inc.Code, err)
		}
		return fmt.Errorf("failed to create incident: %w", err)
	}

	return tx.Commit(ctx)
}

const incidentColumns = `
	i.id, i.code, i.title, i.description, i.organization, i.occurred_at,
	i.type, i.severity, i.status, i.risk_score, i.tags, i.created_by,
	i.assigned_to, i.resolved_at, i.closed_at, i.created_at, i.updated_at
`

func scanIncident(row pgx.Row, withIOCCount bool) (*models.Incident, error) {
	inc := &models.Incident{}
	dest := []interface{}{
		&inc.ID, &inc.Code, &inc.Title, &inc.Description, &inc.Organization, &inc.OccurredAt,
		&inc.Type, &inc.Severity, &inc.Status, &inc.RiskScore, &inc.Tags, &inc.CreatedBy,
		&inc.AssignedTo, &inc.ResolvedAt, &inc.ClosedAt, &inc.CreatedAt, &inc.UpdatedAt,
	}
	if withIOCCount {
		dest = append(dest, &inc.IOCCount)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return inc, nil
}

// GetIncidentByID retrieves an incident by ID with its IOC count
func (r *PostgresRepository) GetIncidentByID(ctx context.Context, id string) (*models.Incident, error) {
	query := fmt.Sprintf(`
		SELECT %s, COUNT(o.id) as ioc_count
		FROM incidents i
		LEFT JOIN iocs o ON i.id = o.incident_id
		WHERE i.id = $1
		GROUP BY i.id
	`, incidentColumns)

	inc, err := scanIncident(r.pool.QueryRow(ctx, query, id), true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIncidentNotFound
		}
		return nil, fmt.Errorf("failed to get incident: %w", err)
	}

	return inc, nil
}

// ListIncidents retrieves a paginated, filtered list of incidents
func (r *PostgresRepository) ListIncidents(ctx context.Context, req *models.ListIncidentsRequest) ([]*models.Incident, int, error) {
	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argPos := 1

	if req.Status != "" {
		whereClause += fmt.Sprintf(" AND i.status = $%d", argPos)
		args = append(args, req.Status)
		argPos++
	}
	if req.Severity != "" {
		whereClause += fmt.Sprintf(" AND i.severity = $%d", argPos)
		args = append(args, req.Severity)
		argPos++
	}
	if req.Type != "" {
		whereClause += fmt.Sprintf(" AND i.type = $%d", argPos)
		args = append(args, req.Type)
		argPos++
	}
	if req.Search != "" {
		whereClause += fmt.Sprintf(" AND (i.title ILIKE $%d OR i.description ILIKE $%d OR i.code ILIKE $%d)", argPos, argPos, argPos)
		args = append(args, "%"+req.Search+"%")
		argPos++
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM incidents i %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count incidents: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	args = append(args, req.Limit, offset)

	query := fmt.Sprintf(`
		SELECT %s, COUNT(o.id) as ioc_count
		FROM incidents i
		LEFT JOIN iocs o ON i.id = o.incident_id
		%s
		GROUP BY i.id
		ORDER BY i.created_at DESC
		LIMIT $%d OFFSET $%d
	`, incidentColumns, whereClause, argPos, argPos+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer rows.Close()

	incidents := []*models.Incident{}
	for rows.Next() {
		inc, err := scanIncident(rows, true)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan incident: %w", err)
		}
		incidents = append(incidents, inc)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("row iteration error: %w", err)
	}

	return incidents, total, nil
}

// ListRecentIncidents retrieves the most recently created incidents
func (r *PostgresRepository) ListRecentIncidents(ctx context.Context, limit int) ([]*models.Incident, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM incidents i
		ORDER BY i.created_at DESC
		LIMIT $1
	`, incidentColumns)

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent incidents: %w", err)
	}
	defer rows.Close()

	incidents := []*models.Incident{}
	for rows.Next() {
		inc, err := scanIncident(rows, false)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident: %w", err)
		}
		incidents = append(incidents, inc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return incidents, nil
}

// MutateIncident applies mutate to the incident under a row lock and
// writes back every mutable field, so derived values (risk score,
// resolution timestamps) are never observable out of sync with the
// fields they derive from.
func (r *PostgresRepository) MutateIncident(ctx context.Context, id string, mutate func(*models.Incident) error) (*models.Incident, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := fmt.Sprintf(`
		SELECT %s
		FROM incidents i
		WHERE i.id = $1
		FOR UPDATE
	`, incidentColumns)

	inc, err := scanIncident(tx.QueryRow(ctx, query, id), false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIncidentNotFound
		}
		return nil, fmt.Errorf("failed to lock incident: %w", err)
	}

	if err := mutate(inc); err != nil {
		return nil, err
	}

	updateQuery := `
		UPDATE incidents
		SET title = $2, description = $3, organization = $4, occurred_at = $5,
			type = $6, severity = $7, status = $8, risk_score = $9, tags = $10,
			assigned_to = $11, resolved_at = $12, closed_at = $13, updated_at = $14
		WHERE id = $1
	`

	if _, err := tx.Exec(ctx, updateQuery,
		inc.ID, inc.Title, inc.Description, inc.Organization, inc.OccurredAt,
		inc.Type, inc.Severity, inc.Status, inc.RiskScore, inc.Tags,
		inc.AssignedTo, inc.ResolvedAt, inc.ClosedAt, inc.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to update incident: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit incident update: %w", err)
	}

	return inc, nil
}

// DeleteIncident removes an incident and, via cascade, its IOCs and
// timeline entries
func (r *PostgresRepository) DeleteIncident(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, "DELETE FROM incidents WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete incident: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrIncidentNotFound
	}

	return nil
}

// IncidentStats retrieves incident counts grouped by type, severity and status
func (r *PostgresRepository) IncidentStats(ctx context.Context) ([]models.IncidentStat, error) {
	query := `
		SELECT type, severity, status, COUNT(*) as count
		FROM incidents
		GROUP BY type, severity, status
		ORDER BY count DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get incident stats: %w", err)
	}
	defer rows.Close()

	stats := []models.IncidentStat{}
	for rows.Next() {
		var s models.IncidentStat
		if err := rows.Scan(&s.Type, &s.Severity, &s.Status, &s.Count); err != nil {
			return nil, fmt.Errorf("failed to scan incident stat: %w", err)
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return stats, nil
}

// CreateIOC inserts a new indicator
func (r *PostgresRepository) CreateIOC(ctx context.Context, ioc *models.IOC) error {
	query := `
		INSERT INTO iocs (
			id, type, value, hash_type, confidence, tags, notes,
			is_active, incident_id, created_by, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		ioc.ID, ioc.Type, ioc.Value, ioc.HashType, ioc.Confidence, ioc.Tags, ioc.Notes,
		ioc.IsActive, ioc.IncidentID, ioc.CreatedBy, ioc.CreatedAt, ioc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateIOC
		}
		return fmt.Errorf("failed to create IOC: %w", err)
	}

	return nil
}

const iocColumns = `
	id, type, value, hash_type, confidence, tags, notes,
	is_active, incident_id, created_by, created_at, updated_at
`

func scanIOC(row pgx.Row) (*models.IOC, error) {
	ioc := &models.IOC{}
	err := row.Scan(
		&ioc.ID, &ioc.Type, &ioc.Value, &ioc.HashType, &ioc.Confidence, &ioc.Tags, &ioc.Notes,
		&ioc.IsActive, &ioc.IncidentID, &ioc.CreatedBy, &ioc.CreatedAt, &ioc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return ioc, nil
}

// GetIOCByID retrieves an indicator by ID
func (r *PostgresRepository) GetIOCByID(ctx context.Context, id string) (*models.IOC, error) {
	query := fmt.Sprintf("SELECT %s FROM iocs WHERE id = $1", iocColumns)

	ioc, err := scanIOC(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIOCNotFound
		}
		return nil, fmt.Errorf("failed to get IOC: %w", err)
	}

	return ioc, nil
}

// ListIOCs retrieves a paginated, filtered list of indicators
func (r *PostgresRepository) ListIOCs(ctx context.Context, req *models.ListIOCsRequest) ([]*models.IOC, int, error) {
	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argPos := 1

	if req.Type != "" {
		whereClause += fmt.Sprintf(" AND type = $%d", argPos)
		args = append(args, req.Type)
		argPos++
	}
	if req.IncidentID != "" {
		whereClause += fmt.Sprintf(" AND incident_id = $%d", argPos)
		args = append(args, req.IncidentID)
		argPos++
	}
	if req.Search != "" {
		whereClause += fmt.Sprintf(" AND (value ILIKE $%d OR notes ILIKE $%d)", argPos, argPos)
		args = append(args, "%"+req.Search+"%")
		argPos++
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM iocs %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count IOCs: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	args = append(args, req.Limit, offset)

	query := fmt.Sprintf(`
		SELECT %s
		FROM iocs
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, iocColumns, whereClause, argPos, argPos+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list IOCs: %w", err)
	}
	defer rows.Close()

	iocs := []*models.IOC{}
	for rows.Next() {
		ioc, err := scanIOC(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan IOC: %w", err)
		}
		iocs = append(iocs, ioc)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("row iteration error: %w", err)
	}

	return iocs, total, nil
}

// ListIOCsByIncident retrieves every indicator attached to an incident
func (r *PostgresRepository) ListIOCsByIncident(ctx context.Context, incidentID string) ([]*models.IOC, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM iocs
		WHERE incident_id = $1
		ORDER BY created_at ASC
	`, iocColumns)

	rows, err := r.pool.Query(ctx, query, incidentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list incident IOCs: %w", err)
	}
	defer rows.Close()

	iocs := []*models.IOC{}
	for rows.Next() {
		ioc, err := scanIOC(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan IOC: %w", err)
		}
		iocs = append(iocs, ioc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return iocs, nil
}

// UpdateIOC updates the mutable fields of an indicator
func (r *PostgresRepository) UpdateIOC(ctx context.Context, ioc *models.IOC) error {
	query := `
		UPDATE iocs
		SET confidence = $2, tags = $3, notes = $4, is_active = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		ioc.ID, ioc.Confidence, ioc.Tags, ioc.Notes, ioc.IsActive, ioc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update IOC: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrIOCNotFound
	}

	return nil
}

// DeleteIOC removes an indicator
func (r *PostgresRepository) DeleteIOC(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, "DELETE FROM iocs WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete IOC: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrIOCNotFound
	}

	return nil
}

// AddTimelineEvent appends an entry to an incident's timeline
func (r *PostgresRepository) AddTimelineEvent(ctx context.Context, ev *models.TimelineEvent) error {
	query := `
		INSERT INTO timeline_events (id, incident_id, occurred_at, description, event_type, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		ev.ID, ev.IncidentID, ev.OccurredAt, ev.Description, ev.EventType, ev.CreatedBy, ev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add timeline event: %w", err)
	}

	return nil
}

// ListTimeline retrieves an incident's timeline in chronological order
func (r *PostgresRepository) ListTimeline(ctx context.Context, incidentID string) ([]*models.TimelineEvent, error) {
	query := `
		SELECT id, incident_id, occurred_at, description, event_type, created_by, created_at
		FROM timeline_events
		WHERE incident_id = $1
		ORDER BY occurred_at ASC
	`

	rows, err := r.pool.Query(ctx, query, incidentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list timeline: %w", err)
	}
	defer rows.Close()

	events := []*models.TimelineEvent{}
	for rows.Next() {
		ev := &models.TimelineEvent{}
		if err := rows.Scan(&ev.ID, &ev.IncidentID, &ev.OccurredAt, &ev.Description, &ev.EventType, &ev.CreatedBy, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan timeline event: %w", err)
		}
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return events, nil
}

// CreateUser inserts a new user account
func (r *PostgresRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, name, password_hash, role, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID, strings.ToLower(user.Email), user.Name, user.PasswordHash,
		user.Role, user.IsActive, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

const userColumns = "id, email, name, password_hash, role, is_active, last_login_at, created_at"

func scanUser(row pgx.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.IsActive, &u.LastLoginAt, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByEmail retrieves a user by email address
func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE email = $1", userColumns)

	u, err := scanUser(r.pool.QueryRow(ctx, query, strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

// GetUserByID retrieves a user by ID
func (r *PostgresRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userColumns)

	u, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

func (r *PostgresRepository) listUserIDs(ctx context.Context, query string) ([]string, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return ids, nil
}

// ListActiveUserIDs retrieves the IDs of all active users
func (r *PostgresRepository) ListActiveUserIDs(ctx context.Context) ([]string, error) {
	return r.listUserIDs(ctx, "SELECT id FROM users WHERE is_active = true")
}

// ListActiveAdminIDs retrieves the IDs of all active admin users
func (r *PostgresRepository) ListActiveAdminIDs(ctx context.Context) ([]string, error) {
	return r.listUserIDs(ctx, "SELECT id FROM users WHERE is_active = true AND role = 'admin'")
}

// UpdateLastLogin stamps the user's last successful login
func (r *PostgresRepository) UpdateLastLogin(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, "UPDATE users SET last_login_at = $1 WHERE id = $2", time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// CreateNotification inserts a notification for a single user
func (r *PostgresRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, type, title, message, severity, is_read, read_at, incident_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		n.ID, n.UserID, n.Type, n.Title, n.Message, n.Severity,
		n.IsRead, n.ReadAt, n.IncidentID, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// ListNotifications retrieves a user's notifications, newest first
func (r *PostgresRepository) ListNotifications(ctx context.Context, req *models.ListNotificationsRequest) ([]*models.Notification, error) {
	whereClause := "WHERE user_id = $1"
	args := []interface{}{req.UserID}
	argPos := 2

	if req.UnreadOnly {
		whereClause += " AND is_read = false"
	}

	args = append(args, req.Limit, req.Offset)
	query := fmt.Sprintf(`
		SELECT id, user_id, type, title, message, severity, is_read, read_at, incident_id, created_at
		FROM notifications
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []*models.Notification{}
	for rows.Next() {
		n := &models.Notification{}
		if err := rows.Scan(
			&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Severity,
			&n.IsRead, &n.ReadAt, &n.IncidentID, &n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return notifications, nil
}

// UnreadCount counts a user's unread notifications
func (r *PostgresRepository) UnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = false",
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return count, nil
}

// MarkNotificationRead marks one of the user's notifications as read.
// Marking an already-read notification is a no-op, not an error.
func (r *PostgresRepository) MarkNotificationRead(ctx context.Context, id, userID string) error {
	query := `
		UPDATE notifications
		SET is_read = true, read_at = COALESCE(read_at, $3)
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.pool.Exec(ctx, query, id, userID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}

	return nil
}

// MarkAllNotificationsRead marks the given notifications (or, with no
// IDs, all of the user's notifications) as read
func (r *PostgresRepository) MarkAllNotificationsRead(ctx context.Context, userID string, ids []string) error {
	query := `
		UPDATE notifications
		SET is_read = true, read_at = COALESCE(read_at, $2)
		WHERE user_id = $1 AND is_read = false
	`
	args := []interface{}{userID, time.Now()}

	if len(ids) > 0 {
		query += " AND id = ANY($3)"
		args = append(args, ids)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}

	return nil
}

// DeleteNotification removes one of the user's notifications
func (r *PostgresRepository) DeleteNotification(ctx context.Context, id, userID string) error {
	result, err := r.pool.Exec(ctx, "DELETE FROM notifications WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}

	return nil
}
