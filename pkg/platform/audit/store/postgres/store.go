package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	audit "smartbin/pkg/platform/audit"
	"smartbin/pkg/platform/audit/store/postgres/migrations"
)

// Store implements audit.Store on an audit_events table.
type Store struct {
	db *sql.DB
}

// New wraps an existing handle. Call Migrate before first use.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects through the pgx driver and applies migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping audit db: %w", err)
	}
	s := New(db)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Migrate(ctx context.Context) error {
	provider, err := goose.NewProvider(goose.DialectPostgres, s.db, migrations.FS)
	if err != nil {
		return fmt.Errorf("audit migrations: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("apply audit migrations: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Append is idempotent on event ID.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO audit_events (
			id, category, timestamp, user_id, actor_id, action,
			subject, reason, email, request_id, device, client_ip
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		string(event.Category),
		event.Timestamp,
		event.UserID,
		event.ActorID,
		event.Action,
		event.Subject,
		event.Reason,
		event.Email,
		event.RequestID,
		event.Device,
		event.ClientIP,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

const selectColumns = `
	SELECT id, category, timestamp, user_id, actor_id, action,
		   subject, reason, email, request_id, device, client_ip
	FROM audit_events
`

func (s *Store) ListByUser(ctx context.Context, userID string) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` WHERE user_id = $1 ORDER BY timestamp DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListRecent returns the N most recent events.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY timestamp DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event
	for rows.Next() {
		var (
			e        audit.Event
			category string
		)
		if err := rows.Scan(
			&e.ID, &category, &e.Timestamp, &e.UserID, &e.ActorID, &e.Action,
			&e.Subject, &e.Reason, &e.Email, &e.RequestID, &e.Device, &e.ClientIP,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Category = audit.EventCategory(category)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
