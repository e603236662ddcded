package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Attempt is one booking request and how the upstream agent answered it.
type Attempt struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Variant   string    `json:"variant"`
	Service   string    `json:"service"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Outcome   string    `json:"outcome"`
	Reply     string    `json:"reply"`
	CreatedAt time.Time `json:"createdAt"`
}

// AttemptLog keeps an audit trail of booking attempts.
type AttemptLog interface {
	Record(ctx context.Context, a Attempt) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]Attempt, error)
}

// NopAttemptLog discards attempts. Used when no database is configured.
type NopAttemptLog struct{}

func (NopAttemptLog) Record(context.Context, Attempt) error { return nil }

func (NopAttemptLog) ListBySession(context.Context, string, int) ([]Attempt, error) {
	return []Attempt{}, nil
}

type pgxDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresAttemptLog stores attempts in the booking_attempts table.
type PostgresAttemptLog struct {
	db pgxDB
}

func NewPostgresAttemptLog(db pgxDB) *PostgresAttemptLog {
	if db == nil {
		panic("booking: pgx pool required")
	}
	return &PostgresAttemptLog{db: db}
}

func (l *PostgresAttemptLog) Record(ctx context.Context, a Attempt) error {
	query := `
		INSERT INTO booking_attempts (id, session_id, variant, service, slot_date, slot_time, outcome, reply, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if _, err := l.db.Exec(ctx, query,
		a.ID,
		a.SessionID,
		a.Variant,
		a.Service,
		a.Date,
		a.Time,
		a.Outcome,
		a.Reply,
		a.CreatedAt,
	); err != nil {
		return fmt.Errorf("booking: insert attempt failed: %w", err)
	}
	return nil
}

func (l *PostgresAttemptLog) ListBySession(ctx context.Context, sessionID string, limit int) ([]Attempt, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := `
		SELECT id, session_id, variant, service, slot_date, slot_time, outcome, reply, created_at
		FROM booking_attempts
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := l.db.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("booking: select attempts failed: %w", err)
	}
	defer rows.Close()

	out := []Attempt{}
	for rows.Next() {
		var a Attempt
		if err := rows.Scan(
			&a.ID,
			&a.SessionID,
			&a.Variant,
			&a.Service,
			&a.Date,
			&a.Time,
			&a.Outcome,
			&a.Reply,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("booking: scan attempt failed: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("booking: iterate attempts failed: %w", err)
	}
	return out, nil
}
