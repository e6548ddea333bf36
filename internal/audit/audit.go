// Package audit keeps a best-effort log of booking attempts in Postgres.
// The calendar provider remains the sole source of truth for what is
// booked; this table is never read during availability or booking. It
// exists so an operator can verify what actually happened after an
// ambiguous insert failure.
package audit

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	StatusConfirmed = "confirmed"
	StatusFailed    = "failed"
	StatusAmbiguous = "ambiguous"
)

type Attempt struct {
	Reference string
	Name      string
	Email     string
	Date      string
	Time      string
	StartUTC  time.Time
	EndUTC    time.Time
	Status    string
	EventID   string
	Detail    string
}

// Recorder records one booking attempt. Implementations must be safe to
// call concurrently.
type Recorder interface {
	Record(ctx context.Context, a Attempt) error
}

// PGRecorder writes attempts to the booking_attempts table.
type PGRecorder struct {
	DB *pgxpool.Pool
}

func NewPGRecorder(pool *pgxpool.Pool) *PGRecorder {
	return &PGRecorder{DB: pool}
}

func (r *PGRecorder) Record(ctx context.Context, a Attempt) error {
	q := `INSERT INTO booking_attempts
          (id, reference, name, email, slot_date, slot_time, start_at_utc, end_at_utc, status, event_id, detail, created_at)
          VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())`
	_, err := r.DB.Exec(ctx, q,
		a.Reference, a.Name, a.Email, a.Date, a.Time,
		a.StartUTC, a.EndUTC, a.Status, a.EventID, a.Detail)
	return err
}

// Nop is used when no database is configured.
type Nop struct{}

func (Nop) Record(ctx context.Context, a Attempt) error { return nil }
