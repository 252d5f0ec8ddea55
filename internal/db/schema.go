package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the tables on startup if they do not exist yet.
//
// appointments.slot_id deliberately carries no foreign key: deleting a
// schedule slot must leave referencing appointments intact, with the
// date/time they captured at booking time.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS patients (
			id            BIGSERIAL PRIMARY KEY,
			full_name     TEXT NOT NULL,
			age           INTEGER NOT NULL CHECK (age > 0),
			date_of_birth DATE NOT NULL,
			address       TEXT NOT NULL DEFAULT '',
			phone_number  TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS schedule_slots (
			id         BIGSERIAL PRIMARY KEY,
			slot_date  DATE NOT NULL,
			slot_time  TEXT NOT NULL,
			capacity   INTEGER NOT NULL CHECK (capacity >= 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS appointments (
			id               BIGSERIAL PRIMARY KEY,
			patient_id       BIGINT NOT NULL REFERENCES patients(id) ON DELETE CASCADE,
			slot_id          BIGINT NOT NULL,
			appointment_type TEXT NOT NULL,
			appointment_date DATE NOT NULL,
			appointment_time TEXT NOT NULL,
			status           TEXT NOT NULL DEFAULT 'pending',
			created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_patient ON appointments (patient_id)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_status ON appointments (status)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	return nil
}
