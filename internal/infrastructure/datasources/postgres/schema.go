package postgres

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/gorm"
)

// schemaStatements are safe to run on every boot and from several processes at once.
var schemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`,
	`CREATE TABLE IF NOT EXISTS users (
		id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		email text UNIQUE NOT NULL,
		password_hash text NOT NULL,
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
	`ALTER TABLE users ADD COLUMN IF NOT EXISTS terms_accepted_at timestamptz`,
	`ALTER TABLE users ADD COLUMN IF NOT EXISTS email_verified_at timestamptz`,
	`ALTER TABLE users ADD COLUMN IF NOT EXISTS email_verification_code text`,
	`ALTER TABLE users ADD COLUMN IF NOT EXISTS email_verification_expires_at timestamptz`,
	`ALTER TABLE users ADD COLUMN IF NOT EXISTS email_verification_sent_at timestamptz`,
	`ALTER TABLE users ADD COLUMN IF NOT EXISTS notifications_enabled boolean NOT NULL DEFAULT true`,
	`ALTER TABLE users ADD COLUMN IF NOT EXISTS marketing_enabled boolean NOT NULL DEFAULT true`,
	`CREATE TABLE IF NOT EXISTS vehicles (
		id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		vin text,
		tp text,
		orv text,
		title text,
		brand text,
		model text,
		snapshot jsonb,
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
	`ALTER TABLE vehicles ADD COLUMN IF NOT EXISTS title text`,
	`CREATE UNIQUE INDEX IF NOT EXISTS vehicles_user_vin_unique ON vehicles(user_id, vin) WHERE vin IS NOT NULL`,
	`CREATE TABLE IF NOT EXISTS reminders (
		id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		vehicle_id uuid NOT NULL REFERENCES vehicles(id) ON DELETE CASCADE,
		type text NOT NULL,
		due_date date NOT NULL,
		note text,
		is_done boolean NOT NULL DEFAULT false,
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS reminders_user_due_idx ON reminders(user_id, due_date)`,
	`ALTER TABLE reminders ADD COLUMN IF NOT EXISTS email_enabled boolean NOT NULL DEFAULT true`,
	`ALTER TABLE reminders ADD COLUMN IF NOT EXISTS email_send_at date`,
	`ALTER TABLE reminders ADD COLUMN IF NOT EXISTS email_sent_at timestamptz`,
	`CREATE INDEX IF NOT EXISTS reminders_email_send_idx ON reminders(email_send_at) WHERE email_enabled = true`,
}

var execStatement = func(ctx context.Context, db *gorm.DB, stmt string) error {
	return db.WithContext(ctx).Exec(stmt).Error
}

// Schema brings the database up to date once per process.
type Schema struct {
	db    *gorm.DB
	mu    sync.Mutex
	ready bool
}

// NewSchema creates a schema guard for db
func NewSchema(db *gorm.DB) *Schema {
	return &Schema{db: db}
}

// Ensure runs the schema statements until one succeeds end to end.
// A failed attempt leaves the guard open so the next call retries.
func (s *Schema) Ensure(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		return nil
	}
	for i, stmt := range schemaStatements {
		if err := execStatement(ctx, s.db, stmt); err != nil {
			return fmt.Errorf("schema statement %d failed: %w", i+1, err)
		}
	}
	s.ready = true
	return nil
}
