// Package postgres opens the application database and applies the schema.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}

// Schema is the idempotent DDL for the service. Kept in one place so the
// integration test containers and Migrate stay in sync.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	name          VARCHAR(45) NOT NULL,
	email         VARCHAR(255) NOT NULL UNIQUE,
	password_hash VARCHAR(255) NOT NULL,
	is_admin      BOOLEAN NOT NULL DEFAULT FALSE,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_users_name ON users (name);

CREATE TABLE IF NOT EXISTS exchanges (
	id         UUID PRIMARY KEY,
	name       VARCHAR(45) NOT NULL,
	date       TIMESTAMPTZ NOT NULL,
	status     VARCHAR(16) NOT NULL DEFAULT 'draft',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_exchanges_name ON exchanges (name);
CREATE INDEX IF NOT EXISTS idx_exchanges_status ON exchanges (status);

CREATE TABLE IF NOT EXISTS participants (
	user_id     UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	exchange_id UUID NOT NULL REFERENCES exchanges (id) ON DELETE CASCADE,
	gifter_id   UUID REFERENCES users (id) ON DELETE SET NULL,
	message     TEXT,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (user_id, exchange_id)
);
CREATE INDEX IF NOT EXISTS idx_participants_exchange ON participants (exchange_id);
CREATE INDEX IF NOT EXISTS idx_participants_gifter ON participants (gifter_id);
`

// Migrate applies the schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
