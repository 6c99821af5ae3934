// Package store opens the document database and manages its schema.
// Two drivers are supported: sqlite3 for local development and pgx for
// PostgreSQL deployments. List-valued fields (board members, task
// assignments, attachments) are stored as JSON text columns.
package store

import (
	"context"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/minitrello/minitrello/internal/common/config"
)

// Open connects to the configured database, verifies the connection and
// creates the schema if it does not exist.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = "sqlite3"
	}

	dsn := cfg.DSN()
	if driver == "sqlite3" {
		dsn = dsn + "?_foreign_keys=on&_journal_mode=WAL"
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == "sqlite3" {
		// SQLite only supports one writer
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// initSchema creates the tables if they don't exist. The DDL sticks to
// types both sqlite3 and PostgreSQL accept.
func initSchema(ctx context.Context, db *sqlx.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		fullname TEXT NOT NULL DEFAULT '',
		avatar_url TEXT NOT NULL DEFAULT '',
		github_id TEXT NOT NULL DEFAULT '',
		github_access_token TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS otp_challenges (
		email TEXT PRIMARY KEY,
		code TEXT NOT NULL,
		expires_at TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS boards (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		owner_id TEXT NOT NULL,
		members TEXT NOT NULL DEFAULT '[]',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS invitations (
		id TEXT PRIMARY KEY,
		board_id TEXT NOT NULL,
		board_name TEXT NOT NULL,
		board_owner_id TEXT NOT NULL,
		member_id TEXT NOT NULL,
		email_member TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS cards (
		id TEXT PRIMARY KEY,
		board_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		board_id TEXT NOT NULL,
		card_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'backlog',
		priority TEXT NOT NULL DEFAULT 'medium',
		deadline TIMESTAMP,
		owner_id TEXT NOT NULL,
		assigned_members TEXT NOT NULL DEFAULT '[]',
		github_attachments TEXT NOT NULL DEFAULT '[]',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_invitations_member_id ON invitations(member_id);
	CREATE INDEX IF NOT EXISTS idx_invitations_board_id ON invitations(board_id);
	CREATE INDEX IF NOT EXISTS idx_cards_board_id ON cards(board_id);
	CREATE INDEX IF NOT EXISTS idx_tasks_card_id ON tasks(card_id);
	CREATE INDEX IF NOT EXISTS idx_tasks_board_id ON tasks(board_id);
	`

	_, err := db.ExecContext(ctx, schema)
	return err
}
