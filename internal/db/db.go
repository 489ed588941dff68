package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

type DB struct {
	*sql.DB
}

func New(path string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

// Migrate applies the full schema. It runs once at startup (or via the
// migrate command); statements are idempotent so re-running is safe.
func (db *DB) Migrate() error {
	migrations := []string{
		migrationCampaigns,
		migrationLeads,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

const migrationCampaigns = `
CREATE TABLE IF NOT EXISTS campaigns (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT DEFAULT '',
    status TEXT NOT NULL DEFAULT 'pending',
    merged INTEGER NOT NULL DEFAULT 0,
    processing_status TEXT NOT NULL DEFAULT 'not_sent',
    processed_at TIMESTAMP,
    process_count INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// Lead deletion cascades from campaigns in application code, not here:
// merge consolidation and campaign deletes decide per-operation what
// happens to the owned leads.
const migrationLeads = `
CREATE TABLE IF NOT EXISTS leads (
    id TEXT PRIMARY KEY,
    first_name TEXT DEFAULT '',
    last_name TEXT DEFAULT '',
    email TEXT NOT NULL,
    company TEXT DEFAULT '',
    domain TEXT DEFAULT '',
    score INTEGER NOT NULL DEFAULT 5,
    label TEXT DEFAULT '',
    description TEXT DEFAULT '',
    source TEXT DEFAULT '',
    campaign_id TEXT NOT NULL REFERENCES campaigns(id),
    active INTEGER NOT NULL DEFAULT 1,
    email_status TEXT NOT NULL DEFAULT '',
    unsubscribe_status TEXT NOT NULL DEFAULT '',
    unsubscribe_token TEXT UNIQUE NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_leads_campaign_id ON leads(campaign_id);
CREATE INDEX IF NOT EXISTS idx_leads_email ON leads(email);
CREATE INDEX IF NOT EXISTS idx_leads_token ON leads(unsubscribe_token);
`
