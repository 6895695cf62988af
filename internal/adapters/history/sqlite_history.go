package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS drafts (
		id TEXT PRIMARY KEY,
		recipient TEXT NOT NULL,
		body TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_drafts_expires_at ON drafts(expires_at);
	CREATE INDEX IF NOT EXISTS idx_drafts_created_at ON drafts(created_at);
`

// NewSQLiteHistory opens (or creates) a SQLite draft history at dbPath
func NewSQLiteHistory(dbPath string, logger *zap.Logger, cleanupFreq time.Duration) (*SQLHistory, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// A single connection keeps :memory: databases coherent
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return newSQLHistory(db, "sqlite", logger, cleanupFreq), nil
}
