package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

const mysqlSchema = `
	CREATE TABLE IF NOT EXISTS drafts (
		id VARCHAR(64) PRIMARY KEY,
		recipient VARCHAR(320) NOT NULL,
		body TEXT NOT NULL,
		created_at BIGINT NOT NULL,
		expires_at BIGINT NOT NULL,
		INDEX idx_drafts_expires_at (expires_at),
		INDEX idx_drafts_created_at (created_at)
	)
`

// NewMySQLHistory connects to MySQL and prepares the drafts table
func NewMySQLHistory(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*SQLHistory, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	h, err := NewMySQLHistoryFromDB(db, logger, cleanupFreq)
	if err != nil {
		db.Close()
		return nil, err
	}
	return h, nil
}

// NewMySQLHistoryFromDB prepares the drafts table on an existing connection pool
func NewMySQLHistoryFromDB(db *sql.DB, logger *zap.Logger, cleanupFreq time.Duration) (*SQLHistory, error) {
	if _, err := db.Exec(mysqlSchema); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	return newSQLHistory(db, "mysql", logger, cleanupFreq), nil
}
