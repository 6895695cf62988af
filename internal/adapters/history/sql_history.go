package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/lifeflow/automailer/internal/core"
	"go.uber.org/zap"
)

// SQLHistory is a database/sql implementation of the DraftHistory interface.
// Timestamps are stored as unix nanoseconds so expiry checks are plain integer comparisons.
type SQLHistory struct {
	db       *sql.DB
	driver   string
	logger   *zap.Logger
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func newSQLHistory(db *sql.DB, driver string, logger *zap.Logger, cleanupFreq time.Duration) *SQLHistory {
	h := &SQLHistory{
		db:     db,
		driver: driver,
		logger: logger,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}

	go startCleanupTask(h, cleanupFreq, h.stopCh, h.done, logger)

	return h
}

// Record stores the draft, replacing any draft with the same ID
func (h *SQLHistory) Record(ctx context.Context, record *core.DraftRecord) error {
	_, err := h.db.ExecContext(ctx, `
		REPLACE INTO drafts (id, recipient, body, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
	`, record.ID, record.To, record.Body, record.CreatedAt.UnixNano(), record.ExpiresAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert draft: %w", err)
	}
	return nil
}

// Recent returns up to limit unexpired drafts, newest first
func (h *SQLHistory) Recent(ctx context.Context, limit int) ([]*core.DraftRecord, error) {
	if limit <= 0 {
		return []*core.DraftRecord{}, nil
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT id, recipient, body, created_at, expires_at
		FROM drafts
		WHERE expires_at > ?
		ORDER BY created_at DESC
		LIMIT ?
	`, time.Now().UnixNano(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query drafts: %w", err)
	}
	defer rows.Close()

	records := make([]*core.DraftRecord, 0, limit)
	for rows.Next() {
		var (
			r                    core.DraftRecord
			createdAt, expiresAt int64
		)
		if err := rows.Scan(&r.ID, &r.To, &r.Body, &createdAt, &expiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		r.CreatedAt = time.Unix(0, createdAt)
		r.ExpiresAt = time.Unix(0, expiresAt)
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read drafts: %w", err)
	}
	return records, nil
}

// Delete removes a draft
func (h *SQLHistory) Delete(ctx context.Context, id string) error {
	if _, err := h.db.ExecContext(ctx, `DELETE FROM drafts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}

// Cleanup removes expired drafts
func (h *SQLHistory) Cleanup(ctx context.Context) error {
	result, err := h.db.ExecContext(ctx, `DELETE FROM drafts WHERE expires_at <= ?`, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to clean up expired drafts: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		h.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		h.logger.Debug("Cleaned up expired drafts",
			zap.String("driver", h.driver),
			zap.Int64("expired_count", rowsAffected))
	}
	return nil
}

// Close stops the background cleanup task and closes the database connection
func (h *SQLHistory) Close() error {
	h.stopOnce.Do(func() { close(h.stopCh) })
	<-h.done
	if err := h.db.Close(); err != nil {
		return fmt.Errorf("failed to close %s database: %w", h.driver, err)
	}
	return nil
}
