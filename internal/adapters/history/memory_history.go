package history

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lifeflow/automailer/internal/core"
	"go.uber.org/zap"
)

// MemoryHistory is an in-memory implementation of the DraftHistory interface
type MemoryHistory struct {
	entries  map[string]*core.DraftRecord
	mu       sync.RWMutex
	logger   *zap.Logger
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewMemoryHistory creates a new in-memory draft history
func NewMemoryHistory(logger *zap.Logger, cleanupFreq time.Duration) *MemoryHistory {
	h := &MemoryHistory{
		entries: make(map[string]*core.DraftRecord),
		logger:  logger,
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}

	go startCleanupTask(h, cleanupFreq, h.stopCh, h.done, logger)

	return h
}

// Record stores a copy of the draft
func (h *MemoryHistory) Record(ctx context.Context, record *core.DraftRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	stored := *record
	h.entries[record.ID] = &stored
	return nil
}

// Recent returns up to limit unexpired drafts, newest first
func (h *MemoryHistory) Recent(ctx context.Context, limit int) ([]*core.DraftRecord, error) {
	if limit <= 0 {
		return []*core.DraftRecord{}, nil
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	now := time.Now()
	records := make([]*core.DraftRecord, 0, len(h.entries))
	for _, entry := range h.entries {
		if entry.Expired(now) {
			continue
		}
		r := *entry
		records = append(records, &r)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Delete removes a draft
func (h *MemoryHistory) Delete(ctx context.Context, id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.entries, id)
	return nil
}

// Cleanup removes expired drafts
func (h *MemoryHistory) Cleanup(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	expiredCount := 0
	for id, entry := range h.entries {
		if entry.Expired(now) {
			delete(h.entries, id)
			expiredCount++
		}
	}

	h.logger.Debug("Cleaned up expired drafts", zap.Int("expired_count", expiredCount))
	return nil
}

// Close stops the background cleanup task
func (h *MemoryHistory) Close() error {
	h.stopOnce.Do(func() { close(h.stopCh) })
	<-h.done
	return nil
}
