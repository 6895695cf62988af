package history

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/lifeflow/automailer/internal/core"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisHistory is a Redis implementation of the DraftHistory interface.
// Each draft is a JSON string key expiring with the draft; a sorted set scored
// by creation time indexes them newest first.
type RedisHistory struct {
	client   *redis.Client
	prefix   string
	logger   *zap.Logger
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewRedisHistory connects to Redis and verifies the connection
func NewRedisHistory(addr, password string, db int, prefix string, logger *zap.Logger, cleanupFreq time.Duration) (*RedisHistory, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisHistoryFromClient(client, prefix, logger, cleanupFreq), nil
}

// NewRedisHistoryFromClient wraps an existing Redis client
func NewRedisHistoryFromClient(client *redis.Client, prefix string, logger *zap.Logger, cleanupFreq time.Duration) *RedisHistory {
	h := &RedisHistory{
		client: client,
		prefix: prefix,
		logger: logger,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}

	go startCleanupTask(h, cleanupFreq, h.stopCh, h.done, logger)

	return h
}

func (h *RedisHistory) indexKey() string {
	return h.prefix + ":drafts"
}

func (h *RedisHistory) draftKey(id string) string {
	return h.prefix + ":draft:" + id
}

// Record stores the draft until its expiry
func (h *RedisHistory) Record(ctx context.Context, record *core.DraftRecord) error {
	ttl := time.Until(record.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}

	_, err = h.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, h.draftKey(record.ID), payload, ttl)
		pipe.ZAdd(ctx, h.indexKey(), redis.Z{
			Score:  float64(record.CreatedAt.UnixMicro()),
			Member: record.ID,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store draft: %w", err)
	}
	return nil
}

// Recent returns up to limit unexpired drafts, newest first
func (h *RedisHistory) Recent(ctx context.Context, limit int) ([]*core.DraftRecord, error) {
	if limit <= 0 {
		return []*core.DraftRecord{}, nil
	}

	ids, err := h.client.ZRevRange(ctx, h.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read draft index: %w", err)
	}
	if len(ids) == 0 {
		return []*core.DraftRecord{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = h.draftKey(id)
	}
	values, err := h.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read drafts: %w", err)
	}

	now := time.Now()
	records := make([]*core.DraftRecord, 0, limit)
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}
		var r core.DraftRecord
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			h.logger.Warn("Skipping unreadable draft", zap.String("id", ids[i]), zap.Error(err))
			continue
		}
		if r.Expired(now) {
			continue
		}
		records = append(records, &r)
		if len(records) == limit {
			break
		}
	}
	return records, nil
}

// Delete removes a draft
func (h *RedisHistory) Delete(ctx context.Context, id string) error {
	_, err := h.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, h.draftKey(id))
		pipe.ZRem(ctx, h.indexKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}

// Cleanup drops index entries whose drafts have already expired
func (h *RedisHistory) Cleanup(ctx context.Context) error {
	ids, err := h.client.ZRange(ctx, h.indexKey(), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to read draft index: %w", err)
	}

	pipe := h.client.Pipeline()
	exists := make([]*redis.IntCmd, len(ids))
	for i, id := range ids {
		exists[i] = pipe.Exists(ctx, h.draftKey(id))
	}
	if len(ids) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("failed to check drafts: %w", err)
		}
	}

	stale := make([]interface{}, 0)
	for i, cmd := range exists {
		if cmd.Val() == 0 {
			stale = append(stale, ids[i])
		}
	}
	if len(stale) > 0 {
		if err := h.client.ZRem(ctx, h.indexKey(), stale...).Err(); err != nil {
			return fmt.Errorf("failed to clean up expired drafts: %w", err)
		}
	}

	h.logger.Debug("Cleaned up expired drafts", zap.String("driver", "redis"), zap.Int("expired_count", len(stale)))
	return nil
}

// Close stops the background cleanup task and closes the Redis client
func (h *RedisHistory) Close() error {
	h.stopOnce.Do(func() { close(h.stopCh) })
	<-h.done
	if err := h.client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis client: %w", err)
	}
	return nil
}
