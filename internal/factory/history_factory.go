package factory

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lifeflow/automailer/internal/adapters/history"
	"github.com/lifeflow/automailer/internal/config"
	"github.com/lifeflow/automailer/internal/core"
	"go.uber.org/zap"
)

// HistoryStore is a DraftHistory that holds resources until closed
type HistoryStore interface {
	core.DraftHistory
	Close() error
}

// HistoryFactory creates draft history stores based on configuration
type HistoryFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewHistoryFactory creates a new history factory
func NewHistoryFactory(cfg *config.Config, logger *zap.Logger) *HistoryFactory {
	return &HistoryFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateHistory creates the configured store, or nil when history is disabled
func (f *HistoryFactory) CreateHistory() (HistoryStore, error) {
	historyCfg, err := f.cfg.GetHistory()
	if err != nil {
		return nil, fmt.Errorf("invalid history configuration: %w", err)
	}
	if !historyCfg.Enabled {
		f.logger.Info("Draft history disabled")
		return nil, nil
	}

	var store HistoryStore
	switch historyCfg.Type {
	case "memory":
		store = history.NewMemoryHistory(f.logger, historyCfg.CleanupFrequency)
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(historyCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		store, err = history.NewSQLiteHistory(historyCfg.SQLitePath, f.logger, historyCfg.CleanupFrequency)
	case "mysql":
		store, err = history.NewMySQLHistory(historyCfg.MySQLDSN, f.logger, historyCfg.CleanupFrequency)
	case "redis":
		store, err = history.NewRedisHistory(
			historyCfg.RedisAddr,
			historyCfg.RedisPassword,
			historyCfg.RedisDB,
			historyCfg.RedisPrefix,
			f.logger,
			historyCfg.CleanupFrequency,
		)
	default:
		return nil, fmt.Errorf("unsupported history type: %s", historyCfg.Type)
	}
	if err != nil {
		return nil, err
	}

	f.logger.Info("Draft history ready",
		zap.String("type", historyCfg.Type),
		zap.Duration("ttl", historyCfg.TTL))
	return store, nil
}

// GetTTL returns how long drafts are kept
func (f *HistoryFactory) GetTTL() (time.Duration, error) {
	historyCfg, err := f.cfg.GetHistory()
	if err != nil {
		return 0, err
	}
	return historyCfg.TTL, nil
}

// GetLimit returns the default number of drafts listed
func (f *HistoryFactory) GetLimit() int {
	return f.cfg.GetInt("history.limit")
}
