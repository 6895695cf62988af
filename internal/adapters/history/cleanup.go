package history

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// cleaner is a store whose expired drafts can be purged
type cleaner interface {
	Cleanup(ctx context.Context) error
}

// startCleanupTask purges expired drafts every freq until stopCh is closed.
// A non-positive freq disables the task.
func startCleanupTask(c cleaner, freq time.Duration, stopCh <-chan struct{}, done chan<- struct{}, logger *zap.Logger) {
	defer close(done)
	if freq <= 0 {
		return
	}

	ticker := time.NewTicker(freq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				logger.Error("Failed to clean up draft history", zap.Error(err))
			}
		case <-stopCh:
			return
		}
	}
}
