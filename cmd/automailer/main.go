package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lifeflow/automailer/internal/core"
	"github.com/lifeflow/automailer/internal/di"
	"github.com/lifeflow/automailer/internal/factory"
	"github.com/lifeflow/automailer/internal/ports"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	frontend ports.DraftFrontend,
	provider core.TextGenerationProvider,
	history factory.HistoryStore,
) error {
	defer logger.Sync()

	if err := frontend.Start(); err != nil {
		logger.Error("Failed to start frontend", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("Shutting down...", zap.String("signal", sig.String()))

	if err := frontend.Stop(); err != nil {
		logger.Error("Failed to stop frontend", zap.Error(err))
	}

	// Close any resources that need closing
	if closer, ok := provider.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close text generation provider", zap.Error(err))
		}
	}

	if history != nil {
		if err := history.Close(); err != nil {
			logger.Error("Failed to close draft history", zap.Error(err))
		}
	}

	logger.Info("Shutdown complete")
	return nil
}
