package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/lifeflow/automailer/internal/adapters/mailer"
	"github.com/lifeflow/automailer/internal/config"
	"github.com/lifeflow/automailer/internal/core"
	"github.com/lifeflow/automailer/internal/factory"
	"github.com/lifeflow/automailer/internal/logging"
	"github.com/lifeflow/automailer/internal/ports"
	"github.com/lifeflow/automailer/internal/utils"
)

// BuildContainer creates and configures a dependency injection container for the server
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideGeneration(container); err != nil {
		return nil, err
	}

	// Register history
	if err := container.Provide(factory.NewHistoryFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.HistoryFactory) (factory.HistoryStore, error) {
		return f.CreateHistory()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(store factory.HistoryStore) core.DraftHistory {
		if store == nil {
			return nil
		}
		return store
	}); err != nil {
		return nil, err
	}

	// Register delivery
	if err := container.Provide(mailer.NewFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *mailer.Factory) (core.DraftSender, error) {
		return f.CreateSender()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *mailer.Factory) (core.RecipientPolicy, error) {
		return f.CreatePolicy()
	}); err != nil {
		return nil, err
	}

	// Register draft service
	if err := container.Provide(func(
		composer *core.EmailComposer,
		history core.DraftHistory,
		sender core.DraftSender,
		policy core.RecipientPolicy,
		f *factory.HistoryFactory,
		logger *zap.Logger,
	) (*core.DraftService, error) {
		ttl, err := f.GetTTL()
		if err != nil {
			return nil, err
		}
		return core.NewDraftService(composer, history, sender, policy, logger, ttl), nil
	}); err != nil {
		return nil, err
	}

	if err := provideFrontend(container); err != nil {
		return nil, err
	}

	return container, nil
}

// provideGeneration registers the text processor, the provider and the composer
func provideGeneration(container *dig.Container) error {
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return err
	}
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.LLMFactory) (core.TextGenerationProvider, error) {
		return f.CreateProvider()
	}); err != nil {
		return err
	}
	return container.Provide(func(
		provider core.TextGenerationProvider,
		f *factory.LLMFactory,
		logger *zap.Logger,
	) (*core.EmailComposer, error) {
		timeout, err := f.GetTimeout()
		if err != nil {
			return nil, err
		}
		return core.NewEmailComposer(provider, logger, timeout), nil
	})
}

// provideFrontend registers the frontend selected by server.frontend
func provideFrontend(container *dig.Container) error {
	if err := container.Provide(factory.NewFrontendFactory); err != nil {
		return err
	}
	return container.Provide(func(f *factory.FrontendFactory) (ports.DraftFrontend, error) {
		return f.CreateFrontend()
	})
}
