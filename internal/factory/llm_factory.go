package factory

import (
	"fmt"
	"time"

	"github.com/lifeflow/automailer/internal/adapters/bedrock"
	"github.com/lifeflow/automailer/internal/adapters/gemini"
	"github.com/lifeflow/automailer/internal/adapters/googlegenai"
	"github.com/lifeflow/automailer/internal/adapters/openai"
	"github.com/lifeflow/automailer/internal/config"
	"github.com/lifeflow/automailer/internal/core"
	"github.com/lifeflow/automailer/internal/utils"
	"go.uber.org/zap"
)

// LLMFactory creates text-generation providers
type LLMFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *LLMFactory {
	return &LLMFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateProvider creates the provider selected by llm.provider
func (f *LLMFactory) CreateProvider() (core.TextGenerationProvider, error) {
	llmConfig, err := f.cfg.GetLLM()
	if err != nil {
		return nil, err
	}

	var provider core.TextGenerationProvider
	switch llmConfig.Provider {
	case "gemini":
		provider, err = gemini.NewFactory(f.cfg, f.logger, f.textProcessor).CreateClient()
	case "genai":
		provider, err = googlegenai.NewFactory(f.cfg, f.logger, f.textProcessor).CreateClient()
	case "openai":
		provider, err = openai.NewFactory(f.cfg, f.logger, f.textProcessor).CreateClient()
	case "bedrock":
		provider, err = bedrock.NewFactory(f.cfg, f.logger, f.textProcessor).CreateClient()
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", llmConfig.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", llmConfig.Provider, err)
	}

	f.logger.Info("Text generation provider ready", zap.String("provider", provider.Name()))
	return provider, nil
}

// GetTimeout returns the per-call generation timeout
func (f *LLMFactory) GetTimeout() (time.Duration, error) {
	llmConfig, err := f.cfg.GetLLM()
	if err != nil {
		return 0, err
	}
	return llmConfig.Timeout, nil
}
