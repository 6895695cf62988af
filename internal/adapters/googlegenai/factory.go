package googlegenai

import (
	"context"

	"github.com/lifeflow/automailer/internal/config"
	"github.com/lifeflow/automailer/internal/core"
	"github.com/lifeflow/automailer/internal/utils"
	"go.uber.org/zap"
)

// Factory creates new instances of GenAIClient
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new factory for GenAIClient instances
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateClient creates a new GenAIClient
func (f *Factory) CreateClient() (core.TextGenerationProvider, error) {
	c := f.cfg.GetGenAI()
	return NewGenAIClient(context.Background(), Options{
		APIKey:       c.APIKey,
		Backend:      c.Backend,
		Project:      c.Project,
		Location:     c.Location,
		BaseURL:      c.BaseURL,
		ModelName:    c.ModelName,
		MaxTokens:    c.MaxTokens,
		Temperature:  c.Temperature,
		TopP:         c.TopP,
		MaxInputSize: c.MaxInputSize,
	}, f.logger, f.textProcessor)
}
