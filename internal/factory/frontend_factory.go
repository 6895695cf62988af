package factory

import (
	"fmt"

	"github.com/lifeflow/automailer/internal/adapters/frontend"
	"github.com/lifeflow/automailer/internal/config"
	"github.com/lifeflow/automailer/internal/core"
	"github.com/lifeflow/automailer/internal/ports"
	"github.com/lifeflow/automailer/internal/utils"
	"go.uber.org/zap"
)

// FrontendFactory creates draft frontends based on configuration
type FrontendFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	service       *core.DraftService
	textProcessor *utils.TextProcessor
}

// NewFrontendFactory creates a new frontend factory
func NewFrontendFactory(cfg *config.Config, logger *zap.Logger, service *core.DraftService, textProcessor *utils.TextProcessor) *FrontendFactory {
	return &FrontendFactory{
		cfg:           cfg,
		logger:        logger,
		service:       service,
		textProcessor: textProcessor,
	}
}

// CreateFrontend creates the frontend selected by server.frontend
func (f *FrontendFactory) CreateFrontend() (ports.DraftFrontend, error) {
	serverCfg, err := f.cfg.GetServer()
	if err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}

	switch serverCfg.Frontend {
	case "http":
		return frontend.NewHTTPFrontend(f.service, f.logger, serverCfg, f.cfg.GetInt("history.limit")), nil
	case "cli":
		return frontend.NewCLIFrontend(
			f.service,
			f.logger,
			f.textProcessor,
			f.cfg.GetBool("cli.verbose"),
			f.cfg.GetBool("cli.json"),
		), nil
	default:
		return nil, fmt.Errorf("unsupported frontend: %s", serverCfg.Frontend)
	}
}
