package mailer

import (
	"github.com/lifeflow/automailer/internal/config"
	"github.com/lifeflow/automailer/internal/core"
	"github.com/lifeflow/automailer/internal/whitelist"
	"go.uber.org/zap"
)

// Factory creates the outbound draft sender
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new mailer factory
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateSender returns the configured sender, or nil when delivery is disabled
func (f *Factory) CreateSender() (core.DraftSender, error) {
	smtpCfg, err := f.cfg.GetSMTP()
	if err != nil {
		return nil, err
	}
	if !smtpCfg.Enabled {
		f.logger.Info("Email delivery disabled")
		return nil, nil
	}

	m, err := NewSMTPMailer(smtpCfg, f.logger)
	if err != nil {
		return nil, err
	}
	f.logger.Info("Email delivery enabled",
		zap.String("relay", smtpCfg.Address()),
		zap.Bool("starttls", smtpCfg.StartTLS))
	return m, nil
}

// CreatePolicy returns the recipient domain policy for outbound delivery
func (f *Factory) CreatePolicy() (core.RecipientPolicy, error) {
	smtpCfg, err := f.cfg.GetSMTP()
	if err != nil {
		return nil, err
	}
	return whitelist.NewChecker(smtpCfg.AllowedDomains, f.logger), nil
}
