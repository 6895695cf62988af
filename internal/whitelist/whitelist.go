package whitelist

import (
	"strings"

	"go.uber.org/zap"
)

// Checker restricts outbound delivery to a set of recipient domains
type Checker struct {
	domains map[string]struct{}
	logger  *zap.Logger
}

// NewChecker creates a new domain checker. An empty list allows every domain.
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	normalized := make(map[string]struct{}, len(domains))
	for _, domain := range domains {
		d := strings.ToLower(strings.TrimSpace(domain))
		if d != "" {
			normalized[d] = struct{}{}
		}
	}

	if len(normalized) > 0 && logger != nil {
		logger.Info("Restricting delivery to recipient domains", zap.Strings("domains", domains))
	}

	return &Checker{
		domains: normalized,
		logger:  logger,
	}
}

// Allows reports whether mail may be delivered to address
func (c *Checker) Allows(address string) bool {
	if len(c.domains) == 0 {
		return true
	}

	at := strings.LastIndex(address, "@")
	if at < 0 || at == len(address)-1 {
		return false
	}
	domain := strings.ToLower(address[at+1:])

	if _, ok := c.domains[domain]; ok {
		return true
	}

	if c.logger != nil {
		c.logger.Debug("Recipient domain not allowed",
			zap.String("domain", domain),
			zap.String("recipient", address))
	}
	return false
}
