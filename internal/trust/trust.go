package trust

import (
	"strings"

	"go.uber.org/zap"
)

// Checker decides whether a host belongs to an operator-trusted domain.
// Trusted hosts bypass the scan pipeline entirely.
type Checker struct {
	domains []string
	logger  *zap.Logger
}

// NewChecker creates a new trust checker
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	normalized := make([]string, len(domains))
	for i, domain := range domains {
		normalized[i] = strings.ToLower(strings.TrimSpace(domain))
	}

	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized trusted-domain checker", zap.Strings("domains", normalized))
	}

	return &Checker{
		domains: normalized,
		logger:  logger,
	}
}

// IsTrusted reports whether host equals, or is a subdomain of, a trusted domain
func (c *Checker) IsTrusted(host string) bool {
	if len(c.domains) == 0 {
		return false
	}

	host = strings.ToLower(host)
	for _, trusted := range c.domains {
		if trusted == "" {
			continue
		}
		if host == trusted || strings.HasSuffix(host, "."+trusted) {
			if c.logger != nil {
				c.logger.Debug("Host is trusted",
					zap.String("host", host),
					zap.String("domain", trusted))
			}
			return true
		}
	}

	return false
}
