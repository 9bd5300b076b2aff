package factory

import (
	"github.com/mikey/linkguard/internal/adapters/reputation"
	"github.com/mikey/linkguard/internal/config"
	"github.com/mikey/linkguard/internal/core"
	"go.uber.org/zap"
)

// ReputationFactory creates the external reputation clients. An unconfigured
// API key is not an error here: the client is still built and simply reports
// every lookup as absent.
type ReputationFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewReputationFactory creates a new reputation factory
func NewReputationFactory(cfg *config.Config, logger *zap.Logger) *ReputationFactory {
	return &ReputationFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreatePrimary creates the higher-weight reputation client (VirusTotal)
func (f *ReputationFactory) CreatePrimary() core.ReputationClient {
	vt := f.cfg.GetVirusTotal()
	if vt.APIKey == "" {
		f.logger.Warn("VirusTotal API key not configured, source will be absent")
	}
	return reputation.NewVirusTotalClient(vt.APIKey, vt.BaseURL, vt.Timeout, f.logger)
}

// CreateSecondary creates the lower-weight reputation client (Safe Browsing)
func (f *ReputationFactory) CreateSecondary() core.ReputationClient {
	sb := f.cfg.GetSafeBrowsing()
	if sb.APIKey == "" {
		f.logger.Warn("Safe Browsing API key not configured, source will be absent")
	}
	return reputation.NewSafeBrowsingClient(sb.APIKey, sb.Timeout, f.logger)
}

// PrimaryWeight returns the blend weight of the primary source
func (f *ReputationFactory) PrimaryWeight() float64 {
	return f.cfg.GetVirusTotal().Weight
}

// SecondaryWeight returns the blend weight of the secondary source
func (f *ReputationFactory) SecondaryWeight() float64 {
	return f.cfg.GetSafeBrowsing().Weight
}
