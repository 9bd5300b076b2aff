package factory

import (
	"fmt"

	"github.com/mikey/linkguard/internal/adapters/dnsauth"
	"github.com/mikey/linkguard/internal/adapters/redirect"
	"github.com/mikey/linkguard/internal/config"
	"github.com/mikey/linkguard/internal/core"
	"github.com/mikey/linkguard/internal/trust"
	"go.uber.org/zap"
)

// ScannerFactory assembles the core scanner from its adapter parts
type ScannerFactory struct {
	cfg        *config.Config
	logger     *zap.Logger
	reputation *ReputationFactory
	cache      *CacheFactory
}

// NewScannerFactory creates a new scanner factory
func NewScannerFactory(
	cfg *config.Config,
	logger *zap.Logger,
	reputation *ReputationFactory,
	cache *CacheFactory,
) *ScannerFactory {
	return &ScannerFactory{
		cfg:        cfg,
		logger:     logger,
		reputation: reputation,
		cache:      cache,
	}
}

// CreateScanner builds the scanner with all adapters wired in
func (f *ScannerFactory) CreateScanner(verdictCache core.VerdictCache) (*core.Scanner, error) {
	ttl, err := f.cache.GetCacheTTL()
	if err != nil {
		return nil, fmt.Errorf("invalid cache TTL: %w", err)
	}

	redirectCfg := f.cfg.GetRedirect()
	dnsCfg := f.cfg.GetDNSAuth()
	scoring := f.cfg.GetScoring()

	return core.NewScanner(
		f.reputation.CreatePrimary(),
		f.reputation.CreateSecondary(),
		redirect.NewResolver(redirectCfg.MaxHops, redirectCfg.Timeout, f.logger),
		dnsauth.NewChecker(dnsCfg.Server, dnsCfg.Timeout, f.logger),
		verdictCache,
		trust.NewChecker(scoring.TrustedDomains, f.logger),
		f.logger,
		core.ScannerConfig{
			PrimaryWeight:            f.reputation.PrimaryWeight(),
			SecondaryWeight:          f.reputation.SecondaryWeight(),
			HeuristicCap:             scoring.HeuristicCap,
			AuthOffset:               scoring.AuthOffset,
			OverrideFloor:            scoring.OverrideFloor,
			URLMaliciousThreshold:    scoring.URLMaliciousThreshold,
			URLSuspiciousThreshold:   scoring.URLSuspiciousThreshold,
			EmailMaliciousThreshold:  scoring.EmailMaliciousThreshold,
			EmailSuspiciousThreshold: scoring.EmailSuspiciousThreshold,
			CacheEnabled:             f.cache.IsCacheEnabled(),
			CacheTTL:                 ttl,
			LinkConcurrency:          scoring.LinkConcurrency,
		},
	), nil
}
