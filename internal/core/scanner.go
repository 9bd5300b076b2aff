package core

import (
	"context"
	"math"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TrustChecker short-circuits scanning for operator-trusted hosts
type TrustChecker interface {
	IsTrusted(host string) bool
}

// ScannerConfig carries the scoring policy constants
type ScannerConfig struct {
	PrimaryWeight            float64
	SecondaryWeight          float64
	HeuristicCap             int
	AuthOffset               int
	OverrideFloor            int
	URLMaliciousThreshold    int
	URLSuspiciousThreshold   int
	EmailMaliciousThreshold  int
	EmailSuspiciousThreshold int
	CacheEnabled             bool
	CacheTTL                 time.Duration
	LinkConcurrency          int
}

// Scanner is the signal aggregation engine. It orchestrates the reputation
// clients, redirect resolver and domain-auth checker concurrently per URL,
// reconciles their outputs into one 0-100 score and memoizes the result per
// target fingerprint.
type Scanner struct {
	primary   ReputationClient
	secondary ReputationClient
	resolver  RedirectResolver
	auth      DomainAuthChecker
	cache     VerdictCache
	trusted   TrustChecker
	logger    *zap.Logger
	cfg       ScannerConfig
}

// NewScanner creates a new scanner service
func NewScanner(
	primary ReputationClient,
	secondary ReputationClient,
	resolver RedirectResolver,
	auth DomainAuthChecker,
	cache VerdictCache,
	trusted TrustChecker,
	logger *zap.Logger,
	cfg ScannerConfig,
) *Scanner {
	return &Scanner{
		primary:   primary,
		secondary: secondary,
		resolver:  resolver,
		auth:      auth,
		cache:     cache,
		trusted:   trusted,
		logger:    logger,
		cfg:       cfg,
	}
}

// Aggregate scans a single URL target and returns its verdict
func (s *Scanner) Aggregate(ctx context.Context, target ScanTarget) (*AggregatedVerdict, error) {
	if host := hostOf(target.URL); host != "" && s.trusted != nil && s.trusted.IsTrusted(host) {
		s.logger.Debug("Skipping scan for trusted host", zap.String("host", host))
		return &AggregatedVerdict{
			URL:     target.URL,
			Verdict: VerdictSafe,
			Score:   0,
			Breakdown: ScoreBreakdown{
				Reputation: map[string]int{},
				Trusted:    true,
			},
		}, nil
	}

	fingerprint := target.Fingerprint()
	if s.cfg.CacheEnabled {
		if cached, ok := s.cache.Get(ctx, fingerprint); ok {
			s.logger.Debug("Cache hit", zap.String("url", target.URL))
			hit := *cached
			hit.Cached = true
			return &hit, nil
		}
	}

	// Fan out all sub-lookups and wait for every one of them to settle.
	// Each client absorbs its own failures into an absent reading, so no
	// sub-lookup can fail or cancel a sibling.
	var (
		wg             sync.WaitGroup
		priSig, secSig Signal
		priOK, secOK   bool
		redirect       RedirectInfo
		domAuth        DomainAuth
	)
	checkAuth := target.SenderDomain != ""

	wg.Add(3)
	go func() {
		defer wg.Done()
		priSig, priOK = s.primary.Lookup(ctx, target.URL)
	}()
	go func() {
		defer wg.Done()
		secSig, secOK = s.secondary.Lookup(ctx, target.URL)
	}()
	go func() {
		defer wg.Done()
		redirect = s.resolver.Resolve(ctx, target.URL)
	}()
	if checkAuth {
		wg.Add(1)
		go func() {
			defer wg.Done()
			domAuth = s.auth.Check(ctx, target.SenderDomain)
		}()
	}
	wg.Wait()

	heuristic := HeuristicScore(target.URL, target.AnchorText, redirect.RedirectCount, redirect.FinalURL)

	// Weighted blend of the present external signals. With no signal at all
	// the base falls back to the neutral midpoint: no data is uncertainty,
	// not safety.
	reputation := map[string]int{}
	weightedSum, totalWeight := 0.0, 0.0
	if priOK {
		weightedSum += float64(priSig.Score) * s.cfg.PrimaryWeight
		totalWeight += s.cfg.PrimaryWeight
		reputation[s.primary.Name()] = priSig.Score
	}
	if secOK {
		weightedSum += float64(secSig.Score) * s.cfg.SecondaryWeight
		totalWeight += s.cfg.SecondaryWeight
		reputation[s.secondary.Name()] = secSig.Score
	}
	base := 50
	if totalWeight > 0 {
		base = int(math.Round(weightedSum / totalWeight))
	}

	heuristicContrib := heuristic
	if heuristicContrib > s.cfg.HeuristicCap {
		heuristicContrib = s.cfg.HeuristicCap
	}

	authAdj := 0
	if checkAuth {
		if domAuth.SPF {
			authAdj -= s.cfg.AuthOffset
		} else {
			authAdj += s.cfg.AuthOffset
		}
		if domAuth.DMARC {
			authAdj -= s.cfg.AuthOffset
		} else {
			authAdj += s.cfg.AuthOffset
		}
	}

	score := clampScore(base + heuristicContrib + authAdj)

	// Explicit vendor verdicts from the higher-weight source override the
	// blended estimate.
	override := false
	if priOK && priSig.Flagged("malicious", "phishing") && score < s.cfg.OverrideFloor {
		score = s.cfg.OverrideFloor
		override = true
	}

	verdict := &AggregatedVerdict{
		URL:     target.URL,
		Verdict: s.urlVerdict(score),
		Score:   score,
		Breakdown: ScoreBreakdown{
			Reputation:     reputation,
			BaseScore:      base,
			Heuristics:     heuristicContrib,
			AuthAdjustment: authAdj,
			RedirectCount:  redirect.RedirectCount,
			FinalURL:       redirect.FinalURL,
			Override:       override,
		},
	}

	s.logger.Info("URL scanned",
		zap.String("url", target.URL),
		zap.Int("score", score),
		zap.String("verdict", string(verdict.Verdict)),
		zap.Int("sources", len(reputation)))

	if s.cfg.CacheEnabled {
		s.cache.Set(ctx, fingerprint, verdict, s.cfg.CacheTTL)
	}

	return verdict, nil
}

func (s *Scanner) urlVerdict(score int) Verdict {
	switch {
	case score >= s.cfg.URLMaliciousThreshold:
		return VerdictMalicious
	case score >= s.cfg.URLSuspiciousThreshold:
		return VerdictSuspicious
	default:
		return VerdictSafe
	}
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
