package core

import (
	"context"
	"time"
)

// ReputationClient defines the interface for external URL reputation sources
type ReputationClient interface {
	// Name identifies the source in breakdowns and logs
	Name() string

	// Lookup queries the source for a URL. The second return value is false
	// when the source produced no usable reading (no credentials, timeout,
	// malformed response); such absence must never be treated as a score of 0.
	Lookup(ctx context.Context, rawURL string) (Signal, bool)
}

// RedirectResolver follows a URL's redirect chain
type RedirectResolver interface {
	// Resolve reports the final destination and hop count. Network failure
	// yields a zero RedirectInfo, never an error.
	Resolve(ctx context.Context, rawURL string) RedirectInfo
}

// DomainAuthChecker verifies sender-domain authentication records
type DomainAuthChecker interface {
	// Check looks up SPF and DMARC independently; either lookup failing
	// reads as false for that flag only.
	Check(ctx context.Context, domain string) DomainAuth
}

// VerdictCache defines the interface for caching aggregated verdicts
type VerdictCache interface {
	// Get retrieves a live entry for a fingerprint
	Get(ctx context.Context, fingerprint string) (*AggregatedVerdict, bool)

	// Set stores a verdict under a fingerprint with the given TTL
	Set(ctx context.Context, fingerprint string, verdict *AggregatedVerdict, ttl time.Duration)

	// Delete removes a cache entry
	Delete(ctx context.Context, fingerprint string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}
