package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeReputation struct {
	name    string
	signals map[string]Signal // keyed by URL; missing key means absent
}

func (f *fakeReputation) Name() string { return f.name }

func (f *fakeReputation) Lookup(ctx context.Context, rawURL string) (Signal, bool) {
	sig, ok := f.signals[rawURL]
	return sig, ok
}

type fakeResolver struct {
	info RedirectInfo
}

func (f *fakeResolver) Resolve(ctx context.Context, rawURL string) RedirectInfo {
	return f.info
}

type fakeAuth struct {
	auth   DomainAuth
	called bool
}

func (f *fakeAuth) Check(ctx context.Context, domain string) DomainAuth {
	f.called = true
	return f.auth
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]*AggregatedVerdict
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]*AggregatedVerdict)}
}

func (f *fakeCache) Get(ctx context.Context, fingerprint string) (*AggregatedVerdict, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.entries[fingerprint]
	if !ok {
		return nil, false
	}
	cp := *v
	return &cp, true
}

func (f *fakeCache) Set(ctx context.Context, fingerprint string, verdict *AggregatedVerdict, ttl time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *verdict
	f.entries[fingerprint] = &cp
	f.sets++
}

func (f *fakeCache) Delete(ctx context.Context, fingerprint string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, fingerprint)
	return nil
}

func (f *fakeCache) Cleanup(ctx context.Context) error { return nil }

type fakeTrust struct {
	hosts map[string]bool
}

func (f *fakeTrust) IsTrusted(host string) bool { return f.hosts[host] }

func testConfig() ScannerConfig {
	return ScannerConfig{
		PrimaryWeight:            0.75,
		SecondaryWeight:          0.25,
		HeuristicCap:             30,
		AuthOffset:               5,
		OverrideFloor:            85,
		URLMaliciousThreshold:    70,
		URLSuspiciousThreshold:   40,
		EmailMaliciousThreshold:  80,
		EmailSuspiciousThreshold: 50,
		CacheEnabled:             true,
		CacheTTL:                 time.Hour,
		LinkConcurrency:          4,
	}
}

func newTestScanner(primary, secondary *fakeReputation, resolver *fakeResolver, auth *fakeAuth, cache *fakeCache, cfg ScannerConfig) *Scanner {
	return NewScanner(primary, secondary, resolver, auth, cache, &fakeTrust{}, zap.NewNop(), cfg)
}

func emptyReputation(name string) *fakeReputation {
	return &fakeReputation{name: name, signals: map[string]Signal{}}
}

func TestAggregateNoSignalsDefaultsToNeutral(t *testing.T) {
	s := newTestScanner(emptyReputation("a"), emptyReputation("b"), &fakeResolver{}, &fakeAuth{}, newFakeCache(), testConfig())

	got, err := s.Aggregate(context.Background(), ScanTarget{URL: "https://example.com/"})
	require.NoError(t, err)

	assert.Equal(t, 50, got.Score)
	assert.Equal(t, 50, got.Breakdown.BaseScore)
	assert.Equal(t, VerdictSuspicious, got.Verdict)
	assert.Empty(t, got.Breakdown.Reputation)
	assert.False(t, got.Cached)
}

func TestAggregateWeightedBlend(t *testing.T) {
	const url = "https://example.com/"
	primary := &fakeReputation{name: "a", signals: map[string]Signal{url: {Score: 80}}}
	secondary := &fakeReputation{name: "b", signals: map[string]Signal{url: {Score: 20}}}

	s := newTestScanner(primary, secondary, &fakeResolver{}, &fakeAuth{}, newFakeCache(), testConfig())

	got, err := s.Aggregate(context.Background(), ScanTarget{URL: url})
	require.NoError(t, err)

	// 0.75*80 + 0.25*20 = 65
	assert.Equal(t, 65, got.Breakdown.BaseScore)
	assert.Equal(t, 65, got.Score)
	assert.Equal(t, map[string]int{"a": 80, "b": 20}, got.Breakdown.Reputation)
}

func TestAggregatePartialSignalIgnoresAbsentSource(t *testing.T) {
	const url = "https://example.com/"
	primary := &fakeReputation{name: "a", signals: map[string]Signal{url: {Score: 20}}}

	s := newTestScanner(primary, emptyReputation("b"), &fakeResolver{}, &fakeAuth{}, newFakeCache(), testConfig())

	got, err := s.Aggregate(context.Background(), ScanTarget{URL: url})
	require.NoError(t, err)

	// Absent source drops out of the denominator entirely
	assert.Equal(t, 20, got.Breakdown.BaseScore)
	assert.Equal(t, VerdictSafe, got.Verdict)
}

func TestAggregateOverrideFloor(t *testing.T) {
	const url = "https://example.com/"
	primary := &fakeReputation{name: "a", signals: map[string]Signal{
		url: {Score: 10, Flags: map[string]bool{"malicious": true}},
	}}

	s := newTestScanner(primary, emptyReputation("b"), &fakeResolver{}, &fakeAuth{}, newFakeCache(), testConfig())

	got, err := s.Aggregate(context.Background(), ScanTarget{URL: url})
	require.NoError(t, err)

	assert.Equal(t, 85, got.Score)
	assert.Equal(t, VerdictMalicious, got.Verdict)
	assert.True(t, got.Breakdown.Override)
}

func TestAggregateSecondarySourceFlagsDoNotOverride(t *testing.T) {
	const url = "https://example.com/"
	secondary := &fakeReputation{name: "b", signals: map[string]Signal{
		url: {Score: 10, Flags: map[string]bool{"phishing": true}},
	}}

	s := newTestScanner(emptyReputation("a"), secondary, &fakeResolver{}, &fakeAuth{}, newFakeCache(), testConfig())

	got, err := s.Aggregate(context.Background(), ScanTarget{URL: url})
	require.NoError(t, err)

	assert.Equal(t, 10, got.Score)
	assert.False(t, got.Breakdown.Override)
}

func TestAggregateVerdictThresholds(t *testing.T) {
	tests := []struct {
		score int
		want  Verdict
	}{
		{70, VerdictMalicious},
		{69, VerdictSuspicious},
		{40, VerdictSuspicious},
		{39, VerdictSafe},
	}

	for _, tt := range tests {
		const url = "https://example.com/"
		primary := &fakeReputation{name: "a", signals: map[string]Signal{url: {Score: tt.score}}}
		secondary := &fakeReputation{name: "b", signals: map[string]Signal{url: {Score: tt.score}}}

		s := newTestScanner(primary, secondary, &fakeResolver{}, &fakeAuth{}, newFakeCache(), testConfig())

		got, err := s.Aggregate(context.Background(), ScanTarget{URL: url})
		require.NoError(t, err)

		assert.Equal(t, tt.score, got.Score)
		assert.Equal(t, tt.want, got.Verdict, "score %d", tt.score)
	}
}

func TestAggregateHeuristicContributionIsCapped(t *testing.T) {
	// IP host (12) + capped redirects (12) + changed final host (6) +
	// anchor mismatch (12) = 42 raw, capped at 30
	target := ScanTarget{
		URL:        "http://10.1.2.3/login",
		AnchorText: "go to https://bank.com",
	}
	resolver := &fakeResolver{info: RedirectInfo{FinalURL: "https://landing.example.org/", RedirectCount: 6}}

	s := newTestScanner(emptyReputation("a"), emptyReputation("b"), resolver, &fakeAuth{}, newFakeCache(), testConfig())

	got, err := s.Aggregate(context.Background(), target)
	require.NoError(t, err)

	assert.Equal(t, 30, got.Breakdown.Heuristics)
	assert.Equal(t, 80, got.Score) // 50 base + 30 heuristics
}

func TestAggregateAuthAdjustment(t *testing.T) {
	tests := []struct {
		name string
		auth DomainAuth
		want int
	}{
		{"both pass", DomainAuth{SPF: true, DMARC: true}, -10},
		{"both missing", DomainAuth{}, 10},
		{"spf only", DomainAuth{SPF: true}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &fakeAuth{auth: tt.auth}
			s := newTestScanner(emptyReputation("a"), emptyReputation("b"), &fakeResolver{}, auth, newFakeCache(), testConfig())

			got, err := s.Aggregate(context.Background(), ScanTarget{
				URL:          "https://example.com/",
				SenderDomain: "example.com",
			})
			require.NoError(t, err)

			assert.True(t, auth.called)
			assert.Equal(t, tt.want, got.Breakdown.AuthAdjustment)
			assert.Equal(t, 50+tt.want, got.Score)
		})
	}
}

func TestAggregateSkipsAuthWithoutSenderDomain(t *testing.T) {
	auth := &fakeAuth{}
	s := newTestScanner(emptyReputation("a"), emptyReputation("b"), &fakeResolver{}, auth, newFakeCache(), testConfig())

	got, err := s.Aggregate(context.Background(), ScanTarget{URL: "https://example.com/"})
	require.NoError(t, err)

	assert.False(t, auth.called)
	assert.Equal(t, 0, got.Breakdown.AuthAdjustment)
}

func TestAggregateCacheRoundTrip(t *testing.T) {
	cache := newFakeCache()
	s := newTestScanner(emptyReputation("a"), emptyReputation("b"), &fakeResolver{}, &fakeAuth{}, cache, testConfig())

	target := ScanTarget{URL: "https://example.com/", AnchorText: "hi"}

	first, err := s.Aggregate(context.Background(), target)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, 1, cache.sets)

	second, err := s.Aggregate(context.Background(), target)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, 1, cache.sets, "cache hit must not rewrite the entry")

	// Identical apart from the cached marker
	second.Cached = false
	assert.Equal(t, first, second)
}

func TestAggregateFingerprintDistinguishesOptionalFields(t *testing.T) {
	a := ScanTarget{URL: "https://example.com/"}
	b := ScanTarget{URL: "https://example.com/", AnchorText: "x"}
	c := ScanTarget{URL: "https://example.com/", SenderDomain: "x"}

	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
	assert.NotEqual(t, b.Fingerprint(), c.Fingerprint())
	assert.Equal(t, a.Fingerprint(), ScanTarget{URL: "https://example.com/"}.Fingerprint())
}

func TestAggregateTrustedHostBypass(t *testing.T) {
	cache := newFakeCache()
	s := NewScanner(
		emptyReputation("a"), emptyReputation("b"), &fakeResolver{}, &fakeAuth{}, cache,
		&fakeTrust{hosts: map[string]bool{"intranet.example.com": true}},
		zap.NewNop(), testConfig(),
	)

	got, err := s.Aggregate(context.Background(), ScanTarget{URL: "https://intranet.example.com/wiki"})
	require.NoError(t, err)

	assert.Equal(t, VerdictSafe, got.Verdict)
	assert.Equal(t, 0, got.Score)
	assert.True(t, got.Breakdown.Trusted)
	assert.Equal(t, 0, cache.sets, "trusted verdicts are not cached")
}
