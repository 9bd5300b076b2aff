package core

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Verdict is the three-level risk classification
type Verdict string

const (
	VerdictSafe       Verdict = "safe"
	VerdictSuspicious Verdict = "suspicious"
	VerdictMalicious  Verdict = "malicious"
)

// ScanTarget represents a single URL to be analyzed
type ScanTarget struct {
	URL          string
	AnchorText   string
	SenderDomain string
}

// Fingerprint returns the cache key identifying this target.
// Absent fields are treated as empty strings, so a repeat request with the
// same optional fields omitted maps to the same key.
func (t ScanTarget) Fingerprint() string {
	h := sha256.New()
	h.Write([]byte(t.URL))
	h.Write([]byte{0x1f})
	h.Write([]byte(t.AnchorText))
	h.Write([]byte{0x1f})
	h.Write([]byte(t.SenderDomain))
	return hex.EncodeToString(h.Sum(nil))
}

// Signal is one reputation source's opinion about a URL, normalized to 0-100.
// A Signal only exists when the source produced a usable reading; sources
// that fail, time out or lack credentials report absence through the
// (Signal, bool) return of ReputationClient.Lookup.
type Signal struct {
	Score int
	Flags map[string]bool
}

// Flagged reports whether the source raised any of the given flags
func (s Signal) Flagged(names ...string) bool {
	for _, n := range names {
		if s.Flags[n] {
			return true
		}
	}
	return false
}

// RedirectInfo describes the realized redirect chain of a URL.
// An empty FinalURL means the chain could not be followed at all.
type RedirectInfo struct {
	FinalURL      string
	RedirectCount int
}

// DomainAuth reports the presence of passing SPF and DMARC records for a
// sender domain. A failed lookup reads as false, not as an error.
type DomainAuth struct {
	SPF   bool
	DMARC bool
}

// ScoreBreakdown explains how an aggregate score was assembled
type ScoreBreakdown struct {
	Reputation     map[string]int `json:"reputation"`
	BaseScore      int            `json:"baseScore"`
	Heuristics     int            `json:"heuristics"`
	AuthAdjustment int            `json:"authAdjustment"`
	RedirectCount  int            `json:"redirectCount"`
	FinalURL       string         `json:"finalUrl,omitempty"`
	Override       bool           `json:"override,omitempty"`
	Trusted        bool           `json:"trusted,omitempty"`
}

// AggregatedVerdict is the final per-URL result
type AggregatedVerdict struct {
	URL       string         `json:"url"`
	Verdict   Verdict        `json:"verdict"`
	Score     int            `json:"score"`
	Breakdown ScoreBreakdown `json:"breakdown"`
	Cached    bool           `json:"cached"`
}

// HeaderAnalysis is the outcome of lexical header scoring
type HeaderAnalysis struct {
	Score    int    `json:"score"`
	SPF      string `json:"spf"`
	DKIM     string `json:"dkim"`
	DMARC    string `json:"dmarc"`
	Mismatch bool   `json:"fromReturnPathMismatch"`
}

// BodyAnalysis is the outcome of lexical body scoring
type BodyAnalysis struct {
	Score    int      `json:"score"`
	Keywords []string `json:"keywords"`
}

// LinkAnalysis summarizes the per-link scans of an email
type LinkAnalysis struct {
	HighestLinkScore  int                 `json:"highestLinkScore"`
	MostMaliciousLink string              `json:"mostMaliciousLink,omitempty"`
	Links             []AggregatedVerdict `json:"links,omitempty"`
}

// EmailBreakdown groups the three email sub-analyses
type EmailBreakdown struct {
	HeaderAnalysis HeaderAnalysis `json:"headerAnalysis"`
	BodyAnalysis   BodyAnalysis   `json:"bodyAnalysis"`
	LinkAnalysis   LinkAnalysis   `json:"linkAnalysis"`
	FinalScore     int            `json:"finalScore"`
}

// EmailVerdict is the final email-level result
type EmailVerdict struct {
	Verdict   Verdict        `json:"verdict"`
	Score     int            `json:"score"`
	Breakdown EmailBreakdown `json:"breakdown"`
}

// EmailLink is one hyperlink extracted from an email
type EmailLink struct {
	Href       string `json:"href"`
	AnchorText string `json:"anchorText"`
}

// CacheEntry maps a fingerprint to an aggregated verdict until it expires.
// Entries are immutable; an overwrite replaces the entry wholesale.
type CacheEntry struct {
	Fingerprint string
	Verdict     AggregatedVerdict
	CreatedAt   time.Time
	ExpiresAt   time.Time
}
