package core

import (
	"net"
	"net/url"
	"regexp"
	"strings"
)

// Suspicious top-level domains frequently seen in phishing campaigns
var suspiciousTLDs = map[string]bool{
	"tk":    true,
	"ml":    true,
	"ga":    true,
	"cf":    true,
	"gq":    true,
	"xyz":   true,
	"top":   true,
	"click": true,
	"link":  true,
	"work":  true,
}

// urlLikeToken matches URL-looking fragments embedded in anchor text
var urlLikeToken = regexp.MustCompile(`(?i)(?:https?://|www\.)[^\s<>"']+`)

const (
	anchorMismatchWeight = 12
	punycodeWeight       = 10
	ipHostWeight         = 12
	suspiciousTLDWeight  = 8
	redirectHopWeight    = 3
	redirectWeightCap    = 12
	finalHostWeight      = 6
)

// HeuristicScore computes the lexical/structural risk contribution of a URL.
// It is a pure function: a malformed URL scores 0 and nothing here touches
// the network. The result is unbounded; clamping happens in the aggregator.
func HeuristicScore(rawURL, anchorText string, redirectCount int, finalURL string) int {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return 0
	}
	host := strings.ToLower(u.Hostname())

	score := 0

	if anchorHostMismatch(host, anchorText) {
		score += anchorMismatchWeight
	}
	if strings.Contains(host, "xn--") {
		score += punycodeWeight
	}
	if ip := net.ParseIP(host); ip != nil && ip.To4() != nil {
		score += ipHostWeight
	}
	if labels := strings.Split(host, "."); suspiciousTLDs[labels[len(labels)-1]] {
		score += suspiciousTLDWeight
	}
	if redirectCount >= 3 {
		hops := redirectCount * redirectHopWeight
		if hops > redirectWeightCap {
			hops = redirectWeightCap
		}
		score += hops
	}
	if finalURL != "" {
		if fu, err := url.Parse(finalURL); err == nil && fu.Hostname() != "" &&
			!strings.EqualFold(fu.Hostname(), host) {
			score += finalHostWeight
		}
	}

	return score
}

// anchorHostMismatch reports whether the anchor text embeds a URL-like token
// pointing at a different host than the actual target. Malformed tokens are
// skipped rather than aborting the check.
func anchorHostMismatch(targetHost, anchorText string) bool {
	if anchorText == "" {
		return false
	}
	for _, token := range urlLikeToken.FindAllString(anchorText, -1) {
		if !strings.Contains(strings.ToLower(token), "://") {
			token = "http://" + token
		}
		u, err := url.Parse(token)
		if err != nil || u.Hostname() == "" {
			continue
		}
		if !strings.EqualFold(u.Hostname(), targetHost) {
			return true
		}
	}
	return false
}
