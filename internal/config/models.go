package config

import "time"

// VirusTotalConfig represents the configuration for the VirusTotal client
type VirusTotalConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Weight  float64
}

// SafeBrowsingConfig represents the configuration for the Safe Browsing client
type SafeBrowsingConfig struct {
	APIKey  string
	Timeout time.Duration
	Weight  float64
}

// RedirectConfig represents the configuration for the redirect resolver
type RedirectConfig struct {
	MaxHops int
	Timeout time.Duration
}

// DNSAuthConfig represents the configuration for the domain-auth checker
type DNSAuthConfig struct {
	Server  string
	Timeout time.Duration
}

// ScoringConfig represents the aggregation policy constants
type ScoringConfig struct {
	HeuristicCap             int
	OverrideFloor            int
	AuthOffset               int
	URLMaliciousThreshold    int
	URLSuspiciousThreshold   int
	EmailMaliciousThreshold  int
	EmailSuspiciousThreshold int
	LinkConcurrency          int
	MaxBodySize              int
	TrustedDomains           []string
}

// GetVirusTotal returns the VirusTotal configuration
func (c *Config) GetVirusTotal() VirusTotalConfig {
	timeout, err := c.GetDuration("virustotal.timeout")
	if err != nil {
		timeout = 15 * time.Second
	}
	return VirusTotalConfig{
		APIKey:  c.GetString("virustotal.api_key"),
		BaseURL: c.GetString("virustotal.base_url"),
		Timeout: timeout,
		Weight:  c.GetFloat64("virustotal.weight"),
	}
}

// GetSafeBrowsing returns the Safe Browsing configuration
func (c *Config) GetSafeBrowsing() SafeBrowsingConfig {
	timeout, err := c.GetDuration("safebrowsing.timeout")
	if err != nil {
		timeout = 15 * time.Second
	}
	return SafeBrowsingConfig{
		APIKey:  c.GetString("safebrowsing.api_key"),
		Timeout: timeout,
		Weight:  c.GetFloat64("safebrowsing.weight"),
	}
}

// GetRedirect returns the redirect resolver configuration
func (c *Config) GetRedirect() RedirectConfig {
	timeout, err := c.GetDuration("redirect.timeout")
	if err != nil {
		timeout = 10 * time.Second
	}
	return RedirectConfig{
		MaxHops: c.GetInt("redirect.max_hops"),
		Timeout: timeout,
	}
}

// GetDNSAuth returns the domain-auth checker configuration
func (c *Config) GetDNSAuth() DNSAuthConfig {
	timeout, err := c.GetDuration("dnsauth.timeout")
	if err != nil {
		timeout = 5 * time.Second
	}
	return DNSAuthConfig{
		Server:  c.GetString("dnsauth.server"),
		Timeout: timeout,
	}
}

// GetScoring returns the scoring configuration
func (c *Config) GetScoring() ScoringConfig {
	return ScoringConfig{
		HeuristicCap:             c.GetInt("scan.heuristic_cap"),
		OverrideFloor:            c.GetInt("scan.override_floor"),
		AuthOffset:               c.GetInt("scan.auth_offset"),
		URLMaliciousThreshold:    c.GetInt("scan.url_malicious_threshold"),
		URLSuspiciousThreshold:   c.GetInt("scan.url_suspicious_threshold"),
		EmailMaliciousThreshold:  c.GetInt("scan.email_malicious_threshold"),
		EmailSuspiciousThreshold: c.GetInt("scan.email_suspicious_threshold"),
		LinkConcurrency:          c.GetInt("scan.link_concurrency"),
		MaxBodySize:              c.GetInt("scan.max_body_size"),
		TrustedDomains:           c.GetStringSlice("scan.trusted_domains"),
	}
}
