package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeuristicScore(t *testing.T) {
	tests := []struct {
		name          string
		url           string
		anchorText    string
		redirectCount int
		finalURL      string
		want          int
	}{
		{
			name: "plain https url scores zero",
			url:  "https://example.com/page",
			want: 0,
		},
		{
			name: "literal IPv4 host",
			url:  "http://192.168.1.1/login",
			want: 12,
		},
		{
			name: "punycode host",
			url:  "http://xn--pple-43d.com/signin",
			want: 10,
		},
		{
			name: "suspicious TLD",
			url:  "http://login.example.tk/",
			want: 8,
		},
		{
			name:       "anchor text embeds a different host",
			url:        "https://evil.example.com/",
			anchorText: "click https://paypal.com to continue",
			want:       12,
		},
		{
			name:       "anchor text embeds the same host",
			url:        "https://example.com/",
			anchorText: "see https://example.com/help",
			want:       0,
		},
		{
			name:       "www-style token in anchor text",
			url:        "https://example.com/",
			anchorText: "visit www.bank.com today",
			want:       12,
		},
		{
			name:       "malformed token in anchor text is ignored",
			url:        "https://example.com/",
			anchorText: "http://%zz%zz",
			want:       0,
		},
		{
			name:          "three redirects",
			url:           "https://example.com/",
			redirectCount: 3,
			want:          9,
		},
		{
			name:          "redirect contribution is capped",
			url:           "https://example.com/",
			redirectCount: 7,
			want:          12,
		},
		{
			name:          "two redirects score nothing",
			url:           "https://example.com/",
			redirectCount: 2,
			want:          0,
		},
		{
			name:     "final destination on a different host",
			url:      "https://example.com/",
			finalURL: "https://other.example.net/landing",
			want:     6,
		},
		{
			name:     "final destination on the same host",
			url:      "https://example.com/",
			finalURL: "https://example.com/landing",
			want:     0,
		},
		{
			name: "contributions are additive",
			url:  "http://10.0.0.1/x",
			// IP host + capped redirects + changed final host
			redirectCount: 5,
			finalURL:      "https://landing.example.org/",
			want:          12 + 12 + 6,
		},
		{
			name: "malformed url scores zero",
			url:  "://not-a-url",
			want: 0,
		},
		{
			name: "hostless url scores zero",
			url:  "just some text",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HeuristicScore(tt.url, tt.anchorText, tt.redirectCount, tt.finalURL)
			assert.Equal(t, tt.want, got)
		})
	}
}
