package reputation

import (
	"context"
	"time"

	"github.com/mikey/linkguard/internal/core"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	safebrowsing "google.golang.org/api/safebrowsing/v4"
)

// SafeBrowsingClient queries the Google Safe Browsing v4 threat-match API.
// Safe Browsing reports matches rather than a graded score, so a match
// normalizes to the top of the scale and no match to the bottom.
type SafeBrowsingClient struct {
	service *safebrowsing.Service
	timeout time.Duration
	logger  *zap.Logger
}

// NewSafeBrowsingClient creates a new Safe Browsing client. An empty API key
// leaves the source permanently absent.
func NewSafeBrowsingClient(apiKey string, timeout time.Duration, logger *zap.Logger) *SafeBrowsingClient {
	c := &SafeBrowsingClient{
		timeout: timeout,
		logger:  logger,
	}
	if apiKey == "" {
		return c
	}

	svc, err := safebrowsing.NewService(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		logger.Warn("Failed to initialize Safe Browsing service", zap.Error(err))
		return c
	}
	c.service = svc
	return c
}

// Name identifies the source in breakdowns and logs
func (c *SafeBrowsingClient) Name() string { return "safebrowsing" }

// Lookup checks the URL against the Safe Browsing threat lists
func (c *SafeBrowsingClient) Lookup(ctx context.Context, rawURL string) (core.Signal, bool) {
	if c.service == nil {
		return core.Signal{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := &safebrowsing.GoogleSecuritySafebrowsingV4FindThreatMatchesRequest{
		Client: &safebrowsing.GoogleSecuritySafebrowsingV4ClientInfo{
			ClientId:      "linkguard",
			ClientVersion: "1.0",
		},
		ThreatInfo: &safebrowsing.GoogleSecuritySafebrowsingV4ThreatInfo{
			ThreatTypes:      []string{"MALWARE", "SOCIAL_ENGINEERING", "UNWANTED_SOFTWARE"},
			PlatformTypes:    []string{"ANY_PLATFORM"},
			ThreatEntryTypes: []string{"URL"},
			ThreatEntries: []*safebrowsing.GoogleSecuritySafebrowsingV4ThreatEntry{
				{Url: rawURL},
			},
		},
	}

	resp, err := c.service.ThreatMatches.Find(req).Context(ctx).Do()
	if err != nil {
		c.logger.Warn("Safe Browsing lookup failed", zap.String("url", rawURL), zap.Error(err))
		return core.Signal{}, false
	}

	signal := core.Signal{Flags: map[string]bool{}}
	for _, match := range resp.Matches {
		signal.Score = 100
		switch match.ThreatType {
		case "SOCIAL_ENGINEERING":
			signal.Flags["phishing"] = true
		case "MALWARE", "UNWANTED_SOFTWARE":
			signal.Flags["malicious"] = true
		}
	}

	return signal, true
}
