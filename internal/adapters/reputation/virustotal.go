package reputation

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/mikey/linkguard/internal/core"
	"go.uber.org/zap"
)

// VirusTotalClient queries the VirusTotal v3 URL report endpoint. It is the
// higher-trust source in the aggregate blend. Any failure, including a
// missing API key, reads as an absent signal rather than an error: one
// vendor outage must never poison the aggregate denominator.
type VirusTotalClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewVirusTotalClient creates a new VirusTotal client
func NewVirusTotalClient(apiKey, baseURL string, timeout time.Duration, logger *zap.Logger) *VirusTotalClient {
	return &VirusTotalClient{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Name identifies the source in breakdowns and logs
func (c *VirusTotalClient) Name() string { return "virustotal" }

type vtURLReport struct {
	Data struct {
		Attributes struct {
			LastAnalysisStats struct {
				Malicious  int `json:"malicious"`
				Suspicious int `json:"suspicious"`
				Harmless   int `json:"harmless"`
				Undetected int `json:"undetected"`
			} `json:"last_analysis_stats"`
		} `json:"attributes"`
	} `json:"data"`
}

// Lookup fetches the URL analysis report and normalizes the engine votes to
// a 0-100 score. The second return value is false when no usable reading
// was produced.
func (c *VirusTotalClient) Lookup(ctx context.Context, rawURL string) (core.Signal, bool) {
	if c.apiKey == "" {
		return core.Signal{}, false
	}

	// VT v3 addresses URL reports by the unpadded base64url of the URL itself
	id := base64.RawURLEncoding.EncodeToString([]byte(rawURL))
	endpoint := fmt.Sprintf("%s/urls/%s", c.baseURL, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.logger.Warn("Failed to build VirusTotal request", zap.Error(err))
		return core.Signal{}, false
	}
	req.Header.Set("x-apikey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("VirusTotal lookup failed", zap.String("url", rawURL), zap.Error(err))
		return core.Signal{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("VirusTotal returned non-OK status",
			zap.String("url", rawURL),
			zap.Int("status", resp.StatusCode))
		return core.Signal{}, false
	}

	var report vtURLReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		c.logger.Warn("Failed to decode VirusTotal response", zap.Error(err))
		return core.Signal{}, false
	}

	stats := report.Data.Attributes.LastAnalysisStats
	total := stats.Malicious + stats.Suspicious + stats.Harmless + stats.Undetected
	if total == 0 {
		return core.Signal{}, false
	}

	score := int(math.Round(100 * (float64(stats.Malicious) + 0.5*float64(stats.Suspicious)) / float64(total)))
	if score > 100 {
		score = 100
	}

	return core.Signal{
		Score: score,
		Flags: map[string]bool{
			"malicious": stats.Malicious > 0,
		},
	}, true
}
