package redirect

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/mikey/linkguard/internal/core"
	"go.uber.org/zap"
)

// Resolver follows a URL's redirect chain up to a bounded number of hops
// and reports the realized destination. Every failure mode collapses to a
// zero RedirectInfo so the caller never sees a network error.
type Resolver struct {
	transport http.RoundTripper
	maxHops   int
	timeout   time.Duration
	logger    *zap.Logger
}

// NewResolver creates a new redirect resolver
func NewResolver(maxHops int, timeout time.Duration, logger *zap.Logger) *Resolver {
	return &Resolver{
		transport: http.DefaultTransport,
		maxHops:   maxHops,
		timeout:   timeout,
		logger:    logger,
	}
}

// Resolve follows the chain for rawURL and returns the final URL and hop count
func (r *Resolver) Resolve(ctx context.Context, rawURL string) core.RedirectInfo {
	// A fresh client per call so the hop counter captured by CheckRedirect
	// is not shared between concurrent resolutions.
	hops := 0
	client := &http.Client{
		Transport: r.transport,
		Timeout:   r.timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			hops = len(via)
			if len(via) >= r.maxHops {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return core.RedirectInfo{}
	}

	resp, err := client.Do(req)
	if err != nil {
		r.logger.Debug("Redirect resolution failed", zap.String("url", rawURL), zap.Error(err))
		return core.RedirectInfo{}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	return core.RedirectInfo{
		FinalURL:      resp.Request.URL.String(),
		RedirectCount: hops,
	}
}
