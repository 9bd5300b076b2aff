package dnsauth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/miekg/dns"
	"github.com/mikey/linkguard/internal/core"
	"go.uber.org/zap"
)

// Checker verifies the presence of SPF and DMARC TXT records for a sender
// domain. The two lookups run independently; a failure in one never affects
// the other, and any lookup failure reads as "no passing record".
type Checker struct {
	client *dns.Client
	server string
	logger *zap.Logger
}

// NewChecker creates a new domain-auth checker querying the given DNS server
func NewChecker(server string, timeout time.Duration, logger *zap.Logger) *Checker {
	return &Checker{
		client: &dns.Client{Timeout: timeout},
		server: server,
		logger: logger,
	}
}

// Check looks up SPF for the domain and DMARC at _dmarc.<domain>
func (c *Checker) Check(ctx context.Context, domain string) core.DomainAuth {
	var (
		wg   sync.WaitGroup
		auth core.DomainAuth
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		auth.SPF = c.hasRecord(ctx, domain, "v=spf1")
	}()
	go func() {
		defer wg.Done()
		auth.DMARC = c.hasRecord(ctx, "_dmarc."+domain, "v=dmarc1")
	}()
	wg.Wait()

	return auth
}

// hasRecord reports whether any TXT record at name starts with prefix
func (c *Checker) hasRecord(ctx context.Context, name, prefix string) bool {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), dns.TypeTXT)

	resp, _, err := c.client.ExchangeContext(ctx, msg, c.server)
	if err != nil {
		c.logger.Debug("TXT lookup failed", zap.String("name", name), zap.Error(err))
		return false
	}

	for _, rr := range resp.Answer {
		txt, ok := rr.(*dns.TXT)
		if !ok {
			continue
		}
		record := strings.ToLower(strings.Join(txt.Txt, ""))
		if strings.HasPrefix(record, prefix) {
			return true
		}
	}
	return false
}
