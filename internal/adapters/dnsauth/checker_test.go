package dnsauth

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// startTestDNS runs a local DNS server answering TXT queries from records
func startTestDNS(t *testing.T, records map[string][]string) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	mux := dns.NewServeMux()
	mux.HandleFunc(".", func(w dns.ResponseWriter, r *dns.Msg) {
		m := new(dns.Msg)
		m.SetReply(r)
		q := r.Question[0]
		if q.Qtype == dns.TypeTXT {
			for _, txt := range records[q.Name] {
				m.Answer = append(m.Answer, &dns.TXT{
					Hdr: dns.RR_Header{Name: q.Name, Rrtype: dns.TypeTXT, Class: dns.ClassINET, Ttl: 60},
					Txt: []string{txt},
				})
			}
		}
		_ = w.WriteMsg(m)
	})

	srv := &dns.Server{PacketConn: pc, Handler: mux}
	go func() { _ = srv.ActivateAndServe() }()
	t.Cleanup(func() { _ = srv.Shutdown() })

	return pc.LocalAddr().String()
}

func TestCheckBothRecordsPresent(t *testing.T) {
	addr := startTestDNS(t, map[string][]string{
		"example.com.":        {"v=spf1 include:_spf.example.com ~all"},
		"_dmarc.example.com.": {"v=DMARC1; p=reject"},
	})

	c := NewChecker(addr, 2*time.Second, zap.NewNop())
	got := c.Check(context.Background(), "example.com")

	assert.True(t, got.SPF)
	assert.True(t, got.DMARC)
}

func TestCheckIndependentFlags(t *testing.T) {
	addr := startTestDNS(t, map[string][]string{
		"example.com.": {"v=spf1 -all"},
	})

	c := NewChecker(addr, 2*time.Second, zap.NewNop())
	got := c.Check(context.Background(), "example.com")

	assert.True(t, got.SPF)
	assert.False(t, got.DMARC, "missing DMARC record must not affect the SPF result")
}

func TestCheckIgnoresUnrelatedTXTRecords(t *testing.T) {
	addr := startTestDNS(t, map[string][]string{
		"example.com.": {"google-site-verification=abc123", "some other record"},
	})

	c := NewChecker(addr, 2*time.Second, zap.NewNop())
	got := c.Check(context.Background(), "example.com")

	assert.False(t, got.SPF)
	assert.False(t, got.DMARC)
}

func TestCheckLookupFailureReadsAsFalse(t *testing.T) {
	// Nothing is listening at this address
	c := NewChecker("127.0.0.1:1", 500*time.Millisecond, zap.NewNop())
	got := c.Check(context.Background(), "example.com")

	assert.False(t, got.SPF)
	assert.False(t, got.DMARC)
}
