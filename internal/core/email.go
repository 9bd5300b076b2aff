package core

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrEmptyBody is returned when an email scan request carries no body text
var ErrEmptyBody = errors.New("email body is required")

// Email-level blend weights: header 40%, body 20%, worst link 40%
const (
	headerBlendWeight = 0.4
	bodyBlendWeight   = 0.2
	linkBlendWeight   = 0.4
)

// ScoreEmail combines header analysis, body analysis and the per-link scans
// of an email into one verdict. Links are scanned concurrently through the
// URL pipeline; among the link results only the single highest score counts,
// so one malicious link is never diluted by benign siblings.
func (s *Scanner) ScoreEmail(ctx context.Context, headers, body string, links []EmailLink) (*EmailVerdict, error) {
	if body == "" {
		return nil, ErrEmptyBody
	}

	headerAnalysis := AnalyzeHeaders(headers)
	bodyAnalysis := AnalyzeBody(body)

	senderDomain := domainOfAddr(extractAddr(fromAddrPattern, headers))

	linkResults := make([]AggregatedVerdict, len(links))
	g, gctx := errgroup.WithContext(ctx)
	if s.cfg.LinkConcurrency > 0 {
		g.SetLimit(s.cfg.LinkConcurrency)
	}
	for i, link := range links {
		i, link := i, link
		g.Go(func() error {
			verdict, err := s.Aggregate(gctx, ScanTarget{
				URL:          link.Href,
				AnchorText:   link.AnchorText,
				SenderDomain: senderDomain,
			})
			if err != nil {
				return err
			}
			linkResults[i] = *verdict
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	linkAnalysis := LinkAnalysis{Links: linkResults}
	for _, r := range linkResults {
		if r.Score > linkAnalysis.HighestLinkScore || linkAnalysis.MostMaliciousLink == "" {
			linkAnalysis.HighestLinkScore = r.Score
			linkAnalysis.MostMaliciousLink = r.URL
		}
	}

	final := clampScore(int(math.Round(
		headerBlendWeight*float64(clampScore(headerAnalysis.Score)) +
			bodyBlendWeight*float64(clampScore(bodyAnalysis.Score)) +
			linkBlendWeight*float64(linkAnalysis.HighestLinkScore))))

	verdict := &EmailVerdict{
		Verdict: s.emailVerdict(final),
		Score:   final,
		Breakdown: EmailBreakdown{
			HeaderAnalysis: headerAnalysis,
			BodyAnalysis:   bodyAnalysis,
			LinkAnalysis:   linkAnalysis,
			FinalScore:     final,
		},
	}

	s.logger.Info("Email scanned",
		zap.Int("score", final),
		zap.String("verdict", string(verdict.Verdict)),
		zap.Int("links", len(links)),
		zap.Int("header_score", headerAnalysis.Score),
		zap.Int("body_score", bodyAnalysis.Score))

	return verdict, nil
}

func (s *Scanner) emailVerdict(score int) Verdict {
	switch {
	case score >= s.cfg.EmailMaliciousThreshold:
		return VerdictMalicious
	case score >= s.cfg.EmailSuspiciousThreshold:
		return VerdictSuspicious
	default:
		return VerdictSafe
	}
}

func domainOfAddr(addr string) string {
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == '@' {
			return addr[i+1:]
		}
	}
	return ""
}
