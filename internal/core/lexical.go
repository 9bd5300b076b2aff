package core

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Weights for authentication-result markers found in raw header text
const (
	spfFailWeight    = 25
	spfPassOffset    = 15
	dkimFailWeight   = 20
	dkimPassOffset   = 10
	dmarcFailWeight  = 25
	dmarcPassOffset  = 5
	mismatchWeight   = 20
	neutralBaseScore = 10
)

// Social-engineering and urgency terms scored in email bodies
var urgencyKeywords = []string{
	"urgent",
	"immediately",
	"verify your account",
	"suspended",
	"click here",
	"act now",
	"confirm your identity",
	"limited time",
	"security alert",
	"unusual activity",
	"password expired",
	"payment failed",
	"winner",
	"congratulations",
	"wire transfer",
}

const keywordWeight = 8

var (
	fromAddrPattern       = regexp.MustCompile(`(?im)^from:.*?<([^<>\s]+@[^<>\s]+)>`)
	returnPathAddrPattern = regexp.MustCompile(`(?im)^return-path:.*?<([^<>\s]+@[^<>\s]+)>`)
)

// AnalyzeHeaders scores raw email header text for authentication-result
// markers and a From/Return-Path mismatch. Missing header text returns a
// fixed mildly-suspicious neutral score: absence of authentication evidence
// is itself a weak signal.
func AnalyzeHeaders(text string) HeaderAnalysis {
	if strings.TrimSpace(text) == "" {
		return HeaderAnalysis{
			Score: neutralBaseScore,
			SPF:   "neutral",
			DKIM:  "neutral",
			DMARC: "neutral",
		}
	}

	lower := strings.ToLower(text)
	score := 0

	spf := markerState(lower, "spf")
	switch spf {
	case "fail":
		score += spfFailWeight
	case "pass":
		score -= spfPassOffset
	}

	dkim := markerState(lower, "dkim")
	switch dkim {
	case "fail":
		score += dkimFailWeight
	case "pass":
		score -= dkimPassOffset
	}

	dmarc := markerState(lower, "dmarc")
	switch dmarc {
	case "fail":
		score += dmarcFailWeight
	case "pass":
		score -= dmarcPassOffset
	}

	mismatch := false
	from := extractAddr(fromAddrPattern, text)
	returnPath := extractAddr(returnPathAddrPattern, text)
	if from != "" && returnPath != "" && !strings.EqualFold(from, returnPath) {
		score += mismatchWeight
		mismatch = true
	}

	if score < 0 {
		score = 0
	}

	return HeaderAnalysis{
		Score:    score,
		SPF:      spf,
		DKIM:     dkim,
		DMARC:    dmarc,
		Mismatch: mismatch,
	}
}

// markerState reads an auth-results style marker such as "spf=fail" out of
// lowercased header text. An explicit fail wins over a pass.
func markerState(lower, mechanism string) string {
	if strings.Contains(lower, mechanism+"=fail") {
		return "fail"
	}
	if strings.Contains(lower, mechanism+"=pass") {
		return "pass"
	}
	return "neutral"
}

func extractAddr(pattern *regexp.Regexp, text string) string {
	m := pattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// AnalyzeBody scores email body text against the urgency keyword list.
// Each keyword counts once no matter how often it occurs. Text is NFKC
// normalized first so stylized Unicode lookalikes still match.
func AnalyzeBody(text string) BodyAnalysis {
	analysis := BodyAnalysis{Keywords: []string{}}
	if text == "" {
		return analysis
	}

	haystack := strings.ToLower(norm.NFKC.String(text))
	for _, kw := range urgencyKeywords {
		if strings.Contains(haystack, kw) {
			analysis.Score += keywordWeight
			analysis.Keywords = append(analysis.Keywords, kw)
		}
	}
	return analysis
}
