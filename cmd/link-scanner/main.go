package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mikey/linkguard/internal/config"
	"github.com/mikey/linkguard/internal/core"
	"github.com/mikey/linkguard/internal/factory"
	"github.com/mikey/linkguard/internal/logging"
	"go.uber.org/zap"
)

var (
	// Target flags
	targetURL    = flag.String("url", "", "URL to scan (required)")
	anchorText   = flag.String("anchor-text", "", "Anchor text the URL was presented with")
	senderDomain = flag.String("sender-domain", "", "Sender domain for SPF/DMARC checks")

	// Reputation source flags
	vtAPIKey = flag.String("virustotal-api-key", "", "API key for VirusTotal")
	sbAPIKey = flag.String("safebrowsing-api-key", "", "API key for Google Safe Browsing")

	// Scan flags
	trustedDomains = flag.String("trusted", "", "Comma-separated list of trusted domains")
	timeout        = flag.Duration("timeout", 30*time.Second, "Overall scan timeout")

	// Output flags
	jsonOutput = flag.Bool("json", false, "Print the verdict as JSON")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func main() {
	flag.Parse()

	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *targetURL == "" {
		fmt.Fprintln(os.Stderr, "Usage: link-scanner -url <url> [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	var cfg *config.Config
	if *configFile != "" {
		cfg, err = config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		cfg = createConfigFromFlags()
	}

	cacheFactory := factory.NewCacheFactory(cfg, logger)
	verdictCache, err := cacheFactory.CreateVerdictCache()
	if err != nil {
		logger.Fatal("Failed to create cache", zap.Error(err))
	}

	scannerFactory := factory.NewScannerFactory(cfg, logger, factory.NewReputationFactory(cfg, logger), cacheFactory)
	scanner, err := scannerFactory.CreateScanner(verdictCache)
	if err != nil {
		logger.Fatal("Failed to create scanner", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	verdict, err := scanner.Aggregate(ctx, core.ScanTarget{
		URL:          *targetURL,
		AnchorText:   *anchorText,
		SenderDomain: *senderDomain,
	})
	if err != nil {
		logger.Fatal("Scan failed", zap.Error(err))
	}

	if stopper, ok := verdictCache.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	printVerdict(verdict)
	if verdict.Verdict == core.VerdictMalicious {
		os.Exit(1)
	}
}

// printVerdict writes the scan result to stdout
func printVerdict(verdict *core.AggregatedVerdict) {
	if *jsonOutput {
		out, err := json.MarshalIndent(verdict, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode verdict: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
		return
	}

	fmt.Printf("URL:      %s\n", verdict.URL)
	fmt.Printf("Verdict:  %s\n", verdict.Verdict)
	fmt.Printf("Score:    %d/100\n", verdict.Score)
	if len(verdict.Breakdown.Reputation) > 0 {
		fmt.Println("Sources:")
		for name, score := range verdict.Breakdown.Reputation {
			fmt.Printf("  %-14s %d\n", name, score)
		}
	} else {
		fmt.Println("Sources:  none available (heuristics only)")
	}
	fmt.Printf("Base:     %d  Heuristics: +%d  Auth: %+d\n",
		verdict.Breakdown.BaseScore, verdict.Breakdown.Heuristics, verdict.Breakdown.AuthAdjustment)
	if verdict.Breakdown.RedirectCount > 0 {
		fmt.Printf("Redirects: %d -> %s\n", verdict.Breakdown.RedirectCount, verdict.Breakdown.FinalURL)
	}
	if verdict.Breakdown.Override {
		fmt.Println("Override: vendor flagged malicious/phishing")
	}
}

// createConfigFromFlags builds a configuration from the command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	v.Set("virustotal.api_key", *vtAPIKey)
	v.Set("safebrowsing.api_key", *sbAPIKey)
	if *trustedDomains != "" {
		domains := strings.Split(*trustedDomains, ",")
		for i, d := range domains {
			domains[i] = strings.TrimSpace(d)
		}
		v.Set("scan.trusted_domains", domains)
	}

	// One-shot scans have no use for a persistent cache
	v.Set("cache.enabled", false)

	return config.NewFromViper(v)
}
