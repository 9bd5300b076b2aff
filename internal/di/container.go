package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/linkguard/internal/adapters/httpserver"
	"github.com/mikey/linkguard/internal/config"
	"github.com/mikey/linkguard/internal/core"
	"github.com/mikey/linkguard/internal/factory"
	"github.com/mikey/linkguard/internal/logging"
	"github.com/mikey/linkguard/internal/ports"
	"github.com/mikey/linkguard/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
// for the server daemon
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewReputationFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewScannerFactory); err != nil {
		return nil, err
	}

	// Register verdict cache
	if err := container.Provide(func(f *factory.CacheFactory) (core.VerdictCache, error) {
		return f.CreateVerdictCache()
	}); err != nil {
		return nil, err
	}

	// Register scanner
	if err := container.Provide(func(f *factory.ScannerFactory, cache core.VerdictCache) (*core.Scanner, error) {
		return f.CreateScanner(cache)
	}); err != nil {
		return nil, err
	}

	// Register HTTP server
	if err := container.Provide(func(
		scanner *core.Scanner,
		text *utils.TextProcessor,
		logger *zap.Logger,
		cfg *config.Config,
	) ports.ApiServer {
		return httpserver.NewServer(
			scanner,
			text,
			logger,
			cfg.GetString("server.listen_address"),
			cfg.GetScoring().MaxBodySize,
		)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
