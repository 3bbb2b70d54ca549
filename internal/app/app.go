// Package app wires configuration, storage, clients, services, and the
// background schedulers into a single application core.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fundwatch/fundwatch/internal/cache"
	"github.com/fundwatch/fundwatch/internal/clients/eastmoney"
	"github.com/fundwatch/fundwatch/internal/common"
	"github.com/fundwatch/fundwatch/internal/interfaces"
	"github.com/fundwatch/fundwatch/internal/models"
	"github.com/fundwatch/fundwatch/internal/services/fund"
	"github.com/fundwatch/fundwatch/internal/services/portfolio"
	"github.com/fundwatch/fundwatch/internal/services/quotes"
	"github.com/fundwatch/fundwatch/internal/storage"
)

// App holds all initialized services and clients. It is the shared core
// behind cmd/fundwatch-server.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	Client           interfaces.MarketDataClient
	QuoteFeed        *quotes.Feed
	FundService      interfaces.FundService
	PortfolioService interfaces.PortfolioService
	StartupTime      time.Time

	schedulerCancel context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes storage, the provider client, and all services.
// configPath may be empty, in which case the default resolution logic is
// used: FUNDWATCH_CONFIG, then fundwatch.toml next to the binary, then the
// development fallback.
func NewApp(configPath string) (*App, error) {
	binDir := getBinaryDir()

	if configPath == "" {
		configPath = os.Getenv("FUNDWATCH_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "fundwatch.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/fundwatch.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage path to the binary directory so the server is
	// self-contained regardless of working directory.
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}

	logger := common.NewLogger(config.Logging.Level)

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	client := eastmoney.NewClient(
		eastmoney.WithBaseURL(config.Provider.BaseURL),
		eastmoney.WithRateLimit(config.Provider.RateLimit),
		eastmoney.WithTimeout(config.Provider.GetTimeout()),
		eastmoney.WithLogger(logger),
	)

	quoteCache := cache.New[models.Quote](config.Cache.GetQuoteTTL())
	catalogCache := cache.New[[]models.CatalogEntry](config.Cache.GetCatalogTTL())
	feed := quotes.NewFeed(quoteCache, client, logger)

	fundService := fund.NewService(storageManager, client, feed, catalogCache, logger)
	portfolioService := portfolio.NewService(storageManager, feed, logger)

	logger.Info().
		Str("version", common.GetVersion()).
		Str("environment", config.Environment).
		Str("storage", config.Storage.Path).
		Msg("FundWatch initialized")

	return &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		Client:           client,
		QuoteFeed:        feed,
		FundService:      fundService,
		PortfolioService: portfolioService,
		StartupTime:      time.Now(),
	}, nil
}

// StartSchedulers launches the background quote refresh and daily snapshot
// jobs. Idempotent; a second call is a no-op.
func (a *App) StartSchedulers() {
	if a.schedulerCancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.schedulerCancel = cancel

	go a.runQuoteRefresher(ctx, a.Config.Scheduler.GetQuoteInterval())
	go a.runSnapshotJob(ctx, a.Config.Scheduler.GetSnapshotInterval())

	a.Logger.Info().
		Dur("quote_interval", a.Config.Scheduler.GetQuoteInterval()).
		Dur("snapshot_interval", a.Config.Scheduler.GetSnapshotInterval()).
		Msg("Schedulers started")
}

// Close stops the schedulers and releases storage.
func (a *App) Close() error {
	if a.schedulerCancel != nil {
		a.schedulerCancel()
		a.schedulerCancel = nil
	}
	if a.Storage != nil {
		return a.Storage.Close()
	}
	return nil
}
