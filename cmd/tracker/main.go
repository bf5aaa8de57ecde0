package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmanzanog/gainbase/internal/application"
	"github.com/jmanzanog/gainbase/internal/domain"
	"github.com/jmanzanog/gainbase/internal/infrastructure/config"
	"github.com/jmanzanog/gainbase/internal/infrastructure/marketdata"
	"github.com/jmanzanog/gainbase/internal/infrastructure/marketdata/finnhub"
	"github.com/jmanzanog/gainbase/internal/infrastructure/marketdata/twelvedata"
	"github.com/jmanzanog/gainbase/internal/infrastructure/marketdata/webapp"
	"github.com/jmanzanog/gainbase/internal/infrastructure/marketdata/yfinance"
	"github.com/jmanzanog/gainbase/internal/infrastructure/persistence/memory"
	"github.com/jmanzanog/gainbase/internal/infrastructure/persistence/sqldb"
	httpHandler "github.com/jmanzanog/gainbase/internal/interfaces/http"
	"github.com/joho/godotenv"
	_ "github.com/sijms/go-ora/v2"
)

// setupLogger configures and returns a structured logger with source information
func setupLogger(level string) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: true,
		Level:     parseLogLevel(level),
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, opts))
	slog.SetDefault(logger)
	return logger
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// initializeDatabase opens the configured store and runs migrations. The
// returned closer is nil for the in-memory store.
func initializeDatabase(cfg *config.Config) (domain.TransactionRepository, io.Closer, error) {
	if cfg.DBDriver == config.DBDriverMemory {
		slog.Warn("Using in-memory transaction store, data is lost on restart")
		return memory.NewTransactionRepository(), nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := sqldb.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return sqldb.NewRepository(db), db, nil
}

// buildServer creates and configures the HTTP server with all routes and handlers
func buildServer(cfg *config.Config, portfolioService *application.PortfolioService) *http.Server {
	router := gin.Default()
	handler := httpHandler.NewHandler(portfolioService)
	httpHandler.SetupRoutes(router, handler)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return server
}

// createMarketDataClient creates the appropriate market data client based on configuration
func createMarketDataClient(cfg *config.Config) marketdata.SnapshotProvider {
	switch cfg.MarketDataProvider {
	case config.MarketDataProviderYFinance:
		return yfinance.NewClientWithBaseURL(cfg.YFinanceBaseURL)
	case config.MarketDataProviderTwelveData:
		return twelvedata.NewClient(cfg.TwelveDataAPIKey)
	case config.MarketDataProviderFinnhub:
		return finnhub.NewClient(cfg.FinnhubAPIKey)
	default:
		return webapp.NewClient(cfg.TickersURL)
	}
}

// buildScheduler registers the backup job, or returns nil when backups are disabled.
func buildScheduler(cfg *config.Config, portfolioService *application.PortfolioService) (*application.Scheduler, error) {
	if cfg.BackupSchedule == "" {
		slog.Info("Scheduled backups disabled")
		return nil, nil
	}

	scheduler := application.NewScheduler()
	if err := scheduler.AddJob(cfg.BackupSchedule, application.NewBackupJob(portfolioService, cfg.BackupDir)); err != nil {
		return nil, fmt.Errorf("invalid BACKUP_SCHEDULE: %w", err)
	}
	return scheduler, nil
}

// App wraps the application components for easier testing
type App struct {
	Server        *http.Server
	PriceUpdater  *application.PriceUpdater
	Scheduler     *application.Scheduler
	DB            io.Closer
	CancelContext context.CancelFunc
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down application...")

	a.PriceUpdater.Stop()
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	a.CancelContext()

	if err := a.Server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			return fmt.Errorf("database close error: %w", err)
		}
	}

	return nil
}

// run contains the main application logic without os.Exit calls
// This makes it testeable
func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	setupLogger(cfg.LogLevel)

	marketDataClient := createMarketDataClient(cfg)
	slog.Info("Using market data provider", "provider", cfg.MarketDataProvider)

	repo, db, err := initializeDatabase(cfg)
	if err != nil {
		return fmt.Errorf("database initialization failed: %w", err)
	}
	slog.Info("Using transaction store", "driver", cfg.DBDriver)

	portfolioService := application.NewPortfolioService(repo, marketDataClient,
		application.WithDiscountRate(cfg.ProjectionDiscountRate),
		application.WithDefaultReturnRate(cfg.DefaultReturnRate),
	)

	scheduler, err := buildScheduler(cfg, portfolioService)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	priceUpdater := application.NewPriceUpdater(portfolioService, cfg.PriceRefreshInterval)
	go priceUpdater.Start(ctx)

	if scheduler != nil {
		scheduler.Start()
	}

	server := buildServer(cfg, portfolioService)

	// Create app wrapper
	app := &App{
		Server:        server,
		PriceUpdater:  priceUpdater,
		Scheduler:     scheduler,
		DB:            db,
		CancelContext: cancel,
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "host", cfg.ServerHost, "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	// Wait for termination signal or server error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
		slog.Info("Received shutdown signal")
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := app.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	slog.Info("Server exited gracefully")
	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error("Application error", "error", err)
		os.Exit(1)
	}
}
