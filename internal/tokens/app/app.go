package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/aussiebroadwan/tokenreg/internal/tokens/events"
	httpapi "github.com/aussiebroadwan/tokenreg/internal/tokens/http"
	"github.com/aussiebroadwan/tokenreg/internal/tokens/metrics"
	"github.com/aussiebroadwan/tokenreg/internal/tokens/remote"
	"github.com/aussiebroadwan/tokenreg/internal/tokens/service"
	"github.com/aussiebroadwan/tokenreg/internal/tokens/store"
	"github.com/aussiebroadwan/tokenreg/internal/tokens/store/drivers/postgres"
	"github.com/aussiebroadwan/tokenreg/internal/tokens/store/drivers/sqlite"
	"github.com/aussiebroadwan/tokenreg/pkg/httpx"
	"github.com/aussiebroadwan/tokenreg/pkg/jwtx"
	"github.com/aussiebroadwan/tokenreg/pkg/slogx"
)

const serviceName = "tokenreg"

// BuildVersion is overridden at build time via ldflags.
var BuildVersion = "v0.1.0"

// Application encapsulates the token registry with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	signer   jwtx.Signer
	verifier jwtx.Verifier
	redis    *redis.Client
	events   events.Publisher
	metrics  *metrics.Metrics
	promReg  *prometheus.Registry

	stopTracing func(context.Context) error

	// Services
	registry            *service.Registry
	tokenStore          *service.TokenStore
	tokenService        *service.TokenService
	requestVerifier     *service.RequestVerifier
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: serviceName,
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	stop, err := InitTracing(context.Background(), cfg.OTLPEndpoint, serviceName, BuildVersion)
	if err != nil {
		return nil, err
	}
	app.stopTracing = stop

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.signer, app.verifier, err = InitKeys(cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize JWT keys: %w", err)
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("token registry starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"algorithm", app.signer.Alg(),
		"db_engine", app.cfg.DBEngine,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = app.Shutdown()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down token registry...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.events.Close(); err != nil {
		app.logger.Error("error closing event publisher", "error", err)
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}
	if err := app.stopTracing(ctx); err != nil {
		app.logger.Error("error flushing traces", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("token registry stopped")
	return nil
}

// initDatabase opens the configured engine and applies migrations
func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)
	switch app.cfg.DBEngine {
	case EnginePostgres:
		db, err = postgres.NewStore(app.cfg.DBDSN, app.cfg.Columns)
	default:
		db, err = sqlite.NewStore(sqliteDSN(app.cfg.DBDSN), app.cfg.Columns)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if !app.cfg.DBMigrate {
		app.logger.Info("database migrations disabled")
		return nil
	}
	if !app.cfg.Columns.IsDefault() {
		app.logger.Info("custom token table configured, skipping migrations", "table", app.cfg.Columns.Table)
		return nil
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// sqliteDSN turns a bare file path into a modernc DSN with a busy timeout
// and WAL journaling.
func sqliteDSN(path string) string {
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return path
	}
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.promReg = prometheus.NewRegistry()
	app.promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = metrics.New(app.promReg)

	if len(app.cfg.KafkaBrokers) > 0 {
		app.events = events.NewKafkaPublisher(app.cfg.KafkaBrokers, app.cfg.KafkaTopic, app.logger)
		app.logger.Info("publishing token events to kafka",
			"brokers", app.cfg.KafkaBrokers, "topic", app.cfg.KafkaTopic)
	} else {
		app.events = events.NewLogPublisher(app.logger)
	}

	var cache remote.Cache
	if app.cfg.RedisAddr != "" {
		app.redis = redis.NewClient(&redis.Options{
			Addr:     app.cfg.RedisAddr,
			Password: app.cfg.RedisPassword,
			DB:       app.cfg.RedisDB,
		})
		cache = remote.NewRedisCache(app.redis)
		app.logger.Info("remote responses cached in redis", "addr", app.cfg.RedisAddr)
	} else {
		cache = remote.NewMemoryCache()
	}
	remoteClient := remote.NewClient(&http.Client{}, cache)

	app.tokenStore = service.NewTokenStore(app.db, app.signer, app.cfg.AccountLimit)
	app.registry = service.NewRegistry(app.db, app.tokenStore, remoteClient, app.events)

	app.tokenService = service.NewTokenService(app.registry, app.db, app.tokenStore, app.signer)
	app.tokenService.Remote = remoteClient
	app.tokenService.Events = app.events
	app.tokenService.Metrics = app.metrics

	app.requestVerifier = service.NewRequestVerifier(app.verifier)
	app.requestVerifier.Metrics = app.metrics

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	app.housekeepingService.Events = app.events
	app.housekeepingService.Metrics = app.metrics
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.signer,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.Registry = app.registry
	router.TokenService = app.tokenService
	router.Verifier = app.requestVerifier
	router.AdminKeyHash = app.cfg.AdminKeyHash
	router.AllowInsecureAdmin = app.cfg.IsDev()
	router.RateLimits = httpx.RateLimitProfilesFromEnv()
	router.Metrics = metrics.Handler(app.promReg)
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// Handler exposes the configured router, mainly for tests.
func (app *Application) Handler() http.Handler { return app.router }
