package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/gymflow-backend/internal/data/db"
	"github.com/yungbote/gymflow-backend/internal/http"
	"github.com/yungbote/gymflow-backend/internal/observability"
	"github.com/yungbote/gymflow-backend/internal/platform/datemath"
	"github.com/yungbote/gymflow-backend/internal/platform/logger"
)

const shutdownTimeout = 20 * time.Second

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *http.Server
	Cfg      Config
	Repos    Repos
	Services Services
	Clients  Clients
	Metrics  *observability.Metrics

	store        *db.PostgresService
	otelShutdown func(context.Context) error
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})
	metrics := observability.Init(log)

	store, err := openStore(log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}
	if err := db.AutoMigrateAll(store.DB()); err != nil {
		_ = store.Close()
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	theDB := store.DB()

	clients, err := wireClients(log, cfg)
	if err != nil {
		_ = store.Close()
		log.Sync()
		return nil, err
	}

	clock := datemath.NewSystemClock(cfg.Location)
	reposet := wireRepos(theDB, log)
	aggs := wireAggregates(theDB, log, metrics, clock, reposet)
	serviceset, err := wireServices(theDB, log, cfg, metrics, clock, reposet, aggs, clients)
	if err != nil {
		clients.Close()
		_ = store.Close()
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, theDB, serviceset)
	middleware := wireMiddleware(log, serviceset)
	server := wireServer(log, cfg, metrics, handlerset, middleware)

	return &App{
		Log:          log,
		DB:           theDB,
		Server:       server,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Clients:      clients,
		Metrics:      metrics,
		store:        store,
		otelShutdown: otelShutdown,
	}, nil
}

func openStore(log *logger.Logger, cfg Config) (*db.PostgresService, error) {
	switch cfg.DatabaseDriver {
	case "sqlite":
		s, err := db.NewSQLiteService(log, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("init sqlite: %w", err)
		}
		return s, nil
	case "", "postgres":
		s, err := db.NewPostgresService(log)
		if err != nil {
			return nil, fmt.Errorf("init postgres: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}
}

// Run serves HTTP and runs the expiration sweep until ctx is done, then shuts
// everything down in dependency order.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}

	bgCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.Metrics.StartServer(bgCtx, a.Log, a.Cfg.MetricsAddr)
	a.Metrics.StartPostgresCollector(bgCtx, a.Log, a.DB)
	if a.Clients.Bookings != nil {
		a.Metrics.StartRedisCollector(bgCtx, a.Log, a.Clients.Bookings.Client())
	}
	if a.Services.Sweeper != nil {
		a.Services.Sweeper.Start()
	}

	addr := ":" + a.Cfg.Port
	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("Server listening", "addr", addr)
		errCh <- a.Server.Run(addr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.Log.Info("Shutdown requested")
	case runErr = <-errCh:
		if runErr != nil {
			a.Log.Error("Server failed", "error", runErr)
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	a.shutdown(shutdownCtx)
	return runErr
}

func (a *App) shutdown(ctx context.Context) {
	if err := a.Server.Shutdown(ctx); err != nil {
		a.Log.Warn("HTTP shutdown incomplete", "error", err)
	}
	if a.Services.Sweeper != nil {
		a.Services.Sweeper.Stop(ctx)
	}
	if a.Services.Schedule != nil {
		if err := a.Services.Schedule.Drain(ctx); err != nil {
			a.Log.Warn("Booking notifications still in flight at shutdown", "error", err)
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	a.Close()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.Log.Warn("database close failed", "error", err)
		}
		a.store = nil
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
