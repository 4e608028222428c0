// Package main is the entry point for the service.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/text/language"

	rediscache "github.com/jsamuelsen/lingo-service/internal/adapters/cache/redis"
	"github.com/jsamuelsen/lingo-service/internal/adapters/http"
	"github.com/jsamuelsen/lingo-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/lingo-service/internal/adapters/persistence/memory"
	"github.com/jsamuelsen/lingo-service/internal/adapters/persistence/postgres"
	"github.com/jsamuelsen/lingo-service/internal/app"
	"github.com/jsamuelsen/lingo-service/internal/platform/config"
	"github.com/jsamuelsen/lingo-service/internal/platform/i18n"
	"github.com/jsamuelsen/lingo-service/internal/platform/logging"
	"github.com/jsamuelsen/lingo-service/internal/platform/telemetry"
	"github.com/jsamuelsen/lingo-service/internal/ports"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the service.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// 1. Determine profile from environment
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	// 2. Load and validate configuration (fail fast)
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 3. Initialize logging
	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
	)

	// 4. Initialize telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(ctx); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	// 5. Load message catalogs; the fallback locale must have a bundle
	fallback, err := language.Parse(cfg.I18n.FallbackLocale)
	if err != nil {
		return fmt.Errorf("parsing fallback locale: %w", err)
	}

	catalog, err := i18n.LoadCatalog(cfg.I18n.Dir, fallback)
	if err != nil {
		return fmt.Errorf("loading catalogs: %w", err)
	}

	translator := i18n.NewTranslator(catalog, fallback)

	logger.Info("catalogs loaded", slog.Any("locales", catalog.Locales()))

	// 6. Create health registry and user storage
	healthRegistry := ports.NewHealthRegistry()

	store, err := openUserStore(ctx, cfg, healthRegistry, logger)
	if err != nil {
		return err
	}
	defer store.close()

	// 7. Create user service (application layer)
	userService := app.NewUserService(app.UserServiceConfig{
		Repository: store.repo,
		Cache:      store.cache,
		Logger:     logger,
	})

	// 8. Create handlers
	buildInfo := handlers.NewBuildInfo(Version, Commit, BuildTime).WithLocales(fallback.String(), catalog.Locales())
	healthHandler := handlers.NewHealthHandler(healthRegistry, buildInfo)

	// 9. Create HTTP server
	server := http.New(&cfg.Server, logger)

	// 10. Setup router with all middleware and routes
	routerCfg := http.NewDefaultRouterConfig(logger, cfg, translator, healthHandler)
	routerCfg.UserHandler = handlers.NewUserHandler(userService)
	routerCfg.DemoHandler = handlers.NewDemoHandler(translator)
	http.SetupRouter(server.Engine(), routerCfg)

	// 11. Start server (non-blocking)
	serverErr := server.Start()

	// 12. Wait for shutdown signal
	return waitForShutdown(ctx, logger, server, serverErr, cfg.Server.ShutdownTimeout)
}

// userStore holds the repository, the optional cache and their cleanup.
type userStore struct {
	repo    ports.UserRepository
	cache   ports.UserCache
	closers []func()
}

func (s *userStore) close() {
	for _, closeFn := range s.closers {
		closeFn()
	}
}

// openUserStore connects Postgres and Redis when enabled and registers them
// as health checks. Without a database users are kept in memory.
func openUserStore(
	ctx context.Context,
	cfg *config.Config,
	registry ports.HealthRegistry,
	logger *slog.Logger,
) (*userStore, error) {
	store := &userStore{}

	if cfg.Database.Enabled {
		pool, err := postgres.Connect(ctx, &cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connecting database: %w", err)
		}

		store.closers = append(store.closers, pool.Close)

		repo := postgres.NewUserRepository(pool)
		if err := repo.Migrate(ctx); err != nil {
			store.close()
			return nil, fmt.Errorf("migrating database: %w", err)
		}

		if err := registry.Register(repo); err != nil {
			store.close()
			return nil, fmt.Errorf("registering database health check: %w", err)
		}

		store.repo = repo
	} else {
		logger.Warn("database disabled, users are kept in memory")

		store.repo = memory.NewUserRepository()
	}

	if cfg.Redis.Enabled {
		client := rediscache.NewClient(&cfg.Redis)
		store.closers = append(store.closers, func() {
			if err := client.Close(); err != nil {
				logger.Warn("closing redis client", slog.Any("error", err))
			}
		})

		cache := rediscache.NewUserCache(client, cfg.Redis.TTL)
		if err := registry.Register(cache); err != nil {
			store.close()
			return nil, fmt.Errorf("registering cache health check: %w", err)
		}

		store.cache = cache
	}

	return store, nil
}

// waitForShutdown blocks until a shutdown signal is received or server error occurs.
// It then performs graceful shutdown of the HTTP server.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)

	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	logger.Info("initiating graceful shutdown",
		slog.Duration("timeout", shutdownTimeout),
	)

	// Stop accepting new requests, drain in-flight
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}
