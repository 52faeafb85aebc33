package main

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/forgo/huddle/api/internal/cache"
	"github.com/forgo/huddle/api/internal/config"
	"github.com/forgo/huddle/api/internal/database"
	"github.com/forgo/huddle/api/internal/handler"
	"github.com/forgo/huddle/api/internal/metrics"
	"github.com/forgo/huddle/api/internal/middleware"
	"github.com/forgo/huddle/api/internal/pubsub"
	"github.com/forgo/huddle/api/internal/repository"
	"github.com/forgo/huddle/api/internal/service"
	"github.com/forgo/huddle/api/internal/telemetry"
	"github.com/forgo/huddle/api/pkg/jwt"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize structured logging
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var logger *slog.Logger
	if cfg.IsDevelopment() {
		logger = slog.New(slog.NewTextHandler(os.Stdout, opts))
	} else {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	slog.SetDefault(logger)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		slog.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("server exited")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// Initialize tracing
	shutdownTracing, err := telemetry.Init(ctx, logger, telemetry.Config{
		Enabled:      cfg.Telemetry.TracingEnabled,
		ServiceName:  cfg.Telemetry.ServiceName,
		Environment:  cfg.Server.Env,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		SampleRatio:  cfg.Telemetry.SampleRatio,
		Insecure:     !cfg.IsProduction(),
	})
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			slog.Warn("tracer shutdown failed", slog.String("error", err.Error()))
		}
	}()

	// Initialize database connection
	db, err := database.Open(database.Config{
		Driver:          cfg.Database.Driver,
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		Tracing:         cfg.Telemetry.TracingEnabled,
		Logger:          logger,
	})
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	if err := database.Migrate(db); err != nil {
		return err
	}
	slog.Info("connected to database", slog.String("driver", cfg.Database.Driver))

	// Initialize JWT service
	jwtService, err := newJWTService(cfg)
	if err != nil {
		return err
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	if cfg.Server.SeedData {
		seeded, err := service.NewSeederService(userRepo, activityRepo).Seed(ctx)
		if err != nil {
			return err
		}
		slog.Info("seed data",
			slog.Bool("skipped", seeded.Skipped),
			slog.Int("users", seeded.Users),
			slog.Int("activities", seeded.Activities),
		)
	}

	// Optional Redis: profile cache and chat backplane
	var (
		rdb          *redis.Client
		profileCache service.ProfileCache
		backplane    service.ChatBackplane
		bus          *pubsub.RedisBus
	)
	if cfg.RedisEnabled() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = rdb.Close() }()

		profileCache = cache.NewProfileCache(rdb, cfg.Redis.ProfileCacheTTL, logger,
			cache.WithObserver(metrics.ProfileCacheLookup),
		)
		bus, err = pubsub.NewRedisBus(rdb, cfg.Redis.ChatChannel, logger)
		if err != nil {
			return err
		}
		backplane = bus
		slog.Info("redis enabled", slog.String("addr", cfg.Redis.Addr))
	}

	// Initialize services
	accessor := middleware.ContextUserAccessor{}

	authService := service.NewAuthService(service.AuthServiceConfig{
		Users:    userRepo,
		JWT:      jwtService,
		Accessor: accessor,
	})
	profileService := service.NewProfileService(service.ProfileServiceConfig{
		Users:      userRepo,
		Activities: profileRepo,
		Cache:      profileCache,
		Accessor:   accessor,
	})
	activityService := service.NewActivityService(service.ActivityServiceConfig{
		Activities: activityRepo,
		Users:      userRepo,
		Cache:      profileCache,
		Accessor:   accessor,
	})
	hub := service.NewChatHub(service.ChatHubConfig{
		Activities: activityRepo,
		Users:      userRepo,
		Accessor:   accessor,
		Backplane:  backplane,
		Observer:   metrics.ChatMessage,
	})
	defer hub.Close()

	if bus != nil {
		if err := bus.StartForwarder(ctx, hub.Relay); err != nil {
			return err
		}
	}

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Rate:   int(math.Ceil(cfg.RateLimit.RequestsPerSecond)),
		Window: time.Second,
		Burst:  cfg.RateLimit.Burst,
	})
	defer rateLimiter.Stop()

	// Routes
	routes := handler.RouterConfig{
		Auth:       authService,
		Accounts:   handler.NewAccountHandler(authService),
		Profiles:   handler.NewProfileHandler(profileService),
		Activities: handler.NewActivityHandler(activityService),
		Chat:       handler.NewChatHandler(hub, cfg.Server.AllowedOrigins),
		Health:     handler.NewHealthHandler(readinessChecks(db, rdb)),
	}
	if cfg.Telemetry.MetricsEnabled {
		routes.Metrics = metrics.Handler()
	}
	if cfg.Server.StaticDir != "" {
		routes.Static = handler.NewSPAHandler(cfg.Server.StaticDir)
	}
	if rpm := cfg.RateLimit.UserRequestsPerMinute; rpm > 0 {
		userLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
			Rate:   rpm,
			Window: time.Minute,
			Burst:  cfg.RateLimit.Burst,
		})
		defer userLimiter.Stop()
		routes.UserLimit = userLimiter
	}
	mux := handler.NewRouter(routes)

	// Apply global middleware
	wrapped := middleware.Chain(
		mux,
		middleware.Recovery,
		middleware.RequestID,
		middleware.Tracing(cfg.Telemetry.ServiceName),
		middleware.Logger,
		middleware.SecurityHeaders(cfg.IsDevelopment()),
		middleware.CORS(cfg.Server.AllowedOrigins),
		middleware.RateLimit(rateLimiter),
		middleware.Compress,
	)
	if cfg.Telemetry.MetricsEnabled {
		wrapped = metrics.InstrumentHandler(wrapped)
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Chat connections are hijacked and not tracked by Shutdown
		hub.Close()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", slog.String("error", err.Error()))
			return err
		}
		return nil
	})

	return g.Wait()
}

// newJWTService loads the signing keys. Development falls back to an
// in-memory key pair so a fresh checkout can start without key files.
func newJWTService(cfg *config.Config) (*jwt.Service, error) {
	svc, err := jwt.NewService(jwt.Config{
		PrivateKeyPath: cfg.JWT.PrivateKeyPath,
		PublicKeyPath:  cfg.JWT.PublicKeyPath,
		Issuer:         cfg.JWT.Issuer,
		ExpirationMins: cfg.JWT.ExpirationMins,
	})
	if err == nil || !cfg.IsDevelopment() {
		return svc, err
	}

	slog.Warn("JWT keys unavailable, using ephemeral keys", slog.String("error", err.Error()))
	return jwt.NewEphemeralService(cfg.JWT.Issuer, time.Duration(cfg.JWT.ExpirationMins)*time.Minute)
}

func readinessChecks(db *gorm.DB, rdb *redis.Client) map[string]handler.ReadinessCheck {
	checks := map[string]handler.ReadinessCheck{
		"database": func(ctx context.Context) error { return database.Ping(ctx, db) },
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	return checks
}
