package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/vortex/backend/internal/ratelimit"
	"github.com/anonto42/vortex/backend/internal/router"
	"github.com/anonto42/vortex/backend/internal/session"
	"github.com/anonto42/vortex/backend/pkg/config"
	"github.com/anonto42/vortex/backend/pkg/firebase"
	"github.com/anonto42/vortex/backend/pkg/logger"
	"github.com/anonto42/vortex/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "vortex:", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(cfg, log)
	if err != nil {
		return fmt.Errorf("initializing databases: %w", err)
	}
	defer db.CloseDB(log)

	if err := config.Migrate(db.SQL); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}

	codec, err := session.NewCodec(cfg.SessionSecret)
	if err != nil {
		return err
	}

	limiter, closeLimiter, err := newLimiter(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeLimiter()

	deps := router.Deps{
		Config:  cfg,
		SQL:     db.SQL,
		Codec:   codec,
		Limiter: limiter,
		Logger:  log,
	}
	if db.Mongo != nil {
		deps.Mongo = db.Mongo.Database(cfg.MongoDatabase)
	}

	// Firebase sign-in is optional
	if cfg.FirebaseCredentialsPath != "" {
		client, err := firebase.NewAuthClient(ctx, cfg.FirebaseCredentialsPath, log)
		if err != nil {
			log.Warn("firebase sign-in disabled", zap.Error(err))
		} else {
			deps.Firebase = client
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validators.NewValidator()

	if err := router.SetupRoutes(ctx, e, deps); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func newLimiter(ctx context.Context, cfg *config.Config, log *zap.Logger) (ratelimit.Limiter, func(), error) {
	if cfg.RateLimitStore != "redis" {
		return ratelimit.NewMemory(cfg.RateLimitMax, cfg.RateLimitWindow), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		// the limiter fails open, so an unreachable redis only loses limiting
		log.Warn("redis unreachable, requests will not be limited until it recovers", zap.Error(err))
	}
	closeFn := func() {
		if err := client.Close(); err != nil {
			log.Error("closing redis", zap.Error(err))
		}
	}
	return ratelimit.NewRedis(client, "vortex:ratelimit:", cfg.RateLimitMax, cfg.RateLimitWindow), closeFn, nil
}
