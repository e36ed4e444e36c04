package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/IGedeRyandikaPramudiaWardana/uts-billing-frontend-1/internal/config"
	"github.com/IGedeRyandikaPramudiaWardana/uts-billing-frontend-1/internal/gateway"
	"github.com/IGedeRyandikaPramudiaWardana/uts-billing-frontend-1/internal/logging"
	"github.com/IGedeRyandikaPramudiaWardana/uts-billing-frontend-1/internal/redis"
	"github.com/IGedeRyandikaPramudiaWardana/uts-billing-frontend-1/internal/server"
	"github.com/IGedeRyandikaPramudiaWardana/uts-billing-frontend-1/internal/session"
	"github.com/IGedeRyandikaPramudiaWardana/uts-billing-frontend-1/internal/tokenstore"
)

const hydrationTimeout = 30 * time.Second

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupRedis(ctx context.Context, cfg *config.Config) *goredis.Client {
	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func runGracefulShutdown(srv *server.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	redisClient := setupRedis(context.Background(), cfg)
	defer func() { _ = redisClient.Close() }()

	store := tokenstore.NewRedisStore(redisClient, cfg.SessionMaxAge)

	// The gateway reads the freshest token on every request, so a login or
	// forced logout takes effect immediately.
	api := gateway.NewClient(cfg.APIBaseURL, cfg.APITimeout, func(ctx context.Context) string {
		token, ok, err := store.Get(ctx, tokenstore.KeyAuthToken)
		if err != nil || !ok {
			return ""
		}
		return token
	})

	sessionMgr := session.NewManager(store, api, clock)

	// Hydrate the persisted session in the background; the guard answers
	// with a loading placeholder until this settles.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), hydrationTimeout)
		defer cancel()
		sessionMgr.Initialize(ctx)
		slog.Info("Session hydrated", "state", sessionMgr.State())
	}()

	banjarCache := gateway.NewBanjarCache(api.Banjars, cfg.BanjarCacheTTL, clock)

	healthChecks := []server.HealthCheck{
		{Name: "redis", Check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}},
	}

	srv := server.NewServer(cfg, api, banjarCache, sessionMgr, healthChecks)

	done := runGracefulShutdown(srv)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
	slog.Info("Application stopped")
}
