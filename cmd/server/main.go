package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/livegate/livegate/internal/adapters/httpapi"
	"github.com/livegate/livegate/internal/adapters/ws"
	"github.com/livegate/livegate/internal/config"
	"github.com/livegate/livegate/internal/presence"
	"github.com/livegate/livegate/internal/room"
	"github.com/livegate/livegate/internal/token"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	var store presence.Store
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable")
		}
		store = presence.NewRedisStore(rdb, cfg.HeartbeatTTL)
		log.Info().Str("addr", cfg.RedisAddr).Msg("using redis presence store")
	} else {
		store = presence.NewMemoryStore(cfg.HeartbeatTTL)
		log.Info().Msg("using in-memory presence store")
	}

	// Presence keeps working without credentials; only token issuance is off.
	builder, err := token.NewBuilder(cfg.AppID, cfg.AppCertificate)
	if err != nil {
		log.Warn().Err(err).Msg("token issuance disabled")
		builder = nil
	}

	hub := room.NewHub()
	limiter := httpapi.NewRateLimiter(cfg.RateLimit, cfg.RateInterval)
	api := httpapi.NewAPI(builder, store, hub, limiter, cfg.TokenExpiry)
	wsctl := ws.NewController(hub, cfg.ReadLimit)

	r := httpapi.SetupRouter(ctx, cfg, api, wsctl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("livegate server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
