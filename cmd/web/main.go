package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"holidaze/internal/adapters/contentapi"
	server "holidaze/internal/adapters/http_server"
	"holidaze/internal/adapters/observability"
	redisad "holidaze/internal/adapters/redis"
	"holidaze/internal/app"
	"holidaze/internal/domain"
	"holidaze/internal/session"
	"holidaze/internal/shared"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// sessions
	var store domain.SessionStore
	switch cfg.SessionStore {
	case "memory":
		store = session.NewMemoryStore()
		log.Warn().Msg("using in-memory session store; sessions are lost on restart")
	default:
		rs := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rs.Ping(ctx)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed")
		}
		defer rs.Close()
		log.Info().Msg("redis connection ok")
		store = rs
	}
	sessions := session.NewManager(store, cfg.SessionTTL, cfg.SessionMaxTTL, cfg.CookieSecure)

	// deps
	api, err := contentapi.New(cfg.ContentAPI, cfg.APITimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize content API client")
	}
	views, err := server.NewViews()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse templates")
	}

	// http
	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Auth:           app.NewAuthService(api),
		Establishments: app.NewEstablishmentService(api),
		Sessions:       sessions,
		Views:          views,
	})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("content_api", cfg.ContentAPI).Msg("web listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Warn().Msg("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server exited")
}
