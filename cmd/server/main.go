package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	webAdapter "bookkeeping/internal/adapters/web"
	"bookkeeping/internal/ai"
	"bookkeeping/internal/app"
	"bookkeeping/internal/config"
	"bookkeeping/internal/logging"
	"bookkeeping/internal/store"

	"github.com/rs/zerolog/log"
)

const minJWTSecret = 32

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if len(cfg.JWTSecret) < minJWTSecret {
		logger.Fatal().Int("min_length", minJWTSecret).Msg("JWT_SECRET is missing or too short")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := store.Open(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("store")
	}
	defer closeStore()

	var agent ai.AgentService
	if cfg.OpenAIAPIKey != "" {
		agent = ai.NewAgent(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	} else {
		logger.Warn().Msg("OPENAI_API_KEY is not set; AI payment entry disabled")
	}

	svc := app.NewAppService(st, agent)
	handler := webAdapter.NewHandler(ctx, svc, cfg.AllowedOrigins, cfg.JWTSecret, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown")
		}
	}()

	logger.Info().Str("port", cfg.ServerPort).Str("store", cfg.Store).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server")
	}
	logger.Info().Msg("server stopped")
}
