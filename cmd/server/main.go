package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/freeflow/signaling/internal/adapters/chat"
	router "github.com/freeflow/signaling/internal/adapters/http"
	"github.com/freeflow/signaling/internal/app"
	"github.com/freeflow/signaling/internal/config"
	"github.com/freeflow/signaling/internal/storage"
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
	if cfg.Mode == "debug" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	orch := app.NewOrchestrator()

	// The group store is optional: without a data path the server runs as
	// a pure in-memory signaling relay.
	var groups *storage.GroupStore
	if cfg.DataPath != "" {
		groups, err = storage.Open(cfg.DataPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open group store")
		}
		defer func() {
			if err := groups.Close(); err != nil {
				log.Error().Err(err).Msg("group store close")
			}
		}()
	}
	hub := chat.NewHub()

	r := router.SetupRouter(ctx, cfg, orch, groups, hub)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("FreeFlow signaling server started")
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
