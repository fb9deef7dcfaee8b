package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/zodiora/live/internal/adapters/http"
	"github.com/zodiora/live/internal/adapters/identity"
	"github.com/zodiora/live/internal/adapters/media"
	"github.com/zodiora/live/internal/adapters/ws"
	"github.com/zodiora/live/internal/app"
	"github.com/zodiora/live/internal/config"
	"github.com/zodiora/live/internal/content"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	// .env carries CONFIG_ENV and secrets in development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
	}

	manager := app.NewManager(content.NewLibrary(), app.SimplePolicy{}, app.Options{
		GraceWindow:    cfg.GraceWindow,
		CursorInterval: cfg.CursorInterval,
		IdleTimeout:    cfg.IdleTimeout,
		TypingTTL:      cfg.TypingTTL,
		ChatBurst:      cfg.ChatBurst,
		ChatWindow:     cfg.ChatWindow,
		SweepInterval:  cfg.SweepInterval,
	})
	go manager.Run(ctx)

	if cfg.JWTSecret == "" && !cfg.AllowGuests {
		log.Warn().Msg("jwt_secret is empty and guests are disabled; nobody can connect")
	}
	verifier := identity.NewVerifier(cfg.JWTSecret, cfg.AllowGuests)
	ctl := ws.NewController(manager, media.ICEConfig(cfg.StunServers), ws.Options{
		ReadLimit:  cfg.ReadLimit,
		SendBuffer: cfg.SendBuffer,
		PingPeriod: cfg.PingPeriod,
	})

	r := router.SetupRouter(ctx, cfg, manager, ctl, verifier)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("live session server started")
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
