package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/teamconnect/teamconnect/internal/config"
	"github.com/teamconnect/teamconnect/internal/directory"
	"github.com/teamconnect/teamconnect/internal/observability"
	"github.com/teamconnect/teamconnect/internal/server"
)

func main() {
	configPath := flag.String("config", "cmd/teamconnectd/config.toml", "path to server config")
	flag.Parse()

	observability.InitLogger("teamconnectd")

	cfg, err := config.LoadServerConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load server config")
	}
	log.Info().Str("path", *configPath).Msg("loaded server config")

	dir, err := directory.New(cfg.Teams, cfg.Statuses)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build directory")
	}
	log.Info().
		Strs("teams", cfg.Teams).
		Strs("statuses", cfg.Statuses).
		Msg("directory ready")

	srv := server.New("teamconnectd", cfg.Addr, dir, log.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.AdminAddr != "" {
		go func() {
			if err := srv.ServeAdmin(cfg.AdminAddr, cfg.CorsOrigins); err != nil {
				log.Error().Err(err).Msg("admin endpoint stopped")
			}
		}()
		log.Info().Str("addr", cfg.AdminAddr).Msg("admin endpoint started")
	}

	if err := srv.Serve(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("shutdown complete")
}
