package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/teamconnect/teamconnect/internal/client"
	"github.com/teamconnect/teamconnect/internal/config"
	"github.com/teamconnect/teamconnect/internal/observability"
	"github.com/teamconnect/teamconnect/internal/protocol/wire"
)

func main() {
	configPath := flag.String("config", "", "path to client config (overrides the other flags)")
	serverAddr := flag.String("server", "localhost:7400", "server address")
	name := flag.String("name", "", "display name")
	netID := flag.Uint("netid", uint(wire.NetworkIDLimit), "reattach to a network id from an earlier session")
	flag.Parse()

	logger := observability.InitLogger("teamconnect")

	cfg := config.ClientConfig{ServerAddr: *serverAddr, Name: *name, NetID: uint32(*netID)}
	if *configPath != "" {
		var err error
		cfg, err = config.LoadClientConfig(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load client config")
		}
	}

	sess, err := client.Dial(cfg.ServerAddr, cfg.Name, cfg.NetID, logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start client")
	}
	defer sess.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Attempting to connect to server at %s\n", cfg.ServerAddr)
	if err := sess.Bootstrap(ctx); err != nil {
		log.Fatal().Err(err).Msg("bootstrap failed")
	}
	fmt.Printf("Now running TeamConnect client with netID %d\n", sess.NetID())

	if err := sess.RunMenu(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("client stopped")
	}
}
