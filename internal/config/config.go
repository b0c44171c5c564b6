// Package config loads and validates the TOML configuration for the
// TeamConnect server and client binaries.
package config

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/teamconnect/teamconnect/internal/directory"
	"github.com/teamconnect/teamconnect/internal/protocol/ident"
	"github.com/teamconnect/teamconnect/internal/protocol/wire"
)

type ServerConfig struct {
	Addr        string   `toml:"addr"`
	AdminAddr   string   `toml:"admin_addr"`
	CorsOrigins []string `toml:"cors_origins"`
	Teams       []string `toml:"teams"`
	Statuses    []string `toml:"statuses"`
}

type ClientConfig struct {
	ServerAddr string `toml:"server_addr"`
	Name       string `toml:"name"`
	// NetID ties the client to an identity it registered in an earlier
	// session. Left unset, the client requests a fresh network ID.
	NetID uint32 `toml:"net_id"`
}

func LoadServerConfig(path string) (ServerConfig, error) {
	var cfg ServerConfig
	if err := loadToml(path, &cfg); err != nil {
		return ServerConfig{}, err
	}
	if cfg.Addr == "" {
		cfg.Addr = ":7400"
	}
	if err := ValidateServerConfig(cfg); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}

func LoadClientConfig(path string) (ClientConfig, error) {
	cfg := ClientConfig{NetID: wire.NetworkIDLimit}
	if err := loadToml(path, &cfg); err != nil {
		return ClientConfig{}, err
	}
	if cfg.ServerAddr == "" {
		cfg.ServerAddr = "localhost:7400"
	}
	if err := ValidateClientConfig(cfg); err != nil {
		return ClientConfig{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidateServerConfig(cfg ServerConfig) error {
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("server config missing addr")
	}
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return fmt.Errorf("server config addr invalid: %w", err)
	}
	if len(cfg.Teams) < 1 || len(cfg.Teams) > directory.MaxTeamCount {
		return fmt.Errorf("server config needs between 1 and %d teams, got %d", directory.MaxTeamCount, len(cfg.Teams))
	}
	if len(cfg.Statuses) < 1 || len(cfg.Statuses) > directory.MaxStatusCount {
		return fmt.Errorf("server config needs between 1 and %d statuses, got %d", directory.MaxStatusCount, len(cfg.Statuses))
	}
	for _, name := range cfg.Teams {
		if !ident.IsValid(name) {
			return fmt.Errorf("team name %q invalid: 1 to %d letters, numbers and spaces", name, ident.SlotSize)
		}
	}
	for _, name := range cfg.Statuses {
		if !ident.IsValid(name) {
			return fmt.Errorf("status name %q invalid: 1 to %d letters, numbers and spaces", name, ident.SlotSize)
		}
	}
	return nil
}

func ValidateClientConfig(cfg ClientConfig) error {
	if strings.TrimSpace(cfg.ServerAddr) == "" {
		return fmt.Errorf("client config missing server_addr")
	}
	if !ident.IsValid(cfg.Name) {
		return fmt.Errorf("display name %q invalid: 1 to %d letters, numbers and spaces", cfg.Name, ident.SlotSize)
	}
	if cfg.NetID > wire.NetworkIDLimit {
		return fmt.Errorf("client config net_id out of range: %d", cfg.NetID)
	}
	return nil
}
