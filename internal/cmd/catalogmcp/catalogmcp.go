// Package catalogmcp parses catalog MCP command flags and serves the catalog
// tools over stdio.
package catalogmcp

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/buildbook/internal/platform/cmd"
	"github.com/louisbranch/buildbook/internal/services/catalog/mcptools"
)

// Config holds catalog MCP command configuration.
type Config struct {
	Addr string `env:"BUILDBOOK_CATALOG_ADDR" envDefault:"localhost:8095"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "catalog gRPC server address")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run serves the catalog MCP tools until ctx ends or stdin closes.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceCatalogMCP, func(ctx context.Context) error {
		return mcptools.Run(ctx, cfg.Addr)
	})
}
