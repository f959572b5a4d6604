// Package catalog parses catalog service flags and launches the service.
package catalog

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/buildbook/internal/platform/cmd"
	server "github.com/louisbranch/buildbook/internal/services/catalog/app"
)

// Config holds catalog command configuration.
type Config struct {
	Port    int    `env:"BUILDBOOK_CATALOG_PORT" envDefault:"8095"`
	Dataset string `env:"BUILDBOOK_CATALOG_DATASET"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The catalog gRPC server port")
	fs.StringVar(&cfg.Dataset, "dataset", cfg.Dataset, "Optional build dataset YAML replacing the embedded one")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the catalog gRPC API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceCatalog, func(ctx context.Context) error {
		return server.Run(ctx, cfg.Port, server.Options{DatasetPath: cfg.Dataset})
	})
}
