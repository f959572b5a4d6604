// Package main provides a CLI for browsing the build catalog.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	buildscmd "github.com/louisbranch/buildbook/internal/cmd/builds"
	"github.com/louisbranch/buildbook/internal/platform/config"
)

func main() {
	cfg, err := buildscmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := buildscmd.Run(ctx, cfg, os.Stdout); err != nil {
		if errors.Is(err, buildscmd.ErrUsage) {
			config.ExitCodef(2, "%v", err)
		}
		config.Exitf("Error: %v", err)
	}
}
