// Package main starts the catalog MCP stdio server.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/louisbranch/buildbook/internal/cmd/catalogmcp"
)

func main() {
	cfg, err := catalogmcp.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[CATALOG-MCP] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := catalogmcp.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
