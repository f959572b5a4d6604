// Package timeouts defines shared timeout constants so the catalog clients
// agree on how long to wait.
package timeouts

import "time"

// GRPCDial caps the connect and health wait against the catalog server.
const GRPCDial = 10 * time.Second

// GRPCRequest caps a single catalog call made by the MCP tools or the builds
// CLI.
const GRPCRequest = 5 * time.Second

// Shutdown limits how long telemetry may flush on exit.
const Shutdown = 5 * time.Second
