// Package grpc holds client helpers shared by the catalog commands.
package grpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	gogrpc "google.golang.org/grpc"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// Backoff controls how often a health check is retried.
type Backoff struct {
	Initial     time.Duration
	Max         time.Duration
	CallTimeout time.Duration
}

// DefaultBackoff starts at 200ms and doubles up to one second.
var DefaultBackoff = Backoff{
	Initial:     200 * time.Millisecond,
	Max:         time.Second,
	CallTimeout: time.Second,
}

func (b Backoff) normalized() Backoff {
	if b.Initial <= 0 {
		b.Initial = DefaultBackoff.Initial
	}
	if b.Max < b.Initial {
		b.Max = b.Initial
	}
	if b.CallTimeout <= 0 {
		b.CallTimeout = DefaultBackoff.CallTimeout
	}
	return b
}

// WaitForHealth blocks until the health check for service reports SERVING or
// the context ends. An empty service checks the server as a whole.
func WaitForHealth(ctx context.Context, conn *gogrpc.ClientConn, service string, backoff Backoff, logf func(string, ...any)) error {
	if conn == nil {
		return errors.New("gRPC connection is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	backoff = backoff.normalized()

	healthClient := grpc_health_v1.NewHealthClient(conn)
	delay := backoff.Initial
	for {
		callCtx, cancel := context.WithTimeout(ctx, backoff.CallTimeout)
		response, err := healthClient.Check(callCtx, &grpc_health_v1.HealthCheckRequest{Service: service})
		cancel()
		if err == nil && response.GetStatus() == grpc_health_v1.HealthCheckResponse_SERVING {
			if logf != nil {
				logf("health check for %q is SERVING", service)
			}
			return nil
		}
		if logf != nil {
			if err != nil {
				logf("waiting for %q health: %v", service, err)
			} else {
				logf("waiting for %q health: status %s", service, response.GetStatus().String())
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for gRPC health: %w", ctx.Err())
		case <-time.After(delay):
		}

		delay = min(delay*2, backoff.Max)
	}
}
