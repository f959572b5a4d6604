// Package server wires the catalog snapshot and gRPC lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"

	catalogservice "github.com/louisbranch/buildbook/internal/services/catalog/api/grpc/catalog"
	"github.com/louisbranch/buildbook/internal/services/catalog/dataset"
	"github.com/louisbranch/buildbook/internal/services/catalog/domain"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// Options overrides server defaults.
type Options struct {
	// DatasetPath replaces the embedded dataset with a YAML file.
	DatasetPath string
}

// Server hosts the catalog gRPC API over a sealed catalog snapshot.
type Server struct {
	listener   net.Listener
	grpcServer *grpc.Server
	health     *health.Server
	catalog    *domain.Catalog
}

// New creates a configured catalog server listening on the provided port.
func New(ctx context.Context, port int, opts Options) (*Server, error) {
	return NewWithAddr(ctx, fmt.Sprintf(":%d", port), opts)
}

// NewWithAddr creates a configured catalog server for the provided address.
func NewWithAddr(ctx context.Context, addr string, opts Options) (*Server, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	catalog, err := loadCatalog(ctx, opts)
	if err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	catalogservice.RegisterBuildCatalogServiceServer(grpcServer, catalogservice.NewService(catalog))
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(catalogservice.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return &Server{
		listener:   listener,
		grpcServer: grpcServer,
		health:     healthServer,
		catalog:    catalog,
	}, nil
}

func loadCatalog(ctx context.Context, opts Options) (*domain.Catalog, error) {
	path := strings.TrimSpace(opts.DatasetPath)

	var (
		catalog *domain.Catalog
		err     error
	)
	if path == "" {
		catalog, err = dataset.Load(ctx)
	} else {
		catalog, err = dataset.LoadFile(ctx, path)
	}
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	source := "embedded dataset"
	if path != "" {
		source = path
	}
	counts := catalog.Counts()
	log.Printf("catalog loaded from %s: %d builds (%d balancers, %d splitters, %d factory splitters, %d valves, %d lab balancers)",
		source, counts.Builds, counts.Balancers, counts.Splitters, counts.FactorySplitters, counts.Valves, counts.LabBalancers)
	return catalog, nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Catalog returns the snapshot the server answers from.
func (s *Server) Catalog() *domain.Catalog {
	if s == nil {
		return nil
	}
	return s.catalog
}

// Run creates and serves a catalog server until context cancellation.
func Run(ctx context.Context, port int, opts Options) error {
	server, err := New(ctx, port, opts)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the gRPC server until context cancellation.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	log.Printf("catalog server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		if s.health != nil {
			s.health.Shutdown()
		}
		s.grpcServer.GracefulStop()
		return serveResult(<-serveErr)
	case err := <-serveErr:
		return serveResult(err)
	}
}

func serveResult(err error) error {
	if err == nil || errors.Is(err, grpc.ErrServerStopped) {
		return nil
	}
	return fmt.Errorf("serve gRPC: %w", err)
}

// Close releases catalog server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
}
