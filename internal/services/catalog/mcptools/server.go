package mcptools

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	platformgrpc "github.com/louisbranch/buildbook/internal/platform/grpc"
	"github.com/louisbranch/buildbook/internal/platform/timeouts"
	"github.com/louisbranch/buildbook/internal/services/catalog/api/grpc/catalog"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/grpc"
)

const (
	serverName    = "buildbook-catalog"
	serverVersion = "0.1.0"
)

// Server hosts the catalog tools over an MCP transport.
type Server struct {
	mcpServer *mcp.Server
	conn      *grpc.ClientConn
}

// NewMCPServer builds an MCP server with every catalog tool registered.
func NewMCPServer(client CatalogClient) (*mcp.Server, error) {
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	if err := RegisterTools(mcpServer, client); err != nil {
		return nil, fmt.Errorf("register catalog tools: %w", err)
	}
	return mcpServer, nil
}

func newServer(conn *grpc.ClientConn) (*Server, error) {
	if conn == nil {
		return nil, fmt.Errorf("catalog connection is required")
	}
	mcpServer, err := NewMCPServer(catalog.NewClient(conn))
	if err != nil {
		return nil, err
	}
	return &Server{mcpServer: mcpServer, conn: conn}, nil
}

// Run connects to the catalog at addr and serves the tools on stdio until
// ctx ends.
func Run(ctx context.Context, addr string) error {
	return runWithTransport(ctx, addr, &mcp.StdioTransport{})
}

func runWithTransport(ctx context.Context, addr string, transport mcp.Transport) error {
	if strings.TrimSpace(addr) == "" {
		return fmt.Errorf("catalog address is required")
	}
	conn, err := dialCatalog(ctx, addr)
	if err != nil {
		return err
	}
	server, err := newServer(conn)
	if err != nil {
		_ = conn.Close()
		return err
	}
	return server.serveWithTransport(ctx, transport)
}

func dialCatalog(ctx context.Context, addr string) (*grpc.ClientConn, error) {
	logf := func(format string, args ...any) {
		log.Printf("catalog %s", fmt.Sprintf(format, args...))
	}
	conn, err := platformgrpc.DialWithHealth(ctx, addr, catalog.ServiceName, platformgrpc.DialOptions{
		Timeout: timeouts.GRPCDial,
		Logf:    logf,
	})
	if err != nil {
		var dialErr *platformgrpc.DialError
		if errors.As(err, &dialErr) && dialErr.Stage == platformgrpc.DialStageConnect {
			return nil, fmt.Errorf("connect to catalog at %s: %w", addr, dialErr.Err)
		}
		return nil, fmt.Errorf("wait for catalog at %s: %w", addr, err)
	}
	return conn, nil
}

// Close releases the catalog connection.
func (s *Server) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	if err := s.conn.Close(); err != nil {
		return err
	}
	s.conn = nil
	return nil
}

// serveWithTransport runs the MCP server until the transport closes or ctx
// ends, then closes the catalog connection.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	closeErr := s.Close()
	if closeErr != nil {
		if err == nil {
			return fmt.Errorf("close gRPC connection: %w", closeErr)
		}
		return fmt.Errorf("serve MCP: %v; close gRPC connection: %w", err, closeErr)
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
