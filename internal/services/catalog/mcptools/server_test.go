package mcptools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/buildbook/internal/services/catalog/api/grpc/catalog"
	catalogserver "github.com/louisbranch/buildbook/internal/services/catalog/app"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func startCatalogServer(t *testing.T) string {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	server, err := catalogserver.NewWithAddr(ctx, "127.0.0.1:0", catalogserver.Options{})
	if err != nil {
		cancel()
		t.Fatalf("new catalog server: %v", err)
	}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-serveErr:
		case <-time.After(2 * time.Second):
			t.Error("catalog server did not stop")
		}
	})
	return server.Addr()
}

func decodeStructuredContent[T any](t *testing.T, value any) T {
	t.Helper()
	data, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshal structured content: %v", err)
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal structured content: %v", err)
	}
	return out
}

func connectClient(t *testing.T, transport mcp.Transport) *mcp.ClientSession {
	t.Helper()
	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		t.Fatalf("connect client: %v", err)
	}
	return session
}

func TestRunWithTransport_ServesCatalogTools(t *testing.T) {
	addr := startCatalogServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- runWithTransport(ctx, addr, serverTransport)
	}()

	session := connectClient(t, clientTransport)
	defer session.Close()

	tools, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	names := map[string]bool{}
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"list_build_categories", "lookup_builds_by_shape", "lookup_builds_by_tier", "resolve_build"} {
		if !names[want] {
			t.Fatalf("tool %q is not registered (have %v)", want, names)
		}
	}

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "lookup_builds_by_shape",
		Arguments: map[string]any{"selector": "Workshop", "inputs": "1", "outputs": "inf"},
	})
	if err != nil {
		t.Fatalf("call lookup_builds_by_shape: %v", err)
	}
	if result.IsError {
		t.Fatalf("lookup_builds_by_shape returned a tool error: %+v", result.Content)
	}
	builds := decodeStructuredContent[BuildsResult](t, result.StructuredContent)
	if len(builds.Builds) != 1 || builds.Builds[0].Name != "Workshop Manifold" || builds.Builds[0].Width != "∞" {
		t.Fatalf("builds = %+v, want the Workshop manifold", builds.Builds)
	}

	resolved, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "resolve_build",
		Arguments: map[string]any{"address": builds.Builds[0].Address},
	})
	if err != nil {
		t.Fatalf("call resolve_build: %v", err)
	}
	if resolved.IsError {
		t.Fatalf("resolve_build returned a tool error: %+v", resolved.Content)
	}
	build := decodeStructuredContent[ResolveBuildResult](t, resolved.StructuredContent)
	if build.Build.BlueprintCode != builds.Builds[0].BlueprintCode {
		t.Fatalf("resolved %q, want %q", build.Build.BlueprintCode, builds.Builds[0].BlueprintCode)
	}

	cancel()
	select {
	case err := <-serveErr:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop after cancel")
	}
}

func TestRunWithTransport_ToolErrorCarriesSuggestion(t *testing.T) {
	addr := startCatalogServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	go func() {
		_ = runWithTransport(ctx, addr, serverTransport)
	}()

	session := connectClient(t, clientTransport)
	defer session.Close()

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "list_build_categories",
		Arguments: map[string]any{"category": "Belt Balancr"},
	})
	if err != nil {
		t.Fatalf("call list_build_categories: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected a tool error for an unknown category")
	}
	var text strings.Builder
	for _, content := range result.Content {
		if tc, ok := content.(*mcp.TextContent); ok {
			text.WriteString(tc.Text)
		}
	}
	if !strings.Contains(text.String(), "did you mean") {
		t.Fatalf("error text = %q, want a suggestion", text.String())
	}
}

func TestRunWithTransport_RequiresAddress(t *testing.T) {
	serverTransport, _ := mcp.NewInMemoryTransports()
	if err := runWithTransport(context.Background(), " ", serverTransport); err == nil {
		t.Fatal("expected error for empty address")
	}
}

func TestServeWithTransport_Unconfigured(t *testing.T) {
	var server *Server
	if err := server.serveWithTransport(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil server")
	}
	if err := server.Close(); err != nil {
		t.Fatalf("close nil server: %v", err)
	}
}

func TestNewServer_RequiresConnection(t *testing.T) {
	if _, err := newServer(nil); err == nil {
		t.Fatal("expected error for nil connection")
	}
}

var _ CatalogClient = (*catalog.Client)(nil)
