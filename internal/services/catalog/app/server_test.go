package server

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	platformgrpc "github.com/louisbranch/buildbook/internal/platform/grpc"
	catalogservice "github.com/louisbranch/buildbook/internal/services/catalog/api/grpc/catalog"
	"github.com/louisbranch/buildbook/internal/services/catalog/dataset"
	"github.com/louisbranch/buildbook/internal/services/catalog/domain"
)

func startServer(t *testing.T, opts Options) *Server {
	t.Helper()

	srv, err := NewWithAddr(context.Background(), "127.0.0.1:0", opts)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	serveDone := make(chan error, 1)
	go func() {
		serveDone <- srv.Serve(runCtx)
	}()
	t.Cleanup(func() {
		runCancel()
		select {
		case serveErr := <-serveDone:
			if serveErr != nil {
				t.Fatalf("serve: %v", serveErr)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for server shutdown")
		}
	})
	return srv
}

func dialServer(t *testing.T, srv *Server) *catalogservice.Client {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, err := platformgrpc.DialWithHealth(ctx, srv.Addr(), catalogservice.ServiceName, platformgrpc.DialOptions{Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("dial catalog server: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := conn.Close(); closeErr != nil {
			t.Fatalf("close gRPC connection: %v", closeErr)
		}
	})
	return catalogservice.NewClient(conn)
}

func TestServer_EmbeddedCatalogRoundTrip(t *testing.T) {
	srv := startServer(t, Options{})
	client := dialServer(t, srv)
	ctx := context.Background()

	if !srv.Catalog().Sealed() {
		t.Fatal("expected served catalog to be sealed")
	}

	stats, err := client.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Builds != srv.Catalog().Counts().Builds {
		t.Fatalf("builds = %d, want %d", stats.Builds, srv.Catalog().Counts().Builds)
	}

	builds, err := client.LookupByShape(ctx, "balancer", domain.Bounded(3), domain.Bounded(3))
	if err != nil {
		t.Fatalf("lookup 3:3: %v", err)
	}
	if len(builds) != 2 {
		t.Fatalf("3:3 builds = %d, want 2", len(builds))
	}

	resolved, err := client.ResolveQuery(ctx, builds[1].Address)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.BlueprintCode != builds[1].BlueprintCode {
		t.Fatalf("resolved code = %q, want %q", resolved.BlueprintCode, builds[1].BlueprintCode)
	}
}

func TestServer_DatasetOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "builds.yaml")
	doc := `version: 1
splitters:
  - inputs: 1
    outputs: 2
    width: 2
    height: 1
    blueprint: "only"
    image: https://img.example/only.png
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write dataset: %v", err)
	}

	srv := startServer(t, Options{DatasetPath: path})
	client := dialServer(t, srv)

	categories, err := client.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(categories) != 1 || categories[0] != domain.CategorySplitter {
		t.Fatalf("categories = %v, want only %q", categories, domain.CategorySplitter)
	}
}

func TestServer_IgnoresDatasetEnvironment(t *testing.T) {
	t.Setenv("BUILDBOOK_CATALOG_DATASET", filepath.Join(t.TempDir(), "missing.yaml"))

	srv := startServer(t, Options{})
	embedded, err := dataset.Load(context.Background())
	if err != nil {
		t.Fatalf("load embedded dataset: %v", err)
	}
	if got, want := srv.Catalog().Counts(), embedded.Counts(); got != want {
		t.Fatalf("counts = %+v, want %+v", got, want)
	}
}

func TestNewWithAddr_RejectsBadDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "builds.yaml")
	if err := os.WriteFile(path, []byte("version: 7\n"), 0o600); err != nil {
		t.Fatalf("write dataset: %v", err)
	}

	srv, err := NewWithAddr(context.Background(), "127.0.0.1:0", Options{DatasetPath: path})
	if err == nil {
		srv.Close()
		t.Fatal("expected error for unsupported dataset version")
	}
}

func TestServer_NilReceiver(t *testing.T) {
	var srv *Server
	if srv.Addr() != "" {
		t.Fatal("expected empty address for nil server")
	}
	if err := srv.Serve(context.Background()); err == nil {
		t.Fatal("expected error serving nil server")
	}
	srv.Close()
}
