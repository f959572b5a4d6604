// Package mcptools exposes catalog lookups as Model Context Protocol tools.
package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/buildbook/internal/platform/timeouts"
	"github.com/louisbranch/buildbook/internal/services/catalog/api/grpc/catalog"
	"github.com/louisbranch/buildbook/internal/services/catalog/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// grpcCallTimeout caps the time for a single catalog call from a tool handler.
const grpcCallTimeout = timeouts.GRPCRequest

// CatalogClient is the query surface the tools call.
type CatalogClient interface {
	ListCategories(ctx context.Context) ([]string, error)
	ListNames(ctx context.Context, category string) ([]string, error)
	LookupByShape(ctx context.Context, selector string, inputs, outputs domain.Count) ([]catalog.BuildView, error)
	LookupByTier(ctx context.Context, selector string, tier int) ([]catalog.BuildView, error)
	ResolveQuery(ctx context.Context, query string) (catalog.BuildView, error)
}

// ListCategoriesInput represents the MCP tool input for listing categories.
type ListCategoriesInput struct {
	Category string `json:"category,omitempty" jsonschema:"optional category whose build names are listed as well"`
}

// ListCategoriesResult represents the MCP tool output for listing categories.
type ListCategoriesResult struct {
	Categories []string `json:"categories" jsonschema:"categories in first-registration order"`
	Category   string   `json:"category,omitempty" jsonschema:"the category whose names are listed"`
	Names      []string `json:"names,omitempty" jsonschema:"build names in the requested category"`
}

// LookupByShapeInput represents the MCP tool input for a shape lookup.
type LookupByShapeInput struct {
	Selector string `json:"selector" jsonschema:"balancer, splitter, or a factory category such as Workshop"`
	Inputs   string `json:"inputs" jsonschema:"number of input belts"`
	Outputs  string `json:"outputs" jsonschema:"number of output belts, or inf for manifolds"`
}

// LookupByTierInput represents the MCP tool input for a tier lookup.
type LookupByTierInput struct {
	Selector string `json:"selector" jsonschema:"valve or lab-balancer"`
	Tier     int    `json:"tier" jsonschema:"robotic arm tier from 0 to 4"`
}

// BuildsResult represents the MCP tool output for lookups.
type BuildsResult struct {
	Builds []catalog.BuildView `json:"builds" jsonschema:"matching builds in display order"`
}

// ResolveBuildInput represents the MCP tool input for resolving an address.
type ResolveBuildInput struct {
	Address string `json:"address" jsonschema:"address query string or share link, e.g. kind=balancer&code=abc&n=3&m=3 or ?build=Belt+Balancer&inputs=3&outputs=3#abc"`
}

// ResolveBuildResult represents the MCP tool output for resolving an address.
type ResolveBuildResult struct {
	Build catalog.BuildView `json:"build" jsonschema:"the addressed build"`
}

// ListCategoriesTool defines the MCP tool schema for listing categories.
func ListCategoriesTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_build_categories",
		Description: "List build categories, and optionally the build names inside one category",
	}
}

// LookupByShapeTool defines the MCP tool schema for shape lookups.
func LookupByShapeTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "lookup_builds_by_shape",
		Description: "Find balancer, splitter or factory splitter layouts by their input and output belt counts",
	}
}

// LookupByTierTool defines the MCP tool schema for tier lookups.
func LookupByTierTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "lookup_builds_by_tier",
		Description: "Find valve or lab balancer layouts unlocked at a robotic arm tier",
	}
}

// ResolveBuildTool defines the MCP tool schema for address resolution.
func ResolveBuildTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "resolve_build",
		Description: "Resolve a build address query string to the full build record",
	}
}

// ListCategoriesHandler lists categories and, when asked, one category's names.
func ListCategoriesHandler(client CatalogClient) mcp.ToolHandlerFor[ListCategoriesInput, ListCategoriesResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ListCategoriesInput) (*mcp.CallToolResult, ListCategoriesResult, error) {
		callCtx, cancel := context.WithTimeout(ctx, grpcCallTimeout)
		defer cancel()

		categories, err := client.ListCategories(callCtx)
		if err != nil {
			return nil, ListCategoriesResult{}, toolError("list build categories", err)
		}
		result := ListCategoriesResult{Categories: nonNil(categories)}

		if category := strings.TrimSpace(input.Category); category != "" {
			names, err := client.ListNames(callCtx, category)
			if err != nil {
				return nil, ListCategoriesResult{}, toolError("list build names", err)
			}
			result.Category = category
			result.Names = names
		}
		return nil, result, nil
	}
}

// LookupByShapeHandler executes a shape lookup.
func LookupByShapeHandler(client CatalogClient) mcp.ToolHandlerFor[LookupByShapeInput, BuildsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input LookupByShapeInput) (*mcp.CallToolResult, BuildsResult, error) {
		inputs, err := domain.ParseCount(input.Inputs)
		if err != nil {
			return nil, BuildsResult{}, fmt.Errorf("inputs: %w", err)
		}
		outputs, err := domain.ParseCount(input.Outputs)
		if err != nil {
			return nil, BuildsResult{}, fmt.Errorf("outputs: %w", err)
		}

		callCtx, cancel := context.WithTimeout(ctx, grpcCallTimeout)
		defer cancel()

		builds, err := client.LookupByShape(callCtx, input.Selector, inputs, outputs)
		if err != nil {
			return nil, BuildsResult{}, toolError("lookup builds by shape", err)
		}
		return nil, BuildsResult{Builds: nonNil(builds)}, nil
	}
}

// LookupByTierHandler executes a tier lookup.
func LookupByTierHandler(client CatalogClient) mcp.ToolHandlerFor[LookupByTierInput, BuildsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input LookupByTierInput) (*mcp.CallToolResult, BuildsResult, error) {
		callCtx, cancel := context.WithTimeout(ctx, grpcCallTimeout)
		defer cancel()

		builds, err := client.LookupByTier(callCtx, input.Selector, input.Tier)
		if err != nil {
			return nil, BuildsResult{}, toolError("lookup builds by tier", err)
		}
		return nil, BuildsResult{Builds: nonNil(builds)}, nil
	}
}

// ResolveBuildHandler resolves an address to a build.
func ResolveBuildHandler(client CatalogClient) mcp.ToolHandlerFor[ResolveBuildInput, ResolveBuildResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ResolveBuildInput) (*mcp.CallToolResult, ResolveBuildResult, error) {
		if strings.TrimSpace(input.Address) == "" {
			return nil, ResolveBuildResult{}, fmt.Errorf("address is required")
		}

		callCtx, cancel := context.WithTimeout(ctx, grpcCallTimeout)
		defer cancel()

		build, err := client.ResolveQuery(callCtx, input.Address)
		if err != nil {
			return nil, ResolveBuildResult{}, toolError("resolve build", err)
		}
		return nil, ResolveBuildResult{Build: build}, nil
	}
}

// toolError names the failed operation and repeats any suggestions the
// service attached.
func toolError(op string, err error) error {
	if suggestions := catalog.Suggestions(err); len(suggestions) > 0 {
		return fmt.Errorf("%s failed: %w (did you mean %s?)", op, err, strings.Join(suggestions, " or "))
	}
	return fmt.Errorf("%s failed: %w", op, err)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// RegisterTools adds every catalog tool to server.
func RegisterTools(server *mcp.Server, client CatalogClient) error {
	if server == nil {
		return fmt.Errorf("mcp server is required")
	}
	if client == nil {
		return fmt.Errorf("catalog client is required")
	}
	mcp.AddTool(server, ListCategoriesTool(), ListCategoriesHandler(client))
	mcp.AddTool(server, LookupByShapeTool(), LookupByShapeHandler(client))
	mcp.AddTool(server, LookupByTierTool(), LookupByTierHandler(client))
	mcp.AddTool(server, ResolveBuildTool(), ResolveBuildHandler(client))
	return nil
}
