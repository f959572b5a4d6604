package catalog

import (
	"context"
	"errors"

	"github.com/louisbranch/buildbook/internal/services/catalog/domain"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls BuildCatalogService over a gRPC connection.
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient creates a client for conn.
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// ListCategories returns every category in first-registration order.
func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	out, err := invoke[ListCategoriesResponse](ctx, c, MethodListCategories, &ListCategoriesRequest{})
	if err != nil {
		return nil, err
	}
	return out.Categories, nil
}

// ListNames returns the build names registered under category.
func (c *Client) ListNames(ctx context.Context, category string) ([]string, error) {
	out, err := invoke[ListNamesResponse](ctx, c, MethodListNames, &ListNamesRequest{Category: category})
	if err != nil {
		return nil, err
	}
	return out.Names, nil
}

// LookupByShape returns the builds for one shape. Selector is "balancer",
// "splitter" or a factory category.
func (c *Client) LookupByShape(ctx context.Context, selector string, inputs, outputs domain.Count) ([]BuildView, error) {
	out, err := invoke[BuildsResponse](ctx, c, MethodLookupByShape, &LookupByShapeRequest{
		Selector: selector,
		Inputs:   inputs.String(),
		Outputs:  outputs.String(),
	})
	if err != nil {
		return nil, err
	}
	return out.Builds, nil
}

// LookupByTier returns the valves or lab balancers for one tier.
func (c *Client) LookupByTier(ctx context.Context, selector string, tier int) ([]BuildView, error) {
	out, err := invoke[BuildsResponse](ctx, c, MethodLookupByTier, &LookupByTierRequest{
		Selector: selector,
		Tier:     &tier,
	})
	if err != nil {
		return nil, err
	}
	return out.Builds, nil
}

// ResolveBuild returns the build an address points to.
func (c *Client) ResolveBuild(ctx context.Context, addr domain.Address) (BuildView, error) {
	return c.ResolveQuery(ctx, addr.Query().Encode())
}

// ResolveQuery returns the build an encoded address query string points to.
func (c *Client) ResolveQuery(ctx context.Context, query string) (BuildView, error) {
	out, err := invoke[ResolveBuildResponse](ctx, c, MethodResolveBuild, &ResolveBuildRequest{Address: query})
	if err != nil {
		return BuildView{}, err
	}
	return out.Build, nil
}

// Stats returns catalog counters.
func (c *Client) Stats(ctx context.Context) (StatsResponse, error) {
	out, err := invoke[StatsResponse](ctx, c, MethodStats, &StatsRequest{})
	if err != nil {
		return StatsResponse{}, err
	}
	return *out, nil
}

// Enumerations returns the fixed value sets.
func (c *Client) Enumerations(ctx context.Context) (EnumerationsResponse, error) {
	out, err := invoke[EnumerationsResponse](ctx, c, MethodEnumerations, &EnumerationsRequest{})
	if err != nil {
		return EnumerationsResponse{}, err
	}
	return *out, nil
}

func invoke[Resp any](ctx context.Context, c *Client, method string, in any) (*Resp, error) {
	if c == nil || c.conn == nil {
		return nil, errors.New("catalog client is not configured")
	}
	req, err := toStruct(in)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode %s request: %v", method, err)
	}
	reply := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, FullMethod(method), req, reply); err != nil {
		return nil, err
	}
	out := new(Resp)
	if err := fromStruct(reply, out); err != nil {
		return nil, status.Errorf(codes.Internal, "decode %s response: %v", method, err)
	}
	return out, nil
}
