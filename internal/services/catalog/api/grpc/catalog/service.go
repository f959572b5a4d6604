// Package catalog exposes the build catalog as the catalog.v1 gRPC service.
package catalog

import (
	"context"
	"strings"

	apperrors "github.com/louisbranch/buildbook/internal/platform/errors"
	"github.com/louisbranch/buildbook/internal/services/catalog/domain"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Reader is the read-only catalog surface the service queries.
type Reader interface {
	ListCategories() []string
	ListNames(category string) ([]string, error)
	LookupByShape(selector domain.ShapeSelector, inputs, outputs domain.Count) ([]domain.Build, error)
	LookupByTier(selector domain.TierSelector, tier int) ([]domain.Build, error)
	Resolve(addr domain.Address) (domain.Build, error)
	Counts() domain.Counts
}

// Service exposes catalog.v1 gRPC operations.
type Service struct {
	catalog Reader
}

// NewService creates a catalog service backed by a sealed catalog.
func NewService(catalog Reader) *Service {
	return &Service{catalog: catalog}
}

func (s *Service) ready() error {
	if s == nil || s.catalog == nil {
		return status.Error(codes.Internal, "catalog is not configured")
	}
	return nil
}

// ListCategories returns every category in first-registration order.
func (s *Service) ListCategories(_ context.Context, in *ListCategoriesRequest) (*ListCategoriesResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "list categories request is required")
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	return &ListCategoriesResponse{Categories: s.catalog.ListCategories()}, nil
}

// ListNames returns the build names registered under one category.
func (s *Service) ListNames(_ context.Context, in *ListNamesRequest) (*ListNamesResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "list names request is required")
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Category) == "" {
		return nil, invalidArgument(apperrors.CodeInvalidArgument, "category", "category is required")
	}

	names, err := s.catalog.ListNames(in.Category)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ListNamesResponse{Category: in.Category, Names: names}, nil
}

// LookupByShape returns the builds registered for one input/output shape.
func (s *Service) LookupByShape(_ context.Context, in *LookupByShapeRequest) (*BuildsResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "lookup by shape request is required")
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	selector, err := domain.ParseShapeSelector(in.Selector)
	if err != nil {
		return nil, toStatus(err)
	}
	inputs, err := domain.ParseCount(in.Inputs)
	if err != nil {
		return nil, invalidArgument(apperrors.CodeInvalidCount, "inputs", err.Error())
	}
	outputs, err := domain.ParseCount(in.Outputs)
	if err != nil {
		return nil, invalidArgument(apperrors.CodeInvalidCount, "outputs", err.Error())
	}

	builds, err := s.catalog.LookupByShape(selector, inputs, outputs)
	if err != nil {
		return nil, toStatus(err)
	}
	return &BuildsResponse{Builds: newBuildViews(builds)}, nil
}

// LookupByTier returns the valves or lab balancers unlocked at one tier.
func (s *Service) LookupByTier(_ context.Context, in *LookupByTierRequest) (*BuildsResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "lookup by tier request is required")
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	selector, err := domain.ParseTierSelector(in.Selector)
	if err != nil {
		return nil, toStatus(err)
	}
	if in.Tier == nil {
		return nil, invalidArgument(apperrors.CodeInvalidArgument, "tier", "tier is required")
	}

	builds, err := s.catalog.LookupByTier(selector, *in.Tier)
	if err != nil {
		return nil, toStatus(err)
	}
	return &BuildsResponse{Builds: newBuildViews(builds)}, nil
}

// ResolveBuild returns the build an address query string or share link points to.
func (s *Service) ResolveBuild(_ context.Context, in *ResolveBuildRequest) (*ResolveBuildResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "resolve build request is required")
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	addr, err := domain.ParseAddressURL(in.Address)
	if err != nil {
		return nil, invalidArgument(apperrors.CodeInvalidAddress, "address", err.Error())
	}

	build, err := s.catalog.Resolve(addr)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ResolveBuildResponse{Build: NewBuildView(build)}, nil
}

// Stats returns catalog counters.
func (s *Service) Stats(_ context.Context, in *StatsRequest) (*StatsResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "stats request is required")
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	counts := s.catalog.Counts()
	return &StatsResponse{
		Builds:           counts.Builds,
		Balancers:        counts.Balancers,
		Splitters:        counts.Splitters,
		FactorySplitters: counts.FactorySplitters,
		Valves:           counts.Valves,
		LabBalancers:     counts.LabBalancers,
		Categories:       len(s.catalog.ListCategories()),
	}, nil
}

// Enumerations returns the fixed requirement value sets and factory
// categories.
func (s *Service) Enumerations(_ context.Context, in *EnumerationsRequest) (*EnumerationsResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "enumerations request is required")
	}
	return &EnumerationsResponse{
		BeltSpeeds:        domain.BeltSpeeds(),
		TunnelLengths:     domain.TunnelLengths(),
		RoboticArmTiers:   domain.RoboticArmTiers(),
		FactoryCategories: domain.FactoryCategories(),
	}, nil
}
