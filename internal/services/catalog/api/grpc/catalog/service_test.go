package catalog

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	apperrors "github.com/louisbranch/buildbook/internal/platform/errors"
	"github.com/louisbranch/buildbook/internal/services/catalog/domain"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func intPtr(v int) *int { return &v }

func newTestCatalog(t *testing.T) *domain.Catalog {
	t.Helper()
	c := domain.New()
	specs := []domain.BuildSpec{
		{
			Kind: domain.KindBalancer, Inputs: domain.Bounded(3), Outputs: domain.Bounded(3),
			Width: domain.Bounded(3), Height: domain.Bounded(5), Price: intPtr(60),
			BlueprintCode: "bal33a", ImageURL: "https://img.example/bal33a.png",
		},
		{
			Kind: domain.KindBalancer, Inputs: domain.Bounded(3), Outputs: domain.Bounded(3),
			Width: domain.Bounded(4), Height: domain.Bounded(4), Symmetrical: true,
			Requirements:  domain.RequirementSettings{TunnelLength: intPtr(5)},
			BlueprintCode: "bal33b", ImageURL: "https://img.example/bal33b.png",
		},
		{
			Kind: domain.KindFactory, Name: "Workshop Manifold", Category: "Workshop",
			Inputs: domain.Bounded(1), Outputs: domain.Unbounded(),
			Width: domain.Unbounded(), Height: domain.Bounded(3),
			BlueprintCode: "wsman", ImageURL: "https://img.example/wsman.png",
		},
		{
			Kind: domain.KindValve, Name: "Priority Valve",
			Width: domain.Bounded(2), Height: domain.Bounded(2), Price: intPtr(0),
			Requirements:  domain.RequirementSettings{RoboticArmTier: intPtr(1)},
			BlueprintCode: "prio", ImageURL: "https://img.example/prio.png",
		},
		{
			Kind: domain.KindLabBalancer, Name: "Lab Line",
			Width: domain.Unbounded(), Height: domain.Bounded(3),
			BlueprintCode: "labline", ImageURL: "https://img.example/labline.png",
		},
	}
	for _, spec := range specs {
		if _, err := c.Register(spec); err != nil {
			t.Fatalf("register %+v: %v", spec, err)
		}
	}
	c.Seal()
	return c
}

func assertReason(t *testing.T, err error, wantCode codes.Code, wantReason apperrors.Code) {
	t.Helper()
	if status.Code(err) != wantCode {
		t.Fatalf("code = %v, want %v (err = %v)", status.Code(err), wantCode, err)
	}
	reason, ok := apperrors.ReasonOf(err)
	if !ok || reason != wantReason {
		t.Fatalf("reason = %q, want %q", reason, wantReason)
	}
}

func TestService_NilRequests(t *testing.T) {
	svc := NewService(newTestCatalog(t))
	ctx := context.Background()

	calls := map[string]func() error{
		"list categories": func() error { _, err := svc.ListCategories(ctx, nil); return err },
		"list names":      func() error { _, err := svc.ListNames(ctx, nil); return err },
		"shape":           func() error { _, err := svc.LookupByShape(ctx, nil); return err },
		"tier":            func() error { _, err := svc.LookupByTier(ctx, nil); return err },
		"resolve":         func() error { _, err := svc.ResolveBuild(ctx, nil); return err },
		"stats":           func() error { _, err := svc.Stats(ctx, nil); return err },
		"enumerations":    func() error { _, err := svc.Enumerations(ctx, nil); return err },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			if code := status.Code(call()); code != codes.InvalidArgument {
				t.Fatalf("code = %v, want %v", code, codes.InvalidArgument)
			}
		})
	}
}

func TestService_MissingCatalog(t *testing.T) {
	svc := NewService(nil)
	_, err := svc.ListCategories(context.Background(), &ListCategoriesRequest{})
	if status.Code(err) != codes.Internal {
		t.Fatalf("code = %v, want %v", status.Code(err), codes.Internal)
	}
}

func TestService_ListCategoriesAndNames(t *testing.T) {
	svc := NewService(newTestCatalog(t))
	ctx := context.Background()

	categories, err := svc.ListCategories(ctx, &ListCategoriesRequest{})
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	want := []string{domain.CategoryBalancer, "Workshop", domain.CategoryValve, domain.CategoryLabBalancer}
	if diff := cmp.Diff(want, categories.Categories); diff != "" {
		t.Fatalf("categories mismatch (-want +got):\n%s", diff)
	}

	names, err := svc.ListNames(ctx, &ListNamesRequest{Category: domain.CategoryBalancer})
	if err != nil {
		t.Fatalf("list names: %v", err)
	}
	if diff := cmp.Diff([]string{"3:3"}, names.Names); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	_, err = svc.ListNames(ctx, &ListNamesRequest{Category: " "})
	assertReason(t, err, codes.InvalidArgument, apperrors.CodeInvalidArgument)

	_, err = svc.ListNames(ctx, &ListNamesRequest{Category: "Belt Balancr"})
	assertReason(t, err, codes.NotFound, apperrors.CodeCategoryNotFound)
	if diff := cmp.Diff([]string{domain.CategoryBalancer}, Suggestions(err)); diff != "" {
		t.Fatalf("suggestions mismatch (-want +got):\n%s", diff)
	}
}

func TestService_LookupByShape(t *testing.T) {
	svc := NewService(newTestCatalog(t))
	ctx := context.Background()

	resp, err := svc.LookupByShape(ctx, &LookupByShapeRequest{Selector: "balancer", Inputs: "3", Outputs: "3"})
	if err != nil {
		t.Fatalf("lookup by shape: %v", err)
	}
	if len(resp.Builds) != 2 {
		t.Fatalf("builds = %d, want 2", len(resp.Builds))
	}
	first, second := resp.Builds[0], resp.Builds[1]
	if first.BlueprintCode != "bal33a" || second.BlueprintCode != "bal33b" {
		t.Fatalf("order = %q, %q; want bal33a, bal33b", first.BlueprintCode, second.BlueprintCode)
	}
	if first.Requirements.NonDefault || !second.Requirements.NonDefault {
		t.Fatal("expected only the second layout to carry non-default requirements")
	}
	if first.Price == nil || *first.Price != 60 || !second.Free() {
		t.Fatalf("prices = %v, %v; want 60 and free", first.Price, second.Price)
	}

	manifold, err := svc.LookupByShape(ctx, &LookupByShapeRequest{Selector: "workshop", Inputs: "1", Outputs: "∞"})
	if err != nil {
		t.Fatalf("lookup manifold: %v", err)
	}
	if len(manifold.Builds) != 1 || manifold.Builds[0].Outputs != "∞" || manifold.Builds[0].Width != "∞" {
		t.Fatalf("manifold = %+v", manifold.Builds)
	}

	testCases := []struct {
		name   string
		req    *LookupByShapeRequest
		code   codes.Code
		reason apperrors.Code
	}{
		{
			name:   "unknown shape",
			req:    &LookupByShapeRequest{Selector: "balancer", Inputs: "99", Outputs: "99"},
			code:   codes.NotFound,
			reason: apperrors.CodeShapeNotFound,
		},
		{
			name:   "finite outputs are a different key",
			req:    &LookupByShapeRequest{Selector: "Workshop", Inputs: "1", Outputs: "2"},
			code:   codes.NotFound,
			reason: apperrors.CodeShapeNotFound,
		},
		{
			name:   "bad selector",
			req:    &LookupByShapeRequest{Selector: "valve", Inputs: "1", Outputs: "1"},
			code:   codes.InvalidArgument,
			reason: apperrors.CodeInvalidSelector,
		},
		{
			name:   "bad count",
			req:    &LookupByShapeRequest{Selector: "splitter", Inputs: "one", Outputs: "2"},
			code:   codes.InvalidArgument,
			reason: apperrors.CodeInvalidCount,
		},
		{
			name:   "unregistered factory category",
			req:    &LookupByShapeRequest{Selector: "Forge", Inputs: "1", Outputs: "2"},
			code:   codes.NotFound,
			reason: apperrors.CodeCategoryNotFound,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.LookupByShape(ctx, tc.req)
			assertReason(t, err, tc.code, tc.reason)
		})
	}
}

func TestService_LookupByTier(t *testing.T) {
	svc := NewService(newTestCatalog(t))
	ctx := context.Background()

	resp, err := svc.LookupByTier(ctx, &LookupByTierRequest{Selector: "Lab Balancer", Tier: intPtr(0)})
	if err != nil {
		t.Fatalf("lookup by tier: %v", err)
	}
	if len(resp.Builds) != 1 || resp.Builds[0].Name != "Lab Line" {
		t.Fatalf("builds = %+v", resp.Builds)
	}
	if resp.Builds[0].Tier == nil || *resp.Builds[0].Tier != 0 {
		t.Fatalf("tier = %v, want 0", resp.Builds[0].Tier)
	}

	_, err = svc.LookupByTier(ctx, &LookupByTierRequest{Selector: "valve"})
	assertReason(t, err, codes.InvalidArgument, apperrors.CodeInvalidArgument)

	_, err = svc.LookupByTier(ctx, &LookupByTierRequest{Selector: "valve", Tier: intPtr(4)})
	assertReason(t, err, codes.NotFound, apperrors.CodeTierNotFound)
}

func TestService_ResolveBuild(t *testing.T) {
	svc := NewService(newTestCatalog(t))
	ctx := context.Background()

	resp, err := svc.ResolveBuild(ctx, &ResolveBuildRequest{Address: "?kind=valve&code=prio&tier=1"})
	if err != nil {
		t.Fatalf("resolve build: %v", err)
	}
	if resp.Build.Name != "Priority Valve" || resp.Build.Price == nil || *resp.Build.Price != 0 {
		t.Fatalf("build = %+v", resp.Build)
	}

	again, err := svc.ResolveBuild(ctx, &ResolveBuildRequest{Address: resp.Build.Address})
	if err != nil {
		t.Fatalf("resolve from returned address: %v", err)
	}
	if diff := cmp.Diff(resp.Build, again.Build); diff != "" {
		t.Fatalf("address round trip mismatch (-want +got):\n%s", diff)
	}

	_, err = svc.ResolveBuild(ctx, &ResolveBuildRequest{Address: "kind=balancer&code=missing&n=3&m=3"})
	assertReason(t, err, codes.NotFound, apperrors.CodeBlueprintNotFound)

	_, err = svc.ResolveBuild(ctx, &ResolveBuildRequest{Address: "kind=factory&code=wsman"})
	assertReason(t, err, codes.InvalidArgument, apperrors.CodeInvalidAddress)
}

func TestService_ResolveBuildShareLink(t *testing.T) {
	svc := NewService(newTestCatalog(t))
	ctx := context.Background()

	testCases := []struct {
		link string
		code string
	}{
		{link: "?build=Belt+Balancer&inputs=3&outputs=3#bal33b", code: "bal33b"},
		{link: "?build=Workshop&inputs=1&outputs=Infinity#wsman", code: "wsman"},
		{link: "?build=Overflow+Valve&roboticArmTier=1#prio", code: "prio"},
		{link: "?build=Research+Lab+Balancer#labline", code: "labline"},
	}
	for _, tc := range testCases {
		resp, err := svc.ResolveBuild(ctx, &ResolveBuildRequest{Address: tc.link})
		if err != nil {
			t.Fatalf("resolve %q: %v", tc.link, err)
		}
		if resp.Build.BlueprintCode != tc.code {
			t.Fatalf("resolve %q code = %q, want %q", tc.link, resp.Build.BlueprintCode, tc.code)
		}
	}

	resp, err := svc.LookupByShape(ctx, &LookupByShapeRequest{Selector: "Workshop", Inputs: "1", Outputs: "∞"})
	if err != nil {
		t.Fatalf("lookup workshop: %v", err)
	}
	if len(resp.Builds) != 1 || resp.Builds[0].Link != "?build=Workshop&inputs=1&outputs=Infinity#wsman" {
		t.Fatalf("builds = %+v, want one workshop manifold link", resp.Builds)
	}
	again, err := svc.ResolveBuild(ctx, &ResolveBuildRequest{Address: resp.Builds[0].Link})
	if err != nil {
		t.Fatalf("resolve returned link: %v", err)
	}
	if diff := cmp.Diff(resp.Builds[0], again.Build); diff != "" {
		t.Fatalf("link round trip mismatch (-want +got):\n%s", diff)
	}

	_, err = svc.ResolveBuild(ctx, &ResolveBuildRequest{Address: "?build=Conveyor#bal33b"})
	assertReason(t, err, codes.InvalidArgument, apperrors.CodeInvalidAddress)
}

func TestService_StatsAndEnumerations(t *testing.T) {
	svc := NewService(newTestCatalog(t))
	ctx := context.Background()

	stats, err := svc.Stats(ctx, &StatsRequest{})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := &StatsResponse{Builds: 5, Balancers: 2, FactorySplitters: 1, Valves: 1, LabBalancers: 1, Categories: 4}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Fatalf("stats mismatch (-want +got):\n%s", diff)
	}

	enums, err := svc.Enumerations(ctx, &EnumerationsRequest{})
	if err != nil {
		t.Fatalf("enumerations: %v", err)
	}
	if diff := cmp.Diff([]int{4, 5, 6}, enums.TunnelLengths); diff != "" {
		t.Fatalf("tunnel lengths mismatch (-want +got):\n%s", diff)
	}
	if len(enums.BeltSpeeds) != 13 || enums.BeltSpeeds[0] != 150 || enums.BeltSpeeds[12] != 480 {
		t.Fatalf("belt speeds = %v", enums.BeltSpeeds)
	}
}

func TestToStatus_MapsSealedAndValidation(t *testing.T) {
	c := newTestCatalog(t)
	_, err := c.Register(domain.BuildSpec{Kind: domain.KindValve, Name: "Late"})
	assertReason(t, toStatus(err), codes.FailedPrecondition, apperrors.CodeCatalogSealed)

	_, err = domain.NewRequirements(domain.RequirementSettings{TunnelLength: intPtr(9)})
	assertReason(t, toStatus(err), codes.InvalidArgument, apperrors.CodeRequirementsInvalid)
}
