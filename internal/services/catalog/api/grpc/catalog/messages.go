package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/louisbranch/buildbook/internal/services/catalog/domain"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ListCategoriesRequest asks for every registered category.
type ListCategoriesRequest struct{}

// ListCategoriesResponse lists categories in first-registration order.
type ListCategoriesResponse struct {
	Categories []string `json:"categories"`
}

// ListNamesRequest asks for the build names of one category.
type ListNamesRequest struct {
	Category string `json:"category"`
}

// ListNamesResponse lists names in first-registration order.
type ListNamesResponse struct {
	Category string   `json:"category"`
	Names    []string `json:"names"`
}

// LookupByShapeRequest selects builds by input/output shape. Selector accepts
// "balancer", "splitter" or a factory category; counts are decimal or "∞".
type LookupByShapeRequest struct {
	Selector string `json:"selector"`
	Inputs   string `json:"inputs"`
	Outputs  string `json:"outputs"`
}

// LookupByTierRequest selects valves or lab balancers by robotic arm tier.
type LookupByTierRequest struct {
	Selector string `json:"selector"`
	Tier     *int   `json:"tier"`
}

// BuildsResponse carries builds in registration order.
type BuildsResponse struct {
	Builds []BuildView `json:"builds"`
}

// ResolveBuildRequest carries an encoded address query string, e.g.
// "kind=balancer&code=abc&n=3&m=3".
type ResolveBuildRequest struct {
	Address string `json:"address"`
}

// ResolveBuildResponse carries the addressed build.
type ResolveBuildResponse struct {
	Build BuildView `json:"build"`
}

// StatsRequest asks for catalog counters.
type StatsRequest struct{}

// StatsResponse mirrors domain.Counts plus the category count.
type StatsResponse struct {
	Builds           int `json:"builds"`
	Balancers        int `json:"balancers"`
	Splitters        int `json:"splitters"`
	FactorySplitters int `json:"factory_splitters"`
	Valves           int `json:"valves"`
	LabBalancers     int `json:"lab_balancers"`
	Categories       int `json:"categories"`
}

// EnumerationsRequest asks for the fixed value sets.
type EnumerationsRequest struct{}

// EnumerationsResponse lists the ordered value sets consumers populate
// selectors from.
type EnumerationsResponse struct {
	BeltSpeeds        []int    `json:"belt_speeds"`
	TunnelLengths     []int    `json:"tunnel_lengths"`
	RoboticArmTiers   []int    `json:"robotic_arm_tiers"`
	FactoryCategories []string `json:"factory_categories"`
}

// RequirementsView is the wire form of domain.Requirements.
type RequirementsView struct {
	MinBeltSpeed   int  `json:"min_belt_speed"`
	MaxBeltSpeed   int  `json:"max_belt_speed"`
	TunnelLength   int  `json:"tunnel_length"`
	RoboticArmTier int  `json:"robotic_arm_tier"`
	NonDefault     bool `json:"non_default"`
}

// BuildView is the wire form of domain.Build. Counts are strings so that
// unbounded values survive JSON numbers.
type BuildView struct {
	Kind          string           `json:"kind"`
	Category      string           `json:"category"`
	Name          string           `json:"name"`
	Inputs        string           `json:"inputs,omitempty"`
	Outputs       string           `json:"outputs,omitempty"`
	Tier          *int             `json:"tier,omitempty"`
	Width         string           `json:"width"`
	Height        string           `json:"height"`
	Symmetrical   bool             `json:"symmetrical"`
	Price         *int             `json:"price,omitempty"`
	Requirements  RequirementsView `json:"requirements"`
	BlueprintURL  string           `json:"blueprint_url"`
	BlueprintCode string           `json:"blueprint_code"`
	ImageURL      string           `json:"image_url"`
	Note          string           `json:"note,omitempty"`
	Address       string           `json:"address"`
	Link          string           `json:"link"`
}

// Free reports whether the build has no fixed price.
func (v BuildView) Free() bool { return v.Price == nil }

// NewBuildView converts a build to its wire form.
func NewBuildView(build domain.Build) BuildView {
	req := build.Requirements
	view := BuildView{
		Kind:        build.Kind.String(),
		Category:    build.Category,
		Name:        build.Name,
		Width:       build.Width.String(),
		Height:      build.Height.String(),
		Symmetrical: build.Symmetrical,
		Requirements: RequirementsView{
			MinBeltSpeed:   req.MinBeltSpeed(),
			MaxBeltSpeed:   req.MaxBeltSpeed(),
			TunnelLength:   req.TunnelLength(),
			RoboticArmTier: req.RoboticArmTier(),
			NonDefault:     req.NonDefault(),
		},
		BlueprintURL:  build.BlueprintURL,
		BlueprintCode: build.BlueprintCode(),
		ImageURL:      build.ImageURL,
		Note:          build.Note,
		Address:       build.Address().Query().Encode(),
		Link:          build.Address().Link(),
	}
	if build.Kind.Shaped() {
		view.Inputs = build.Inputs.String()
		view.Outputs = build.Outputs.String()
	}
	if build.Kind.Tiered() {
		tier := build.Tier()
		view.Tier = &tier
	}
	if build.HasPrice {
		price := build.Price
		view.Price = &price
	}
	return view
}

func newBuildViews(builds []domain.Build) []BuildView {
	views := make([]BuildView, 0, len(builds))
	for _, build := range builds {
		views = append(views, NewBuildView(build))
	}
	return views
}

func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("convert message to struct: %w", err)
	}
	return out, nil
}

func fromStruct(in *structpb.Struct, v any) error {
	if in == nil {
		in = &structpb.Struct{}
	}
	data, err := protojson.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal struct: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	return nil
}
