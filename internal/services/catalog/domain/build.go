package domain

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// BlueprintBaseURL is the prefix every blueprint code is resolved against.
const BlueprintBaseURL = "https://builderment.com/blueprint/"

// Build is one registered layout. Lookups hand out copies, so a Build read
// from the catalog can never change the catalog.
type Build struct {
	Kind     Kind
	Name     string
	Category string
	// Inputs and Outputs are zero for tiered builds.
	Inputs  Count
	Outputs Count
	// Width and Height are unbounded when the footprint depends on chain
	// length.
	Width       Count
	Height      Count
	Symmetrical bool
	// Price is meaningful only when HasPrice is set; builds without a fixed
	// price are free.
	Price        int
	HasPrice     bool
	Requirements Requirements
	BlueprintURL string
	ImageURL     string
	Note         string
}

// BlueprintCode returns the opaque blueprint identifier at the end of
// BlueprintURL.
func (b Build) BlueprintCode() string {
	code, err := BlueprintCode(b.BlueprintURL)
	if err != nil {
		return ""
	}
	return code
}

// Tier returns the robotic arm tier the build needs.
func (b Build) Tier() int { return b.Requirements.RoboticArmTier() }

// Address returns the query-string address of the build.
func (b Build) Address() Address {
	addr := Address{Kind: b.Kind, Code: b.BlueprintCode()}
	switch {
	case b.Kind == KindFactory:
		addr.Category = b.Category
		addr.Inputs, addr.Outputs = b.Inputs, b.Outputs
	case b.Kind.Shaped():
		addr.Inputs, addr.Outputs = b.Inputs, b.Outputs
	case b.Kind.Tiered():
		tier := b.Tier()
		addr.Tier = &tier
	}
	return addr
}

// BlueprintURLFor resolves a blueprint code into an absolute URL.
func BlueprintURLFor(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", invalidBuild("blueprint code is required")
	}
	if strings.ContainsAny(code, "/?#") {
		return "", invalidBuild("blueprint code %q must be a single path segment", code)
	}
	return BlueprintBaseURL + url.PathEscape(code), nil
}

// BlueprintCode extracts the trailing path segment of a blueprint URL.
func BlueprintCode(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("parse blueprint url: %w", err)
	}
	code := path.Base(strings.TrimSuffix(u.Path, "/"))
	if code == "." || code == "/" || code == "" {
		return "", fmt.Errorf("blueprint url %q has no code", rawURL)
	}
	return code, nil
}

// BuildSpec is the literal data for one build. Which fields apply depends on
// Kind:
//
//   - KindBalancer, KindSplitter: Inputs and Outputs; Name is derived.
//   - KindFactory: Name, Category, Inputs and Outputs.
//   - KindValve, KindLabBalancer: Name; indexed by robotic arm tier.
type BuildSpec struct {
	Kind          Kind
	Name          string
	Category      string
	Inputs        Count
	Outputs       Count
	Width         Count
	Height        Count
	Symmetrical   bool
	Price         *int
	Requirements  RequirementSettings
	BlueprintCode string
	ImageURL      string
	Note          string
}

// newBuild validates spec and returns the record to register. Requirements
// are validated first.
func newBuild(spec BuildSpec) (Build, error) {
	req, err := NewRequirements(spec.Requirements)
	if err != nil {
		return Build{}, err
	}

	build := Build{
		Kind:         spec.Kind,
		Width:        spec.Width,
		Height:       spec.Height,
		Symmetrical:  spec.Symmetrical,
		Requirements: req,
		Note:         spec.Note,
	}

	switch spec.Kind {
	case KindBalancer, KindSplitter:
		if err := requireFinitePorts(spec.Inputs, spec.Outputs); err != nil {
			return Build{}, err
		}
		if n, _ := spec.Inputs.Int(); spec.Kind == KindSplitter && n != 1 {
			return Build{}, invalidBuild("splitters take exactly one input, got %s", spec.Inputs)
		}
		build.Name = fmt.Sprintf("%s:%s", spec.Inputs, spec.Outputs)
		build.Category = spec.Kind.Category()
		build.Inputs, build.Outputs = spec.Inputs, spec.Outputs
	case KindFactory:
		if strings.TrimSpace(spec.Name) == "" {
			return Build{}, invalidBuild("factory splitter name is required")
		}
		if !IsFactoryCategory(spec.Category) {
			return Build{}, invalidBuild("unknown factory category %q", spec.Category)
		}
		if spec.Inputs.IsUnbounded() || !spec.Inputs.Positive() {
			return Build{}, invalidBuild("factory inputs must be a positive number, got %s", spec.Inputs)
		}
		if !spec.Outputs.Positive() {
			return Build{}, invalidBuild("factory outputs must be positive or unbounded, got %s", spec.Outputs)
		}
		build.Name = spec.Name
		build.Category = spec.Category
		build.Inputs, build.Outputs = spec.Inputs, spec.Outputs
	case KindValve, KindLabBalancer:
		if strings.TrimSpace(spec.Name) == "" {
			return Build{}, invalidBuild("%s name is required", spec.Kind)
		}
		build.Name = spec.Name
		build.Category = spec.Kind.Category()
	default:
		return Build{}, invalidBuild("unknown kind %s", spec.Kind)
	}

	if !spec.Width.Positive() || !spec.Height.Positive() {
		return Build{}, invalidBuild("%s %q: width and height must be positive, got %sx%s", build.Category, build.Name, spec.Width, spec.Height)
	}
	if spec.Price != nil {
		if *spec.Price < 0 {
			return Build{}, invalidBuild("%s %q: price must not be negative", build.Category, build.Name)
		}
		build.Price, build.HasPrice = *spec.Price, true
	}

	if build.BlueprintURL, err = BlueprintURLFor(spec.BlueprintCode); err != nil {
		return Build{}, err
	}
	if image, err := url.Parse(spec.ImageURL); err != nil || !image.IsAbs() {
		return Build{}, invalidBuild("%s %q: image url %q must be absolute", build.Category, build.Name, spec.ImageURL)
	}
	build.ImageURL = spec.ImageURL
	return build, nil
}

func requireFinitePorts(inputs, outputs Count) error {
	if inputs.IsUnbounded() || outputs.IsUnbounded() || !inputs.Positive() || !outputs.Positive() {
		return invalidBuild("ports must be positive numbers, got %s:%s", inputs, outputs)
	}
	return nil
}
