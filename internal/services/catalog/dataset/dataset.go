// Package dataset holds the literal build data and turns it into a sealed
// catalog.
package dataset

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/louisbranch/buildbook/internal/services/catalog/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"
)

const supportedVersion = 1

//go:embed data/builds.v1.yaml
var buildsYAML []byte

var (
	loadOnce        sync.Once
	embeddedCatalog *domain.Catalog
	embeddedErr     error
)

var tracer = otel.Tracer("github.com/louisbranch/buildbook/internal/services/catalog/dataset")

type document struct {
	Version      int            `yaml:"version"`
	ImageBaseURL string         `yaml:"image_base_url"`
	Balancers    []portEntry    `yaml:"balancers"`
	Splitters    []portEntry    `yaml:"splitters"`
	Factories    []factoryEntry `yaml:"factories"`
	Valves       []tieredEntry  `yaml:"valves"`
	LabBalancers []tieredEntry  `yaml:"lab_balancers"`
}

type layoutEntry struct {
	Width        count             `yaml:"width"`
	Height       count             `yaml:"height"`
	Symmetrical  bool              `yaml:"symmetrical"`
	Price        *int              `yaml:"price"`
	Requirements requirementsEntry `yaml:"requirements"`
	Blueprint    string            `yaml:"blueprint"`
	Image        string            `yaml:"image"`
	Note         string            `yaml:"note"`
}

type portEntry struct {
	Inputs      count `yaml:"inputs"`
	Outputs     count `yaml:"outputs"`
	layoutEntry `yaml:",inline"`
}

type factoryEntry struct {
	Name        string `yaml:"name"`
	Category    string `yaml:"category"`
	Inputs      count  `yaml:"inputs"`
	Outputs     count  `yaml:"outputs"`
	layoutEntry `yaml:",inline"`
}

type tieredEntry struct {
	Name        string `yaml:"name"`
	layoutEntry `yaml:",inline"`
}

type requirementsEntry struct {
	MinBeltSpeed   *int `yaml:"min_belt_speed"`
	MaxBeltSpeed   *int `yaml:"max_belt_speed"`
	TunnelLength   *int `yaml:"tunnel_length"`
	RoboticArmTier *int `yaml:"robotic_arm_tier"`
}

// count decodes integers as well as inf, .inf and unbounded.
type count struct {
	domain.Count
}

func (c *count) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: count must be a scalar", node.Line)
	}
	parsed, err := domain.ParseCount(strings.TrimPrefix(node.Value, "."))
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	c.Count = parsed
	return nil
}

// Load returns the catalog built from the embedded dataset. The data is
// decoded once; the returned catalog is sealed and shared by every caller.
func Load(ctx context.Context) (*domain.Catalog, error) {
	loadOnce.Do(func() {
		embeddedCatalog, embeddedErr = Decode(ctx, buildsYAML)
	})
	return embeddedCatalog, embeddedErr
}

// LoadFile decodes a dataset file into a new sealed catalog.
func LoadFile(ctx context.Context, path string) (*domain.Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("dataset path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return Decode(ctx, data)
}

// Decode registers every build in data into a new catalog and seals it. The
// first invalid record aborts loading.
func Decode(ctx context.Context, data []byte) (*domain.Catalog, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	_, span := tracer.Start(ctx, "dataset.Decode", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	catalog, err := decode(data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode dataset")
		return nil, err
	}
	counts := catalog.Counts()
	span.SetAttributes(
		attribute.Int("catalog.builds", counts.Builds),
		attribute.Int("catalog.categories", len(catalog.ListCategories())),
	)
	return catalog, nil
}

func decode(data []byte) (*domain.Catalog, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("decode dataset: document is empty")
		}
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	if doc.Version != supportedVersion {
		return nil, fmt.Errorf("decode dataset: unsupported version %d", doc.Version)
	}
	base, err := parseImageBase(doc.ImageBaseURL)
	if err != nil {
		return nil, err
	}

	catalog := domain.New()
	register := func(section string, i int, spec domain.BuildSpec, layout layoutEntry) error {
		spec.Width = layout.Width.Count
		spec.Height = layout.Height.Count
		spec.Symmetrical = layout.Symmetrical
		spec.Price = layout.Price
		spec.Requirements = domain.RequirementSettings(layout.Requirements)
		spec.BlueprintCode = layout.Blueprint
		spec.ImageURL = resolveImage(base, layout.Image)
		spec.Note = strings.TrimSpace(layout.Note)
		if _, err := catalog.Register(spec); err != nil {
			return fmt.Errorf("%s[%d]: %w", section, i, err)
		}
		return nil
	}

	for i, entry := range doc.Balancers {
		spec := domain.BuildSpec{Kind: domain.KindBalancer, Inputs: entry.Inputs.Count, Outputs: entry.Outputs.Count}
		if err := register("balancers", i, spec, entry.layoutEntry); err != nil {
			return nil, err
		}
	}
	for i, entry := range doc.Splitters {
		spec := domain.BuildSpec{Kind: domain.KindSplitter, Inputs: entry.Inputs.Count, Outputs: entry.Outputs.Count}
		if err := register("splitters", i, spec, entry.layoutEntry); err != nil {
			return nil, err
		}
	}
	for i, entry := range doc.Factories {
		spec := domain.BuildSpec{
			Kind:     domain.KindFactory,
			Name:     entry.Name,
			Category: entry.Category,
			Inputs:   entry.Inputs.Count,
			Outputs:  entry.Outputs.Count,
		}
		if err := register("factories", i, spec, entry.layoutEntry); err != nil {
			return nil, err
		}
	}
	for i, entry := range doc.Valves {
		spec := domain.BuildSpec{Kind: domain.KindValve, Name: entry.Name}
		if err := register("valves", i, spec, entry.layoutEntry); err != nil {
			return nil, err
		}
	}
	for i, entry := range doc.LabBalancers {
		spec := domain.BuildSpec{Kind: domain.KindLabBalancer, Name: entry.Name}
		if err := register("lab_balancers", i, spec, entry.layoutEntry); err != nil {
			return nil, err
		}
	}

	catalog.Seal()
	return catalog, nil
}

func parseImageBase(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("decode dataset: image_base_url: %w", err)
	}
	if !base.IsAbs() {
		return nil, fmt.Errorf("decode dataset: image_base_url %q must be absolute", raw)
	}
	return base, nil
}

func resolveImage(base *url.URL, image string) string {
	image = strings.TrimSpace(image)
	if base == nil || image == "" {
		return image
	}
	ref, err := url.Parse(image)
	if err != nil || ref.IsAbs() {
		return image
	}
	return base.ResolveReference(ref).String()
}
