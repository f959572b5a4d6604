package domain

import (
	"fmt"
	"iter"
	"slices"
)

// Counts tallies successful registrations per kind. It is diagnostic only.
type Counts struct {
	Builds           int
	Balancers        int
	Splitters        int
	FactorySplitters int
	Valves           int
	LabBalancers     int
}

type nameKey struct {
	category string
	name     string
}

type shapeKey struct {
	selector ShapeSelector
	inputs   Count
	outputs  Count
}

type portKey struct {
	selector ShapeSelector
	inputs   Count
}

type tierKey struct {
	kind Kind
	tier int
}

// Catalog owns every build and the indexes over them.
//
// A Catalog is populated by one goroutine and then sealed. After Seal it is
// an immutable snapshot: any number of goroutines may read it without
// locking, and Register fails with ErrSealed.
type Catalog struct {
	sealed  bool
	counts  Counts
	records []*Build

	categories []string
	names      map[string][]string
	byName     map[nameKey][]*Build

	shapes       map[shapeKey][]*Build
	shapeInputs  map[ShapeSelector][]Count
	shapeOutputs map[portKey][]Count

	tiers    map[tierKey][]*Build
	tierKeys map[Kind][]int
}

// New returns an empty, unsealed catalog.
func New() *Catalog {
	return &Catalog{
		names:        make(map[string][]string),
		byName:       make(map[nameKey][]*Build),
		shapes:       make(map[shapeKey][]*Build),
		shapeInputs:  make(map[ShapeSelector][]Count),
		shapeOutputs: make(map[portKey][]Count),
		tiers:        make(map[tierKey][]*Build),
		tierKeys:     make(map[Kind][]int),
	}
}

// Register validates spec and appends the build to the category index and
// to the index of its kind. Builds sharing a key are all kept, in
// registration order. Nothing is indexed when validation fails.
func (c *Catalog) Register(spec BuildSpec) (Build, error) {
	if c.sealed {
		return Build{}, ErrSealed
	}
	build, err := newBuild(spec)
	if err != nil {
		return Build{}, err
	}
	record := &build
	c.records = append(c.records, record)
	c.counts.Builds++

	nk := nameKey{category: build.Category, name: build.Name}
	if _, ok := c.names[build.Category]; !ok {
		c.categories = append(c.categories, build.Category)
	}
	if _, ok := c.byName[nk]; !ok {
		c.names[build.Category] = append(c.names[build.Category], build.Name)
	}
	c.byName[nk] = append(c.byName[nk], record)

	switch build.Kind {
	case KindBalancer, KindSplitter, KindFactory:
		c.indexShape(record)
	case KindValve, KindLabBalancer:
		c.indexTier(record)
	}
	return build, nil
}

func (c *Catalog) indexShape(record *Build) {
	selector := ShapeSelector{kind: record.Kind}
	switch record.Kind {
	case KindBalancer:
		c.counts.Balancers++
	case KindSplitter:
		c.counts.Splitters++
	case KindFactory:
		selector.category = record.Category
		c.counts.FactorySplitters++
	}
	pk := portKey{selector: selector, inputs: record.Inputs}
	if _, ok := c.shapeOutputs[pk]; !ok {
		c.shapeInputs[selector] = append(c.shapeInputs[selector], record.Inputs)
	}
	sk := shapeKey{selector: selector, inputs: record.Inputs, outputs: record.Outputs}
	if _, ok := c.shapes[sk]; !ok {
		c.shapeOutputs[pk] = append(c.shapeOutputs[pk], record.Outputs)
	}
	c.shapes[sk] = append(c.shapes[sk], record)
}

func (c *Catalog) indexTier(record *Build) {
	switch record.Kind {
	case KindValve:
		c.counts.Valves++
	case KindLabBalancer:
		c.counts.LabBalancers++
	}
	tk := tierKey{kind: record.Kind, tier: record.Tier()}
	if _, ok := c.tiers[tk]; !ok {
		c.tierKeys[record.Kind] = append(c.tierKeys[record.Kind], tk.tier)
	}
	c.tiers[tk] = append(c.tiers[tk], record)
}

// Seal ends the registration phase.
func (c *Catalog) Seal() { c.sealed = true }

// Sealed reports whether Seal was called.
func (c *Catalog) Sealed() bool { return c.sealed }

// Counts returns the registration tallies.
func (c *Catalog) Counts() Counts { return c.counts }

// All yields every build in registration order.
func (c *Catalog) All() iter.Seq[Build] {
	return func(yield func(Build) bool) {
		for _, record := range c.records {
			if !yield(*record) {
				return
			}
		}
	}
}

// ListCategories returns categories in first-registration order.
func (c *Catalog) ListCategories() []string {
	return slices.Clone(c.categories)
}

// ListNames returns the names registered under category in first-registration
// order.
func (c *Catalog) ListNames(category string) ([]string, error) {
	names, ok := c.names[category]
	if !ok {
		return nil, c.categoryNotFound(category)
	}
	return slices.Clone(names), nil
}

// Builds returns the builds registered under one category and name.
func (c *Catalog) Builds(category, name string) ([]Build, error) {
	if _, ok := c.names[category]; !ok {
		return nil, c.categoryNotFound(category)
	}
	records, ok := c.byName[nameKey{category: category, name: name}]
	if !ok {
		return nil, &NotFoundError{Index: IndexName, Key: category + "/" + name, Suggestions: suggest(name, c.names[category])}
	}
	return collect(records), nil
}

// LookupByShape returns the builds registered for selector with the given
// inputs and outputs. A key that was never registered is a *NotFoundError.
func (c *Catalog) LookupByShape(selector ShapeSelector, inputs, outputs Count) ([]Build, error) {
	if err := c.checkShapeSelector(selector); err != nil {
		return nil, err
	}
	records, ok := c.shapes[shapeKey{selector: selector, inputs: inputs, outputs: outputs}]
	if !ok {
		return nil, &NotFoundError{Index: IndexShape, Key: fmt.Sprintf("%s %s:%s", selector, inputs, outputs)}
	}
	return collect(records), nil
}

// Inputs returns the input counts registered for selector, in
// first-registration order.
func (c *Catalog) Inputs(selector ShapeSelector) ([]Count, error) {
	if err := c.checkShapeSelector(selector); err != nil {
		return nil, err
	}
	return slices.Clone(c.shapeInputs[selector]), nil
}

// Outputs returns the output counts registered for selector and inputs, in
// first-registration order.
func (c *Catalog) Outputs(selector ShapeSelector, inputs Count) ([]Count, error) {
	if err := c.checkShapeSelector(selector); err != nil {
		return nil, err
	}
	outputs, ok := c.shapeOutputs[portKey{selector: selector, inputs: inputs}]
	if !ok {
		return nil, &NotFoundError{Index: IndexShape, Key: fmt.Sprintf("%s %s:*", selector, inputs)}
	}
	return slices.Clone(outputs), nil
}

func (c *Catalog) checkShapeSelector(selector ShapeSelector) error {
	if !selector.valid() {
		return fmt.Errorf("%w: shape lookups need a balancer, splitter or factory selector", ErrInvalidSelector)
	}
	if selector.kind == KindFactory {
		if _, ok := c.shapeInputs[selector]; !ok {
			return c.categoryNotFound(selector.category)
		}
	}
	return nil
}

// LookupByTier returns the builds registered for selector at a robotic arm
// tier. A tier that was never registered is a *NotFoundError.
func (c *Catalog) LookupByTier(selector TierSelector, tier int) ([]Build, error) {
	if !selector.valid() {
		return nil, fmt.Errorf("%w: tier lookups need a valve or lab-balancer selector", ErrInvalidSelector)
	}
	records, ok := c.tiers[tierKey{kind: selector.kind, tier: tier}]
	if !ok {
		return nil, &NotFoundError{Index: IndexTier, Key: fmt.Sprintf("%s %d", selector, tier)}
	}
	return collect(records), nil
}

// Tiers returns the robotic arm tiers registered for selector, in
// first-registration order.
func (c *Catalog) Tiers(selector TierSelector) ([]int, error) {
	if !selector.valid() {
		return nil, fmt.Errorf("%w: tier lookups need a valve or lab-balancer selector", ErrInvalidSelector)
	}
	return slices.Clone(c.tierKeys[selector.kind]), nil
}

func (c *Catalog) categoryNotFound(category string) error {
	return &NotFoundError{Index: IndexCategory, Key: category, Suggestions: suggest(category, c.categories)}
}

func collect(records []*Build) []Build {
	out := make([]Build, len(records))
	for i, record := range records {
		out[i] = *record
	}
	return out
}
