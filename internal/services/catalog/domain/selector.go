package domain

import (
	"fmt"
	"strings"
)

// ShapeSelector picks the namespace for a shape lookup: balancers, splitters,
// or the factory splitters of one category.
type ShapeSelector struct {
	kind     Kind
	category string
}

// SelectBalancers selects the belt balancer shape index.
func SelectBalancers() ShapeSelector { return ShapeSelector{kind: KindBalancer} }

// SelectSplitters selects the belt splitter shape index.
func SelectSplitters() ShapeSelector { return ShapeSelector{kind: KindSplitter} }

// SelectFactories selects the factory splitter index for one category.
func SelectFactories(category string) ShapeSelector {
	return ShapeSelector{kind: KindFactory, category: category}
}

// Kind returns the selected kind.
func (s ShapeSelector) Kind() Kind { return s.kind }

// Category returns the category the selector resolves to.
func (s ShapeSelector) Category() string {
	if s.kind == KindFactory {
		return s.category
	}
	return s.kind.Category()
}

// String returns the selector as accepted by ParseShapeSelector.
func (s ShapeSelector) String() string {
	if s.kind == KindFactory {
		return s.category
	}
	return s.kind.String()
}

func (s ShapeSelector) valid() bool {
	switch s.kind {
	case KindBalancer, KindSplitter:
		return true
	case KindFactory:
		return s.category != ""
	default:
		return false
	}
}

// ParseShapeSelector accepts "balancer", "splitter", a fixed category name
// for either, or a factory splitter category.
func ParseShapeSelector(raw string) (ShapeSelector, error) {
	value := strings.TrimSpace(raw)
	switch {
	case strings.EqualFold(value, KindBalancer.String()), strings.EqualFold(value, CategoryBalancer):
		return SelectBalancers(), nil
	case strings.EqualFold(value, KindSplitter.String()), strings.EqualFold(value, CategorySplitter):
		return SelectSplitters(), nil
	}
	for _, category := range factoryCategories {
		if strings.EqualFold(value, category) {
			return SelectFactories(category), nil
		}
	}
	return ShapeSelector{}, fmt.Errorf("%w: %q is not a balancer, splitter or factory category", ErrInvalidSelector, raw)
}

// TierSelector picks the namespace for a tier lookup: valves or lab balancers.
type TierSelector struct {
	kind Kind
}

// SelectValves selects the valve tier index.
func SelectValves() TierSelector { return TierSelector{kind: KindValve} }

// SelectLabBalancers selects the lab balancer tier index.
func SelectLabBalancers() TierSelector { return TierSelector{kind: KindLabBalancer} }

// Kind returns the selected kind.
func (s TierSelector) Kind() Kind { return s.kind }

// String returns the selector as accepted by ParseTierSelector.
func (s TierSelector) String() string { return s.kind.String() }

func (s TierSelector) valid() bool { return s.kind.Tiered() }

// ParseTierSelector accepts "valve", "lab-balancer", their category names or
// their share-link labels.
func ParseTierSelector(raw string) (TierSelector, error) {
	value := strings.TrimSpace(raw)
	switch {
	case strings.EqualFold(value, KindValve.String()), strings.EqualFold(value, CategoryValve),
		strings.EqualFold(value, linkLabelValve):
		return SelectValves(), nil
	case strings.EqualFold(value, KindLabBalancer.String()), strings.EqualFold(value, CategoryLabBalancer),
		strings.EqualFold(value, linkLabelLabBalancer), strings.EqualFold(value, "lab_balancer"):
		return SelectLabBalancers(), nil
	}
	return TierSelector{}, fmt.Errorf("%w: %q is not valve or lab-balancer", ErrInvalidSelector, raw)
}
