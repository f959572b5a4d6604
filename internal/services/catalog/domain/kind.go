package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Kind identifies which index family a build belongs to.
type Kind int

const (
	KindUnspecified Kind = iota
	KindBalancer
	KindSplitter
	KindFactory
	KindValve
	KindLabBalancer
)

// Fixed design categories for the non-factory kinds.
const (
	CategoryBalancer    = "Belt Balancer"
	CategorySplitter    = "Belt Splitter"
	CategoryValve       = "Valve"
	CategoryLabBalancer = "Lab Balancer"
)

// factoryCategories lists the production buildings factory splitters are
// designed for.
var factoryCategories = []string{
	"Workshop",
	"Furnace",
	"Machine Shop",
	"Forge",
	"Industrial Factory",
	"Manufacturer",
	"Power Plant",
	"Earth Transporter",
}

// FactoryCategories returns the factory splitter design categories.
func FactoryCategories() []string { return slices.Clone(factoryCategories) }

// IsFactoryCategory reports whether category is a factory splitter category.
func IsFactoryCategory(category string) bool {
	return slices.Contains(factoryCategories, category)
}

var kindNames = map[Kind]string{
	KindBalancer:    "balancer",
	KindSplitter:    "splitter",
	KindFactory:     "factory",
	KindValve:       "valve",
	KindLabBalancer: "lab-balancer",
}

// String returns the lowercase kind name used in query strings.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind parses a kind name as returned by Kind.String.
func ParseKind(raw string) (Kind, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	value = strings.ReplaceAll(value, "_", "-")
	for kind, name := range kindNames {
		if name == value {
			return kind, nil
		}
	}
	return KindUnspecified, fmt.Errorf("%w: unknown kind %q", ErrInvalidSelector, raw)
}

// Category returns the fixed category for the kind. Factory splitters carry
// their own category and return "".
func (k Kind) Category() string {
	switch k {
	case KindBalancer:
		return CategoryBalancer
	case KindSplitter:
		return CategorySplitter
	case KindValve:
		return CategoryValve
	case KindLabBalancer:
		return CategoryLabBalancer
	default:
		return ""
	}
}

// Shaped reports whether builds of this kind are indexed by input/output
// shape.
func (k Kind) Shaped() bool {
	return k == KindBalancer || k == KindSplitter || k == KindFactory
}

// Tiered reports whether builds of this kind are indexed by robotic arm tier.
func (k Kind) Tiered() bool {
	return k == KindValve || k == KindLabBalancer
}
