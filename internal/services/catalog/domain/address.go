package domain

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Query-string keys used by Address.
const (
	QueryKind     = "kind"
	QueryCategory = "category"
	QueryCode     = "code"
	QueryInputs   = "n"
	QueryOutputs  = "m"
	QueryTier     = "tier"
)

// Share-link keys. A share link names the build by its category label and
// carries the blueprint code in the URL fragment.
const (
	LinkBuild          = "build"
	LinkInputs         = "inputs"
	LinkOutputs        = "outputs"
	LinkRoboticArmTier = "roboticArmTier"
	LinkBlueprintCode  = "blueprintCode"
)

// Share-link labels that differ from the category names.
const (
	linkLabelValve       = "Overflow Valve"
	linkLabelLabBalancer = "Research Lab Balancer"
)

// Address identifies one build in a form that survives a query string. The
// optional keys narrow the search to one index bucket; without them the
// whole category is searched.
type Address struct {
	Kind Kind
	// Category is set for factory splitters only.
	Category string
	Code     string
	Inputs   Count
	Outputs  Count
	Tier     *int
}

// Query encodes the address as query-string values.
func (a Address) Query() url.Values {
	values := url.Values{}
	values.Set(QueryKind, a.Kind.String())
	if a.Kind == KindFactory && a.Category != "" {
		values.Set(QueryCategory, a.Category)
	}
	values.Set(QueryCode, a.Code)
	if !a.Inputs.IsZero() {
		values.Set(QueryInputs, a.Inputs.String())
	}
	if !a.Outputs.IsZero() {
		values.Set(QueryOutputs, a.Outputs.String())
	}
	if a.Tier != nil {
		values.Set(QueryTier, strconv.Itoa(*a.Tier))
	}
	return values
}

// Link encodes the address as a share link: the build label, shape or tier
// in the query and the blueprint code in the fragment.
func (a Address) Link() string {
	values := url.Values{}
	values.Set(LinkBuild, a.linkLabel())
	if !a.Inputs.IsZero() {
		values.Set(LinkInputs, linkCount(a.Inputs))
	}
	if !a.Outputs.IsZero() {
		values.Set(LinkOutputs, linkCount(a.Outputs))
	}
	if a.Tier != nil {
		values.Set(LinkRoboticArmTier, strconv.Itoa(*a.Tier))
	}
	link := url.URL{RawQuery: values.Encode(), Fragment: a.Code}
	return link.String()
}

func (a Address) linkLabel() string {
	switch a.Kind {
	case KindFactory:
		return a.Category
	case KindValve:
		return linkLabelValve
	case KindLabBalancer:
		return linkLabelLabBalancer
	default:
		return a.Kind.Category()
	}
}

func linkCount(c Count) string {
	if c.IsUnbounded() {
		return "Infinity"
	}
	return c.String()
}

// ParseAddressURL decodes an address from a full URL, a "?query#code"
// reference or a bare query string. Both the Query and the Link encodings
// are accepted. A fragment supplies the blueprint code when the query has
// none.
func ParseAddressURL(raw string) (Address, error) {
	ref := strings.TrimSpace(raw)
	head, _, _ := strings.Cut(ref, "#")
	if !strings.Contains(head, "?") && !strings.Contains(head, "://") {
		ref = "?" + ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return Address{}, fmt.Errorf("%w: parse address: %v", ErrInvalidSelector, err)
	}
	values, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return Address{}, fmt.Errorf("%w: parse address query: %v", ErrInvalidSelector, err)
	}
	if addressCode(values) == "" && u.Fragment != "" {
		values.Set(QueryCode, u.Fragment)
	}
	return ParseAddress(values)
}

// ParseAddress decodes query-string values produced by Address.Query or
// Address.Link.
func ParseAddress(values url.Values) (Address, error) {
	if values.Get(QueryKind) == "" && values.Has(LinkBuild) {
		return parseLinkAddress(values)
	}
	kind, err := ParseKind(values.Get(QueryKind))
	if err != nil {
		return Address{}, err
	}
	addr := Address{
		Kind: kind,
		Code: addressCode(values),
	}
	if addr.Code == "" {
		return Address{}, fmt.Errorf("%w: address needs a blueprint code", ErrInvalidSelector)
	}
	if kind == KindFactory {
		addr.Category = strings.TrimSpace(values.Get(QueryCategory))
		if addr.Category == "" {
			return Address{}, fmt.Errorf("%w: factory address needs a category", ErrInvalidSelector)
		}
	}
	if raw := values.Get(QueryInputs); raw != "" {
		if addr.Inputs, err = ParseCount(raw); err != nil {
			return Address{}, err
		}
	}
	if raw := values.Get(QueryOutputs); raw != "" {
		if addr.Outputs, err = ParseCount(raw); err != nil {
			return Address{}, err
		}
	}
	if raw := values.Get(QueryTier); raw != "" {
		tier, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return Address{}, fmt.Errorf("parse tier %q: %w", raw, err)
		}
		addr.Tier = &tier
	}
	return addr, nil
}

func parseLinkAddress(values url.Values) (Address, error) {
	addr := Address{Code: addressCode(values)}
	label := values.Get(LinkBuild)
	if shape, err := ParseShapeSelector(label); err == nil {
		addr.Kind = shape.Kind()
		if addr.Kind == KindFactory {
			addr.Category = shape.Category()
		}
	} else if tier, err := ParseTierSelector(label); err == nil {
		addr.Kind = tier.Kind()
	} else {
		return Address{}, fmt.Errorf("%w: unknown build %q", ErrInvalidSelector, label)
	}
	if addr.Code == "" {
		return Address{}, fmt.Errorf("%w: address needs a blueprint code", ErrInvalidSelector)
	}

	var err error
	if raw := values.Get(LinkInputs); raw != "" {
		if addr.Inputs, err = ParseCount(raw); err != nil {
			return Address{}, err
		}
	}
	if raw := values.Get(LinkOutputs); raw != "" {
		if addr.Outputs, err = ParseCount(raw); err != nil {
			return Address{}, err
		}
	}
	if raw := values.Get(LinkRoboticArmTier); raw != "" {
		tier, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return Address{}, fmt.Errorf("parse robotic arm tier %q: %w", raw, err)
		}
		addr.Tier = &tier
	}
	return addr, nil
}

func addressCode(values url.Values) string {
	if code := strings.TrimSpace(values.Get(QueryCode)); code != "" {
		return code
	}
	return strings.TrimSpace(values.Get(LinkBlueprintCode))
}

// Resolve returns the build an address points to.
func (c *Catalog) Resolve(addr Address) (Build, error) {
	if addr.Code == "" {
		return Build{}, fmt.Errorf("%w: address needs a blueprint code", ErrInvalidSelector)
	}

	var (
		candidates []Build
		err        error
	)
	switch {
	case addr.Kind.Shaped() && !addr.Inputs.IsZero() && !addr.Outputs.IsZero():
		selector := ShapeSelector{kind: addr.Kind, category: addr.Category}
		if addr.Kind != KindFactory {
			selector.category = ""
		}
		candidates, err = c.LookupByShape(selector, addr.Inputs, addr.Outputs)
	case addr.Kind.Tiered() && addr.Tier != nil:
		candidates, err = c.LookupByTier(TierSelector{kind: addr.Kind}, *addr.Tier)
	default:
		candidates, err = c.categoryBuilds(addr)
	}
	if err != nil {
		return Build{}, err
	}

	for _, build := range candidates {
		if build.Kind == addr.Kind && build.BlueprintCode() == addr.Code {
			return build, nil
		}
	}
	return Build{}, &NotFoundError{Index: IndexBlueprint, Key: addr.Code}
}

func (c *Catalog) categoryBuilds(addr Address) ([]Build, error) {
	category := addr.Kind.Category()
	if addr.Kind == KindFactory {
		category = addr.Category
	}
	if category == "" {
		return nil, fmt.Errorf("%w: address kind %s has no category", ErrInvalidSelector, addr.Kind)
	}
	names, err := c.ListNames(category)
	if err != nil {
		return nil, err
	}
	var out []Build
	for _, name := range names {
		out = append(out, collect(c.byName[nameKey{category: category, name: name}])...)
	}
	return out, nil
}
