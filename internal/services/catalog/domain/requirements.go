package domain

import (
	"fmt"
	"slices"
	"strings"
)

var (
	beltSpeeds      = []int{150, 165, 180, 195, 210, 240, 270, 300, 330, 375, 420, 450, 480}
	tunnelLengths   = []int{4, 5, 6}
	roboticArmTiers = []int{0, 1, 2, 3, 4}
)

// BeltSpeeds returns the valid belt speeds in ascending order.
func BeltSpeeds() []int { return slices.Clone(beltSpeeds) }

// TunnelLengths returns the valid belt tunnel lengths in ascending order.
func TunnelLengths() []int { return slices.Clone(tunnelLengths) }

// RoboticArmTiers returns the valid robotic arm tiers in ascending order.
func RoboticArmTiers() []int { return slices.Clone(roboticArmTiers) }

// RequirementSettings holds optional requirement values. Nil fields take the
// default for that field.
type RequirementSettings struct {
	MinBeltSpeed   *int
	MaxBeltSpeed   *int
	TunnelLength   *int
	RoboticArmTier *int
}

// Requirements describes the unlocks a build needs to function.
//
// Values are immutable once constructed and compare with ==.
type Requirements struct {
	minBeltSpeed   int
	maxBeltSpeed   int
	tunnelLength   int
	roboticArmTier int
}

// DefaultRequirements returns the requirements of a build with no unlock
// prerequisites.
func DefaultRequirements() Requirements {
	return Requirements{
		minBeltSpeed:   beltSpeeds[0],
		maxBeltSpeed:   beltSpeeds[len(beltSpeeds)-1],
		tunnelLength:   tunnelLengths[0],
		roboticArmTier: roboticArmTiers[0],
	}
}

// NewRequirements validates settings against the fixed enumerations.
//
// Only the first settings value is used. Every field is checked against its
// enumeration before the min/max ordering is checked.
func NewRequirements(settings ...RequirementSettings) (Requirements, error) {
	var in RequirementSettings
	if len(settings) > 0 {
		in = settings[0]
	}
	req := DefaultRequirements()

	var err error
	if req.minBeltSpeed, err = pick(in.MinBeltSpeed, req.minBeltSpeed, "minBeltSpeed", "belt speed", beltSpeeds); err != nil {
		return Requirements{}, err
	}
	if req.maxBeltSpeed, err = pick(in.MaxBeltSpeed, req.maxBeltSpeed, "maxBeltSpeed", "belt speed", beltSpeeds); err != nil {
		return Requirements{}, err
	}
	if req.tunnelLength, err = pick(in.TunnelLength, req.tunnelLength, "tunnelLength", "length", tunnelLengths); err != nil {
		return Requirements{}, err
	}
	if req.roboticArmTier, err = pick(in.RoboticArmTier, req.roboticArmTier, "roboticArmTier", "tier", roboticArmTiers); err != nil {
		return Requirements{}, err
	}
	if req.minBeltSpeed > req.maxBeltSpeed {
		return Requirements{}, &ValidationError{
			Field:  "minBeltSpeed",
			Valid:  slices.Clone(beltSpeeds),
			Reason: "minBeltSpeed cannot be greater than maxBeltSpeed.",
		}
	}
	return req, nil
}

// MustRequirements is like NewRequirements but panics on invalid settings.
// It is meant for literal data in tests.
func MustRequirements(settings ...RequirementSettings) Requirements {
	req, err := NewRequirements(settings...)
	if err != nil {
		panic(err)
	}
	return req
}

func pick(value *int, fallback int, field, noun string, valid []int) (int, error) {
	if value == nil {
		return fallback, nil
	}
	if !slices.Contains(valid, *value) {
		return 0, &ValidationError{
			Field:  field,
			Value:  *value,
			Valid:  slices.Clone(valid),
			Reason: fmt.Sprintf("%s is not a valid %s. Valid numbers include the following: %s.", field, noun, FormatList(valid)),
		}
	}
	return *value, nil
}

// MinBeltSpeed returns the slowest belt speed the build works with.
func (r Requirements) MinBeltSpeed() int { return r.minBeltSpeed }

// MaxBeltSpeed returns the fastest belt speed the build works with.
func (r Requirements) MaxBeltSpeed() int { return r.maxBeltSpeed }

// TunnelLength returns the minimum belt tunnel length the build needs.
func (r Requirements) TunnelLength() int { return r.tunnelLength }

// RoboticArmTier returns the robotic arm tier the build needs.
func (r Requirements) RoboticArmTier() int { return r.roboticArmTier }

// NonDefault reports whether any requirement differs from its default.
func (r Requirements) NonDefault() bool {
	return r != DefaultRequirements()
}

// Settings returns r as explicit settings, suitable for NewRequirements.
func (r Requirements) Settings() RequirementSettings {
	minSpeed, maxSpeed, tunnel, tier := r.minBeltSpeed, r.maxBeltSpeed, r.tunnelLength, r.roboticArmTier
	return RequirementSettings{
		MinBeltSpeed:   &minSpeed,
		MaxBeltSpeed:   &maxSpeed,
		TunnelLength:   &tunnel,
		RoboticArmTier: &tier,
	}
}

// String renders the requirements for logs.
func (r Requirements) String() string {
	return fmt.Sprintf("belts %d-%d, tunnel %d, arm tier %d", r.minBeltSpeed, r.maxBeltSpeed, r.tunnelLength, r.roboticArmTier)
}

// FormatList joins items with ", " and puts "and" before the last item.
func FormatList[T any](items []T) string {
	var b strings.Builder
	for i, item := range items {
		fmt.Fprint(&b, item)
		switch {
		case i == len(items)-1:
		case i == len(items)-2:
			b.WriteString(", and ")
		default:
			b.WriteString(", ")
		}
	}
	return b.String()
}
