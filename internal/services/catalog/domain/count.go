package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Count is a port count or dimension that is either a positive number or
// unbounded. Unbounded stands in for chains that grow with the number of
// consumers, such as factory manifolds.
//
// Count is comparable and safe to use inside map keys.
type Count struct {
	n         int
	unbounded bool
}

// Bounded returns a finite count.
func Bounded(n int) Count { return Count{n: n} }

// Unbounded returns the unbounded count.
func Unbounded() Count { return Count{unbounded: true} }

// Int returns the finite value and false when c is unbounded.
func (c Count) Int() (int, bool) {
	if c.unbounded {
		return 0, false
	}
	return c.n, true
}

// IsUnbounded reports whether c is the unbounded count.
func (c Count) IsUnbounded() bool { return c.unbounded }

// IsZero reports whether c is the zero value.
func (c Count) IsZero() bool { return c == Count{} }

// Positive reports whether c is unbounded or greater than zero.
func (c Count) Positive() bool { return c.unbounded || c.n > 0 }

// String returns the decimal value, or "∞" for the unbounded count.
func (c Count) String() string {
	if c.unbounded {
		return "∞"
	}
	return strconv.Itoa(c.n)
}

// MarshalText implements encoding.TextMarshaler.
func (c Count) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Count) UnmarshalText(text []byte) error {
	parsed, err := ParseCount(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCount parses a decimal count or one of "inf", "infinity", "∞",
// "unbounded" (case-insensitive).
func ParseCount(raw string) (Count, error) {
	value := strings.TrimSpace(raw)
	switch strings.ToLower(value) {
	case "inf", "infinity", "∞", "unbounded":
		return Unbounded(), nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return Count{}, fmt.Errorf("parse count %q: %w", raw, err)
	}
	return Bounded(n), nil
}
