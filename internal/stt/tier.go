package stt

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTier is returned when a tier name is not one of Tiers.
var ErrUnknownTier = errors.New("unknown model tier")

// Tier selects the model size. Larger tiers are slower and more accurate.
type Tier int

const (
	Tiny Tier = iota
	Base
	Small
	Medium
	Large
)

var tierNames = [...]string{"tiny", "base", "small", "medium", "large"}

// Tiers lists every tier from fastest to most accurate.
func Tiers() []Tier {
	return []Tier{Tiny, Base, Small, Medium, Large}
}

// ParseTier parses a tier name, ignoring case and surrounding space.
func ParseTier(s string) (Tier, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range tierNames {
		if n == name {
			return Tier(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTier, s)
}

// Valid reports whether t is one of the declared tiers.
func (t Tier) Valid() bool {
	return t >= Tiny && t <= Large
}

func (t Tier) String() string {
	if !t.Valid() {
		return fmt.Sprintf("tier(%d)", int(t))
	}
	return tierNames[t]
}

// MarshalText implements encoding.TextMarshaler.
func (t Tier) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTier, int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tier) UnmarshalText(b []byte) error {
	v, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
