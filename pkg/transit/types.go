// Package transit models transit stations and the sources they are read
// from. Station values are immutable once built and are passed read-only
// into scoring.
package transit

import (
	"fmt"
	"strings"
)

// Type identifies the transit mode serving a station.
type Type int

const (
	Metro Type = iota
	Bus
	Tram
	Train
	Ferry
	Minibus
	Future
)

// unlistedWeight applies to any type without an explicit weight.
const unlistedWeight = 0.9

// Info is the fixed metadata attached to each transit type.
type Info struct {
	Name             string  `json:"name"`
	Label            string  `json:"label"`
	Weight           float64 `json:"weight"`
	DefaultFrequency int     `json:"default_frequency_minutes"`
	Color            string  `json:"color"`
	Rapid            bool    `json:"rapid"`
	Local            bool    `json:"local"`
}

// Types returns every transit type in declaration order.
func Types() []Type {
	return []Type{Metro, Bus, Tram, Train, Ferry, Minibus, Future}
}

// Info returns the metadata for t. Unknown values get the unlisted weight
// and no default frequency.
func (t Type) Info() Info {
	switch t {
	case Metro:
		return Info{Name: "metro", Label: "Metro", Weight: 1.0, DefaultFrequency: 3, Color: "#E31837", Rapid: true}
	case Bus:
		return Info{Name: "bus", Label: "Bus", Weight: 0.9, DefaultFrequency: 15, Color: "#2E7D32", Local: true}
	case Tram:
		return Info{Name: "tram", Label: "Tram", Weight: 0.95, DefaultFrequency: 8, Color: "#1565C0", Local: true}
	case Train:
		return Info{Name: "train", Label: "Train", Weight: 1.0, DefaultFrequency: 30, Color: "#6A1B9A", Rapid: true}
	case Ferry:
		return Info{Name: "ferry", Label: "Ferry", Weight: 0.9, DefaultFrequency: 60, Color: "#00838F"}
	case Minibus:
		return Info{Name: "minibus", Label: "Minibus", Weight: 0.85, DefaultFrequency: 5, Color: "#EF6C00"}
	case Future:
		return Info{Name: "future", Label: "Planned Station", Weight: unlistedWeight, Color: "#757575"}
	default:
		return Info{Name: fmt.Sprintf("type(%d)", int(t)), Label: "Unknown", Weight: unlistedWeight}
	}
}

// Weight returns the relative importance multiplier in (0, 1].
func (t Type) Weight() float64 {
	return t.Info().Weight
}

// IsRapid reports whether t is rapid transit (metro or train).
func (t Type) IsRapid() bool {
	return t.Info().Rapid
}

// IsLocal reports whether t is local transit (bus or tram).
func (t Type) IsLocal() bool {
	return t.Info().Local
}

func (t Type) String() string {
	return t.Info().Name
}

// ParseType parses a transit type name case-insensitively. Common aliases
// (subway, rail, railway, planned) are accepted.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "metro", "subway":
		return Metro, nil
	case "bus":
		return Bus, nil
	case "tram":
		return Tram, nil
	case "train", "rail", "railway":
		return Train, nil
	case "ferry":
		return Ferry, nil
	case "minibus":
		return Minibus, nil
	case "future", "planned":
		return Future, nil
	}
	return 0, fmt.Errorf("unknown transit type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(b []byte) error {
	parsed, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
