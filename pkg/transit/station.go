package transit

import (
	"fmt"
	"strings"

	"github.com/ChicagoDave/todplanner/pkg/geo"
)

// Status is the operating state of a station.
type Status string

const (
	Operational       Status = "operational"
	UnderConstruction Status = "under_construction"
	Planned           Status = "planned"
)

// ParseStatus parses a status name. Spaces and dashes are treated as
// underscores and case is ignored. An empty string means Operational.
func ParseStatus(s string) (Status, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	switch Status(norm) {
	case "", Operational:
		return Operational, nil
	case UnderConstruction:
		return UnderConstruction, nil
	case Planned:
		return Planned, nil
	}
	return "", fmt.Errorf("unknown station status %q", s)
}

// Station is a single transit stop. Treat as immutable.
type Station struct {
	Position         geo.LatLon `json:"position"`
	Name             string     `json:"name"`
	Type             Type       `json:"type"`
	Line             string     `json:"line"`
	Status           Status     `json:"status"`
	FrequencyMinutes int        `json:"frequency_minutes"`
}

// Option customizes a station built by NewStation.
type Option func(*Station)

// WithStatus sets the station status.
func WithStatus(s Status) Option {
	return func(st *Station) { st.Status = s }
}

// WithFrequency sets the service frequency in minutes. Negative values are
// stored as 0 (unknown).
func WithFrequency(minutes int) Option {
	return func(st *Station) {
		if minutes < 0 {
			minutes = 0
		}
		st.FrequencyMinutes = minutes
	}
}

// NewStation builds a station with Status Operational and an unknown (0)
// frequency unless options override them.
func NewStation(lat, lon float64, name string, t Type, line string, opts ...Option) Station {
	st := Station{
		Position: geo.Ll(lat, lon),
		Name:     name,
		Type:     t,
		Line:     line,
		Status:   Operational,
	}
	for _, opt := range opts {
		opt(&st)
	}
	return st
}

// EffectiveFrequency returns the known frequency, or the type default when
// the frequency is unknown.
func (s Station) EffectiveFrequency() int {
	if s.FrequencyMinutes > 0 {
		return s.FrequencyMinutes
	}
	return s.Type.Info().DefaultFrequency
}

// IsOperational reports whether the station is currently in service.
func (s Station) IsOperational() bool {
	return s.Status == Operational
}
