package spec

import (
	"github.com/ChicagoDave/todplanner/pkg/geo"
	"github.com/ChicagoDave/todplanner/pkg/transit"
)

// AnalysisSpec describes one TOD analysis run.
type AnalysisSpec struct {
	SpecVersion string         `yaml:"spec_version" json:"spec_version"`
	City        CityDef        `yaml:"city" json:"city"`
	Grid        GridDef        `yaml:"grid" json:"grid"`
	Scoring     ScoringDef     `yaml:"scoring" json:"scoring"`
	Coverage    CoverageDef    `yaml:"coverage" json:"coverage"`
	LandUse     LandUseDef     `yaml:"land_use" json:"land_use"`
	Walkability WalkabilityDef `yaml:"walkability" json:"walkability"`
	Stations    StationsDef    `yaml:"stations" json:"stations"`

	// BaseDir is the directory relative source paths are resolved against.
	BaseDir string `yaml:"-" json:"-"`
}

// CityDef names the study area. Bounds win over the preset's bounds when
// both are given.
type CityDef struct {
	Name   string      `yaml:"name" json:"name"`
	Preset string      `yaml:"preset" json:"preset,omitempty"`
	Bounds *geo.Bounds `yaml:"bounds,omitempty" json:"bounds,omitempty"`
}

type GridDef struct {
	Rows int `yaml:"rows" json:"rows"`
	Cols int `yaml:"cols" json:"cols"`
	// Padding expands the city bounds by this fraction of the span on
	// every side before the grid is laid out.
	Padding *float64 `yaml:"padding,omitempty" json:"padding,omitempty"`
}

type ScoringDef struct {
	PrimaryRadius       float64 `yaml:"primary_radius" json:"primary_radius"`
	SecondaryRadius     float64 `yaml:"secondary_radius" json:"secondary_radius"`
	ConsiderationRadius float64 `yaml:"consideration_radius" json:"consideration_radius"`
}

type CoverageDef struct {
	BufferRadius float64 `yaml:"buffer_radius" json:"buffer_radius"`
}

type LandUseDef struct {
	MinGreenFraction   *float64 `yaml:"min_green_fraction,omitempty" json:"min_green_fraction,omitempty"`
	MaxTransitDistance float64  `yaml:"max_transit_distance" json:"max_transit_distance"`
	// DensityFactor is carried for reporting; the allocator does not read it.
	DensityFactor float64 `yaml:"density_factor" json:"density_factor"`
	// Jitter, when > 0, randomizes the seed fractions by up to this share.
	Jitter float64 `yaml:"jitter" json:"jitter"`
	Seed   int64   `yaml:"seed" json:"seed"`
}

// Walkability sources.
const (
	WalkUniform = "uniform"
	WalkRandom  = "random"
	WalkCSV     = "csv"
)

type WalkabilityDef struct {
	Source string  `yaml:"source" json:"source"`
	Value  float64 `yaml:"value" json:"value"`
	Seed   int64   `yaml:"seed" json:"seed"`
	Path   string  `yaml:"path" json:"path,omitempty"`
}

type StationsDef struct {
	Filter  transit.Filter `yaml:"filter" json:"filter"`
	Sources []SourceDef    `yaml:"sources" json:"sources,omitempty"`
	Static  []StationDecl  `yaml:"static" json:"static,omitempty"`
}

// Station source kinds.
const (
	SourceShapefile = "shapefile"
	SourceGTFS      = "gtfs"
	SourceStatic    = "static"
	SourcePreset    = "preset"
)

// SourceDef is one entry of the station fallback chain.
type SourceDef struct {
	Kind  string   `yaml:"kind" json:"kind"`
	Path  string   `yaml:"path" json:"path,omitempty"`
	Paths []string `yaml:"paths" json:"paths,omitempty"`
	// Type and Line label every stop of a GTFS feed.
	Type string `yaml:"type" json:"type,omitempty"`
	Line string `yaml:"line" json:"line,omitempty"`
}

// StationDecl is a station written out in YAML.
type StationDecl struct {
	Name      string       `yaml:"name" json:"name"`
	Lat       float64      `yaml:"lat" json:"lat"`
	Lon       float64      `yaml:"lon" json:"lon"`
	Type      transit.Type `yaml:"type" json:"type"`
	Line      string       `yaml:"line" json:"line"`
	Status    string       `yaml:"status" json:"status,omitempty"`
	Frequency int          `yaml:"frequency" json:"frequency,omitempty"`
}

// Station converts the declaration to a transit.Station.
func (d StationDecl) Station() (transit.Station, error) {
	status, err := transit.ParseStatus(d.Status)
	if err != nil {
		return transit.Station{}, err
	}
	return transit.NewStation(d.Lat, d.Lon, d.Name, d.Type, d.Line,
		transit.WithStatus(status),
		transit.WithFrequency(d.Frequency),
	), nil
}
