package spec

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/ChicagoDave/todplanner/pkg/geo"
	"github.com/ChicagoDave/todplanner/pkg/grid"
	"github.com/ChicagoDave/todplanner/pkg/transit"
)

// ProjectFile is the spec file looked up inside a project directory.
const ProjectFile = "analysis.yaml"

// Defaults filled in by ApplyDefaults.
const (
	DefaultSpecVersion         = "0.1.0"
	DefaultRows                = 100
	DefaultCols                = 100
	DefaultPadding             = 0.2
	DefaultPrimaryRadius       = 400.0
	DefaultSecondaryRadius     = 800.0
	DefaultConsiderationRadius = 1000.0
	DefaultBufferRadius        = 400.0
	DefaultMinGreen            = 0.2
	DefaultMaxTransitDistance  = 500.0
	DefaultDensityFactor       = 1.0
	DefaultWalkabilityValue    = 50.0
	DefaultWalkabilitySeed     = 42
)

// ErrNoBounds is returned when neither explicit bounds nor a known preset
// locate the study area.
var ErrNoBounds = eris.New("spec: city has no bounds and no known preset")

// Load reads an analysis spec from a YAML file and applies defaults.
func Load(path string) (*AnalysisSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "reading spec file")
	}

	s, err := Parse(data)
	if err != nil {
		return nil, err
	}
	s.BaseDir = filepath.Dir(path)
	return s, nil
}

// Parse decodes spec YAML and applies defaults.
func Parse(data []byte) (*AnalysisSpec, error) {
	var s AnalysisSpec
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, eris.Wrap(err, "parsing spec YAML")
	}
	s.ApplyDefaults()
	return &s, nil
}

// LoadProject loads an analysis spec from a project directory.
// It looks for analysis.yaml in the given directory.
func LoadProject(projectDir string) (*AnalysisSpec, error) {
	return Load(filepath.Join(projectDir, ProjectFile))
}

// ForPreset returns a defaulted spec for a named city preset, used when a
// project has no analysis.yaml.
func ForPreset(name string) (*AnalysisSpec, error) {
	p, ok := LookupPreset(name)
	if !ok {
		return nil, eris.Errorf("spec: unknown city preset %q", name)
	}
	s := &AnalysisSpec{City: CityDef{Name: p.Name, Preset: p.Name}}
	s.ApplyDefaults()
	return s, nil
}

// ApplyDefaults fills zero values. Negative values are left alone so that
// validation can report them.
func (s *AnalysisSpec) ApplyDefaults() {
	if s.SpecVersion == "" {
		s.SpecVersion = DefaultSpecVersion
	}
	if s.City.Name == "" && s.City.Preset != "" {
		s.City.Name = s.City.Preset
	}

	if s.Grid.Rows == 0 {
		s.Grid.Rows = DefaultRows
	}
	if s.Grid.Cols == 0 {
		s.Grid.Cols = DefaultCols
	}
	if s.Grid.Padding == nil {
		s.Grid.Padding = float64Ptr(DefaultPadding)
	}

	if s.Scoring.PrimaryRadius == 0 {
		s.Scoring.PrimaryRadius = DefaultPrimaryRadius
	}
	if s.Scoring.SecondaryRadius == 0 {
		s.Scoring.SecondaryRadius = DefaultSecondaryRadius
	}
	if s.Scoring.ConsiderationRadius == 0 {
		s.Scoring.ConsiderationRadius = DefaultConsiderationRadius
	}
	if s.Coverage.BufferRadius == 0 {
		s.Coverage.BufferRadius = DefaultBufferRadius
	}

	if s.LandUse.MinGreenFraction == nil {
		s.LandUse.MinGreenFraction = float64Ptr(DefaultMinGreen)
	}
	if s.LandUse.MaxTransitDistance == 0 {
		s.LandUse.MaxTransitDistance = DefaultMaxTransitDistance
	}
	if s.LandUse.DensityFactor == 0 {
		s.LandUse.DensityFactor = DefaultDensityFactor
	}

	w := &s.Walkability
	w.Source = strings.ToLower(strings.TrimSpace(w.Source))
	if w.Source == "" {
		w.Source = WalkRandom
	}
	if w.Seed == 0 {
		w.Seed = DefaultWalkabilitySeed
	}
	if w.Source == WalkUniform && w.Value == 0 {
		w.Value = DefaultWalkabilityValue
	}
}

func float64Ptr(v float64) *float64 { return &v }

// MinGreen returns the configured minimum green fraction.
func (s *AnalysisSpec) MinGreen() float64 {
	if s.LandUse.MinGreenFraction == nil {
		return DefaultMinGreen
	}
	return *s.LandUse.MinGreenFraction
}

// PaddingFraction returns the configured grid padding.
func (s *AnalysisSpec) PaddingFraction() float64 {
	if s.Grid.Padding == nil {
		return DefaultPadding
	}
	return *s.Grid.Padding
}

// CityBounds returns the unpadded study area: explicit bounds if set,
// otherwise the preset's.
func (s *AnalysisSpec) CityBounds() (geo.Bounds, error) {
	if s.City.Bounds != nil {
		return *s.City.Bounds, nil
	}
	if s.City.Preset != "" {
		if p, ok := LookupPreset(s.City.Preset); ok {
			return p.Bounds, nil
		}
		return geo.Bounds{}, eris.Wrapf(ErrNoBounds, "preset %q", s.City.Preset)
	}
	return geo.Bounds{}, ErrNoBounds
}

// AnalysisBounds returns the city bounds expanded by the grid padding.
func (s *AnalysisSpec) AnalysisBounds() (geo.Bounds, error) {
	b, err := s.CityBounds()
	if err != nil {
		return geo.Bounds{}, err
	}
	return b.Pad(s.PaddingFraction()), nil
}

// CellLayout returns the analysis grid laid over the padded bounds.
func (s *AnalysisSpec) CellLayout() (grid.CellLayout, error) {
	b, err := s.AnalysisBounds()
	if err != nil {
		return grid.CellLayout{}, err
	}
	return grid.CellLayout{Bounds: b, Rows: s.Grid.Rows, Cols: s.Grid.Cols}, nil
}

// StaticStations converts the stations declared inline in the spec.
func (s *AnalysisSpec) StaticStations() ([]transit.Station, error) {
	out := make([]transit.Station, 0, len(s.Stations.Static))
	for i, d := range s.Stations.Static {
		st, err := d.Station()
		if err != nil {
			return nil, eris.Wrapf(err, "stations.static[%d]", i)
		}
		out = append(out, st)
	}
	return out, nil
}

// StationSource builds the station fallback chain. With no sources
// configured the chain is the inline static list (if any) followed by the
// city preset's stations (if any).
func (s *AnalysisSpec) StationSource() (transit.Source, error) {
	var bounds *geo.Bounds
	if b, err := s.CityBounds(); err == nil {
		bounds = &b
	}

	defs := s.Stations.Sources
	if len(defs) == 0 {
		if len(s.Stations.Static) > 0 {
			defs = append(defs, SourceDef{Kind: SourceStatic})
		}
		if s.City.Preset != "" {
			defs = append(defs, SourceDef{Kind: SourcePreset})
		}
	}
	if len(defs) == 0 {
		return nil, eris.New("spec: no station sources configured")
	}

	sources := make([]transit.Source, 0, len(defs))
	for i, d := range defs {
		src, err := s.buildSource(d, bounds)
		if err != nil {
			return nil, eris.Wrapf(err, "stations.sources[%d]", i)
		}
		sources = append(sources, src)
	}
	return transit.Chain(sources...), nil
}

func (s *AnalysisSpec) buildSource(d SourceDef, bounds *geo.Bounds) (transit.Source, error) {
	switch strings.ToLower(strings.TrimSpace(d.Kind)) {
	case SourceShapefile:
		var paths []string
		if d.Path != "" {
			paths = append(paths, s.ResolvePath(d.Path))
		}
		for _, p := range d.Paths {
			paths = append(paths, s.ResolvePath(p))
		}
		if len(paths) == 0 {
			return nil, eris.New("shapefile source needs path or paths")
		}
		return transit.ShapefileSource{Paths: paths, Bounds: bounds}, nil

	case SourceGTFS:
		if d.Path == "" {
			return nil, eris.New("gtfs source needs path")
		}
		t := transit.Bus
		if d.Type != "" {
			parsed, err := transit.ParseType(d.Type)
			if err != nil {
				return nil, eris.Wrap(err, "gtfs source type")
			}
			t = parsed
		}
		return transit.GTFSSource{Path: s.ResolvePath(d.Path), Type: t, Line: d.Line, Bounds: bounds}, nil

	case SourceStatic:
		list, err := s.StaticStations()
		if err != nil {
			return nil, err
		}
		return transit.StaticSource{Label: "static", List: list}, nil

	case SourcePreset:
		p, ok := LookupPreset(s.City.Preset)
		if !ok {
			return nil, eris.Errorf("unknown city preset %q", s.City.Preset)
		}
		list, err := p.StationList()
		if err != nil {
			return nil, err
		}
		return transit.StaticSource{Label: "preset:" + p.Name, List: list}, nil
	}
	return nil, eris.Errorf("unknown station source kind %q", d.Kind)
}

// ResolvePath joins a relative path onto the directory the spec was loaded from.
func (s *AnalysisSpec) ResolvePath(p string) string {
	if filepath.IsAbs(p) || s.BaseDir == "" {
		return p
	}
	return filepath.Join(s.BaseDir, p)
}
