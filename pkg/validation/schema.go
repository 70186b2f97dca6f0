package validation

import (
	"fmt"

	"github.com/ChicagoDave/todplanner/pkg/geo"
	"github.com/ChicagoDave/todplanner/pkg/spec"
	"github.com/ChicagoDave/todplanner/pkg/transit"
)

// Limits used by the schema checks.
const (
	MaxGridDimension = 200
	// HardGridDimension is the largest rows or cols value accepted at all.
	HardGridDimension = 4 * MaxGridDimension
	HighMinGreen     = 0.9
	MaxBufferRadius  = 2000.0
	MaxWalkability   = 100.0
)

// ValidateSchema performs Level 1 (schema) validation on a parsed
// AnalysisSpec. It checks structural correctness before any computation.
func ValidateSchema(s *spec.AnalysisSpec) *Report {
	r := NewReport()

	validateCity(s, r)
	validateGrid(s, r)
	validateScoring(s, r)
	validateCoverage(s, r)
	validateLandUse(s, r)
	validateWalkability(s, r)
	validateStations(s, r)

	return r
}

func validateCity(s *spec.AnalysisSpec, r *Report) {
	b, err := s.CityBounds()
	if err != nil {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     err.Error(),
			SpecPath:    "city",
			Expected:    "city.bounds or a known city.preset",
			Suggestions: presetNames(),
		})
		return
	}
	checkBounds(b, "city.bounds", r)
}

func checkBounds(b geo.Bounds, path string, r *Report) {
	if !b.Valid() {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("bounds are degenerate: north %.4f / south %.4f, east %.4f / west %.4f", b.North, b.South, b.East, b.West),
			SpecPath:    path,
			ActualValue: b,
			Expected:    "north > south and east > west",
		})
	}
	if b.North > 90 || b.South < -90 || b.East > 180 || b.West < -180 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "bounds fall outside valid latitude/longitude ranges",
			SpecPath:    path,
			ActualValue: b,
			Expected:    "lat in [-90, 90], lon in [-180, 180]",
		})
	}
}

func presetNames() []string {
	presets := spec.Presets()
	names := make([]string, 0, len(presets))
	for _, p := range presets {
		names = append(names, "preset: "+p.Name)
	}
	return names
}

func validateGrid(s *spec.AnalysisSpec, r *Report) {
	dims := []struct {
		name string
		v    int
	}{{"rows", s.Grid.Rows}, {"cols", s.Grid.Cols}}

	for _, d := range dims {
		path := "grid." + d.name
		switch {
		case d.v <= 0:
			r.AddError(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("grid %s must be > 0", d.name),
				SpecPath:    path,
				ActualValue: d.v,
				Expected:    "> 0",
			})
		case d.v > HardGridDimension:
			r.AddError(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("grid %s %d exceeds the limit of %d", d.name, d.v, HardGridDimension),
				SpecPath:    path,
				ActualValue: d.v,
				Expected:    fmt.Sprintf("<= %d", HardGridDimension),
				Suggestions: []string{"coarsen the grid or split the city into several analyses"},
			})
		case d.v > MaxGridDimension:
			r.AddWarning(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("grid %s %d is large; scoring cost grows with rows x cols x stations", d.name, d.v),
				SpecPath:    path,
				ActualValue: d.v,
				Expected:    fmt.Sprintf("<= %d", MaxGridDimension),
			})
		}
	}

	if p := s.PaddingFraction(); p < 0 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "grid padding must be non-negative",
			SpecPath:    "grid.padding",
			ActualValue: p,
			Expected:    ">= 0",
		})
	}
}

func validateScoring(s *spec.AnalysisSpec, r *Report) {
	sc := s.Scoring
	radii := []struct {
		name string
		v    float64
	}{
		{"primary_radius", sc.PrimaryRadius},
		{"secondary_radius", sc.SecondaryRadius},
		{"consideration_radius", sc.ConsiderationRadius},
	}
	for _, rad := range radii {
		if rad.v <= 0 {
			r.AddError(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("%s must be > 0", rad.name),
				SpecPath:    "scoring." + rad.name,
				ActualValue: rad.v,
				Expected:    "> 0",
			})
		}
	}
	if sc.PrimaryRadius >= sc.SecondaryRadius || sc.SecondaryRadius >= sc.ConsiderationRadius {
		r.AddError(Result{
			Level:        LevelSchema,
			Message:      fmt.Sprintf("scoring radii must increase: %.0f / %.0f / %.0f", sc.PrimaryRadius, sc.SecondaryRadius, sc.ConsiderationRadius),
			SpecPath:     "scoring",
			Expected:     "primary < secondary < consideration",
			ConflictWith: "scoring.consideration_radius",
		})
	}
}

func validateCoverage(s *spec.AnalysisSpec, r *Report) {
	br := s.Coverage.BufferRadius
	switch {
	case br < 0:
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "buffer_radius must be non-negative",
			SpecPath:    "coverage.buffer_radius",
			ActualValue: br,
			Expected:    ">= 0",
		})
	case br > MaxBufferRadius:
		r.AddWarning(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("buffer_radius %.0fm is beyond walking distance", br),
			SpecPath:    "coverage.buffer_radius",
			ActualValue: br,
			Expected:    fmt.Sprintf("<= %.0f", MaxBufferRadius),
			Suggestions: []string{"Use 400m (5 min walk) or 800m (10 min walk)"},
		})
	}
}

func validateLandUse(s *spec.AnalysisSpec, r *Report) {
	lu := s.LandUse
	mg := s.MinGreen()
	switch {
	case mg < 0 || mg > 1:
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("min_green_fraction %.3f must lie in [0, 1]", mg),
			SpecPath:    "land_use.min_green_fraction",
			ActualValue: mg,
			Expected:    "0-1",
		})
	case mg > HighMinGreen:
		r.AddWarning(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("min_green_fraction %.2f leaves little room for residential or commercial use", mg),
			SpecPath:    "land_use.min_green_fraction",
			ActualValue: mg,
			Expected:    fmt.Sprintf("<= %.1f", HighMinGreen),
		})
	}

	if lu.MaxTransitDistance < 0 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "max_transit_distance must be non-negative",
			SpecPath:    "land_use.max_transit_distance",
			ActualValue: lu.MaxTransitDistance,
			Expected:    ">= 0",
		})
	}
	if lu.DensityFactor < 0 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "density_factor must be non-negative",
			SpecPath:    "land_use.density_factor",
			ActualValue: lu.DensityFactor,
			Expected:    ">= 0",
		})
	}
	if lu.Jitter < 0 || lu.Jitter >= 1 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "jitter must lie in [0, 1)",
			SpecPath:    "land_use.jitter",
			ActualValue: lu.Jitter,
			Expected:    "0 <= jitter < 1",
		})
	}
}

func validateWalkability(s *spec.AnalysisSpec, r *Report) {
	w := s.Walkability
	switch w.Source {
	case spec.WalkRandom:
	case spec.WalkUniform:
		if w.Value < 0 || w.Value > MaxWalkability {
			r.AddError(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("uniform walkability %.1f must lie in [0, 100]", w.Value),
				SpecPath:    "walkability.value",
				ActualValue: w.Value,
				Expected:    "0-100",
			})
		}
	case spec.WalkCSV:
		if w.Path == "" {
			r.AddError(Result{
				Level:    LevelSchema,
				Message:  "csv walkability needs a path",
				SpecPath: "walkability.path",
			})
		}
	default:
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("unknown walkability source %q", w.Source),
			SpecPath:    "walkability.source",
			ActualValue: w.Source,
			Expected:    "uniform, random or csv",
		})
	}
}

func validateStations(s *spec.AnalysisSpec, r *Report) {
	st := s.Stations
	if st.Filter.MaxWaitMinutes < 0 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "max_wait_minutes must be non-negative",
			SpecPath:    "stations.filter.max_wait_minutes",
			ActualValue: st.Filter.MaxWaitMinutes,
			Expected:    ">= 0 (0 disables the filter)",
		})
	}

	for i, d := range st.Sources {
		switch d.Kind {
		case spec.SourceShapefile, spec.SourceGTFS, spec.SourceStatic, spec.SourcePreset:
		default:
			r.AddError(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("unknown station source kind %q", d.Kind),
				SpecPath:    fmt.Sprintf("stations.sources[%d].kind", i),
				ActualValue: d.Kind,
				Expected:    "shapefile, gtfs, static or preset",
			})
		}
	}

	if len(st.Sources) == 0 && len(st.Static) == 0 && s.City.Preset == "" {
		r.AddWarning(Result{
			Level:       LevelSchema,
			Message:     "no station sources configured; every cell will score 0",
			SpecPath:    "stations",
			Suggestions: []string{"Add stations.static entries", "Set city.preset for fallback stations"},
		})
	}

	stations := make([]transit.Station, 0, len(st.Static))
	for i, d := range st.Static {
		station, err := d.Station()
		if err != nil {
			r.AddError(Result{
				Level:       LevelSchema,
				Message:     err.Error(),
				SpecPath:    fmt.Sprintf("stations.static[%d].status", i),
				ActualValue: d.Status,
				Expected:    "operational, under construction or planned",
			})
			continue
		}
		stations = append(stations, station)
	}
	if len(stations) > 0 {
		r.AddInfo(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("%d static stations declared", len(stations)),
			SpecPath:    "stations.static",
			ActualValue: len(stations),
		})
		if b, err := s.CityBounds(); err == nil && b.Valid() {
			r.Merge(ValidateStations(stations, b))
		}
	}
}

// ValidateStations reports spatial findings for a loaded station list:
// an empty list and stations outside the study area are warnings.
func ValidateStations(stations []transit.Station, bounds geo.Bounds) *Report {
	r := NewReport()
	if len(stations) == 0 {
		r.AddWarning(Result{
			Level:    LevelSpatial,
			Message:  "station list is empty; every cell will score 0",
			SpecPath: "stations",
		})
		return r
	}

	var outside int
	for _, st := range stations {
		if !bounds.Contains(st.Position) {
			outside++
			r.AddWarning(Result{
				Level:        LevelSpatial,
				Message:      fmt.Sprintf("station %s (%s) lies outside the city bounds", st.Name, st.Position),
				SpecPath:     "stations",
				ActualValue:  st.Position,
				ConflictWith: "city.bounds",
			})
		}
	}

	counts := transit.CountByType(stations)
	for _, t := range transit.Types() {
		if counts[t] == 0 {
			continue
		}
		r.AddInfo(Result{
			Level:       LevelSpatial,
			Message:     fmt.Sprintf("%d %s stations", counts[t], t.Info().Label),
			SpecPath:    "stations",
			ActualValue: counts[t],
		})
	}
	if outside == len(stations) {
		r.AddWarning(Result{
			Level:       LevelSpatial,
			Message:     "no station lies inside the city bounds",
			SpecPath:    "stations",
			Suggestions: []string{"Check that lat/lon are not swapped"},
		})
	}
	return r
}
