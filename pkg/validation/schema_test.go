package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChicagoDave/todplanner/pkg/geo"
	"github.com/ChicagoDave/todplanner/pkg/spec"
	"github.com/ChicagoDave/todplanner/pkg/transit"
)

func validSpec(t *testing.T) *spec.AnalysisSpec {
	t.Helper()
	s, err := spec.Parse([]byte(`
city:
  name: Test
  bounds: {north: 30.10, south: 30.00, east: 31.30, west: 31.20}
grid: {rows: 20, cols: 20}
walkability: {source: uniform, value: 60}
stations:
  static:
    - {name: Center, lat: 30.05, lon: 31.25, type: metro, line: L1, frequency: 3}
    - {name: East, lat: 30.05, lon: 31.28, type: bus, line: B1}
`))
	require.NoError(t, err)
	return s
}

func hasPath(results []Result, path string) bool {
	for _, r := range results {
		if r.SpecPath == path {
			return true
		}
	}
	return false
}

func TestValidateSchemaValid(t *testing.T) {
	r := ValidateSchema(validSpec(t))
	assert.True(t, r.Valid, "errors: %v", r.Errors)
	assert.Empty(t, r.Warnings)
	assert.NotEmpty(t, r.Info)
	assert.NoError(t, r.Err())
}

func TestValidateSchemaPresetCity(t *testing.T) {
	s, err := spec.ForPreset("Alexandria")
	require.NoError(t, err)
	r := ValidateSchema(s)
	assert.True(t, r.Valid, "errors: %v", r.Errors)
}

func TestValidateSchemaMissingBounds(t *testing.T) {
	s := validSpec(t)
	s.City.Bounds = nil
	r := ValidateSchema(s)
	assert.False(t, r.Valid)
	assert.True(t, hasPath(r.Errors, "city"))
	assert.ErrorIs(t, r.Err(), ErrInvalidConfiguration)
}

func TestValidateSchemaDegenerateBounds(t *testing.T) {
	s := validSpec(t)
	s.City.Bounds = &geo.Bounds{North: 30, South: 30, East: 31.3, West: 31.2}
	r := ValidateSchema(s)
	assert.False(t, r.Valid)
	assert.True(t, hasPath(r.Errors, "city.bounds"))
}

func TestValidateSchemaOutOfRangeBounds(t *testing.T) {
	s := validSpec(t)
	s.City.Bounds = &geo.Bounds{North: 95, South: 80, East: 31.3, West: 31.2}
	r := ValidateSchema(s)
	assert.False(t, r.Valid)
}

func TestValidateSchemaGrid(t *testing.T) {
	s := validSpec(t)
	s.Grid.Rows = 0
	s.Grid.Cols = -4
	r := ValidateSchema(s)
	assert.False(t, r.Valid)
	assert.True(t, hasPath(r.Errors, "grid.rows"))
	assert.True(t, hasPath(r.Errors, "grid.cols"))
}

func TestValidateSchemaLargeGridWarns(t *testing.T) {
	s := validSpec(t)
	s.Grid.Rows = 500
	r := ValidateSchema(s)
	assert.True(t, r.Valid)
	assert.True(t, hasPath(r.Warnings, "grid.rows"))
}

func TestValidateSchemaOversizedGridFails(t *testing.T) {
	s := validSpec(t)
	s.Grid.Rows = HardGridDimension
	assert.True(t, ValidateSchema(s).Valid)

	s.Grid.Rows = HardGridDimension + 1
	s.Grid.Cols = 100000
	r := ValidateSchema(s)
	assert.False(t, r.Valid)
	assert.True(t, hasPath(r.Errors, "grid.rows"))
	assert.True(t, hasPath(r.Errors, "grid.cols"))
	assert.False(t, hasPath(r.Warnings, "grid.rows"))
}

func TestValidateSchemaNegativePadding(t *testing.T) {
	s := validSpec(t)
	p := -0.1
	s.Grid.Padding = &p
	r := ValidateSchema(s)
	assert.True(t, hasPath(r.Errors, "grid.padding"))
}

func TestValidateSchemaMinGreen(t *testing.T) {
	tests := []struct {
		name    string
		value   float64
		valid   bool
		warning bool
	}{
		{"zero", 0, true, false},
		{"typical", 0.2, true, false},
		{"high", 0.95, true, true},
		{"one", 1.0, true, true},
		{"negative", -0.1, false, false},
		{"above one", 1.5, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSpec(t)
			v := tt.value
			s.LandUse.MinGreenFraction = &v
			r := ValidateSchema(s)
			assert.Equal(t, tt.valid, r.Valid)
			assert.Equal(t, tt.warning, hasPath(r.Warnings, "land_use.min_green_fraction"))
			if !tt.valid {
				assert.ErrorIs(t, r.Err(), ErrInvalidConfiguration)
			}
		})
	}
}

func TestValidateSchemaRadii(t *testing.T) {
	s := validSpec(t)
	s.Scoring.PrimaryRadius = -400
	r := ValidateSchema(s)
	assert.True(t, hasPath(r.Errors, "scoring.primary_radius"))

	s = validSpec(t)
	s.Scoring.SecondaryRadius = 1200
	r = ValidateSchema(s)
	assert.True(t, hasPath(r.Errors, "scoring"))
}

func TestValidateSchemaBufferRadius(t *testing.T) {
	s := validSpec(t)
	s.Coverage.BufferRadius = -1
	r := ValidateSchema(s)
	assert.True(t, hasPath(r.Errors, "coverage.buffer_radius"))

	s = validSpec(t)
	s.Coverage.BufferRadius = 5000
	r = ValidateSchema(s)
	assert.True(t, r.Valid)
	assert.True(t, hasPath(r.Warnings, "coverage.buffer_radius"))
}

func TestValidateSchemaLandUseOther(t *testing.T) {
	s := validSpec(t)
	s.LandUse.MaxTransitDistance = -5
	s.LandUse.DensityFactor = -1
	s.LandUse.Jitter = 1
	r := ValidateSchema(s)
	assert.True(t, hasPath(r.Errors, "land_use.max_transit_distance"))
	assert.True(t, hasPath(r.Errors, "land_use.density_factor"))
	assert.True(t, hasPath(r.Errors, "land_use.jitter"))
}

func TestValidateSchemaWalkability(t *testing.T) {
	s := validSpec(t)
	s.Walkability.Value = 120
	assert.True(t, hasPath(ValidateSchema(s).Errors, "walkability.value"))

	s = validSpec(t)
	s.Walkability = spec.WalkabilityDef{Source: spec.WalkCSV}
	assert.True(t, hasPath(ValidateSchema(s).Errors, "walkability.path"))

	s = validSpec(t)
	s.Walkability.Source = "satellite"
	assert.True(t, hasPath(ValidateSchema(s).Errors, "walkability.source"))
}

func TestValidateSchemaStations(t *testing.T) {
	s := validSpec(t)
	s.Stations.Filter.MaxWaitMinutes = -1
	s.Stations.Sources = []spec.SourceDef{{Kind: "fax"}}
	s.Stations.Static = append(s.Stations.Static, spec.StationDecl{Name: "Bad", Lat: 30.05, Lon: 31.25, Status: "demolished"})
	r := ValidateSchema(s)
	assert.True(t, hasPath(r.Errors, "stations.filter.max_wait_minutes"))
	assert.True(t, hasPath(r.Errors, "stations.sources[0].kind"))
	assert.True(t, hasPath(r.Errors, "stations.static[2].status"))
}

func TestValidateSchemaNoStationSources(t *testing.T) {
	s := validSpec(t)
	s.Stations.Static = nil
	r := ValidateSchema(s)
	assert.True(t, r.Valid)
	assert.True(t, hasPath(r.Warnings, "stations"))
}

func TestValidateSchemaStationOutsideBounds(t *testing.T) {
	s := validSpec(t)
	s.Stations.Static = append(s.Stations.Static, spec.StationDecl{Name: "Far", Lat: 31.5, Lon: 31.25, Type: transit.Bus})
	r := ValidateSchema(s)
	assert.True(t, r.Valid)
	require.Len(t, r.Warnings, 1)
	assert.Equal(t, LevelSpatial, r.Warnings[0].Level)
	assert.Equal(t, "city.bounds", r.Warnings[0].ConflictWith)
}

func TestValidateStations(t *testing.T) {
	b := geo.Bounds{North: 1, South: 0, East: 1, West: 0}

	r := ValidateStations(nil, b)
	assert.True(t, r.Valid)
	assert.Len(t, r.Warnings, 1)

	in := transit.NewStation(0.5, 0.5, "in", transit.Metro, "")
	out := transit.NewStation(5, 5, "out", transit.Bus, "")
	r = ValidateStations([]transit.Station{in, out}, b)
	assert.Len(t, r.Warnings, 1)
	assert.Len(t, r.Info, 2)

	r = ValidateStations([]transit.Station{out}, b)
	assert.Len(t, r.Warnings, 2, "outside station plus no-station-inside warning")
}
