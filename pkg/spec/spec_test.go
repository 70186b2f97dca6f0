package spec

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChicagoDave/todplanner/pkg/geo"
	"github.com/ChicagoDave/todplanner/pkg/transit"
)

func TestLoadProject(t *testing.T) {
	s, err := LoadProject("../../examples/cairo")
	require.NoError(t, err)

	assert.Equal(t, "0.1.0", s.SpecVersion)
	assert.Equal(t, "Cairo", s.City.Name)
	assert.Equal(t, 60, s.Grid.Rows)
	assert.Equal(t, 80, s.Grid.Cols)
	assert.InDelta(t, 0.2, s.PaddingFraction(), 1e-12)
	assert.InDelta(t, 0.25, s.MinGreen(), 1e-12)
	assert.Equal(t, []transit.Type{transit.Metro, transit.Bus, transit.Train, transit.Tram}, s.Stations.Filter.Types)
	assert.Equal(t, 30, s.Stations.Filter.MaxWaitMinutes)
	require.Len(t, s.Stations.Sources, 2)
	assert.Equal(t, "../../examples/cairo", s.BaseDir)
}

func TestLoadProjectMissing(t *testing.T) {
	_, err := LoadProject("/nonexistent/path")
	assert.Error(t, err)
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("grid: [unclosed"))
	assert.Error(t, err)
}

func TestApplyDefaults(t *testing.T) {
	s, err := Parse([]byte("city: {preset: Alexandria}\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultSpecVersion, s.SpecVersion)
	assert.Equal(t, "Alexandria", s.City.Name)
	assert.Equal(t, 100, s.Grid.Rows)
	assert.Equal(t, 100, s.Grid.Cols)
	assert.InDelta(t, 0.2, s.PaddingFraction(), 1e-12)
	assert.Equal(t, 400.0, s.Scoring.PrimaryRadius)
	assert.Equal(t, 800.0, s.Scoring.SecondaryRadius)
	assert.Equal(t, 1000.0, s.Scoring.ConsiderationRadius)
	assert.Equal(t, 400.0, s.Coverage.BufferRadius)
	assert.InDelta(t, 0.2, s.MinGreen(), 1e-12)
	assert.Equal(t, 500.0, s.LandUse.MaxTransitDistance)
	assert.Equal(t, 1.0, s.LandUse.DensityFactor)
	assert.Equal(t, WalkRandom, s.Walkability.Source)
	assert.Equal(t, int64(42), s.Walkability.Seed)
}

func TestApplyDefaultsKeepsExplicitZeros(t *testing.T) {
	s, err := Parse([]byte(`
city: {preset: Cairo}
grid: {padding: 0}
land_use: {min_green_fraction: 0}
walkability: {source: Uniform}
`))
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.PaddingFraction())
	assert.Equal(t, 0.0, s.MinGreen())
	assert.Equal(t, WalkUniform, s.Walkability.Source)
	assert.Equal(t, DefaultWalkabilityValue, s.Walkability.Value)
}

func TestApplyDefaultsKeepsNegatives(t *testing.T) {
	s, err := Parse([]byte("grid: {rows: -3}\ncoverage: {buffer_radius: -1}\n"))
	require.NoError(t, err)
	assert.Equal(t, -3, s.Grid.Rows)
	assert.Equal(t, -1.0, s.Coverage.BufferRadius)
}

func TestCityBounds(t *testing.T) {
	s, err := ForPreset("cairo")
	require.NoError(t, err)
	b, err := s.CityBounds()
	require.NoError(t, err)
	assert.Equal(t, geo.Bounds{North: 30.35, South: 29.85, East: 31.70, West: 31.05}, b)

	explicit := geo.Bounds{North: 1, South: 0, East: 1, West: 0}
	s.City.Bounds = &explicit
	b, err = s.CityBounds()
	require.NoError(t, err)
	assert.Equal(t, explicit, b)
}

func TestCityBoundsMissing(t *testing.T) {
	s, err := Parse([]byte("city: {name: Nowhere}\n"))
	require.NoError(t, err)
	_, err = s.CityBounds()
	assert.ErrorIs(t, err, ErrNoBounds)

	s.City.Preset = "Atlantis"
	_, err = s.CityBounds()
	assert.ErrorIs(t, err, ErrNoBounds)
}

func TestCellLayoutIsPadded(t *testing.T) {
	s, err := Parse([]byte("city: {bounds: {north: 1, south: 0, east: 2, west: 0}}\ngrid: {rows: 10, cols: 20}\n"))
	require.NoError(t, err)
	layout, err := s.CellLayout()
	require.NoError(t, err)
	assert.Equal(t, 10, layout.Rows)
	assert.Equal(t, 20, layout.Cols)
	assert.InDelta(t, 1.2, layout.Bounds.North, 1e-12)
	assert.InDelta(t, -0.2, layout.Bounds.South, 1e-12)
	assert.InDelta(t, 2.4, layout.Bounds.East, 1e-12)
	assert.InDelta(t, -0.4, layout.Bounds.West, 1e-12)
}

func TestForPresetUnknown(t *testing.T) {
	_, err := ForPreset("Atlantis")
	assert.Error(t, err)
}

func TestPresets(t *testing.T) {
	presets := Presets()
	require.NotEmpty(t, presets)
	assert.Equal(t, "Cairo", presets[0].Name)

	for _, p := range presets {
		assert.True(t, p.Bounds.Valid(), p.Name)
		list, err := p.StationList()
		require.NoError(t, err, p.Name)
		padded := p.Bounds.Pad(DefaultPadding)
		for _, st := range list {
			assert.True(t, padded.Contains(st.Position), "%s: %s outside analysis area", p.Name, st.Name)
		}
	}

	cairo, ok := LookupPreset("CAIRO")
	require.True(t, ok)
	list, err := cairo.StationList()
	require.NoError(t, err)
	assert.Len(t, list, 37)
	counts := transit.CountByType(list)
	assert.Equal(t, 7, counts[transit.Bus])
	assert.Equal(t, 24, counts[transit.Metro])

	giza, ok := LookupPreset("Giza")
	require.True(t, ok)
	assert.Empty(t, giza.Stations)
}

func TestPresetsReturnsCopy(t *testing.T) {
	a := Presets()
	a[0].Name = "changed"
	assert.Equal(t, "Cairo", Presets()[0].Name)
}

func TestStationDeclStatus(t *testing.T) {
	st, err := StationDecl{Name: "x", Type: transit.Train, Status: "Under Construction", Frequency: 15}.Station()
	require.NoError(t, err)
	assert.Equal(t, transit.UnderConstruction, st.Status)
	assert.Equal(t, 15, st.FrequencyMinutes)

	_, err = StationDecl{Status: "demolished"}.Station()
	assert.Error(t, err)
}

func TestStationSourcePresetFallback(t *testing.T) {
	s, err := LoadProject("../../examples/cairo")
	require.NoError(t, err)
	src, err := s.StationSource()
	require.NoError(t, err)

	// The shapefile is not checked in, so the chain falls back to the preset.
	stations, err := src.Stations(context.Background())
	require.NoError(t, err)
	assert.Len(t, stations, 37)
}

func TestStationSourceGTFS(t *testing.T) {
	s, err := LoadProject("../../examples/alexandria-gtfs")
	require.NoError(t, err)
	src, err := s.StationSource()
	require.NoError(t, err)

	stations, err := src.Stations(context.Background())
	require.NoError(t, err)
	require.Len(t, stations, 6)
	for _, st := range stations {
		assert.Equal(t, transit.Tram, st.Type)
		assert.Equal(t, "Raml Line", st.Line)
	}
}

func TestStationSourceStaticWhenGTFSMissing(t *testing.T) {
	dir := t.TempDir()
	data, err := os.ReadFile("../../examples/alexandria-gtfs/analysis.yaml")
	require.NoError(t, err)
	path := filepath.Join(dir, ProjectFile)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	src, err := s.StationSource()
	require.NoError(t, err)
	stations, err := src.Stations(context.Background())
	require.NoError(t, err)
	assert.Len(t, stations, 3)
}

func TestStationSourceDefaults(t *testing.T) {
	s, err := Parse([]byte(`
city: {preset: Luxor}
stations:
  static:
    - {name: Only, lat: 25.7, lon: 32.64, type: bus}
`))
	require.NoError(t, err)
	src, err := s.StationSource()
	require.NoError(t, err)
	stations, err := src.Stations(context.Background())
	require.NoError(t, err)
	require.Len(t, stations, 1)
	assert.Equal(t, "Only", stations[0].Name)
}

func TestStationSourceErrors(t *testing.T) {
	for name, doc := range map[string]string{
		"no sources":     "city: {name: Nowhere}\n",
		"unknown kind":   "stations: {sources: [{kind: carrier-pigeon}]}\n",
		"gtfs no path":   "stations: {sources: [{kind: gtfs}]}\n",
		"gtfs bad type":  "stations: {sources: [{kind: gtfs, path: x.txt, type: blimp}]}\n",
		"shp no path":    "stations: {sources: [{kind: shapefile}]}\n",
		"unknown preset": "city: {preset: Atlantis}\nstations: {sources: [{kind: preset}]}\n",
	} {
		s, err := Parse([]byte(doc))
		require.NoError(t, err, name)
		_, err = s.StationSource()
		assert.Error(t, err, name)
	}
}
