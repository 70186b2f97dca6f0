package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const projectSpec = `
city:
  name: Test
  bounds: {north: 30.07, south: 30.02, east: 31.27, west: 31.21}
grid: {rows: 6, cols: 8, padding: 0}
land_use: {min_green_fraction: 0.3}
walkability: {source: uniform, value: 70}
stations:
  static:
    - {name: Center, lat: 30.045, lon: 31.24, type: metro, line: L1, frequency: 3}
    - {name: East, lat: 30.045, lon: 31.255, type: bus, line: B1}
`

func writeProject(t *testing.T, doc string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "analysis.yaml"), []byte(doc), 0644))
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommandHasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range newRootCmd().Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"analyze", "validate", "score", "coverage", "allocate", "export", "serve"} {
		assert.True(t, names[name], "expected subcommand %q", name)
	}
}

func TestServeCommandFlags(t *testing.T) {
	cmd, _, err := newRootCmd().Find([]string{"serve"})
	require.NoError(t, err)
	flag := cmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "0", flag.DefValue)
}

func TestAnalyzeJSON(t *testing.T) {
	dir := writeProject(t, projectSpec)
	out, err := execute(t, "analyze", dir)
	require.NoError(t, err)

	var body struct {
		Result struct {
			RunID   string `json:"run_id"`
			City    string `json:"city"`
			Summary struct {
				Cells    int `json:"cells"`
				Stations int `json:"stations"`
			} `json:"summary"`
		} `json:"result"`
		Validation struct {
			Valid bool `json:"valid"`
		} `json:"validation"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.NotEmpty(t, body.Result.RunID)
	assert.Equal(t, "Test", body.Result.City)
	assert.Equal(t, 48, body.Result.Summary.Cells)
	assert.Equal(t, 2, body.Result.Summary.Stations)
	assert.True(t, body.Validation.Valid)
}

func TestAnalyzeText(t *testing.T) {
	dir := writeProject(t, projectSpec)
	out, err := execute(t, "analyze", dir, "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "TOD Analysis: Test")
	assert.Contains(t, out, "Land Use")
	assert.Contains(t, out, "Result: VALID")
}

func TestAnalyzeUnknownFormat(t *testing.T) {
	dir := writeProject(t, projectSpec)
	_, err := execute(t, "analyze", dir, "--format", "yaml")
	assert.Error(t, err)
}

func TestAnalyzeMissingProject(t *testing.T) {
	_, err := execute(t, "analyze", filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestValidateInvalidSpec(t *testing.T) {
	dir := writeProject(t, projectSpec+"\nscoring: {primary_radius: -5}\n")
	out, err := execute(t, "validate", dir)
	assert.ErrorIs(t, err, errInvalidSpec)
	assert.Contains(t, out, "Result: INVALID")
}

func TestValidateValidSpec(t *testing.T) {
	dir := writeProject(t, projectSpec)
	out, err := execute(t, "validate", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Result: VALID")
}

func TestScoreCommand(t *testing.T) {
	dir := writeProject(t, projectSpec)
	out, err := execute(t, "score", dir, "--lat", "30.045", "--lon", "31.24")
	require.NoError(t, err)
	assert.Contains(t, out, "100.0 (high)")
	assert.Contains(t, out, "Center")
}

func TestScoreCommandOutOfRange(t *testing.T) {
	dir := writeProject(t, projectSpec)
	out, err := execute(t, "score", dir, "--lat", "30.3", "--lon", "31.6")
	require.NoError(t, err)
	assert.Contains(t, out, "No station within range")
}

func TestScoreCommandRequiresCoordinates(t *testing.T) {
	dir := writeProject(t, projectSpec)
	_, err := execute(t, "score", dir, "--lat", "30.0")
	assert.Error(t, err)
}

func TestCoverageCommand(t *testing.T) {
	dir := writeProject(t, projectSpec)
	out, err := execute(t, "coverage", dir, "--radius", "600")
	require.NoError(t, err)
	assert.Contains(t, out, "within 600 m of 2 stations")
}

func TestAllocateCommand(t *testing.T) {
	dir := writeProject(t, projectSpec)
	out, err := execute(t, "allocate", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Land Use Allocation (6 x 8)")
	assert.Contains(t, out, "Check: OK")
}

func TestExportCommand(t *testing.T) {
	dir := writeProject(t, projectSpec)
	gj := filepath.Join(dir, "out.geojson")
	wb := filepath.Join(dir, "out.xlsx")

	_, err := execute(t, "export", dir, "--geojson", gj, "--xlsx", wb)
	require.NoError(t, err)
	assert.FileExists(t, gj)
	assert.FileExists(t, wb)
}

func TestExportNeedsTarget(t *testing.T) {
	dir := writeProject(t, projectSpec)
	_, err := execute(t, "export", dir)
	assert.Error(t, err)
}

func TestCityPresetFlag(t *testing.T) {
	out, err := execute(t, "coverage", "--city", "Alexandria")
	require.NoError(t, err)
	assert.Contains(t, out, "Coverage:")
	assert.Contains(t, out, "Alexandria")
}
