// Package walkability produces the 0-100 walkability grid an analysis run
// blends with transit access.
package walkability

import (
	"encoding/csv"
	"io"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/ChicagoDave/todplanner/pkg/grid"
	"github.com/ChicagoDave/todplanner/pkg/spec"
	"github.com/ChicagoDave/todplanner/pkg/validation"
)

// MaxScore is the top of the walkability scale.
const MaxScore = 100.0

// Uniform returns a grid with every cell set to v.
func Uniform(rows, cols int, v float64) (*grid.Grid, error) {
	if err := checkDims(rows, cols); err != nil {
		return nil, err
	}
	if err := checkValue(v); err != nil {
		return nil, err
	}
	return grid.Filled(rows, cols, v), nil
}

// Random returns a grid of uniform draws from [0, 100). The same seed
// always gives the same grid.
func Random(rows, cols int, seed int64) (*grid.Grid, error) {
	if err := checkDims(rows, cols); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(seed))
	g := grid.New(rows, cols)
	for i := range g.Values {
		g.Values[i] = rng.Float64() * MaxScore
	}
	return g, nil
}

// LoadCSV reads a grid from a CSV file with one grid row per line. Row 0 is
// the southernmost row, matching grid.CellLayout.
func LoadCSV(path string) (*grid.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "opening walkability CSV %s", path)
	}
	defer f.Close()

	g, err := ReadCSV(f)
	if err != nil {
		return nil, eris.Wrapf(err, "reading walkability CSV %s", path)
	}
	return g, nil
}

// ReadCSV parses a walkability grid. Blank lines and lines starting with #
// are skipped; every value must be a number in [0, 100].
func ReadCSV(r io.Reader) (*grid.Grid, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	var rows [][]float64
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "parsing CSV")
		}
		row := make([]float64, len(rec))
		for c, field := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, validation.Invalid("walkability row %d column %d: %q is not a number", len(rows), c, field)
			}
			if err := checkValue(v); err != nil {
				return nil, eris.Wrapf(err, "row %d column %d", len(rows), c)
			}
			row[c] = v
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, validation.Invalid("walkability CSV has no rows")
	}
	g, err := grid.FromRows(rows)
	if err != nil {
		return nil, eris.Wrap(validation.ErrInvalidConfiguration, err.Error())
	}
	return g, nil
}

// FromSpec builds the grid the spec's walkability section describes, sized
// to its analysis grid.
func FromSpec(s *spec.AnalysisSpec) (*grid.Grid, error) {
	rows, cols := s.Grid.Rows, s.Grid.Cols
	w := s.Walkability
	switch w.Source {
	case spec.WalkUniform:
		return Uniform(rows, cols, w.Value)
	case spec.WalkRandom:
		return Random(rows, cols, w.Seed)
	case spec.WalkCSV:
		if w.Path == "" {
			return nil, validation.Invalid("csv walkability needs a path")
		}
		g, err := LoadCSV(s.ResolvePath(w.Path))
		if err != nil {
			return nil, err
		}
		if g.Rows != rows || g.Cols != cols {
			return nil, validation.Invalid("walkability CSV is %dx%d, grid is %dx%d", g.Rows, g.Cols, rows, cols)
		}
		return g, nil
	}
	return nil, validation.Invalid("unknown walkability source %q", w.Source)
}

// Bands holds the share of cells in each walkability band.
type Bands struct {
	High   float64 `json:"high"`   // > 80
	Medium float64 `json:"medium"` // 40-80
	Low    float64 `json:"low"`    // <= 40
}

// Band cut-offs.
const (
	HighBand = 80.0
	LowBand  = 40.0
)

// Summarize returns the share (0-1) of cells in each band.
func Summarize(g *grid.Grid) Bands {
	return Bands{
		High:   g.FractionWhere(func(v float64) bool { return v > HighBand }),
		Medium: g.FractionWhere(func(v float64) bool { return v > LowBand && v <= HighBand }),
		Low:    g.FractionWhere(func(v float64) bool { return v <= LowBand }),
	}
}

// Rating labels a mean walkability score.
func Rating(mean float64) string {
	switch {
	case mean >= 80:
		return "excellent"
	case mean >= 60:
		return "good"
	case mean >= 40:
		return "fair"
	}
	return "poor"
}

func checkDims(rows, cols int) error {
	if rows <= 0 || cols <= 0 {
		return validation.Invalid("walkability grid %dx%d must be positive", rows, cols)
	}
	return nil
}

func checkValue(v float64) error {
	if math.IsNaN(v) || v < 0 || v > MaxScore {
		return validation.Invalid("walkability %.2f outside [0, 100]", v)
	}
	return nil
}
