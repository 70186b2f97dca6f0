// Package grid holds the rows x cols scalar grids used throughout an
// analysis run (walkability, TOD score, land-use layers) and the mapping from
// grid cells to geographic footprints.
package grid

import (
	"fmt"
	"math"

	"github.com/rotisserie/eris"
)

// Grid is a dense rows x cols array of float64 values in row-major order.
type Grid struct {
	Rows   int       `json:"rows"`
	Cols   int       `json:"cols"`
	Values []float64 `json:"values"`
}

// New creates a zero-filled grid. Panics if either dimension is negative.
func New(rows, cols int) *Grid {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("grid: negative dimensions %dx%d", rows, cols))
	}
	return &Grid{Rows: rows, Cols: cols, Values: make([]float64, rows*cols)}
}

// Filled creates a grid with every cell set to v.
func Filled(rows, cols int, v float64) *Grid {
	g := New(rows, cols)
	for i := range g.Values {
		g.Values[i] = v
	}
	return g
}

// FromRows builds a grid from a slice of equal-length rows.
func FromRows(rows [][]float64) (*Grid, error) {
	if len(rows) == 0 {
		return New(0, 0), nil
	}
	cols := len(rows[0])
	g := New(len(rows), cols)
	for r, row := range rows {
		if len(row) != cols {
			return nil, eris.Errorf("grid: row %d has %d columns, want %d", r, len(row), cols)
		}
		copy(g.Values[r*cols:(r+1)*cols], row)
	}
	return g, nil
}

// Len returns the number of cells.
func (g *Grid) Len() int {
	return len(g.Values)
}

// Empty reports whether the grid has no cells.
func (g *Grid) Empty() bool {
	return g == nil || len(g.Values) == 0
}

// At returns the value at (r, c).
func (g *Grid) At(r, c int) float64 {
	return g.Values[r*g.Cols+c]
}

// Set stores v at (r, c).
func (g *Grid) Set(r, c int, v float64) {
	g.Values[r*g.Cols+c] = v
}

// SameShape reports whether g and other have identical dimensions.
func (g *Grid) SameShape(other *Grid) bool {
	return g.Rows == other.Rows && g.Cols == other.Cols
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	out := New(g.Rows, g.Cols)
	copy(out.Values, g.Values)
	return out
}

// Mean returns the arithmetic mean of all cells, or 0 for an empty grid.
func (g *Grid) Mean() float64 {
	if g.Empty() {
		return 0
	}
	sum := 0.0
	for _, v := range g.Values {
		sum += v
	}
	return sum / float64(len(g.Values))
}

// MinMax returns the smallest and largest cell values.
func (g *Grid) MinMax() (float64, float64) {
	if g.Empty() {
		return 0, 0
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range g.Values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// FractionWhere returns the share of cells (0..1) for which pred holds.
func (g *Grid) FractionWhere(pred func(float64) bool) float64 {
	if g.Empty() {
		return 0
	}
	n := 0
	for _, v := range g.Values {
		if pred(v) {
			n++
		}
	}
	return float64(n) / float64(len(g.Values))
}

// RowSlices returns the grid as a slice of rows sharing no memory with g.
func (g *Grid) RowSlices() [][]float64 {
	out := make([][]float64, g.Rows)
	for r := 0; r < g.Rows; r++ {
		row := make([]float64, g.Cols)
		copy(row, g.Values[r*g.Cols:(r+1)*g.Cols])
		out[r] = row
	}
	return out
}
