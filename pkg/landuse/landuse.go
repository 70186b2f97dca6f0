// Package landuse allocates green, residential and commercial shares to
// every cell of an analysis grid.
package landuse

import (
	"math"
	"math/rand"

	"github.com/rotisserie/eris"

	"github.com/ChicagoDave/todplanner/pkg/grid"
	"github.com/ChicagoDave/todplanner/pkg/validation"
)

// ZoneType identifies a land use class.
type ZoneType string

const (
	ZoneGreen       ZoneType = "green"
	ZoneResidential ZoneType = "residential"
	ZoneCommercial  ZoneType = "commercial"
)

// Seed shares and walkability response.
const (
	greenSeedFactor       = 1.5 // initial green share = 1.5 x minGreen
	residentialSeedShare  = 0.7 // of the non-green remainder
	commercialSeedShare   = 0.3
	residentialWalkGain   = 0.3 // residential x (1 + 0.3 * w/100)
	commercialWalkGain    = 0.2 // commercial x (1 + 0.2 * w/100)
	maxWalkability        = 100.0
	defaultCheckTolerance = 1e-6
)

// Fractions is the mix of one cell, or a grid mean.
type Fractions struct {
	Green       float64 `json:"green"`
	Residential float64 `json:"residential"`
	Commercial  float64 `json:"commercial"`
}

// Sum returns the total of the three shares.
func (f Fractions) Sum() float64 {
	return f.Green + f.Residential + f.Commercial
}

// Grid is an allocation result: three same-shaped layers whose cells each
// sum to 1.
type Grid struct {
	Green       *grid.Grid `json:"green"`
	Residential *grid.Grid `json:"residential"`
	Commercial  *grid.Grid `json:"commercial"`

	MinGreen       float64 `json:"min_green_fraction"`
	TargetDistance float64 `json:"max_transit_distance"`
}

// Rows returns the number of grid rows.
func (g *Grid) Rows() int { return g.Green.Rows }

// Cols returns the number of grid columns.
func (g *Grid) Cols() int { return g.Green.Cols }

// At returns the mix of cell (r, c).
func (g *Grid) At(r, c int) Fractions {
	return Fractions{
		Green:       g.Green.At(r, c),
		Residential: g.Residential.At(r, c),
		Commercial:  g.Commercial.At(r, c),
	}
}

// MeanFractions returns the grid-mean share of each class.
func (g *Grid) MeanFractions() Fractions {
	return Fractions{
		Green:       g.Green.Mean(),
		Residential: g.Residential.Mean(),
		Commercial:  g.Commercial.Mean(),
	}
}

// Dominant returns the class with the largest share in cell (r, c). Ties go
// to green, then residential.
func (g *Grid) Dominant(r, c int) ZoneType {
	f := g.At(r, c)
	switch {
	case f.Green >= f.Residential && f.Green >= f.Commercial:
		return ZoneGreen
	case f.Residential >= f.Commercial:
		return ZoneResidential
	}
	return ZoneCommercial
}

// Check verifies every cell is non-negative and sums to 1 within tol.
func (g *Grid) Check(tol float64) error {
	if tol <= 0 {
		tol = defaultCheckTolerance
	}
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			f := g.At(r, c)
			if f.Green < -tol || f.Residential < -tol || f.Commercial < -tol {
				return eris.Errorf("landuse: cell %d,%d has a negative share: %+v", r, c, f)
			}
			if math.Abs(f.Sum()-1) > tol {
				return eris.Errorf("landuse: cell %d,%d sums to %.9f", r, c, f.Sum())
			}
		}
	}
	return nil
}

type config struct {
	jitter float64
	seed   int64
}

// Option configures Allocate.
type Option func(*config)

// WithJitter multiplies each seed share by a factor drawn from
// [1-amount, 1] with a generator seeded by seed. amount must lie in [0, 1).
func WithJitter(amount float64, seed int64) Option {
	return func(c *config) {
		c.jitter = amount
		c.seed = seed
	}
}

// Allocate derives a land use mix from a walkability grid (0-100 per cell).
//
// Cells are seeded from minGreen, normalized, shifted toward residential and
// commercial where walkability is high, and normalized again. If the mean
// green share then falls below minGreen, the deficit is added to green
// (capped at 1 per cell, overflow spread over the other cells) and taken from
// residential and commercial in proportion, so every cell still sums to 1.
//
// targetDistance is recorded on the result but does not shape the mix.
// Walkability outside [0, 100] is clamped; NaN counts as 0.
func Allocate(walk *grid.Grid, minGreen, targetDistance float64, opts ...Option) (*Grid, error) {
	if walk.Empty() {
		return nil, validation.Invalid("landuse: walkability grid is empty")
	}
	if math.IsNaN(minGreen) || minGreen < 0 || minGreen > 1 {
		return nil, validation.Invalid("landuse: min green fraction %.4f outside [0, 1]", minGreen)
	}
	if math.IsNaN(targetDistance) || targetDistance < 0 {
		return nil, validation.Invalid("landuse: target distance %.1f must be non-negative", targetDistance)
	}

	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.jitter < 0 || cfg.jitter >= 1 {
		return nil, validation.Invalid("landuse: jitter %.3f outside [0, 1)", cfg.jitter)
	}

	rows, cols := walk.Rows, walk.Cols
	out := &Grid{
		Green:          grid.New(rows, cols),
		Residential:    grid.New(rows, cols),
		Commercial:     grid.New(rows, cols),
		MinGreen:       minGreen,
		TargetDistance: targetDistance,
	}

	var rng *rand.Rand
	if cfg.jitter > 0 {
		rng = rand.New(rand.NewSource(cfg.seed))
	}
	factor := func() float64 {
		if rng == nil {
			return 1
		}
		return 1 - cfg.jitter*rng.Float64()
	}

	greenSeed := greenSeedFactor * minGreen
	resSeed := residentialSeedShare * (1 - minGreen)
	comSeed := commercialSeedShare * (1 - minGreen)

	n := walk.Len()
	for i := 0; i < n; i++ {
		g, res, com := normalize(greenSeed*factor(), resSeed*factor(), comSeed*factor())

		w := walkFactor(walk.Values[i])
		res *= 1 + residentialWalkGain*w
		com *= 1 + commercialWalkGain*w
		g, res, com = normalize(g, res, com)

		out.Green.Values[i] = g
		out.Residential.Values[i] = res
		out.Commercial.Values[i] = com
	}

	if deficit := minGreen - out.Green.Mean(); deficit > 0 {
		out.repairGreen(deficit * float64(n))
	}
	return out, nil
}

func walkFactor(w float64) float64 {
	if math.IsNaN(w) {
		return 0
	}
	return math.Max(0, math.Min(maxWalkability, w)) / maxWalkability
}

// normalize scales the three shares to sum to 1. An all-zero cell becomes
// all green.
func normalize(g, res, com float64) (float64, float64, float64) {
	total := g + res + com
	if total <= 0 {
		return 1, 0, 0
	}
	return g / total, res / total, com / total
}

// repairGreen adds need (a grid total) to the green layer and shrinks the
// other two layers to keep each cell at 1.
func (g *Grid) repairGreen(need float64) {
	const eps = 1e-12
	n := g.Green.Len()
	added := make([]float64, n)

	for pass := 0; pass < n && need > eps; pass++ {
		open := 0
		for i := 0; i < n; i++ {
			if g.Green.Values[i]+added[i] < 1-eps {
				open++
			}
		}
		if open == 0 {
			break
		}
		share := need / float64(open)
		for i := 0; i < n; i++ {
			room := 1 - g.Green.Values[i] - added[i]
			if room < eps {
				continue
			}
			add := math.Min(share, room)
			added[i] += add
			need -= add
		}
	}

	for i := 0; i < n; i++ {
		if added[i] == 0 {
			continue
		}
		other := g.Residential.Values[i] + g.Commercial.Values[i]
		green := math.Min(1, g.Green.Values[i]+added[i])
		g.Green.Values[i] = green
		if other <= 0 {
			continue
		}
		scale := math.Max(0, 1-green) / other
		g.Residential.Values[i] *= scale
		g.Commercial.Values[i] *= scale
	}
}
