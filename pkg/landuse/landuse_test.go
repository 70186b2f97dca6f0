package landuse

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChicagoDave/todplanner/pkg/grid"
	"github.com/ChicagoDave/todplanner/pkg/validation"
)

func randomWalk(rows, cols int, seed int64) *grid.Grid {
	rng := rand.New(rand.NewSource(seed))
	g := grid.New(rows, cols)
	for i := range g.Values {
		g.Values[i] = rng.Float64() * 100
	}
	return g
}

func TestAllocateAllZeroWalkability(t *testing.T) {
	out, err := Allocate(grid.New(10, 10), 0.5, 500)
	require.NoError(t, err)
	require.NoError(t, out.Check(1e-6))
	assert.GreaterOrEqual(t, out.MeanFractions().Green, 0.5)
	assert.InDelta(t, 0.6, out.At(3, 3).Green, 1e-12)
}

func TestAllocateSumInvariant(t *testing.T) {
	for _, mg := range []float64{0, 0.1, 0.2, 0.35, 0.5, 0.75, 0.9, 1} {
		for seed := int64(1); seed <= 3; seed++ {
			out, err := Allocate(randomWalk(15, 12, seed), mg, 500, WithJitter(0.5, seed))
			require.NoError(t, err)
			assert.NoError(t, out.Check(1e-6), "minGreen=%v seed=%d", mg, seed)
		}
	}
}

func TestAllocateGreenFloor(t *testing.T) {
	for _, mg := range []float64{0, 0.05, 0.2, 0.4, 0.6, 0.8, 0.9} {
		for seed := int64(1); seed <= 5; seed++ {
			out, err := Allocate(randomWalk(20, 20, seed), mg, 500, WithJitter(0.9, seed))
			require.NoError(t, err)
			assert.GreaterOrEqual(t, out.MeanFractions().Green, mg-1e-9, "minGreen=%v seed=%d", mg, seed)
			assert.NoError(t, out.Check(1e-6))
		}
	}
}

func TestAllocateFullGreen(t *testing.T) {
	out, err := Allocate(randomWalk(4, 4, 9), 1, 500)
	require.NoError(t, err)
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			assert.InDelta(t, 1, out.At(r, c).Green, 1e-12)
			assert.Equal(t, ZoneGreen, out.Dominant(r, c))
		}
	}
}

func TestWalkabilityShiftsTowardResidential(t *testing.T) {
	walk := grid.New(1, 2)
	walk.Set(0, 1, 100)
	out, err := Allocate(walk, 0.2, 500)
	require.NoError(t, err)

	low, high := out.At(0, 0), out.At(0, 1)
	assert.Greater(t, high.Residential, low.Residential)
	assert.Less(t, high.Green, low.Green)
	assert.Equal(t, ZoneResidential, out.Dominant(0, 1))
}

func TestAllocateClampsWalkability(t *testing.T) {
	walk := grid.New(1, 3)
	walk.Set(0, 0, -50)
	walk.Set(0, 1, 250)
	walk.Set(0, 2, math.NaN())
	out, err := Allocate(walk, 0.2, 500)
	require.NoError(t, err)
	require.NoError(t, out.Check(1e-9))

	ref, err := Allocate(grid.Filled(1, 1, 100), 0.2, 500)
	require.NoError(t, err)
	assert.InDelta(t, ref.At(0, 0).Residential, out.At(0, 1).Residential, 1e-12)
	assert.InDelta(t, out.At(0, 0).Green, out.At(0, 2).Green, 1e-12)
}

func TestAllocateJitterDeterministic(t *testing.T) {
	walk := randomWalk(8, 8, 3)
	a, err := Allocate(walk, 0.25, 500, WithJitter(0.4, 11))
	require.NoError(t, err)
	b, err := Allocate(walk, 0.25, 500, WithJitter(0.4, 11))
	require.NoError(t, err)
	c, err := Allocate(walk, 0.25, 500, WithJitter(0.4, 12))
	require.NoError(t, err)

	assert.Equal(t, a.Green.Values, b.Green.Values)
	assert.NotEqual(t, a.Green.Values, c.Green.Values)
}

func TestAllocateErrors(t *testing.T) {
	walk := grid.New(2, 2)
	cases := map[string]func() error{
		"nil grid":       func() error { _, err := Allocate(nil, 0.2, 500); return err },
		"empty grid":     func() error { _, err := Allocate(grid.New(0, 0), 0.2, 500); return err },
		"negative green": func() error { _, err := Allocate(walk, -0.1, 500); return err },
		"green above 1":  func() error { _, err := Allocate(walk, 1.1, 500); return err },
		"NaN green":      func() error { _, err := Allocate(walk, math.NaN(), 500); return err },
		"negative dist":  func() error { _, err := Allocate(walk, 0.2, -1); return err },
		"jitter of 1":    func() error { _, err := Allocate(walk, 0.2, 500, WithJitter(1, 1)); return err },
	}
	for name, fn := range cases {
		assert.ErrorIs(t, fn(), validation.ErrInvalidConfiguration, name)
	}
}

func TestRepairGreenKeepsRatio(t *testing.T) {
	g := &Grid{
		Green:       grid.Filled(1, 2, 0.1),
		Residential: grid.Filled(1, 2, 0.6),
		Commercial:  grid.Filled(1, 2, 0.3),
	}
	g.repairGreen(0.2) // 0.1 per cell
	require.NoError(t, g.Check(1e-12))
	f := g.At(0, 0)
	assert.InDelta(t, 0.2, f.Green, 1e-12)
	assert.InDelta(t, 2.0, f.Residential/f.Commercial, 1e-9)
	// Sum-preserving shrink: 1 - deficit/(res+com).
	assert.InDelta(t, 0.6*(1-0.1/0.9), f.Residential, 1e-12)
}

func TestRepairGreenSpillsPastCap(t *testing.T) {
	g := &Grid{
		Green:       grid.New(1, 2),
		Residential: grid.New(1, 2),
		Commercial:  grid.New(1, 2),
	}
	// Cell 0 is nearly all green; cell 1 has none.
	g.Green.Values = []float64{0.95, 0.0}
	g.Residential.Values = []float64{0.05, 0.7}
	g.Commercial.Values = []float64{0.0, 0.3}

	g.repairGreen(0.5)
	require.NoError(t, g.Check(1e-12))
	assert.InDelta(t, 1.0, g.Green.Values[0], 1e-12)
	assert.InDelta(t, 0.45, g.Green.Values[1], 1e-12)
	assert.InDelta(t, (0.95+0.5)/2, g.Green.Mean(), 1e-12)
}

func TestCheckDetectsBadCells(t *testing.T) {
	g := &Grid{
		Green:       grid.Filled(1, 1, 0.5),
		Residential: grid.Filled(1, 1, 0.5),
		Commercial:  grid.Filled(1, 1, 0.5),
	}
	assert.Error(t, g.Check(1e-6))

	g.Commercial.Set(0, 0, -0.5)
	g.Green.Set(0, 0, 1)
	assert.Error(t, g.Check(1e-6))
}

func TestDominantAndMean(t *testing.T) {
	g := &Grid{
		Green:       grid.Filled(1, 3, 0),
		Residential: grid.Filled(1, 3, 0),
		Commercial:  grid.Filled(1, 3, 0),
	}
	g.Green.Set(0, 0, 0.5)
	g.Residential.Set(0, 0, 0.3)
	g.Commercial.Set(0, 0, 0.2)
	g.Green.Set(0, 1, 0.2)
	g.Residential.Set(0, 1, 0.5)
	g.Commercial.Set(0, 1, 0.3)
	g.Green.Set(0, 2, 0.1)
	g.Residential.Set(0, 2, 0.2)
	g.Commercial.Set(0, 2, 0.7)

	assert.Equal(t, ZoneGreen, g.Dominant(0, 0))
	assert.Equal(t, ZoneResidential, g.Dominant(0, 1))
	assert.Equal(t, ZoneCommercial, g.Dominant(0, 2))

	m := g.MeanFractions()
	assert.InDelta(t, 0.8/3, m.Green, 1e-12)
	assert.InDelta(t, 1.0, m.Sum(), 1e-12)
}
