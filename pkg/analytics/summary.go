package analytics

import (
	"github.com/ChicagoDave/todplanner/pkg/accessibility"
	"github.com/ChicagoDave/todplanner/pkg/impact"
	"github.com/ChicagoDave/todplanner/pkg/landuse"
	"github.com/ChicagoDave/todplanner/pkg/transit"
	"github.com/ChicagoDave/todplanner/pkg/walkability"
)

// Coverage rating cut-offs, in percent.
const (
	HighCoverage     = 70.0
	ModerateCoverage = 40.0
)

// greenTolerance absorbs rounding when comparing mean green to its floor.
const greenTolerance = 1e-9

func summarize(res *Result) Summary {
	rows, cols := res.Layout.Rows, res.Layout.Cols
	sum := Summary{
		Rows:           rows,
		Cols:           cols,
		Cells:          rows * cols,
		Stations:       len(res.Stations),
		StationsByType: transit.CountByType(res.Stations),
	}

	for _, s := range res.Stations {
		if s.IsOperational() {
			sum.Operational++
		}
		if f := s.EffectiveFrequency(); f > 0 && f <= impact.HighFrequencyMinutes {
			sum.HighFrequency++
		}
	}

	// Scores
	sum.MeanScore = res.Score.Mean()
	_, sum.MaxScore = res.Score.MinMax()
	counts := map[accessibility.Category]int{}
	for _, v := range res.Score.Values {
		counts[accessibility.Categorize(v)]++
		if v > 0 {
			sum.CellsInRange++
		}
	}
	if n := res.Score.Len(); n > 0 {
		sum.Categories = CategoryShares{
			High:   float64(counts[accessibility.High]) / float64(n),
			Medium: float64(counts[accessibility.Medium]) / float64(n),
			Low:    float64(counts[accessibility.Low]) / float64(n),
		}
	}
	sum.MeanPotential = res.Potential.Mean()

	// Walkability
	sum.MeanWalkability = res.Walkability.Mean()
	sum.WalkabilityRating = walkability.Rating(sum.MeanWalkability)
	sum.WalkabilityBands = walkability.Summarize(res.Walkability)

	// Land use
	sum.LandUse = res.LandUse.MeanFractions()
	sum.MinGreen = res.LandUse.MinGreen
	sum.GreenTarget = impact.GreenTargetPercent / 100
	sum.GreenMet = sum.LandUse.Green >= sum.MinGreen-greenTolerance
	sum.DominantMix = map[landuse.ZoneType]int{}
	for r := 0; r < res.LandUse.Rows(); r++ {
		for c := 0; c < res.LandUse.Cols(); c++ {
			sum.DominantMix[res.LandUse.Dominant(r, c)]++
		}
	}

	// Coverage
	sum.CoveragePercent = res.CoveragePercent
	sum.CoverageRating = CoverageRating(res.CoveragePercent)
	return sum
}

// CoverageRating labels a coverage percentage.
func CoverageRating(pct float64) string {
	switch {
	case pct >= HighCoverage:
		return "high"
	case pct >= ModerateCoverage:
		return "moderate"
	}
	return "low"
}
