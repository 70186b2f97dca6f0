// Package accessibility scores how well points and grid cells are served by
// transit stations.
package accessibility

import (
	"math"

	"github.com/ChicagoDave/todplanner/pkg/geo"
	"github.com/ChicagoDave/todplanner/pkg/grid"
	"github.com/ChicagoDave/todplanner/pkg/transit"
)

// Scoring constants.
const (
	MaxScore = 100.0

	primaryDecay    = 4.0  // meters per point lost between primary and secondary radius
	secondaryScore  = 80.0 // score at the secondary radius, approached from beyond
	secondaryDecay  = 5.0  // meters per point lost beyond the secondary radius
	multiTypeBase   = 1.2  // multiplier for two distinct types
	multiTypeStep   = 0.15 // added per type beyond two
	multiTypeCap    = 1.8
	rapidLocalBonus = 1.25
)

// Params holds the catchment radii in meters.
type Params struct {
	PrimaryRadius       float64 `json:"primary_radius"`
	SecondaryRadius     float64 `json:"secondary_radius"`
	ConsiderationRadius float64 `json:"consideration_radius"`
}

// DefaultParams returns the 400/800/1000 m catchments.
func DefaultParams() Params {
	return Params{
		PrimaryRadius:       400,
		SecondaryRadius:     800,
		ConsiderationRadius: 1000,
	}
}

// DistanceScore maps a distance to a 0-100 score. ok is false beyond the
// consideration radius, where the station is ignored.
//
// The curve falls from 100 to 0 at a slope of 1/4 up to the secondary
// radius, then restarts from 80 at a slope of 1/5. With the default radii
// that is 0 at 800 m and 80 just past it; the jump is intentional.
func DistanceScore(d float64, p Params) (score float64, ok bool) {
	switch {
	case d <= p.PrimaryRadius:
		return MaxScore, true
	case d <= p.SecondaryRadius:
		return MaxScore - (d-p.PrimaryRadius)/primaryDecay, true
	case d <= p.ConsiderationRadius:
		return secondaryScore - (d-p.SecondaryRadius)/secondaryDecay, true
	}
	return 0, false
}

// ScorePoint scores a single location against the stations.
func ScorePoint(p geo.LatLon, stations []transit.Station, params Params) float64 {
	acc := newAccumulator()
	for _, s := range stations {
		acc.add(s, p.DistanceTo(s.Position), params)
	}
	return acc.breakdown().Score
}

// ScoreCell scores a grid cell. Each station is measured from whichever of
// the cell's four corners or center lies closest to it.
func ScoreCell(fp grid.Footprint, stations []transit.Station, params Params) float64 {
	acc := newAccumulator()
	samples := fp.Samples()
	for _, s := range stations {
		acc.add(s, minSampleDistance(samples, s.Position), params)
	}
	return acc.breakdown().Score
}

func minSampleDistance(samples [5]geo.LatLon, to geo.LatLon) float64 {
	best := math.Inf(1)
	for _, p := range samples {
		if d := p.DistanceTo(to); d < best {
			best = d
		}
	}
	return best
}

// Breakdown explains how a score was reached.
type Breakdown struct {
	Score          float64                  `json:"score"`
	Category       Category                 `json:"category"`
	BaseScore      float64                  `json:"base_score"`
	TypeScores     map[transit.Type]float64 `json:"type_scores"`
	MultiTypeBonus float64                  `json:"multi_type_bonus"`
	MixBonus       float64                  `json:"mix_bonus"`
	InRange        int                      `json:"stations_in_range"`
	Nearest        *NearestStation          `json:"nearest,omitempty"`
}

// NearestStation identifies the closest station within range.
type NearestStation struct {
	Name     string       `json:"name"`
	Type     transit.Type `json:"type"`
	Line     string       `json:"line"`
	Distance float64      `json:"distance_m"`
}

// ExplainPoint scores p like ScorePoint and returns the intermediate values.
func ExplainPoint(p geo.LatLon, stations []transit.Station, params Params) Breakdown {
	acc := newAccumulator()
	for _, s := range stations {
		acc.add(s, p.DistanceTo(s.Position), params)
	}
	return acc.breakdown()
}

// accumulator keeps the best weighted score per transit type.
type accumulator struct {
	best    map[transit.Type]float64
	inRange int
	nearest *NearestStation
}

func newAccumulator() *accumulator {
	return &accumulator{best: make(map[transit.Type]float64, 4)}
}

func (a *accumulator) add(s transit.Station, d float64, params Params) {
	ds, ok := DistanceScore(d, params)
	if !ok {
		return
	}
	a.inRange++
	if a.nearest == nil || d < a.nearest.Distance {
		a.nearest = &NearestStation{Name: s.Name, Type: s.Type, Line: s.Line, Distance: d}
	}
	weighted := ds * s.Type.Weight()
	if cur, seen := a.best[s.Type]; !seen || weighted > cur {
		a.best[s.Type] = weighted
	}
}

func (a *accumulator) breakdown() Breakdown {
	b := Breakdown{
		TypeScores:     a.best,
		MultiTypeBonus: 1,
		MixBonus:       1,
		InRange:        a.inRange,
		Nearest:        a.nearest,
	}
	if len(a.best) == 0 {
		b.Category = Categorize(0)
		return b
	}

	var hasRapid, hasLocal bool
	for t, v := range a.best {
		b.BaseScore = math.Max(b.BaseScore, v)
		hasRapid = hasRapid || t.IsRapid()
		hasLocal = hasLocal || t.IsLocal()
	}

	if n := len(a.best); n > 1 {
		b.MultiTypeBonus = math.Min(multiTypeCap, multiTypeBase+multiTypeStep*float64(n-2))
	}
	if hasRapid && hasLocal {
		b.MixBonus = rapidLocalBonus
	}

	b.Score = clamp(b.BaseScore*b.MultiTypeBonus*b.MixBonus, 0, MaxScore)
	b.Category = Categorize(b.Score)
	return b
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
