package accessibility

import (
	"context"
	"math"
	"runtime"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/quadtree"
	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/ChicagoDave/todplanner/pkg/geo"
	"github.com/ChicagoDave/todplanner/pkg/grid"
	"github.com/ChicagoDave/todplanner/pkg/transit"
	"github.com/ChicagoDave/todplanner/pkg/validation"
)

// Longitude margins are widened by this factor to stay conservative away
// from the equator; candidates are always re-checked by haversine.
const lonMarginSlack = 1.1

// indexed lets a station sit in the quadtree.
type indexed struct {
	i  int
	pt orb.Point
}

func (s indexed) Point() orb.Point { return s.pt }

// Scorer scores many cells against one station list. The spatial index is
// built once in NewScorer and only read afterwards, so a Scorer is safe for
// concurrent use.
type Scorer struct {
	params   Params
	stations []transit.Station
	index    *quadtree.Quadtree
	workers  int
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithWorkers caps the number of goroutines ScoreGrid uses. Values <= 0
// mean GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(s *Scorer) { s.workers = n }
}

// NewScorer indexes the stations for repeated scoring.
func NewScorer(stations []transit.Station, params Params, opts ...Option) *Scorer {
	s := &Scorer{
		params:   params,
		stations: append([]transit.Station(nil), stations...),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.workers <= 0 {
		s.workers = runtime.GOMAXPROCS(0)
	}

	if len(s.stations) > 0 {
		bound := orb.Bound{Min: stationPoint(s.stations[0]), Max: stationPoint(s.stations[0])}
		for _, st := range s.stations[1:] {
			bound = bound.Extend(stationPoint(st))
		}
		s.index = quadtree.New(bound.Pad(1e-6))
		for i, st := range s.stations {
			// Add only fails for points outside the bound.
			_ = s.index.Add(indexed{i: i, pt: stationPoint(st)})
		}
	}
	return s
}

func stationPoint(s transit.Station) orb.Point {
	return orb.Point{s.Position.Lon, s.Position.Lat}
}

// Params returns the scorer's radii.
func (s *Scorer) Params() Params { return s.params }

// Stations returns the indexed station list.
func (s *Scorer) Stations() []transit.Station { return s.stations }

// candidates returns the stations that may lie within the consideration
// radius of any point of the footprint.
func (s *Scorer) candidates(fp grid.Footprint, buf []orb.Pointer) ([]transit.Station, []orb.Pointer) {
	if s.index == nil {
		return nil, buf
	}
	b := fp.Bounds()
	latMargin := s.params.ConsiderationRadius / geo.MetersPerDegree * lonMarginSlack
	maxLat := math.Max(math.Abs(b.North), math.Abs(b.South)) + latMargin
	cos := math.Cos(maxLat * math.Pi / 180)
	if maxLat >= 90 || cos < 0.01 {
		return s.stations, buf
	}
	lonMargin := latMargin / cos

	query := orb.Bound{
		Min: orb.Point{b.West - lonMargin, b.South - latMargin},
		Max: orb.Point{b.East + lonMargin, b.North + latMargin},
	}
	buf = s.index.InBound(buf[:0], query)
	out := make([]transit.Station, 0, len(buf))
	for _, p := range buf {
		out = append(out, s.stations[p.(indexed).i])
	}
	return out, buf
}

// ScoreCell scores one cell using the index.
func (s *Scorer) ScoreCell(fp grid.Footprint) float64 {
	cands, _ := s.candidates(fp, nil)
	return ScoreCell(fp, cands, s.params)
}

// ScorePoint scores one location using the index.
func (s *Scorer) ScorePoint(p geo.LatLon) float64 {
	fp := grid.Footprint{SW: p, NW: p, NE: p, SE: p, Center: p}
	cands, _ := s.candidates(fp, nil)
	return ScorePoint(p, cands, s.params)
}

// NearestDistance returns the distance in meters from the footprint to the
// closest station, measured like ScoreCell. It is +Inf with no stations.
func (s *Scorer) NearestDistance(fp grid.Footprint) float64 {
	cands, _ := s.candidates(fp, nil)
	return s.nearest(fp, cands)
}

func (s *Scorer) nearest(fp grid.Footprint, cands []transit.Station) float64 {
	samples := fp.Samples()
	best := math.Inf(1)
	for _, st := range cands {
		best = math.Min(best, minSampleDistance(samples, st.Position))
	}
	if best <= s.params.ConsiderationRadius {
		return best
	}
	// Nothing within the indexed window: the nearest station may lie
	// outside it, so fall back to every station.
	for _, st := range s.stations {
		best = math.Min(best, minSampleDistance(samples, st.Position))
	}
	return best
}

// ScoreGrid scores every cell of the layout in parallel. Each worker owns
// whole rows, so no cell is written twice.
func (s *Scorer) ScoreGrid(ctx context.Context, layout grid.CellLayout) (*grid.Grid, error) {
	return s.scan(ctx, layout, func(fp grid.Footprint, cands []transit.Station) float64 {
		return ScoreCell(fp, cands, s.params)
	})
}

// DistanceGrid returns the nearest-station distance for every cell.
func (s *Scorer) DistanceGrid(ctx context.Context, layout grid.CellLayout) (*grid.Grid, error) {
	return s.scan(ctx, layout, s.nearest)
}

func (s *Scorer) scan(ctx context.Context, layout grid.CellLayout, fn func(grid.Footprint, []transit.Station) float64) (*grid.Grid, error) {
	if err := checkLayout(layout); err != nil {
		return nil, err
	}
	out := layout.NewGrid()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for r := 0; r < layout.Rows; r++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var buf []orb.Pointer
			var cands []transit.Station
			for c := 0; c < layout.Cols; c++ {
				fp := layout.Cell(r, c)
				cands, buf = s.candidates(fp, buf)
				out.Set(r, c, fn(fp, cands))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "accessibility: grid scan")
	}
	return out, nil
}

func checkLayout(l grid.CellLayout) error {
	if l.Rows <= 0 || l.Cols <= 0 {
		return validation.Invalid("grid dimensions %dx%d must be positive", l.Rows, l.Cols)
	}
	if !l.Bounds.Valid() {
		return validation.Invalid("grid bounds are degenerate")
	}
	return nil
}
