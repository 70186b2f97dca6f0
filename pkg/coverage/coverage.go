// Package coverage estimates the share of a bounding box that lies within
// walking distance of at least one station.
package coverage

import (
	"math"

	ctgeom "github.com/ctessum/geom"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/ChicagoDave/todplanner/pkg/geo"
	"github.com/ChicagoDave/todplanner/pkg/transit"
)

// DefaultBufferRadius is the walking buffer in meters.
const DefaultBufferRadius = 400.0

// Buffers returns one circle per station, radius meters wide, in (lon, lat)
// degree space. The radius is converted with geo.MetersPerDegree on both
// axes.
func Buffers(stations []transit.Station, radius float64) []*geom.Polygon {
	if radius <= 0 {
		return nil
	}
	deg := radius / geo.MetersPerDegree
	out := make([]*geom.Polygon, 0, len(stations))
	for _, s := range stations {
		circle := geo.ApproximateCircle(s.Position.Planar(), deg, geo.CircleSegments)
		out = append(out, toGeom(circle))
	}
	return out
}

// Estimate returns the percentage (0-100) of bounds covered by the union of
// the stations' buffers. Empty input, a non-positive radius or degenerate
// bounds give 0.
func Estimate(stations []transit.Station, radius float64, bounds geo.Bounds) float64 {
	log := zap.L().With(zap.String("component", "coverage"))
	switch {
	case len(stations) == 0:
		log.Debug("no stations, coverage is zero")
		return 0
	case radius <= 0 || math.IsNaN(radius):
		log.Debug("non-positive buffer radius, coverage is zero", zap.Float64("radius", radius))
		return 0
	case !bounds.Valid():
		log.Debug("degenerate bounds, coverage is zero", zap.Any("bounds", bounds))
		return 0
	}

	box := geom.NewBounds(geom.XY).Set(bounds.West, bounds.South, bounds.East, bounds.North)
	seen := make(map[geo.LatLon]bool, len(stations))

	var union ctgeom.Polygonal
	inBox := 0
	for i, buf := range Buffers(stations, radius) {
		pos := stations[i].Position
		if seen[pos] || !box.Overlaps(geom.XY, buf.Bounds()) {
			continue
		}
		seen[pos] = true
		inBox++
		p := toPolygonal(buf)
		if union == nil {
			union = p
			continue
		}
		union = union.Union(p)
	}
	if union == nil {
		return 0
	}

	clipped := union.Intersection(toPolygonal(toGeom(bounds.Polygon())))
	if clipped == nil {
		return 0
	}
	pct := clipped.Area() / (bounds.LatSpan() * bounds.LonSpan()) * 100
	log.Debug("coverage estimated",
		zap.Int("stations", len(stations)),
		zap.Int("buffers_in_box", inBox),
		zap.Float64("percent", pct))
	return math.Max(0, math.Min(100, pct))
}

// toGeom converts a ring to a closed go-geom polygon.
func toGeom(p geo.Polygon) *geom.Polygon {
	flat := make([]float64, 0, 2*(len(p.Vertices)+1))
	for _, v := range p.Vertices {
		flat = append(flat, v.X, v.Y)
	}
	if len(p.Vertices) > 0 {
		flat = append(flat, p.Vertices[0].X, p.Vertices[0].Y)
	}
	return geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)})
}

// toPolygonal returns the rings of a go-geom polygon, without their closing
// vertex, for boolean operations.
func toPolygonal(p *geom.Polygon) ctgeom.Polygon {
	out := make(ctgeom.Polygon, 0, p.NumLinearRings())
	for i := 0; i < p.NumLinearRings(); i++ {
		lr := p.LinearRing(i)
		n := lr.NumCoords()
		if n > 1 && lr.Coord(0).Equal(geom.XY, lr.Coord(n-1)) {
			n--
		}
		path := make(ctgeom.Path, 0, n)
		for j := 0; j < n; j++ {
			c := lr.Coord(j)
			path = append(path, ctgeom.Point{X: c.X(), Y: c.Y()})
		}
		out = append(out, path)
	}
	return out
}
