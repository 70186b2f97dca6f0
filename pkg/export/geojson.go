// Package export renders analysis results for maps and spreadsheets.
package export

import (
	"io"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/ChicagoDave/todplanner/pkg/accessibility"
	"github.com/ChicagoDave/todplanner/pkg/analytics"
	"github.com/ChicagoDave/todplanner/pkg/coverage"
	"github.com/ChicagoDave/todplanner/pkg/grid"
	"github.com/ChicagoDave/todplanner/pkg/transit"
)

// GeoJSON returns one polygon feature per grid cell, row-major from the
// south-west corner.
func GeoJSON(res *analytics.Result) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	layout := res.Layout
	for r := 0; r < layout.Rows; r++ {
		for c := 0; c < layout.Cols; c++ {
			fc.Append(cellFeature(res, r, c))
		}
	}
	return fc
}

func cellFeature(res *analytics.Result, r, c int) *geojson.Feature {
	f := geojson.NewFeature(cellPolygon(res.Layout.Cell(r, c)))
	score := res.Score.At(r, c)
	cat := accessibility.Categorize(score)
	mix := res.LandUse.At(r, c)

	f.Properties["row"] = r
	f.Properties["col"] = c
	f.Properties["score"] = round(score, 2)
	f.Properties["category"] = string(cat)
	f.Properties["color"] = cat.Color()
	f.Properties["potential"] = round(res.Potential.At(r, c), 4)
	f.Properties["walkability"] = round(res.Walkability.At(r, c), 2)
	f.Properties["green"] = round(mix.Green, 4)
	f.Properties["residential"] = round(mix.Residential, 4)
	f.Properties["commercial"] = round(mix.Commercial, 4)
	f.Properties["dominant"] = string(res.LandUse.Dominant(r, c))
	if res.Distance != nil {
		if d := res.Distance.At(r, c); !math.IsInf(d, 0) {
			f.Properties["nearest_station_m"] = math.Round(d)
		}
	}
	return f
}

func cellPolygon(fp grid.Footprint) orb.Polygon {
	vs := fp.Ring().Vertices
	ring := make(orb.Ring, 0, len(vs)+1)
	for _, v := range vs {
		ring = append(ring, orb.Point{v.X, v.Y})
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}

// StationsGeoJSON returns one point feature per station.
func StationsGeoJSON(stations []transit.Station) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, s := range stations {
		f := geojson.NewFeature(orb.Point{s.Position.Lon, s.Position.Lat})
		info := s.Type.Info()
		f.Properties["name"] = s.Name
		f.Properties["type"] = s.Type.String()
		f.Properties["label"] = info.Label
		f.Properties["color"] = info.Color
		f.Properties["line"] = s.Line
		f.Properties["status"] = string(s.Status)
		f.Properties["frequency"] = s.EffectiveFrequency()
		fc.Append(f)
	}
	return fc
}

// BuffersGeoJSON returns the walking buffer around each station as a
// polygon feature.
func BuffersGeoJSON(stations []transit.Station, radius float64) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, buf := range coverage.Buffers(stations, radius) {
		f := geojson.NewFeature(fromGeom(buf))
		f.Properties["station"] = stations[i].Name
		f.Properties["radius_m"] = radius
		fc.Append(f)
	}
	return fc
}

func fromGeom(p *geom.Polygon) orb.Polygon {
	out := make(orb.Polygon, 0, p.NumLinearRings())
	for i := 0; i < p.NumLinearRings(); i++ {
		lr := p.LinearRing(i)
		ring := make(orb.Ring, 0, lr.NumCoords())
		for j := 0; j < lr.NumCoords(); j++ {
			c := lr.Coord(j)
			ring = append(ring, orb.Point{c.X(), c.Y()})
		}
		out = append(out, ring)
	}
	return out
}

// WriteGeoJSON encodes the cell collection to w.
func WriteGeoJSON(w io.Writer, res *analytics.Result) error {
	data, err := GeoJSON(res).MarshalJSON()
	if err != nil {
		return eris.Wrap(err, "encoding GeoJSON")
	}
	if _, err := w.Write(data); err != nil {
		return eris.Wrap(err, "writing GeoJSON")
	}
	return nil
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
