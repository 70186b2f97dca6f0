package geo

import (
	"fmt"
	"math"
)

// EarthRadiusMeters is the mean Earth radius used for great-circle distances.
const EarthRadiusMeters = 6371000.0

// MetersPerDegree approximates the length of one degree of latitude.
// Buffers built in degree space divide by this constant.
const MetersPerDegree = 111000.0

// LatLon is a geographic coordinate in decimal degrees.
type LatLon struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Ll is a shorthand constructor for LatLon.
func Ll(lat, lon float64) LatLon {
	return LatLon{Lat: lat, Lon: lon}
}

// Planar returns the point in degree space (X = lon, Y = lat).
func (l LatLon) Planar() Point2D {
	return Point2D{X: l.Lon, Y: l.Lat}
}

// DistanceTo returns the haversine distance to other in meters.
func (l LatLon) DistanceTo(other LatLon) float64 {
	return Haversine(l.Lat, l.Lon, other.Lat, other.Lon)
}

func (l LatLon) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", l.Lat, l.Lon)
}

// Haversine returns the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// Offset returns the point reached by moving north and east by the given
// distances in meters. Uses a local equirectangular approximation, which is
// accurate to well under a meter at city scale.
func (l LatLon) Offset(northM, eastM float64) LatLon {
	dLat := northM / EarthRadiusMeters * 180 / math.Pi
	dLon := eastM / (EarthRadiusMeters * math.Cos(l.Lat*math.Pi/180)) * 180 / math.Pi
	return LatLon{Lat: l.Lat + dLat, Lon: l.Lon + dLon}
}

// Bounds is a geographic bounding box in decimal degrees.
type Bounds struct {
	North float64 `json:"north" yaml:"north"`
	South float64 `json:"south" yaml:"south"`
	East  float64 `json:"east" yaml:"east"`
	West  float64 `json:"west" yaml:"west"`
}

// Valid reports whether north > south and east > west.
func (b Bounds) Valid() bool {
	return b.North > b.South && b.East > b.West
}

// LatSpan returns north - south in degrees.
func (b Bounds) LatSpan() float64 {
	return b.North - b.South
}

// LonSpan returns east - west in degrees.
func (b Bounds) LonSpan() float64 {
	return b.East - b.West
}

// Center returns the midpoint of the box.
func (b Bounds) Center() LatLon {
	return LatLon{Lat: (b.North + b.South) / 2, Lon: (b.East + b.West) / 2}
}

// Contains reports whether p lies inside the box (edges inclusive).
func (b Bounds) Contains(p LatLon) bool {
	return p.Lat >= b.South && p.Lat <= b.North && p.Lon >= b.West && p.Lon <= b.East
}

// Pad expands every side by fraction of the corresponding span.
func (b Bounds) Pad(fraction float64) Bounds {
	latPad := b.LatSpan() * fraction
	lonPad := b.LonSpan() * fraction
	return Bounds{
		North: b.North + latPad,
		South: b.South - latPad,
		East:  b.East + lonPad,
		West:  b.West - lonPad,
	}
}

// Polygon returns the box as a counterclockwise polygon in degree space.
func (b Bounds) Polygon() Polygon {
	return NewPolygon(
		Pt(b.West, b.South),
		Pt(b.East, b.South),
		Pt(b.East, b.North),
		Pt(b.West, b.North),
	)
}
