package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanarAxes(t *testing.T) {
	assert.Equal(t, Pt(31.2357, 30.0444), Ll(30.0444, 31.2357).Planar())
}

// --- Haversine tests ---

func TestHaversineZero(t *testing.T) {
	assert.InDelta(t, 0, Haversine(30.0, 31.0, 30.0, 31.0), 1e-9)
}

func TestHaversineOneDegreeLatitude(t *testing.T) {
	// One degree of latitude on a 6,371 km sphere is ~111.195 km.
	d := Haversine(30.0, 31.0, 31.0, 31.0)
	assert.InDelta(t, 111195, d, 10)
}

func TestHaversineKnownCities(t *testing.T) {
	// Cairo (Sadat) to Alexandria (Misr Station) is ~180 km.
	d := Ll(30.0444, 31.2357).DistanceTo(Ll(31.1990, 29.9055))
	assert.InDelta(t, 180000, d, 5000)
}

func TestOffsetDistance(t *testing.T) {
	origin := Ll(30.05, 31.24)
	for _, meters := range []float64{100, 400, 600, 1000} {
		north := origin.Offset(meters, 0)
		east := origin.Offset(0, meters)
		assert.InDelta(t, meters, origin.DistanceTo(north), 0.5, "north %v m", meters)
		assert.InDelta(t, meters, origin.DistanceTo(east), 0.5, "east %v m", meters)
	}
}

// --- Bounds tests ---

func TestBoundsValid(t *testing.T) {
	assert.True(t, Bounds{North: 31, South: 30, East: 32, West: 31}.Valid())
	assert.False(t, Bounds{North: 30, South: 30, East: 32, West: 31}.Valid())
	assert.False(t, Bounds{North: 31, South: 30, East: 31, West: 32}.Valid())
}

func TestBoundsPad(t *testing.T) {
	b := Bounds{North: 11, South: 10, East: 22, West: 20}
	p := b.Pad(0.2)
	assert.InDelta(t, 11.2, p.North, 1e-9)
	assert.InDelta(t, 9.8, p.South, 1e-9)
	assert.InDelta(t, 22.4, p.East, 1e-9)
	assert.InDelta(t, 19.6, p.West, 1e-9)
}

func TestBoundsContains(t *testing.T) {
	b := Bounds{North: 11, South: 10, East: 22, West: 20}
	assert.True(t, b.Contains(Ll(10.5, 21)))
	assert.True(t, b.Contains(Ll(10, 20)))
	assert.False(t, b.Contains(Ll(12, 21)))
}

// shoelace returns the signed area of a ring; positive is counterclockwise.
func shoelace(p Polygon) float64 {
	area := 0.0
	n := len(p.Vertices)
	for i := 0; i < n; i++ {
		a, b := p.Vertices[i], p.Vertices[(i+1)%n]
		area += a.X*b.Y - b.X*a.Y
	}
	return area / 2
}

func TestBoundsPolygonIsCCW(t *testing.T) {
	b := Bounds{North: 11, South: 10, East: 22, West: 20}
	poly := b.Polygon()
	assert.InDelta(t, 2.0, shoelace(poly), 1e-9)
}

func TestApproximateCircle(t *testing.T) {
	circle := ApproximateCircle(Pt(0, 0), 100, 128)
	require.Len(t, circle.Vertices, 128)
	expectedArea := math.Pi * 100 * 100
	assert.InDelta(t, expectedArea, shoelace(circle), expectedArea*0.001)
	for _, v := range circle.Vertices {
		assert.InDelta(t, 100, math.Hypot(v.X, v.Y), 1e-9)
	}

	assert.Len(t, ApproximateCircle(Pt(0, 0), 1, 1).Vertices, 3)
}
