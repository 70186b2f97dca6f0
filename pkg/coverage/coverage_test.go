package coverage

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChicagoDave/todplanner/pkg/geo"
	"github.com/ChicagoDave/todplanner/pkg/transit"
)

var box = geo.Bounds{North: 30.1, South: 30.0, East: 31.3, West: 31.2}

func station(lat, lon float64) transit.Station {
	return transit.NewStation(lat, lon, "s", transit.Metro, "")
}

// circlePercent is the share of box covered by one fully contained buffer.
func circlePercent(radius float64) float64 {
	r := radius / geo.MetersPerDegree
	return math.Pi * r * r / (box.LatSpan() * box.LonSpan()) * 100
}

func TestEstimateSingleContainedBuffer(t *testing.T) {
	got := Estimate([]transit.Station{station(30.05, 31.25)}, 400, box)
	want := circlePercent(400)
	assert.InEpsilon(t, want, got, 0.01)
}

func TestEstimateCoincidentStationsCountOnce(t *testing.T) {
	for _, radius := range []float64{400, 2000} {
		one := Estimate([]transit.Station{station(30.05, 31.25)}, radius, box)
		two := Estimate([]transit.Station{station(30.05, 31.25), station(30.05, 31.25)}, radius, box)
		assert.InDelta(t, one, two, 1e-9, "radius %v", radius)
	}
}

func TestEstimateMatchesBufferArea(t *testing.T) {
	bufs := Buffers([]transit.Station{station(30.05, 31.25)}, 400)
	require.Len(t, bufs, 1)
	want := bufs[0].Area() / (box.LatSpan() * box.LonSpan()) * 100

	got := Estimate([]transit.Station{station(30.05, 31.25)}, 400, box)
	assert.InDelta(t, want, got, 1e-9)
}

func TestEstimateDisjointStationsAdd(t *testing.T) {
	one := Estimate([]transit.Station{station(30.03, 31.23)}, 400, box)
	two := Estimate([]transit.Station{station(30.03, 31.23), station(30.07, 31.27)}, 400, box)
	assert.InDelta(t, 2*one, two, 1e-6)
}

func TestEstimateOverlapIsLessThanSum(t *testing.T) {
	one := Estimate([]transit.Station{station(30.05, 31.25)}, 400, box)
	// 0.004 degrees apart with a 0.0036 degree radius: the buffers overlap.
	two := Estimate([]transit.Station{station(30.05, 31.248), station(30.05, 31.252)}, 400, box)
	assert.Greater(t, two, one)
	assert.Less(t, two, 2*one)
}

func TestEstimateClipsToBox(t *testing.T) {
	// A station on the west edge keeps only its eastern half.
	got := Estimate([]transit.Station{station(30.05, 31.2)}, 400, box)
	assert.InEpsilon(t, circlePercent(400)/2, got, 0.01)
}

func TestEstimateFullCoverage(t *testing.T) {
	got := Estimate([]transit.Station{station(30.05, 31.25)}, 100000, box)
	assert.InDelta(t, 100, got, 1e-6)

	got = Estimate([]transit.Station{station(30.05, 31.25), station(30.06, 31.26)}, 100000, box)
	assert.InDelta(t, 100, got, 1e-6)
}

func TestEstimateOutsideBox(t *testing.T) {
	assert.Zero(t, Estimate([]transit.Station{station(40, 40)}, 400, box))
}

func TestEstimateDegenerateInputs(t *testing.T) {
	s := []transit.Station{station(30.05, 31.25)}
	assert.Zero(t, Estimate(nil, 400, box))
	assert.Zero(t, Estimate(s, 0, box))
	assert.Zero(t, Estimate(s, -10, box))
	assert.Zero(t, Estimate(s, math.NaN(), box))
	assert.Zero(t, Estimate(s, 400, geo.Bounds{North: 30, South: 30, East: 31.3, West: 31.2}))
}

func TestEstimateBounded(t *testing.T) {
	var many []transit.Station
	for i := 0; i < 10; i++ {
		for j := 0; j < 10; j++ {
			many = append(many, station(30.0+float64(i)*0.01, 31.2+float64(j)*0.01))
		}
	}
	got := Estimate(many, 800, box)
	assert.GreaterOrEqual(t, got, 0.0)
	assert.LessOrEqual(t, got, 100.0)
}

func TestBuffers(t *testing.T) {
	bufs := Buffers([]transit.Station{station(30.05, 31.25)}, 400)
	require.Len(t, bufs, 1)
	ring := bufs[0].LinearRing(0)
	assert.Equal(t, geo.CircleSegments+1, ring.NumCoords())

	r := 400 / geo.MetersPerDegree
	for j := 0; j < ring.NumCoords(); j++ {
		c := ring.Coord(j)
		assert.InDelta(t, r, math.Hypot(c.X()-31.25, c.Y()-30.05), 1e-12)
	}
	assert.Nil(t, Buffers([]transit.Station{station(30.05, 31.25)}, 0))
}

func TestToPolygonalDropsClosingVertex(t *testing.T) {
	bufs := Buffers([]transit.Station{station(30.05, 31.25)}, 400)
	p := toPolygonal(bufs[0])
	require.Len(t, p, 1)
	assert.Len(t, p[0], geo.CircleSegments)
	assert.InDelta(t, bufs[0].Area(), p.Area(), 1e-15)
}
