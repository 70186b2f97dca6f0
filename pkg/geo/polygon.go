package geo

import "math"

// CircleSegments is the vertex count of a station buffer.
const CircleSegments = 64

// Polygon is an open ring of vertices in degree space. The closing edge
// from the last vertex back to the first is implied.
type Polygon struct {
	Vertices []Point2D
}

// NewPolygon creates a polygon from a list of vertices.
func NewPolygon(pts ...Point2D) Polygon {
	return Polygon{Vertices: pts}
}

// ApproximateCircle returns a counterclockwise regular polygon inscribed in
// the circle of the given center and radius. segments below 3 are raised
// to 3.
func ApproximateCircle(center Point2D, radius float64, segments int) Polygon {
	if segments < 3 {
		segments = 3
	}
	pts := make([]Point2D, segments)
	for i := 0; i < segments; i++ {
		angle := 2 * math.Pi * float64(i) / float64(segments)
		pts[i] = Point2D{
			X: center.X + radius*math.Cos(angle),
			Y: center.Y + radius*math.Sin(angle),
		}
	}
	return Polygon{Vertices: pts}
}
