package geo

// Point2D is a point in planar degree space: X is longitude, Y is latitude.
// Used for buffer and bounding-box geometry, where distances are in degrees
// rather than meters.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is a shorthand constructor for Point2D.
func Pt(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}
