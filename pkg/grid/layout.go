package grid

import (
	"github.com/ChicagoDave/todplanner/pkg/geo"
)

// Footprint is the geographic extent of one grid cell: its four corners
// and its center.
type Footprint struct {
	SW     geo.LatLon `json:"sw"`
	NW     geo.LatLon `json:"nw"`
	NE     geo.LatLon `json:"ne"`
	SE     geo.LatLon `json:"se"`
	Center geo.LatLon `json:"center"`
}

// Samples returns the five points used for cell distance sampling,
// corners first and center last.
func (f Footprint) Samples() [5]geo.LatLon {
	return [5]geo.LatLon{f.SW, f.NW, f.NE, f.SE, f.Center}
}

// Bounds returns the footprint as a bounding box.
func (f Footprint) Bounds() geo.Bounds {
	return geo.Bounds{North: f.NE.Lat, South: f.SW.Lat, East: f.NE.Lon, West: f.SW.Lon}
}

// Ring returns the footprint as a closed polygon ring in degree space,
// counterclockwise from the south-west corner.
func (f Footprint) Ring() geo.Polygon {
	return geo.NewPolygon(f.SW.Planar(), f.SE.Planar(), f.NE.Planar(), f.NW.Planar())
}

// CellLayout places a rows x cols grid over a bounding box. Row 0 is the
// southernmost row and column 0 the westernmost column.
type CellLayout struct {
	Bounds geo.Bounds `json:"bounds"`
	Rows   int        `json:"rows"`
	Cols   int        `json:"cols"`
}

// LatStep returns the cell height in degrees.
func (l CellLayout) LatStep() float64 {
	return l.Bounds.LatSpan() / float64(l.Rows)
}

// LonStep returns the cell width in degrees.
func (l CellLayout) LonStep() float64 {
	return l.Bounds.LonSpan() / float64(l.Cols)
}

// Cell returns the footprint of cell (r, c).
func (l CellLayout) Cell(r, c int) Footprint {
	latStep, lonStep := l.LatStep(), l.LonStep()
	lat := l.Bounds.South + float64(r)*latStep
	lon := l.Bounds.West + float64(c)*lonStep
	return Footprint{
		SW:     geo.Ll(lat, lon),
		NW:     geo.Ll(lat+latStep, lon),
		NE:     geo.Ll(lat+latStep, lon+lonStep),
		SE:     geo.Ll(lat, lon+lonStep),
		Center: geo.Ll(lat+latStep/2, lon+lonStep/2),
	}
}

// NewGrid returns a zero grid with the layout's dimensions.
func (l CellLayout) NewGrid() *Grid {
	return New(l.Rows, l.Cols)
}
