package transit

import (
	"context"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ChicagoDave/todplanner/pkg/geo"
)

// ShapefileSource reads stations from OSM-style transport shapefiles
// (e.g. gis_osm_transport_free_1.shp). Point features are used directly;
// area features contribute the center of their bounding box.
type ShapefileSource struct {
	Paths []string
	// Bounds, when set, drops features outside the box.
	Bounds *geo.Bounds
}

// Name implements Source.
func (s ShapefileSource) Name() string {
	return "shapefile"
}

// Stations implements Source.
func (s ShapefileSource) Stations(ctx context.Context) ([]Station, error) {
	if len(s.Paths) == 0 {
		return nil, eris.New("transit: shapefile source has no paths")
	}
	var out []Station
	for _, path := range s.Paths {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "transit: shapefile read cancelled")
		}
		stations, err := readShapefile(path, s.Bounds)
		if err != nil {
			return nil, err
		}
		out = append(out, stations...)
	}
	if len(out) == 0 {
		return nil, ErrNoStations
	}
	return out, nil
}

func readShapefile(path string, bounds *geo.Bounds) ([]Station, error) {
	log := zap.L().With(zap.String("component", "transit.shapefile"), zap.String("path", path))

	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "transit: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fclassIdx := fieldIndex(reader, "fclass")
	if fclassIdx < 0 {
		return nil, eris.Errorf("transit: shapefile %s has no fclass field", path)
	}
	nameIdx := fieldIndex(reader, "name")

	var stations []Station
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()
		if shape == nil {
			skipped++
			continue
		}

		fclass := strings.TrimSpace(reader.Attribute(fclassIdx))
		t, ok := ClassifyFClass(fclass)
		if !ok {
			continue
		}

		pos, ok := shapePosition(shape)
		if !ok {
			skipped++
			continue
		}
		if bounds != nil && !bounds.Contains(pos) {
			continue
		}

		name := "Unknown Station"
		if nameIdx >= 0 {
			if n := strings.TrimSpace(reader.Attribute(nameIdx)); n != "" {
				name = n
			}
		}

		stations = append(stations, NewStation(pos.Lat, pos.Lon, name, t, fclass,
			WithFrequency(t.Info().DefaultFrequency)))
	}

	if err := reader.Err(); err != nil {
		return nil, eris.Wrapf(err, "transit: read shapefile %s", path)
	}

	log.Debug("read shapefile", zap.Int("stations", len(stations)), zap.Int("skipped", skipped))
	return stations, nil
}

// shapePosition returns a representative coordinate for a shape.
func shapePosition(s shp.Shape) (geo.LatLon, bool) {
	switch shape := s.(type) {
	case *shp.Point:
		return geo.Ll(shape.Y, shape.X), true
	case *shp.Polygon, *shp.MultiPoint, *shp.PolyLine:
		box := s.BBox()
		return geo.Ll((box.MinY+box.MaxY)/2, (box.MinX+box.MaxX)/2), true
	default:
		return geo.LatLon{}, false
	}
}

// fieldIndex returns the index of a named field in the shapefile, or -1 if not found.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}
