package transit

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ChicagoDave/todplanner/pkg/geo"
)

// gtfsStop mirrors the stops.txt columns we read. Coordinates are kept as
// strings so one malformed row does not fail the whole feed.
type gtfsStop struct {
	ID           string `csv:"stop_id"`
	Name         string `csv:"stop_name"`
	Lat          string `csv:"stop_lat"`
	Lon          string `csv:"stop_lon"`
	LocationType string `csv:"location_type,omitempty"`
	Parent       string `csv:"parent_station,omitempty"`
}

// GTFSSource reads stations from a GTFS stops.txt file. stops.txt carries
// no mode, so every stop gets the configured Type.
type GTFSSource struct {
	Path   string
	Type   Type
	Line   string
	Bounds *geo.Bounds
}

// Name implements Source.
func (s GTFSSource) Name() string {
	return "gtfs"
}

// Stations implements Source. Only stops (location_type 0 or empty) and
// stations (1) are kept; entrances, nodes and boarding areas are skipped,
// as are child stops whose parent station is also present.
func (s GTFSSource) Stations(_ context.Context) ([]Station, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, eris.Wrapf(err, "transit: read gtfs stops %s", s.Path)
	}
	stations, err := parseGTFSStops(data, s.Type, s.Line, s.Bounds)
	if err != nil {
		return nil, err
	}
	if len(stations) == 0 {
		return nil, ErrNoStations
	}
	return stations, nil
}

func parseGTFSStops(data []byte, t Type, line string, bounds *geo.Bounds) ([]Station, error) {
	var rows []gtfsStop
	if err := csvutil.Unmarshal(data, &rows); err != nil {
		return nil, eris.Wrap(err, "transit: parse gtfs stops")
	}

	parents := make(map[string]bool)
	for _, r := range rows {
		if strings.TrimSpace(r.LocationType) == "1" {
			parents[r.ID] = true
		}
	}

	var out []Station
	var malformed int
	for _, r := range rows {
		switch strings.TrimSpace(r.LocationType) {
		case "", "0":
			if r.Parent != "" && parents[r.Parent] {
				continue
			}
		case "1":
		default:
			continue
		}

		lat, errLat := strconv.ParseFloat(strings.TrimSpace(r.Lat), 64)
		lon, errLon := strconv.ParseFloat(strings.TrimSpace(r.Lon), 64)
		if errLat != nil || errLon != nil {
			malformed++
			continue
		}
		pos := geo.Ll(lat, lon)
		if bounds != nil && !bounds.Contains(pos) {
			continue
		}

		name := strings.TrimSpace(r.Name)
		if name == "" {
			name = r.ID
		}
		out = append(out, NewStation(lat, lon, name, t, line))
	}

	if malformed > 0 {
		zap.L().Debug("skipped malformed gtfs stops",
			zap.String("component", "transit.gtfs"),
			zap.Int("count", malformed),
		)
	}
	return out, nil
}
