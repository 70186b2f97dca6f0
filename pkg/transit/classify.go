package transit

import (
	"strings"

	"golang.org/x/text/cases"
)

// ClassifyFClass maps an OSM feature class (e.g. "bus_stop",
// "railway_station", "ferry_terminal") to a transit type. ok is false for
// classes that are not transit stops.
//
// Minibus is checked before bus since "minibus" contains "bus".
func ClassifyFClass(fclass string) (Type, bool) {
	fc := cases.Fold().String(strings.TrimSpace(fclass))
	switch {
	case fc == "":
		return 0, false
	case strings.Contains(fc, "subway"), strings.Contains(fc, "metro"):
		return Metro, true
	case strings.Contains(fc, "minibus"):
		return Minibus, true
	case strings.Contains(fc, "bus"):
		return Bus, true
	case strings.Contains(fc, "tram"):
		return Tram, true
	case strings.Contains(fc, "train"), strings.Contains(fc, "railway"):
		return Train, true
	case strings.Contains(fc, "ferry"):
		return Ferry, true
	}
	return 0, false
}
