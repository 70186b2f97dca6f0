package analytics

import (
	"time"

	"github.com/ChicagoDave/todplanner/pkg/accessibility"
	"github.com/ChicagoDave/todplanner/pkg/geo"
	"github.com/ChicagoDave/todplanner/pkg/grid"
	"github.com/ChicagoDave/todplanner/pkg/impact"
	"github.com/ChicagoDave/todplanner/pkg/landuse"
	"github.com/ChicagoDave/todplanner/pkg/transit"
	"github.com/ChicagoDave/todplanner/pkg/walkability"
)

// Result holds every grid and figure produced by one analysis run.
type Result struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	City        string    `json:"city"`

	// CityBounds is the study area; Layout covers it plus padding.
	CityBounds geo.Bounds      `json:"city_bounds"`
	Layout     grid.CellLayout `json:"layout"`

	Params        accessibility.Params `json:"params"`
	StationSource string               `json:"station_source"`
	Stations      []transit.Station    `json:"stations"`

	Score       *grid.Grid    `json:"score"`
	Walkability *grid.Grid    `json:"walkability"`
	Potential   *grid.Grid    `json:"potential"`
	LandUse     *landuse.Grid `json:"land_use"`
	// Distance is +Inf for every cell when there are no stations, which
	// JSON cannot carry.
	Distance *grid.Grid `json:"-"`

	CoveragePercent float64 `json:"coverage_percent"`

	Summary Summary        `json:"summary"`
	Impact  *impact.Report `json:"impact"`
}

// CategoryShares is the share (0-1) of cells in each TOD category.
type CategoryShares struct {
	High   float64 `json:"high"`
	Medium float64 `json:"medium"`
	Low    float64 `json:"low"`
}

// Summary condenses a Result into headline figures.
type Summary struct {
	Rows  int `json:"rows"`
	Cols  int `json:"cols"`
	Cells int `json:"cells"`

	Stations       int                  `json:"stations"`
	StationsByType map[transit.Type]int `json:"stations_by_type"`
	Operational    int                  `json:"operational"`
	HighFrequency  int                  `json:"high_frequency"`

	MeanScore  float64        `json:"mean_score"`
	MaxScore   float64        `json:"max_score"`
	Categories CategoryShares `json:"categories"`
	// CellsInRange counts cells with at least one station within the
	// consideration radius.
	CellsInRange  int     `json:"cells_in_range"`
	MeanPotential float64 `json:"mean_potential"`

	MeanWalkability   float64           `json:"mean_walkability"`
	WalkabilityRating string            `json:"walkability_rating"`
	WalkabilityBands  walkability.Bands `json:"walkability_bands"`

	LandUse     landuse.Fractions        `json:"land_use"`
	MinGreen    float64                  `json:"min_green_fraction"`
	GreenTarget float64                  `json:"green_target_fraction"`
	GreenMet    bool                     `json:"green_met"`
	DominantMix map[landuse.ZoneType]int `json:"dominant_mix"`

	CoveragePercent float64 `json:"coverage_percent"`
	CoverageRating  string  `json:"coverage_rating"`
}
