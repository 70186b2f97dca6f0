package impact

// Baseline factors for the sustainability estimates.
const (
	// Daily riders per operational station.
	RidersPerStation = 5000.0
	// Share of riders who would otherwise drive.
	CarTripShare    = 0.6
	CO2KgPerCarTrip = 2.5
	// Transit's own emissions as a share of the car CO2 it saves.
	TransitEmissionShare = 0.2
	DaysPerYear          = 365.0
	// Population reached at 100% coverage.
	ServedPopulationScale = 1_000_000.0
	// Air quality gain (%) at 100% coverage.
	AirQualityPerCoverage = 25.0

	BaselineCoverage     = 50.0
	GreenTargetPercent   = 20.0
	HighFrequencyMinutes = 10
)

// GreenSplit divides green area into parks, urban forest, green corridors
// and other green.
var GreenSplit = [4]float64{0.4, 0.3, 0.2, 0.1}

// AccessSplit divides served population into walk-time bands: under 5,
// 5-10, 10-15 and over 15 minutes.
var AccessSplit = [4]float64{0.4, 0.3, 0.2, 0.1}
