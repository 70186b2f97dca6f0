// Package impact derives ridership, emissions and service quality estimates
// from the outcome of an analysis run.
package impact

import (
	"math"

	"github.com/ChicagoDave/todplanner/pkg/transit"
)

// Inputs are the run outputs the estimates are computed from.
type Inputs struct {
	Stations        []transit.Station
	CoveragePercent float64
	// GreenFraction is the mean green share of the land use grid (0-1).
	GreenFraction   float64
	MeanWalkability float64
}

// Environmental holds emission and green space estimates.
type Environmental struct {
	DailyRidership        float64 `json:"daily_ridership"`
	DailyCarTripsAvoided  float64 `json:"daily_car_trips_avoided"`
	DailyCO2SavedTons     float64 `json:"daily_co2_saved_tons"`
	AnnualCarTripsAvoided float64 `json:"annual_car_trips_avoided"`
	AnnualCO2SavedTons    float64 `json:"annual_co2_saved_tons"`
	AnnualTransitCO2Tons  float64 `json:"annual_transit_co2_tons"`
	AnnualNetCO2Tons      float64 `json:"annual_net_co2_tons"`
	AirQualityPercent     float64 `json:"air_quality_percent"`

	GreenPercent   float64 `json:"green_percent"`
	Parks          float64 `json:"parks_percent"`
	UrbanForest    float64 `json:"urban_forest_percent"`
	GreenCorridors float64 `json:"green_corridors_percent"`
	OtherGreen     float64 `json:"other_green_percent"`
}

// Social holds population reach and wait time estimates.
type Social struct {
	PopulationServed float64    `json:"population_served"`
	AccessBands      [4]float64 `json:"access_bands"`
	// AverageWaitMinutes is 0 when no station has a known frequency.
	AverageWaitMinutes float64 `json:"average_wait_minutes"`
	BestWaitMinutes    int     `json:"best_wait_minutes"`
}

// Quality scores the network on a 0-100 scale.
type Quality struct {
	Frequency     float64 `json:"frequency"`
	Coverage      float64 `json:"coverage"`
	Accessibility float64 `json:"accessibility"`
	Integration   float64 `json:"integration"`
}

// Report is the complete impact output.
type Report struct {
	Environmental Environmental `json:"environmental"`
	Social        Social        `json:"social"`
	Quality       Quality       `json:"quality"`

	Summary struct {
		Stations              int     `json:"stations"`
		Operational           int     `json:"operational"`
		HighFrequency         int     `json:"high_frequency"`
		OperationalEfficiency float64 `json:"operational_efficiency_percent"`
		CoverageVsBaseline    float64 `json:"coverage_vs_baseline"`
		GreenVsTarget         float64 `json:"green_vs_target"`
	} `json:"summary"`
}

// Estimate computes the impact report for one run.
func Estimate(in Inputs) *Report {
	report := &Report{}

	operational := 0
	highFreq := 0
	for _, s := range in.Stations {
		if s.IsOperational() {
			operational++
		}
		if f := s.EffectiveFrequency(); f > 0 && f <= HighFrequencyMinutes {
			highFreq++
		}
	}
	coverage := clamp(in.CoveragePercent, 0, 100)
	coverageRatio := coverage / 100
	greenPct := clamp(in.GreenFraction, 0, 1) * 100

	// Environmental
	riders := float64(operational) * RidersPerStation
	carTrips := riders * CarTripShare
	co2 := carTrips * CO2KgPerCarTrip / 1000
	env := &report.Environmental
	env.DailyRidership = riders
	env.DailyCarTripsAvoided = carTrips
	env.DailyCO2SavedTons = co2
	env.AnnualCarTripsAvoided = carTrips * DaysPerYear
	env.AnnualCO2SavedTons = co2 * DaysPerYear
	env.AnnualTransitCO2Tons = co2 * TransitEmissionShare * DaysPerYear
	env.AnnualNetCO2Tons = co2 * (1 - TransitEmissionShare) * DaysPerYear
	env.AirQualityPercent = coverageRatio * AirQualityPerCoverage
	env.GreenPercent = greenPct
	env.Parks = greenPct * GreenSplit[0]
	env.UrbanForest = greenPct * GreenSplit[1]
	env.GreenCorridors = greenPct * GreenSplit[2]
	env.OtherGreen = greenPct * GreenSplit[3]

	// Social
	soc := &report.Social
	soc.PopulationServed = coverageRatio * ServedPopulationScale
	for i, share := range AccessSplit {
		soc.AccessBands[i] = soc.PopulationServed * share
	}
	soc.AverageWaitMinutes, soc.BestWaitMinutes = waitTimes(in.Stations)

	// Quality
	walk := clamp(in.MeanWalkability, 0, 100)
	q := &report.Quality
	if soc.AverageWaitMinutes > 0 {
		q.Frequency = clamp(100-soc.AverageWaitMinutes, 0, 100)
	}
	q.Coverage = coverage
	q.Accessibility = walk
	q.Integration = (coverage + walk) / 2

	report.Summary.Stations = len(in.Stations)
	report.Summary.Operational = operational
	report.Summary.HighFrequency = highFreq
	if len(in.Stations) > 0 {
		report.Summary.OperationalEfficiency = float64(operational) / float64(len(in.Stations)) * 100
	}
	report.Summary.CoverageVsBaseline = coverage - BaselineCoverage
	report.Summary.GreenVsTarget = greenPct - GreenTargetPercent

	return report
}

// waitTimes returns the mean and best headway over stations with a known
// frequency.
func waitTimes(stations []transit.Station) (float64, int) {
	sum, n, best := 0, 0, 0
	for _, s := range stations {
		f := s.FrequencyMinutes
		if f <= 0 {
			continue
		}
		sum += f
		n++
		if best == 0 || f < best {
			best = f
		}
	}
	if n == 0 {
		return 0, 0
	}
	return float64(sum) / float64(n), best
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
