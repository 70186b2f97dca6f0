package analytics

import (
	"fmt"

	"github.com/ChicagoDave/todplanner/pkg/spec"
	"github.com/ChicagoDave/todplanner/pkg/validation"
)

// Thresholds for analytical findings.
const (
	lowCategoryWarnShare = 0.8
	lowWalkInfoShare     = 0.5
	checkTolerance       = 1e-6
)

// validateAnalytical checks the outputs of a run.
func validateAnalytical(s *spec.AnalysisSpec, res *Result, report *validation.Report) {
	validateLandUseInvariant(res, report)
	validateGreenFloor(res, report)
	validateReach(s, res, report)
	validateCoverage(s, res, report)
	validateWalkability(res, report)
}

func validateLandUseInvariant(res *Result, report *validation.Report) {
	if err := res.LandUse.Check(checkTolerance); err != nil {
		report.AddError(validation.Result{
			Level:   validation.LevelAnalytical,
			Message: fmt.Sprintf("land use grid breaks the per-cell sum: %v", err),
		})
	}
}

func validateGreenFloor(res *Result, report *validation.Report) {
	sum := res.Summary
	if !sum.GreenMet {
		report.AddError(validation.Result{
			Level:       validation.LevelAnalytical,
			Message:     fmt.Sprintf("mean green share %.3f is below the floor %.3f", sum.LandUse.Green, sum.MinGreen),
			SpecPath:    "land_use.min_green_fraction",
			ActualValue: sum.LandUse.Green,
			Expected:    fmt.Sprintf(">= %.3f", sum.MinGreen),
		})
	}
	if sum.LandUse.Green < sum.GreenTarget {
		report.AddInfo(validation.Result{
			Level:       validation.LevelAnalytical,
			Message:     fmt.Sprintf("green space %.1f%% is below the %.0f%% target", sum.LandUse.Green*100, sum.GreenTarget*100),
			SpecPath:    "land_use.min_green_fraction",
			ActualValue: sum.LandUse.Green,
			Suggestions: []string{
				fmt.Sprintf("Raise min_green_fraction to %.2f", sum.GreenTarget),
			},
		})
	}
}

func validateReach(s *spec.AnalysisSpec, res *Result, report *validation.Report) {
	sum := res.Summary
	if sum.Stations > 0 && sum.CellsInRange == 0 {
		report.AddWarning(validation.Result{
			Level:        validation.LevelSpatial,
			Message:      fmt.Sprintf("no grid cell lies within %.0f m of a station", s.Scoring.ConsiderationRadius),
			SpecPath:     "scoring.consideration_radius",
			ActualValue:  s.Scoring.ConsiderationRadius,
			ConflictWith: "stations",
			Suggestions: []string{
				"Check that stations lie inside the city bounds",
				"Increase consideration_radius",
			},
		})
		return
	}
	if sum.Categories.Low > lowCategoryWarnShare {
		report.AddWarning(validation.Result{
			Level:       validation.LevelAnalytical,
			Message:     fmt.Sprintf("%.0f%% of cells have low TOD potential", sum.Categories.Low*100),
			ActualValue: sum.Categories.Low,
			Suggestions: []string{
				"Add transit stations in low-coverage areas",
				"Relax the station filter",
			},
		})
	}
}

func validateCoverage(s *spec.AnalysisSpec, res *Result, report *validation.Report) {
	if res.CoveragePercent >= ModerateCoverage {
		return
	}
	report.AddInfo(validation.Result{
		Level:       validation.LevelAnalytical,
		Message:     fmt.Sprintf("transit coverage %.1f%% is low", res.CoveragePercent),
		SpecPath:    "coverage.buffer_radius",
		ActualValue: s.Coverage.BufferRadius,
		Expected:    fmt.Sprintf(">= %.0f%% coverage", ModerateCoverage),
		Suggestions: []string{"Expand coverage to underserved areas"},
	})
}

func validateWalkability(res *Result, report *validation.Report) {
	bands := res.Summary.WalkabilityBands
	if bands.Low <= lowWalkInfoShare {
		return
	}
	report.AddInfo(validation.Result{
		Level:       validation.LevelAnalytical,
		Message:     fmt.Sprintf("%.0f%% of cells have walkability at or below 40", bands.Low*100),
		SpecPath:    "walkability",
		ActualValue: bands.Low,
		Suggestions: []string{
			"Improve pedestrian infrastructure",
			"Add local amenities near stations",
		},
	})
}
