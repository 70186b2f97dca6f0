package main

import (
	"fmt"
	"io"
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ChicagoDave/todplanner/pkg/accessibility"
	"github.com/ChicagoDave/todplanner/pkg/analytics"
	"github.com/ChicagoDave/todplanner/pkg/geo"
	"github.com/ChicagoDave/todplanner/pkg/landuse"
	"github.com/ChicagoDave/todplanner/pkg/transit"
	"github.com/ChicagoDave/todplanner/pkg/validation"
)

var numbers = message.NewPrinter(language.English)

func printValidationReport(w io.Writer, r *validation.Report) {
	if len(r.Errors) > 0 {
		fmt.Fprintf(w, "ERRORS (%d):\n", len(r.Errors))
		for _, e := range r.Errors {
			printFinding(w, e)
			if e.ConflictWith != "" {
				fmt.Fprintf(w, "    conflicts with: %s\n", e.ConflictWith)
			}
		}
		fmt.Fprintln(w)
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintf(w, "WARNINGS (%d):\n", len(r.Warnings))
		for _, wr := range r.Warnings {
			printFinding(w, wr)
		}
		fmt.Fprintln(w)
	}

	if len(r.Info) > 0 {
		fmt.Fprintf(w, "INFO (%d):\n", len(r.Info))
		for _, i := range r.Info {
			fmt.Fprintf(w, "  [%s] %s\n", i.Level, i.Message)
		}
		fmt.Fprintln(w)
	}

	if r.Valid {
		fmt.Fprintf(w, "Result: VALID (%s)\n", r.Summary)
	} else {
		fmt.Fprintf(w, "Result: INVALID (%s)\n", r.Summary)
	}
}

func printFinding(w io.Writer, f validation.Result) {
	fmt.Fprintf(w, "  [%s] %s\n", f.Level, f.Message)
	if f.SpecPath != "" {
		fmt.Fprintf(w, "    -> %s = %v\n", f.SpecPath, f.ActualValue)
	}
	if f.Expected != "" {
		fmt.Fprintf(w, "    expected: %s\n", f.Expected)
	}
	for _, s := range f.Suggestions {
		fmt.Fprintf(w, "    * %s\n", s)
	}
}

func printAnalysis(w io.Writer, res *analytics.Result) {
	sum := res.Summary

	fmt.Fprintf(w, "TOD Analysis: %s\n", res.City)
	fmt.Fprintln(w, "==============================")
	fmt.Fprintf(w, "  Run:        %s (%s)\n", res.RunID, res.GeneratedAt.Format("2006-01-02 15:04:05Z"))
	fmt.Fprintf(w, "  Grid:       %d x %d (%d cells)\n", sum.Rows, sum.Cols, sum.Cells)
	fmt.Fprintf(w, "  Stations:   %d from %s (%d operational, %d high frequency)\n",
		sum.Stations, res.StationSource, sum.Operational, sum.HighFrequency)
	printStationTypes(w, sum.StationsByType)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Accessibility")
	fmt.Fprintln(w, "-------------")
	fmt.Fprintf(w, "  Mean score:       %6.1f\n", sum.MeanScore)
	fmt.Fprintf(w, "  Max score:        %6.1f\n", sum.MaxScore)
	fmt.Fprintf(w, "  High / Med / Low: %5.1f%% / %5.1f%% / %5.1f%%\n",
		sum.Categories.High*100, sum.Categories.Medium*100, sum.Categories.Low*100)
	fmt.Fprintf(w, "  Cells in range:   %d\n", sum.CellsInRange)
	fmt.Fprintf(w, "  Mean potential:   %6.3f\n", sum.MeanPotential)
	fmt.Fprintf(w, "  Walkability:      %6.1f (%s)\n", sum.MeanWalkability, sum.WalkabilityRating)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Land Use")
	fmt.Fprintln(w, "--------")
	printFractions(w, sum.LandUse)
	met := "met"
	if !sum.GreenMet {
		met = "NOT met"
	}
	fmt.Fprintf(w, "  Green floor:      %5.1f%% (%s)\n", sum.MinGreen*100, met)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Coverage")
	fmt.Fprintln(w, "--------")
	fmt.Fprintf(w, "  %.1f%% of the city inside a station buffer (%s)\n",
		sum.CoveragePercent, sum.CoverageRating)

	if imp := res.Impact; imp != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Impact")
		fmt.Fprintln(w, "------")
		fmt.Fprintf(w, "  Daily ridership:        %s\n", numbers.Sprintf("%.0f", imp.Environmental.DailyRidership))
		fmt.Fprintf(w, "  Car trips avoided/day:  %s\n", numbers.Sprintf("%.0f", imp.Environmental.DailyCarTripsAvoided))
		fmt.Fprintf(w, "  Net CO2 saved/year:     %s t\n", numbers.Sprintf("%.0f", imp.Environmental.AnnualNetCO2Tons))
		fmt.Fprintf(w, "  Population served:      %s\n", numbers.Sprintf("%.0f", imp.Social.PopulationServed))
		fmt.Fprintf(w, "  Average wait:           %.1f min\n", imp.Social.AverageWaitMinutes)
		fmt.Fprintf(w, "  Quality (freq/cov/acc/int): %.0f / %.0f / %.0f / %.0f\n",
			imp.Quality.Frequency, imp.Quality.Coverage, imp.Quality.Accessibility, imp.Quality.Integration)
	}
}

func printStationTypes(w io.Writer, byType map[transit.Type]int) {
	types := make([]transit.Type, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	for _, t := range types {
		fmt.Fprintf(w, "    %-16s %d\n", t.Info().Label, byType[t])
	}
}

func printFractions(w io.Writer, f landuse.Fractions) {
	fmt.Fprintf(w, "  Green:            %5.1f%%\n", f.Green*100)
	fmt.Fprintf(w, "  Residential:      %5.1f%%\n", f.Residential*100)
	fmt.Fprintf(w, "  Commercial:       %5.1f%%\n", f.Commercial*100)
}

func printBreakdown(w io.Writer, p geo.LatLon, b accessibility.Breakdown) {
	fmt.Fprintf(w, "Score at %s: %.1f (%s)\n", p, b.Score, b.Category)
	if b.InRange == 0 {
		fmt.Fprintln(w, "  No station within range.")
		return
	}
	fmt.Fprintf(w, "  Stations in range: %d\n", b.InRange)
	if n := b.Nearest; n != nil {
		fmt.Fprintf(w, "  Nearest:           %s (%s %s) at %.0f m\n", n.Name, n.Type, n.Line, n.Distance)
	}

	types := make([]transit.Type, 0, len(b.TypeScores))
	for t := range b.TypeScores {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	for _, t := range types {
		fmt.Fprintf(w, "    %-16s %6.1f\n", t.Info().Label, b.TypeScores[t])
	}
	fmt.Fprintf(w, "  Base:              %.1f\n", b.BaseScore)
	fmt.Fprintf(w, "  Multi-type bonus:  x%.2f\n", b.MultiTypeBonus)
	fmt.Fprintf(w, "  Rapid+local bonus: x%.2f\n", b.MixBonus)
}

func printAllocation(w io.Writer, lu *landuse.Grid, minGreen float64) {
	fmt.Fprintf(w, "Land Use Allocation (%d x %d)\n", lu.Rows(), lu.Cols())
	fmt.Fprintln(w, "==============================")
	printFractions(w, lu.MeanFractions())
	fmt.Fprintf(w, "  Green floor:      %5.1f%%\n", minGreen*100)

	counts := map[landuse.ZoneType]int{}
	for r := 0; r < lu.Rows(); r++ {
		for c := 0; c < lu.Cols(); c++ {
			counts[lu.Dominant(r, c)]++
		}
	}
	fmt.Fprintln(w, "  Dominant class per cell:")
	for _, z := range []landuse.ZoneType{landuse.ZoneGreen, landuse.ZoneResidential, landuse.ZoneCommercial} {
		fmt.Fprintf(w, "    %-12s %d\n", z, counts[z])
	}
	if err := lu.Check(0); err != nil {
		fmt.Fprintf(w, "  Check: FAILED (%v)\n", err)
		return
	}
	fmt.Fprintln(w, "  Check: OK")
}
