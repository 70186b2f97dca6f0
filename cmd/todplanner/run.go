package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ChicagoDave/todplanner/pkg/accessibility"
	"github.com/ChicagoDave/todplanner/pkg/analytics"
	"github.com/ChicagoDave/todplanner/pkg/coverage"
	"github.com/ChicagoDave/todplanner/pkg/export"
	"github.com/ChicagoDave/todplanner/pkg/geo"
	"github.com/ChicagoDave/todplanner/pkg/landuse"
	"github.com/ChicagoDave/todplanner/pkg/spec"
	"github.com/ChicagoDave/todplanner/pkg/transit"
	"github.com/ChicagoDave/todplanner/pkg/validation"
	"github.com/ChicagoDave/todplanner/pkg/walkability"
)

var errInvalidSpec = eris.New("spec has validation errors")

// loadSpec loads the project's analysis.yaml, or the --city preset when set.
func loadSpec(projectPath string) (*spec.AnalysisSpec, error) {
	if cityPreset != "" {
		return spec.ForPreset(cityPreset)
	}
	s, err := spec.LoadProject(projectPath)
	if err != nil {
		return nil, eris.Wrapf(err, "loading project %s", projectPath)
	}
	return s, nil
}

// analyze loads the spec and runs a full analysis. An invalid spec prints
// its report and returns errInvalidSpec.
func analyze(cmd *cobra.Command, projectPath string) (*analytics.Result, *validation.Report, error) {
	s, err := loadSpec(projectPath)
	if err != nil {
		return nil, nil, err
	}
	res, report, err := analytics.Analyze(cmd.Context(), s, analytics.WithWorkers(workers()))
	if err != nil {
		return nil, report, err
	}
	if res == nil {
		printValidationReport(cmd.OutOrStdout(), report)
		return nil, report, errInvalidSpec
	}
	return res, report, nil
}

func runAnalyze(cmd *cobra.Command, projectPath, format string) error {
	if format != "json" && format != "text" {
		return eris.Errorf("unknown format %q (want json or text)", format)
	}
	res, report, err := analyze(cmd, projectPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == "text" {
		printAnalysis(out, res)
		fmt.Fprintln(out)
		printValidationReport(out, report)
		return nil
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"result":     res,
		"validation": report,
	})
}

func runValidate(cmd *cobra.Command, projectPath string) error {
	_, report, err := analyze(cmd, projectPath)
	if err != nil {
		return err
	}
	printValidationReport(cmd.OutOrStdout(), report)
	if !report.Valid {
		return errInvalidSpec
	}
	return nil
}

func runScore(cmd *cobra.Command, projectPath string, lat, lon float64) error {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return eris.Errorf("coordinates out of range: %g, %g", lat, lon)
	}
	s, err := loadSpec(projectPath)
	if err != nil {
		return err
	}
	stations, err := loadStations(cmd.Context(), s)
	if err != nil {
		return err
	}
	params := accessibility.Params{
		PrimaryRadius:       s.Scoring.PrimaryRadius,
		SecondaryRadius:     s.Scoring.SecondaryRadius,
		ConsiderationRadius: s.Scoring.ConsiderationRadius,
	}
	p := geo.Ll(lat, lon)
	printBreakdown(cmd.OutOrStdout(), p, accessibility.ExplainPoint(p, stations, params))
	return nil
}

func runCoverage(cmd *cobra.Command, projectPath string, radius float64) error {
	s, err := loadSpec(projectPath)
	if err != nil {
		return err
	}
	if radius == 0 {
		radius = s.Coverage.BufferRadius
	}
	if radius < 0 {
		return eris.Errorf("radius must be positive, got %g", radius)
	}
	bounds, err := s.CityBounds()
	if err != nil {
		return err
	}
	stations, err := loadStations(cmd.Context(), s)
	if err != nil {
		return err
	}

	pct := coverage.Estimate(stations, radius, bounds)
	fmt.Fprintf(cmd.OutOrStdout(), "Coverage: %.1f%% of %s within %.0f m of %d stations (%s)\n",
		pct, s.City.Name, radius, len(stations), analytics.CoverageRating(pct))
	return nil
}

func runAllocate(cmd *cobra.Command, projectPath string) error {
	s, err := loadSpec(projectPath)
	if err != nil {
		return err
	}
	if report := validation.ValidateSchema(s); !report.Valid {
		printValidationReport(cmd.OutOrStdout(), report)
		return errInvalidSpec
	}

	walk, err := walkability.FromSpec(s)
	if err != nil {
		return err
	}
	var opts []landuse.Option
	if s.LandUse.Jitter > 0 {
		opts = append(opts, landuse.WithJitter(s.LandUse.Jitter, s.LandUse.Seed))
	}
	lu, err := landuse.Allocate(walk, s.MinGreen(), s.LandUse.MaxTransitDistance, opts...)
	if err != nil {
		return err
	}
	printAllocation(cmd.OutOrStdout(), lu, s.MinGreen())
	return nil
}

func runExport(cmd *cobra.Command, projectPath, geojsonPath, xlsxPath string) error {
	if geojsonPath == "" && xlsxPath == "" {
		return eris.New("nothing to export: pass --geojson and/or --xlsx")
	}
	res, _, err := analyze(cmd, projectPath)
	if err != nil {
		return err
	}
	log := zap.L().With(zap.String("component", "export"), zap.String("run_id", res.RunID))

	if geojsonPath != "" {
		f, err := os.Create(geojsonPath)
		if err != nil {
			return eris.Wrap(err, "creating GeoJSON file")
		}
		if err := export.WriteGeoJSON(f, res); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return eris.Wrap(err, "closing GeoJSON file")
		}
		log.Info("wrote geojson", zap.String("path", geojsonPath))
	}
	if xlsxPath != "" {
		if err := export.WriteXLSX(res, xlsxPath); err != nil {
			return err
		}
		log.Info("wrote workbook", zap.String("path", xlsxPath))
	}
	return nil
}

// loadStations reads the spec's station chain and applies its filter.
func loadStations(ctx context.Context, s *spec.AnalysisSpec) ([]transit.Station, error) {
	src, err := s.StationSource()
	if err != nil {
		return nil, err
	}
	list, err := src.Stations(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "loading stations")
	}
	return s.Stations.Filter.Apply(list), nil
}

func workers() int {
	if cfg == nil {
		return 0
	}
	return cfg.Analysis.Workers
}
