package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ChicagoDave/todplanner/pkg/accessibility"
	"github.com/ChicagoDave/todplanner/pkg/coverage"
	"github.com/ChicagoDave/todplanner/pkg/grid"
	"github.com/ChicagoDave/todplanner/pkg/impact"
	"github.com/ChicagoDave/todplanner/pkg/landuse"
	"github.com/ChicagoDave/todplanner/pkg/spec"
	"github.com/ChicagoDave/todplanner/pkg/transit"
	"github.com/ChicagoDave/todplanner/pkg/validation"
	"github.com/ChicagoDave/todplanner/pkg/walkability"
)

type config struct {
	workers  int
	provided bool
	stations []transit.Station
	source   transit.Source
	now      func() time.Time
}

// Option configures Analyze.
type Option func(*config)

// WithWorkers caps the goroutines used for grid scoring.
func WithWorkers(n int) Option {
	return func(c *config) { c.workers = n }
}

// WithStations skips the spec's station sources and uses list instead. The
// spec's filter still applies.
func WithStations(list []transit.Station) Option {
	return func(c *config) {
		c.provided = true
		c.stations = append([]transit.Station(nil), list...)
		c.source = nil
	}
}

// WithSource replaces the spec's station sources.
func WithSource(src transit.Source) Option {
	return func(c *config) {
		c.source = src
		c.provided = false
		c.stations = nil
	}
}

// Analyze runs one full analysis: it loads and filters stations, scores
// every cell, blends the scores with walkability, allocates land use and
// estimates coverage and impact.
//
// The report carries validation findings. A report with errors returns a
// nil Result and a nil error; the error return is kept for I/O failures and
// cancellation.
func Analyze(ctx context.Context, s *spec.AnalysisSpec, opts ...Option) (*Result, *validation.Report, error) {
	cfg := config{now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}

	report := validation.ValidateSchema(s)
	if !report.Valid {
		return nil, report, nil
	}

	runID := uuid.NewString()
	log := zap.L().With(zap.String("component", "analytics"), zap.String("run_id", runID))

	cityBounds, err := s.CityBounds()
	if err != nil {
		return nil, report, err
	}
	layout, err := s.CellLayout()
	if err != nil {
		return nil, report, err
	}

	// 1. Stations
	stations, sourceName, err := loadStations(ctx, s, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return nil, report, eris.Wrap(ctx.Err(), "loading stations")
		}
		report.AddWarning(validation.Result{
			Level:       validation.LevelSpatial,
			Message:     fmt.Sprintf("no station source produced stations: %v", err),
			SpecPath:    "stations.sources",
			Suggestions: []string{"Check source paths, or add static stations or a city preset"},
		})
		log.Warn("station sources failed, scoring without stations", zap.Error(err))
	}
	loaded := len(stations)
	stations = s.Stations.Filter.Apply(stations)
	report.Merge(validation.ValidateStations(stations, cityBounds))
	log.Info("stations loaded",
		zap.String("source", sourceName),
		zap.Int("loaded", loaded),
		zap.Int("after_filter", len(stations)))

	// 2. Accessibility
	params := accessibility.Params{
		PrimaryRadius:       s.Scoring.PrimaryRadius,
		SecondaryRadius:     s.Scoring.SecondaryRadius,
		ConsiderationRadius: s.Scoring.ConsiderationRadius,
	}
	scorer := accessibility.NewScorer(stations, params, accessibility.WithWorkers(cfg.workers))
	score, err := scorer.ScoreGrid(ctx, layout)
	if err != nil {
		return nil, report, err
	}
	dist, err := scorer.DistanceGrid(ctx, layout)
	if err != nil {
		return nil, report, err
	}

	// 3. Walkability and TOD potential
	walk, err := walkability.FromSpec(s)
	if err != nil {
		return nil, report, err
	}
	potential := grid.New(layout.Rows, layout.Cols)
	for i := range potential.Values {
		potential.Values[i] = accessibility.BlendWalkability(dist.Values[i], walk.Values[i])
	}

	// 4. Land use
	var luOpts []landuse.Option
	if s.LandUse.Jitter > 0 {
		luOpts = append(luOpts, landuse.WithJitter(s.LandUse.Jitter, s.LandUse.Seed))
	}
	lu, err := landuse.Allocate(walk, s.MinGreen(), s.LandUse.MaxTransitDistance, luOpts...)
	if err != nil {
		return nil, report, err
	}

	// 5. Coverage
	cov := coverage.Estimate(stations, s.Coverage.BufferRadius, cityBounds)

	res := &Result{
		RunID:           runID,
		GeneratedAt:     cfg.now().UTC(),
		City:            s.City.Name,
		CityBounds:      cityBounds,
		Layout:          layout,
		Params:          params,
		StationSource:   sourceName,
		Stations:        stations,
		Score:           score,
		Walkability:     walk,
		Potential:       potential,
		LandUse:         lu,
		Distance:        dist,
		CoveragePercent: cov,
	}
	res.Summary = summarize(res)
	res.Impact = impact.Estimate(impact.Inputs{
		Stations:        stations,
		CoveragePercent: cov,
		GreenFraction:   res.Summary.LandUse.Green,
		MeanWalkability: res.Summary.MeanWalkability,
	})

	// 6. Analytical validation
	validateAnalytical(s, res, report)

	log.Info("analysis complete",
		zap.Int("cells", res.Summary.Cells),
		zap.Float64("mean_score", res.Summary.MeanScore),
		zap.Float64("coverage", cov),
		zap.String("report", report.Summary))
	return res, report, nil
}

func loadStations(ctx context.Context, s *spec.AnalysisSpec, cfg config) ([]transit.Station, string, error) {
	if cfg.provided {
		return cfg.stations, "provided", nil
	}
	src := cfg.source
	if src == nil {
		var err error
		src, err = s.StationSource()
		if err != nil {
			return nil, "", err
		}
	}
	list, err := src.Stations(ctx)
	if err != nil {
		return nil, src.Name(), err
	}
	if len(list) == 0 {
		return nil, src.Name(), transit.ErrNoStations
	}
	return list, src.Name(), nil
}
