package transit

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrNoStations is returned by sources that produced an empty list.
var ErrNoStations = eris.New("transit: source returned no stations")

// Source supplies a station list from some backing store.
type Source interface {
	Name() string
	Stations(ctx context.Context) ([]Station, error)
}

// StaticSource serves a fixed, in-memory station list.
type StaticSource struct {
	Label string
	List  []Station
}

// Name implements Source.
func (s StaticSource) Name() string {
	if s.Label == "" {
		return "static"
	}
	return s.Label
}

// Stations implements Source. The returned slice is a copy.
func (s StaticSource) Stations(_ context.Context) ([]Station, error) {
	if len(s.List) == 0 {
		return nil, ErrNoStations
	}
	out := make([]Station, len(s.List))
	copy(out, s.List)
	return out, nil
}

// ChainSource tries each source in order and returns the first non-empty
// result. It is the ingestion fallback chain: e.g. shapefile, then GTFS,
// then a preset list.
type ChainSource struct {
	sources []Source
}

// Chain builds a ChainSource over the given sources.
func Chain(sources ...Source) *ChainSource {
	return &ChainSource{sources: sources}
}

// Name implements Source.
func (c *ChainSource) Name() string {
	return "chain"
}

// Stations implements Source.
func (c *ChainSource) Stations(ctx context.Context) ([]Station, error) {
	log := zap.L().With(zap.String("component", "transit.chain"))

	if len(c.sources) == 0 {
		return nil, eris.New("transit: no station sources configured")
	}

	var lastErr error
	for _, src := range c.sources {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "transit: chain cancelled")
		}
		stations, err := src.Stations(ctx)
		if err == nil && len(stations) == 0 {
			err = ErrNoStations
		}
		if err != nil {
			log.Warn("station source failed, trying next",
				zap.String("source", src.Name()),
				zap.Error(err),
			)
			lastErr = err
			continue
		}
		log.Info("loaded stations",
			zap.String("source", src.Name()),
			zap.Int("count", len(stations)),
		)
		return stations, nil
	}
	return nil, eris.Wrapf(lastErr, "transit: all %d station sources failed", len(c.sources))
}
