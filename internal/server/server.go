package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ChicagoDave/todplanner/internal/config"
	"github.com/ChicagoDave/todplanner/pkg/accessibility"
	"github.com/ChicagoDave/todplanner/pkg/analytics"
	"github.com/ChicagoDave/todplanner/pkg/coverage"
	"github.com/ChicagoDave/todplanner/pkg/export"
	"github.com/ChicagoDave/todplanner/pkg/geo"
	"github.com/ChicagoDave/todplanner/pkg/spec"
	"github.com/ChicagoDave/todplanner/pkg/transit"
	"github.com/ChicagoDave/todplanner/pkg/validation"
)

// Server exposes one analysis spec over HTTP.
type Server struct {
	spec    *spec.AnalysisSpec
	cfg     config.ServerConfig
	workers int
	log     *zap.Logger

	mu         sync.RWMutex
	last       *analytics.Result
	lastReport *validation.Report
}

// New creates a server for the given spec.
func New(s *spec.AnalysisSpec, cfg config.ServerConfig, workers int) *Server {
	return &Server{
		spec:    s,
		cfg:     cfg,
		workers: workers,
		log:     zap.L().With(zap.String("component", "server")),
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(rateLimit(s.cfg.RateLimit, s.cfg.Burst))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/spec", s.handleSpec)
		r.Get("/stations", s.handleStations)
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/analysis", s.handleAnalysis)
		r.Get("/analysis/geojson", s.handleAnalysisGeoJSON)
		r.Get("/score", s.handleScore)
		r.Get("/coverage", s.handleCoverage)
	})
	return r
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("starting server",
		zap.Int("port", s.cfg.Port),
		zap.String("city", s.spec.City.Name))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return eris.Wrap(err, "server listen")
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.log.Info("request",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)))
	})
}

// rateLimit rejects requests beyond perSecond with a burst allowance.
// A non-positive rate disables limiting.
func rateLimit(perSecond float64, burst int) func(http.Handler) http.Handler {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(limit, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSpec(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.spec)
}

func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	stations, src, err := s.stations(r.Context(), s.spec)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"source":   src,
		"count":    len(stations),
		"by_type":  transit.CountByType(stations),
		"stations": stations,
	})
}

// analyzeRequest overrides parts of the loaded spec for a single run.
type analyzeRequest struct {
	MinGreenFraction *float64       `json:"min_green_fraction"`
	BufferRadius     *float64       `json:"buffer_radius"`
	Rows             *int           `json:"rows"`
	Cols             *int           `json:"cols"`
	Types            []transit.Type `json:"types"`
	OperationalOnly  *bool          `json:"operational_only"`
	MaxWaitMinutes   *int           `json:"max_wait_minutes"`
}

func (req analyzeRequest) apply(base *spec.AnalysisSpec) *spec.AnalysisSpec {
	s := *base
	if req.MinGreenFraction != nil {
		v := *req.MinGreenFraction
		s.LandUse.MinGreenFraction = &v
	}
	if req.BufferRadius != nil {
		s.Coverage.BufferRadius = *req.BufferRadius
	}
	if req.Rows != nil {
		s.Grid.Rows = *req.Rows
	}
	if req.Cols != nil {
		s.Grid.Cols = *req.Cols
	}
	if req.Types != nil {
		s.Stations.Filter.Types = append([]transit.Type(nil), req.Types...)
	}
	if req.OperationalOnly != nil {
		s.Stations.Filter.OperationalOnly = *req.OperationalOnly
	}
	if req.MaxWaitMinutes != nil {
		s.Stations.Filter.MaxWaitMinutes = *req.MaxWaitMinutes
	}
	return &s
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, report, err := analytics.Analyze(r.Context(), req.apply(s.spec), analytics.WithWorkers(s.workers))
	if err != nil {
		s.log.Error("analysis failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if res == nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"validation": report})
		return
	}

	s.mu.Lock()
	s.last, s.lastReport = res, report
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, analysisResponse(res, report))
}

func (s *Server) handleAnalysis(w http.ResponseWriter, _ *http.Request) {
	res, report := s.lastRun()
	if res == nil {
		writeError(w, http.StatusNotFound, "no analysis has been run")
		return
	}
	writeJSON(w, http.StatusOK, analysisResponse(res, report))
}

func (s *Server) handleAnalysisGeoJSON(w http.ResponseWriter, _ *http.Request) {
	res, _ := s.lastRun()
	if res == nil {
		writeError(w, http.StatusNotFound, "no analysis has been run")
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	if err := export.WriteGeoJSON(w, res); err != nil {
		s.log.Error("geojson encode failed", zap.Error(err))
	}
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	lat, err1 := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, err2 := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if err1 != nil || err2 != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		writeError(w, http.StatusBadRequest, "lat and lon must be valid coordinates")
		return
	}

	stations, params, err := s.scoringInputs(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	b := accessibility.ExplainPoint(geo.Ll(lat, lon), stations, params)
	writeJSON(w, http.StatusOK, map[string]any{
		"lat":       lat,
		"lon":       lon,
		"breakdown": b,
		"color":     b.Category.Color(),
	})
}

func (s *Server) handleCoverage(w http.ResponseWriter, r *http.Request) {
	radius := s.spec.Coverage.BufferRadius
	if q := r.URL.Query().Get("radius"); q != "" {
		v, err := strconv.ParseFloat(q, 64)
		if err != nil || v <= 0 {
			writeError(w, http.StatusBadRequest, "radius must be a positive number of meters")
			return
		}
		radius = v
	}

	bounds, err := s.spec.CityBounds()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	stations, _, err := s.stations(r.Context(), s.spec)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	pct := coverage.Estimate(stations, radius, bounds)
	writeJSON(w, http.StatusOK, map[string]any{
		"radius_m":         radius,
		"stations":         len(stations),
		"coverage_percent": pct,
		"rating":           analytics.CoverageRating(pct),
	})
}

// stations loads and filters the stations named by sp.
func (s *Server) stations(ctx context.Context, sp *spec.AnalysisSpec) ([]transit.Station, string, error) {
	src, err := sp.StationSource()
	if err != nil {
		return nil, "", err
	}
	list, err := src.Stations(ctx)
	if err != nil {
		return nil, src.Name(), eris.Wrapf(err, "loading stations from %s", src.Name())
	}
	return sp.Stations.Filter.Apply(list), src.Name(), nil
}

// scoringInputs prefers the last run's stations and parameters so point
// scores agree with the grid that was served.
func (s *Server) scoringInputs(ctx context.Context) ([]transit.Station, accessibility.Params, error) {
	if res, _ := s.lastRun(); res != nil {
		return res.Stations, res.Params, nil
	}
	params := accessibility.Params{
		PrimaryRadius:       s.spec.Scoring.PrimaryRadius,
		SecondaryRadius:     s.spec.Scoring.SecondaryRadius,
		ConsiderationRadius: s.spec.Scoring.ConsiderationRadius,
	}
	stations, _, err := s.stations(ctx, s.spec)
	return stations, params, err
}

func (s *Server) lastRun() (*analytics.Result, *validation.Report) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.lastReport
}

func analysisResponse(res *analytics.Result, report *validation.Report) map[string]any {
	return map[string]any{
		"run_id":       res.RunID,
		"generated_at": res.GeneratedAt,
		"city":         res.City,
		"summary":      res.Summary,
		"impact":       res.Impact,
		"validation":   report,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
