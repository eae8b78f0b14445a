package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/statmill/weekcast/internal/config"
	"github.com/statmill/weekcast/internal/forecast"
	"github.com/statmill/weekcast/internal/models"
	"github.com/statmill/weekcast/internal/telemetry"
	"github.com/statmill/weekcast/internal/utils"
)

// SeriesStore is the repository surface the forecast service reads and
// writes.
type SeriesStore interface {
	GetSeriesBySlug(ctx context.Context, slug string) (*models.Series, error)
	ListSeries(ctx context.Context) ([]models.SeriesSummary, error)
	GetObservations(ctx context.Context, seriesID string) ([]models.Observation, error)
	UpsertSeries(ctx context.Context, slug, name, unit string) (*models.Series, error)
	InsertObservations(ctx context.Context, seriesID string, observations []models.Observation) (int64, error)
}

// ForecastCache is the cache surface the forecast service uses. Implemented
// by cache.RedisForecastCache.
type ForecastCache interface {
	Key(slug, fingerprint string) string
	Get(ctx context.Context, key string) (json.RawMessage, bool)
	Set(ctx context.Context, key string, payload json.RawMessage)
	Invalidate(ctx context.Context, slug string) error
}

// ForecastService serves forecasts and accuracy evaluations for stored
// series, caching computed responses.
type ForecastService struct {
	store    SeriesStore
	cache    ForecastCache
	overlays *OverlayService
	tracer   *telemetry.BusinessTracer
	logger   *logrus.Logger
	defaults config.ForecastConfig
}

// NewForecastService creates a forecast service.
func NewForecastService(store SeriesStore, cache ForecastCache, overlays *OverlayService, cfg config.ForecastConfig, logger *logrus.Logger) *ForecastService {
	return &ForecastService{
		store:    store,
		cache:    cache,
		overlays: overlays,
		tracer:   telemetry.NewBusinessTracer(),
		logger:   logger,
		defaults: cfg,
	}
}

// ListSeries returns all series with their observation spans.
func (s *ForecastService) ListSeries(ctx context.Context) ([]models.SeriesSummary, error) {
	return s.store.ListSeries(ctx)
}

// GetSeriesDetail returns one series with its full observation history.
func (s *ForecastService) GetSeriesDetail(ctx context.Context, slug string) (*models.SeriesDetailResponse, error) {
	series, err := s.store.GetSeriesBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	observations, err := s.store.GetObservations(ctx, series.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load observations: %w", err)
	}

	return &models.SeriesDetailResponse{
		Series:       *series,
		Observations: observations,
	}, nil
}

// CreateSeries upserts a series and its observations, then drops any cached
// responses for it. Observation dates are normalized to the Monday of their
// week.
func (s *ForecastService) CreateSeries(ctx context.Context, req models.CreateSeriesRequest) (*models.SeriesDetailResponse, error) {
	name := req.Name
	if name == "" {
		name = DisplayName(req.Slug)
	}

	series, err := s.store.UpsertSeries(ctx, req.Slug, name, req.Unit)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert series: %w", err)
	}

	observations := make([]models.Observation, 0, len(req.Observations))
	for _, input := range req.Observations {
		observations = append(observations, models.Observation{
			SeriesID:  series.ID,
			WeekStart: MostRecentMonday(input.WeekStart),
			Value:     input.Value,
		})
	}

	written, err := s.store.InsertObservations(ctx, series.ID, observations)
	if err != nil {
		return nil, fmt.Errorf("failed to insert observations: %w", err)
	}

	if err := s.cache.Invalidate(ctx, series.Slug); err != nil {
		s.logger.WithError(err).WithField("series", series.Slug).Warn("Failed to invalidate forecast cache")
	}

	s.logger.WithFields(logrus.Fields{
		"series":       series.Slug,
		"observations": written,
	}).Info("Series ingested")

	stored, err := s.store.GetObservations(ctx, series.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load observations: %w", err)
	}

	return &models.SeriesDetailResponse{
		Series:       *series,
		Observations: stored,
	}, nil
}

// GetForecast computes fitted curves and an H-step forecast for one series,
// serving from the cache when possible.
func (s *ForecastService) GetForecast(ctx context.Context, slug string, params models.ForecastParams, includeOverlays bool) (*models.ForecastResponse, error) {
	params = s.withDefaults(params)
	if err := validateParams(params); err != nil {
		return nil, err
	}

	start := time.Now()
	key := s.cache.Key(slug, forecastFingerprint(params, includeOverlays))
	if payload, ok := s.cache.Get(ctx, key); ok {
		var cached models.ForecastResponse
		if err := json.Unmarshal(payload, &cached); err == nil {
			cached.Cached = true
			return &cached, nil
		}
		s.logger.WithField("key", key).Warn("Discarding undecodable cached forecast")
	}

	series, err := s.store.GetSeriesBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	observations, err := s.store.GetObservations(ctx, series.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load observations: %w", err)
	}
	values := observationValues(observations)

	ctx, span := s.tracer.TraceForecast(ctx, slug, len(values))
	s.tracer.RecordForecastParams(span, params.Window, params.Period, params.Horizon)
	defer s.tracer.EndWithError(span, nil)

	hwParams := forecast.HoltWintersParams{
		Alpha:  params.Alpha,
		Beta:   params.Beta,
		Gamma:  params.Gamma,
		Period: params.Period,
	}

	smaFit := forecast.SMA(values, params.Window)
	smaOneStep := forecast.SMAOneStepAhead(values, params.Window)
	hwState := forecast.HoltWintersSmooth(values, hwParams)
	smaForecast := forecast.SMAForecast(values, params.Window, params.Horizon)
	hwForecast := forecast.HoltWintersForecast(values, hwParams, params.Horizon)

	history := make([]models.SeriesPoint, len(observations))
	for t, obs := range observations {
		history[t] = models.SeriesPoint{
			WeekStart:  obs.WeekStart,
			Actual:     values[t],
			SMAFit:     smaFit[t],
			SMAOneStep: smaOneStep[t],
			HWFit:      hwState.Fitted[t],
			HWOneStep:  hwState.OneStepAhead[t],
		}
	}

	firstForecastWeek := MostRecentMonday(time.Now()).AddDate(0, 0, 7)
	if n := len(observations); n > 0 {
		firstForecastWeek = observations[n-1].WeekStart.AddDate(0, 0, 7)
	}
	future := make([]models.ForecastPoint, params.Horizon)
	for h := 0; h < params.Horizon; h++ {
		future[h] = models.ForecastPoint{
			WeekStart:   firstForecastWeek.AddDate(0, 0, 7*h),
			SMA:         smaForecast[h],
			HoltWinters: hwForecast[h],
		}
	}

	response := &models.ForecastResponse{
		Series:   *series,
		Params:   params,
		History:  history,
		Forecast: future,
	}
	if includeOverlays {
		response.Overlays = s.overlays.Compute(values)
	}

	if payload, err := json.Marshal(response); err == nil {
		s.cache.Set(ctx, key, payload)
	}

	s.logger.WithFields(logrus.Fields{
		"series":      slug,
		"points":      len(values),
		"horizon":     params.Horizon,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Forecast computed")

	return response, nil
}

// GetEvaluation scores SMA and Holt-Winters accuracy on one series, serving
// from the cache when possible.
func (s *ForecastService) GetEvaluation(ctx context.Context, slug string, params models.ForecastParams, mode forecast.Mode, metric forecast.Metric, holdout int) (*models.EvaluationResponse, error) {
	params = s.withDefaults(params)
	if err := validateParams(params); err != nil {
		return nil, err
	}
	if holdout == 0 {
		holdout = s.defaults.Horizon
	}

	key := s.cache.Key(slug, evaluationFingerprint(params, mode, metric, holdout))
	if payload, ok := s.cache.Get(ctx, key); ok {
		var cached models.EvaluationResponse
		if err := json.Unmarshal(payload, &cached); err == nil {
			cached.Cached = true
			return &cached, nil
		}
		s.logger.WithField("key", key).Warn("Discarding undecodable cached evaluation")
	}

	series, err := s.store.GetSeriesBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	observations, err := s.store.GetObservations(ctx, series.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load observations: %w", err)
	}
	values := observationValues(observations)

	ctx, span := s.tracer.TraceEvaluation(ctx, slug, string(mode), string(metric))
	defer s.tracer.EndWithError(span, nil)

	result := forecast.Evaluate(values, forecast.EvalParams{
		Mode:   mode,
		Metric: metric,
		Window: params.Window,
		HoltWinters: forecast.HoltWintersParams{
			Alpha:  params.Alpha,
			Beta:   params.Beta,
			Gamma:  params.Gamma,
			Period: params.Period,
		},
		Holdout: holdout,
	})

	response := &models.EvaluationResponse{
		Series:  *series,
		Params:  params,
		Mode:    result.Mode,
		Metric:  result.Metric,
		Holdout: result.Holdout,
		Scores:  result.Scores,
	}

	if payload, err := json.Marshal(response); err == nil {
		s.cache.Set(ctx, key, payload)
	}

	return response, nil
}

// withDefaults fills zero-valued parameters from the configured defaults.
func (s *ForecastService) withDefaults(params models.ForecastParams) models.ForecastParams {
	if params.Window == 0 {
		params.Window = s.defaults.Window
	}
	if params.Alpha == 0 {
		params.Alpha = s.defaults.Alpha
	}
	if params.Beta == 0 {
		params.Beta = s.defaults.Beta
	}
	if params.Gamma == 0 {
		params.Gamma = s.defaults.Gamma
	}
	if params.Period == 0 {
		params.Period = s.defaults.Period
	}
	if params.Horizon == 0 {
		params.Horizon = s.defaults.Horizon
	}
	return params
}

// validateParams rejects parameter combinations the HTTP API should not
// accept, even though the engines themselves degrade gracefully.
func validateParams(params models.ForecastParams) error {
	if params.Window < 1 || params.Window > 520 {
		return utils.NewValidationErrorf("window", "must be between 1 and 520, got %d", params.Window)
	}
	if params.Period < 1 || params.Period > 520 {
		return utils.NewValidationErrorf("period", "must be between 1 and 520, got %d", params.Period)
	}
	if params.Horizon < 1 || params.Horizon > 260 {
		return utils.NewValidationErrorf("horizon", "must be between 1 and 260, got %d", params.Horizon)
	}
	for name, value := range map[string]float64{
		"alpha": params.Alpha,
		"beta":  params.Beta,
		"gamma": params.Gamma,
	} {
		if value <= 0 || value >= 1 {
			return utils.NewValidationErrorf(name, "must be in (0,1), got %g", value)
		}
	}
	return nil
}

// observationValues converts stored decimals to the float64 slice the
// engines work on, in week order.
func observationValues(observations []models.Observation) []float64 {
	values := make([]float64, len(observations))
	for i, obs := range observations {
		values[i] = obs.Value.InexactFloat64()
	}
	return values
}

func forecastFingerprint(params models.ForecastParams, overlays bool) string {
	return fmt.Sprintf("fc-w%d-a%g-b%g-g%g-p%d-h%d-ov%t",
		params.Window, params.Alpha, params.Beta, params.Gamma, params.Period, params.Horizon, overlays)
}

func evaluationFingerprint(params models.ForecastParams, mode forecast.Mode, metric forecast.Metric, holdout int) string {
	return fmt.Sprintf("ev-%s-%s-w%d-a%g-b%g-g%g-p%d-hd%d",
		mode, metric, params.Window, params.Alpha, params.Beta, params.Gamma, params.Period, holdout)
}
