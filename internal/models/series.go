package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/statmill/weekcast/internal/forecast"
)

// Series represents one stored weekly series.
type Series struct {
	ID        string    `json:"id" db:"id"`
	Slug      string    `json:"slug" db:"slug"`
	Name      string    `json:"name" db:"name"`
	Unit      string    `json:"unit,omitempty" db:"unit"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Observation is one weekly value of a series.
type Observation struct {
	SeriesID  string          `json:"series_id" db:"series_id"`
	WeekStart time.Time       `json:"week_start" db:"week_start"`
	Value     decimal.Decimal `json:"value" db:"value"`
}

// SeriesSummary pairs series metadata with its observation span for listings.
type SeriesSummary struct {
	Series
	ObservationCount int        `json:"observation_count"`
	FirstWeek        *time.Time `json:"first_week,omitempty"`
	LastWeek         *time.Time `json:"last_week,omitempty"`
}

// CreateSeriesRequest is the authenticated payload for registering a series
// together with its observations.
type CreateSeriesRequest struct {
	Slug         string             `json:"slug" binding:"required"`
	Name         string             `json:"name"`
	Unit         string             `json:"unit"`
	Observations []ObservationInput `json:"observations" binding:"required"`
}

// ObservationInput is one incoming weekly value.
type ObservationInput struct {
	WeekStart time.Time       `json:"week_start" binding:"required"`
	Value     decimal.Decimal `json:"value"`
}

// ForecastParams echoes the effective parameters a forecast or evaluation
// was computed with, after clamping.
type ForecastParams struct {
	Window  int     `json:"window"`
	Alpha   float64 `json:"alpha"`
	Beta    float64 `json:"beta"`
	Gamma   float64 `json:"gamma"`
	Period  int     `json:"period"`
	Horizon int     `json:"horizon"`
}

// SeriesPoint is one observed week of the forecast chart: the actual value
// plus each method's historical fit and one-step-ahead reconstruction.
type SeriesPoint struct {
	WeekStart  time.Time      `json:"week_start"`
	Actual     float64        `json:"actual"`
	SMAFit     forecast.Value `json:"sma_fit"`
	SMAOneStep forecast.Value `json:"sma_one_step"`
	HWFit      forecast.Value `json:"hw_fit"`
	HWOneStep  forecast.Value `json:"hw_one_step"`
}

// ForecastPoint is one projected week beyond the observed series.
type ForecastPoint struct {
	WeekStart   time.Time      `json:"week_start"`
	SMA         forecast.Value `json:"sma"`
	HoltWinters forecast.Value `json:"hw"`
}

// OverlayCurve is a display-only derived curve (moving bands, EMA) aligned
// index-for-index with the historical points.
type OverlayCurve struct {
	Name   string           `json:"name"`
	Values []forecast.Value `json:"values"`
}

// ForecastResponse carries everything the chart needs for one series.
type ForecastResponse struct {
	Series   Series          `json:"series"`
	Params   ForecastParams  `json:"params"`
	History  []SeriesPoint   `json:"history"`
	Forecast []ForecastPoint `json:"forecast"`
	Overlays []OverlayCurve  `json:"overlays,omitempty"`
	Cached   bool            `json:"cached"`
}

// EvaluationResponse reports per-method accuracy for one series.
type EvaluationResponse struct {
	Series  Series                    `json:"series"`
	Params  ForecastParams            `json:"params"`
	Mode    forecast.Mode             `json:"mode"`
	Metric  forecast.Metric           `json:"metric"`
	Holdout int                       `json:"holdout,omitempty"`
	Scores  map[string]forecast.Value `json:"scores"`
	Cached  bool                      `json:"cached"`
}

// SeriesDetailResponse is the single-series payload with raw observations.
type SeriesDetailResponse struct {
	Series       Series        `json:"series"`
	Observations []Observation `json:"observations"`
}
