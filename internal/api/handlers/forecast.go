package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/statmill/weekcast/internal/database"
	"github.com/statmill/weekcast/internal/forecast"
	"github.com/statmill/weekcast/internal/middleware"
	"github.com/statmill/weekcast/internal/models"
	"github.com/statmill/weekcast/internal/services"
	"github.com/statmill/weekcast/internal/utils"
)

// ForecastHandler serves forecast and evaluation requests.
type ForecastHandler struct {
	forecasts *services.ForecastService
}

func NewForecastHandler(forecasts *services.ForecastService) *ForecastHandler {
	return &ForecastHandler{forecasts: forecasts}
}

// GetForecast returns fitted curves and the H-step forecast for one series.
// Method parameters come from query arguments and fall back to the
// configured defaults; overlays=true adds the indicator curves.
func (h *ForecastHandler) GetForecast(c *gin.Context) {
	slug := c.Param("slug")
	middleware.AddSpanAttribute(c, "series.slug", slug)

	params, err := parseForecastParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	includeOverlays := c.Query("overlays") == "true"

	response, err := h.forecasts.GetForecast(c.Request.Context(), slug, params, includeOverlays)
	if err != nil {
		respondForecastError(c, err, "Failed to compute forecast")
		return
	}

	middleware.AddSpanAttribute(c, "cache.hit", response.Cached)
	c.JSON(http.StatusOK, response)
}

// GetEvaluation scores both methods on one series. Mode defaults to rolling
// and metric to MAPE; holdout only applies in holdout mode.
func (h *ForecastHandler) GetEvaluation(c *gin.Context) {
	slug := c.Param("slug")
	middleware.AddSpanAttribute(c, "series.slug", slug)

	params, err := parseForecastParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mode, err := forecast.ParseMode(c.DefaultQuery("mode", string(forecast.ModeRolling)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	metric, err := forecast.ParseMetric(c.DefaultQuery("metric", string(forecast.MetricMAPE)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	holdout, err := intQuery(c, "holdout")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if holdout < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid holdout: %d", holdout)})
		return
	}

	response, err := h.forecasts.GetEvaluation(c.Request.Context(), slug, params, mode, metric, holdout)
	if err != nil {
		respondForecastError(c, err, "Failed to evaluate series")
		return
	}

	c.JSON(http.StatusOK, response)
}

// respondForecastError maps service errors onto status codes: the missing
// series sentinel to 404, parameter validation to 400, the rest to 500.
func respondForecastError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, database.ErrSeriesNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Series not found"})
	case utils.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		middleware.RecordError(c, err, fallback)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// parseForecastParams reads method parameters from query arguments, leaving
// absent ones zero for the service to default.
func parseForecastParams(c *gin.Context) (models.ForecastParams, error) {
	var params models.ForecastParams
	var err error

	if params.Window, err = intQuery(c, "window"); err != nil {
		return params, err
	}
	if params.Period, err = intQuery(c, "period"); err != nil {
		return params, err
	}
	if params.Horizon, err = intQuery(c, "horizon"); err != nil {
		return params, err
	}
	if params.Alpha, err = floatQuery(c, "alpha"); err != nil {
		return params, err
	}
	if params.Beta, err = floatQuery(c, "beta"); err != nil {
		return params, err
	}
	if params.Gamma, err = floatQuery(c, "gamma"); err != nil {
		return params, err
	}
	return params, nil
}

func intQuery(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return value, nil
}

func floatQuery(c *gin.Context, name string) (float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return value, nil
}
