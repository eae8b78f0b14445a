package handlers

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"

	"github.com/statmill/weekcast/internal/database"
	"github.com/statmill/weekcast/internal/middleware"
	"github.com/statmill/weekcast/internal/models"
	"github.com/statmill/weekcast/internal/services"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// SeriesHandler serves series listing, detail, and ingestion.
type SeriesHandler struct {
	forecasts *services.ForecastService
}

func NewSeriesHandler(forecasts *services.ForecastService) *SeriesHandler {
	return &SeriesHandler{forecasts: forecasts}
}

// SeriesListResponse wraps the series listing.
type SeriesListResponse struct {
	Series []models.SeriesSummary `json:"series"`
	Total  int                    `json:"total"`
}

// ListSeries returns every tracked series with its observation span.
func (h *SeriesHandler) ListSeries(c *gin.Context) {
	summaries, err := h.forecasts.ListSeries(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list series"})
		return
	}

	c.JSON(http.StatusOK, SeriesListResponse{
		Series: summaries,
		Total:  len(summaries),
	})
}

// GetSeries returns one series with its raw observations.
func (h *SeriesHandler) GetSeries(c *gin.Context) {
	slug := c.Param("slug")
	middleware.AddSpanAttribute(c, "series.slug", slug)

	detail, err := h.forecasts.GetSeriesDetail(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, database.ErrSeriesNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Series not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load series"})
		return
	}

	c.JSON(http.StatusOK, detail)
}

// CreateSeries upserts a series together with its weekly observations.
func (h *SeriesHandler) CreateSeries(c *gin.Context) {
	var req models.CreateSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !slugPattern.MatchString(req.Slug) || len(req.Slug) > 64 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Slug must be lowercase letters, digits and hyphens"})
		return
	}
	if len(req.Observations) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one observation is required"})
		return
	}

	detail, err := h.forecasts.CreateSeries(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store series"})
		return
	}

	c.JSON(http.StatusCreated, detail)
}
