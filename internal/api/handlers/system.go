package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/statmill/weekcast/internal/middleware"
	"github.com/statmill/weekcast/internal/services"
)

// SystemHandler serves process and host statistics.
type SystemHandler struct {
	stats *services.SystemStatsService
}

func NewSystemHandler(stats *services.SystemStatsService) *SystemHandler {
	return &SystemHandler{stats: stats}
}

// GetStats samples CPU, memory, and runtime metrics.
func (h *SystemHandler) GetStats(c *gin.Context) {
	stats, err := h.stats.Collect(c.Request.Context())
	if err != nil {
		middleware.RecordError(c, err, "Failed to collect system stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to collect system stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
