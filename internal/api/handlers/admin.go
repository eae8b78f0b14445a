package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/statmill/weekcast/internal/services"
)

// DigestSender triggers the Telegram digest. Implemented by
// services.DigestService.
type DigestSender interface {
	SendDigest(ctx context.Context) error
	BuildDigest(ctx context.Context) ([]services.DigestEntry, error)
}

// Reseeder rebuilds the synthetic demo data. Implemented by
// services.GeneratorService.
type Reseeder interface {
	Reseed(ctx context.Context) error
}

// CacheClearer drops every cached forecast. Implemented by
// cache.RedisForecastCache.
type CacheClearer interface {
	Clear(ctx context.Context) error
}

// AdminHandler serves operator-only maintenance endpoints.
type AdminHandler struct {
	digest    DigestSender
	generator Reseeder
	cache     CacheClearer
}

func NewAdminHandler(digest DigestSender, generator Reseeder, cache CacheClearer) *AdminHandler {
	return &AdminHandler{
		digest:    digest,
		generator: generator,
		cache:     cache,
	}
}

// TriggerDigest sends the weekly digest immediately.
func (h *AdminHandler) TriggerDigest(c *gin.Context) {
	if err := h.digest.SendDigest(c.Request.Context()); err != nil {
		if strings.Contains(err.Error(), "telegram bot not initialized") {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Telegram bot is not configured"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send digest"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}

// PreviewDigest returns the digest entries without sending anything, so the
// message can be checked before a bot is configured.
func (h *AdminHandler) PreviewDigest(c *gin.Context) {
	entries, err := h.digest.BuildDigest(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build digest"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "total": len(entries)})
}

// Reseed wipes all series and regenerates the synthetic defaults.
func (h *AdminHandler) Reseed(c *gin.Context) {
	if err := h.generator.Reseed(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reseed series"})
		return
	}
	if err := h.cache.Clear(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Reseeded but failed to clear forecast cache"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reseeded"})
}

// ClearCache drops every cached forecast and evaluation.
func (h *AdminHandler) ClearCache(c *gin.Context) {
	if err := h.cache.Clear(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear forecast cache"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}
