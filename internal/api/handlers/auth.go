package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/statmill/weekcast/internal/config"
	"github.com/statmill/weekcast/internal/middleware"
)

// adminUsername is the single operator account. Ingestion and admin
// endpoints are operator-only, so there is no user store behind this.
const adminUsername = "admin"

// AuthHandler issues JWT tokens for the admin account.
type AuthHandler struct {
	auth     *middleware.AuthMiddleware
	security config.SecurityConfig
}

func NewAuthHandler(auth *middleware.AuthMiddleware, security config.SecurityConfig) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		security: security,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login verifies the admin credentials against the configured bcrypt hash
// and returns a signed token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if h.security.AdminPasswordHash == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Admin login is not configured"})
		return
	}

	if req.Username != adminUsername {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(h.security.AdminPasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	expiry := h.security.JWTExpiryDuration()
	token, err := h.auth.GenerateToken(adminUsername, "admin", expiry)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		Role:      "admin",
		ExpiresAt: time.Now().Add(expiry),
	})
}
