package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statmill/weekcast/internal/database"
)

func performHealthRequest(handler gin.HandlerFunc, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET(path, handler)

	req, _ := http.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthHandler_HealthCheck_Unconfigured(t *testing.T) {
	handler := NewHealthHandler(nil, nil, "1.0.0")

	w := performHealthRequest(handler.HealthCheck, "/health")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Contains(t, resp.Services["database"], "not configured")
	assert.Contains(t, resp.Services["redis"], "not configured")
	assert.Equal(t, "1.0.0", resp.Version)
	assert.NotEmpty(t, resp.Uptime)
}

func TestHealthHandler_HealthCheck_RedisOnly(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	redisClient := &database.RedisClient{
		Client: redis.NewClient(&redis.Options{Addr: mr.Addr()}),
	}
	defer redisClient.Client.Close()

	handler := NewHealthHandler(nil, redisClient, "1.0.0")

	w := performHealthRequest(handler.HealthCheck, "/health")

	// Redis alone is not enough for an overall healthy verdict.
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Equal(t, "healthy", resp.Services["redis"])
	assert.Contains(t, resp.Services["database"], "not configured")
}

func TestHealthHandler_HealthCheck_RedisDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	redisClient := &database.RedisClient{
		Client: redis.NewClient(&redis.Options{Addr: mr.Addr()}),
	}
	defer redisClient.Client.Close()

	// Stop miniredis so the ping fails.
	mr.Close()

	handler := NewHealthHandler(nil, redisClient, "1.0.0")

	w := performHealthRequest(handler.HealthCheck, "/health")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Services["redis"], "unhealthy")
}

func TestHealthHandler_LivenessCheck(t *testing.T) {
	handler := NewHealthHandler(nil, nil, "1.0.0")

	w := performHealthRequest(handler.LivenessCheck, "/live")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alive")
}
