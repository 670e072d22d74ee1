package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lotiva/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthy(context.Context) error { return nil }

func failing(context.Context) error { return errors.New("dial tcp: connection refused") }

func runHealth(t *testing.T, h *SystemHandler) (*httptest.ResponseRecorder, dto.HealthResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	h.Health(c)

	var resp dto.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestSystemHandler_Health(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		h := NewSystemHandler("1.0.0", PingerFunc(healthy)).WithDependency("smtp", PingerFunc(healthy))
		w, resp := runHealth(t, h)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "healthy", resp.Services["database"])
		assert.Equal(t, "healthy", resp.Services["smtp"])
	})

	t.Run("database down", func(t *testing.T) {
		h := NewSystemHandler("1.0.0", PingerFunc(failing))
		w, resp := runHealth(t, h)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "unhealthy", resp.Status)
		assert.Equal(t, "unhealthy", resp.Services["database"])
	})

	t.Run("optional dependency down degrades", func(t *testing.T) {
		h := NewSystemHandler("1.0.0", PingerFunc(healthy)).WithDependency("smtp", PingerFunc(failing))
		w, resp := runHealth(t, h)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "degraded", resp.Status)
		assert.Equal(t, "degraded", resp.Services["smtp"])
	})

	t.Run("nil dependency ignored", func(t *testing.T) {
		h := NewSystemHandler("1.0.0", PingerFunc(healthy)).WithDependency("smtp", nil)
		_, resp := runHealth(t, h)

		assert.NotContains(t, resp.Services, "smtp")
	})
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	h := NewSystemHandler("2.1.0", nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/system/info", nil)

	h.GetSystemInfo(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "Lotiva Contracts API", data["name"])
	assert.Equal(t, "2.1.0", data["version"])
	assert.NotEmpty(t, data["go_version"])
}
