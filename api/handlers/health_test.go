package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthAllChecksPass(t *testing.T) {
	h := NewHealthHandler("1.2.3", nil)
	h.RegisterCheck(CheckFunc{CheckName: "database", Fn: func(context.Context) error { return nil }})
	h.RegisterCheck(CheckFunc{CheckName: "llm", Fn: func(context.Context) error { return nil }})

	rec := httptest.NewRecorder()
	h.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "1.2.3", status.Version)
	assert.Equal(t, "pass", status.Checks["database"].Status)
	assert.Equal(t, "pass", status.Checks["llm"].Status)
}

func TestHealthFailingCheckDegrades(t *testing.T) {
	h := NewHealthHandler("", nil)
	h.RegisterCheck(CheckFunc{CheckName: "database", Fn: func(context.Context) error { return nil }})
	h.RegisterCheck(CheckFunc{CheckName: "redis", Fn: func(context.Context) error {
		return errors.New("connection refused")
	}})

	rec := httptest.NewRecorder()
	h.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "unhealthy", status.Status)
	assert.Equal(t, "fail", status.Checks["redis"].Status)
	assert.Contains(t, status.Checks["redis"].Message, "connection refused")
}

func TestHealthWithNoChecks(t *testing.T) {
	h := NewHealthHandler("", nil)

	rec := httptest.NewRecorder()
	h.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
