package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorStatus(t *testing.T) {
	errLocal := errors.New("local conflict")
	RegisterErrorStatus(errLocal, http.StatusConflict, "")

	cases := []struct {
		name string
		err  error
		code int
	}{
		{"not configured", fmt.Errorf("%w: no key", ErrNotConfigured), http.StatusServiceUnavailable},
		{"generation failed", fmt.Errorf("draft: %w", ErrGenerationFailed), http.StatusBadGateway},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"not found", ErrProjectNotFound, http.StatusNotFound},
		{"credentials", ErrInvalidCredentials, http.StatusUnauthorized},
		{"export not ready", ErrExportNotReady, http.StatusConflict},
		{"registered", fmt.Errorf("wrapped: %w", errLocal), http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, msg := ErrorStatus(tc.err)
			assert.Equal(t, tc.code, code)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestRespondErrorWithDataKeepsTraceAndData(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("trace_id", "trace-1")

	RespondErrorWithData(c, ErrForbidden, gin.H{"screen": "same"})

	require.Equal(t, http.StatusForbidden, w.Code)
	var body APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, "trace-1", body.TraceID)
	assert.Equal(t, map[string]any{"screen": "same"}, body.Data)
}

func TestRespondWithoutTraceID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	assert.NotPanics(t, func() { RespondSuccess(c, nil, "ok") })
	assert.Equal(t, http.StatusOK, w.Code)
}
