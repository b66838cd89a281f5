package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dossier/internal/models/wizard_models"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Errors of packages that import utils are matched by registration.
var extraErrorStatus []errorStatus

type errorStatus struct {
	match   func(error) bool
	code    int
	message string
}

// RegisterErrorStatus maps err (matched with errors.Is) to an HTTP status.
// An empty message exposes err's own text.
func RegisterErrorStatus(target error, code int, message string) {
	RegisterErrorMatcher(func(err error) bool { return errors.Is(err, target) }, code, message)
}

func RegisterErrorMatcher(match func(error) bool, code int, message string) {
	extraErrorStatus = append(extraErrorStatus, errorStatus{match: match, code: code, message: message})
}

func traceID(c *gin.Context) string {
	if v, ok := c.Get("trace_id"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: message,
		TraceID: traceID(c),
		Data:    data,
	})
}

func RespondCreated(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusCreated, APIResponse{
		Status:  "success",
		Code:    http.StatusCreated,
		Message: message,
		TraceID: traceID(c),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: traceID(c),
	})
}

// ErrorStatus returns the HTTP status and public message for a service error.
func ErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrNotConfigured):
		return http.StatusServiceUnavailable, "No completion provider is configured"
	case errors.Is(err, ErrGenerationFailed), errors.Is(err, ErrMalformedResponse):
		return http.StatusBadGateway, "The assistant could not produce a usable answer, try again"
	case errors.Is(err, ErrProjectNotFound):
		return http.StatusNotFound, "Project not found"
	case errors.Is(err, ErrAccountNotFound):
		return http.StatusNotFound, "Account not found"
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, "You do not own this project"
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, ErrEmailAlreadyExists):
		return http.StatusConflict, "Email already exists"
	case errors.Is(err, ErrExportNotReady):
		return http.StatusConflict, err.Error()
	case errors.Is(err, ErrInvalidPage):
		return http.StatusBadRequest, "Page must be greater than 0"
	case errors.Is(err, ErrInvalidPageSize):
		return http.StatusBadRequest, "Page size must be between 1 and 100"
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, wizard_models.ErrInvalidConfiguration):
		return http.StatusInternalServerError, "Wizard configuration is invalid"
	}
	for _, e := range extraErrorStatus {
		if e.match(err) {
			msg := e.message
			if msg == "" {
				msg = err.Error()
			}
			return e.code, msg
		}
	}
	return http.StatusInternalServerError, "Internal server error"
}

func HandleServiceError(c *gin.Context, err error) {
	RespondErrorWithData(c, err, nil)
}

// RespondErrorWithData reports err and still returns data, so a client can
// render the screen the failed action left behind.
func RespondErrorWithData(c *gin.Context, err error, data interface{}) {
	code, message := ErrorStatus(err)
	if code >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("trace_id", traceID(c)),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: traceID(c),
		Data:    data,
	})
}
