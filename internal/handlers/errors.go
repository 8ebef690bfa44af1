package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"marketing-ops/internal/services"
	"marketing-ops/internal/store"

	"github.com/labstack/echo/v5"
)

// APIError is the error envelope returned by every handler.
type APIError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

func newAPIError(code int, message string, err error) *APIError {
	apiErr := &APIError{Code: code, Message: message}
	if err != nil {
		apiErr.Details = err.Error()
	}
	return apiErr
}

func NewBadRequestError(message string, err error) *APIError {
	return newAPIError(http.StatusBadRequest, message, err)
}

func NewNotFoundError(message string, err error) *APIError {
	return newAPIError(http.StatusNotFound, message, err)
}

func NewForbiddenError(message string, err error) *APIError {
	return newAPIError(http.StatusForbidden, message, err)
}

func NewInternalError(message string, err error) *APIError {
	return newAPIError(http.StatusInternalServerError, message, err)
}

// fromServiceError maps service and store errors to the HTTP contract.
func fromServiceError(message string, err error) *APIError {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return &APIError{Code: http.StatusBadRequest, Message: verr.Error()}
	case errors.Is(err, store.ErrNotFound):
		return NewNotFoundError("Record not found", nil)
	case errors.Is(err, services.ErrNotConfigured):
		return &APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	default:
		return NewInternalError(message, err)
	}
}

func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}
	return http.StatusInternalServerError
}

// ErrorHandler renders every error as {error, details?}.
func ErrorHandler(c echo.Context, err error) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		code := statusOf(err)
		apiErr = &APIError{Code: code, Message: http.StatusText(code)}
		if code == http.StatusInternalServerError {
			apiErr.Message = "Internal server error"
			apiErr.Details = err.Error()
		}
	}

	if apiErr.Code >= http.StatusInternalServerError {
		slog.Error("Request failed",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"error", apiErr.Error(),
		)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(apiErr.Code)
	} else {
		writeErr = c.JSON(apiErr.Code, apiErr)
	}
	if writeErr != nil {
		slog.Error("Failed to write error response", "error", writeErr)
	}
}

// success writes {success: true, ...payload}.
func success(c echo.Context, code int, payload map[string]any) error {
	body := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["success"] = true
	return c.JSON(code, body)
}
