// errors.go - Structured error handling for API responses
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jeevamani007/data-analysis-sub000/internal/collector"
	"github.com/jeevamani007/data-analysis-sub000/internal/pipeline"
	"github.com/jeevamani007/data-analysis-sub000/internal/remote"
)

// APIError represents a structured API error response
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(resource string, id string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// NewConflictError creates a 409 Conflict error
func NewConflictError(message string) *APIError {
	return &APIError{
		Status:  http.StatusConflict,
		Code:    "CONFLICT",
		Message: message,
	}
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewBadGatewayError creates a 502 error for analysis-service failures
func NewBadGatewayError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadGateway,
		Code:    "UPSTREAM_ERROR",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// mapDomainError translates well-known pipeline and collector errors into
// their API shapes. Unrecognized errors pass through untouched for the
// Echo error handler to classify.
func mapDomainError(err error) error {
	var mixed *collector.MixedTypeError
	var svcErr *remote.ServiceError
	var transErr *remote.TransportError

	switch {
	case errors.Is(err, pipeline.ErrRunNotFound):
		return NewNotFoundError("run", "")
	case errors.Is(err, pipeline.ErrStageBusy):
		return NewConflictError("a pipeline stage is already in progress")
	case errors.Is(err, pipeline.ErrInvalidStage):
		return NewConflictError(err.Error())
	case errors.Is(err, collector.ErrEmptyBatch):
		return NewBadRequestError("no files staged for analysis", nil)
	case errors.As(err, &mixed):
		return NewBadRequestError(mixed.Error(), nil)
	case errors.As(err, &svcErr):
		return NewBadGatewayError("analysis service rejected the request", svcErr)
	case errors.As(err, &transErr):
		return NewBadGatewayError("analysis service unreachable", transErr)
	}
	return err
}

// ErrorHandler middleware for Echo
// Usage: e.HTTPErrorHandler = api.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError

	switch e := mapDomainError(err).(type) {
	case *APIError:
		apiErr = e
	case *echo.HTTPError:
		apiErr = &APIError{
			Status:  e.Code,
			Code:    "HTTP_ERROR",
			Message: fmt.Sprintf("%v", e.Message),
		}
	default:
		apiErr = &APIError{
			Status:  http.StatusInternalServerError,
			Code:    "UNKNOWN_ERROR",
			Message: "An unexpected error occurred",
			Details: err.Error(),
		}
	}

	if !c.Response().Committed {
		c.JSON(apiErr.Status, apiErr)
	}
}
