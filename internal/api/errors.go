package api

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"estatesim/internal/sim"
	"estatesim/internal/store"
)

// Error type constants for structured API errors.
const (
	ErrTypeValidation = "VALIDATION_ERROR"
	ErrTypeNotFound   = "NOT_FOUND"
	ErrTypeConflict   = "CONFLICT"
	ErrTypeRule       = "RULE_VIOLATION"
	ErrTypeInternal   = "INTERNAL_ERROR"
)

// APIError is the structured error payload every failure returns.
type APIError struct {
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Context   map[string]any `json:"context,omitempty"`
	RequestID string         `json:"requestId,omitempty"`
	Timestamp string         `json:"timestamp"`
}

func (e APIError) Error() string {
	return e.Type + ": " + e.Message
}

// ErrorHandler centralizes error classification, logging, and response
// writing.
type ErrorHandler struct {
	logger *slog.Logger
}

func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleError classifies err, logs it, and writes the JSON response.
// Engine rule rejections map to 409, lookups to 404, bad input to 400.
func (eh *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	status, errType := classify(err)
	apiErr := APIError{
		Type:      errType,
		Message:   err.Error(),
		RequestID: middleware.GetReqID(r.Context()),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if status >= 500 {
		eh.logger.Error("request failed",
			"method", r.Method, "path", r.URL.Path,
			"status", status, "error", err, "request_id", apiErr.RequestID)
	} else {
		eh.logger.Info("request rejected",
			"method", r.Method, "path", r.URL.Path,
			"status", status, "error", err, "request_id", apiErr.RequestID)
	}

	writeJSON(w, status, apiErr)
}

func classify(err error) (int, string) {
	var apiErr APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Type {
		case ErrTypeValidation:
			return http.StatusBadRequest, apiErr.Type
		case ErrTypeNotFound:
			return http.StatusNotFound, apiErr.Type
		case ErrTypeConflict, ErrTypeRule:
			return http.StatusConflict, apiErr.Type
		default:
			return http.StatusInternalServerError, apiErr.Type
		}
	}

	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, ErrTypeNotFound
	case errors.Is(err, store.ErrRoomFull), errors.Is(err, store.ErrRoomClosed):
		return http.StatusConflict, ErrTypeConflict
	case errors.Is(err, sim.ErrNoActionsRemaining),
		errors.Is(err, sim.ErrForcedActionPending),
		errors.Is(err, sim.ErrActionNotAvailable),
		errors.Is(err, sim.ErrWrongPhase),
		errors.Is(err, sim.ErrNothingToUndo):
		return http.StatusConflict, ErrTypeRule
	}
	return http.StatusInternalServerError, ErrTypeInternal
}

// RecoveryHandler converts panics into structured 500 responses
// instead of dropping the connection.
func (eh *ErrorHandler) RecoveryHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				eh.logger.Error("panic recovered",
					"method", r.Method, "path", r.URL.Path,
					"panic", rec, "stack", string(debug.Stack()))
				writeJSON(w, http.StatusInternalServerError, APIError{
					Type:      ErrTypeInternal,
					Message:   "internal server error",
					RequestID: middleware.GetReqID(r.Context()),
					Timestamp: time.Now().UTC().Format(time.RFC3339),
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func validationError(message string) APIError {
	return APIError{
		Type:      ErrTypeValidation,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

func notFoundError(message string) APIError {
	return APIError{
		Type:      ErrTypeNotFound,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

func conflictError(message string) APIError {
	return APIError{
		Type:      ErrTypeConflict,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
