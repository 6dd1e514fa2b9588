package response

import (
	"net/http"

	"rbac/pkg/apperr"
)

const (
	StatusSuccess = "SUCCESS"
	StatusError   = "ERROR"

	internalMessage = "Internal server error."
)

// Response represents the uniform API envelope
type Response struct {
	Status  string `json:"status"` // "SUCCESS" or "ERROR"
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// Success returns a success envelope wrapping the data
func Success(message string, data any) Response {
	return Response{
		Status:  StatusSuccess,
		Message: message,
		Data:    data,
	}
}

// Error returns an error envelope with an optional payload
func Error(message string, data any) Response {
	return Response{
		Status:  StatusError,
		Message: message,
		Data:    data,
	}
}

// StatusFor maps a failure kind to its HTTP status code.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.BadInput:
		return http.StatusBadRequest
	case apperr.Unauthenticated:
		return http.StatusUnauthorized
	case apperr.Forbidden:
		return http.StatusForbidden
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Conflict:
		return http.StatusConflict
	case apperr.TooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// FromError classifies err and builds the status code and envelope for it.
// Unclassified and Internal errors never leak their text to the client.
func FromError(err error) (int, Response) {
	e, ok := apperr.As(err)
	if !ok || e.Kind == apperr.Internal {
		return http.StatusInternalServerError, Error(internalMessage, nil)
	}
	return StatusFor(e.Kind), Error(e.Message, e.Data)
}
