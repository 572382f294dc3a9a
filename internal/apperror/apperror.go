// Package apperror holds the error conditions shared by the marketplace
// services and their mapping onto HTTP status codes.
package apperror

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrAlreadyProcessed    = errors.New("request has already been processed")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrValidation          = errors.New("validation failed")
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
	ErrForbidden           = errors.New("admin role required")
	ErrConflict            = errors.New("conflict")
)

// HTTPStatus maps an error (possibly wrapped) to the status code returned
// to the client.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyProcessed), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text safe to show a client. Unknown errors are
// reduced to a generic message so driver details never leak.
func Message(err error) string {
	if HTTPStatus(err) == http.StatusInternalServerError {
		return "Internal server error"
	}
	return err.Error()
}
