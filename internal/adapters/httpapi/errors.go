package httpapi

import (
	"errors"
	"net/http"

	"loanlocator/internal/auth"
	"loanlocator/internal/core"
	"loanlocator/internal/lookup"
	"loanlocator/pkg/domain"
)

// classify maps an error to its HTTP status and machine-readable code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, lookup.ErrEmptyInput):
		return http.StatusBadRequest, "empty_input"
	case errors.Is(err, lookup.ErrNonNumericInput):
		return http.StatusBadRequest, "non_numeric_input"
	case errors.Is(err, lookup.ErrSourceUnavailable), errors.Is(err, lookup.ErrNotLoaded):
		return http.StatusServiceUnavailable, "source_unavailable"
	case errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrConfirmationRequired):
		return http.StatusBadRequest, "confirmation_required"
	case errors.Is(err, domain.ErrMalformedRange):
		return http.StatusBadRequest, "malformed_range"
	case errors.Is(err, domain.ErrInvalidPayload):
		return http.StatusBadRequest, "invalid_payload"
	case core.IsValidation(err):
		return http.StatusBadRequest, "invalid_field"
	case errors.Is(err, domain.ErrDuplicateKey):
		return http.StatusConflict, "duplicate_key"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, core.ErrArchiveDisabled):
		return http.StatusNotImplemented, "archive_disabled"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	status, code := classify(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err)
		message = "internal error"
	}
	writeError(w, status, code, message)
}
