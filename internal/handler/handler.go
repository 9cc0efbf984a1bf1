package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"bazaar/internal/middleware"
	"bazaar/internal/model"

	"github.com/rs/zerolog"
)

// statusForCode maps domain error codes to HTTP statuses. Unknown codes
// fall through to 500.
var statusForCode = map[string]int{
	model.ErrCodeInvalidJSON:           http.StatusBadRequest,
	model.ErrCodeValidation:            http.StatusBadRequest,
	model.ErrCodeInvalidTransition:     http.StatusBadRequest,
	model.ErrCodeCartEmpty:             http.StatusBadRequest,
	model.ErrCodeOrderNotFound:         http.StatusNotFound,
	model.ErrCodeProductNotFound:       http.StatusNotFound,
	model.ErrCodeCouponNotFound:        http.StatusNotFound,
	model.ErrCodePaymentNotFound:       http.StatusNotFound,
	model.ErrCodeRefundNotFound:        http.StatusNotFound,
	model.ErrCodeCouponExpired:         http.StatusConflict,
	model.ErrCodeCouponExhausted:       http.StatusConflict,
	model.ErrCodeCouponUserLimit:       http.StatusConflict,
	model.ErrCodeInsufficientStock:     http.StatusConflict,
	model.ErrCodeAmountMismatch:        http.StatusConflict,
	model.ErrCodePaymentAlreadySettled: http.StatusConflict,
	model.ErrCodeOrderNotRefundable:    http.StatusConflict,
	model.ErrCodeRefundAlreadyPending:  http.StatusConflict,
	model.ErrCodeRefundAlreadyResolved: http.StatusConflict,
	model.ErrCodeUnauthorised:          http.StatusUnauthorized,
	model.ErrCodeForbidden:             http.StatusForbidden,
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError maps a service error to its HTTP response. Domain errors carry
// their code and message; anything else becomes an opaque 500.
func writeError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		status, ok := statusForCode[domainErr.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		logger.Warn().
			Str("code", domainErr.Code).
			Int("status", status).
			Msg(domainErr.Message)
		writeJSON(w, status, model.ErrorResponse{Error: domainErr.Code, Message: domainErr.Message})
		return
	}

	logger.Error().Err(err).Msg("handler error")
	writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
		Error:   model.ErrCodeInternalError,
		Message: "internal server error",
	})
}

// writeValidationError writes a 400 with the given message.
func writeValidationError(w http.ResponseWriter, code, message string) {
	writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: code, Message: message})
}

// principal extracts the authenticated principal, writing a 401 when absent.
func principal(w http.ResponseWriter, r *http.Request) (middleware.Principal, bool) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, model.ErrorResponse{
			Error:   model.ErrCodeUnauthorised,
			Message: "authentication required",
		})
	}
	return p, ok
}
