package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/api-sage/account-transfer-service/src/internal/adapter/http/middleware"
	"github.com/api-sage/account-transfer-service/src/internal/commons"
	"github.com/api-sage/account-transfer-service/src/internal/domain"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// statusFor maps the domain error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusConflict
	case errors.Is(err, domain.ErrLockTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func messageFor(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "validation failed"
	case http.StatusNotFound:
		return "not found"
	case http.StatusConflict:
		return "insufficient funds"
	case http.StatusServiceUnavailable:
		return "account busy, retry later"
	default:
		return "internal error"
	}
}

// detailFor strips the sentinel prefix so clients see the specific reason.
// Internal errors are not echoed.
func detailFor(err error, status int) string {
	if status == http.StatusInternalServerError {
		return "Unable to process request right now"
	}
	msg := err.Error()
	for _, sentinel := range []error{domain.ErrValidation, domain.ErrNotFound, domain.ErrInsufficientFunds, domain.ErrLockTimeout} {
		msg = strings.TrimPrefix(msg, sentinel.Error()+": ")
	}
	return msg
}

// writeError writes the error envelope with the status mapped from err.
func writeError(w http.ResponseWriter, r *http.Request, err error, start time.Time) {
	status := statusFor(err)
	response := commons.ErrorResponse[struct{}](messageFor(status), detailFor(err, status)).
		WithRequestID(middleware.RequestIDFromContext(r.Context()))

	logError(r, err, nil)
	writeJSON(w, status, response)
	logResponse(r, status, response, start)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}
