// Package handlers exposes the portal services as Cloud Functions entry points.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Lllllllleong/healthportal/internal/auth"
	"github.com/Lllllllleong/healthportal/internal/models"
	"github.com/Lllllllleong/healthportal/internal/services"
)

var (
	errMissingToken = errors.New("missing bearer token")
	errNoSession    = errors.New("no signed-in user")
	errInvalidJSON  = errors.New("could not parse JSON")
	errInvalidLimit = errors.New("limit must be a positive integer")
)

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}

// writeError reports err to the caller with its raw message.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), models.ErrorResponse{Status: "error", Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrMissingFields),
		errors.Is(err, services.ErrPasswordMismatch),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrEmailExists),
		errors.Is(err, errInvalidJSON),
		errors.Is(err, errInvalidLimit):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrUserDisabled),
		errors.Is(err, errMissingToken),
		errors.Is(err, errNoSession):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrTooManyAttempts):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads the request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		slog.Warn("Could not decode request body", "error", err)
		return errInvalidJSON
	}
	return nil
}

// bearerToken extracts the ID token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// allowMethod rejects requests whose method is not one of methods.
func allowMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	writeJSON(w, http.StatusMethodNotAllowed, models.ErrorResponse{Status: "error", Error: "method not allowed"})
	return false
}
