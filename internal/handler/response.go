// Package handler is the HTTP layer: it decodes requests, calls a service
// and encodes the result. Handlers never touch the database.
package handler

// RESPONSE HELPERS:
// Every JSON response goes through writeJSON, every failure through
// writeError, so the error body always has the same shape:
//
//	{"error": "duplicate_swipe", "message": "already swiped on this profile"}

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/sparko/internal/apperror"
	"github.com/sakif/sparko/internal/auth"
)

// maxBodyBytes caps request bodies. Profiles are the largest thing a client
// sends and stay far below this.
const maxBodyBytes = 1 << 20

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`           // Machine-readable error kind (e.g., "not_found")
	Message string `json:"message"`         // Human-readable description
	Field   string `json:"field,omitempty"` // Offending input field, when known
}

// writeJSON sends a JSON response with the given status code.
//
// Headers and status must be written BEFORE the body: once Encode writes,
// later header changes are silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// headers are already sent, all we can do is log
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// errorKinds maps each apperror sentinel to its status and stable kind.
// Order matters only in that the first match wins.
var errorKinds = []struct {
	err    error
	status int
	kind   string
}{
	{apperror.ErrValidation, http.StatusBadRequest, "validation_error"},
	{apperror.ErrInvalidRole, http.StatusBadRequest, "invalid_role"},
	{apperror.ErrInvalidAction, http.StatusBadRequest, "invalid_action"},
	{apperror.ErrDuplicateSwipe, http.StatusBadRequest, "duplicate_swipe"},
	{apperror.ErrQuotaExhausted, http.StatusBadRequest, "quota_exhausted"},
	{apperror.ErrNotFound, http.StatusNotFound, "not_found"},
	{apperror.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{apperror.ErrForbidden, http.StatusForbidden, "forbidden"},
	{apperror.ErrConflict, http.StatusConflict, "conflict"},
	{apperror.ErrStorageConflict, http.StatusConflict, "storage_conflict"},
}

// writeError maps a domain error to an HTTP status and sends it.
//
// Services return apperror kinds; only this function knows which status
// each kind becomes. errors.Is walks the whole wrap chain, so a service may
// add context with fmt.Errorf("...: %w", err) freely.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		for _, k := range errorKinds {
			if errors.Is(err, k.err) {
				writeJSON(w, k.status, ErrorResponse{
					Error:   k.kind,
					Message: appErr.Message,
					Field:   appErr.Field,
				})
				return
			}
		}
	}

	// Unknown error: generic 500. The raw message might carry SQL or paths.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// decodeJSON reads a single JSON object from the request body into dst.
// Malformed bodies come back as validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.ValidationFailed("body", "request body is required")
		}
		return apperror.ValidationFailed("body", fmt.Sprintf("invalid JSON body: %v", err))
	}
	return nil
}

// requireUser returns the authenticated user id that RequireAuth put on the
// request context.
func requireUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return 0, false
	}
	return userID, true
}
