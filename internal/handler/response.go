package handler

// RESPONSE HELPERS:
// Every endpoint answers with the same JSON envelope:
//
//	{"success": true,  "message": "...", ...payload fields}
//	{"success": false, "message": "...", "errors": [...]?}
//
// The helpers below keep that shape in one place so no handler can drift
// from it. writeError is where domain errors (from the service layer) get
// translated to HTTP: the services return apperror values, never status
// codes, and this function maps them with errors.Is. That keeps the service
// layer protocol-agnostic.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/student-portal/internal/apperror"
)

// Envelope is the wire shape shared by every endpoint. Optional fields are
// omitted when empty, so a register response carries "user" but no
// "complaints", and vice versa.
type Envelope struct {
	Success    bool     `json:"success"`
	Message    string   `json:"message"`
	User       any      `json:"user,omitempty"`
	Complaint  any      `json:"complaint,omitempty"`
	Complaints any      `json:"complaints,omitempty"`
	Total      *int     `json:"total,omitempty"`
	Errors     []string `json:"errors,omitempty"`
}

// writeJSON sends a JSON response with the given status code.
//
// Headers and status MUST be written before the body: the first Write sends
// them, and changes after that are silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already gone; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to an HTTP status and the failure envelope.
//
// The service layer returns apperror values wrapped with fmt.Errorf("...: %w"),
// and errors.Is/As walk the whole chain, so wrapping depth doesn't matter here.
//
// Anything that is not an AppError is an unexpected store failure: it gets a
// generic 500. The underlying error is logged by the service layer, never
// echoed to the client, because raw driver errors can carry SQL fragments
// and file paths.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
		}

		writeJSON(w, status, Envelope{
			Success: false,
			Message: appErr.Message,
			Errors:  appErr.Errors,
		})
		return
	}

	writeJSON(w, http.StatusInternalServerError, Envelope{
		Success: false,
		Message: "An internal error occurred",
	})
}

// MethodNotAllowed is installed as the router's 405 handler so even wrong
// methods get the JSON envelope instead of chi's plain-text default.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, Envelope{
		Success: false,
		Message: "Method not allowed",
	})
}

// NotFoundRoute answers unknown paths with the same envelope shape.
func NotFoundRoute(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, Envelope{
		Success: false,
		Message: "Not found",
	})
}
