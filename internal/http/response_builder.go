package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"bullfinance/internal/auth"
	"bullfinance/internal/chat"
	"bullfinance/internal/core"
	"bullfinance/internal/store"
)

type errorBody struct {
	Error string `json:"error"`
}

// validationErrors are reported as 422 with the sentinel's own message.
var validationErrors = []error{
	core.ErrInvalidDate,
	core.ErrInvalidAmount,
	core.ErrEmptyDescription,
	core.ErrDescriptionTooLong,
	core.ErrEmptyName,
	core.ErrMissingCompany,
	core.ErrMissingAccount,
	core.ErrInvalidStatus,
	core.ErrInvalidFrequency,
	core.ErrInvalidType,
	core.ErrInvalidCategory,
	core.ErrEndBeforeStart,
	auth.ErrWeakPassword,
	auth.ErrInvalidEmail,
	chat.ErrEmptyMessage,
	chat.ErrMessageTooLong,
}

// statusFor maps an error to its HTTP status and the message safe to show.
func statusFor(err error) (int, string) {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return http.StatusBadRequest, reqErr.msg
	}
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, store.ErrEmailTaken):
		return http.StatusConflict, store.ErrEmailTaken.Error()
	case errors.Is(err, store.ErrDuplicateOccurrence):
		return http.StatusConflict, store.ErrDuplicateOccurrence.Error()
	}
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return http.StatusUnprocessableEntity, v.Error()
		}
	}
	return http.StatusInternalServerError, "internal server error"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// fail writes the error response; unexpected errors are logged with the cause.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorBody{Error: msg})
}

// listBody wraps collections so empty results encode as [] rather than null.
func listBody[T any](items []T) map[string]any {
	if items == nil {
		items = []T{}
	}
	return map[string]any{"items": items}
}
