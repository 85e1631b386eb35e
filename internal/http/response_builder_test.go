package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bullfinance/internal/auth"
	"bullfinance/internal/core"
	"bullfinance/internal/store"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"request error", badRequest("invalid id"), http.StatusBadRequest, "invalid id"},
		{"credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error()},
		{"token", fmt.Errorf("parse: %w", auth.ErrInvalidToken), http.StatusUnauthorized, ""},
		{"not found", fmt.Errorf("get bank account: %w", store.ErrNotFound), http.StatusNotFound, "not found"},
		{"email taken", store.ErrEmailTaken, http.StatusConflict, store.ErrEmailTaken.Error()},
		{"duplicate occurrence", fmt.Errorf("materialize: %w", store.ErrDuplicateOccurrence), http.StatusConflict, store.ErrDuplicateOccurrence.Error()},
		{"validation wrapped", fmt.Errorf("%w: %q", core.ErrInvalidType, "weird"), http.StatusUnprocessableEntity, core.ErrInvalidType.Error()},
		{"invalid amount", core.ErrInvalidAmount, http.StatusUnprocessableEntity, core.ErrInvalidAmount.Error()},
		{"unexpected", errors.New("disk I/O error at /var/lib/db"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := statusFor(tt.err)
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
			if tt.wantMsg != "" && msg != tt.wantMsg {
				t.Errorf("msg = %q, want %q", msg, tt.wantMsg)
			}
		})
	}
}

func TestFailHidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	fail(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil), errors.New("secret connection string"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret") {
		t.Errorf("internal detail leaked: %s", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestListBody(t *testing.T) {
	rec := httptest.NewRecorder()
	var none []core.Customer
	writeJSON(rec, http.StatusOK, listBody(none))
	if got := strings.TrimSpace(rec.Body.String()); got != `{"items":[]}` {
		t.Errorf("empty list = %s", got)
	}
}
