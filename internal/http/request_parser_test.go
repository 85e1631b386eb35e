package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bullfinance/internal/auth"
	"bullfinance/internal/core"
	"bullfinance/internal/finance"
)

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string    `json:"name"`
		Date core.Date `json:"date"`
	}

	tests := []struct {
		name    string
		body    string
		wantMsg string
		wantErr error
	}{
		{name: "valid", body: `{"name":"ok","date":"2025-01-31"}`},
		{name: "empty", body: ``, wantMsg: "request body is empty"},
		{name: "unknown field", body: `{"name":"ok","extra":1}`, wantMsg: "malformed JSON body"},
		{name: "trailing object", body: `{"name":"a"}{"name":"b"}`, wantMsg: "single JSON object"},
		{name: "bad date", body: `{"date":"31/01/2025"}`, wantErr: core.ErrInvalidDate},
		{name: "too large", body: `{"name":"` + strings.Repeat("x", maxBodyBytes) + `"}`, wantMsg: "request body too large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst payload
			err := decodeJSON(httptest.NewRecorder(), req, &dst)

			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("decodeJSON() error = %v, want %v", err, tt.wantErr)
				}
			case tt.wantMsg != "":
				var reqErr *requestError
				if !errors.As(err, &reqErr) || !strings.Contains(reqErr.msg, tt.wantMsg) {
					t.Errorf("decodeJSON() error = %v, want request error containing %q", err, tt.wantMsg)
				}
			default:
				if err != nil {
					t.Fatalf("decodeJSON() error = %v", err)
				}
				if dst.Name != "ok" || dst.Date.String() != "2025-01-31" {
					t.Errorf("decoded = %+v", dst)
				}
			}
		})
	}
}

func TestScopeFrom(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard?customer_id=+cust-1+", nil)
	if got := scopeFrom(req); got.CompanyID != "" || got.CustomerID != "cust-1" {
		t.Errorf("scope without claims = %+v", got)
	}

	ctx := auth.WithClaims(req.Context(), &auth.Claims{CompanyID: "company-1"})
	got := scopeFrom(req.WithContext(ctx))
	if got.CompanyID != "company-1" || got.CustomerID != "cust-1" {
		t.Errorf("scope = %+v", got)
	}
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		query   string
		want    finance.Period
		wantErr bool
	}{
		{"", finance.PeriodMonth, false},
		{"?period=quarter", finance.PeriodQuarter, false},
		{"?period=year", finance.PeriodYear, false},
		{"?period=week", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := parsePeriod(httptest.NewRequest(http.MethodGet, "/api/dre"+tt.query, nil))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parsePeriod() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("parsePeriod() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPathID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{"abc-123", false},
		{"", true},
		{strings.Repeat("a", 65), true},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.SetPathValue("id", tt.id)
		_, err := pathID(req)
		if (err != nil) != tt.wantErr {
			t.Errorf("pathID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
		}
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Aluguel  ", "Aluguel"},
		{"linha\x00nula", "linhanula"},
		{"tab\tok\nnewline", "tab\tok\nnewline"},
		{"\x1b[31mvermelho", "[31mvermelho"},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
