package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"bullfinance/internal/auth"
	"bullfinance/internal/core"
	"bullfinance/internal/finance"
)

const maxBodyBytes = 1 << 20

// requestError is a client mistake reported as 400 with its message.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{msg: fmt.Sprintf(format, args...)}
}

// decodeJSON reads a single JSON object, rejecting unknown fields and
// trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return badRequest("request body too large")
		case errors.Is(err, io.EOF):
			return badRequest("request body is empty")
		case errors.Is(err, core.ErrInvalidDate):
			return core.ErrInvalidDate
		default:
			return badRequest("malformed JSON body: %v", err)
		}
	}
	if dec.More() {
		return badRequest("request body must contain a single JSON object")
	}
	return nil
}

// scopeFrom builds the read scope from the token and the optional
// customer_id query parameter.
func scopeFrom(r *http.Request) core.Scope {
	claims, _ := auth.ClaimsFromContext(r.Context())
	scope := core.Scope{CustomerID: strings.TrimSpace(r.URL.Query().Get("customer_id"))}
	if claims != nil {
		scope.CompanyID = claims.CompanyID
	}
	return scope
}

func companyID(r *http.Request) string {
	return scopeFrom(r).CompanyID
}

func parsePeriod(r *http.Request) (finance.Period, error) {
	p, err := finance.ParsePeriod(strings.TrimSpace(r.URL.Query().Get("period")))
	if err != nil {
		return "", badRequest("period must be month, quarter or year")
	}
	return p, nil
}

// pathID returns a sanitized {id} path value.
func pathID(r *http.Request) (string, error) {
	id := sanitizeInput(r.PathValue("id"))
	if id == "" || len(id) > 64 {
		return "", badRequest("invalid id")
	}
	return id, nil
}

// sanitizeInput trims and drops control characters except tab and newlines.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}
