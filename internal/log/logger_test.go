package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNew_JSONIncludesComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Format: "json", Component: ComponentWorker, Output: &buf})

	l.Info("tick", FieldCompanyID, "c1")
	l.Debug("hidden")

	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("output is not a single JSON record: %v\n%s", err, buf.String())
	}
	if rec[FieldComponent] != ComponentWorker || rec[FieldCompanyID] != "c1" {
		t.Errorf("record = %v", rec)
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Output: &buf}).WithComponent(ComponentHTTP)
	if l.Component() != ComponentHTTP {
		t.Errorf("Component() = %q", l.Component())
	}
	l.Warn("slow")
	if !strings.Contains(buf.String(), "component=http") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()).Component() != "unknown" {
		t.Error("empty context should fall back to the default logger")
	}
	l := New(Config{Component: ComponentChat})
	if got := FromContext(WithContext(context.Background(), l)); got != l {
		t.Error("FromContext should return the stored logger")
	}
}

func TestFields(t *testing.T) {
	f := NewFields().
		WithTenant("c1", "").
		WithError(errors.New("boom")).
		WithHTTPResponse(503, 12)
	if _, ok := f[FieldCustomerID]; ok {
		t.Error("empty customer should be omitted")
	}
	if f[FieldSuccess] != false || f[FieldError] != "boom" {
		t.Errorf("fields = %v", f)
	}
	if len(f.ToSlice()) != 2*len(f) {
		t.Error("ToSlice should yield key/value pairs")
	}
}
