package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	d, err := NewDetector("203.0.113.0/24")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		remote string
		xff    string
		xri    string
		want   string
	}{
		{"direct public peer", "198.51.100.7:5000", "1.2.3.4", "", "198.51.100.7"},
		{"trusted proxy with xff", "10.0.0.2:80", "1.2.3.4, 10.0.0.9", "", "1.2.3.4"},
		{"trusted proxy with bad xff", "10.0.0.2:80", "garbage", "5.6.7.8", "5.6.7.8"},
		{"extra trusted proxy", "203.0.113.5:80", "9.9.9.9", "", "9.9.9.9"},
		{"trusted proxy no headers", "127.0.0.1:80", "", "", "127.0.0.1"},
		{"unparseable remote", "pipe", "1.2.3.4", "", "pipe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := d.ClientIP(r); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewDetector_RejectsBadCIDR(t *testing.T) {
	if _, err := NewDetector("not-a-cidr"); err == nil {
		t.Error("expected error for invalid CIDR")
	}
}

func TestSuspicious(t *testing.T) {
	d, _ := NewDetector()
	probe := httptest.NewRequest(http.MethodGet, "/api/../../etc/passwd", nil)
	scanner := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	scanner.Header.Set("User-Agent", "sqlmap/1.7")
	normal := httptest.NewRequest(http.MethodGet, "/api/dashboard?period=month", nil)
	normal.Header.Set("User-Agent", "curl/8.0")

	if !d.Suspicious(probe) || !d.Suspicious(scanner) {
		t.Error("probe and scanner should be flagged")
	}
	if d.Suspicious(normal) {
		t.Error("normal request flagged")
	}
	if d.Flagged() != 2 {
		t.Errorf("Flagged() = %d", d.Flagged())
	}
}

func TestHeaders(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.TLS = &tls.ConnectionState{}
	Headers(DefaultHeadersConfig())(next).ServeHTTP(rec, req)

	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("Cache-Control = %q", rec.Header().Get("Cache-Control"))
	}
	if rec.Header().Get("Strict-Transport-Security") != "max-age=31536000; includeSubDomains" {
		t.Errorf("HSTS = %q", rec.Header().Get("Strict-Transport-Security"))
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("CORS headers set without an allowed origin")
	}

	cfg := DefaultHeadersConfig()
	cfg.AllowedOrigin = "https://app.example.com"
	rec = httptest.NewRecorder()
	Headers(cfg)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/dashboard", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d", rec.Code)
	}
}
