// Package http exposes the finance services as a JSON API.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"bullfinance/internal/auth"
	"bullfinance/internal/chat"
	"bullfinance/internal/export"
	"bullfinance/internal/log"
	"bullfinance/internal/middleware/ratelimit"
	"bullfinance/internal/middleware/security"
	"bullfinance/internal/middleware/trace"
	"bullfinance/internal/services"
)

// Services groups everything the handlers call. Sheets and Ready are optional.
type Services struct {
	Auth      *auth.Service
	Tokens    *auth.TokenIssuer
	Records   *services.RecordService
	Reports   *services.ReportService
	Bank      *services.BankService
	Scheduler *services.RecurrenceScheduler
	Chat      *chat.Relay
	Sheets    *export.SheetsRenderer
	Ready     func(context.Context) error
}

type Options struct {
	Logger         *log.Logger
	RateLimit      int
	TrustedProxies []string
	CORSOrigin     string
}

type Server struct {
	http.Server
	svc      Services
	csv      export.CSVRenderer
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	now      func() time.Time

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc Services, opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	detector, err := security.NewDetector(opts.TrustedProxies...)
	if err != nil {
		return nil, err
	}

	s := &Server{
		svc:      svc,
		csv:      export.NewCSVRenderer(),
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimit}),
		detector: detector,
		tracer:   trace.NewMiddleware(opts.Logger, detector.ClientIP),
		now:      time.Now,
	}

	mux := http.NewServeMux()
	s.routes(mux)

	headers := security.DefaultHeadersConfig()
	headers.AllowedOrigin = opts.CORSOrigin

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.tracer.Middleware(security.Headers(headers)(s.guard(mux))),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	authed := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, s.svc.Tokens.Middleware(s.unauthorized)(h))
	}

	authed("GET /api/dashboard", s.handleDashboard)
	authed("GET /api/dre", s.handleDRE)
	authed("GET /api/cashflow", s.handleCashFlow)
	authed("GET /api/reports", s.handleReports)
	authed("GET /api/reports/{kind}/export", s.handleExport)

	authed("GET /api/customers", s.handleListCustomers)
	authed("POST /api/customers", s.handleCreateCustomer)
	authed("GET /api/suppliers", s.handleListSuppliers)
	authed("POST /api/suppliers", s.handleCreateSupplier)
	authed("GET /api/invoices", s.handleListInvoices)
	authed("POST /api/invoices", s.handleCreateInvoice)
	authed("GET /api/expenses", s.handleListExpenses)
	authed("POST /api/expenses", s.handleCreateExpense)
	authed("GET /api/receivables", s.handleListReceivables)
	authed("POST /api/receivables", s.handleCreateReceivable)
	authed("POST /api/receivables/{id}/status", s.handleReceivableStatus)
	authed("GET /api/payables", s.handleListPayables)
	authed("POST /api/payables", s.handleCreatePayable)
	authed("POST /api/payables/{id}/status", s.handlePayableStatus)

	authed("GET /api/bank-accounts", s.handleListBankAccounts)
	authed("POST /api/bank-accounts", s.handleCreateBankAccount)
	authed("GET /api/bank-accounts/{id}/movements", s.handleListMovements)
	authed("POST /api/bank-accounts/{id}/movements", s.handlePostMovement)
	authed("POST /api/bank-accounts/{id}/movements/import", s.handleImportStatement)

	authed("GET /api/recurring", s.handleListRecurring)
	authed("POST /api/recurring", s.handleCreateRecurring)
	authed("POST /api/recurring/{id}/generate", s.handleGenerate)
	authed("POST /api/recurring/{id}/active", s.handleSetActive)

	authed("POST /api/chat", s.handleChat)
}

// guard flags scanner traffic and rate limits mutating requests per client.
func (s *Server) guard(next http.Handler) http.Handler {
	limited := s.limiter.Middleware(s.detector.ClientIP, s.rateLimited)(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.Suspicious(r) {
			log.FromContext(r.Context()).Warn("Suspicious request",
				log.FieldClientIP, s.detector.ClientIP(r),
				log.FieldPath, r.URL.Path)
		}
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
		default:
			limited.ServeHTTP(w, r)
		}
	})
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).Warn("Rate limit exceeded",
		log.FieldClientIP, s.detector.ClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded, try again later"})
}

func (s *Server) unauthorized(w http.ResponseWriter, r *http.Request, err error) {
	writeJSON(w, http.StatusUnauthorized, errorBody{Error: err.Error()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.svc.Ready != nil {
		if err := s.svc.Ready(r.Context()); err != nil {
			slog.ErrorContext(r.Context(), "Readiness check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ready",
		"requests":   s.tracer.Metrics(),
		"rate_limit": s.limiter.Metrics(),
		"flagged":    s.detector.Flagged(),
	})
}

// Shutdown stops the limiter and drains the HTTP server once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// ListenAndServe treats a graceful close as success.
func (s *Server) ListenAndServe() error {
	if err := s.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
