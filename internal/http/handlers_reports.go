package http

import (
	"fmt"
	"net/http"
	"strings"

	"bullfinance/internal/export"
	"bullfinance/internal/log"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Reports.Dashboard(r.Context(), scopeFrom(r)))
}

func (s *Server) handleDRE(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Reports.DRE(r.Context(), scopeFrom(r), period))
}

func (s *Server) handleCashFlow(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Reports.CashFlow(r.Context(), scopeFrom(r)))
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Reports.Management(r.Context(), scopeFrom(r), period))
}

// handleExport renders one report as a CSV download or a new Sheets tab.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	kind, err := export.ParseKind(r.PathValue("kind"))
	if err != nil {
		fail(w, r, badRequest("report kind must be dre, cashflow or monthly"))
		return
	}
	period, err := parsePeriod(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "sheets" {
		fail(w, r, badRequest("format must be csv or sheets"))
		return
	}
	if format == "sheets" && s.svc.Sheets == nil {
		fail(w, r, badRequest("sheets export is not configured"))
		return
	}

	ctx := r.Context()
	scope := scopeFrom(r)
	now := s.now()
	var doc export.Document
	switch kind {
	case export.KindDRE:
		doc = export.DREDocument(s.svc.Reports.DRE(ctx, scope, period), now)
	case export.KindCashFlow:
		doc = export.CashFlowDocument(s.svc.Reports.CashFlow(ctx, scope), now)
	default:
		doc = export.MonthlyDocument(s.svc.Reports.Management(ctx, scope, period), now)
	}

	logger := log.FromContext(ctx).WithComponent(log.ComponentExport)
	if format == "sheets" {
		res, err := s.svc.Sheets.Render(ctx, doc)
		if err != nil {
			fail(w, r, err)
			return
		}
		logger.Info("Report exported", log.FieldReport, string(kind), log.FieldFormat, format)
		writeJSON(w, http.StatusCreated, res)
		return
	}

	w.Header().Set("Content-Type", export.ContentTypeCSV)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-%s.csv"`, kind, now.Format("20060102-1504")))
	if err := s.csv.Render(w, doc); err != nil {
		logger.Error("CSV export failed", log.FieldReport, string(kind), log.FieldError, err.Error())
		return
	}
	logger.Info("Report exported", log.FieldReport, string(kind), log.FieldFormat, format)
}
