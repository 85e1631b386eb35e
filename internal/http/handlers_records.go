package http

import (
	"net/http"

	"bullfinance/internal/core"
	"bullfinance/internal/finance"
)

type statusRequest struct {
	Status      string    `json:"status"`
	PaymentDate core.Date `json:"payment_date"`
}

func (s *Server) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.Records.Customers(r.Context(), companyID(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listBody(items))
}

func (s *Server) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var c core.Customer
	if err := decodeJSON(w, r, &c); err != nil {
		fail(w, r, err)
		return
	}
	c.ID, c.CompanyID = "", companyID(r)
	sanitizeParty(&c)
	created, err := s.svc.Records.CreateCustomer(r.Context(), c)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListSuppliers(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.Records.Suppliers(r.Context(), companyID(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listBody(items))
}

func (s *Server) handleCreateSupplier(w http.ResponseWriter, r *http.Request) {
	var sup core.Supplier
	if err := decodeJSON(w, r, &sup); err != nil {
		fail(w, r, err)
		return
	}
	sup.ID, sup.CompanyID = "", companyID(r)
	sanitizeParty(&sup)
	created, err := s.svc.Records.CreateSupplier(r.Context(), sup)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func sanitizeParty(p *core.Party) {
	p.Name = sanitizeInput(p.Name)
	p.Email = sanitizeInput(p.Email)
	p.Phone = sanitizeInput(p.Phone)
	p.Document = sanitizeInput(p.Document)
}

func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.Records.Invoices(r.Context(), scopeFrom(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listBody(items))
}

func (s *Server) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	var inv core.Invoice
	if err := decodeJSON(w, r, &inv); err != nil {
		fail(w, r, err)
		return
	}
	inv.ID, inv.CompanyID = "", companyID(r)
	inv.Number = sanitizeInput(inv.Number)
	created, err := s.svc.Records.CreateInvoice(r.Context(), inv)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.Records.Expenses(r.Context(), companyID(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listBody(items))
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var e core.Expense
	if err := decodeJSON(w, r, &e); err != nil {
		fail(w, r, err)
		return
	}
	e.ID, e.CompanyID = "", companyID(r)
	e.Description = sanitizeInput(e.Description)
	created, err := s.svc.Records.CreateExpense(r.Context(), e)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListReceivables(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.Records.Receivables(r.Context(), scopeFrom(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	body := listBody(items)
	body["totals"] = finance.ReceivableTotals(items)
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleCreateReceivable(w http.ResponseWriter, r *http.Request) {
	var rec core.Receivable
	if err := decodeJSON(w, r, &rec); err != nil {
		fail(w, r, err)
		return
	}
	rec.ID, rec.CompanyID = "", companyID(r)
	rec.Description = sanitizeInput(rec.Description)
	created, err := s.svc.Records.CreateReceivable(r.Context(), rec)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleReceivableStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err)
		return
	}
	updated, err := s.svc.Records.SetReceivableStatus(r.Context(), companyID(r), id, core.ReceivableStatus(req.Status), req.PaymentDate)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleListPayables(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.Records.Payables(r.Context(), scopeFrom(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	body := listBody(items)
	body["totals"] = finance.PayableTotals(items)
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleCreatePayable(w http.ResponseWriter, r *http.Request) {
	var p core.Payable
	if err := decodeJSON(w, r, &p); err != nil {
		fail(w, r, err)
		return
	}
	p.ID, p.CompanyID = "", companyID(r)
	p.Description = sanitizeInput(p.Description)
	created, err := s.svc.Records.CreatePayable(r.Context(), p)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handlePayableStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err)
		return
	}
	updated, err := s.svc.Records.SetPayableStatus(r.Context(), companyID(r), id, core.PayableStatus(req.Status), req.PaymentDate)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
