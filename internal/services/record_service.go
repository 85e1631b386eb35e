package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bullfinance/internal/core"
	"bullfinance/internal/store"
)

type recordStore interface {
	store.RecordReader
	store.RecordWriter
}

// RecordService validates and stores the company's financial records and
// keeps the report cache consistent with every write.
type RecordService struct {
	store       recordStore
	invalidator Invalidator
	now         func() time.Time
}

func NewRecordService(st recordStore, invalidator Invalidator) *RecordService {
	return &RecordService{store: st, invalidator: invalidator, now: time.Now}
}

func (s *RecordService) changed(ctx context.Context, companyID, kind, id string) {
	if s.invalidator != nil {
		s.invalidator.InvalidateCompany(companyID)
	}
	slog.InfoContext(ctx, "Record saved", "kind", kind, "id", id, "company_id", companyID)
}

func (s *RecordService) CreateCustomer(ctx context.Context, c core.Customer) (core.Customer, error) {
	if err := c.Validate(); err != nil {
		return core.Customer{}, err
	}
	created, err := s.store.CreateCustomer(ctx, c)
	if err != nil {
		return core.Customer{}, fmt.Errorf("create customer: %w", err)
	}
	s.changed(ctx, c.CompanyID, "customer", created.ID)
	return created, nil
}

func (s *RecordService) CreateSupplier(ctx context.Context, sup core.Supplier) (core.Supplier, error) {
	if err := sup.Validate(); err != nil {
		return core.Supplier{}, err
	}
	created, err := s.store.CreateSupplier(ctx, sup)
	if err != nil {
		return core.Supplier{}, fmt.Errorf("create supplier: %w", err)
	}
	s.changed(ctx, sup.CompanyID, "supplier", created.ID)
	return created, nil
}

// CreateInvoice fills Total from subtotal, discount and tax when it is not given.
func (s *RecordService) CreateInvoice(ctx context.Context, inv core.Invoice) (core.Invoice, error) {
	if inv.Status == "" {
		inv.Status = core.InvoiceDraft
	}
	if inv.Total.IsZero() {
		inv.Total = inv.Subtotal.Sub(inv.Discount).Add(inv.TaxAmount)
	}
	if err := inv.Validate(); err != nil {
		return core.Invoice{}, err
	}
	created, err := s.store.CreateInvoice(ctx, inv)
	if err != nil {
		return core.Invoice{}, fmt.Errorf("create invoice: %w", err)
	}
	s.changed(ctx, inv.CompanyID, "invoice", created.ID)
	return created, nil
}

func (s *RecordService) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if e.Status == "" {
		e.Status = core.ExpensePending
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	created, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	s.changed(ctx, e.CompanyID, "expense", created.ID)
	return created, nil
}

func (s *RecordService) CreateReceivable(ctx context.Context, r core.Receivable) (core.Receivable, error) {
	if r.Status == "" {
		r.Status = core.ReceivablePending
	}
	// Recurring ids are only assigned by the scheduler.
	r.RecurringID = ""
	if err := r.Validate(); err != nil {
		return core.Receivable{}, err
	}
	created, err := s.store.CreateReceivable(ctx, r)
	if err != nil {
		return core.Receivable{}, fmt.Errorf("create receivable: %w", err)
	}
	s.changed(ctx, r.CompanyID, "receivable", created.ID)
	return created, nil
}

func (s *RecordService) CreatePayable(ctx context.Context, p core.Payable) (core.Payable, error) {
	if p.Status == "" {
		p.Status = core.PayablePending
	}
	p.RecurringID = ""
	if err := p.Validate(); err != nil {
		return core.Payable{}, err
	}
	created, err := s.store.CreatePayable(ctx, p)
	if err != nil {
		return core.Payable{}, fmt.Errorf("create payable: %w", err)
	}
	s.changed(ctx, p.CompanyID, "payable", created.ID)
	return created, nil
}

func (s *RecordService) CreateBankAccount(ctx context.Context, a core.BankAccount) (core.BankAccount, error) {
	if err := a.Validate(); err != nil {
		return core.BankAccount{}, err
	}
	created, err := s.store.CreateBankAccount(ctx, a)
	if err != nil {
		return core.BankAccount{}, fmt.Errorf("create bank account: %w", err)
	}
	s.changed(ctx, a.CompanyID, "bank_account", created.ID)
	return created, nil
}

// SetReceivableStatus records a status change. Marking a receivable received
// without a payment date stamps today.
func (s *RecordService) SetReceivableStatus(ctx context.Context, companyID, id string, status core.ReceivableStatus, paymentDate core.Date) (core.Receivable, error) {
	if !status.Valid() {
		return core.Receivable{}, core.ErrInvalidStatus
	}
	switch {
	case status == core.ReceivableReceived && paymentDate.IsZero():
		paymentDate = core.DateOf(s.now())
	case status != core.ReceivableReceived:
		paymentDate = core.Date{}
	}
	r, err := s.store.UpdateReceivableStatus(ctx, companyID, id, status, paymentDate)
	if err != nil {
		return core.Receivable{}, fmt.Errorf("update receivable status: %w", err)
	}
	s.changed(ctx, companyID, "receivable", id)
	return r, nil
}

func (s *RecordService) SetPayableStatus(ctx context.Context, companyID, id string, status core.PayableStatus, paymentDate core.Date) (core.Payable, error) {
	if !status.Valid() {
		return core.Payable{}, core.ErrInvalidStatus
	}
	switch {
	case status == core.PayablePaid && paymentDate.IsZero():
		paymentDate = core.DateOf(s.now())
	case status != core.PayablePaid:
		paymentDate = core.Date{}
	}
	p, err := s.store.UpdatePayableStatus(ctx, companyID, id, status, paymentDate)
	if err != nil {
		return core.Payable{}, fmt.Errorf("update payable status: %w", err)
	}
	s.changed(ctx, companyID, "payable", id)
	return p, nil
}

func (s *RecordService) Customers(ctx context.Context, companyID string) ([]core.Customer, error) {
	return s.store.ListCustomers(ctx, companyID)
}

func (s *RecordService) Suppliers(ctx context.Context, companyID string) ([]core.Supplier, error) {
	return s.store.ListSuppliers(ctx, companyID)
}

func (s *RecordService) Invoices(ctx context.Context, scope core.Scope) ([]core.Invoice, error) {
	return s.store.ListInvoices(ctx, scope)
}

func (s *RecordService) Expenses(ctx context.Context, companyID string) ([]core.Expense, error) {
	return s.store.ListExpenses(ctx, companyID)
}

func (s *RecordService) Receivables(ctx context.Context, scope core.Scope) ([]core.Receivable, error) {
	return s.store.ListReceivables(ctx, scope)
}

func (s *RecordService) Payables(ctx context.Context, scope core.Scope) ([]core.Payable, error) {
	return s.store.ListPayables(ctx, scope)
}

func (s *RecordService) BankAccounts(ctx context.Context, companyID string) ([]core.BankAccount, error) {
	return s.store.ListBankAccounts(ctx, companyID)
}
