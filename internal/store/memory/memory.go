// Package memory is an in-process implementation of the store ports, used
// for local development and as the fake behind service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bullfinance/internal/core"
	"bullfinance/internal/store"
)

type Store struct {
	mu          sync.Mutex
	companies   map[string]core.Company
	users       map[string]core.User // by lower-cased email
	customers   []core.Customer
	suppliers   []core.Supplier
	invoices    []core.Invoice
	expenses    []core.Expense
	receivables []core.Receivable
	payables    []core.Payable
	accounts    []core.BankAccount
	movements   []core.BankMovement
	recurring   []core.RecurringTransaction
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		companies: make(map[string]core.Company),
		users:     make(map[string]core.User),
	}
}

func (s *Store) Close() error { return nil }

func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

func (s *Store) CreateCompanyWithOwner(_ context.Context, company core.Company, owner core.User) (core.Company, core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(owner.Email)
	if _, ok := s.users[key]; ok {
		return core.Company{}, core.User{}, store.ErrEmailTaken
	}
	company.ID = newID(company.ID)
	owner.ID = newID(owner.ID)
	owner.CompanyID = company.ID
	company.OwnerID = owner.ID
	if company.CreatedAt.IsZero() {
		company.CreatedAt = time.Now().UTC()
	}
	s.companies[company.ID] = company
	s.users[key] = owner
	return company, owner, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[strings.ToLower(email)]
	if !ok {
		return core.User{}, store.ErrNotFound
	}
	return u, nil
}

func (s *Store) CreateCustomer(_ context.Context, c core.Customer) (core.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = newID(c.ID)
	s.customers = append(s.customers, c)
	return c, nil
}

func (s *Store) CreateSupplier(_ context.Context, sup core.Supplier) (core.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sup.ID = newID(sup.ID)
	s.suppliers = append(s.suppliers, sup)
	return sup, nil
}

func (s *Store) CreateInvoice(_ context.Context, inv core.Invoice) (core.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv.ID = newID(inv.ID)
	s.invoices = append(s.invoices, inv)
	return inv, nil
}

func (s *Store) CreateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = newID(e.ID)
	s.expenses = append(s.expenses, e)
	return e, nil
}

func (s *Store) CreateReceivable(_ context.Context, r core.Receivable) (core.Receivable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = newID(r.ID)
	s.receivables = append(s.receivables, r)
	return r, nil
}

func (s *Store) CreatePayable(_ context.Context, p core.Payable) (core.Payable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = newID(p.ID)
	s.payables = append(s.payables, p)
	return p, nil
}

func (s *Store) CreateBankAccount(_ context.Context, a core.BankAccount) (core.BankAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = newID(a.ID)
	a.CurrentBalance = a.InitialBalance
	s.accounts = append(s.accounts, a)
	return a, nil
}

func (s *Store) UpdateReceivableStatus(_ context.Context, companyID, id string, status core.ReceivableStatus, paymentDate core.Date) (core.Receivable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.receivables {
		r := &s.receivables[i]
		if r.ID == id && r.CompanyID == companyID {
			r.Status = status
			r.PaymentDate = paymentDate
			return *r, nil
		}
	}
	return core.Receivable{}, store.ErrNotFound
}

func (s *Store) UpdatePayableStatus(_ context.Context, companyID, id string, status core.PayableStatus, paymentDate core.Date) (core.Payable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.payables {
		p := &s.payables[i]
		if p.ID == id && p.CompanyID == companyID {
			p.Status = status
			p.PaymentDate = paymentDate
			return *p, nil
		}
	}
	return core.Payable{}, store.ErrNotFound
}

func (s *Store) ListCustomers(_ context.Context, companyID string) ([]core.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter(s.customers, func(c core.Customer) bool { return c.CompanyID == companyID }), nil
}

func (s *Store) ListSuppliers(_ context.Context, companyID string) ([]core.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter(s.suppliers, func(c core.Supplier) bool { return c.CompanyID == companyID }), nil
}

func (s *Store) ListInvoices(_ context.Context, scope core.Scope) ([]core.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := filter(s.invoices, func(inv core.Invoice) bool {
		return inv.CompanyID == scope.CompanyID && matchCustomer(scope, inv.CustomerID)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].IssueDate.After(out[j].IssueDate.Time) })
	return out, nil
}

func (s *Store) ListReceivables(_ context.Context, scope core.Scope) ([]core.Receivable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := filter(s.receivables, func(r core.Receivable) bool {
		return r.CompanyID == scope.CompanyID && matchCustomer(scope, r.CustomerID)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate.Time) })
	return out, nil
}

func (s *Store) ListPayables(_ context.Context, scope core.Scope) ([]core.Payable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := filter(s.payables, func(p core.Payable) bool {
		return p.CompanyID == scope.CompanyID && matchCustomer(scope, p.CustomerID)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate.Time) })
	return out, nil
}

func (s *Store) ListExpenses(_ context.Context, companyID string) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter(s.expenses, func(e core.Expense) bool { return e.CompanyID == companyID }), nil
}

func (s *Store) ListBankAccounts(_ context.Context, companyID string) ([]core.BankAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter(s.accounts, func(a core.BankAccount) bool { return a.CompanyID == companyID }), nil
}

func (s *Store) GetBankAccount(_ context.Context, companyID, id string) (core.BankAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.accountIndex(companyID, id); i >= 0 {
		return s.accounts[i], nil
	}
	return core.BankAccount{}, store.ErrNotFound
}

func (s *Store) ApplyMovement(_ context.Context, m core.BankMovement) (core.BankMovement, decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.accountIndex(m.CompanyID, m.AccountID)
	if i < 0 {
		return core.BankMovement{}, decimal.Zero, fmt.Errorf("bank account %s: %w", m.AccountID, store.ErrNotFound)
	}
	m.ID = newID(m.ID)
	s.movements = append(s.movements, m)
	s.accounts[i].CurrentBalance = s.accounts[i].CurrentBalance.Add(m.Delta())
	return m, s.accounts[i].CurrentBalance, nil
}

func (s *Store) ListMovements(_ context.Context, companyID, accountID string) ([]core.BankMovement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := filter(s.movements, func(m core.BankMovement) bool {
		return m.CompanyID == companyID && (accountID == "" || m.AccountID == accountID)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date.Time) })
	return out, nil
}

func (s *Store) accountIndex(companyID, id string) int {
	for i, a := range s.accounts {
		if a.ID == id && a.CompanyID == companyID {
			return i
		}
	}
	return -1
}

func (s *Store) CreateRecurring(_ context.Context, rt core.RecurringTransaction) (core.RecurringTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt.ID = newID(rt.ID)
	s.recurring = append(s.recurring, rt)
	return rt, nil
}

func (s *Store) GetRecurring(_ context.Context, companyID, id string) (core.RecurringTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.recurringIndex(companyID, id); i >= 0 {
		return s.recurring[i], nil
	}
	return core.RecurringTransaction{}, store.ErrNotFound
}

func (s *Store) ListRecurring(_ context.Context, companyID string) ([]core.RecurringTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter(s.recurring, func(rt core.RecurringTransaction) bool { return rt.CompanyID == companyID }), nil
}

func (s *Store) ListActiveRecurring(_ context.Context) ([]core.RecurringTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter(s.recurring, func(rt core.RecurringTransaction) bool { return rt.Active }), nil
}

func (s *Store) SetRecurringActive(_ context.Context, companyID, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.recurringIndex(companyID, id)
	if i < 0 {
		return store.ErrNotFound
	}
	s.recurring[i].Active = active
	return nil
}

func (s *Store) MaterializeOccurrence(_ context.Context, companyID string, occ core.Occurrence) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.recurringIndex(companyID, occ.RecurringID)
	if i < 0 {
		return "", store.ErrNotFound
	}
	if s.occurrenceExists(occ.RecurringID, occ.Date) {
		return "", store.ErrDuplicateOccurrence
	}

	var id string
	switch {
	case occ.Receivable != nil:
		r := *occ.Receivable
		r.ID = newID(r.ID)
		s.receivables = append(s.receivables, r)
		id = r.ID
	case occ.Payable != nil:
		p := *occ.Payable
		p.ID = newID(p.ID)
		s.payables = append(s.payables, p)
		id = p.ID
	default:
		return "", fmt.Errorf("occurrence %s has no record", occ.Date)
	}
	s.recurring[i].LastGenerated = occ.Date
	return id, nil
}

func (s *Store) occurrenceExists(recurringID string, date core.Date) bool {
	for _, r := range s.receivables {
		if r.RecurringID == recurringID && r.DueDate.Equal(date.Time) {
			return true
		}
	}
	for _, p := range s.payables {
		if p.RecurringID == recurringID && p.DueDate.Equal(date.Time) {
			return true
		}
	}
	return false
}

func (s *Store) recurringIndex(companyID, id string) int {
	for i, rt := range s.recurring {
		if rt.ID == id && rt.CompanyID == companyID {
			return i
		}
	}
	return -1
}

func matchCustomer(scope core.Scope, customerID string) bool {
	return scope.CustomerID == "" || scope.CustomerID == customerID
}

func filter[T any](in []T, keep func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
