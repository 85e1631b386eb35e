// Package store declares the storage ports the services depend on.
// Every read and write is scoped by company; implementations never return
// rows belonging to another company.
package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"bullfinance/internal/core"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrDuplicateOccurrence is returned when a recurring transaction already
	// has a record for the given occurrence date.
	ErrDuplicateOccurrence = errors.New("occurrence already materialized")
	ErrEmailTaken          = errors.New("email already registered")
)

// Ports for outbound adapters.
type (
	AccountStore interface {
		// CreateCompanyWithOwner creates a company and its first user together.
		CreateCompanyWithOwner(ctx context.Context, company core.Company, owner core.User) (core.Company, core.User, error)
		GetUserByEmail(ctx context.Context, email string) (core.User, error)
	}

	// RecordReader serves the collections aggregations run over.
	RecordReader interface {
		ListCustomers(ctx context.Context, companyID string) ([]core.Customer, error)
		ListSuppliers(ctx context.Context, companyID string) ([]core.Supplier, error)
		ListInvoices(ctx context.Context, scope core.Scope) ([]core.Invoice, error)
		ListReceivables(ctx context.Context, scope core.Scope) ([]core.Receivable, error)
		ListPayables(ctx context.Context, scope core.Scope) ([]core.Payable, error)
		ListExpenses(ctx context.Context, companyID string) ([]core.Expense, error)
		ListBankAccounts(ctx context.Context, companyID string) ([]core.BankAccount, error)
	}

	RecordWriter interface {
		CreateCustomer(ctx context.Context, c core.Customer) (core.Customer, error)
		CreateSupplier(ctx context.Context, s core.Supplier) (core.Supplier, error)
		CreateInvoice(ctx context.Context, inv core.Invoice) (core.Invoice, error)
		CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		CreateReceivable(ctx context.Context, r core.Receivable) (core.Receivable, error)
		CreatePayable(ctx context.Context, p core.Payable) (core.Payable, error)
		// CreateBankAccount opens the account with its current balance equal to its initial balance.
		CreateBankAccount(ctx context.Context, a core.BankAccount) (core.BankAccount, error)
		UpdateReceivableStatus(ctx context.Context, companyID, id string, status core.ReceivableStatus, paymentDate core.Date) (core.Receivable, error)
		UpdatePayableStatus(ctx context.Context, companyID, id string, status core.PayableStatus, paymentDate core.Date) (core.Payable, error)
	}

	BankLedger interface {
		GetBankAccount(ctx context.Context, companyID, id string) (core.BankAccount, error)
		// ApplyMovement stores the movement and adds its delta to the account
		// balance atomically, returning the new balance.
		ApplyMovement(ctx context.Context, m core.BankMovement) (core.BankMovement, decimal.Decimal, error)
		ListMovements(ctx context.Context, companyID, accountID string) ([]core.BankMovement, error)
	}

	RecurringStore interface {
		CreateRecurring(ctx context.Context, rt core.RecurringTransaction) (core.RecurringTransaction, error)
		GetRecurring(ctx context.Context, companyID, id string) (core.RecurringTransaction, error)
		ListRecurring(ctx context.Context, companyID string) ([]core.RecurringTransaction, error)
		// ListActiveRecurring returns active templates across all companies.
		ListActiveRecurring(ctx context.Context) ([]core.RecurringTransaction, error)
		SetRecurringActive(ctx context.Context, companyID, id string, active bool) error
		// MaterializeOccurrence inserts the occurrence record and advances the
		// template's last_generated watermark in one step.
		MaterializeOccurrence(ctx context.Context, companyID string, occ core.Occurrence) (recordID string, err error)
	}

	Store interface {
		AccountStore
		RecordReader
		RecordWriter
		BankLedger
		RecurringStore
		Close() error
	}
)
