// Package finance derives dashboard totals, income statements and cash-flow
// projections from company-scoped financial records.
//
// Every function here is pure: it reads the records it is given and never
// fails. Missing collections are treated as empty, so every aggregate over an
// empty Dataset is zero.
package finance

import (
	"github.com/shopspring/decimal"

	"bullfinance/internal/core"
)

// Dataset is the set of records an aggregation runs over, already filtered
// by company and, where applicable, by customer.
type Dataset struct {
	Customers    []core.Customer
	Invoices     []core.Invoice
	Receivables  []core.Receivable
	Payables     []core.Payable
	Expenses     []core.Expense
	BankAccounts []core.BankAccount
}

// DashboardTotals are the headline figures of the dashboard.
type DashboardTotals struct {
	Revenue         decimal.Decimal `json:"revenue"`
	Expenses        decimal.Decimal `json:"expenses"`
	NetProfit       decimal.Decimal `json:"net_profit"`
	PendingInvoices int             `json:"pending_invoices"`
	InvoiceCount    int             `json:"invoice_count"`
	CustomerCount   int             `json:"customer_count"`
}

// Dashboard computes revenue as invoice totals plus received receivables and
// expenses as booked expenses plus paid payables.
func Dashboard(ds Dataset) DashboardTotals {
	revenue := invoiceTotals(ds.Invoices).Add(receivedTotal(ds.Receivables))
	expenses := expenseTotal(ds.Expenses).Add(paidTotal(ds.Payables))

	pending := 0
	for _, inv := range ds.Invoices {
		if inv.Status != core.InvoicePaid {
			pending++
		}
	}

	return DashboardTotals{
		Revenue:         revenue,
		Expenses:        expenses,
		NetProfit:       revenue.Sub(expenses),
		PendingInvoices: pending,
		InvoiceCount:    len(ds.Invoices),
		CustomerCount:   len(ds.Customers),
	}
}

func invoiceTotals(invoices []core.Invoice) decimal.Decimal {
	sum := decimal.Zero
	for _, inv := range invoices {
		sum = sum.Add(inv.Total)
	}
	return sum
}

func receivedTotal(receivables []core.Receivable) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range receivables {
		if r.Status == core.ReceivableReceived {
			sum = sum.Add(r.Amount)
		}
	}
	return sum
}

func paidTotal(payables []core.Payable) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range payables {
		if p.Status == core.PayablePaid {
			sum = sum.Add(p.Amount)
		}
	}
	return sum
}

func expenseTotal(expenses []core.Expense) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range expenses {
		sum = sum.Add(e.Amount)
	}
	return sum
}
