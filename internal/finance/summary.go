package finance

import (
	"github.com/shopspring/decimal"

	"bullfinance/internal/core"
)

// StatusTotals splits a list of receivables or payables by status.
type StatusTotals struct {
	Settled decimal.Decimal `json:"settled"`
	Pending decimal.Decimal `json:"pending"`
	Overdue decimal.Decimal `json:"overdue"`
	Count   int             `json:"count"`
}

func ReceivableTotals(rs []core.Receivable) StatusTotals {
	t := StatusTotals{Count: len(rs)}
	for _, r := range rs {
		switch r.Status {
		case core.ReceivableReceived:
			t.Settled = t.Settled.Add(r.Amount)
		case core.ReceivablePending:
			t.Pending = t.Pending.Add(r.Amount)
		case core.ReceivableOverdue:
			t.Overdue = t.Overdue.Add(r.Amount)
		}
	}
	return t
}

func PayableTotals(ps []core.Payable) StatusTotals {
	t := StatusTotals{Count: len(ps)}
	for _, p := range ps {
		switch p.Status {
		case core.PayablePaid:
			t.Settled = t.Settled.Add(p.Amount)
		case core.PayablePending:
			t.Pending = t.Pending.Add(p.Amount)
		case core.PayableOverdue:
			t.Overdue = t.Overdue.Add(p.Amount)
		}
	}
	return t
}

// MovementSummary totals the credits and debits of a statement.
type MovementSummary struct {
	TotalCredit decimal.Decimal `json:"total_credit"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	Balance     decimal.Decimal `json:"balance"`
}

func MovementTotals(ms []core.BankMovement) MovementSummary {
	var s MovementSummary
	for _, m := range ms {
		if m.Type == core.Debit {
			s.TotalDebit = s.TotalDebit.Add(m.Amount)
		} else {
			s.TotalCredit = s.TotalCredit.Add(m.Amount)
		}
	}
	s.Balance = s.TotalCredit.Sub(s.TotalDebit)
	return s
}

// RecurringOverview counts templates and the net monthly commitment of the
// active monthly ones.
type RecurringOverview struct {
	Active      int             `json:"active"`
	Receivables int             `json:"receivables"`
	Payables    int             `json:"payables"`
	MonthlyNet  decimal.Decimal `json:"monthly_net"`
}

func RecurringSummary(rts []core.RecurringTransaction) RecurringOverview {
	var o RecurringOverview
	for _, rt := range rts {
		if rt.Type == core.RecurringReceivable {
			o.Receivables++
		} else {
			o.Payables++
		}
		if !rt.Active {
			continue
		}
		o.Active++
		if rt.Frequency != core.Monthly {
			continue
		}
		if rt.Type == core.RecurringReceivable {
			o.MonthlyNet = o.MonthlyNet.Add(rt.Amount)
		} else {
			o.MonthlyNet = o.MonthlyNet.Sub(rt.Amount)
		}
	}
	return o
}
