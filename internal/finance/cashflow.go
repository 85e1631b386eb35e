package finance

import (
	"github.com/shopspring/decimal"

	"bullfinance/internal/core"
)

const (
	cashFlowSamples  = 7
	cashFlowStepDays = 5
)

// CashFlowPoint is one sample of the forward projection.
type CashFlowPoint struct {
	Date    core.Date       `json:"date"`
	Inflow  decimal.Decimal `json:"inflow"`
	Outflow decimal.Decimal `json:"outflow"`
	Balance decimal.Decimal `json:"balance"`
}

// CashFlow is a coarse linear projection of the company's cash position.
type CashFlow struct {
	CurrentBalance   decimal.Decimal `json:"current_balance"`
	Receivables      decimal.Decimal `json:"receivables"`
	Payables         decimal.Decimal `json:"payables"`
	ProjectedBalance decimal.Decimal `json:"projected_balance"`
	TotalInflow      decimal.Decimal `json:"total_inflow"`
	TotalOutflow     decimal.Decimal `json:"total_outflow"`
	Series           []CashFlowPoint `json:"series"`
}

// ProjectCashFlow sums active account balances and projects them forward
// using outstanding (pending or overdue) receivables and payables. The
// series accumulates pending and settled records due by each sample date;
// overdue ones are left out of it.
func ProjectCashFlow(ds Dataset, today core.Date) CashFlow {
	current := decimal.Zero
	for _, a := range ds.BankAccounts {
		if a.Active {
			current = current.Add(a.CurrentBalance)
		}
	}

	receivables, received := decimal.Zero, decimal.Zero
	for _, r := range ds.Receivables {
		switch {
		case r.Status.Outstanding():
			receivables = receivables.Add(r.Amount)
		case r.Status == core.ReceivableReceived:
			received = received.Add(r.Amount)
		}
	}

	payables, paid := decimal.Zero, decimal.Zero
	for _, p := range ds.Payables {
		switch {
		case p.Status.Outstanding():
			payables = payables.Add(p.Amount)
		case p.Status == core.PayablePaid:
			paid = paid.Add(p.Amount)
		}
	}

	cf := CashFlow{
		CurrentBalance:   current,
		Receivables:      receivables,
		Payables:         payables,
		ProjectedBalance: current.Add(receivables).Sub(payables),
		TotalInflow:      receivables.Add(received),
		TotalOutflow:     payables.Add(paid),
		Series:           make([]CashFlowPoint, 0, cashFlowSamples),
	}

	for i := 0; i < cashFlowSamples; i++ {
		date := today.AddDays(i * cashFlowStepDays)
		inflow := decimal.Zero
		for _, r := range ds.Receivables {
			if inSeries(r.Status == core.ReceivablePending || r.Status == core.ReceivableReceived, r.DueDate, date) {
				inflow = inflow.Add(r.Amount)
			}
		}
		outflow := decimal.Zero
		for _, p := range ds.Payables {
			if inSeries(p.Status == core.PayablePending || p.Status == core.PayablePaid, p.DueDate, date) {
				outflow = outflow.Add(p.Amount)
			}
		}
		cf.Series = append(cf.Series, CashFlowPoint{
			Date:    date,
			Inflow:  inflow,
			Outflow: outflow,
			Balance: current.Add(inflow).Sub(outflow),
		})
	}
	return cf
}

func inSeries(counted bool, due, at core.Date) bool {
	return counted && due.OnOrBefore(at)
}
