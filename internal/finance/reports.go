package finance

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"bullfinance/internal/core"
)

const (
	topN               = 5
	uncategorizedLabel = "Outros"
	unknownCustomer    = "Cliente removido"
)

// MonthlyPoint is revenue and expenses booked in one calendar month.
type MonthlyPoint struct {
	Month    string          `json:"month"` // YYYY-MM
	Revenue  decimal.Decimal `json:"revenue"`
	Expenses decimal.Decimal `json:"expenses"`
	Profit   decimal.Decimal `json:"profit"`
}

// Ranked is a labelled amount in a top-N list.
type Ranked struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// ManagementReport groups the figures of the management reports screen.
type ManagementReport struct {
	Period        Period          `json:"period"`
	Months        []MonthlyPoint  `json:"months"`
	TopCustomers  []Ranked        `json:"top_customers"`
	TopCategories []Ranked        `json:"top_categories"`
	Totals        DashboardTotals `json:"totals"`
}

// ReportMonths is the number of trailing months shown for a report period.
func ReportMonths(p Period) int {
	switch p {
	case PeriodQuarter:
		return 3
	case PeriodYear:
		return 12
	default:
		return 6
	}
}

// Management assembles the management report for period.
func Management(ds Dataset, period Period, now time.Time) ManagementReport {
	return ManagementReport{
		Period:        period,
		Months:        MonthlySeries(ds, ReportMonths(period), now),
		TopCustomers:  TopCustomers(ds, topN),
		TopCategories: TopExpenseCategories(ds, topN),
		Totals:        Dashboard(ds),
	}
}

// MonthlySeries returns the last months calendar months, oldest first, ending with the month of now.
func MonthlySeries(ds Dataset, months int, now time.Time) []MonthlyPoint {
	if months <= 0 {
		return nil
	}
	y, m, _ := now.Date()
	current := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)

	index := make(map[string]int, months)
	series := make([]MonthlyPoint, months)
	for i := 0; i < months; i++ {
		key := current.AddDate(0, i-months+1, 0).Format("2006-01")
		index[key] = i
		series[i] = MonthlyPoint{Month: key}
	}

	addRevenue := func(d core.Date, amount decimal.Decimal) {
		if i, ok := index[monthKey(d)]; ok {
			series[i].Revenue = series[i].Revenue.Add(amount)
		}
	}
	addExpense := func(d core.Date, amount decimal.Decimal) {
		if i, ok := index[monthKey(d)]; ok {
			series[i].Expenses = series[i].Expenses.Add(amount)
		}
	}

	for _, r := range ds.Receivables {
		if r.Status == core.ReceivableReceived {
			addRevenue(r.PaymentDate, r.Amount)
		}
	}
	for _, inv := range ds.Invoices {
		addRevenue(inv.IssueDate, inv.Total)
	}
	for _, p := range ds.Payables {
		if p.Status == core.PayablePaid {
			addExpense(p.PaymentDate, p.Amount)
		}
	}
	for _, e := range ds.Expenses {
		addExpense(e.ExpenseDate, e.Amount)
	}

	for i := range series {
		series[i].Profit = series[i].Revenue.Sub(series[i].Expenses)
	}
	return series
}

func monthKey(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01")
}

// TopCustomers ranks customers by received receivables.
func TopCustomers(ds Dataset, n int) []Ranked {
	names := make(map[string]string, len(ds.Customers))
	for _, c := range ds.Customers {
		names[c.ID] = c.Name
	}

	totals := make(map[string]decimal.Decimal)
	for _, r := range ds.Receivables {
		if r.Status != core.ReceivableReceived || r.CustomerID == "" {
			continue
		}
		label, ok := names[r.CustomerID]
		if !ok {
			label = unknownCustomer
		}
		totals[label] = totals[label].Add(r.Amount)
	}
	return rank(totals, n)
}

// TopExpenseCategories ranks expense categories by amount.
func TopExpenseCategories(ds Dataset, n int) []Ranked {
	totals := make(map[string]decimal.Decimal)
	for _, e := range ds.Expenses {
		label := string(e.Category)
		if label == "" {
			label = uncategorizedLabel
		}
		totals[label] = totals[label].Add(e.Amount)
	}
	return rank(totals, n)
}

func rank(totals map[string]decimal.Decimal, n int) []Ranked {
	out := make([]Ranked, 0, len(totals))
	for label, amount := range totals {
		out = append(out, Ranked{Label: label, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Label < out[j].Label
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
