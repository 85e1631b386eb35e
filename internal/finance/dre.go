package finance

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"bullfinance/internal/core"
)

// Period is the window an income statement covers, anchored at "now".
type Period string

const (
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
)

var (
	// TaxRate applies to positive profit before tax only.
	TaxRate = decimal.RequireFromString("0.30")
	hundred = decimal.NewFromInt(100)
)

// ParsePeriod accepts month, quarter or year. Empty defaults to month.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case "":
		return PeriodMonth, nil
	case PeriodMonth, PeriodQuarter, PeriodYear:
		return p, nil
	default:
		return "", fmt.Errorf("unknown period %q", s)
	}
}

// Start returns the first day of the period containing now.
func (p Period) Start(now time.Time) core.Date {
	y, m, _ := now.Date()
	switch p {
	case PeriodQuarter:
		first := (int(m)-1)/3*3 + 1
		return core.NewDate(y, first, 1)
	case PeriodYear:
		return core.NewDate(y, 1, 1)
	default:
		return core.NewDate(y, int(m), 1)
	}
}

// DRE is a simplified income statement.
type DRE struct {
	Period Period    `json:"period"`
	From   core.Date `json:"from"`

	GrossRevenue decimal.Decimal `json:"gross_revenue"`
	Deductions   decimal.Decimal `json:"deductions"`
	NetRevenue   decimal.Decimal `json:"net_revenue"`
	COGS         decimal.Decimal `json:"cogs"`
	GrossProfit  decimal.Decimal `json:"gross_profit"`

	AdministrativeExpenses decimal.Decimal `json:"administrative_expenses"`
	SalesExpenses          decimal.Decimal `json:"sales_expenses"`
	FinancialExpenses      decimal.Decimal `json:"financial_expenses"`
	OperatingExpenses      decimal.Decimal `json:"operating_expenses"`
	OperatingProfit        decimal.Decimal `json:"operating_profit"`

	OtherIncome     decimal.Decimal `json:"other_income"`
	OtherExpenses   decimal.Decimal `json:"other_expenses"`
	ProfitBeforeTax decimal.Decimal `json:"profit_before_tax"`
	Taxes           decimal.Decimal `json:"taxes"`
	NetProfit       decimal.Decimal `json:"net_profit"`

	GrossMargin     decimal.Decimal `json:"gross_margin"`
	OperatingMargin decimal.Decimal `json:"operating_margin"`
	NetMargin       decimal.Decimal `json:"net_margin"`
}

// ComputeDRE builds the income statement for the period containing now.
// Records dated on or after the period start are included; there is no upper bound.
func ComputeDRE(ds Dataset, period Period, now time.Time) DRE {
	from := period.Start(now)
	dre := DRE{Period: period, From: from}

	grossRevenue := decimal.Zero
	deductions := decimal.Zero
	for _, inv := range ds.Invoices {
		if inv.IssueDate.Before(from.Time) {
			continue
		}
		grossRevenue = grossRevenue.Add(inv.Total)
		deductions = deductions.Add(inv.TaxAmount).Add(inv.Discount)
	}
	for _, r := range ds.Receivables {
		if r.DueDate.Before(from.Time) || r.Status != core.ReceivableReceived {
			continue
		}
		grossRevenue = grossRevenue.Add(r.Amount)
	}

	buckets := make(map[core.DREBucket]decimal.Decimal)
	for _, e := range ds.Expenses {
		if e.ExpenseDate.Before(from.Time) {
			continue
		}
		b := e.Category.Bucket()
		buckets[b] = buckets[b].Add(e.Amount)
	}

	dre.GrossRevenue = grossRevenue
	dre.Deductions = deductions
	dre.NetRevenue = grossRevenue.Sub(deductions)
	dre.COGS = buckets[core.BucketCOGS]
	dre.GrossProfit = dre.NetRevenue.Sub(dre.COGS)

	dre.AdministrativeExpenses = buckets[core.BucketAdministrative]
	dre.SalesExpenses = buckets[core.BucketSales]
	dre.FinancialExpenses = buckets[core.BucketFinancial]
	dre.OperatingExpenses = dre.AdministrativeExpenses.Add(dre.SalesExpenses).Add(dre.FinancialExpenses)
	dre.OperatingProfit = dre.GrossProfit.Sub(dre.OperatingExpenses)

	dre.OtherIncome = decimal.Zero
	dre.OtherExpenses = buckets[core.BucketOther]
	dre.ProfitBeforeTax = dre.OperatingProfit.Add(dre.OtherIncome).Sub(dre.OtherExpenses)
	dre.Taxes = Taxes(dre.ProfitBeforeTax)
	dre.NetProfit = dre.ProfitBeforeTax.Sub(dre.Taxes)

	dre.GrossMargin = Margin(dre.GrossProfit, dre.NetRevenue)
	dre.OperatingMargin = Margin(dre.OperatingProfit, dre.NetRevenue)
	dre.NetMargin = Margin(dre.NetProfit, dre.NetRevenue)
	return dre
}

// Taxes is TaxRate times profit before tax when positive, zero otherwise.
func Taxes(profitBeforeTax decimal.Decimal) decimal.Decimal {
	if !profitBeforeTax.IsPositive() {
		return decimal.Zero
	}
	return profitBeforeTax.Mul(TaxRate)
}

// Margin returns profit as a percentage of net revenue, or zero when net revenue is zero.
func Margin(profit, netRevenue decimal.Decimal) decimal.Decimal {
	if netRevenue.IsZero() {
		return decimal.Zero
	}
	return profit.Div(netRevenue).Mul(hundred)
}
