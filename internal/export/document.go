// Package export turns aggregation results into tabular documents and
// renders them as CSV files or Google Sheets tabs.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bullfinance/internal/finance"
)

const emptyCell = "-"

// Kind names an exportable report.
type Kind string

const (
	KindDRE      Kind = "dre"
	KindCashFlow Kind = "cashflow"
	KindMonthly  Kind = "monthly"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindDRE, KindCashFlow, KindMonthly:
		return k, nil
	}
	return "", fmt.Errorf("unknown report kind %q", s)
}

type Column struct {
	Header string
	Key    string
}

type SummaryItem struct {
	Label string
	Value string
}

// Document is a renderer-neutral table: columns, keyed rows and a
// label/value summary block.
type Document struct {
	Title       string
	Subtitle    string
	Columns     []Column
	Rows        []map[string]string
	Summary     []SummaryItem
	GeneratedAt time.Time
}

// Grid lays the document out as rows of cells: title, subtitle, header,
// data rows, a blank separator and the summary.
func (d Document) Grid() [][]string {
	grid := [][]string{{d.Title}}
	if d.Subtitle != "" {
		grid = append(grid, []string{d.Subtitle})
	}

	header := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		header[i] = c.Header
	}
	grid = append(grid, header)

	for _, row := range d.Rows {
		cells := make([]string, len(d.Columns))
		for i, c := range d.Columns {
			v, ok := row[c.Key]
			if !ok || v == "" {
				v = emptyCell
			}
			cells[i] = v
		}
		grid = append(grid, cells)
	}

	if len(d.Summary) > 0 {
		grid = append(grid, []string{})
		for _, s := range d.Summary {
			grid = append(grid, []string{s.Label, s.Value})
		}
	}
	return grid
}

func subtitle(generatedAt time.Time) string {
	return "Gerado em " + generatedAt.Format("02/01/2006 15:04")
}

func DREDocument(d finance.DRE, generatedAt time.Time) Document {
	line := func(label string, v decimal.Decimal) map[string]string {
		return map[string]string{"line": label, "value": FormatBRL(v)}
	}
	return Document{
		Title:    "DRE",
		Subtitle: fmt.Sprintf("%s a partir de %s. %s", periodLabel(d.Period), d.From.Format("02/01/2006"), subtitle(generatedAt)),
		Columns:  []Column{{Header: "Conta", Key: "line"}, {Header: "Valor", Key: "value"}},
		Rows: []map[string]string{
			line("Receita Bruta", d.GrossRevenue),
			line("(-) Deduções", d.Deductions),
			line("Receita Líquida", d.NetRevenue),
			line("(-) Custo dos Produtos Vendidos", d.COGS),
			line("Lucro Bruto", d.GrossProfit),
			line("(-) Despesas Administrativas", d.AdministrativeExpenses),
			line("(-) Despesas com Vendas", d.SalesExpenses),
			line("(-) Despesas Financeiras", d.FinancialExpenses),
			line("Lucro Operacional", d.OperatingProfit),
			line("(+) Outras Receitas", d.OtherIncome),
			line("(-) Outras Despesas", d.OtherExpenses),
			line("Lucro Antes do IR", d.ProfitBeforeTax),
			line("(-) IR/CSLL", d.Taxes),
			line("Lucro Líquido", d.NetProfit),
		},
		Summary: []SummaryItem{
			{Label: "Margem Bruta", Value: FormatPercent(d.GrossMargin)},
			{Label: "Margem Operacional", Value: FormatPercent(d.OperatingMargin)},
			{Label: "Margem Líquida", Value: FormatPercent(d.NetMargin)},
		},
		GeneratedAt: generatedAt,
	}
}

func CashFlowDocument(cf finance.CashFlow, generatedAt time.Time) Document {
	rows := make([]map[string]string, 0, len(cf.Series))
	for _, p := range cf.Series {
		rows = append(rows, map[string]string{
			"date":    p.Date.Format("02/01/2006"),
			"inflow":  FormatBRL(p.Inflow),
			"outflow": FormatBRL(p.Outflow),
			"balance": FormatBRL(p.Balance),
		})
	}
	return Document{
		Title:    "Fluxo de Caixa",
		Subtitle: subtitle(generatedAt),
		Columns: []Column{
			{Header: "Data", Key: "date"},
			{Header: "Entradas", Key: "inflow"},
			{Header: "Saídas", Key: "outflow"},
			{Header: "Saldo Projetado", Key: "balance"},
		},
		Rows: rows,
		Summary: []SummaryItem{
			{Label: "Saldo Atual", Value: FormatBRL(cf.CurrentBalance)},
			{Label: "A Receber", Value: FormatBRL(cf.Receivables)},
			{Label: "A Pagar", Value: FormatBRL(cf.Payables)},
			{Label: "Saldo Projetado", Value: FormatBRL(cf.ProjectedBalance)},
		},
		GeneratedAt: generatedAt,
	}
}

func MonthlyDocument(r finance.ManagementReport, generatedAt time.Time) Document {
	rows := make([]map[string]string, 0, len(r.Months))
	for _, m := range r.Months {
		rows = append(rows, map[string]string{
			"month":    m.Month,
			"revenue":  FormatBRL(m.Revenue),
			"expenses": FormatBRL(m.Expenses),
			"profit":   FormatBRL(m.Profit),
		})
	}

	summary := []SummaryItem{
		{Label: "Receita Total", Value: FormatBRL(r.Totals.Revenue)},
		{Label: "Despesas Totais", Value: FormatBRL(r.Totals.Expenses)},
		{Label: "Lucro Líquido", Value: FormatBRL(r.Totals.NetProfit)},
	}
	for i, c := range r.TopCustomers {
		summary = append(summary, SummaryItem{Label: fmt.Sprintf("Cliente %d: %s", i+1, c.Label), Value: FormatBRL(c.Amount)})
	}
	for i, c := range r.TopCategories {
		summary = append(summary, SummaryItem{Label: fmt.Sprintf("Categoria %d: %s", i+1, c.Label), Value: FormatBRL(c.Amount)})
	}

	return Document{
		Title:    "Relatório Mensal",
		Subtitle: fmt.Sprintf("%s. %s", periodLabel(r.Period), subtitle(generatedAt)),
		Columns: []Column{
			{Header: "Mês", Key: "month"},
			{Header: "Receita", Key: "revenue"},
			{Header: "Despesas", Key: "expenses"},
			{Header: "Lucro", Key: "profit"},
		},
		Rows:        rows,
		Summary:     summary,
		GeneratedAt: generatedAt,
	}
}

func periodLabel(p finance.Period) string {
	switch p {
	case finance.PeriodQuarter:
		return "Trimestre"
	case finance.PeriodYear:
		return "Ano"
	}
	return "Mês"
}

// FormatBRL renders an amount as Brazilian currency, e.g. R$ 1.234,56.
func FormatBRL(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	return sign + "R$ " + groupThousands(d.StringFixed(2))
}

// FormatPercent renders a percentage with two decimals and a comma, e.g. 12,50%.
func FormatPercent(d decimal.Decimal) string {
	return strings.Replace(d.StringFixed(2), ".", ",", 1) + "%"
}

func groupThousands(fixed string) string {
	intPart, frac, _ := strings.Cut(fixed, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return b.String() + "," + frac
}
