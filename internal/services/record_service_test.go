package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bullfinance/internal/core"
	"bullfinance/internal/store"
	"bullfinance/internal/store/memory"
)

func TestRecordService_Validation(t *testing.T) {
	svc := NewRecordService(memory.New(), nil)
	ctx := context.Background()

	_, err := svc.CreateCustomer(ctx, core.Customer{CompanyID: "company-1", Name: "  "})
	assert.ErrorIs(t, err, core.ErrEmptyName)

	_, err = svc.CreateExpense(ctx, core.Expense{
		CompanyID: "company-1", Description: "Luz", Category: "Energia",
		Amount: decimal.NewFromInt(10), ExpenseDate: core.NewDate(2025, 1, 1),
	})
	assert.ErrorIs(t, err, core.ErrInvalidCategory)

	_, err = svc.CreateReceivable(ctx, core.Receivable{
		CompanyID: "company-1", Description: "Venda", Amount: decimal.NewFromInt(-1), DueDate: core.NewDate(2025, 1, 1),
	})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
}

func TestRecordService_Defaults(t *testing.T) {
	svc := NewRecordService(memory.New(), nil)
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, core.Invoice{
		CompanyID: "company-1",
		Subtotal:  decimal.NewFromInt(1000),
		Discount:  decimal.NewFromInt(100),
		TaxAmount: decimal.NewFromInt(50),
		IssueDate: core.NewDate(2025, 1, 10),
	})
	require.NoError(t, err)
	assert.Equal(t, core.InvoiceDraft, inv.Status)
	assert.True(t, inv.Total.Equal(decimal.NewFromInt(950)), "total = %s", inv.Total)

	r, err := svc.CreateReceivable(ctx, core.Receivable{
		CompanyID: "company-1", Description: "Venda", Amount: decimal.NewFromInt(10),
		DueDate: core.NewDate(2025, 1, 1), RecurringID: "forged",
	})
	require.NoError(t, err)
	assert.Equal(t, core.ReceivablePending, r.Status)
	assert.Empty(t, r.RecurringID)
}

func TestRecordService_SetReceivableStatus(t *testing.T) {
	st := memory.New()
	svc := NewRecordService(st, nil)
	svc.now = func() time.Time { return time.Date(2025, 4, 2, 15, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	r, err := svc.CreateReceivable(ctx, core.Receivable{
		CompanyID: "company-1", Description: "Venda", Amount: decimal.NewFromInt(10), DueDate: core.NewDate(2025, 4, 1),
	})
	require.NoError(t, err)

	got, err := svc.SetReceivableStatus(ctx, "company-1", r.ID, core.ReceivableReceived, core.Date{})
	require.NoError(t, err)
	assert.Equal(t, "2025-04-02", got.PaymentDate.String())

	got, err = svc.SetReceivableStatus(ctx, "company-1", r.ID, core.ReceivableOverdue, core.NewDate(2025, 4, 3))
	require.NoError(t, err)
	assert.True(t, got.PaymentDate.IsZero())

	_, err = svc.SetReceivableStatus(ctx, "company-1", r.ID, "lost", core.Date{})
	assert.ErrorIs(t, err, core.ErrInvalidStatus)

	_, err = svc.SetReceivableStatus(ctx, "company-2", r.ID, core.ReceivableReceived, core.Date{})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRecordService_SetPayableStatus(t *testing.T) {
	svc := NewRecordService(memory.New(), nil)
	ctx := context.Background()

	p, err := svc.CreatePayable(ctx, core.Payable{
		CompanyID: "company-1", Description: "Aluguel", Amount: decimal.NewFromInt(2000), DueDate: core.NewDate(2025, 4, 5),
	})
	require.NoError(t, err)

	got, err := svc.SetPayableStatus(ctx, "company-1", p.ID, core.PayablePaid, core.NewDate(2025, 4, 4))
	require.NoError(t, err)
	assert.Equal(t, core.PayablePaid, got.Status)
	assert.Equal(t, "2025-04-04", got.PaymentDate.String())
}
