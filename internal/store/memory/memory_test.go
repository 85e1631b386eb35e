package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"bullfinance/internal/core"
	"bullfinance/internal/store"
)

func TestApplyMovementUpdatesBalance(t *testing.T) {
	ctx := context.Background()
	s := New()

	acc, err := s.CreateBankAccount(ctx, core.BankAccount{CompanyID: "c1", Name: "Conta", InitialBalance: decimal.NewFromInt(1000)})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if !acc.CurrentBalance.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("current balance = %s, want 1000", acc.CurrentBalance)
	}

	tests := []struct {
		name string
		typ  core.MovementType
		amt  int64
		want int64
	}{
		{"credit", core.Credit, 150, 1150},
		{"debit", core.Debit, 300, 850},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, bal, err := s.ApplyMovement(ctx, core.BankMovement{
				CompanyID: "c1", AccountID: acc.ID, Description: tt.name,
				Amount: decimal.NewFromInt(tt.amt), Type: tt.typ, Date: core.NewDate(2025, 3, 1),
			})
			if err != nil {
				t.Fatalf("apply: %v", err)
			}
			if !bal.Equal(decimal.NewFromInt(tt.want)) {
				t.Errorf("balance = %s, want %d", bal, tt.want)
			}
		})
	}

	ms, _ := s.ListMovements(ctx, "c1", acc.ID)
	if len(ms) != 2 {
		t.Errorf("movements = %d, want 2", len(ms))
	}
}

func TestApplyMovementUnknownAccount(t *testing.T) {
	s := New()
	_, _, err := s.ApplyMovement(context.Background(), core.BankMovement{CompanyID: "c1", AccountID: "nope", Type: core.Credit})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMaterializeOccurrenceRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	s := New()
	rt, _ := s.CreateRecurring(ctx, core.RecurringTransaction{
		CompanyID: "c1", Type: core.RecurringReceivable, Active: true,
		Frequency: core.Monthly, StartDate: core.NewDate(2025, 1, 15),
	})

	date := core.NewDate(2025, 2, 15)
	occ := core.Occurrence{
		RecurringID: rt.ID,
		Date:        date,
		Receivable:  &core.Receivable{CompanyID: "c1", RecurringID: rt.ID, DueDate: date, Amount: decimal.NewFromInt(10)},
	}
	if _, err := s.MaterializeOccurrence(ctx, "c1", occ); err != nil {
		t.Fatalf("first materialize: %v", err)
	}
	if _, err := s.MaterializeOccurrence(ctx, "c1", occ); !errors.Is(err, store.ErrDuplicateOccurrence) {
		t.Fatalf("second materialize err = %v, want ErrDuplicateOccurrence", err)
	}

	got, _ := s.GetRecurring(ctx, "c1", rt.ID)
	if !got.LastGenerated.Equal(date.Time) {
		t.Errorf("last generated = %s, want %s", got.LastGenerated, date)
	}
	rs, _ := s.ListReceivables(ctx, core.Scope{CompanyID: "c1"})
	if len(rs) != 1 {
		t.Errorf("receivables = %d, want 1", len(rs))
	}
}

func TestScopeFiltering(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, _ = s.CreateReceivable(ctx, core.Receivable{CompanyID: "c1", CustomerID: "a"})
	_, _ = s.CreateReceivable(ctx, core.Receivable{CompanyID: "c1", CustomerID: "b"})
	_, _ = s.CreateReceivable(ctx, core.Receivable{CompanyID: "c2", CustomerID: "a"})

	tests := []struct {
		scope core.Scope
		want  int
	}{
		{core.Scope{CompanyID: "c1"}, 2},
		{core.Scope{CompanyID: "c1", CustomerID: "a"}, 1},
		{core.Scope{CompanyID: "c2"}, 1},
		{core.Scope{CompanyID: "c3"}, 0},
	}
	for _, tt := range tests {
		rs, err := s.ListReceivables(ctx, tt.scope)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(rs) != tt.want {
			t.Errorf("scope %+v: got %d, want %d", tt.scope, len(rs), tt.want)
		}
	}
}

func TestCreateCompanyWithOwnerRejectsTakenEmail(t *testing.T) {
	ctx := context.Background()
	s := New()
	if _, _, err := s.CreateCompanyWithOwner(ctx, core.Company{Name: "A"}, core.User{Email: "a@x.com"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, _, err := s.CreateCompanyWithOwner(ctx, core.Company{Name: "B"}, core.User{Email: "A@X.com"})
	if !errors.Is(err, store.ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
	u, err := s.GetUserByEmail(ctx, "a@x.com")
	if err != nil || u.CompanyID == "" {
		t.Fatalf("get user: %+v %v", u, err)
	}
}
