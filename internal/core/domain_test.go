package core

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{}, false},
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateCalendarArithmetic(t *testing.T) {
	if got := NewDate(2025, 1, 31).AddMonths(1).String(); got != "2025-03-03" {
		t.Fatalf("Jan 31 + 1 month = %s, want 2025-03-03", got)
	}
	if got := NewDate(2024, 1, 31).AddMonths(1).String(); got != "2024-03-02" {
		t.Fatalf("leap year Jan 31 + 1 month = %s, want 2024-03-02", got)
	}
	if got := NewDate(2025, 12, 30).AddDays(5).String(); got != "2026-01-04" {
		t.Fatalf("AddDays across year = %s", got)
	}
	if !NewDate(2025, 2, 15).OnOrBefore(NewDate(2025, 2, 15)) {
		t.Fatal("a date is on or before itself")
	}
}

func TestDateJSON(t *testing.T) {
	type wrapper struct {
		D Date `json:"d"`
	}
	b, err := json.Marshal(wrapper{D: NewDate(2025, 2, 15)})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"d":"2025-02-15"}` {
		t.Fatalf("unexpected json %s", b)
	}
	b, _ = json.Marshal(wrapper{})
	if string(b) != `{"d":null}` {
		t.Fatalf("zero date should marshal to null, got %s", b)
	}

	var w wrapper
	if err := json.Unmarshal([]byte(`{"d":"2025-03-01"}`), &w); err != nil {
		t.Fatal(err)
	}
	if !w.D.Equal(NewDate(2025, 3, 1).Time) {
		t.Fatalf("unexpected date %v", w.D)
	}
	if err := json.Unmarshal([]byte(`{"d":"01/03/2025"}`), &w); err == nil {
		t.Fatal("expected error for non ISO date")
	}
}

func TestMovementDelta(t *testing.T) {
	amount := decimal.NewFromInt(150)
	if d := (BankMovement{Type: Credit, Amount: amount}).Delta(); !d.Equal(amount) {
		t.Fatalf("credit delta = %s", d)
	}
	if d := (BankMovement{Type: Debit, Amount: amount}).Delta(); !d.Equal(amount.Neg()) {
		t.Fatalf("debit delta = %s", d)
	}
}

func TestRecurringTransactionValidate(t *testing.T) {
	good := RecurringTransaction{
		CompanyID:   "c1",
		Type:        RecurringReceivable,
		Description: "Mensalidade",
		Amount:      decimal.NewFromInt(100),
		Frequency:   Monthly,
		StartDate:   NewDate(2025, 1, 15),
		Active:      true,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	// Fits on its own but not once the recurring suffix is appended.
	tight := strings.Repeat("a", maxDescriptionLen-len(RecurringSuffix)+1)
	bads := map[string]func(rt *RecurringTransaction){
		"missing company":    func(rt *RecurringTransaction) { rt.CompanyID = "" },
		"bad type":           func(rt *RecurringTransaction) { rt.Type = "loan" },
		"bad frequency":      func(rt *RecurringTransaction) { rt.Frequency = "daily" },
		"zero amount":        func(rt *RecurringTransaction) { rt.Amount = decimal.Zero },
		"empty description":  func(rt *RecurringTransaction) { rt.Description = " " },
		"no start":           func(rt *RecurringTransaction) { rt.StartDate = Date{} },
		"end before start":   func(rt *RecurringTransaction) { rt.EndDate = NewDate(2024, 12, 31) },
		"sub-cent amount":    func(rt *RecurringTransaction) { rt.Amount = decimal.RequireFromString("10.005") },
		"no room for suffix": func(rt *RecurringTransaction) { rt.Description = tight },
	}
	for name, mutate := range bads {
		t.Run(name, func(t *testing.T) {
			rt := good
			mutate(&rt)
			if err := rt.Validate(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		CompanyID:   "c1",
		Description: "Folha",
		Category:    CategorySalaries,
		Amount:      decimal.NewFromInt(100),
		ExpenseDate: NewDate(2025, 1, 1),
		Status:      ExpensePaid,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bad := good
	bad.Category = "Viagens"
	if err := bad.Validate(); err != ErrInvalidCategory {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
	bad = good
	bad.Amount = decimal.NewFromInt(-1)
	if err := bad.Validate(); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestAmountBounds(t *testing.T) {
	base := BankMovement{
		CompanyID:   "c1",
		AccountID:   "a1",
		Description: "Pix",
		Type:        Credit,
		Date:        NewDate(2025, 3, 1),
	}
	cases := []struct {
		amount string
		ok     bool
	}{
		{"0.01", true},
		{"1.50", true},
		{"10000000000000", true},
		{"0.004", false},
		{"12.345", false},
		{"10000000000000.01", false},
		{"100000000000000000000", false},
	}
	for _, tc := range cases {
		m := base
		m.Amount = decimal.RequireFromString(tc.amount)
		err := m.Validate()
		if tc.ok && err != nil {
			t.Errorf("%s: expected ok, got %v", tc.amount, err)
		}
		if !tc.ok && err != ErrInvalidAmount {
			t.Errorf("%s: expected ErrInvalidAmount, got %v", tc.amount, err)
		}
	}

	account := BankAccount{CompanyID: "c1", Name: "Conta", InitialBalance: decimal.RequireFromString("-250.00")}
	if err := account.Validate(); err != nil {
		t.Fatalf("overdrawn opening balance rejected: %v", err)
	}
	account.InitialBalance = decimal.RequireFromString("1e20")
	if err := account.Validate(); err != ErrInvalidAmount {
		t.Fatalf("huge opening balance: expected ErrInvalidAmount, got %v", err)
	}
}

func TestDescriptionCountsCharacters(t *testing.T) {
	accented := strings.Repeat("ç", maxDescriptionLen)
	if err := validateDescription(accented); err != nil {
		t.Fatalf("%d accented characters rejected: %v", maxDescriptionLen, err)
	}
	if err := validateDescription(accented + "ã"); err != ErrDescriptionTooLong {
		t.Fatalf("expected ErrDescriptionTooLong, got %v", err)
	}
}
