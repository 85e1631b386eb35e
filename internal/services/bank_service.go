package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"bullfinance/internal/core"
	"bullfinance/internal/finance"
	"bullfinance/internal/store"
)

// BankService posts movements to bank accounts. Balance changes happen inside
// the store as a single increment, never as read-modify-write here.
type BankService struct {
	ledger      store.BankLedger
	invalidator Invalidator
}

func NewBankService(ledger store.BankLedger, invalidator Invalidator) *BankService {
	return &BankService{ledger: ledger, invalidator: invalidator}
}

// PostResult is a stored movement and the account balance after it.
type PostResult struct {
	Movement core.BankMovement `json:"movement"`
	Balance  decimal.Decimal   `json:"balance"`
}

func (s *BankService) PostMovement(ctx context.Context, m core.BankMovement) (PostResult, error) {
	if err := m.Validate(); err != nil {
		return PostResult{}, err
	}
	stored, balance, err := s.ledger.ApplyMovement(ctx, m)
	if err != nil {
		return PostResult{}, fmt.Errorf("apply movement: %w", err)
	}
	if s.invalidator != nil {
		s.invalidator.InvalidateCompany(m.CompanyID)
	}

	slog.InfoContext(ctx, "Bank movement posted",
		"movement_id", stored.ID,
		"account_id", stored.AccountID,
		"type", stored.Type,
		"amount", stored.Amount.StringFixed(2),
		"balance", balance.StringFixed(2))
	return PostResult{Movement: stored, Balance: balance}, nil
}

// LineError reports a statement line that could not be imported.
type LineError struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

type ImportResult struct {
	Imported int             `json:"imported"`
	Balance  decimal.Decimal `json:"balance"`
	Errors   []LineError     `json:"errors"`
}

// ImportStatement posts each row of a CSV statement. The first line is a
// header. Rows are date,description,amount[,type]; without a type the sign of
// the amount decides it and the absolute value is stored. Bad rows are
// reported and skipped.
func (s *BankService) ImportStatement(ctx context.Context, companyID, accountID string, r io.Reader) (ImportResult, error) {
	account, err := s.ledger.GetBankAccount(ctx, companyID, accountID)
	if err != nil {
		return ImportResult{}, fmt.Errorf("get bank account: %w", err)
	}
	res := ImportResult{Balance: account.CurrentBalance, Errors: []LineError{}}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	line := 0
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			res.Errors = append(res.Errors, LineError{Line: line, Error: err.Error()})
			continue
		}
		if line == 1 || isBlank(record) {
			continue
		}

		m, err := parseStatementRow(record)
		if err != nil {
			res.Errors = append(res.Errors, LineError{Line: line, Error: err.Error()})
			continue
		}
		m.CompanyID = companyID
		m.AccountID = accountID

		posted, err := s.PostMovement(ctx, m)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) || ctx.Err() != nil {
				return res, err
			}
			res.Errors = append(res.Errors, LineError{Line: line, Error: err.Error()})
			continue
		}
		res.Imported++
		res.Balance = posted.Balance
	}

	slog.InfoContext(ctx, "Bank statement imported",
		"account_id", accountID,
		"imported", res.Imported,
		"rejected", len(res.Errors))
	return res, nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func parseStatementRow(record []string) (core.BankMovement, error) {
	if len(record) < 3 {
		return core.BankMovement{}, fmt.Errorf("expected at least 3 columns, got %d", len(record))
	}
	date, err := core.ParseDate(record[0])
	if err != nil || date.IsZero() {
		return core.BankMovement{}, fmt.Errorf("invalid date %q", strings.TrimSpace(record[0]))
	}
	amount, err := core.ParseSignedAmount(record[2])
	if err != nil {
		return core.BankMovement{}, fmt.Errorf("invalid amount %q", strings.TrimSpace(record[2]))
	}

	typ := core.Credit
	if amount.IsNegative() {
		typ = core.Debit
	}
	if len(record) > 3 {
		if t := core.MovementType(strings.ToLower(strings.TrimSpace(record[3]))); t.Valid() {
			typ = t
		}
	}

	return core.BankMovement{
		Description: strings.TrimSpace(record[1]),
		Amount:      amount.Abs(),
		Type:        typ,
		Date:        date,
	}, nil
}

// MovementList is an account statement with its totals.
type MovementList struct {
	Movements []core.BankMovement     `json:"movements"`
	Summary   finance.MovementSummary `json:"summary"`
}

func (s *BankService) ListMovements(ctx context.Context, companyID, accountID string) (MovementList, error) {
	if _, err := s.ledger.GetBankAccount(ctx, companyID, accountID); err != nil {
		return MovementList{}, fmt.Errorf("get bank account: %w", err)
	}
	ms, err := s.ledger.ListMovements(ctx, companyID, accountID)
	if err != nil {
		return MovementList{}, fmt.Errorf("list movements: %w", err)
	}
	if ms == nil {
		ms = []core.BankMovement{}
	}
	return MovementList{Movements: ms, Summary: finance.MovementTotals(ms)}, nil
}
