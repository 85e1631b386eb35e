package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"bullfinance/internal/core"
	"bullfinance/internal/store"
)

func (r *SQLiteRepository) CreateBankAccount(ctx context.Context, a core.BankAccount) (core.BankAccount, error) {
	a.ID = newID(a.ID)
	a.CurrentBalance = a.InitialBalance
	cents := core.ToCents(a.InitialBalance)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO bank_accounts (id, company_id, name, bank_name, account_number,
			initial_balance_cents, current_balance_cents, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.CompanyID, a.Name, a.BankName, a.AccountNumber, cents, cents, a.Active)
	if err != nil {
		return core.BankAccount{}, fmt.Errorf("insert bank account: %w", err)
	}
	return a, nil
}

const bankAccountColumns = `id, company_id, name, bank_name, account_number,
	initial_balance_cents, current_balance_cents, active`

func scanBankAccount(row rowScanner) (core.BankAccount, error) {
	var (
		a                core.BankAccount
		initial, current int64
	)
	if err := row.Scan(&a.ID, &a.CompanyID, &a.Name, &a.BankName, &a.AccountNumber,
		&initial, &current, &a.Active); err != nil {
		return core.BankAccount{}, err
	}
	a.InitialBalance = core.FromCents(initial)
	a.CurrentBalance = core.FromCents(current)
	return a, nil
}

func (r *SQLiteRepository) ListBankAccounts(ctx context.Context, companyID string) ([]core.BankAccount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bankAccountColumns+` FROM bank_accounts WHERE company_id = ? ORDER BY name`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list bank accounts: %w", err)
	}
	defer rows.Close()

	var out []core.BankAccount
	for rows.Next() {
		a, err := scanBankAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bank account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetBankAccount(ctx context.Context, companyID, id string) (core.BankAccount, error) {
	a, err := scanBankAccount(r.db.QueryRowContext(ctx,
		`SELECT `+bankAccountColumns+` FROM bank_accounts WHERE id = ? AND company_id = ?`, id, companyID))
	if errors.Is(err, sql.ErrNoRows) {
		return core.BankAccount{}, store.ErrNotFound
	}
	if err != nil {
		return core.BankAccount{}, fmt.Errorf("get bank account: %w", err)
	}
	return a, nil
}

// ApplyMovement inserts the movement and increments the balance in SQL, so
// concurrent postings never overwrite each other.
func (r *SQLiteRepository) ApplyMovement(ctx context.Context, m core.BankMovement) (core.BankMovement, decimal.Decimal, error) {
	m.ID = newID(m.ID)
	var balance int64

	err := r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE bank_accounts SET current_balance_cents = current_balance_cents + ? WHERE id = ? AND company_id = ?`,
			core.ToCents(m.Delta()), m.AccountID, m.CompanyID)
		if err != nil {
			return fmt.Errorf("update balance: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("bank account %s: %w", m.AccountID, store.ErrNotFound)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO bank_movements (id, company_id, bank_account_id, description, amount_cents,
				type, movement_date, reconciled)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID, m.CompanyID, m.AccountID, m.Description, core.ToCents(m.Amount),
			string(m.Type), dateText(m.Date), m.Reconciled); err != nil {
			return fmt.Errorf("insert movement: %w", err)
		}

		if err := tx.QueryRowContext(ctx,
			`SELECT current_balance_cents FROM bank_accounts WHERE id = ?`, m.AccountID).Scan(&balance); err != nil {
			return fmt.Errorf("read balance: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.BankMovement{}, decimal.Zero, err
	}
	return m, core.FromCents(balance), nil
}

func (r *SQLiteRepository) ListMovements(ctx context.Context, companyID, accountID string) ([]core.BankMovement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, company_id, bank_account_id, description, amount_cents, type, movement_date, reconciled
		FROM bank_movements
		WHERE company_id = ? AND (? = '' OR bank_account_id = ?)
		ORDER BY movement_date DESC`, companyID, accountID, accountID)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var out []core.BankMovement
	for rows.Next() {
		var (
			m         core.BankMovement
			cents     int64
			typ, date string
		)
		if err := rows.Scan(&m.ID, &m.CompanyID, &m.AccountID, &m.Description, &cents,
			&typ, &date, &m.Reconciled); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		m.Amount = core.FromCents(cents)
		m.Type = core.MovementType(typ)
		if m.Date, err = parseDateText(date); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
