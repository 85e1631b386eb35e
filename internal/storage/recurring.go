package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bullfinance/internal/core"
	"bullfinance/internal/store"
)

const recurringColumns = `id, company_id, type, description, amount_cents, frequency, start_date, end_date,
	last_generated, customer_id, supplier_id, category, payment_method, active`

func scanRecurring(row rowScanner) (core.RecurringTransaction, error) {
	var (
		rt                        core.RecurringTransaction
		typ, freq                 string
		cents                     int64
		start, end, lastGenerated string
	)
	if err := row.Scan(&rt.ID, &rt.CompanyID, &typ, &rt.Description, &cents, &freq, &start, &end,
		&lastGenerated, &rt.CustomerID, &rt.SupplierID, &rt.Category, &rt.PaymentMethod, &rt.Active); err != nil {
		return core.RecurringTransaction{}, err
	}
	rt.Type = core.RecurringType(typ)
	rt.Frequency = core.Frequency(freq)
	rt.Amount = core.FromCents(cents)
	var err error
	if rt.StartDate, err = parseDateText(start); err != nil {
		return core.RecurringTransaction{}, err
	}
	if rt.EndDate, err = parseDateText(end); err != nil {
		return core.RecurringTransaction{}, err
	}
	if rt.LastGenerated, err = parseDateText(lastGenerated); err != nil {
		return core.RecurringTransaction{}, err
	}
	return rt, nil
}

func (r *SQLiteRepository) queryRecurring(ctx context.Context, query string, args ...any) ([]core.RecurringTransaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recurring: %w", err)
	}
	defer rows.Close()

	var out []core.RecurringTransaction
	for rows.Next() {
		rt, err := scanRecurring(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recurring: %w", err)
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateRecurring(ctx context.Context, rt core.RecurringTransaction) (core.RecurringTransaction, error) {
	rt.ID = newID(rt.ID)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recurring_transactions (`+recurringColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rt.ID, rt.CompanyID, string(rt.Type), rt.Description, core.ToCents(rt.Amount), string(rt.Frequency),
		dateText(rt.StartDate), dateText(rt.EndDate), dateText(rt.LastGenerated),
		rt.CustomerID, rt.SupplierID, rt.Category, rt.PaymentMethod, rt.Active)
	if err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("insert recurring: %w", err)
	}
	return rt, nil
}

func (r *SQLiteRepository) GetRecurring(ctx context.Context, companyID, id string) (core.RecurringTransaction, error) {
	rt, err := scanRecurring(r.db.QueryRowContext(ctx,
		`SELECT `+recurringColumns+` FROM recurring_transactions WHERE id = ? AND company_id = ?`, id, companyID))
	if errors.Is(err, sql.ErrNoRows) {
		return core.RecurringTransaction{}, store.ErrNotFound
	}
	if err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("get recurring: %w", err)
	}
	return rt, nil
}

func (r *SQLiteRepository) ListRecurring(ctx context.Context, companyID string) ([]core.RecurringTransaction, error) {
	return r.queryRecurring(ctx,
		`SELECT `+recurringColumns+` FROM recurring_transactions WHERE company_id = ? ORDER BY start_date`, companyID)
}

func (r *SQLiteRepository) ListActiveRecurring(ctx context.Context) ([]core.RecurringTransaction, error) {
	return r.queryRecurring(ctx,
		`SELECT `+recurringColumns+` FROM recurring_transactions WHERE active = 1 ORDER BY company_id, start_date`)
}

func (r *SQLiteRepository) SetRecurringActive(ctx context.Context, companyID, id string, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE recurring_transactions SET active = ? WHERE id = ? AND company_id = ?`, active, id, companyID)
	if err != nil {
		return fmt.Errorf("set recurring active: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// MaterializeOccurrence relies on the unique (recurring_id, due_date) indexes
// to reject a second record for the same occurrence.
func (r *SQLiteRepository) MaterializeOccurrence(ctx context.Context, companyID string, occ core.Occurrence) (string, error) {
	var id string
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		switch {
		case occ.Receivable != nil:
			rc := *occ.Receivable
			rc.ID = newID(rc.ID)
			id = rc.ID
			err = insertReceivable(ctx, tx, rc)
		case occ.Payable != nil:
			p := *occ.Payable
			p.ID = newID(p.ID)
			id = p.ID
			err = insertPayable(ctx, tx, p)
		default:
			return fmt.Errorf("occurrence %s has no record", occ.Date)
		}
		if err != nil {
			if isUniqueViolation(err) {
				return store.ErrDuplicateOccurrence
			}
			return fmt.Errorf("insert occurrence: %w", err)
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE recurring_transactions SET last_generated = ? WHERE id = ? AND company_id = ?`,
			dateText(occ.Date), occ.RecurringID, companyID)
		if err != nil {
			return fmt.Errorf("advance last generated: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return store.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}
