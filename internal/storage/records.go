package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bullfinance/internal/core"
	"bullfinance/internal/store"
)

func (r *SQLiteRepository) createParty(ctx context.Context, table string, p core.Party) (core.Party, error) {
	p.ID = newID(p.ID)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO `+table+` (id, company_id, name, email, phone, document) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.CompanyID, p.Name, p.Email, p.Phone, p.Document)
	if err != nil {
		return core.Party{}, fmt.Errorf("insert %s: %w", table, err)
	}
	return p, nil
}

func (r *SQLiteRepository) listParties(ctx context.Context, table, companyID string) ([]core.Party, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, company_id, name, email, phone, document FROM `+table+` WHERE company_id = ? ORDER BY name`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	var out []core.Party
	for rows.Next() {
		var p core.Party
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Name, &p.Email, &p.Phone, &p.Document); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateCustomer(ctx context.Context, c core.Customer) (core.Customer, error) {
	return r.createParty(ctx, "customers", c)
}

func (r *SQLiteRepository) CreateSupplier(ctx context.Context, s core.Supplier) (core.Supplier, error) {
	return r.createParty(ctx, "suppliers", s)
}

func (r *SQLiteRepository) ListCustomers(ctx context.Context, companyID string) ([]core.Customer, error) {
	return r.listParties(ctx, "customers", companyID)
}

func (r *SQLiteRepository) ListSuppliers(ctx context.Context, companyID string) ([]core.Supplier, error) {
	return r.listParties(ctx, "suppliers", companyID)
}

func (r *SQLiteRepository) CreateInvoice(ctx context.Context, inv core.Invoice) (core.Invoice, error) {
	inv.ID = newID(inv.ID)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invoices (id, company_id, customer_id, number, status, subtotal_cents, discount_cents,
			tax_amount_cents, total_cents, issue_date, due_date, payment_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.CompanyID, inv.CustomerID, inv.Number, string(inv.Status),
		core.ToCents(inv.Subtotal), core.ToCents(inv.Discount), core.ToCents(inv.TaxAmount), core.ToCents(inv.Total),
		dateText(inv.IssueDate), dateText(inv.DueDate), dateText(inv.PaymentDate))
	if err != nil {
		return core.Invoice{}, fmt.Errorf("insert invoice: %w", err)
	}
	return inv, nil
}

func (r *SQLiteRepository) ListInvoices(ctx context.Context, scope core.Scope) ([]core.Invoice, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, company_id, customer_id, number, status, subtotal_cents, discount_cents,
			tax_amount_cents, total_cents, issue_date, due_date, payment_date
		FROM invoices
		WHERE company_id = ? AND (? = '' OR customer_id = ?)
		ORDER BY issue_date DESC`, scope.CompanyID, scope.CustomerID, scope.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var out []core.Invoice
	for rows.Next() {
		var (
			inv                            core.Invoice
			status                         string
			subtotal, discount, tax, total int64
			issue, due, paid               string
		)
		if err := rows.Scan(&inv.ID, &inv.CompanyID, &inv.CustomerID, &inv.Number, &status,
			&subtotal, &discount, &tax, &total, &issue, &due, &paid); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		inv.Status = core.InvoiceStatus(status)
		inv.Subtotal = core.FromCents(subtotal)
		inv.Discount = core.FromCents(discount)
		inv.TaxAmount = core.FromCents(tax)
		inv.Total = core.FromCents(total)
		if inv.IssueDate, err = parseDateText(issue); err != nil {
			return nil, err
		}
		if inv.DueDate, err = parseDateText(due); err != nil {
			return nil, err
		}
		if inv.PaymentDate, err = parseDateText(paid); err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.ID = newID(e.ID)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (id, company_id, supplier_id, description, category, amount_cents,
			expense_date, status, payment_method)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.CompanyID, e.SupplierID, e.Description, string(e.Category), core.ToCents(e.Amount),
		dateText(e.ExpenseDate), string(e.Status), e.PaymentMethod)
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, companyID string) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, company_id, supplier_id, description, category, amount_cents, expense_date, status, payment_method
		FROM expenses WHERE company_id = ? ORDER BY expense_date DESC`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		var (
			e                      core.Expense
			category, status, date string
			cents                  int64
		)
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.SupplierID, &e.Description, &category,
			&cents, &date, &status, &e.PaymentMethod); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Category = core.ExpenseCategory(category)
		e.Status = core.ExpenseStatus(status)
		e.Amount = core.FromCents(cents)
		if e.ExpenseDate, err = parseDateText(date); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// execer lets inserts run inside or outside a transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertReceivable(ctx context.Context, ex execer, rc core.Receivable) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO receivables (id, company_id, customer_id, description, amount_cents, due_date,
			payment_date, status, payment_method, recurring_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rc.ID, rc.CompanyID, rc.CustomerID, rc.Description, core.ToCents(rc.Amount), dateText(rc.DueDate),
		dateText(rc.PaymentDate), string(rc.Status), rc.PaymentMethod, nullable(rc.RecurringID))
	return err
}

func insertPayable(ctx context.Context, ex execer, p core.Payable) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO payables (id, company_id, supplier_id, customer_id, description, amount_cents, due_date,
			payment_date, status, payment_method, recurring_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.CompanyID, p.SupplierID, p.CustomerID, p.Description, core.ToCents(p.Amount), dateText(p.DueDate),
		dateText(p.PaymentDate), string(p.Status), p.PaymentMethod, nullable(p.RecurringID))
	return err
}

func (r *SQLiteRepository) CreateReceivable(ctx context.Context, rc core.Receivable) (core.Receivable, error) {
	rc.ID = newID(rc.ID)
	if err := insertReceivable(ctx, r.db, rc); err != nil {
		return core.Receivable{}, fmt.Errorf("insert receivable: %w", err)
	}
	return rc, nil
}

func (r *SQLiteRepository) CreatePayable(ctx context.Context, p core.Payable) (core.Payable, error) {
	p.ID = newID(p.ID)
	if err := insertPayable(ctx, r.db, p); err != nil {
		return core.Payable{}, fmt.Errorf("insert payable: %w", err)
	}
	return p, nil
}

const receivableColumns = `id, company_id, customer_id, description, amount_cents, due_date,
	payment_date, status, payment_method, COALESCE(recurring_id, '')`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReceivable(row rowScanner) (core.Receivable, error) {
	var (
		rc                core.Receivable
		cents             int64
		due, paid, status string
	)
	if err := row.Scan(&rc.ID, &rc.CompanyID, &rc.CustomerID, &rc.Description, &cents, &due,
		&paid, &status, &rc.PaymentMethod, &rc.RecurringID); err != nil {
		return core.Receivable{}, err
	}
	rc.Amount = core.FromCents(cents)
	rc.Status = core.ReceivableStatus(status)
	var err error
	if rc.DueDate, err = parseDateText(due); err != nil {
		return core.Receivable{}, err
	}
	if rc.PaymentDate, err = parseDateText(paid); err != nil {
		return core.Receivable{}, err
	}
	return rc, nil
}

func (r *SQLiteRepository) ListReceivables(ctx context.Context, scope core.Scope) ([]core.Receivable, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+receivableColumns+` FROM receivables
		WHERE company_id = ? AND (? = '' OR customer_id = ?) ORDER BY due_date`,
		scope.CompanyID, scope.CustomerID, scope.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("list receivables: %w", err)
	}
	defer rows.Close()

	var out []core.Receivable
	for rows.Next() {
		rc, err := scanReceivable(rows)
		if err != nil {
			return nil, fmt.Errorf("scan receivable: %w", err)
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}

const payableColumns = `id, company_id, supplier_id, customer_id, description, amount_cents, due_date,
	payment_date, status, payment_method, COALESCE(recurring_id, '')`

func scanPayable(row rowScanner) (core.Payable, error) {
	var (
		p                 core.Payable
		cents             int64
		due, paid, status string
	)
	if err := row.Scan(&p.ID, &p.CompanyID, &p.SupplierID, &p.CustomerID, &p.Description, &cents, &due,
		&paid, &status, &p.PaymentMethod, &p.RecurringID); err != nil {
		return core.Payable{}, err
	}
	p.Amount = core.FromCents(cents)
	p.Status = core.PayableStatus(status)
	var err error
	if p.DueDate, err = parseDateText(due); err != nil {
		return core.Payable{}, err
	}
	if p.PaymentDate, err = parseDateText(paid); err != nil {
		return core.Payable{}, err
	}
	return p, nil
}

func (r *SQLiteRepository) ListPayables(ctx context.Context, scope core.Scope) ([]core.Payable, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+payableColumns+` FROM payables
		WHERE company_id = ? AND (? = '' OR customer_id = ?) ORDER BY due_date`,
		scope.CompanyID, scope.CustomerID, scope.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("list payables: %w", err)
	}
	defer rows.Close()

	var out []core.Payable
	for rows.Next() {
		p, err := scanPayable(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payable: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateReceivableStatus(ctx context.Context, companyID, id string, status core.ReceivableStatus, paymentDate core.Date) (core.Receivable, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE receivables SET status = ?, payment_date = ? WHERE id = ? AND company_id = ?`,
		string(status), dateText(paymentDate), id, companyID)
	if err != nil {
		return core.Receivable{}, fmt.Errorf("update receivable status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Receivable{}, store.ErrNotFound
	}
	rc, err := scanReceivable(r.db.QueryRowContext(ctx,
		`SELECT `+receivableColumns+` FROM receivables WHERE id = ?`, id))
	if err != nil {
		return core.Receivable{}, fmt.Errorf("reload receivable: %w", err)
	}
	return rc, nil
}

func (r *SQLiteRepository) UpdatePayableStatus(ctx context.Context, companyID, id string, status core.PayableStatus, paymentDate core.Date) (core.Payable, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE payables SET status = ?, payment_date = ? WHERE id = ? AND company_id = ?`,
		string(status), dateText(paymentDate), id, companyID)
	if err != nil {
		return core.Payable{}, fmt.Errorf("update payable status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Payable{}, store.ErrNotFound
	}
	p, err := scanPayable(r.db.QueryRowContext(ctx,
		`SELECT `+payableColumns+` FROM payables WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Payable{}, store.ErrNotFound
	}
	if err != nil {
		return core.Payable{}, fmt.Errorf("reload payable: %w", err)
	}
	return p, nil
}
