package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"bullfinance/internal/core"
	"bullfinance/internal/store"
)

// SQLiteRepository implements store.Store on a single SQLite file.
// Money columns hold integer cents and dates hold YYYY-MM-DD text, with ''
// for an unset date.
type SQLiteRepository struct {
	db     *sql.DB
	dbPath string
}

var _ store.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single writer keeps balance updates and occurrence inserts serialized.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{db: db, dbPath: dbPath}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping is used by the readiness probe.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) CreateCompanyWithOwner(ctx context.Context, company core.Company, owner core.User) (core.Company, core.User, error) {
	company.ID = newID(company.ID)
	owner.ID = newID(owner.ID)
	owner.CompanyID = company.ID
	company.OwnerID = owner.ID
	if company.CreatedAt.IsZero() {
		company.CreatedAt = time.Now().UTC()
	}

	err := r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO companies (id, name, cnpj, owner_id, created_at) VALUES (?, ?, ?, ?, ?)`,
			company.ID, company.Name, company.CNPJ, company.OwnerID, company.CreatedAt); err != nil {
			return fmt.Errorf("insert company: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, company_id, name, email, password_hash) VALUES (?, ?, ?, ?, ?)`,
			owner.ID, owner.CompanyID, owner.Name, owner.Email, owner.PasswordHash); err != nil {
			if isUniqueViolation(err) {
				return store.ErrEmailTaken
			}
			return fmt.Errorf("insert user: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.Company{}, core.User{}, err
	}

	slog.InfoContext(ctx, "Company registered", "company_id", company.ID, "user_id", owner.ID)
	return company, owner, nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, company_id, name, email, password_hash FROM users WHERE lower(email) = lower(?)`, email).
		Scan(&u.ID, &u.CompanyID, &u.Name, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, store.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.WarnContext(ctx, "Rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// dateText encodes an unset date as ''.
func dateText(d core.Date) string {
	return d.String()
}

func parseDateText(s string) (core.Date, error) {
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}, fmt.Errorf("decode date %q: %w", s, err)
	}
	return d, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
