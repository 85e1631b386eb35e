package services

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"bullfinance/internal/cache"
	"bullfinance/internal/core"
	"bullfinance/internal/finance"
	"bullfinance/internal/store"
)

// ReportService loads scoped datasets and runs the aggregation engine over them.
type ReportService struct {
	reader store.RecordReader
	cache  cache.Cache[finance.Dataset]
	now    func() time.Time

	// generations counts invalidations per company. A load only caches its
	// result when no invalidation happened while it was fetching.
	mu          sync.Mutex
	generations map[string]uint64
}

// NewReportService builds the service. datasets may be nil to disable caching.
func NewReportService(reader store.RecordReader, datasets cache.Cache[finance.Dataset]) *ReportService {
	return &ReportService{
		reader:      reader,
		cache:       datasets,
		now:         time.Now,
		generations: make(map[string]uint64),
	}
}

func cacheKey(scope core.Scope) string {
	return scope.CompanyID + ":" + scope.CustomerID
}

// InvalidateCompany drops every cached dataset of the company.
func (s *ReportService) InvalidateCompany(companyID string) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[companyID]++
	s.cache.DeletePrefix(companyID + ":")
}

func (s *ReportService) generation(companyID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[companyID]
}

// cacheIfCurrent caches ds unless the company was invalidated since gen was read.
func (s *ReportService) cacheIfCurrent(key, companyID string, gen uint64, ds finance.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generations[companyID] == gen {
		s.cache.Set(key, ds)
	}
}

// into wraps a list call so its result lands in dst only when it succeeds.
func into[T any](dst *[]T, list func(context.Context) ([]T, error)) func(context.Context) error {
	return func(ctx context.Context) error {
		v, err := list(ctx)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

// LoadDataset fetches every collection for scope concurrently. A failed fetch
// is logged and leaves its collection empty, even if the reader returned
// rows alongside the error; it never fails the load.
func (s *ReportService) LoadDataset(ctx context.Context, scope core.Scope) finance.Dataset {
	key := cacheKey(scope)
	var gen uint64
	if s.cache != nil {
		if ds, ok := s.cache.Get(key); ok {
			return ds
		}
		gen = s.generation(scope.CompanyID)
	}

	var (
		ds     finance.Dataset
		failed atomic.Bool
	)
	g, gctx := errgroup.WithContext(ctx)
	fetch := func(name string, fn func(context.Context) error) {
		g.Go(func() error {
			if err := fn(gctx); err != nil {
				slog.ErrorContext(ctx, "Failed to load collection",
					"collection", name,
					"company_id", scope.CompanyID,
					"error", err)
				failed.Store(true)
			}
			return nil
		})
	}

	// Each goroutine writes a distinct field of ds.
	fetch("customers", into(&ds.Customers, func(ctx context.Context) ([]core.Customer, error) {
		return s.reader.ListCustomers(ctx, scope.CompanyID)
	}))
	fetch("invoices", into(&ds.Invoices, func(ctx context.Context) ([]core.Invoice, error) {
		return s.reader.ListInvoices(ctx, scope)
	}))
	fetch("receivables", into(&ds.Receivables, func(ctx context.Context) ([]core.Receivable, error) {
		return s.reader.ListReceivables(ctx, scope)
	}))
	fetch("payables", into(&ds.Payables, func(ctx context.Context) ([]core.Payable, error) {
		return s.reader.ListPayables(ctx, scope)
	}))
	fetch("expenses", into(&ds.Expenses, func(ctx context.Context) ([]core.Expense, error) {
		return s.reader.ListExpenses(ctx, scope.CompanyID)
	}))
	fetch("bank_accounts", into(&ds.BankAccounts, func(ctx context.Context) ([]core.BankAccount, error) {
		return s.reader.ListBankAccounts(ctx, scope.CompanyID)
	}))
	_ = g.Wait()

	if scope.CustomerID != "" {
		ds.Customers = onlyCustomer(ds.Customers, scope.CustomerID)
	}
	// Partial datasets are not cached so the next request retries the fetch.
	if s.cache != nil && !failed.Load() {
		s.cacheIfCurrent(key, scope.CompanyID, gen, ds)
	}
	return ds
}

func onlyCustomer(cs []core.Customer, id string) []core.Customer {
	for _, c := range cs {
		if c.ID == id {
			return []core.Customer{c}
		}
	}
	return nil
}

func (s *ReportService) Dashboard(ctx context.Context, scope core.Scope) finance.DashboardTotals {
	return finance.Dashboard(s.LoadDataset(ctx, scope))
}

func (s *ReportService) DRE(ctx context.Context, scope core.Scope, period finance.Period) finance.DRE {
	return finance.ComputeDRE(s.LoadDataset(ctx, scope), period, s.now())
}

func (s *ReportService) CashFlow(ctx context.Context, scope core.Scope) finance.CashFlow {
	return finance.ProjectCashFlow(s.LoadDataset(ctx, scope), core.DateOf(s.now()))
}

func (s *ReportService) Management(ctx context.Context, scope core.Scope, period finance.Period) finance.ManagementReport {
	return finance.Management(s.LoadDataset(ctx, scope), period, s.now())
}
