package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bullfinance/internal/amqp"
	"bullfinance/internal/core"
	"bullfinance/internal/finance"
	"bullfinance/internal/store"
)

type OutcomeKind string

const (
	OutcomeGenerated OutcomeKind = "generated"
	OutcomeNotDue    OutcomeKind = "not_due"
	OutcomeInactive  OutcomeKind = "inactive"
	OutcomeEnded     OutcomeKind = "ended"
	OutcomeDuplicate OutcomeKind = "duplicate"
)

// Outcome reports what a scheduling call did. NextDate is the computed
// occurrence date; when Kind is not_due it is informational only.
type Outcome struct {
	Kind       OutcomeKind `json:"outcome"`
	NextDate   core.Date   `json:"next_date"`
	RecordID   string      `json:"record_id,omitempty"`
	RecordType string      `json:"record_type,omitempty"`
}

// OccurrencePublisher announces materialized occurrences. *amqp.Client implements it.
type OccurrencePublisher interface {
	PublishOccurrence(ctx context.Context, msg *amqp.OccurrenceMessage) error
}

// Invalidator drops cached aggregates for a company after its records change.
type Invalidator interface {
	InvalidateCompany(companyID string)
}

// Evaluate decides whether rt has an occurrence due on or before today and
// builds it. It has no side effects.
func Evaluate(rt core.RecurringTransaction, today core.Date) (Outcome, *core.Occurrence, error) {
	next, err := NextOccurrence(rt)
	if err != nil {
		return Outcome{}, nil, err
	}
	out := Outcome{NextDate: next}

	switch {
	case !rt.Active:
		out.Kind = OutcomeInactive
		return out, nil, nil
	case !rt.EndDate.IsZero() && next.After(rt.EndDate.Time):
		out.Kind = OutcomeEnded
		return out, nil, nil
	case next.After(today.Time):
		out.Kind = OutcomeNotDue
		return out, nil, nil
	}

	occ := &core.Occurrence{RecurringID: rt.ID, Date: next}
	description := rt.Description + core.RecurringSuffix
	switch rt.Type {
	case core.RecurringReceivable:
		occ.Receivable = &core.Receivable{
			CompanyID:     rt.CompanyID,
			CustomerID:    rt.CustomerID,
			Description:   description,
			Amount:        rt.Amount,
			DueDate:       next,
			Status:        core.ReceivablePending,
			PaymentMethod: rt.PaymentMethod,
			RecurringID:   rt.ID,
		}
	case core.RecurringPayable:
		occ.Payable = &core.Payable{
			CompanyID:     rt.CompanyID,
			SupplierID:    rt.SupplierID,
			CustomerID:    rt.CustomerID,
			Description:   description,
			Amount:        rt.Amount,
			DueDate:       next,
			Status:        core.PayablePending,
			PaymentMethod: rt.PaymentMethod,
			RecurringID:   rt.ID,
		}
	default:
		return Outcome{}, nil, fmt.Errorf("%w: %q", core.ErrInvalidType, rt.Type)
	}
	out.Kind = OutcomeGenerated
	out.RecordType = string(rt.Type)
	return out, occ, nil
}

// RecurrenceScheduler materializes due occurrences of recurring templates.
type RecurrenceScheduler struct {
	store       store.RecurringStore
	publisher   OccurrencePublisher
	invalidator Invalidator
	maxCatchUp  int
}

// NewRecurrenceScheduler builds a scheduler. publisher and invalidator may be nil.
func NewRecurrenceScheduler(st store.RecurringStore, publisher OccurrencePublisher, invalidator Invalidator, maxCatchUp int) *RecurrenceScheduler {
	if maxCatchUp <= 0 {
		maxCatchUp = 1
	}
	return &RecurrenceScheduler{
		store:       st,
		publisher:   publisher,
		invalidator: invalidator,
		maxCatchUp:  maxCatchUp,
	}
}

func (s *RecurrenceScheduler) Create(ctx context.Context, rt core.RecurringTransaction) (core.RecurringTransaction, error) {
	rt.LastGenerated = core.Date{}
	if err := rt.Validate(); err != nil {
		return core.RecurringTransaction{}, err
	}
	created, err := s.store.CreateRecurring(ctx, rt)
	if err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("create recurring: %w", err)
	}
	slog.InfoContext(ctx, "Recurring transaction created",
		"recurring_id", created.ID,
		"company_id", created.CompanyID,
		"frequency", created.Frequency)
	return created, nil
}

// RecurringView is a template with its next computed occurrence date.
type RecurringView struct {
	core.RecurringTransaction
	NextDate core.Date `json:"next_date"`
}

type RecurringList struct {
	Items    []RecurringView           `json:"items"`
	Overview finance.RecurringOverview `json:"overview"`
}

func (s *RecurrenceScheduler) List(ctx context.Context, companyID string) (RecurringList, error) {
	rts, err := s.store.ListRecurring(ctx, companyID)
	if err != nil {
		return RecurringList{}, fmt.Errorf("list recurring: %w", err)
	}
	items := make([]RecurringView, 0, len(rts))
	for _, rt := range rts {
		next, err := NextOccurrence(rt)
		if err != nil {
			slog.WarnContext(ctx, "Skipping next date for recurring transaction",
				"recurring_id", rt.ID, "error", err)
		}
		items = append(items, RecurringView{RecurringTransaction: rt, NextDate: next})
	}
	return RecurringList{Items: items, Overview: finance.RecurringSummary(rts)}, nil
}

// SetActive flips the active flag and nothing else.
func (s *RecurrenceScheduler) SetActive(ctx context.Context, companyID, id string, active bool) error {
	if err := s.store.SetRecurringActive(ctx, companyID, id, active); err != nil {
		return fmt.Errorf("set recurring active: %w", err)
	}
	return nil
}

// Generate runs one scheduling step for a single template.
func (s *RecurrenceScheduler) Generate(ctx context.Context, companyID, id string, today core.Date) (Outcome, error) {
	rt, err := s.store.GetRecurring(ctx, companyID, id)
	if err != nil {
		return Outcome{}, fmt.Errorf("get recurring: %w", err)
	}
	return s.generate(ctx, rt, today)
}

func (s *RecurrenceScheduler) generate(ctx context.Context, rt core.RecurringTransaction, today core.Date) (Outcome, error) {
	out, occ, err := Evaluate(rt, today)
	if err != nil {
		return Outcome{}, err
	}
	if occ == nil {
		return out, nil
	}

	recordID, err := s.store.MaterializeOccurrence(ctx, rt.CompanyID, *occ)
	if errors.Is(err, store.ErrDuplicateOccurrence) {
		slog.WarnContext(ctx, "Occurrence already materialized",
			"recurring_id", rt.ID,
			"due_date", occ.Date.String())
		out.Kind = OutcomeDuplicate
		return out, nil
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("materialize occurrence: %w", err)
	}
	out.RecordID = recordID

	slog.InfoContext(ctx, "Created record from recurring template",
		"recurring_id", rt.ID,
		"company_id", rt.CompanyID,
		"record_id", recordID,
		"record_type", rt.Type,
		"due_date", occ.Date.String(),
		"amount", rt.Amount.StringFixed(2))

	if s.invalidator != nil {
		s.invalidator.InvalidateCompany(rt.CompanyID)
	}
	s.publish(ctx, rt, out)
	return out, nil
}

func (s *RecurrenceScheduler) publish(ctx context.Context, rt core.RecurringTransaction, out Outcome) {
	if s.publisher == nil {
		return
	}
	msg := amqp.NewOccurrenceMessage(rt.CompanyID, rt.ID, out.RecordID, out.RecordType,
		out.NextDate.String(), rt.Amount.StringFixed(2))
	if err := s.publisher.PublishOccurrence(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish occurrence message",
			"recurring_id", rt.ID,
			"record_id", out.RecordID,
			"error", err)
	}
}

// ProcessDue catches every active template up to now, generating at most
// maxCatchUp occurrences per template per run. Failures are logged and the
// run continues with the next template.
func (s *RecurrenceScheduler) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	active, err := s.store.ListActiveRecurring(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active recurring: %w", err)
	}
	today := core.DateOf(now)

	slog.InfoContext(ctx, "Processing recurring transactions",
		"total_active", len(active),
		"processing_date", today.String())

	processed := 0
	for _, rt := range active {
		if err := ctx.Err(); err != nil {
			return processed, err
		}
		for i := 0; i < s.maxCatchUp; i++ {
			out, err := s.generate(ctx, rt, today)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to process recurring transaction",
					"recurring_id", rt.ID,
					"company_id", rt.CompanyID,
					"error", err)
				break
			}
			if out.Kind != OutcomeGenerated {
				break
			}
			processed++
			rt.LastGenerated = out.NextDate
		}
	}

	slog.InfoContext(ctx, "Recurring processing complete",
		"processed", processed,
		"total_checked", len(active))
	return processed, nil
}
