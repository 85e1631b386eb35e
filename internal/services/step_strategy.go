// Package services orchestrates the stores, the aggregation engine and the
// outbound adapters.
//
// This file holds the frequency step strategies used by the recurrence
// scheduler. Each frequency advances a base date by a calendar step.
package services

import (
	"fmt"

	"bullfinance/internal/core"
)

// StepStrategy advances an occurrence date by one period.
type StepStrategy interface {
	Next(base core.Date) core.Date
}

// DayStep advances by a fixed number of days.
type DayStep struct{ Days int }

func (s DayStep) Next(base core.Date) core.Date { return base.AddDays(s.Days) }

// MonthStep advances by calendar months; day overflow normalizes forward.
type MonthStep struct{ Months int }

func (s MonthStep) Next(base core.Date) core.Date { return base.AddMonths(s.Months) }

var stepStrategies = map[core.Frequency]StepStrategy{
	core.Weekly:    DayStep{Days: 7},
	core.Monthly:   MonthStep{Months: 1},
	core.Quarterly: MonthStep{Months: 3},
	core.Annual:    MonthStep{Months: 12},
}

// GetStepStrategy returns the strategy registered for frequency.
func GetStepStrategy(frequency core.Frequency) (StepStrategy, error) {
	s, ok := stepStrategies[frequency]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidFrequency, frequency)
	}
	return s, nil
}

// NextOccurrence is the base date (last_generated, else start_date) advanced by one step.
func NextOccurrence(rt core.RecurringTransaction) (core.Date, error) {
	step, err := GetStepStrategy(rt.Frequency)
	if err != nil {
		return core.Date{}, err
	}
	base := rt.LastGenerated
	if base.IsZero() {
		base = rt.StartDate
	}
	return step.Next(base), nil
}
