package services

import (
	"errors"
	"testing"

	"bullfinance/internal/core"
)

func TestNextOccurrence(t *testing.T) {
	tests := []struct {
		name      string
		frequency core.Frequency
		start     core.Date
		last      core.Date
		want      string
	}{
		{"weekly from start", core.Weekly, core.NewDate(2025, 1, 1), core.Date{}, "2025-01-08"},
		{"monthly from start", core.Monthly, core.NewDate(2025, 1, 15), core.Date{}, "2025-02-15"},
		{"monthly from watermark", core.Monthly, core.NewDate(2025, 1, 15), core.NewDate(2025, 2, 15), "2025-03-15"},
		{"monthly overflow normalizes", core.Monthly, core.NewDate(2025, 1, 31), core.Date{}, "2025-03-03"},
		{"quarterly", core.Quarterly, core.NewDate(2025, 1, 10), core.Date{}, "2025-04-10"},
		{"annual leap day", core.Annual, core.NewDate(2024, 2, 29), core.Date{}, "2025-03-01"},
		{"weekly across year", core.Weekly, core.NewDate(2024, 1, 1), core.NewDate(2024, 12, 28), "2025-01-04"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextOccurrence(core.RecurringTransaction{
				Frequency: tt.frequency, StartDate: tt.start, LastGenerated: tt.last,
			})
			if err != nil {
				t.Fatalf("NextOccurrence() error = %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("NextOccurrence() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestGetStepStrategy_Unknown(t *testing.T) {
	_, err := GetStepStrategy(core.Frequency("daily"))
	if !errors.Is(err, core.ErrInvalidFrequency) {
		t.Errorf("GetStepStrategy() error = %v, want ErrInvalidFrequency", err)
	}
}
