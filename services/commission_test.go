package services

import (
	"errors"
	"testing"
	"time"
)

func TestCommissionForPeriod(t *testing.T) {
	tests := []struct {
		name           string
		lifetimeBefore float64
		periodRevenue  float64
		threshold      float64
		rate           float64
		wantApplies    bool
		wantAmount     float64
	}{
		{
			name:           "below threshold pays nothing",
			lifetimeBefore: 10000, periodRevenue: 5000, threshold: 50000, rate: 10,
			wantApplies: false, wantAmount: 0,
		},
		{
			name:           "crossing period charged on full revenue",
			lifetimeBefore: 48000, periodRevenue: 5000, threshold: 50000, rate: 10,
			wantApplies: true, wantAmount: 500,
		},
		{
			name:           "exactly reaching threshold applies",
			lifetimeBefore: 45000, periodRevenue: 5000, threshold: 50000, rate: 10,
			wantApplies: true, wantAmount: 500,
		},
		{
			name:           "one under threshold does not apply",
			lifetimeBefore: 44999, periodRevenue: 5000, threshold: 50000, rate: 10,
			wantApplies: false, wantAmount: 0,
		},
		{
			name:           "already past threshold keeps applying",
			lifetimeBefore: 120000, periodRevenue: 8000, threshold: 50000, rate: 10,
			wantApplies: true, wantAmount: 800,
		},
		{
			name:           "zero revenue period never applies",
			lifetimeBefore: 120000, periodRevenue: 0, threshold: 50000, rate: 10,
			wantApplies: false, wantAmount: 0,
		},
		{
			name:           "custom rate",
			lifetimeBefore: 60000, periodRevenue: 10000, threshold: 50000, rate: 7.5,
			wantApplies: true, wantAmount: 750,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			applies, amount := CommissionForPeriod(tt.lifetimeBefore, tt.periodRevenue, tt.threshold, tt.rate)
			if applies != tt.wantApplies {
				t.Errorf("applies = %t, want %t", applies, tt.wantApplies)
			}
			if amount != tt.wantAmount {
				t.Errorf("amount = %.2f, want %.2f", amount, tt.wantAmount)
			}
		})
	}
}

func TestValidatePaymentAmount(t *testing.T) {
	if err := ValidatePaymentAmount(100, 500); err != nil {
		t.Errorf("valid payment rejected: %v", err)
	}
	if err := ValidatePaymentAmount(500, 500); err != nil {
		t.Errorf("payment of exactly the balance rejected: %v", err)
	}
	if err := ValidatePaymentAmount(0, 500); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("zero amount: got %v, want ErrInvalidAmount", err)
	}
	if err := ValidatePaymentAmount(-10, 500); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("negative amount: got %v, want ErrInvalidAmount", err)
	}
	if err := ValidatePaymentAmount(600, 500); !errors.Is(err, ErrExceedsDue) {
		t.Errorf("overpayment: got %v, want ErrExceedsDue", err)
	}
}

func TestSettleAmount(t *testing.T) {
	if got := SettleAmount(500, 200); got != 300 {
		t.Errorf("SettleAmount(500, 200) = %.2f, want 300", got)
	}
	if got := SettleAmount(500, 500); got != 0 {
		t.Errorf("SettleAmount(500, 500) = %.2f, want 0", got)
	}
	// Overshoot clamps at zero instead of going negative
	if got := SettleAmount(500, 700); got != 0 {
		t.Errorf("SettleAmount(500, 700) = %.2f, want 0", got)
	}
}

func TestPeriodBounds(t *testing.T) {
	start, end := PeriodBounds(1, 2026)
	if !start.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", start)
	}
	if !end.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v", end)
	}

	// December rolls into the next year
	start, end = PeriodBounds(12, 2025)
	if !start.Equal(time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("december start = %v", start)
	}
	if !end.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("december end = %v", end)
	}
}

func TestNextDueDate(t *testing.T) {
	due := NextDueDate(1, 2026)
	want := time.Date(2026, 2, 11, 0, 0, 0, 0, time.UTC)
	if !due.Equal(want) {
		t.Errorf("NextDueDate(1, 2026) = %v, want %v", due, want)
	}
}

func TestInvoiceOverdueAndGrace(t *testing.T) {
	due := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	if InvoiceOverdue(due, time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC)) {
		t.Error("invoice overdue before its due date")
	}
	if !InvoiceOverdue(due, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("invoice not overdue after its due date")
	}

	// Grace runs 14 days past the due date: Feb 10 is still inside, Feb 15 is
	// past it.
	if GraceElapsed(due, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)) {
		t.Error("grace elapsed while still inside the window")
	}
	if !GraceElapsed(due, time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)) {
		t.Error("grace not elapsed after the window passed")
	}
}

func TestPreviousPeriod(t *testing.T) {
	tests := []struct {
		now       time.Time
		wantMonth int
		wantYear  int
	}{
		{time.Date(2026, 2, 1, 3, 0, 0, 0, time.UTC), 1, 2026},
		{time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 12, 2025},
		{time.Date(2026, 7, 15, 12, 30, 0, 0, time.UTC), 6, 2026},
	}
	for _, tt := range tests {
		month, year := PreviousPeriod(tt.now)
		if month != tt.wantMonth || year != tt.wantYear {
			t.Errorf("PreviousPeriod(%v) = %d/%d, want %d/%d", tt.now, month, year, tt.wantMonth, tt.wantYear)
		}
	}
}
