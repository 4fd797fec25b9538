// services/commission.go
package services

import (
	"errors"
	"fmt"
	"time"
)

// Settlement terms. An invoice is due a fixed number of days after its period
// closes; after the due date a further grace window passes before the seller
// is suspended.
const (
	DueDateOffsetDays = 10
	GracePeriodDays   = 14
)

// Sentinel errors for payment validation, matched with errors.Is by handlers
var (
	ErrInvalidAmount = errors.New("payment amount must be greater than zero")
	ErrExceedsDue    = errors.New("payment amount exceeds outstanding commission balance")
)

// PeriodBounds returns the UTC start (inclusive) and end (exclusive) of a
// settlement period.
func PeriodBounds(month, year int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	return start, end
}

// NextDueDate returns the payment due date for a period: period close plus the
// fixed offset.
func NextDueDate(month, year int) time.Time {
	_, end := PeriodBounds(month, year)
	return end.AddDate(0, 0, DueDateOffsetDays)
}

// CommissionForPeriod decides whether commission applies to a period's revenue
// and how much is owed. lifetimeBefore is the seller's lifetime earnings before
// this period's revenue is credited.
//
// Commission starts accruing once cumulative lifetime earnings reach the
// threshold. The period that crosses the threshold is charged on its full
// revenue; periods that stay strictly below it are charged nothing. Earnings
// from earlier below-threshold periods are never charged retroactively.
func CommissionForPeriod(lifetimeBefore, periodRevenue, threshold, ratePercent float64) (bool, float64) {
	if periodRevenue <= 0 {
		return false, 0
	}
	if lifetimeBefore+periodRevenue < threshold {
		return false, 0
	}
	return true, periodRevenue * ratePercent / 100.0
}

// ValidatePaymentAmount checks a requested payment against the seller's
// current outstanding balance.
func ValidatePaymentAmount(amount, due float64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount > due {
		return fmt.Errorf("%w: outstanding balance is %.2f", ErrExceedsDue, due)
	}
	return nil
}

// SettleAmount returns the new outstanding balance after a settled payment.
// The balance is clamped at zero, it never goes negative.
func SettleAmount(due, amount float64) float64 {
	newDue := due - amount
	if newDue < 0 {
		return 0
	}
	return newDue
}

// InvoiceOverdue reports whether an unpaid invoice has passed its due date.
func InvoiceOverdue(dueDate, now time.Time) bool {
	return now.After(dueDate)
}

// GraceElapsed reports whether the suspension grace window after an invoice's
// due date has fully passed.
func GraceElapsed(dueDate, now time.Time) bool {
	return now.After(dueDate.AddDate(0, 0, GracePeriodDays))
}

// PreviousPeriod returns the settlement period immediately before the given
// instant, i.e. the period the period-close scheduler should process.
func PreviousPeriod(now time.Time) (month, year int) {
	firstOfMonth := time.Date(now.UTC().Year(), now.UTC().Month(), 1, 0, 0, 0, 0, time.UTC)
	prev := firstOfMonth.AddDate(0, 0, -1)
	return int(prev.Month()), prev.Year()
}
