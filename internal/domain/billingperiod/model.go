package billingperiod

import (
	"time"

	ierr "github.com/flexprice/flexprice/internal/errors"
	"github.com/flexprice/flexprice/internal/types"
)

// BillingPeriod is one contiguous, closed billing window
// [Start, End] for a subscription. Periods for the same subscription never
// overlap and their union covers the subscription's active interval; an
// event at time T belongs to the period where Start <= T <= End, ties at
// the boundary resolving to the earlier period.
type BillingPeriod struct {
	ID             string  `db:"id" json:"id"`
	SubscriptionID string  `db:"subscription_id" json:"subscription_id"`
	Start          time.Time `db:"start" json:"start"`
	End            time.Time `db:"end" json:"end"`
	InvoiceID      *string `db:"invoice_id" json:"invoice_id,omitempty"`
	types.BaseModel
}

// Contains reports whether t falls within [Start, End], per the
// half-open-with-closed-upper-tie-break rule used for boundary events.
func (p *BillingPeriod) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

func (p *BillingPeriod) Validate() error {
	if p.SubscriptionID == "" {
		return ierr.NewError("subscription_id is required").Mark(ierr.ErrValidation)
	}
	if !p.End.After(p.Start) {
		return ierr.NewError("end must be after start").Mark(ierr.ErrValidation)
	}
	return nil
}

// NewBillingPeriod constructs a billing period with a generated ID.
func NewBillingPeriod(subscriptionID string, start, end time.Time, tenantID, createdBy string) *BillingPeriod {
	return &BillingPeriod{
		ID:             types.GenerateUUIDWithPrefix(types.UUIDPrefixBillingPeriod),
		SubscriptionID: subscriptionID,
		Start:          start,
		End:            end,
		BaseModel: types.BaseModel{
			TenantID:  tenantID,
			CreatedBy: createdBy,
			UpdatedBy: createdBy,
			Status:    types.StatusActive,
		},
	}
}

// Generate produces the contiguous sequence of periods covering
// [start, end] for the given frequency, per the billing period generation
// rule: step by calendar month/quarter/year (clamped to month length),
// clipping the final period to end.
func Generate(subscriptionID string, start, end time.Time, frequency types.BillingFrequency, tenantID, createdBy string) []*BillingPeriod {
	var periods []*BillingPeriod
	cursor := start
	for cursor.Before(end) {
		next := step(cursor, frequency)
		if next.After(end) {
			next = end
		}
		periods = append(periods, NewBillingPeriod(subscriptionID, cursor, next, tenantID, createdBy))
		cursor = next
	}
	return periods
}

// step advances t by one period boundary, clamping day-of-month overflow
// to the last day of the target month (e.g. Jan 31 + 1 month -> Feb 28/29).
func step(t time.Time, frequency types.BillingFrequency) time.Time {
	switch frequency.Normalize() {
	case types.BillingFrequencyQuarterly:
		return addMonthsClamped(t, 3)
	case types.BillingFrequencyYearly:
		return addMonthsClamped(t, 12)
	default:
		return addMonthsClamped(t, 1)
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	day := t.Day()
	firstOfMonth := time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	targetFirst := firstOfMonth.AddDate(0, months, 0)
	lastDay := targetFirst.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(targetFirst.Year(), targetFirst.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
