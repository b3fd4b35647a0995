package billingperiod

import (
	"testing"
	"time"

	"github.com/flexprice/flexprice/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestGenerate_Monthly(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	periods := Generate("sub_1", start, end, types.BillingFrequencyMonthly, "t1", "u1")
	assert.Len(t, periods, 3)
	assert.True(t, periods[0].Start.Equal(start))
	assert.True(t, periods[0].End.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, periods[2].End.Equal(end))
}

func TestGenerate_MonthlyClampsDayOverflow(t *testing.T) {
	// Jan 31 -> Feb 28 (2026 is not a leap year) -> Mar 28, not Mar 31.
	start := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	periods := Generate("sub_1", start, end, types.BillingFrequencyMonthly, "t1", "u1")
	assert.True(t, periods[0].End.Equal(time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)), "got %v", periods[0].End)
	assert.True(t, periods[1].Start.Equal(time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)))
}

func TestGenerate_MonthlyClampLeapYear(t *testing.T) {
	start := time.Date(2028, 1, 31, 0, 0, 0, 0, time.UTC) // 2028 is a leap year
	end := time.Date(2028, 3, 1, 0, 0, 0, 0, time.UTC)

	periods := Generate("sub_1", start, end, types.BillingFrequencyMonthly, "t1", "u1")
	assert.True(t, periods[0].End.Equal(time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC)), "got %v", periods[0].End)
}

func TestGenerate_QuarterlyAndYearly(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	quarterly := Generate("sub_1", start, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), types.BillingFrequencyQuarterly, "t1", "u1")
	assert.Len(t, quarterly, 2)
	assert.True(t, quarterly[0].End.Equal(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)))

	yearly := Generate("sub_1", start, time.Date(2028, 1, 1, 0, 0, 0, 0, time.UTC), types.BillingFrequencyYearly, "t1", "u1")
	assert.Len(t, yearly, 2)
	assert.True(t, yearly[0].End.Equal(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestGenerate_FinalPeriodClippedToEnd(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	periods := Generate("sub_1", start, end, types.BillingFrequencyMonthly, "t1", "u1")
	assert.Len(t, periods, 1)
	assert.True(t, periods[0].End.Equal(end))
}

func TestBillingPeriod_ContainsClosedUpperBoundary(t *testing.T) {
	p := &BillingPeriod{
		Start: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	assert.True(t, p.Contains(p.Start))
	assert.True(t, p.Contains(p.End))
	assert.False(t, p.Contains(p.End.Add(time.Nanosecond)))
	assert.False(t, p.Contains(p.Start.Add(-time.Nanosecond)))
}

func TestNormalize_UnrecognizedFallsBackToMonthly(t *testing.T) {
	assert.Equal(t, types.BillingFrequencyMonthly, types.BillingFrequency("weekly").Normalize())
}
