package service

import (
	"testing"

	"github.com/flexprice/flexprice/internal/domain/plan"
	"github.com/flexprice/flexprice/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func uptr(v uint64) *uint64 { return &v }

func TestPricingEvaluator_Flat(t *testing.T) {
	e := NewPricingEvaluator()
	charge, unitPrice, _ := e.Evaluate(types.PricingTypeFlat, plan.PricingDetails{
		Amount: decPtr("49.99"),
	}, dec("1000"), "usd", nil)

	assert.True(t, charge.Equal(dec("49.99")))
	assert.True(t, unitPrice.Equal(dec("49.99")))
}

func TestPricingEvaluator_Tiered(t *testing.T) {
	e := NewPricingEvaluator()
	details := plan.PricingDetails{
		Tiers: []plan.Tier{
			{Start: 0, End: uptr(100), Price: dec("1.00")},
			{Start: 100, End: uptr(200), Price: dec("0.50")},
			{Start: 200, End: nil, Price: dec("0.10")},
		},
	}

	charge, _, _ := e.Evaluate(types.PricingTypeTiered, details, dec("250"), "usd", nil)
	// 100*1.00 + 100*0.50 + 50*0.10 = 100 + 50 + 5 = 155
	assert.True(t, charge.Equal(dec("155")), "got %s", charge.String())
}

func TestPricingEvaluator_Volume(t *testing.T) {
	e := NewPricingEvaluator()
	details := plan.PricingDetails{
		Tiers: []plan.Tier{
			{Start: 0, Price: dec("1.00")},
			{Start: 100, Price: dec("0.50")},
			{Start: 200, Price: dec("0.10")},
		},
	}

	charge, unitPrice, _ := e.Evaluate(types.PricingTypeVolume, details, dec("250"), "usd", nil)
	// entire quantity billed at the tier starting at 200: 250*0.10 = 25
	assert.True(t, charge.Equal(dec("25")), "got %s", charge.String())
	assert.True(t, unitPrice.Equal(dec("0.10")))
}

func TestPricingEvaluator_VolumeBelowLowestTier(t *testing.T) {
	e := NewPricingEvaluator()
	details := plan.PricingDetails{
		Tiers: []plan.Tier{
			{Start: 10, Price: dec("1.00")},
			{Start: 100, Price: dec("0.50")},
		},
	}

	// quantity below every configured start falls back to the lowest tier
	charge, _, _ := e.Evaluate(types.PricingTypeVolume, details, dec("5"), "usd", nil)
	assert.True(t, charge.Equal(dec("5")), "got %s", charge.String())
}

func TestPricingEvaluator_Graduated(t *testing.T) {
	e := NewPricingEvaluator()
	details := plan.PricingDetails{
		Tiers: []plan.Tier{
			{Start: 0, Price: dec("2.00")},
			{Start: 50, Price: dec("1.00")},
		},
	}

	charge, unitPrice, _ := e.Evaluate(types.PricingTypeGraduated, details, dec("75"), "usd", nil)
	assert.True(t, charge.Equal(dec("75")), "got %s", charge.String())
	assert.True(t, unitPrice.Equal(dec("1.00")))
}

func TestPricingEvaluator_Package(t *testing.T) {
	e := NewPricingEvaluator()
	details := plan.PricingDetails{
		PackageSize:  decPtr("100"),
		PackagePrice: decPtr("10"),
	}

	charge, _, _ := e.Evaluate(types.PricingTypePackage, details, dec("250"), "usd", nil)
	// ceil(250/100) = 3 packages * 10 = 30
	assert.True(t, charge.Equal(dec("30")), "got %s", charge.String())
}

func TestPricingEvaluator_PackageZeroQuantity(t *testing.T) {
	e := NewPricingEvaluator()
	details := plan.PricingDetails{PackageSize: decPtr("100"), PackagePrice: decPtr("10")}
	charge, unitPrice, _ := e.Evaluate(types.PricingTypePackage, details, decimal.Zero, "usd", nil)
	assert.True(t, charge.Equal(decimal.Zero))
	assert.True(t, unitPrice.Equal(decimal.Zero))
}

func TestPricingEvaluator_Threshold(t *testing.T) {
	e := NewPricingEvaluator()
	details := plan.PricingDetails{
		Thresholds: []plan.ThresholdTier{
			{Threshold: 1000, Price: dec("50")},
			{Threshold: 500, Price: dec("20")},
			{Threshold: 100, Price: dec("5")},
		},
	}

	charge, _, _ := e.Evaluate(types.PricingTypeThreshold, details, dec("600"), "usd", nil)
	// crosses 100 and 500, not 1000: 5 + 20 = 25, independent of list order
	assert.True(t, charge.Equal(dec("25")), "got %s", charge.String())
}

func TestPricingEvaluator_UsageBasedSubscription(t *testing.T) {
	e := NewPricingEvaluator()
	details := plan.PricingDetails{
		BaseFee:    decPtr("10"),
		UsagePrice: decPtr("0.05"),
	}

	charge, _, _ := e.Evaluate(types.PricingTypeUsageBasedSubscription, details, dec("200"), "usd", nil)
	assert.True(t, charge.Equal(dec("20")), "got %s", charge.String())
}

func TestPricingEvaluator_TimeBased(t *testing.T) {
	e := NewPricingEvaluator()
	details := plan.PricingDetails{RatePerUnit: decPtr("0.02"), Unit: "second"}
	charge, _, _ := e.Evaluate(types.PricingTypeTimeBased, details, dec("500"), "usd", nil)
	assert.True(t, charge.Equal(dec("10")), "got %s", charge.String())
}

func TestPricingEvaluator_DimensionBased(t *testing.T) {
	e := NewPricingEvaluator()
	details := plan.PricingDetails{
		BaseRate: decPtr("1.00"),
		Dimensions: map[string]plan.DimensionRate{
			"region": {ValueKey: "is_premium_region", Multiplier: dec("0.20")},
		},
	}

	charge, _, _ := e.Evaluate(types.PricingTypeDimensionBased, details, dec("10"), "usd", DimensionValues{
		"is_premium_region": dec("1"),
	})
	// rate = 1.00 * (1 + 1*0.20) = 1.20, charge = 10 * 1.20 = 12
	assert.True(t, charge.Equal(dec("12")), "got %s", charge.String())
}

func TestPricingEvaluator_Dynamic(t *testing.T) {
	e := NewPricingEvaluator()
	details := plan.PricingDetails{BaseRate: decPtr("0.30"), Formula: "base_rate * surge_multiplier"}
	charge, unitPrice, _ := e.Evaluate(types.PricingTypeDynamic, details, dec("10"), "usd", nil)
	assert.True(t, charge.Equal(dec("3")), "got %s", charge.String())
	assert.True(t, unitPrice.Equal(dec("0.30")))
}

func TestPricingEvaluator_UnknownType(t *testing.T) {
	e := NewPricingEvaluator()
	charge, unitPrice, description := e.Evaluate(types.PricingType("made_up"), plan.PricingDetails{}, dec("10"), "usd", nil)
	assert.True(t, charge.Equal(decimal.Zero))
	assert.True(t, unitPrice.Equal(decimal.Zero))
	assert.Contains(t, description, "Unknown pricing type for made_up")
}
