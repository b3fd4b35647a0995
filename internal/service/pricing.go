package service

import (
	"fmt"
	"sort"

	"github.com/flexprice/flexprice/internal/domain/plan"
	"github.com/flexprice/flexprice/internal/types"
	"github.com/shopspring/decimal"
)

// PricingEvaluator computes the charge for a single price component against
// an observed usage quantity. It is pure and stateless: every pricing rule
// reduces to (componentType, pricing_details, quantity) -> (charge,
// unit_price, description), generalizing the teacher's CalculateCost /
// calculateTieredCost switch-over-billing-model from 3 billing models to
// the full pricing_details enumeration.
type PricingEvaluator struct{}

func NewPricingEvaluator() *PricingEvaluator {
	return &PricingEvaluator{}
}

// DimensionValues supplies the observed value for each dimension_based rate
// adjustment, keyed by DimensionRate.ValueKey. Unused by every other type.
type DimensionValues map[string]decimal.Decimal

// Evaluate dispatches on componentType and returns the charge, a per-unit
// price for display (its meaning varies by type: the applied tier rate or
// charge / quantity for usage-driven types, the fee amount itself for flat
// and subscription), and a human-readable description of how the charge was
// derived. All arithmetic is decimal; rounding to the currency's minor
// unit is deferred to invoice totalization. Unknown pricing types never
// raise - they resolve to a zero charge with an explanatory description.
func (e *PricingEvaluator) Evaluate(
	componentType types.PricingType,
	details plan.PricingDetails,
	quantity decimal.Decimal,
	currency string,
	dimensionValues DimensionValues,
) (charge decimal.Decimal, unitPrice decimal.Decimal, description string) {
	switch componentType {
	case types.PricingTypeFlat, types.PricingTypeSubscription:
		return e.evaluateFlat(details)
	case types.PricingTypeTiered:
		return e.evaluateTiered(details, quantity)
	case types.PricingTypeVolume:
		return e.evaluateVolume(details, quantity)
	case types.PricingTypeGraduated:
		return e.evaluateGraduated(details, quantity)
	case types.PricingTypePackage:
		return e.evaluatePackage(details, quantity)
	case types.PricingTypeThreshold:
		return e.evaluateThreshold(details, quantity)
	case types.PricingTypeUsageBasedSubscription:
		return e.evaluateUsageBasedSubscription(details, quantity)
	case types.PricingTypeTimeBased:
		return e.evaluateTimeBased(details, quantity)
	case types.PricingTypeDimensionBased:
		return e.evaluateDimensionBased(details, quantity, dimensionValues)
	case types.PricingTypeDynamic:
		return e.evaluateDynamic(details, quantity)
	default:
		return decimal.Zero, decimal.Zero, fmt.Sprintf("Unknown pricing type for %s", componentType)
	}
}

func (e *PricingEvaluator) evaluateFlat(d plan.PricingDetails) (decimal.Decimal, decimal.Decimal, string) {
	amount := decimalOrZero(d.Amount)
	return amount, amount, fmt.Sprintf("flat charge of %s", amount.String())
}

// evaluateTiered implements marginal (slab) pricing: usage is consumed
// tier by tier from the lowest Start upward, each tier billed only for the
// portion of quantity that falls within its [Start, End) width.
func (e *PricingEvaluator) evaluateTiered(d plan.PricingDetails, quantity decimal.Decimal) (decimal.Decimal, decimal.Decimal, string) {
	tiers := sortedByStartAsc(d.Tiers)
	if len(tiers) == 0 {
		return decimal.Zero, decimal.Zero, "no tiers configured for tiered pricing"
	}

	charge := decimal.Zero
	remaining := quantity
	for _, tier := range tiers {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		width := tierWidth(tier)
		tierQuantity := remaining
		if width != nil && remaining.GreaterThan(*width) {
			tierQuantity = *width
		}
		charge = charge.Add(tierQuantity.Mul(tier.Price))
		remaining = remaining.Sub(tierQuantity)
	}

	unitPrice := decimal.Zero
	if !quantity.IsZero() {
		unitPrice = charge.Div(quantity)
	}
	return charge, unitPrice, fmt.Sprintf("tiered charge across %d tier(s) for quantity %s", len(tiers), quantity.String())
}

// evaluateVolume implements single-rate volume pricing: scan tiers in
// descending Start order and bill the entire quantity at the rate of the
// first tier whose Start is at or below quantity.
func (e *PricingEvaluator) evaluateVolume(d plan.PricingDetails, quantity decimal.Decimal) (decimal.Decimal, decimal.Decimal, string) {
	tier, ok := selectDescendingTier(d.Tiers, quantity)
	if !ok {
		return decimal.Zero, decimal.Zero, "no tiers configured for volume pricing"
	}
	charge := quantity.Mul(tier.Price)
	return charge, tier.Price, fmt.Sprintf("volume rate %s applied at tier starting %d", tier.Price.String(), tier.Start)
}

// evaluateGraduated uses the same descending tier selection as volume but
// bills at the selected tier's per-unit price times the full quantity,
// matching the teacher's distinction between a "rate" tier and a
// "graduated" tier in description only.
func (e *PricingEvaluator) evaluateGraduated(d plan.PricingDetails, quantity decimal.Decimal) (decimal.Decimal, decimal.Decimal, string) {
	tier, ok := selectDescendingTier(d.Tiers, quantity)
	if !ok {
		return decimal.Zero, decimal.Zero, "no tiers configured for graduated pricing"
	}
	charge := quantity.Mul(tier.Price)
	return charge, tier.Price, fmt.Sprintf("graduated rate %s applied from tier (%d)+", tier.Price.String(), tier.Start)
}

func (e *PricingEvaluator) evaluatePackage(d plan.PricingDetails, quantity decimal.Decimal) (decimal.Decimal, decimal.Decimal, string) {
	packageSize := decimalOrZero(d.PackageSize)
	packagePrice := decimalOrZero(d.PackagePrice)
	if packageSize.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, decimal.Zero, "package_size must be positive for package pricing"
	}

	packages := quantity.Div(packageSize).Ceil()
	charge := packages.Mul(packagePrice)

	unitPrice := decimal.Zero
	if !quantity.IsZero() {
		unitPrice = charge.Div(quantity)
	}
	return charge, unitPrice, fmt.Sprintf("%s package(s) of %s at %s each", packages.String(), packageSize.String(), packagePrice.String())
}

// evaluateThreshold charges once for every threshold at or below quantity.
// The crossed set is independent of list order; only the description
// preserves the configured order.
func (e *PricingEvaluator) evaluateThreshold(d plan.PricingDetails, quantity decimal.Decimal) (decimal.Decimal, decimal.Decimal, string) {
	if len(d.Thresholds) == 0 {
		return decimal.Zero, decimal.Zero, "no thresholds configured for threshold pricing"
	}

	charge := decimal.Zero
	crossed := 0
	for _, th := range d.Thresholds {
		if quantity.GreaterThanOrEqual(decimal.NewFromUint64(th.Threshold)) {
			charge = charge.Add(th.Price)
			crossed++
		}
	}

	unitPrice := decimal.Zero
	if !quantity.IsZero() {
		unitPrice = charge.Div(quantity)
	}
	return charge, unitPrice, fmt.Sprintf("%d of %d threshold(s) crossed at quantity %s", crossed, len(d.Thresholds), quantity.String())
}

func (e *PricingEvaluator) evaluateUsageBasedSubscription(d plan.PricingDetails, quantity decimal.Decimal) (decimal.Decimal, decimal.Decimal, string) {
	baseFee := decimalOrZero(d.BaseFee)
	usagePrice := decimalOrZero(d.UsagePrice)
	charge := baseFee.Add(quantity.Mul(usagePrice))

	unitPrice := baseFee
	if !quantity.IsZero() {
		unitPrice = charge.Div(quantity)
	}
	return charge, unitPrice, fmt.Sprintf("base fee %s plus %s/unit for quantity %s", baseFee.String(), usagePrice.String(), quantity.String())
}

func (e *PricingEvaluator) evaluateTimeBased(d plan.PricingDetails, quantity decimal.Decimal) (decimal.Decimal, decimal.Decimal, string) {
	rate := decimalOrZero(d.RatePerUnit)
	charge := quantity.Mul(rate)
	unit := d.Unit
	if unit == "" {
		unit = "unit"
	}
	return charge, rate, fmt.Sprintf("%s per %s for quantity %s", rate.String(), unit, quantity.String())
}

// evaluateDimensionBased starts from base_rate and compounds it by
// (1 + value*multiplier) for every configured dimension, then bills the
// resulting rate against the full quantity. Dimension values are supplied
// out of band (derived from the usage event or request context), looked
// up by each DimensionRate's ValueKey.
func (e *PricingEvaluator) evaluateDimensionBased(d plan.PricingDetails, quantity decimal.Decimal, values DimensionValues) (decimal.Decimal, decimal.Decimal, string) {
	rate := decimalOrZero(d.BaseRate)
	applied := 0
	for _, dim := range d.Dimensions {
		value, ok := values[dim.ValueKey]
		if !ok {
			continue
		}
		factor := value.Mul(dim.Multiplier)
		rate = rate.Mul(decimal.NewFromInt(1).Add(factor))
		applied++
	}
	charge := quantity.Mul(rate)
	return charge, rate, fmt.Sprintf("dimension-adjusted rate %s (%d dimension(s) applied)", rate.String(), applied)
}

// evaluateDynamic is a base-rate passthrough. Formula is informational
// only in this pricing rule, distinct from a composite metric's Formula,
// which the Metric Registry evaluates separately via internal/expression.
func (e *PricingEvaluator) evaluateDynamic(d plan.PricingDetails, quantity decimal.Decimal) (decimal.Decimal, decimal.Decimal, string) {
	rate := decimalOrZero(d.BaseRate)
	charge := quantity.Mul(rate)
	return charge, rate, fmt.Sprintf("dynamic base rate %s for quantity %s", rate.String(), quantity.String())
}

func decimalOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func sortedByStartAsc(tiers []plan.Tier) []plan.Tier {
	sorted := make([]plan.Tier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	return sorted
}

// tierWidth returns the tier's quantity capacity (End - Start), or nil for
// the unbounded final tier.
func tierWidth(tier plan.Tier) *decimal.Decimal {
	if tier.End == nil {
		return nil
	}
	width := decimal.NewFromUint64(*tier.End - tier.Start)
	return &width
}

// selectDescendingTier scans tiers from the highest Start down and returns
// the first whose Start is at or below quantity, falling back to the tier
// with the lowest Start if none qualify (e.g. quantity is below every
// configured Start).
func selectDescendingTier(tiers []plan.Tier, quantity decimal.Decimal) (plan.Tier, bool) {
	if len(tiers) == 0 {
		return plan.Tier{}, false
	}
	sorted := make([]plan.Tier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start > sorted[j].Start })

	for _, tier := range sorted {
		if quantity.GreaterThanOrEqual(decimal.NewFromUint64(tier.Start)) {
			return tier, true
		}
	}
	return sorted[len(sorted)-1], true
}
