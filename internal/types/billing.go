package types

import "strings"

// BillingFrequency is how often a subscription's billing period rolls over.
type BillingFrequency string

const (
	BillingFrequencyMonthly   BillingFrequency = "monthly"
	BillingFrequencyQuarterly BillingFrequency = "quarterly"
	BillingFrequencyYearly    BillingFrequency = "yearly"
)

// Normalize maps any unrecognized value to monthly, per the plan creation rule.
func (f BillingFrequency) Normalize() BillingFrequency {
	switch f {
	case BillingFrequencyMonthly, BillingFrequencyQuarterly, BillingFrequencyYearly:
		return f
	default:
		return BillingFrequencyMonthly
	}
}

// MetricKind classifies how a metric's underlying event quantities behave.
type MetricKind string

const (
	MetricKindCounter   MetricKind = "counter"
	MetricKindGauge     MetricKind = "gauge"
	MetricKindDimension MetricKind = "dimension"
	MetricKindTime      MetricKind = "time"
	MetricKindComposite MetricKind = "composite"
)

func (k MetricKind) Validate() bool {
	switch k {
	case MetricKindCounter, MetricKindGauge, MetricKindDimension, MetricKindTime, MetricKindComposite:
		return true
	default:
		return false
	}
}

// PricingType enumerates every price-component pricing rule the evaluator understands.
type PricingType string

const (
	PricingTypeFlat                    PricingType = "flat"
	PricingTypeTiered                  PricingType = "tiered"
	PricingTypeVolume                  PricingType = "volume"
	PricingTypePackage                 PricingType = "package"
	PricingTypeGraduated               PricingType = "graduated"
	PricingTypeThreshold               PricingType = "threshold"
	PricingTypeSubscription            PricingType = "subscription"
	PricingTypeUsageBasedSubscription  PricingType = "usage_based_subscription"
	PricingTypeDynamic                 PricingType = "dynamic"
	PricingTypeTimeBased               PricingType = "time_based"
	PricingTypeDimensionBased          PricingType = "dimension_based"
)

func (t PricingType) Validate() bool {
	switch t {
	case PricingTypeFlat, PricingTypeTiered, PricingTypeVolume, PricingTypePackage,
		PricingTypeGraduated, PricingTypeThreshold, PricingTypeSubscription,
		PricingTypeUsageBasedSubscription, PricingTypeDynamic, PricingTypeTimeBased,
		PricingTypeDimensionBased:
		return true
	default:
		return false
	}
}

// InvoiceStatus tracks an invoice's place in its lifecycle.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusFinalized InvoiceStatus = "finalized"
	InvoiceStatusVoided    InvoiceStatus = "voided"
)

func (s InvoiceStatus) Validate() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusFinalized, InvoiceStatusVoided:
		return true
	default:
		return false
	}
}

// PaymentStatus tracks an invoice's payment state, independent of InvoiceStatus.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// zeroDecimalCurrencies have no minor unit (e.g. JPY has no cents).
var zeroDecimalCurrencies = map[string]struct{}{
	"jpy": {}, "krw": {}, "vnd": {}, "clp": {},
}

// GetCurrencyPrecision returns the number of decimal places an amount in the
// given currency should be rounded to before it is persisted on an invoice.
func GetCurrencyPrecision(currency string) int32 {
	if _, ok := zeroDecimalCurrencies[strings.ToLower(currency)]; ok {
		return 0
	}
	return 2
}
