package plan

import (
	"database/sql/driver"
	"encoding/json"

	ierr "github.com/flexprice/flexprice/internal/errors"
	"github.com/flexprice/flexprice/internal/types"
	"github.com/shopspring/decimal"
)

// PriceComponent is one billable line within a plan: a pricing rule bound
// to an (optional) metric. MetricID is empty for flat/subscription
// components, whose charge does not depend on usage.
type PriceComponent struct {
	ID       string            `db:"id" json:"id"`
	PlanID   string            `db:"plan_id" json:"plan_id"`
	MetricID string            `db:"metric_id" json:"metric_id,omitempty"`
	Type     types.PricingType `db:"type" json:"type"`
	Currency string            `db:"currency" json:"currency"`
	Details  JSONBPricingDetails `db:"pricing_details,jsonb" json:"pricing_details"`
	types.BaseModel
}

// Tier is one row of a tiered/volume/graduated schedule. Start is
// inclusive; End is exclusive of the next tier's Start (nil means
// unbounded, i.e. the final tier).
type Tier struct {
	Start uint64           `json:"start"`
	End   *uint64          `json:"end,omitempty"`
	Price decimal.Decimal  `json:"price" swaggertype:"string"`
}

// ThresholdTier is one row of a threshold schedule: a one-shot fee charged
// once usage reaches Threshold.
type ThresholdTier struct {
	Threshold uint64          `json:"threshold"`
	Price     decimal.Decimal `json:"price" swaggertype:"string"`
}

// DimensionRate is one entry of a dimension_based rate adjustment: the
// value observed for a named dimension and the multiplier it contributes.
type DimensionRate struct {
	ValueKey   string          `json:"value_key"`
	Multiplier decimal.Decimal `json:"multiplier" swaggertype:"string"`
}

// PricingDetails is the polymorphic configuration for a price component.
// Exactly the fields relevant to Type are expected to be populated; the
// Pricing Evaluator reads only the fields its type needs.
type PricingDetails struct {
	// flat, subscription
	Amount *decimal.Decimal `json:"amount,omitempty" swaggertype:"string"`

	// tiered, volume, graduated
	Tiers []Tier `json:"tiers,omitempty"`

	// package
	PackageSize  *decimal.Decimal `json:"package_size,omitempty" swaggertype:"string"`
	PackagePrice *decimal.Decimal `json:"package_price,omitempty" swaggertype:"string"`

	// threshold
	Thresholds []ThresholdTier `json:"thresholds,omitempty"`

	// usage_based_subscription
	BaseFee    *decimal.Decimal `json:"base_fee,omitempty" swaggertype:"string"`
	UsagePrice *decimal.Decimal `json:"usage_price,omitempty" swaggertype:"string"`

	// time_based
	RatePerUnit *decimal.Decimal `json:"rate_per_unit,omitempty" swaggertype:"string"`
	Unit        string           `json:"unit,omitempty"`

	// dimension_based
	BaseRate   *decimal.Decimal         `json:"base_rate,omitempty" swaggertype:"string"`
	Dimensions map[string]DimensionRate `json:"dimensions,omitempty"`

	// dynamic. Formula is informational only; the default evaluator is a
	// base-rate passthrough (q * base_rate) per the pricing rule.
	Formula string `json:"formula,omitempty"`
}

// JSONBPricingDetails adapts PricingDetails to database/sql via JSON encoding.
type JSONBPricingDetails PricingDetails

func (j *JSONBPricingDetails) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return ierr.NewError("invalid type for jsonb pricing_details").Mark(ierr.ErrValidation)
	}
	return json.Unmarshal(bytes, j)
}

func (j JSONBPricingDetails) Value() (driver.Value, error) {
	return json.Marshal(j)
}

// Validate checks that Type is recognized and that pricing_details carries
// the fields that type's evaluator requires, per the component creation rule.
func (c *PriceComponent) Validate() error {
	if !c.Type.Validate() {
		return ierr.NewError("invalid pricing type").
			WithHint("pricing type must be one of the supported enumeration values").
			WithReportableDetails(map[string]interface{}{"type": c.Type}).
			Mark(ierr.ErrValidation)
	}

	d := c.Details
	switch c.Type {
	case types.PricingTypeFlat, types.PricingTypeSubscription:
		if d.Amount == nil {
			return errMissingField(c.Type, "amount")
		}
	case types.PricingTypeTiered, types.PricingTypeVolume, types.PricingTypeGraduated:
		if len(d.Tiers) == 0 {
			return errMissingField(c.Type, "tiers")
		}
	case types.PricingTypePackage:
		if d.PackageSize == nil || d.PackagePrice == nil {
			return errMissingField(c.Type, "package_size/package_price")
		}
	case types.PricingTypeThreshold:
		if len(d.Thresholds) == 0 {
			return errMissingField(c.Type, "thresholds")
		}
	case types.PricingTypeUsageBasedSubscription:
		if d.BaseFee == nil || d.UsagePrice == nil {
			return errMissingField(c.Type, "base_fee/usage_price")
		}
	case types.PricingTypeTimeBased:
		if d.RatePerUnit == nil {
			return errMissingField(c.Type, "rate_per_unit")
		}
	case types.PricingTypeDimensionBased:
		if d.BaseRate == nil {
			return errMissingField(c.Type, "base_rate")
		}
	case types.PricingTypeDynamic:
		if d.BaseRate == nil {
			return errMissingField(c.Type, "base_rate")
		}
	}

	if c.MetricID == "" && c.Type != types.PricingTypeFlat && c.Type != types.PricingTypeSubscription {
		return ierr.NewError("metric_id is required for usage-driven pricing types").
			WithReportableDetails(map[string]interface{}{"type": c.Type}).
			Mark(ierr.ErrValidation)
	}

	return nil
}

// NewPriceComponent constructs a price component with a generated ID.
func NewPriceComponent(planID, metricID string, pricingType types.PricingType, currency string, details PricingDetails, tenantID, createdBy string) *PriceComponent {
	return &PriceComponent{
		ID:       types.GenerateUUIDWithPrefix(types.UUIDPrefixPriceComponent),
		PlanID:   planID,
		MetricID: metricID,
		Type:     pricingType,
		Currency: currency,
		Details:  JSONBPricingDetails(details),
		BaseModel: types.BaseModel{
			TenantID:  tenantID,
			CreatedBy: createdBy,
			UpdatedBy: createdBy,
			Status:    types.StatusActive,
		},
	}
}

func errMissingField(t types.PricingType, field string) error {
	return ierr.NewError("missing required pricing_details field").
		WithHintf("pricing type %q requires %q in pricing_details", t, field).
		WithReportableDetails(map[string]interface{}{"type": t, "field": field}).
		Mark(ierr.ErrValidation)
}
