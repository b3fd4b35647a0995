package metric

import (
	"database/sql/driver"
	"encoding/json"

	ierr "github.com/flexprice/flexprice/internal/errors"
	"github.com/flexprice/flexprice/internal/types"
	"github.com/shopspring/decimal"
)

// Metric is the named, typed quantity that price components bill against.
// Counter/gauge/dimension/time metrics reduce raw event properties with an
// Aggregation; composite metrics instead combine other metrics through a
// restricted arithmetic Formula (see internal/expression).
type Metric struct {
	ID          string          `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	DisplayName string          `db:"display_name" json:"display_name"`
	Unit        string          `db:"unit" json:"unit"`
	Kind        types.MetricKind `db:"kind" json:"kind"`
	EventName   string          `db:"event_name" json:"event_name"`

	// Aggregation is required for every kind except composite.
	Aggregation Aggregation `db:"aggregation" json:"aggregation"`

	// Formula describes how a composite metric derives its value from
	// other metrics; required when Kind is composite and forbidden
	// otherwise. See FormulaType for the two supported shapes.
	Formula Formula `db:"formula" json:"formula,omitempty"`

	Filters JSONBFilters `db:"filters" json:"filters,omitempty"`

	types.BaseModel
}

// JSONBFilters adapts []Filter to database/sql via JSON encoding, the same
// pattern plan.JSONBPricingDetails uses for its own polymorphic column.
type JSONBFilters []Filter

func (f *JSONBFilters) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return ierr.NewError("invalid type for jsonb filters").Mark(ierr.ErrValidation)
	}
	if len(bytes) == 0 {
		return nil
	}
	return json.Unmarshal(bytes, f)
}

func (f JSONBFilters) Value() (driver.Value, error) {
	if len(f) == 0 {
		return nil, nil
	}
	return json.Marshal(f)
}

// FormulaType is the shape of a composite metric's derivation rule.
type FormulaType string

const (
	// FormulaTypeArithmetic evaluates Expression (a restricted arithmetic
	// expression over {var} placeholders) after substituting each
	// placeholder with the current value of Variables[var].
	FormulaTypeArithmetic FormulaType = "arithmetic"
	// FormulaTypeFunction calls a named built-in function; initially only
	// "weighted_sum" is defined, reading Weights as metric -> weight.
	FormulaTypeFunction FormulaType = "function"
)

func (t FormulaType) Validate() bool {
	switch t {
	case FormulaTypeArithmetic, FormulaTypeFunction:
		return true
	default:
		return false
	}
}

// Formula is the polymorphic composite-metric derivation rule.
type Formula struct {
	Type FormulaType `json:"type"`

	// Expression is a restricted arithmetic expression over {var}
	// placeholders, used when Type is arithmetic.
	Expression string `json:"expression,omitempty"`
	// Variables binds each {var} placeholder in Expression to the metric
	// name supplying its numeric value.
	Variables map[string]string `json:"variables,omitempty"`

	// Function is the named function to call, used when Type is function.
	Function string `json:"function,omitempty"`
	// Weights binds a metric name to its coefficient for weighted_sum.
	Weights map[string]float64 `json:"weights,omitempty"`
}

// IsZero reports whether no formula has been set.
func (f Formula) IsZero() bool {
	return f.Type == ""
}

func (f *Formula) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return ierr.NewError("invalid type for jsonb formula").Mark(ierr.ErrValidation)
	}
	if len(bytes) == 0 {
		return nil
	}
	return json.Unmarshal(bytes, f)
}

func (f Formula) Value() (driver.Value, error) {
	if f.IsZero() {
		return nil, nil
	}
	return json.Marshal(f)
}

// Filter restricts which events a metric's aggregation considers, matching
// on a single top-level event.properties key against an allow-list of values.
type Filter struct {
	Key    string   `json:"key"`
	Values []string `json:"values"`
}

// Aggregation defines how raw event quantities are reduced for one metric.
type Aggregation struct {
	Type types.AggregationType `json:"type"`

	// Field is the event.properties key the aggregation reduces over.
	// Ignored when Expression is set. Unused for COUNT.
	Field string `json:"field,omitempty"`

	// Expression is an optional CEL expression computing a per-event
	// quantity from event.properties, replacing Field-based extraction.
	// This is a supplemental enrichment, independent of the composite
	// metric Formula above, and is evaluated per-event rather than over
	// an aggregated result.
	Expression string `json:"expression,omitempty"`

	// PercentileRank is required when Type is PERCENTILE, e.g. 95 for p95.
	PercentileRank *decimal.Decimal `json:"percentile_rank,omitempty" swaggertype:"string"`

	// BucketSize buckets raw events before aggregating, used for gauge
	// metrics sampled at a point in time (e.g. MAX over 1-hour buckets).
	BucketSize types.WindowSize `json:"bucket_size,omitempty"`
}

func (a *Aggregation) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return ierr.NewError("invalid type for jsonb aggregation").Mark(ierr.ErrValidation)
	}
	if len(bytes) == 0 {
		return nil
	}
	return json.Unmarshal(bytes, a)
}

func (a Aggregation) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Validate enforces the creation invariants from the metric registry:
// recognized kind/aggregation, a formula iff composite, and a non-empty
// field or expression for aggregations that need one.
func (m *Metric) Validate() error {
	if m.Name == "" {
		return ierr.NewError("name is required").
			WithHint("Please provide a unique metric name").
			Mark(ierr.ErrValidation)
	}

	if !m.Kind.Validate() {
		return ierr.NewError("invalid metric kind").
			WithHint("Kind must be one of counter, gauge, dimension, time, composite").
			WithReportableDetails(map[string]interface{}{"kind": m.Kind}).
			Mark(ierr.ErrValidation)
	}

	if m.Kind == types.MetricKindComposite {
		if m.Formula.IsZero() {
			return ierr.NewError("formula is required for composite metrics").
				WithHint("Composite metrics must specify a formula over other metric names").
				Mark(ierr.ErrValidation)
		}
		if !m.Formula.Type.Validate() {
			return ierr.NewError("invalid formula type").
				WithHint(`formula type must be "arithmetic" or "function"`).
				Mark(ierr.ErrValidation)
		}
		switch m.Formula.Type {
		case FormulaTypeArithmetic:
			if m.Formula.Expression == "" || len(m.Formula.Variables) == 0 {
				return ierr.NewError("arithmetic formula requires expression and variables").
					Mark(ierr.ErrValidation)
			}
		case FormulaTypeFunction:
			if m.Formula.Function == "" {
				return ierr.NewError("function formula requires a function name").
					Mark(ierr.ErrValidation)
			}
		}
		return nil
	}

	if !m.Formula.IsZero() {
		return ierr.NewError("formula is only valid for composite metrics").
			WithReportableDetails(map[string]interface{}{"kind": m.Kind}).
			Mark(ierr.ErrValidation)
	}

	if m.EventName == "" {
		return ierr.NewError("event_name is required").
			WithHint("Please specify the event name this metric tracks").
			Mark(ierr.ErrValidation)
	}

	if !m.Aggregation.Type.Validate() {
		return ierr.NewError("invalid aggregation type").
			WithHint("Aggregation must be one of sum, max, min, avg, last, count, percentile").
			WithReportableDetails(map[string]interface{}{"aggregation_type": m.Aggregation.Type}).
			Mark(ierr.ErrValidation)
	}

	if m.Aggregation.Type.RequiresField() && m.Aggregation.Field == "" && m.Aggregation.Expression == "" {
		return ierr.NewError("field or expression is required for this aggregation type").
			WithReportableDetails(map[string]interface{}{"aggregation_type": m.Aggregation.Type}).
			Mark(ierr.ErrValidation)
	}

	if m.Aggregation.Type == types.AggregationPercentile && m.Aggregation.PercentileRank == nil {
		return ierr.NewError("percentile_rank is required for PERCENTILE aggregation").
			Mark(ierr.ErrValidation)
	}

	if m.Aggregation.BucketSize != "" {
		if err := m.Aggregation.BucketSize.Validate(); err != nil {
			return ierr.NewError("invalid bucket_size").
				WithReportableDetails(map[string]interface{}{"bucket_size": m.Aggregation.BucketSize}).
				Mark(ierr.ErrValidation)
		}
	}

	for _, filter := range m.Filters {
		if filter.Key == "" {
			return ierr.NewError("filter key cannot be empty").Mark(ierr.ErrValidation)
		}
		if len(filter.Values) == 0 {
			return ierr.NewError("filter values cannot be empty").
				WithReportableDetails(map[string]interface{}{"filter_key": filter.Key}).
				Mark(ierr.ErrValidation)
		}
	}

	return nil
}

// NewMetric constructs a metric with generated ID and sane defaults.
func NewMetric(name, tenantID, createdBy string) *Metric {
	return &Metric{
		ID:   types.GenerateUUIDWithPrefix(types.UUIDPrefixMetric),
		Name: name,
		BaseModel: types.BaseModel{
			TenantID:  tenantID,
			CreatedBy: createdBy,
			UpdatedBy: createdBy,
			Status:    types.StatusActive,
		},
	}
}
