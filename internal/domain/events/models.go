package events

import (
	"time"

	"github.com/flexprice/flexprice/internal/types"
	"github.com/shopspring/decimal"
)

// UsageAnalyticsParams describes a usage-and-cost breakdown query, grouped
// by metric and optionally by a dimension property, over a time range.
type UsageAnalyticsParams struct {
	TenantID        string
	CustomerID      string
	MetricIDs       []string
	StartTime       time.Time
	EndTime         time.Time
	GroupBy         []string // e.g. "metric_id", "properties.<field_name>"
	WindowSize      types.WindowSize
	PropertyFilters map[string][]string
}

// DetailedUsageAnalytic is one grouped row of a UsageAnalyticsParams query.
type DetailedUsageAnalytic struct {
	MetricID   string
	MetricName string
	EventName  string
	TotalUsage decimal.Decimal
	TotalCost  decimal.Decimal
	Currency   string
	EventCount uint64
	Properties map[string]string
	Points     []UsageAnalyticPoint
}

// UsageAnalyticPoint is a single bucket in a UsageAnalyticsParams time series.
type UsageAnalyticPoint struct {
	Timestamp  time.Time
	Usage      decimal.Decimal
	Cost       decimal.Decimal
	EventCount uint64
}
