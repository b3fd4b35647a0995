package clickhouse

import (
	"context"
	"fmt"
	"strings"

	"github.com/flexprice/flexprice/internal/domain/events"
	"github.com/flexprice/flexprice/internal/types"
)

// GetAggregator resolves the query builder for a metric's aggregation type.
// Returns nil for an unsupported type; callers surface that as a validation error.
func GetAggregator(aggregationType types.AggregationType) events.Aggregator {
	switch aggregationType {
	case types.AggregationCount:
		return &CountAggregator{}
	case types.AggregationSum:
		return &SumAggregator{}
	case types.AggregationAvg:
		return &AvgAggregator{}
	case types.AggregationMax:
		return &MaxAggregator{}
	case types.AggregationMin:
		return &MinAggregator{}
	case types.AggregationLast:
		return &LastAggregator{}
	default:
		return nil
	}
}

func formatWindowSize(windowSize types.WindowSize) string {
	switch windowSize {
	case types.WindowSizeMinute:
		return "toStartOfMinute(timestamp)"
	case types.WindowSizeHour:
		return "toStartOfHour(timestamp)"
	case types.WindowSizeDay:
		return "toStartOfDay(timestamp)"
	default:
		return ""
	}
}

// buildFilterConditions turns property filters into a parameterized clause
// and returns the clause alongside the args in the order they appear, so the
// caller can append them straight onto its args slice. Never interpolates
// caller-controlled values into the query string.
func buildFilterConditions(filters map[string][]string) (string, []interface{}) {
	if len(filters) == 0 {
		return "", nil
	}

	var clauses []string
	var args []interface{}
	for key, values := range filters {
		if len(values) == 0 {
			continue
		}
		if len(values) == 1 {
			clauses = append(clauses, "JSONExtractString(properties, ?) = ?")
			args = append(args, key, values[0])
			continue
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(values)), ",")
		clauses = append(clauses, fmt.Sprintf("JSONExtractString(properties, ?) IN (%s)", placeholders))
		args = append(args, key)
		for _, v := range values {
			args = append(args, v)
		}
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return "AND " + strings.Join(clauses, " AND "), args
}

// baseFilters builds the PREWHERE tenant/event/customer/time/property clause
// shared by every aggregator, returning the SQL fragment and its args in order.
func baseFilters(ctx context.Context, params *events.UsageParams) (string, []interface{}) {
	var b strings.Builder
	args := []interface{}{types.GetTenantID(ctx), params.EventName}
	b.WriteString("tenant_id = ? AND event_name = ?")

	if params.ExternalCustomerID != "" {
		b.WriteString(" AND external_customer_id = ?")
		args = append(args, params.ExternalCustomerID)
	}
	if params.CustomerID != "" {
		b.WriteString(" AND customer_id = ?")
		args = append(args, params.CustomerID)
	}
	if !params.StartTime.IsZero() {
		b.WriteString(" AND timestamp >= ?")
		args = append(args, params.StartTime)
	}
	if !params.EndTime.IsZero() {
		b.WriteString(" AND timestamp <= ?")
		args = append(args, params.EndTime)
	}

	filterClause, filterArgs := buildFilterConditions(params.Filters)
	if filterClause != "" {
		b.WriteString(" ")
		b.WriteString(filterClause)
		args = append(args, filterArgs...)
	}

	return b.String(), args
}

// windowedSelect builds the select list and optional GROUP BY for a
// value expression that itself contains one "?" placeholder (the property
// name). It returns only the SQL fragments; the caller places the value arg
// ahead of the WHERE args, matching the order the placeholders appear in
// the finished query text.
func windowedSelect(params *events.UsageParams, valueExprFmt string) (selectCol, groupBy string) {
	windowSize := formatWindowSize(params.WindowSize)
	if windowSize == "" {
		return valueExprFmt + " AS value", ""
	}
	groupBy = "GROUP BY window_size ORDER BY window_size"
	if !params.StartTime.IsZero() && !params.EndTime.IsZero() {
		// WITH FILL materializes empty windows as 0 instead of omitting them,
		// so a commitment tier evaluated over a gap doesn't see a short result set.
		groupBy = "GROUP BY window_size ORDER BY window_size " + BuildWithFillClause(params.WindowSize, params.StartTime, params.EndTime)
	}
	return windowSize + " AS window_size, " + valueExprFmt + " AS value", groupBy
}

func buildAggregateQuery(ctx context.Context, params *events.UsageParams, valueExprFmt string) (string, []interface{}) {
	selectCol, groupBy := windowedSelect(params, valueExprFmt)
	where, whereArgs := baseFilters(ctx, params)
	query := fmt.Sprintf("SELECT %s FROM events PREWHERE %s %s", selectCol, where, groupBy)

	args := make([]interface{}, 0, len(whereArgs)+1)
	if strings.Contains(valueExprFmt, "?") {
		args = append(args, params.PropertyName)
	}
	args = append(args, whereArgs...)
	return query, args
}

type SumAggregator struct{}

func (a *SumAggregator) GetQuery(ctx context.Context, params *events.UsageParams) (string, []interface{}) {
	return buildAggregateQuery(ctx, params, "sum(JSONExtractFloat(properties, ?))")
}

func (a *SumAggregator) GetType() types.AggregationType { return types.AggregationSum }

type CountAggregator struct{}

func (a *CountAggregator) GetQuery(ctx context.Context, params *events.UsageParams) (string, []interface{}) {
	return buildAggregateQuery(ctx, params, "count(*)")
}

func (a *CountAggregator) GetType() types.AggregationType { return types.AggregationCount }

type AvgAggregator struct{}

func (a *AvgAggregator) GetQuery(ctx context.Context, params *events.UsageParams) (string, []interface{}) {
	return buildAggregateQuery(ctx, params, "avg(JSONExtractFloat(properties, ?))")
}

func (a *AvgAggregator) GetType() types.AggregationType { return types.AggregationAvg }

type MaxAggregator struct{}

func (a *MaxAggregator) GetQuery(ctx context.Context, params *events.UsageParams) (string, []interface{}) {
	return buildAggregateQuery(ctx, params, "max(JSONExtractFloat(properties, ?))")
}

func (a *MaxAggregator) GetType() types.AggregationType { return types.AggregationMax }

type MinAggregator struct{}

func (a *MinAggregator) GetQuery(ctx context.Context, params *events.UsageParams) (string, []interface{}) {
	return buildAggregateQuery(ctx, params, "min(JSONExtractFloat(properties, ?))")
}

func (a *MinAggregator) GetType() types.AggregationType { return types.AggregationMin }

type LastAggregator struct{}

func (a *LastAggregator) GetQuery(ctx context.Context, params *events.UsageParams) (string, []interface{}) {
	return buildAggregateQuery(ctx, params, "argMax(JSONExtractFloat(properties, ?), timestamp)")
}

func (a *LastAggregator) GetType() types.AggregationType { return types.AggregationLast }
