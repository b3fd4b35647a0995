package clickhouse

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/flexprice/flexprice/internal/clickhouse"
	"github.com/flexprice/flexprice/internal/domain/events"
	"github.com/flexprice/flexprice/internal/logger"
	"github.com/flexprice/flexprice/internal/types"
	"github.com/shopspring/decimal"
)

type EventRepository struct {
	store  *clickhouse.ClickHouseStore
	logger *logger.Logger
}

func NewEventRepository(store *clickhouse.ClickHouseStore, logger *logger.Logger) events.Repository {
	return &EventRepository{store: store, logger: logger}
}

func (r *EventRepository) InsertEvent(ctx context.Context, event *events.Event) error {
	propertiesJSON, err := json.Marshal(event.Properties)
	if err != nil {
		return fmt.Errorf("marshal properties: %w", err)
	}

	// Adding a layer to validate the event before inserting it
	if err := event.Validate(); err != nil {
		return fmt.Errorf("validate event: %w", err)
	}

	query := `
		INSERT INTO events (
			id, external_customer_id, customer_id, tenant_id, event_name, timestamp, source, properties
		) VALUES (
			?, ?, ?, ?, ?, ?, ?, ?
		)
	`

	err = r.store.GetConn().Exec(ctx, query,
		event.ID,
		event.ExternalCustomerID,
		event.CustomerID,
		event.TenantID,
		event.EventName,
		event.Timestamp,
		event.Source,
		string(propertiesJSON),
	)

	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	return nil
}

type UsageResult struct {
	WindowSize time.Time
	Value      interface{}
}

func (r *EventRepository) GetUsage(ctx context.Context, params *events.UsageParams) (*events.AggregationResult, error) {
	aggregator := GetAggregator(params.AggregationType)
	if aggregator == nil {
		return nil, fmt.Errorf("unsupported aggregation type: %s", params.AggregationType)
	}

	query, args := aggregator.GetQuery(ctx, params)
	r.logger.Debugw("executing usage query", "query", query)

	rows, err := r.store.GetConn().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	var result events.AggregationResult
	result.Type = params.AggregationType
	result.EventName = params.EventName

	// For windowed queries, we need to process all rows
	if params.WindowSize != "" {
		for rows.Next() {
			var windowSize time.Time
			var value decimal.Decimal

			switch params.AggregationType {
			case types.AggregationCount:
				var countValue uint64
				if err := rows.Scan(&windowSize, &countValue); err != nil {
					return nil, fmt.Errorf("scan result: %w", err)
				}
				value = decimal.NewFromFloat(float64(countValue))
			case types.AggregationSum, types.AggregationAvg:
				var floatValue float64
				if err := rows.Scan(&windowSize, &floatValue); err != nil {
					return nil, fmt.Errorf("scan result: %w", err)
				}
				value = decimal.NewFromFloat(floatValue)
			default:
				return nil, fmt.Errorf("unsupported aggregation type for scanning: %s", params.AggregationType)
			}

			result.Results = append(result.Results, events.UsageResult{
				WindowSize: windowSize,
				Value:      value,
			})
		}
	} else {
		// Non-windowed query - process single row
		if rows.Next() {
			switch params.AggregationType {
			case types.AggregationCount:
				var value uint64
				if err := rows.Scan(&value); err != nil {
					return nil, fmt.Errorf("scan result: %w", err)
				}
				result.Value = decimal.NewFromFloat(float64(value))
			case types.AggregationSum, types.AggregationAvg:
				var value float64
				if err := rows.Scan(&value); err != nil {
					return nil, fmt.Errorf("scan result: %w", err)
				}
				result.Value = decimal.NewFromFloat(value)
			default:
				return nil, fmt.Errorf("unsupported aggregation type for scanning: %s", params.AggregationType)
			}
		}
	}

	return &result, nil
}

// BulkInsertEvents inserts a batch of events in a single ClickHouse batch
// append, following the driver's native-protocol batch API rather than
// looping InsertEvent (which would round-trip once per event).
func (r *EventRepository) BulkInsertEvents(ctx context.Context, evs []*events.Event) error {
	if len(evs) == 0 {
		return nil
	}

	batch, err := r.store.GetConn().PrepareBatch(ctx, `
		INSERT INTO events (
			id, external_customer_id, customer_id, tenant_id, event_name, timestamp, source, properties
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, event := range evs {
		if err := event.Validate(); err != nil {
			return fmt.Errorf("validate event: %w", err)
		}
		propertiesJSON, err := json.Marshal(event.Properties)
		if err != nil {
			return fmt.Errorf("marshal properties: %w", err)
		}
		if err := batch.Append(
			event.ID,
			event.ExternalCustomerID,
			event.CustomerID,
			event.TenantID,
			event.EventName,
			event.Timestamp,
			event.Source,
			string(propertiesJSON),
		); err != nil {
			return fmt.Errorf("append event to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetUsageWithFilters evaluates each filter group in priority order and
// returns one aggregation result per group, tagged with the group's ID in
// Metadata so the caller can attribute usage back to the price that defined
// the group (most specific price wins further up the call stack).
func (r *EventRepository) GetUsageWithFilters(ctx context.Context, params *events.UsageWithFiltersParams) ([]*events.AggregationResult, error) {
	aggregator := GetAggregator(params.AggregationType)
	if aggregator == nil {
		return nil, fmt.Errorf("unsupported aggregation type: %s", params.AggregationType)
	}

	results := make([]*events.AggregationResult, 0, len(params.FilterGroups))
	for _, group := range params.FilterGroups {
		groupParams := *params.UsageParams
		groupParams.Filters = group.Filters

		query, args := aggregator.GetQuery(ctx, &groupParams)
		row := r.store.GetConn().QueryRow(ctx, query, args...)

		var value float64
		if err := row.Scan(&value); err != nil {
			return nil, fmt.Errorf("scan filter group %s: %w", group.ID, err)
		}

		results = append(results, &events.AggregationResult{
			Value:     decimal.NewFromFloat(value),
			EventName: params.EventName,
			Type:      params.AggregationType,
			Metadata:  map[string]string{"filter_group_id": group.ID},
		})
	}

	return results, nil
}

func (r *EventRepository) GetEvents(ctx context.Context, params *events.GetEventsParams) ([]*events.Event, uint64, error) {
	baseQuery := `
		SELECT 
			id,
			external_customer_id,
			customer_id,
			tenant_id,
			event_name,
			timestamp,
			source,
			properties
		FROM events
		WHERE tenant_id = ?
	`
	countQuery := `SELECT count(*) FROM events WHERE tenant_id = ?`

	args := make([]interface{}, 0)
	args = append(args, types.GetTenantID(ctx))
	countArgs := make([]interface{}, 0)
	countArgs = append(countArgs, types.GetTenantID(ctx))

	// Apply filters
	if params.ExternalCustomerID != "" {
		baseQuery += " AND external_customer_id = ?"
		countQuery += " AND external_customer_id = ?"
		args = append(args, params.ExternalCustomerID)
		countArgs = append(countArgs, params.ExternalCustomerID)
	}
	if params.EventName != "" {
		baseQuery += " AND event_name = ?"
		countQuery += " AND event_name = ?"
		args = append(args, params.EventName)
		countArgs = append(countArgs, params.EventName)
	}
	if !params.StartTime.IsZero() {
		baseQuery += " AND timestamp >= ?"
		countQuery += " AND timestamp >= ?"
		args = append(args, params.StartTime)
		countArgs = append(countArgs, params.StartTime)
	}
	if !params.EndTime.IsZero() {
		baseQuery += " AND timestamp <= ?"
		countQuery += " AND timestamp <= ?"
		args = append(args, params.EndTime)
		countArgs = append(countArgs, params.EndTime)
	}

	// Handle pagination and real-time refresh using composite keys
	if params.IterFirst != nil {
		baseQuery += " AND (timestamp, id) > (?, ?)"
		args = append(args, params.IterFirst.Timestamp, params.IterFirst.ID)
	} else if params.IterLast != nil {
		baseQuery += " AND (timestamp, id) < (?, ?)"
		args = append(args, params.IterLast.Timestamp, params.IterLast.ID)
	}

	// Order by timestamp and ID
	baseQuery += " ORDER BY timestamp DESC, id DESC"
	baseQuery += " LIMIT ?"
	args = append(args, params.PageSize+1)

	var totalCount uint64
	if params.CountTotal {
		if err := r.store.GetConn().QueryRow(ctx, countQuery, countArgs...).Scan(&totalCount); err != nil {
			return nil, 0, fmt.Errorf("count events: %w", err)
		}
	}

	// Execute query
	rows, err := r.store.GetConn().Query(ctx, baseQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var eventsList []*events.Event
	for rows.Next() {
		var event events.Event
		var propertiesJSON string

		err := rows.Scan(
			&event.ID,
			&event.ExternalCustomerID,
			&event.CustomerID,
			&event.TenantID,
			&event.EventName,
			&event.Timestamp,
			&event.Source,
			&propertiesJSON,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan event: %w", err)
		}

		if err := json.Unmarshal([]byte(propertiesJSON), &event.Properties); err != nil {
			return nil, 0, fmt.Errorf("unmarshal properties: %w", err)
		}

		eventsList = append(eventsList, &event)
	}

	return eventsList, totalCount, nil
}
