package service

import (
	"context"
	"testing"
	"time"

	"github.com/flexprice/flexprice/internal/domain/metric"
	"github.com/flexprice/flexprice/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetricRegistry() (*MetricRegistry, *fakeMetricRepository, *fakeEventsRepository) {
	metrics := &fakeMetricRepository{byID: map[string]*metric.Metric{}, byName: map[string]*metric.Metric{}}
	ev := &fakeEventsRepository{usageByEventName: map[string]decimal.Decimal{}}
	return NewMetricRegistry(metrics, ev, nil, nopLogger()), metrics, ev
}

func addTestMetric(metrics *fakeMetricRepository, id, name string, m *metric.Metric) {
	m.ID = id
	m.Name = name
	metrics.byID[id] = m
	metrics.byName[name] = m
}

func TestMetricRegistry_ResolveAggregated(t *testing.T) {
	registry, metrics, ev := newTestMetricRegistry()
	addTestMetric(metrics, "metric_1", "api_calls", &metric.Metric{
		EventName:   "api.request",
		Kind:        types.MetricKindCounter,
		Aggregation: metric.Aggregation{Type: types.AggregationSum, Field: "value"},
	})
	ev.usageByEventName["api.request"] = dec("42")

	value, err := registry.Resolve(context.Background(), "metric_1", "cust_1",
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, value.Equal(dec("42")))
}

func TestMetricRegistry_ResolveCompositeArithmetic(t *testing.T) {
	registry, metrics, ev := newTestMetricRegistry()
	addTestMetric(metrics, "metric_cpu", "cpu_seconds", &metric.Metric{
		EventName:   "compute.run",
		Kind:        types.MetricKindCounter,
		Aggregation: metric.Aggregation{Type: types.AggregationSum, Field: "cpu"},
	})
	addTestMetric(metrics, "metric_mem", "mem_gb_seconds", &metric.Metric{
		EventName:   "compute.run",
		Kind:        types.MetricKindCounter,
		Aggregation: metric.Aggregation{Type: types.AggregationSum, Field: "mem"},
	})
	addTestMetric(metrics, "metric_composite", "compute_units", &metric.Metric{
		Kind: types.MetricKindComposite,
		Formula: metric.Formula{
			Type:       metric.FormulaTypeArithmetic,
			Expression: "{cpu} + {mem} * 2",
			Variables:  map[string]string{"cpu": "cpu_seconds", "mem": "mem_gb_seconds"},
		},
	})
	// both underlying metrics share an event name, so both resolve to the
	// same usage value here; the test exercises formula evaluation, not
	// per-field usage splitting.
	ev.usageByEventName["compute.run"] = dec("10")

	value, err := registry.Resolve(context.Background(), "metric_composite", "cust_1",
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	// cpu=10, mem=10 -> 10 + 10*2 = 30
	assert.True(t, value.Equal(dec("30")), "got %s", value)
}

func TestMetricRegistry_ResolveCompositeWeightedSum(t *testing.T) {
	registry, metrics, ev := newTestMetricRegistry()
	addTestMetric(metrics, "metric_a", "metric_a", &metric.Metric{
		EventName:   "event.a",
		Kind:        types.MetricKindCounter,
		Aggregation: metric.Aggregation{Type: types.AggregationSum, Field: "value"},
	})
	addTestMetric(metrics, "metric_b", "metric_b", &metric.Metric{
		EventName:   "event.b",
		Kind:        types.MetricKindCounter,
		Aggregation: metric.Aggregation{Type: types.AggregationSum, Field: "value"},
	})
	addTestMetric(metrics, "metric_score", "score", &metric.Metric{
		Kind: types.MetricKindComposite,
		Formula: metric.Formula{
			Type:     metric.FormulaTypeFunction,
			Function: "weighted_sum",
			Weights:  map[string]float64{"metric_a": 0.7, "metric_b": 0.3},
		},
	})
	ev.usageByEventName["event.a"] = dec("100")
	ev.usageByEventName["event.b"] = dec("100")

	value, err := registry.Resolve(context.Background(), "metric_score", "cust_1",
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	// 0.7*100 + 0.3*100 = 100
	assert.True(t, value.Equal(dec("100")), "got %s", value)
}

func TestMetricRegistry_UnsupportedFunctionErrors(t *testing.T) {
	registry, metrics, _ := newTestMetricRegistry()
	addTestMetric(metrics, "metric_score", "score", &metric.Metric{
		Kind: types.MetricKindComposite,
		Formula: metric.Formula{
			Type:     metric.FormulaTypeFunction,
			Function: "geometric_mean",
		},
	})

	_, err := registry.Resolve(context.Background(), "metric_score", "cust_1",
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	assert.Error(t, err)
}
