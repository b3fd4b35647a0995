package service

import (
	"context"
	"testing"
	"time"

	"github.com/flexprice/flexprice/internal/domain/commitment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCommitmentRepository struct {
	tiers []*commitment.Tier
}

func (f *fakeCommitmentRepository) Create(_ context.Context, t *commitment.Tier) error {
	f.tiers = append(f.tiers, t)
	return nil
}
func (f *fakeCommitmentRepository) Get(_ context.Context, id string) (*commitment.Tier, error) {
	for _, t := range f.tiers {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, commitment.ErrTierNotFound
}
func (f *fakeCommitmentRepository) Update(_ context.Context, t *commitment.Tier) error { return nil }
func (f *fakeCommitmentRepository) ListBySubscription(_ context.Context, subscriptionID string) ([]*commitment.Tier, error) {
	var out []*commitment.Tier
	for _, t := range f.tiers {
		if t.SubscriptionID == subscriptionID {
			out = append(out, t)
		}
	}
	return out, nil
}
func (f *fakeCommitmentRepository) GetForMetric(_ context.Context, subscriptionID, metricID string) (*commitment.Tier, error) {
	for _, t := range f.tiers {
		if t.SubscriptionID == subscriptionID && t.MetricID == metricID {
			return t, nil
		}
	}
	return nil, commitment.ErrTierNotFound
}

func TestCommitmentEngine_CommittedMinimumWins(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	overage := dec("0.05")
	tier := commitment.NewTier("sub_1", "metric_1", dec("1000"), dec("0.10"), &overage, start, "t1", "u1")
	repo := &fakeCommitmentRepository{tiers: []*commitment.Tier{tier}}
	engine := NewCommitmentEngine(repo, nopLogger())

	charges, err := engine.Evaluate(context.Background(), "sub_1", start, end, map[string]decimal.Decimal{
		"metric_1": dec("500"),
	})
	require.NoError(t, err)
	require.Len(t, charges, 1)

	// committed_charge = 1000*0.10 = 100; actual_charge = 500*0.10 = 50
	assert.True(t, charges[0].CommittedCharge.Equal(dec("100")))
	assert.True(t, charges[0].ActualCharge.Equal(dec("50")))
	assert.True(t, charges[0].Applies)
}

func TestCommitmentEngine_OverageAppliesPastCommitment(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	overage := dec("0.05")
	tier := commitment.NewTier("sub_1", "metric_1", dec("1000"), dec("0.10"), &overage, start, "t1", "u1")
	repo := &fakeCommitmentRepository{tiers: []*commitment.Tier{tier}}
	engine := NewCommitmentEngine(repo, nopLogger())

	charges, err := engine.Evaluate(context.Background(), "sub_1", start, end, map[string]decimal.Decimal{
		"metric_1": dec("1500"),
	})
	require.NoError(t, err)
	require.Len(t, charges, 1)

	// committed_charge = 100; actual_charge = 1000*0.10 + 500*0.05 = 100+25 = 125
	assert.True(t, charges[0].CommittedCharge.Equal(dec("100")))
	assert.True(t, charges[0].ActualCharge.Equal(dec("125")))
	assert.False(t, charges[0].Applies)
}

func TestCommitmentEngine_SkipsTierOutsideWindow(t *testing.T) {
	tierStart := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tierEnd := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tier := commitment.NewTier("sub_1", "metric_1", dec("1000"), dec("0.10"), nil, tierStart, "t1", "u1")
	tier.End = &tierEnd
	repo := &fakeCommitmentRepository{tiers: []*commitment.Tier{tier}}
	engine := NewCommitmentEngine(repo, nopLogger())

	charges, err := engine.Evaluate(context.Background(), "sub_1",
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		map[string]decimal.Decimal{"metric_1": dec("500")})
	require.NoError(t, err)
	assert.Empty(t, charges)
}
