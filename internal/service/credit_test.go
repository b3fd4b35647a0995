package service

import (
	"context"
	"testing"
	"time"

	"github.com/flexprice/flexprice/internal/domain/credit"
	"github.com/flexprice/flexprice/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func nopLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// fakeCreditRepository is a minimal in-memory credit.Repository for
// exercising CreditEngine's draw-down ordering without a database.
type fakeCreditRepository struct {
	balances     map[string]*credit.Balance
	transactions []*credit.Transaction
}

func newFakeCreditRepository() *fakeCreditRepository {
	return &fakeCreditRepository{balances: map[string]*credit.Balance{}}
}

func (f *fakeCreditRepository) CreateBalance(_ context.Context, b *credit.Balance) error {
	f.balances[b.ID] = b
	return nil
}

func (f *fakeCreditRepository) GetBalance(_ context.Context, id string) (*credit.Balance, error) {
	return f.balances[id], nil
}

func (f *fakeCreditRepository) UpdateBalance(_ context.Context, b *credit.Balance) error {
	f.balances[b.ID] = b
	return nil
}

func (f *fakeCreditRepository) ListUsableByCustomer(_ context.Context, customerID string) ([]*credit.Balance, error) {
	now := time.Now().UTC()
	var usable []*credit.Balance
	for _, b := range f.balances {
		if b.CustomerID == customerID && b.IsUsable(now) {
			usable = append(usable, b)
		}
	}
	sortByExpiryThenCreation(usable)
	return usable, nil
}

func (f *fakeCreditRepository) ListExpiring(_ context.Context, asOf time.Time) ([]*credit.Balance, error) {
	var expiring []*credit.Balance
	for _, b := range f.balances {
		if b.BalanceStatus == credit.BalanceStatusActive && b.ExpiresAt != nil && !b.ExpiresAt.After(asOf) {
			expiring = append(expiring, b)
		}
	}
	return expiring, nil
}

func (f *fakeCreditRepository) CreateTransaction(_ context.Context, tx *credit.Transaction) error {
	f.transactions = append(f.transactions, tx)
	return nil
}

func (f *fakeCreditRepository) ListTransactionsByBalance(_ context.Context, balanceID string) ([]*credit.Transaction, error) {
	var out []*credit.Transaction
	for _, tx := range f.transactions {
		if tx.BalanceID == balanceID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (f *fakeCreditRepository) ListTransactionsByCustomer(_ context.Context, customerID string) ([]*credit.Transaction, error) {
	var out []*credit.Transaction
	for _, tx := range f.transactions {
		if tx.CustomerID == customerID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func sortByExpiryThenCreation(balances []*credit.Balance) {
	for i := 1; i < len(balances); i++ {
		for j := i; j > 0 && lessBalance(balances[j], balances[j-1]); j-- {
			balances[j], balances[j-1] = balances[j-1], balances[j]
		}
	}
}

func lessBalance(a, b *credit.Balance) bool {
	if a.ExpiresAt == nil && b.ExpiresAt == nil {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	if a.ExpiresAt == nil {
		return false
	}
	if b.ExpiresAt == nil {
		return true
	}
	if !a.ExpiresAt.Equal(*b.ExpiresAt) {
		return a.ExpiresAt.Before(*b.ExpiresAt)
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

func newTestCreditEngine() (*CreditEngine, *fakeCreditRepository) {
	repo := newFakeCreditRepository()
	return NewCreditEngine(repo, nopLogger()), repo
}

func TestCreditEngine_AddCredits(t *testing.T) {
	engine, _ := newTestCreditEngine()
	balance, err := engine.AddCredits(context.Background(), "cust_1", dec("100"), credit.BalanceTypePrepaid, "usd", "promo", nil, nil, "tenant_1", "test")
	require.NoError(t, err)
	assert.True(t, balance.RemainingAmount.Equal(dec("100")))
	assert.Equal(t, credit.BalanceStatusActive, balance.BalanceStatus)
}

func TestCreditEngine_ApplyToInvoiceOrdersByExpiryThenCreation(t *testing.T) {
	engine, _ := newTestCreditEngine()
	ctx := context.Background()

	soon := time.Now().UTC().AddDate(0, 0, 1)
	later := time.Now().UTC().AddDate(0, 0, 30)

	// Grant in reverse expiry order to prove draw-down respects expires_at,
	// not creation order.
	_, err := engine.AddCredits(ctx, "cust_1", dec("20"), credit.BalanceTypePrepaid, "usd", "far", intPtr(30), nil, "t1", "u1")
	require.NoError(t, err)
	_, err = engine.AddCredits(ctx, "cust_1", dec("20"), credit.BalanceTypePrepaid, "usd", "near", intPtr(1), nil, "t1", "u1")
	require.NoError(t, err)
	_, err = engine.AddCredits(ctx, "cust_1", dec("20"), credit.BalanceTypePrepaid, "usd", "never expires", nil, nil, "t1", "u1")
	require.NoError(t, err)
	_ = soon
	_ = later

	applications, remaining, err := engine.ApplyToInvoice(ctx, "cust_1", "inv_1", dec("25"), "t1", "u1")
	require.NoError(t, err)
	assert.True(t, remaining.IsZero())
	require.Len(t, applications, 2)
	assert.Equal(t, "near", applications[0].Balance.Description)
	assert.True(t, applications[0].Amount.Equal(dec("20")))
	assert.Equal(t, "far", applications[1].Balance.Description)
	assert.True(t, applications[1].Amount.Equal(dec("5")))
}

func TestCreditEngine_ApplyToInvoicePartialWhenInsufficient(t *testing.T) {
	engine, _ := newTestCreditEngine()
	ctx := context.Background()

	_, err := engine.AddCredits(ctx, "cust_1", dec("10"), credit.BalanceTypePrepaid, "usd", "", nil, nil, "t1", "u1")
	require.NoError(t, err)

	applications, remaining, err := engine.ApplyToInvoice(ctx, "cust_1", "inv_1", dec("50"), "t1", "u1")
	require.NoError(t, err)
	require.Len(t, applications, 1)
	assert.True(t, remaining.Equal(dec("40")))
}

func TestCreditEngine_ApplyManualFailsWhenInsufficient(t *testing.T) {
	engine, _ := newTestCreditEngine()
	ctx := context.Background()

	_, err := engine.AddCredits(ctx, "cust_1", dec("5"), credit.BalanceTypePrepaid, "usd", "", nil, nil, "t1", "u1")
	require.NoError(t, err)

	_, err = engine.ApplyManual(ctx, "cust_1", dec("10"), "t1", "u1")
	assert.Error(t, err)
}

func TestCreditEngine_SweepExpired(t *testing.T) {
	engine, repo := newTestCreditEngine()
	ctx := context.Background()

	past := time.Now().UTC().AddDate(0, 0, -1)
	balance := &credit.Balance{
		ID:              "balance_expired",
		CustomerID:      "cust_1",
		Type:            credit.BalanceTypePrepaid,
		OriginalAmount:  dec("30"),
		RemainingAmount: dec("30"),
		Currency:        "usd",
		BalanceStatus:   credit.BalanceStatusActive,
		ExpiresAt:       &past,
	}
	require.NoError(t, repo.CreateBalance(ctx, balance))

	swept, err := engine.SweepExpired(ctx, time.Now().UTC(), "t1", "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, swept)
	assert.Equal(t, credit.BalanceStatusExpired, repo.balances["balance_expired"].BalanceStatus)
	assert.True(t, repo.balances["balance_expired"].RemainingAmount.IsZero())
}

func intPtr(v int) *int { return &v }
