package service

import (
	"context"
	"testing"

	"github.com/flexprice/flexprice/internal/domain/customer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCustomerManager() (*CustomerManager, *fakeCustomerRepository) {
	repo := &fakeCustomerRepository{customers: map[string]*customer.Customer{}}
	return NewCustomerManager(repo, nopLogger()), repo
}

func TestCustomerManager_CreateRejectsDuplicateExternalID(t *testing.T) {
	mgr, repo := newTestCustomerManager()
	ctx := context.Background()

	first, err := mgr.Create(ctx, &customer.Customer{ExternalID: "ext-1", Name: "Acme"}, "tenant_1", "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "tenant_1", first.TenantID)

	_, ok := repo.customers[first.ID]
	assert.True(t, ok)

	_, err = mgr.Create(ctx, &customer.Customer{ExternalID: "ext-1", Name: "Acme Duplicate"}, "tenant_1", "alice")
	assert.Error(t, err)
}

func TestCustomerManager_CreateRejectsMissingExternalID(t *testing.T) {
	mgr, _ := newTestCustomerManager()
	_, err := mgr.Create(context.Background(), &customer.Customer{Name: "No External ID"}, "tenant_1", "alice")
	assert.Error(t, err)
}

func TestCustomerManager_UpdateValidatesAddress(t *testing.T) {
	mgr, repo := newTestCustomerManager()
	ctx := context.Background()

	cust, err := mgr.Create(ctx, &customer.Customer{ExternalID: "ext-2", Name: "Beta"}, "tenant_1", "alice")
	require.NoError(t, err)

	cust.AddressCountry = "USA" // not a 2-letter code
	_, err = mgr.Update(ctx, cust, "bob")
	assert.Error(t, err)

	cust.AddressCountry = "US"
	got, err := mgr.Update(ctx, cust, "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", got.UpdatedBy)
	assert.Equal(t, "US", repo.customers[cust.ID].AddressCountry)
}

func TestCustomerManager_DeleteRemovesCustomer(t *testing.T) {
	mgr, repo := newTestCustomerManager()
	ctx := context.Background()

	cust, err := mgr.Create(ctx, &customer.Customer{ExternalID: "ext-3", Name: "Gamma"}, "tenant_1", "alice")
	require.NoError(t, err)

	require.NoError(t, mgr.Delete(ctx, cust.ID))
	_, ok := repo.customers[cust.ID]
	assert.False(t, ok)
}
