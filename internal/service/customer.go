package service

import (
	"context"
	"time"

	"github.com/flexprice/flexprice/internal/domain/customer"
	ierr "github.com/flexprice/flexprice/internal/errors"
	"github.com/flexprice/flexprice/internal/logger"
	"github.com/flexprice/flexprice/internal/types"
)

// CustomerManager is the thin CRUD layer over customer.Repository: field
// validation plus the audit stamping every mutating call needs. Grounded on
// the teacher's customerService, adapted to operate on the domain
// customer.Customer directly rather than a dto request/response pair — the
// api/dto layer is rebuilt separately and translates at the HTTP boundary.
type CustomerManager struct {
	repo   customer.Repository
	logger *logger.Logger
}

func NewCustomerManager(repo customer.Repository, logger *logger.Logger) *CustomerManager {
	return &CustomerManager{repo: repo, logger: logger}
}

// Create validates and persists a new customer, rejecting a duplicate
// external_id the way the teacher's CreateCustomer does.
func (m *CustomerManager) Create(ctx context.Context, cust *customer.Customer, tenantID, createdBy string) (*customer.Customer, error) {
	if err := cust.Validate(); err != nil {
		return nil, err
	}

	if existing, err := m.repo.GetByExternalID(ctx, cust.ExternalID); err == nil && existing != nil {
		return nil, ierr.NewError("a customer with this external_id already exists").
			WithReportableDetails(map[string]interface{}{"external_id": cust.ExternalID}).
			Mark(ierr.ErrAlreadyExists)
	}

	if cust.ID == "" {
		cust.ID = types.GenerateUUIDWithPrefix(types.UUIDPrefixCustomer)
	}
	now := time.Now().UTC()
	cust.BaseModel = types.BaseModel{
		TenantID:  tenantID,
		Status:    types.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: createdBy,
		UpdatedBy: createdBy,
	}

	if err := m.repo.Create(ctx, cust); err != nil {
		return nil, err
	}
	return cust, nil
}

func (m *CustomerManager) Get(ctx context.Context, id string) (*customer.Customer, error) {
	if id == "" {
		return nil, ierr.NewError("customer id is required").Mark(ierr.ErrValidation)
	}
	return m.repo.Get(ctx, id)
}

func (m *CustomerManager) GetByExternalID(ctx context.Context, externalID string) (*customer.Customer, error) {
	if externalID == "" {
		return nil, ierr.NewError("external_id is required").Mark(ierr.ErrValidation)
	}
	return m.repo.GetByExternalID(ctx, externalID)
}

// Update re-validates and persists changes to an existing customer. The
// caller mutates the fields on cust (fetched via Get) before calling
// Update; ID/TenantID/CreatedAt/CreatedBy are left untouched.
func (m *CustomerManager) Update(ctx context.Context, cust *customer.Customer, updatedBy string) (*customer.Customer, error) {
	if err := cust.Validate(); err != nil {
		return nil, err
	}
	cust.UpdatedBy = updatedBy
	cust.UpdatedAt = time.Now().UTC()
	if err := m.repo.Update(ctx, cust); err != nil {
		return nil, err
	}
	return cust, nil
}

// Delete soft-deletes a customer. Billing history referencing the customer
// (invoices, credit balances) is untouched.
func (m *CustomerManager) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ierr.NewError("customer id is required").Mark(ierr.ErrValidation)
	}
	return m.repo.Delete(ctx, id)
}

func (m *CustomerManager) List(ctx context.Context, limit, offset int) ([]*customer.Customer, error) {
	return m.repo.List(ctx, limit, offset)
}
