package postgres

import (
	"context"

	"github.com/flexprice/flexprice/internal/domain/customer"
	ierr "github.com/flexprice/flexprice/internal/errors"
	"github.com/flexprice/flexprice/internal/logger"
	"github.com/flexprice/flexprice/internal/postgres"
)

// customerRepository is the sqlx-backed customer.Repository, grounded on
// the sibling flexprice variant's NamedExecContext/StructScan repository
// style, routed through GetNamedQuerier so writes join an in-flight
// transaction started via transactor.WithTx.
type customerRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewCustomerRepository(db *postgres.DB, logger *logger.Logger) customer.Repository {
	return &customerRepository{db: db, logger: logger}
}

func (r *customerRepository) Create(ctx context.Context, c *customer.Customer) error {
	query := `
		INSERT INTO customers (
			id, tenant_id, external_id, name, email,
			address_line1, address_line2, address_city, address_state, address_postal_code, address_country,
			metadata, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :tenant_id, :external_id, :name, :email,
			:address_line1, :address_line2, :address_city, :address_state, :address_postal_code, :address_country,
			:metadata, :status, :created_at, :updated_at, :created_by, :updated_by
		)`
	_, err := r.db.GetNamedQuerier(ctx).NamedExecContext(ctx, query, c)
	if err != nil {
		return ierr.NewError("failed to create customer").
			WithReportableDetails(map[string]interface{}{"error": err.Error()}).
			Mark(ierr.ErrSystemError)
	}
	return nil
}

func (r *customerRepository) Get(ctx context.Context, id string) (*customer.Customer, error) {
	var c customer.Customer
	if err := r.db.GetNamedQuerier(ctx).GetContext(ctx, &c, "SELECT * FROM customers WHERE id = $1", id); err != nil {
		return nil, customer.ErrCustomerNotFound
	}
	return &c, nil
}

func (r *customerRepository) GetByExternalID(ctx context.Context, externalID string) (*customer.Customer, error) {
	var c customer.Customer
	if err := r.db.GetNamedQuerier(ctx).GetContext(ctx, &c, "SELECT * FROM customers WHERE external_id = $1", externalID); err != nil {
		return nil, customer.ErrCustomerNotFound
	}
	return &c, nil
}

func (r *customerRepository) Update(ctx context.Context, c *customer.Customer) error {
	query := `
		UPDATE customers SET
			name = :name, email = :email,
			address_line1 = :address_line1, address_line2 = :address_line2, address_city = :address_city,
			address_state = :address_state, address_postal_code = :address_postal_code, address_country = :address_country,
			metadata = :metadata, status = :status, updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id`
	_, err := r.db.GetNamedQuerier(ctx).NamedExecContext(ctx, query, c)
	return err
}

func (r *customerRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.GetNamedQuerier(ctx).ExecContext(ctx, "UPDATE customers SET status = 'deleted' WHERE id = $1", id)
	return err
}

func (r *customerRepository) List(ctx context.Context, limit, offset int) ([]*customer.Customer, error) {
	var customers []*customer.Customer
	err := r.db.GetNamedQuerier(ctx).SelectContext(ctx, &customers,
		"SELECT * FROM customers WHERE status = 'active' ORDER BY created_at DESC LIMIT $1 OFFSET $2", limit, offset)
	return customers, err
}
