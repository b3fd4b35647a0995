package credit

import (
	"context"
	"time"
)

// Repository persists credit balances and their append-only transaction log.
type Repository interface {
	CreateBalance(ctx context.Context, balance *Balance) error
	GetBalance(ctx context.Context, id string) (*Balance, error)
	UpdateBalance(ctx context.Context, balance *Balance) error

	// ListUsableByCustomer returns the customer's active, non-expired,
	// non-exhausted balances ordered for draw-down: expires_at ASC with
	// nulls last, then created_at ASC. Callers that intend to mutate the
	// returned balances within the same transaction should pair this
	// with a row lock at the storage layer (e.g. SELECT ... FOR UPDATE).
	ListUsableByCustomer(ctx context.Context, customerID string) ([]*Balance, error)

	// ListExpiring returns active balances whose expires_at has passed as
	// of asOf, for the periodic expiration sweep.
	ListExpiring(ctx context.Context, asOf time.Time) ([]*Balance, error)

	CreateTransaction(ctx context.Context, tx *Transaction) error
	ListTransactionsByBalance(ctx context.Context, balanceID string) ([]*Transaction, error)
	ListTransactionsByCustomer(ctx context.Context, customerID string) ([]*Transaction, error)
}
