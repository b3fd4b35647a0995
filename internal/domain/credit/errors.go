package credit

import "errors"

var (
	// ErrBalanceNotFound is returned when a credit balance is not found
	ErrBalanceNotFound = errors.New("credit balance not found")

	// ErrInsufficientBalance is returned when a balance cannot cover a requested draw-down
	ErrInsufficientBalance = errors.New("insufficient credit balance")

	// ErrBalanceNotUsable is returned when a draw-down is attempted against an
	// expired, consumed, or cancelled balance
	ErrBalanceNotUsable = errors.New("credit balance is not usable")
)

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrBalanceNotFound)
}
