package customer

import "errors"

var (
	ErrCustomerNotFound      = errors.New("customer not found")
	ErrCustomerAlreadyExists = errors.New("customer already exists")
)

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrCustomerNotFound)
}
