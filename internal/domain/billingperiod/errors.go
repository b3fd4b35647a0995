package billingperiod

import "errors"

var ErrBillingPeriodNotFound = errors.New("billing period not found")

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrBillingPeriodNotFound)
}
