package commitment

import "errors"

var ErrTierNotFound = errors.New("commitment tier not found")

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrTierNotFound)
}
