package plan

import "errors"

var (
	ErrPlanNotFound      = errors.New("plan not found")
	ErrComponentNotFound = errors.New("price component not found")
	ErrPlanInUse         = errors.New("plan is referenced by an active subscription")
)

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrPlanNotFound) || errors.Is(err, ErrComponentNotFound)
}
