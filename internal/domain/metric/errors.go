package metric

import "errors"

var (
	ErrMetricNotFound      = errors.New("metric not found")
	ErrMetricNameTaken     = errors.New("metric name already in use")
	ErrMetricInUse         = errors.New("metric is referenced by an active price component")
)

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrMetricNotFound)
}
