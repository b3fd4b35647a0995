package types

// Status tracks the lifecycle of a persisted resource. Soft-deleted and
// archived rows are excluded from normal queries by the repository layer.
type Status string

const (
	StatusActive   Status = "active"
	StatusDeleted  Status = "deleted"
	StatusArchived Status = "archived"
)
