package dto

import (
	"time"

	"github.com/flexprice/flexprice/internal/domain/events"
	"github.com/flexprice/flexprice/internal/types"
)

// TrackEventRequest is the wire shape for POST /events.
type TrackEventRequest struct {
	EventName          string                 `json:"event_name" validate:"required"`
	ExternalCustomerID string                 `json:"external_customer_id"`
	CustomerID         string                 `json:"customer_id"`
	Source             string                 `json:"source"`
	Timestamp          *time.Time             `json:"timestamp"`
	Properties         map[string]interface{} `json:"properties"`
}

func (r *TrackEventRequest) ToEvent(tenantID string) *events.Event {
	ev := &events.Event{
		ID:                 types.GenerateUUIDWithPrefix(types.UUIDPrefixEvent),
		TenantID:           tenantID,
		EventName:          r.EventName,
		ExternalCustomerID: r.ExternalCustomerID,
		CustomerID:         r.CustomerID,
		Source:             r.Source,
		Properties:         r.Properties,
	}
	if r.Timestamp != nil {
		ev.Timestamp = *r.Timestamp
	}
	return ev
}

// BatchTrackEventRequest is the wire shape for POST /events/batch.
type BatchTrackEventRequest struct {
	Events []TrackEventRequest `json:"events" validate:"required,min=1"`
}

// UsageRequest is the wire shape for GET /events/customers/{id}/usage and
// POST /usage/track's read counterpart.
type UsageRequest struct {
	MetricName string    `json:"metric_name" validate:"required"`
	StartDate  time.Time `json:"start_date" validate:"required"`
	EndDate    time.Time `json:"end_date" validate:"required"`
}
