// Package publisher fans out domain events raised by the billing engine
// (invoice finalized, credit applied, ...) to whatever watermill-backed
// transport the deployment wires in. Grounded on the teacher's use of
// watermill for internal message routing (internal/service/event_consumption.go)
// and on watermill-kafka/v2 as the teacher's production transport.
package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/flexprice/flexprice/internal/logger"
	"go.uber.org/zap"
)

// Domain event topics. Subscribers (webhooks, analytics, audit log) bind to
// these by name; the publisher itself is transport-agnostic.
const (
	TopicInvoiceFinalized = "billing.invoice_finalized"
	TopicInvoiceVoided    = "billing.invoice_voided"
	TopicCreditApplied    = "billing.credit_applied"
	TopicCreditExpired    = "billing.credit_expired"
)

// DomainEvent is the envelope carried on every domain topic.
type DomainEvent struct {
	Type       string          `json:"type"`
	TenantID   string          `json:"tenant_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// DomainEventPublisher publishes fire-and-forget domain events. Callers must
// never let a publish failure roll back the transaction that raised the
// event; Publish only logs on error.
type DomainEventPublisher interface {
	Publish(ctx context.Context, topic string, tenantID string, payload interface{})
}

type domainEventPublisher struct {
	pub    message.Publisher
	logger *logger.Logger
}

// NewDomainEventPublisher wraps any watermill message.Publisher (cmd/server
// wires the in-process gochannel pubsub) as a DomainEventPublisher.
func NewDomainEventPublisher(pub message.Publisher, logger *logger.Logger) DomainEventPublisher {
	return &domainEventPublisher{pub: pub, logger: logger}
}

func (p *domainEventPublisher) Publish(ctx context.Context, topic string, tenantID string, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		p.logger.With(zap.String("topic", topic), zap.Error(err)).Error("failed to marshal domain event payload")
		return
	}

	envelope, err := json.Marshal(DomainEvent{
		Type:       topic,
		TenantID:   tenantID,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	})
	if err != nil {
		p.logger.With(zap.String("topic", topic), zap.Error(err)).Error("failed to marshal domain event envelope")
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), envelope)
	msg.SetContext(ctx)

	if err := p.pub.Publish(topic, msg); err != nil {
		p.logger.With(zap.String("topic", topic), zap.Error(err)).Error("failed to publish domain event")
	}
}
