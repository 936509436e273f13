package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"garmentFactory/domain"

	"github.com/nats-io/nats.go"
)

const (
	SubjectOrderCreated       = "orders.created"
	SubjectOrderStatusUpdated = "orders.status.updated"
)

type OrderCreatedEvent struct {
	OrderID    uint      `json:"orderId"`
	UserID     uint      `json:"userId"`
	TotalPrice float64   `json:"totalPrice"`
	Items      int       `json:"items"`
	CreatedAt  time.Time `json:"createdAt"`
}

type OrderStatusEvent struct {
	OrderID   uint               `json:"orderId"`
	From      domain.OrderStatus `json:"from"`
	To        domain.OrderStatus `json:"to"`
	ChangedBy uint               `json:"changedBy"`
	ChangedAt time.Time          `json:"changedAt"`
}

type natsPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(conn *nats.Conn) (*natsPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("NATS connection cannot be nil")
	}
	return &natsPublisher{conn: conn}, nil
}

func (p *natsPublisher) Publish(_ context.Context, subject string, message any) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message to JSON for subject %s: %w", subject, err)
	}

	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish message to NATS subject %s: %w", subject, err)
	}

	return nil
}

type noopPublisher struct{}

// NewNoopPublisher is used when no broker is configured.
func NewNoopPublisher() noopPublisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, string, any) error {
	return nil
}
