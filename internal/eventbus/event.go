// Package eventbus is the notification collaborator boundary: the core
// publishes domain events; presentation layers subscribe and re-render.
// Delivery is best-effort and read paths stay eventually consistent.
package eventbus

import (
	"context"
	"time"
)

const (
	TopicBillCreated      = "bill.created"
	TopicFlatVacated      = "flat.vacated"
	TopicPaymentSubmitted = "payment.submitted"
	TopicPaymentVerified  = "payment.verified"
)

type Event struct {
	Topic   string         `json:"topic"`
	At      time.Time      `json:"at"`
	Payload map[string]any `json:"payload,omitempty"`
}

type Bus interface {
	Publish(ctx context.Context, event Event) error
	// Subscribe returns a channel of events for one topic and a cancel
	// function that releases the subscription.
	Subscribe(ctx context.Context, topic string) (<-chan Event, func(), error)
}
