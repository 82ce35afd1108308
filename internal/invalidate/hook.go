// Package invalidate implements the one-way notification path fired after a
// booking commits or cancels: a fire-and-forget publish telling any
// read-through cache in front of the seat-availability listing to drop its
// stale entry. The hook is never retried and never allowed to block or fail
// the booking it describes — the booking already committed by the time it
// runs.
package invalidate

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// SeatAvailabilityChanged is the payload published whenever a commit,
// confirm or cancel changes which seats of an event are available.
type SeatAvailabilityChanged struct {
	EventID   uint64    `json:"event_id"`
	SeatIDs   []uint64  `json:"seat_ids"`
	Reason    string    `json:"reason"` // "booked", "confirmed", "cancelled"
	ChangedAt time.Time `json:"changed_at"`
}

// Hook is the one-way notification interface the booking coordinator holds.
// Implementations must not block the caller for longer than it takes to
// enqueue the notification, and must never return an error that the
// coordinator would need to roll a committed booking back over.
type Hook interface {
	Publish(ctx context.Context, event SeatAvailabilityChanged)
}

// NoopHook discards every event. It is the default when no broker is
// configured, so the coordinator never needs a nil check.
type NoopHook struct{}

func (NoopHook) Publish(context.Context, SeatAvailabilityChanged) {}

// AMQPHook publishes to a RabbitMQ fanout exchange so that every interested
// cache invalidator (there may be more than one process watching seat
// availability) gets its own queue without the publisher knowing about it.
// Adapted from the booking-confirmation publisher this project split off
// of: that one dialed a fresh connection per publish against a single
// named queue; this one keeps a long-lived channel against a fanout
// exchange, since invalidation traffic is high-frequency and has more than
// one consumer.
type AMQPHook struct {
	channel  *amqp.Channel
	exchange string
}

// NewAMQPHook declares exchange as a durable fanout exchange on channel and
// returns a Hook that publishes to it.
func NewAMQPHook(channel *amqp.Channel, exchange string) (*AMQPHook, error) {
	if err := channel.ExchangeDeclare(
		exchange, "fanout", true, false, false, false, nil,
	); err != nil {
		return nil, err
	}
	return &AMQPHook{channel: channel, exchange: exchange}, nil
}

// Publish marshals event and publishes it to the exchange. Failures are
// logged, never returned: the coordinator has already committed the booking
// this event describes, so there is nothing left to unwind.
func (h *AMQPHook) Publish(ctx context.Context, event SeatAvailabilityChanged) {
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("invalidate: marshal event failed: %v", err)
		return
	}
	pub := amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   time.Now().UTC(),
		Body:        body,
	}
	if err := h.channel.PublishWithContext(ctx, h.exchange, "", false, false, pub); err != nil {
		log.Printf("invalidate: publish failed: %v", err)
	}
}
