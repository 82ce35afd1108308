package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ticketcore/seatlock/internal/invalidate"
)

// StartInvalidationConsumer binds an exclusive, auto-deleted queue to the
// seat-availability fanout exchange and drops cache entries as events
// arrive. It runs a reconnect loop and only returns when ctx is cancelled;
// any other failure is logged and retried with backoff. Adapted from the
// booking-confirmation consumer this project split off of: that one
// consumed a single durable work queue where every message had to be
// processed exactly once; this one binds a throwaway queue to a fanout
// exchange, since a missed invalidation just means a stale cache entry that
// self-heals on its next TTL expiry, not a lost event.
func StartInvalidationConsumer(ctx context.Context, url, exchange string, cache invalidate.Cache) error {
	backoff := time.Second
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("invalidation-worker: dial failed: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(ctx, conn, exchange, cache); err != nil {
			log.Printf("invalidation-worker: consume loop ended: %v; reconnecting", err)
			_ = conn.Close()
			time.Sleep(2 * time.Second)
			continue
		}
		_ = conn.Close()
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, exchange string, cache invalidate.Cache) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("exchange declare: %w", err)
	}
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", exchange, false, nil); err != nil {
		return fmt.Errorf("queue bind: %w", err)
	}

	msgs, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := handleMessage(ctx, d.Body, cache); err != nil {
				log.Printf("invalidation-worker: handle message failed: %v", err)
			}
		}
	}
}

func handleMessage(ctx context.Context, body []byte, cache invalidate.Cache) error {
	var ev SeatAvailabilityChangedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return cache.Invalidate(ctx, ev.EventID)
}
