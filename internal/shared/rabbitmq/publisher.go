package rabbitmq

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"booking-api/internal/ports"
	"booking-api/internal/shared/config"
)

// BookingPublisher implements ports.EventPublisher on top of the confirm-mode
// channel of Client. Each publish is mandatory and persistent, carries the
// booking id as the message correlation id, and waits for the broker ack
// within the configured timeout. In-flight unconfirmed publishes are bounded
// by a semaphore so confirmation tracking cannot grow without limit.
type BookingPublisher struct {
	client         *Client
	confirmTimeout time.Duration
	inFlight       chan struct{}
}

// NewBookingPublisher builds a publisher over an established client.
func NewBookingPublisher(client *Client, cfg *config.Config) *BookingPublisher {
	return &BookingPublisher{
		client:         client,
		confirmTimeout: time.Duration(cfg.Publisher.ConfirmTimeoutSeconds) * time.Second,
		inFlight:       make(chan struct{}, cfg.Publisher.MaxInFlight),
	}
}

var _ ports.EventPublisher = (*BookingPublisher)(nil)

// Publish sends the body once and reports the broker's verdict. The returned
// outcome distinguishes a missing ack from an acked-but-unroutable message;
// the caller decides what each means.
func (p *BookingPublisher) Publish(ctx context.Context, correlationID uuid.UUID, body []byte) (ports.PublishOutcome, error) {
	select {
	case p.inFlight <- struct{}{}:
	case <-ctx.Done():
		return ports.PublishOutcome{}, ctx.Err()
	}
	defer func() { <-p.inFlight }()

	ctx, cancel := context.WithTimeout(ctx, p.confirmTimeout)
	defer cancel()

	dc, err := p.client.publishDeferred(ctx, amqp.Publishing{
		CorrelationId:   correlationID.String(),
		Timestamp:       time.Now().UTC(),
		ContentType:     "application/json",
		ContentEncoding: "utf-8",
		DeliveryMode:    amqp.Persistent,
		Body:            body,
	})
	if err != nil {
		return ports.PublishOutcome{}, fmt.Errorf("publish booking event: %w", err)
	}

	acked, err := dc.WaitContext(ctx)
	if err != nil {
		// confirmation never arrived within the window; the message may
		// still reach the broker (at-least-once)
		return ports.PublishOutcome{}, fmt.Errorf("await broker confirmation: %w", err)
	}

	returned := p.client.returns.consume(correlationID.String())

	return ports.PublishOutcome{Acked: acked, Returned: returned}, nil
}

// returnRegistry records basic.return deliveries by correlation id. The
// broker sends the return before the ack of the same message, so by the time
// a confirmation resolves the return (if any) has already been listed here;
// consume grants a short grace for listener goroutine scheduling.
type returnRegistry struct {
	mu       sync.Mutex
	returned map[string]struct{}
}

func newReturnRegistry() *returnRegistry {
	return &returnRegistry{returned: make(map[string]struct{})}
}

// listen drains one channel's return stream; it exits when the channel
// closes (connection loss), and the reconnected channel gets a new listener.
func (r *returnRegistry) listen(returns <-chan amqp.Return) {
	for ret := range returns {
		if ret.CorrelationId == "" {
			continue
		}
		r.mu.Lock()
		r.returned[ret.CorrelationId] = struct{}{}
		r.mu.Unlock()
	}
}

func (r *returnRegistry) consume(correlationID string) bool {
	const (
		graceChecks = 3
		graceDelay  = 5 * time.Millisecond
	)
	for i := 0; ; i++ {
		r.mu.Lock()
		_, ok := r.returned[correlationID]
		if ok {
			delete(r.returned, correlationID)
		}
		r.mu.Unlock()

		if ok || i >= graceChecks {
			return ok
		}
		time.Sleep(graceDelay)
	}
}
