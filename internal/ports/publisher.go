package ports

import (
	"context"

	"github.com/google/uuid"
)

// PublishOutcome reports what the broker said about one publish.
type PublishOutcome struct {
	// Acked is true when the broker confirmed the message.
	Acked bool
	// Returned is true when the broker handed the message back as
	// unroutable. A message can be acked and still returned.
	Returned bool
}

// EventPublisher delivers a prepared JSON message with the given correlation
// id and waits for the broker's verdict. Implementations bound the wait; a
// confirmation that never arrives surfaces as an error, never a hang.
//
// Exactly one publish attempt per call. Once the message is on the wire it
// may be delivered even if ctx is cancelled afterwards (at-least-once).
type EventPublisher interface {
	Publish(ctx context.Context, correlationID uuid.UUID, body []byte) (PublishOutcome, error)
}
