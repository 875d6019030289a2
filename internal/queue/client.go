package queue

import (
	"context"
	"time"
)

// Client sends messages to a queue backend.
type Client interface {
	Send(ctx context.Context, msg Message) error
}

type requestIDKey struct{}

// WithRequestID attaches the originating request ID to ctx.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request ID stored by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Enqueuer adapts a Client to enqueue batches by ID.
type Enqueuer struct {
	Client Client
	Now    func() time.Time
}

// NewEnqueuer constructs an Enqueuer.
func NewEnqueuer(c Client) *Enqueuer {
	return &Enqueuer{Client: c, Now: time.Now}
}

// Enqueue sends a message for batchID, carrying the request ID from ctx.
func (e *Enqueuer) Enqueue(ctx context.Context, batchID string) error {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	return e.Client.Send(ctx, NewMessage(batchID, RequestIDFromContext(ctx), now()))
}
