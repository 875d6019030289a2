package workerproc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"applygen-backend/internal/batches"
	"applygen-backend/internal/queue"
)

// Processor runs one queued batch.
type Processor interface {
	Process(ctx context.Context, batchID string) (batches.Batch, error)
}

// MessageMeta captures details useful for logging and diagnostics.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 hash.
func ComputeMeta(body string) MessageMeta {
	if body == "" {
		return MessageMeta{BodyLen: 0, BodySHA: ""}
	}
	sum := sha256.Sum256([]byte(body))
	return MessageMeta{BodyLen: len(body), BodySHA: hex.EncodeToString(sum[:])}
}

// ErrEmptyBody indicates an empty queue payload.
type ErrEmptyBody struct {
	Meta MessageMeta
}

func (e ErrEmptyBody) Error() string { return "empty message body" }

// ErrDecode indicates a JSON decode failure.
type ErrDecode struct {
	Meta MessageMeta
	Err  error
}

func (e ErrDecode) Error() string {
	if e.Err == nil {
		return "decode message"
	}
	return "decode message: " + e.Err.Error()
}

func (e ErrDecode) Unwrap() error { return e.Err }

// ErrMissingBatchID indicates a message without a batch id.
type ErrMissingBatchID struct {
	Meta      MessageMeta
	RequestID string
}

func (e ErrMissingBatchID) Error() string { return "missing batch id" }

// ErrProcess indicates processing failed after successful parsing.
type ErrProcess struct {
	BatchID   string
	RequestID string
	Err       error
}

func (e ErrProcess) Error() string {
	if e.Err == nil {
		return "process batch"
	}
	return "process batch: " + e.Err.Error()
}

func (e ErrProcess) Unwrap() error { return e.Err }

// Permanent reports whether redelivering the message cannot succeed: the
// payload is unusable, the batch is gone, or the batch failed on its own
// inputs. Such messages should be deleted rather than retried.
func Permanent(err error) bool {
	var (
		empty   ErrEmptyBody
		decode  ErrDecode
		missing ErrMissingBatchID
	)
	switch {
	case errors.As(err, &empty), errors.As(err, &decode), errors.As(err, &missing):
		return true
	case errors.Is(err, batches.ErrNotFound),
		errors.Is(err, batches.ErrBatchFailed),
		errors.Is(err, batches.ErrEmptyInput),
		errors.Is(err, batches.ErrInvalidInput):
		return true
	default:
		return false
	}
}

// ParseMessage validates and decodes the queue payload.
func ParseMessage(body string) (queue.Message, MessageMeta, error) {
	meta := ComputeMeta(body)
	if strings.TrimSpace(body) == "" {
		return queue.Message{}, meta, ErrEmptyBody{Meta: meta}
	}

	msg, err := queue.DecodeMessage([]byte(body))
	if err != nil {
		return queue.Message{}, meta, ErrDecode{Meta: meta, Err: err}
	}
	if strings.TrimSpace(msg.BatchID) == "" {
		return msg, meta, ErrMissingBatchID{Meta: meta, RequestID: msg.RequestID}
	}
	return msg, meta, nil
}

type parsedMessageKey struct{}

// WithParsedMessage stores a decoded message in the context for reuse.
func WithParsedMessage(ctx context.Context, msg queue.Message) context.Context {
	return context.WithValue(ctx, parsedMessageKey{}, msg)
}

func parsedMessageFromContext(ctx context.Context) (queue.Message, bool) {
	if ctx == nil {
		return queue.Message{}, false
	}
	msg, ok := ctx.Value(parsedMessageKey{}).(queue.Message)
	return msg, ok
}

// HandleMessage parses, validates, and processes a message payload.
func HandleMessage(ctx context.Context, proc Processor, body string) error {
	if proc == nil {
		return errors.New("batch processor not configured")
	}

	msg, ok := parsedMessageFromContext(ctx)
	if !ok {
		var err error
		msg, _, err = ParseMessage(body)
		if err != nil {
			return err
		}
	}

	if strings.TrimSpace(msg.BatchID) == "" {
		return ErrMissingBatchID{Meta: ComputeMeta(body), RequestID: msg.RequestID}
	}

	ctxWithRequest := queue.WithRequestID(ctx, msg.RequestID)
	if _, err := proc.Process(ctxWithRequest, msg.BatchID); err != nil {
		return ErrProcess{BatchID: msg.BatchID, RequestID: msg.RequestID, Err: err}
	}
	return nil
}
