package llm

import (
	"context"
	"errors"
)

// Purposes label requests for logging and metrics.
const (
	PurposeResume          = "resume"
	PurposeCoverLetter     = "cover_letter"
	PurposeScreeningAnswer = "screening_answer"
)

// Request is one completion request: a system persona plus a user instruction.
type Request struct {
	Purpose string
	System  string
	Prompt  string
	// JSON asks the provider for a single JSON object.
	JSON bool
}

// Client abstracts generation service providers.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, req Request) (string, error)

// Complete calls f.
func (f ClientFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not implemented")

// PlaceholderClient is used when no provider is configured.
type PlaceholderClient struct{}

// Complete returns ErrNotImplemented.
func (PlaceholderClient) Complete(ctx context.Context, req Request) (string, error) {
	_ = ctx
	_ = req
	return "", ErrNotImplemented
}
