package llm

import (
	"context"
	"errors"
)

// ChatRequest is a single system+user message pair sent to the model.
type ChatRequest struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}

// Client abstracts LLM providers for interview question generation and analysis.
type Client interface {
	Chat(ctx context.Context, req ChatRequest) (string, error)
}

// ErrUnavailable wraps provider failures that persist after retry exhaustion.
var ErrUnavailable = errors.New("llm unavailable")

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not implemented")

// PlaceholderClient is a stub implementation until provider wiring is added.
type PlaceholderClient struct{}

// Chat returns ErrNotImplemented.
func (PlaceholderClient) Chat(ctx context.Context, req ChatRequest) (string, error) {
	_ = ctx
	_ = req
	return "", ErrNotImplemented
}
