package domain

import (
	"context"
)

// Provider is the uniform contract implemented by every backend client.
type Provider interface {
	Name() string

	// SendMessage runs one conversational turn. Tokens are delivered to
	// sink as they are classified; the final assembled message is
	// returned when the stream ends. A SendMessage issued while another
	// is in flight on the same provider cancels the earlier one.
	SendMessage(ctx context.Context, req *ChatRequest, sink TokenSink) (*ChatResult, error)

	// ListModels returns the models this provider exposes.
	ListModels(ctx context.Context) ([]Model, error)

	// Cancel aborts the in-flight request, if any. The aborted call still
	// returns its partially assembled content, flagged truncated.
	Cancel()
}
