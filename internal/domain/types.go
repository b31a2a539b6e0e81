// Package domain provides the canonical types shared by every provider
// client: messages, chat requests and results, streaming events, and the
// error taxonomy.
package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a chat message. Messages are immutable once stored;
// corrections are new messages.
type Message struct {
	ID      string `json:"id"`
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// ReasoningBlocks holds the reasoning runs extracted during streaming.
	// Only assistant messages carry these.
	ReasoningBlocks []string `json:"reasoning_blocks,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NewMessage creates a message with a fresh ID and timestamp.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// ReasoningTag is the header/footer pair that delimits reasoning output
// inside a model's token stream.
type ReasoningTag struct {
	Header string
	Footer string
}

// NewReasoningTag derives the footer from the header by replacing the
// leading "<" with "</". A header without a "<" yields an identical
// footer, in which case occurrences toggle blocks open and closed.
func NewReasoningTag(header string) ReasoningTag {
	return ReasoningTag{
		Header: header,
		Footer: strings.Replace(header, "<", "</", 1),
	}
}

// DefaultReasoningTag returns the conventional <think>...</think> pair.
func DefaultReasoningTag() ReasoningTag {
	return NewReasoningTag("<think>")
}

// IsZero reports whether the tag is unset.
func (t ReasoningTag) IsZero() bool {
	return t.Header == ""
}

// StreamKind classifies an emitted text fragment.
type StreamKind int

const (
	// KindAnswer is user-visible answer text.
	KindAnswer StreamKind = iota
	// KindReasoning is text inside a reasoning block.
	KindReasoning
)

func (k StreamKind) String() string {
	if k == KindReasoning {
		return "reasoning"
	}
	return "answer"
}

// StreamEvent is one classified text fragment emitted while a response
// is still arriving.
type StreamEvent struct {
	Kind StreamKind
	Text string
}

// TokenSink receives stream events as they are classified. The sink is
// called synchronously with decode progress; a slow sink applies
// backpressure to the whole pipeline.
type TokenSink func(StreamEvent)

// ChatRequest describes one conversational turn. It is constructed fresh
// per call and owned exclusively by that call.
type ChatRequest struct {
	// History is the prior conversation, oldest first. Read-only.
	History []Message

	// Prompt is the new user message text.
	Prompt string

	// Model overrides the provider's configured default model.
	Model string

	// Temperature, when set, overrides the provider default.
	Temperature *float32

	// MaxTokens bounds the completion length. Zero means provider default.
	MaxTokens int

	// Stream requests incremental delivery. Non-streaming calls run the
	// identical pipeline over a single whole-body frame.
	Stream bool

	// Tag delimits reasoning output. Zero value means the provider's
	// configured tag, falling back to DefaultReasoningTag.
	Tag ReasoningTag

	// Context is the opaque continuation state returned by a previous
	// turn, for backends that keep conversation state server-side.
	Context json.RawMessage
}

// ChatResult is the final assembled assistant turn.
type ChatResult struct {
	// Message is the reconstructed assistant message, including any
	// reasoning blocks gathered during streaming.
	Message Message

	// Truncated is set when the stream was cancelled or cut off after
	// some content had already been produced.
	Truncated bool

	// Context is the continuation state to pass back on the next turn,
	// when the backend supplied one.
	Context json.RawMessage
}

// Model describes a model exposed by a provider.
type Model struct {
	ID      string `json:"id"`
	OwnedBy string `json:"owned_by,omitempty"`
	Created int64  `json:"created,omitempty"`
}
