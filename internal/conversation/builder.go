// Package conversation converts stored history plus a new user message
// into the ordered message list a specific backend accepts: role
// constraints repaired, duplicates and empties dropped, content
// sanitized, and the context window applied.
package conversation

import (
	"strings"

	"github.com/parley-llm/parley/internal/domain"
)

// placeholderContent fills synthetic messages inserted to satisfy role
// ordering constraints.
const placeholderContent = "..."

// Profile captures a backend's message ordering constraints.
type Profile struct {
	// RequireUserFirst inserts a synthetic user message when the
	// conversation would otherwise open with an assistant turn.
	RequireUserFirst bool

	// StrictAlternation inserts a synthetic opposite-role message
	// between two consecutive same-role turns.
	StrictAlternation bool

	// SystemOutOfBand extracts leading system messages into a separate
	// system prompt instead of keeping them in the message list
	// (Anthropic's system field, Gemini's systemInstruction).
	SystemOutOfBand bool
}

// Options bound how much history is sent.
type Options struct {
	// MaxPairs keeps only the most recent N role-alternating pairs.
	// Zero means unlimited.
	MaxPairs int

	// MaxContextTokens trims the oldest turns until the conversation
	// fits the token budget. Zero means unlimited.
	MaxContextTokens int

	// Model selects the tokenizer used for MaxContextTokens.
	Model string
}

// Built is the normalized conversation ready for wire conversion.
type Built struct {
	// Messages is the ordered list, leading system messages included
	// unless the profile carries them out of band.
	Messages []domain.Message

	// System is the combined system prompt when SystemOutOfBand is set.
	System string
}

// Build normalizes history and the new user message for one backend.
func Build(history []domain.Message, prompt string, p Profile, o Options) Built {
	prompt = Sanitize(prompt)

	var system []domain.Message
	var turns []domain.Message
	leading := true
	for _, m := range history {
		content := Sanitize(m.Content)
		if strings.TrimSpace(content) == "" {
			continue
		}
		m.Content = content
		if leading && m.Role == domain.RoleSystem {
			system = append(system, m)
			continue
		}
		leading = false
		if m.Role == domain.RoleSystem {
			// Mid-conversation system messages are rare; treat them as
			// context the same way leading ones are treated.
			system = append(system, m)
			continue
		}
		turns = append(turns, m)
	}

	// Drop a trailing user turn that duplicates the new message
	// verbatim, so an optimistically appended message is not sent twice.
	if n := len(turns); n > 0 && turns[n-1].Role == domain.RoleUser && turns[n-1].Content == prompt {
		turns = turns[:n-1]
	}

	if o.MaxPairs > 0 && len(turns) > 2*o.MaxPairs {
		turns = turns[len(turns)-2*o.MaxPairs:]
	}

	turns = append(turns, domain.NewMessage(domain.RoleUser, prompt))

	if o.MaxContextTokens > 0 {
		turns = trimToTokenBudget(system, turns, o.MaxContextTokens, o.Model)
	}

	if p.RequireUserFirst && len(turns) > 0 && turns[0].Role == domain.RoleAssistant {
		turns = append([]domain.Message{placeholder(domain.RoleUser)}, turns...)
	}

	if p.StrictAlternation {
		turns = repairAlternation(turns)
	}

	out := Built{}
	if p.SystemOutOfBand {
		parts := make([]string, 0, len(system))
		for _, m := range system {
			parts = append(parts, m.Content)
		}
		out.System = strings.Join(parts, "\n\n")
		out.Messages = turns
	} else {
		out.Messages = append(append([]domain.Message{}, system...), turns...)
	}
	return out
}

// repairAlternation inserts one synthetic opposite-role message between
// each pair of consecutive same-role turns.
func repairAlternation(turns []domain.Message) []domain.Message {
	if len(turns) < 2 {
		return turns
	}
	out := make([]domain.Message, 0, len(turns)+1)
	out = append(out, turns[0])
	for _, m := range turns[1:] {
		if prev := out[len(out)-1]; prev.Role == m.Role {
			out = append(out, placeholder(opposite(m.Role)))
		}
		out = append(out, m)
	}
	return out
}

func opposite(r domain.Role) domain.Role {
	if r == domain.RoleUser {
		return domain.RoleAssistant
	}
	return domain.RoleUser
}

func placeholder(r domain.Role) domain.Message {
	return domain.NewMessage(r, placeholderContent)
}
