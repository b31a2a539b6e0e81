package conversation

import (
	"sync"

	"github.com/tiktoken-go/tokenizer"

	"github.com/parley-llm/parley/internal/domain"
)

// perMessageOverhead approximates the chat-format framing tokens that
// accompany each message.
const perMessageOverhead = 4

var (
	codecMu    sync.Mutex
	codecCache = make(map[string]tokenizer.Codec)
)

func codecFor(model string) (tokenizer.Codec, error) {
	codecMu.Lock()
	defer codecMu.Unlock()

	if c, ok := codecCache[model]; ok {
		return c, nil
	}
	c, err := tokenizer.ForModel(tokenizer.Model(model))
	if err != nil {
		// Unknown models fall back to the most common chat encoding.
		c, err = tokenizer.Get(tokenizer.Cl100kBase)
		if err != nil {
			return nil, err
		}
	}
	codecCache[model] = c
	return c, nil
}

func countTokens(codec tokenizer.Codec, m domain.Message) int {
	ids, _, err := codec.Encode(m.Content)
	if err != nil {
		// Rough fallback so a tokenizer failure never drops history.
		return len(m.Content)/4 + perMessageOverhead
	}
	return len(ids) + perMessageOverhead
}

// trimToTokenBudget drops the oldest turns, two at a time to preserve
// alternation, until system prompt plus turns fit the budget. The final
// user message is always kept.
func trimToTokenBudget(system, turns []domain.Message, budget int, model string) []domain.Message {
	codec, err := codecFor(model)
	if err != nil {
		return turns
	}

	total := 0
	for _, m := range system {
		total += countTokens(codec, m)
	}
	counts := make([]int, len(turns))
	for i, m := range turns {
		counts[i] = countTokens(codec, m)
		total += counts[i]
	}

	start := 0
	for total > budget && len(turns)-start > 1 {
		drop := 2
		if len(turns)-start-drop < 1 {
			drop = 1
		}
		for i := 0; i < drop; i++ {
			total -= counts[start]
			start++
		}
	}
	return turns[start:]
}
