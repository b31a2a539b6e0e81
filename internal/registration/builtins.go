// Package registration pulls in the built-in providers so their init
// functions register with the factory registry.
package registration

import (
	_ "github.com/parley-llm/parley/internal/provider/anthropic"
	_ "github.com/parley-llm/parley/internal/provider/gemini"
	_ "github.com/parley-llm/parley/internal/provider/ollama"
	_ "github.com/parley-llm/parley/internal/provider/openai"
	_ "github.com/parley-llm/parley/internal/provider/openrouter"
)

// RegisterBuiltins is a no-op anchor; importing this package is what
// registers the providers.
func RegisterBuiltins() {}
