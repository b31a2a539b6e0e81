// Package registry provides provider factory registration and lookup.
//
// Each provider package registers itself via init():
//
//	func init() {
//	    registry.Register(registry.Factory{
//	        Kind:        Kind,
//	        Description: "OpenAI chat completions",
//	        Create:      CreateFromConfig,
//	        Validate:    ValidateConfig,
//	    })
//	}
//
// Provider packages must be imported (via blank import) through the
// registration package so their init() functions run.
package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/parley-llm/parley/internal/config"
	"github.com/parley-llm/parley/internal/domain"
)

// Factory describes how to create a provider of one kind.
type Factory struct {
	// Kind is the provider kind used in configuration
	// (openai, openrouter, anthropic, gemini, ollama).
	Kind string

	// Description is a human-readable summary.
	Description string

	// Create instantiates a provider from configuration.
	Create func(cfg config.ProviderConfig, logger *slog.Logger) (domain.Provider, error)

	// Validate performs kind-specific configuration validation.
	// Optional: nil means no additional validation.
	Validate func(cfg config.ProviderConfig) error
}

var (
	factoryMu  sync.RWMutex
	factoryMap = make(map[string]Factory)
)

// Register registers a factory. It panics on duplicate or incomplete
// registrations, which only happen at init time.
func Register(f Factory) {
	factoryMu.Lock()
	defer factoryMu.Unlock()

	if f.Kind == "" {
		panic("provider factory kind cannot be empty")
	}
	if f.Create == nil {
		panic(fmt.Sprintf("provider factory %q must have a Create function", f.Kind))
	}
	if _, exists := factoryMap[f.Kind]; exists {
		panic(fmt.Sprintf("provider factory %q already registered", f.Kind))
	}
	factoryMap[f.Kind] = f
}

// Get returns the factory for a kind, if registered.
func Get(kind string) (Factory, bool) {
	factoryMu.RLock()
	defer factoryMu.RUnlock()
	f, ok := factoryMap[kind]
	return f, ok
}

// Kinds returns all registered provider kinds, sorted.
func Kinds() []string {
	factoryMu.RLock()
	defer factoryMu.RUnlock()
	kinds := make([]string, 0, len(factoryMap))
	for k := range factoryMap {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// New validates cfg and creates a provider of its kind.
func New(cfg config.ProviderConfig, logger *slog.Logger) (domain.Provider, error) {
	f, ok := Get(cfg.Kind)
	if !ok {
		return nil, domain.ErrConfiguration(fmt.Sprintf("unknown provider kind %q (known: %v)", cfg.Kind, Kinds()))
	}
	if f.Validate != nil {
		if err := f.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return f.Create(cfg, logger)
}
