// Package strategies maps a (language, capability) pair to the framework
// strategy that discovers runnables for it.
package strategies

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/specvital/locator/pkg/domain"
	"github.com/specvital/locator/pkg/runner"
)

var defaultRegistry = NewRegistry()

// Strategy discovers runnables for one language and capability.
type Strategy interface {
	// Name returns the framework identifier (e.g., "go-test").
	Name() string
	// Language returns the language this strategy handles.
	Language() domain.Language
	// Capability returns the capability this strategy provides.
	Capability() domain.Capability
	// Capabilities returns the search descriptors offered to front ends.
	Capabilities() []domain.CapabilityDescriptor
	// SearchModeFor maps a descriptor label back to its search mode.
	SearchModeFor(description string) (domain.SearchMode, bool)
	// Detect reports whether the target buffer belongs to this framework.
	Detect(ctx context.Context, target *domain.Target) bool
	// Runnables searches the target buffer according to its mode.
	Runnables(ctx context.Context, target *domain.Target) ([]domain.Runnable, error)
	// Command builds the invocation that executes exactly the runnable.
	Command(r domain.Runnable) runner.Command
}

type key struct {
	language   domain.Language
	capability domain.Capability
}

// Registry manages registered strategies.
type Registry struct {
	mu         sync.RWMutex
	strategies map[key]Strategy
}

// NewRegistry creates a new empty strategy registry.
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[key]Strategy)}
}

// DefaultRegistry returns the global default registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register adds a strategy to the default registry.
func Register(s Strategy) {
	defaultRegistry.Register(s)
}

// Lookup finds a strategy in the default registry.
func Lookup(lang domain.Language, capability domain.Capability) (Strategy, error) {
	return defaultRegistry.Lookup(lang, capability)
}

// ForFile finds a strategy in the default registry by file extension.
func ForFile(path string, capability domain.Capability) (Strategy, error) {
	return defaultRegistry.ForFile(path, capability)
}

// Register adds a strategy, replacing any strategy already registered for
// the same language and capability.
func (r *Registry) Register(s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[key{language: s.Language(), capability: s.Capability()}] = s
}

// Lookup returns the strategy for the pair. Unimplemented pairs, including
// the declared but unimplemented languages, fail with
// [domain.ErrPrecondition].
func (r *Registry) Lookup(lang domain.Language, capability domain.Capability) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.strategies[key{language: lang, capability: capability}]
	if !ok {
		return nil, fmt.Errorf("%w: no %s strategy for language %q", domain.ErrPrecondition, capability, lang)
	}
	return s, nil
}

// ForFile resolves the language from the file extension, then looks up the
// strategy.
func (r *Registry) ForFile(path string, capability domain.Capability) (Strategy, error) {
	lang, ok := domain.LanguageForPath(path)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported file %q", domain.ErrPrecondition, path)
	}
	return r.Lookup(lang, capability)
}

// Strategies returns all registered strategies ordered by name.
func (r *Registry) Strategies() []Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Strategy, 0, len(r.strategies))
	for _, s := range r.strategies {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name() != result[j].Name() {
			return result[i].Name() < result[j].Name()
		}
		return result[i].Capability() < result[j].Capability()
	})
	return result
}

// FindByName returns the first strategy with the given name, or nil.
func (r *Registry) FindByName(name string) Strategy {
	for _, s := range r.Strategies() {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

// Clear removes all registered strategies.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies = make(map[key]Strategy)
}
