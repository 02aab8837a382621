// Package phonemizer manages external phonemization engine instances.
// Engine construction is expensive and an instance is not reentrant, so
// handles are cached per (language, worker) pair and owned by the Pool.
package phonemizer

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Supported language codes. The set is closed because the marker
// restoration tables and cleaner pipelines are defined per language.
const (
	LangEnglishUS = "en-us"
	LangPolish    = "pl"
	LangHungarian = "hu"
)

// ErrUnknownLanguage is returned by Pool.Get for a language code the pool
// was not configured with.
var ErrUnknownLanguage = errors.New("unknown phonemizer language")

// Backend is a live phonemization engine instance. Calls against one
// backend must be sequential; the Pool guarantees two workers never share
// an instance.
type Backend interface {
	// Phonemize converts a single utterance to an IPA phoneme string.
	// The result is whitespace-trimmed; whitespace-only input yields "".
	Phonemize(ctx context.Context, text string) (string, error)
	Close() error
}

// Factory constructs a backend for one language.
type Factory func(language string) (Backend, error)

type poolKey struct {
	language string
	worker   string
}

// Pool lazily constructs and caches backends keyed by (language, workerKey).
// Entries are never evicted during normal operation: the cache is bounded
// by worker count, not request count, and engine startup dominates.
type Pool struct {
	mu        sync.Mutex
	factory   Factory
	languages map[string]struct{}
	backends  map[poolKey]Backend
}

// NewPool creates a pool restricted to the given language codes.
func NewPool(factory Factory, languages ...string) *Pool {
	langs := make(map[string]struct{}, len(languages))
	for _, l := range languages {
		langs[l] = struct{}{}
	}
	return &Pool{
		factory:   factory,
		languages: langs,
		backends:  make(map[poolKey]Backend),
	}
}

// Languages returns the supported language codes for the default pipelines.
func Languages() []string {
	return []string{LangEnglishUS, LangPolish, LangHungarian}
}

// Get returns the cached backend for (language, workerKey), constructing it
// on first use. workerKey must distinguish concurrent execution contexts.
func (p *Pool) Get(language, workerKey string) (Backend, error) {
	if _, ok := p.languages[language]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, language)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	key := poolKey{language: language, worker: workerKey}
	if b, ok := p.backends[key]; ok {
		return b, nil
	}

	b, err := p.factory(language)
	if err != nil {
		return nil, fmt.Errorf("phonemizer backend for %s: %w", language, err)
	}
	p.backends[key] = b

	return b, nil
}

// Size returns the number of live backend handles.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.backends)
}

// Close tears down every cached backend. The pool must not be used after.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for key, b := range p.backends {
		if err := b.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close backend %s/%s: %w", key.language, key.worker, err))
		}
	}
	p.backends = make(map[poolKey]Backend)

	return errors.Join(errs...)
}
