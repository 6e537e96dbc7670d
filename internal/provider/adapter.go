package provider

import (
	"context"
	"sort"

	"github.com/audioscribe/backend/internal/chunk"
)

// Adapter is the common interface for all transcription backends.
// Implementations are stateless across calls; the only side effect of
// Transcribe is the outbound provider request.
type Adapter interface {
	// Transcribe submits one audio segment and returns the provider's
	// raw result. May block on network I/O.
	Transcribe(ctx context.Context, seg chunk.Segment, opts Options) (*Result, error)
	// Name returns the provider identifier ("deepgram", "whisper", ...)
	Name() string
	// MaxPayloadBytes is the largest segment the provider accepts.
	MaxPayloadBytes() int64
	// Supports probes whether the provider can honor an option.
	Supports(opt Option) bool
}

// Registry maps provider identifiers to adapter instances. It is built
// once at startup and read-only afterwards.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry builds a registry from the given adapters, keyed by Name.
func NewRegistry(adapters ...Adapter) *Registry {
	m := make(map[string]Adapter, len(adapters))
	for _, a := range adapters {
		m[a.Name()] = a
	}
	return &Registry{adapters: m}
}

// Get returns the adapter for name, or UnknownProviderError when no
// such provider was registered.
func (r *Registry) Get(name string) (Adapter, error) {
	a, ok := r.adapters[name]
	if !ok {
		return nil, &UnknownProviderError{Name: name, Available: r.Names()}
	}
	return a, nil
}

// Names lists the registered provider identifiers, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
