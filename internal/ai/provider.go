package ai

import "context"

// Options tunes a single generation call.
type Options struct {
	Temperature float32 // 0 means provider default
	MaxTokens   int32   // 0 means provider default
	JSONMode    bool    // Ask the backend for a JSON object response
}

// Result is the normalized output of any provider backend.
type Result struct {
	Text    string   // Generated text
	Sources []string // Grounding/source URLs when the backend reports them
}

// Provider is the uniform interface every AI backend implements.
type Provider interface {
	// Generate performs a single completion call. Implementations make one
	// attempt only; retry policy belongs to the orchestrator.
	Generate(ctx context.Context, prompt string, opts Options) (Result, error)

	// Name returns the provider's stable identifier (e.g. "gemini").
	Name() string
}

// Descriptor pairs a provider with its priority. Lower priority is tried
// first.
type Descriptor struct {
	Provider Provider
	Priority int
}

// Registry holds the configured provider set. It is built once at startup
// and injected into the orchestrator; it has no mutable global state.
type Registry struct {
	descriptors []Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a provider with the given priority.
func (r *Registry) Register(p Provider, priority int) {
	r.descriptors = append(r.descriptors, Descriptor{Provider: p, Priority: priority})
}

// Descriptors returns the registered providers in insertion order.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, len(r.descriptors))
	copy(out, r.descriptors)
	return out
}

// Names returns the registered provider names in insertion order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		names = append(names, d.Provider.Name())
	}
	return names
}
