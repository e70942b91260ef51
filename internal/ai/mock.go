package ai

import (
	"context"
	"sync"
)

// MockProvider is a canned provider for tests and offline development.
type MockProvider struct {
	name string
	text string
	err  error

	mu    sync.Mutex
	calls int
}

// NewMockProvider creates a provider that always returns the given text.
func NewMockProvider(name, text string) *MockProvider {
	return &MockProvider{name: name, text: text}
}

// NewFailingMockProvider creates a provider that always fails with err.
func NewFailingMockProvider(name string, err error) *MockProvider {
	return &MockProvider{name: name, err: err}
}

// Name returns the provider identifier.
func (m *MockProvider) Name() string { return m.name }

// Generate returns the canned text or error.
func (m *MockProvider) Generate(ctx context.Context, prompt string, opts Options) (Result, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.err != nil {
		return Result{}, m.err
	}
	return Result{Text: m.text}, nil
}

// Calls reports how many times Generate was invoked.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
