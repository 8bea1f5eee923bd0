package mock

import (
	"context"
	"sync"
)

// MockGenerator is a test double for ai.Generator.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	// If nil, Generate returns the configured reply.
	GenerateFunc func(ctx context.Context, prompt string) (string, error)

	reply     string
	mu        sync.Mutex
	callCount int
	prompts   []string
}

// NewMockGenerator creates a generator that always answers reply.
func NewMockGenerator(reply string) *MockGenerator {
	return &MockGenerator{reply: reply}
}

// WithGenerateFunc sets GenerateFunc and returns m for chaining.
func (m *MockGenerator) WithGenerateFunc(fn func(ctx context.Context, prompt string) (string, error)) *MockGenerator {
	m.GenerateFunc = fn
	return m
}

// Generate records prompt and returns the scripted reply.
func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return m.reply, nil
}

// CallCount returns the number of Generate calls.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastPrompt returns the most recent prompt, or "" if none was sent.
func (m *MockGenerator) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

// Reset clears recorded prompts and any injected behavior.
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.prompts = nil
	m.GenerateFunc = nil
}
