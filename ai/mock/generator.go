package mock

import (
	"context"
	"fmt"
)

// MockGenerator is a test double for ai.Generator and ai.Translator.
// It allows custom behavior injection via function fields.
type MockGenerator struct {
	// CompleteFunc is called by Complete if set.
	// If nil, uses default canned behavior.
	CompleteFunc func(ctx context.Context, system, user string) (string, error)

	// TranslateFunc is called by Translate if set.
	// If nil, uses default canned behavior.
	TranslateFunc func(ctx context.Context, text, language string) (string, error)

	callCount int
}

// NewMockGenerator creates a mock generator with default canned behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Complete returns a canned response echoing the user message.
func (m *MockGenerator) Complete(ctx context.Context, system, user string) (string, error) {
	m.callCount++

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, system, user)
	}

	return fmt.Sprintf("mock response to: %s", user), nil
}

// Translate returns a canned translation tagged with the target language.
func (m *MockGenerator) Translate(ctx context.Context, text, language string) (string, error) {
	m.callCount++

	if m.TranslateFunc != nil {
		return m.TranslateFunc(ctx, text, language)
	}

	return fmt.Sprintf("[%s] %s", language, text), nil
}

// CallCount returns the number of times any method was called.
func (m *MockGenerator) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockGenerator) Reset() {
	m.callCount = 0
	m.CompleteFunc = nil
	m.TranslateFunc = nil
}
