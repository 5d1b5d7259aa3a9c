package mock

import (
	"context"
	"fmt"
)

// MockTranscriber is a test double for ai.Transcriber.
// It allows custom behavior injection via function fields.
type MockTranscriber struct {
	// TranscribeFunc is called by Transcribe if set.
	// If nil, uses default canned behavior.
	TranscribeFunc func(ctx context.Context, data []byte, mediaType string) (string, error)

	callCount int
}

// NewMockTranscriber creates a mock transcriber with default canned behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockTranscriber() *MockTranscriber {
	return &MockTranscriber{}
}

// Transcribe returns a canned transcription describing the input.
func (m *MockTranscriber) Transcribe(ctx context.Context, data []byte, mediaType string) (string, error) {
	m.callCount++

	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, data, mediaType)
	}

	return fmt.Sprintf("mock transcription of %d bytes of %s", len(data), mediaType), nil
}

// CallCount returns the number of times Transcribe was called.
func (m *MockTranscriber) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockTranscriber) Reset() {
	m.callCount = 0
	m.TranscribeFunc = nil
}
