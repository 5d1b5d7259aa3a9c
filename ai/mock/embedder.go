package mock

import (
	"context"
	"hash/fnv"

	"github.com/quarrylabs/corpus/core"
)

// mockVectorDim is the dimensionality of the default test vectors.
const mockVectorDim = 384

// MockEmbedder is an ai.Embedder test double. Tests can override behavior
// through the function fields; when they are nil, each text embeds to a
// stable unit vector derived from its hash, so equal inputs always embed
// identically.
type MockEmbedder struct {
	EmbedTextFunc  func(ctx context.Context, text string) ([]float32, error)
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	callCount int
}

// NewMockEmbedder creates a mock embedder. The concrete type is returned so
// tests can reach the function fields and call counter.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

// EmbedText returns a deterministic embedding for the text.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.callCount++
	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}
	return deterministicVector(text), nil
}

// EmbedTexts returns one deterministic embedding per input text.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.callCount++
	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = deterministicVector(text)
	}
	return vectors, nil
}

// CallCount returns how many times either embedding method was called.
func (m *MockEmbedder) CallCount() int {
	return m.callCount
}

// Reset clears the call counter and any injected behavior.
func (m *MockEmbedder) Reset() {
	m.callCount = 0
	m.EmbedTextFunc = nil
	m.EmbedTextsFunc = nil
}

// deterministicVector expands an FNV hash of the text through a linear
// congruential generator and normalizes the result, so similarity math in
// tests operates on genuine unit vectors.
func deterministicVector(text string) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	state := h.Sum32()

	vector := make([]float32, mockVectorDim)
	for i := range vector {
		state = state*1664525 + 1013904223
		vector[i] = float32(state%1000)/999.0 - 0.5
	}
	return core.NormalizeVector(vector)
}
