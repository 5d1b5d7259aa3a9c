package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces chat completions from a system prompt and a user message.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// Complete generates a completion for the user message under the given
	// system prompt. Returns the assistant's text response.
	Complete(ctx context.Context, system, user string) (string, error)
}

// Transcriber converts audio or video content into text.
// Implementations must be thread-safe for concurrent use.
type Transcriber interface {
	// Transcribe produces a text transcription of the given media bytes.
	// The mediaType is the MIME type of the data (e.g. "audio/mpeg").
	Transcribe(ctx context.Context, data []byte, mediaType string) (string, error)
}

// Translator translates text into a target language.
// Implementations must be thread-safe for concurrent use.
type Translator interface {
	// Translate returns the text translated into the target language.
	// The language is a human-readable name (e.g. "Spanish").
	Translate(ctx context.Context, text, language string) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle
// management. A provider creates and manages the embedding, generation,
// transcription, and translation services, ensuring they share configuration
// and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Generator returns the chat completion service.
	// The returned Generator is safe for concurrent use.
	Generator() Generator

	// Transcriber returns the media transcription service.
	// The returned Transcriber is safe for concurrent use.
	Transcriber() Transcriber

	// Translator returns the text translation service.
	// The returned Translator is safe for concurrent use.
	Translator() Translator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
