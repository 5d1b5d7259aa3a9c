package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// SourceKind identifies the type of an ingested content source.
type SourceKind int

const (
	// SourceKindDocument represents an uploaded document (text, PDF, DOCX).
	SourceKindDocument SourceKind = iota + 1
	// SourceKindMedia represents transcribed (and optionally translated) media.
	SourceKindMedia
	// SourceKindWebsite represents an indexed website as a whole.
	SourceKindWebsite
	// SourceKindPage represents a single crawled page of a website.
	SourceKindPage
)

// String returns the storage name of the kind.
func (k SourceKind) String() string {
	switch k {
	case SourceKindDocument:
		return "document"
	case SourceKindMedia:
		return "media"
	case SourceKindWebsite:
		return "website"
	case SourceKindPage:
		return "website_page"
	default:
		return "unknown"
	}
}

// Source is an ingested unit of content. It is a tagged variant: the Kind
// field determines which of the optional fields are meaningful.
//
//   - Document: Title (filename), Text (extracted content)
//   - Media: Title (filename), Text (transcription), Translation, Language
//   - Website: Title, URL
//   - Page: Title, URL, ParentId (owning website), Text (page content)
type Source struct {
	Id          ID
	Kind        SourceKind
	Title       string
	URL         string
	ParentId    ID // owning website for pages, zero otherwise
	Text        string
	Translation string
	Language    string // target language of Translation
	InsertedAt  time.Time
	UpdatedAt   time.Time
}

// CrawledPage is the transient product of one crawled URL.
// It is consumed by the ingestion pipeline and never stored as-is.
type CrawledPage struct {
	URL     string
	Title   string
	Content string
}

// Chunk is a bounded, overlapping slice of a source's extracted text.
// It is the unit of embedding and retrieval. Chunks are keyed by
// (Kind, SourceId, Index); Index is contiguous from 0 per source.
type Chunk struct {
	Kind       SourceKind
	SourceId   ID
	Index      int
	Text       string
	Vector     []float32
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// ScoredChunk is a chunk paired with its retrieval relevance score.
// Score is a cosine similarity for similarity-ranked results and zero
// for recency-ranked results.
type ScoredChunk struct {
	Chunk *Chunk
	Score float32
}

// Speaker identifies the author of a conversation turn.
type Speaker int

const (
	// SpeakerHuman represents the human user.
	SpeakerHuman Speaker = iota + 1
	// SpeakerAssistant represents the generated answer.
	SpeakerAssistant
)

// String returns the lowercase name of the speaker.
func (s Speaker) String() string {
	switch s {
	case SpeakerHuman:
		return "human"
	case SpeakerAssistant:
		return "assistant"
	default:
		return "unknown"
	}
}

// Turn is a single persisted message in a conversation.
type Turn struct {
	Id         ID
	Speaker    Speaker
	Contents   string
	Timestamp  time.Time // when the message was produced
	InsertedAt time.Time // when the record was inserted into the database
	UpdatedAt  time.Time // when the record was last updated
}
