package retrieval

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/quarrylabs/corpus/ai/mock"
	"github.com/quarrylabs/corpus/core"
	"github.com/quarrylabs/corpus/storage"
	"github.com/quarrylabs/corpus/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type retrieverFixture struct {
	retriever *Retriever
	sources   storage.SourceRepository
	chunks    storage.ChunkRepository
	embedder  *mock.MockEmbedder
}

func newRetrieverFixture(t *testing.T) *retrieverFixture {
	t.Helper()

	sources, chunks, conv, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		conv.Close()
		chunks.Close()
		sources.Close()
		backend.Close()
	})

	embedder := mock.NewMockEmbedder()
	retriever, err := NewRetriever(sources, chunks, embedder)
	require.NoError(t, err)

	return &retrieverFixture{
		retriever: retriever,
		sources:   sources,
		chunks:    chunks,
		embedder:  embedder,
	}
}

func (f *retrieverFixture) addSource(t *testing.T, source *core.Source) *core.Source {
	t.Helper()
	added, err := f.sources.AddSources(context.Background(), source)
	require.NoError(t, err)
	return added[0]
}

func TestDocumentScopeReturnsStoredTextVerbatim(t *testing.T) {
	f := newRetrieverFixture(t)
	ctx := context.Background()

	doc := f.addSource(t, &core.Source{Kind: core.SourceKindDocument, Title: "doc", Text: "ALPHA"})

	// Unrelated chunks for the same id must never shadow the direct fetch.
	err := f.chunks.UpsertChunks(ctx, &core.Chunk{
		Kind: core.SourceKindDocument, SourceId: doc.Id, Index: 0,
		Text: "unrelated chunk text", Vector: []float32{1, 0},
	})
	require.NoError(t, err)

	f.embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		t.Fatal("similarity search must not run for a document scope")
		return nil, nil
	}

	result, err := f.retriever.Retrieve(ctx, "anything", &Scope{Kind: core.SourceKindDocument, SourceId: doc.Id})
	require.NoError(t, err)
	assert.Equal(t, "ALPHA", result.Context)
	assert.Zero(t, result.Ranking)
}

func TestDocumentScopeMissingSourceReturnsEmpty(t *testing.T) {
	f := newRetrieverFixture(t)

	result, err := f.retriever.Retrieve(context.Background(), "q", &Scope{Kind: core.SourceKindDocument, SourceId: 999})
	require.NoError(t, err)
	assert.Empty(t, result.Context)
}

func TestWebsiteScopeConcatenatesPages(t *testing.T) {
	f := newRetrieverFixture(t)
	ctx := context.Background()

	site := f.addSource(t, &core.Source{Kind: core.SourceKindWebsite, Title: "example.com", URL: "http://example.com/"})
	f.addSource(t, &core.Source{
		Kind: core.SourceKindPage, Title: "Home", URL: "http://example.com/",
		ParentId: site.Id, Text: "homepage content",
	})
	f.addSource(t, &core.Source{
		Kind: core.SourceKindPage, Title: "About", URL: "http://example.com/about",
		ParentId: site.Id, Text: "about content",
	})

	result, err := f.retriever.Retrieve(ctx, "q", &Scope{Kind: core.SourceKindWebsite, SourceId: site.Id})
	require.NoError(t, err)

	assert.Contains(t, result.Context, "Page: Home\nURL: http://example.com/\n\nContent:\nhomepage content")
	assert.Contains(t, result.Context, "Page: About")
	assert.Contains(t, result.Context, "\n\n---\n\n")
}

func TestWebsiteScopeHonorsPageLimit(t *testing.T) {
	f := newRetrieverFixture(t)
	ctx := context.Background()

	site := f.addSource(t, &core.Source{Kind: core.SourceKindWebsite, Title: "big", URL: "http://big.com/"})
	for i := 0; i < 15; i++ {
		f.addSource(t, &core.Source{
			Kind: core.SourceKindPage, Title: "Page", URL: "http://big.com/p",
			ParentId: site.Id, Text: "content",
		})
	}

	result, err := f.retriever.Retrieve(ctx, "q", &Scope{Kind: core.SourceKindWebsite, SourceId: site.Id})
	require.NoError(t, err)

	assert.Equal(t, DefaultPageLimit, strings.Count(result.Context, "Page: "))
}

func TestWebsiteScopeWithoutPagesReturnsEmpty(t *testing.T) {
	f := newRetrieverFixture(t)

	site := f.addSource(t, &core.Source{Kind: core.SourceKindWebsite, Title: "empty", URL: "http://empty.com/"})

	result, err := f.retriever.Retrieve(context.Background(), "q", &Scope{Kind: core.SourceKindWebsite, SourceId: site.Id})
	require.NoError(t, err)
	assert.Empty(t, result.Context)
}

func TestMediaScopeReturnsTranscriptionAndTranslation(t *testing.T) {
	f := newRetrieverFixture(t)

	media := f.addSource(t, &core.Source{
		Kind: core.SourceKindMedia, Title: "talk.mp3",
		Text: "the transcription", Translation: "la transcription", Language: "French",
	})

	result, err := f.retriever.Retrieve(context.Background(), "q", &Scope{Kind: core.SourceKindMedia, SourceId: media.Id})
	require.NoError(t, err)
	assert.Equal(t, "Transcription:\nthe transcription\n\nTranslation (French):\nla transcription", result.Context)
}

func TestMediaScopeWithoutTranslation(t *testing.T) {
	f := newRetrieverFixture(t)

	media := f.addSource(t, &core.Source{
		Kind: core.SourceKindMedia, Title: "talk.mp3", Text: "only transcription",
	})

	result, err := f.retriever.Retrieve(context.Background(), "q", &Scope{Kind: core.SourceKindMedia, SourceId: media.Id})
	require.NoError(t, err)
	assert.Equal(t, "Transcription:\nonly transcription", result.Context)
}

func TestUnscopedRetrievalRanksBySimilarity(t *testing.T) {
	f := newRetrieverFixture(t)
	ctx := context.Background()

	require.NoError(t, f.chunks.UpsertChunks(ctx,
		&core.Chunk{Kind: core.SourceKindDocument, SourceId: 1, Index: 0, Text: "east text", Vector: []float32{1, 0}},
		&core.Chunk{Kind: core.SourceKindDocument, SourceId: 1, Index: 1, Text: "north text", Vector: []float32{0, 1}},
	))

	f.embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0}, nil
	}

	result, err := f.retriever.Retrieve(ctx, "east", nil)
	require.NoError(t, err)

	assert.Equal(t, storage.RankingSimilarity, result.Ranking)
	assert.Equal(t, "east text\n\nnorth text", result.Context)
}

func TestEmbeddingFailureDegradesToRecency(t *testing.T) {
	f := newRetrieverFixture(t)
	ctx := context.Background()

	require.NoError(t, f.chunks.UpsertChunks(ctx,
		&core.Chunk{Kind: core.SourceKindDocument, SourceId: 1, Index: 0, Text: "some text", Vector: []float32{1}},
	))

	f.embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedding service down")
	}

	result, err := f.retriever.Retrieve(ctx, "query", nil)
	require.NoError(t, err)

	assert.Equal(t, storage.RankingRecency, result.Ranking)
	assert.Equal(t, "some text", result.Context)
}

func TestUnscopedRetrievalWithNoContentReturnsEmpty(t *testing.T) {
	f := newRetrieverFixture(t)

	result, err := f.retriever.Retrieve(context.Background(), "anything", nil)
	require.NoError(t, err)
	assert.Empty(t, result.Context)
}

func TestScopedChunkSearchFiltersByScope(t *testing.T) {
	f := newRetrieverFixture(t)
	ctx := context.Background()

	require.NoError(t, f.chunks.UpsertChunks(ctx,
		&core.Chunk{Kind: core.SourceKindPage, SourceId: 7, Index: 0, Text: "page seven", Vector: []float32{1, 0}},
		&core.Chunk{Kind: core.SourceKindPage, SourceId: 8, Index: 0, Text: "page eight", Vector: []float32{1, 0}},
	))

	f.embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0}, nil
	}

	// Page scopes have no direct-fetch branch; they filter the chunk search.
	result, err := f.retriever.Retrieve(ctx, "q", &Scope{Kind: core.SourceKindPage, SourceId: 7})
	require.NoError(t, err)
	assert.Equal(t, "page seven", result.Context)
}
