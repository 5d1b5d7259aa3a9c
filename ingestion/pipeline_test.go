package ingestion

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/quarrylabs/corpus/ai/mock"
	"github.com/quarrylabs/corpus/core"
	"github.com/quarrylabs/corpus/storage"
	"github.com/quarrylabs/corpus/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedCrawler returns a canned page list for any start URL.
type fixedCrawler struct {
	pages []*core.CrawledPage
	err   error
}

func (f *fixedCrawler) Crawl(ctx context.Context, startURL string, maxPages int) ([]*core.CrawledPage, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.pages) > maxPages {
		return f.pages[:maxPages], nil
	}
	return f.pages, nil
}

type pipelineFixture struct {
	pipeline *Pipeline
	sources  storage.SourceRepository
	chunks   storage.ChunkRepository
	provider *mock.MockProvider
}

func newPipelineFixture(t *testing.T, opts ...Option) *pipelineFixture {
	t.Helper()

	sources, chunks, conv, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		conv.Close()
		chunks.Close()
		sources.Close()
		backend.Close()
	})

	provider := mock.NewMockProvider().(*mock.MockProvider)

	opts = append([]Option{WithRetry(1, time.Millisecond)}, opts...)
	pipeline, err := NewPipeline(sources, chunks, provider, opts...)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	return &pipelineFixture{
		pipeline: pipeline,
		sources:  sources,
		chunks:   chunks,
		provider: provider,
	}
}

func TestIngestDocument(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	text := strings.Repeat("quarterly report content. ", 100)
	source, err := f.pipeline.IngestDocument(ctx, "report.txt", []byte(text), "text/plain")
	require.NoError(t, err)
	require.NotZero(t, source.Id)
	assert.Equal(t, core.SourceKindDocument, source.Kind)

	storedText, err := f.sources.GetSourceText(ctx, core.SourceKindDocument, source.Id)
	require.NoError(t, err)
	assert.Equal(t, text, storedText)

	chunks, err := f.chunks.GetChunks(ctx, core.SourceKindDocument, source.Id)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
		assert.NotEmpty(t, chunk.Vector)
	}
}

func TestIngestDocumentEmptyContent(t *testing.T) {
	f := newPipelineFixture(t)

	_, err := f.pipeline.IngestDocument(context.Background(), "empty.txt", []byte{}, "text/plain")
	assert.ErrorIs(t, err, core.ErrEmptyContent)
}

func TestIngestDocumentUnsupportedType(t *testing.T) {
	f := newPipelineFixture(t)

	_, err := f.pipeline.IngestDocument(context.Background(), "archive.zip", []byte{0x50, 0x4b}, "application/zip")
	assert.ErrorIs(t, err, core.ErrUnsupportedMediaType)
}

func TestIngestMediaWithTranslation(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	f.provider.GetMockTranscriber().TranscribeFunc = func(ctx context.Context, data []byte, mediaType string) (string, error) {
		return "hello from the recording", nil
	}

	source, err := f.pipeline.IngestMedia(ctx, "interview.mp3", []byte{1, 2, 3}, "audio/mpeg", "Spanish")
	require.NoError(t, err)

	stored, err := f.sources.GetSource(ctx, core.SourceKindMedia, source.Id)
	require.NoError(t, err)
	assert.Equal(t, "hello from the recording", stored.Text)
	assert.Equal(t, "[Spanish] hello from the recording", stored.Translation)
	assert.Equal(t, "Spanish", stored.Language)

	// Transcription and translation share one contiguous chunk sequence.
	chunks, err := f.chunks.GetChunks(ctx, core.SourceKindMedia, source.Id)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Text, "hello from the recording")
	assert.Contains(t, chunks[0].Text, "[Spanish]")
}

func TestIngestMediaWithoutTranslation(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	source, err := f.pipeline.IngestMedia(ctx, "talk.wav", []byte{1}, "audio/wav", "")
	require.NoError(t, err)

	stored, err := f.sources.GetSource(ctx, core.SourceKindMedia, source.Id)
	require.NoError(t, err)
	assert.Empty(t, stored.Translation)
	assert.Empty(t, stored.Language)
}

func TestIngestDocumentDedupesIdenticalContent(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	text := strings.Repeat("same bytes. ", 150)
	first, err := f.pipeline.IngestDocument(ctx, "report.txt", []byte(text), "text/plain")
	require.NoError(t, err)

	second, err := f.pipeline.IngestDocument(ctx, "report-copy.txt", []byte(text), "text/plain")
	require.NoError(t, err)

	// Identical content lands on one content-derived source id.
	assert.Equal(t, first.Id, second.Id)
	assert.Equal(t, core.IDFromContent(text), first.Id)

	chunks, err := f.chunks.GetChunks(ctx, core.SourceKindDocument, first.Id)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
	}
}

func TestIngestMediaDedupesIdenticalPayload(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	payload := []byte{0x01, 0x02, 0x03}
	first, err := f.pipeline.IngestMedia(ctx, "talk.wav", payload, "audio/wav", "")
	require.NoError(t, err)

	second, err := f.pipeline.IngestMedia(ctx, "talk-again.wav", payload, "audio/wav", "")
	require.NoError(t, err)

	assert.Equal(t, first.Id, second.Id)
	assert.Equal(t, core.IDFromContent(string(payload)), first.Id)
}

func TestIndexWebsite(t *testing.T) {
	crawler := &fixedCrawler{pages: []*core.CrawledPage{
		{URL: "http://example.com/", Title: "Home", Content: "welcome to the homepage"},
		{URL: "http://example.com/about", Title: "About", Content: "all about this site"},
	}}
	f := newPipelineFixture(t, WithCrawler(crawler))
	ctx := context.Background()

	website, pages, err := f.pipeline.IndexWebsite(ctx, "http://example.com/", 10)
	require.NoError(t, err)
	require.NotZero(t, website.Id)
	assert.Equal(t, "Home", website.Title)
	require.Len(t, pages, 2)

	stored, err := f.sources.GetPagesByWebsite(ctx, website.Id, 10)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "Home", stored[0].Title)
	assert.Equal(t, "About", stored[1].Title)

	for _, page := range pages {
		chunks, err := f.chunks.GetChunks(ctx, core.SourceKindPage, page.Id)
		require.NoError(t, err)
		assert.NotEmpty(t, chunks, "page %s has no chunks", page.URL)
	}
}

func TestIndexWebsiteTitleFallsBackToHostname(t *testing.T) {
	crawler := &fixedCrawler{pages: []*core.CrawledPage{
		{URL: "http://example.com/", Title: "http://example.com/", Content: "untitled page"},
	}}
	f := newPipelineFixture(t, WithCrawler(crawler))

	website, _, err := f.pipeline.IndexWebsite(context.Background(), "http://example.com/", 10)
	require.NoError(t, err)
	assert.Equal(t, "example.com", website.Title)
}

func TestIndexWebsiteRequiresCrawler(t *testing.T) {
	f := newPipelineFixture(t)

	_, _, err := f.pipeline.IndexWebsite(context.Background(), "http://example.com/", 5)
	assert.ErrorIs(t, err, ErrCrawlerRequired)
}

func TestReingestIsIdempotent(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	text := strings.Repeat("stable content. ", 200)
	source, err := f.pipeline.IngestDocument(ctx, "doc.txt", []byte(text), "text/plain")
	require.NoError(t, err)

	first, err := f.chunks.GetChunks(ctx, core.SourceKindDocument, source.Id)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	require.NoError(t, f.pipeline.ReingestSource(ctx, core.SourceKindDocument, source.Id))

	second, err := f.chunks.GetChunks(ctx, core.SourceKindDocument, source.Id)
	require.NoError(t, err)
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Index, second[i].Index)
		assert.Equal(t, first[i].Text, second[i].Text)
	}
}

func TestIngestionResumableAfterEmbeddingFailure(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	f.provider.GetMockEmbedder().EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("embedding service down")
	}

	source, err := f.pipeline.IngestDocument(ctx, "doc.txt", []byte("some document text"), "text/plain")
	require.Error(t, err)
	require.NotNil(t, source, "source must be persisted before the failing stage")

	// The raw text survived the failure.
	storedText, err := f.sources.GetSourceText(ctx, core.SourceKindDocument, source.Id)
	require.NoError(t, err)
	assert.Equal(t, "some document text", storedText)

	chunks, err := f.chunks.GetChunks(ctx, core.SourceKindDocument, source.Id)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	// Retry the chunk/embed/store stage without re-extracting.
	f.provider.GetMockEmbedder().EmbedTextsFunc = nil
	require.NoError(t, f.pipeline.ReingestSource(ctx, core.SourceKindDocument, source.Id))

	chunks, err = f.chunks.GetChunks(ctx, core.SourceKindDocument, source.Id)
	require.NoError(t, err)
	assert.NotEmpty(t, chunks)
}

func TestReingestTrimsStaleChunks(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	long := strings.Repeat("a lot of original content. ", 200)
	source, err := f.pipeline.IngestDocument(ctx, "doc.txt", []byte(long), "text/plain")
	require.NoError(t, err)

	before, err := f.chunks.GetChunks(ctx, core.SourceKindDocument, source.Id)
	require.NoError(t, err)
	require.Greater(t, len(before), 1)

	require.NoError(t, f.sources.UpdateSourceText(ctx, core.SourceKindDocument, source.Id, "now much shorter"))
	require.NoError(t, f.pipeline.ReingestSource(ctx, core.SourceKindDocument, source.Id))

	after, err := f.chunks.GetChunks(ctx, core.SourceKindDocument, source.Id)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, "now much shorter", after[0].Text)
}
