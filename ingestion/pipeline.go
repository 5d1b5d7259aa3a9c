package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/quarrylabs/corpus/ai"
	"github.com/quarrylabs/corpus/chunker"
	"github.com/quarrylabs/corpus/core"
	"github.com/quarrylabs/corpus/extract"
	"github.com/quarrylabs/corpus/storage"
)

// Crawler produces the pages of one website. Satisfied by *crawler.Crawler.
type Crawler interface {
	Crawl(ctx context.Context, startURL string, maxPages int) ([]*core.CrawledPage, error)
}

// DefaultMaxPages is the page limit of a website crawl when the caller
// passes no explicit limit.
const DefaultMaxPages = 5

// Pipeline orchestrates content ingestion: fetch/extract, persist the raw
// source text, then chunk, embed, and store vectors.
//
// The source record is persisted before any chunking or embedding, so a
// failure in the later stages leaves a retryable source behind: call
// ReingestSource to redo the chunk/embed/store stage without re-fetching.
type Pipeline struct {
	sources        storage.SourceRepository
	chunks         storage.ChunkRepository
	provider       ai.AIProvider
	crawler        Crawler
	pagePool       *ants.Pool
	chunkSize      int
	chunkOverlap   int
	maxRetries     int
	retryBaseDelay time.Duration
	logger         *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithCrawler sets the website crawler.
// Required for IndexWebsite; the other ingestion paths work without one.
func WithCrawler(c Crawler) Option {
	return func(p *Pipeline) error {
		if c == nil {
			return ErrCrawlerRequired
		}
		p.crawler = c
		return nil
	}
}

// WithPoolSize sets the worker pool size for concurrent page processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pagePool != nil {
			p.pagePool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pagePool = pool
		return nil
	}
}

// WithChunkWindow sets the chunk window size and overlap in runes.
// Default is 1000/200.
func WithChunkWindow(size, overlap int) Option {
	return func(p *Pipeline) error {
		if overlap < 0 || size <= overlap {
			return fmt.Errorf("%w: chunk window %d/%d", core.ErrInvalidInput, size, overlap)
		}
		p.chunkSize = size
		p.chunkOverlap = overlap
		return nil
	}
}

// WithRetry sets the retry policy for embedding calls.
// Default is 3 attempts with a 500ms base delay.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		p.maxRetries = maxAttempts
		p.retryBaseDelay = baseDelay
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	sources storage.SourceRepository,
	chunks storage.ChunkRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if sources == nil {
		return nil, ErrSourceRepositoryRequired
	}
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pagePool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		sources:        sources,
		chunks:         chunks,
		provider:       provider,
		pagePool:       pagePool,
		chunkSize:      chunker.DefaultSize,
		chunkOverlap:   chunker.DefaultOverlap,
		maxRetries:     3,
		retryBaseDelay: 500 * time.Millisecond,
		logger:         slog.Default().With("component", "ingestion"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pagePool != nil {
		p.pagePool.Release()
	}
}

// IngestDocument extracts text from an uploaded document, persists it as a
// document source, and chunks/embeds/stores its content.
func (p *Pipeline) IngestDocument(ctx context.Context, title string, data []byte, mediaType string) (*core.Source, error) {
	text, err := extract.Extract(data, mediaType)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, fmt.Errorf("%w: document %q", core.ErrEmptyContent, title)
	}

	// Content-derived IDs make re-ingesting the same document land on the
	// same source instead of accumulating duplicates.
	source := &core.Source{
		Id:    core.IDFromContent(text),
		Kind:  core.SourceKindDocument,
		Title: title,
		Text:  text,
	}

	added, err := p.sources.AddSources(ctx, source)
	if err != nil {
		return nil, err
	}
	source = added[0]

	p.logger.Info("ingested document", "id", source.Id, "title", title, "text_length", len(text))

	if err := p.processSource(ctx, source.Kind, source.Id, text); err != nil {
		return source, err
	}
	return source, nil
}

// IngestMedia transcribes a media payload, optionally translates the
// transcription, persists both as a media source, and chunks/embeds/stores
// the combined text.
func (p *Pipeline) IngestMedia(ctx context.Context, title string, data []byte, mediaType, targetLanguage string) (*core.Source, error) {
	transcription, err := p.provider.Transcriber().Transcribe(ctx, data, mediaType)
	if err != nil {
		return nil, err
	}
	if transcription == "" {
		return nil, fmt.Errorf("%w: media %q produced no transcription", core.ErrEmptyContent, title)
	}

	var translation string
	if targetLanguage != "" {
		translation, err = p.provider.Translator().Translate(ctx, transcription, targetLanguage)
		if err != nil {
			return nil, err
		}
	}

	// The ID is derived from the raw payload, not the transcription, so the
	// same file dedupes even when the transcriber is not deterministic.
	source := &core.Source{
		Id:          core.IDFromContent(string(data)),
		Kind:        core.SourceKindMedia,
		Title:       title,
		Text:        transcription,
		Translation: translation,
		Language:    targetLanguage,
	}

	added, err := p.sources.AddSources(ctx, source)
	if err != nil {
		return nil, err
	}
	source = added[0]

	p.logger.Info("ingested media", "id", source.Id, "title", title,
		"transcription_length", len(transcription), "translated", translation != "")

	// Transcription and translation are chunked as one combined sequence so
	// the source's chunk indices stay contiguous.
	combined := transcription
	if translation != "" {
		combined += "\n\n" + translation
	}

	if err := p.processSource(ctx, source.Kind, source.Id, combined); err != nil {
		return source, err
	}
	return source, nil
}

// IndexWebsite crawls a website breadth-first, persists the site and its
// pages as sources, and chunks/embeds/stores every page. Pages are processed
// concurrently through the worker pool. Returns the website source and the
// page sources that were stored.
func (p *Pipeline) IndexWebsite(ctx context.Context, startURL string, maxPages int) (*core.Source, []*core.Source, error) {
	if p.crawler == nil {
		return nil, nil, ErrCrawlerRequired
	}
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	crawled, err := p.crawler.Crawl(ctx, startURL, maxPages)
	if err != nil {
		return nil, nil, err
	}

	parsed, err := url.Parse(startURL)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", core.ErrInvalidInput, err)
	}

	// Prefer the first crawled page's title; fall back to the hostname when
	// the crawler could only echo the URL back.
	title := parsed.Hostname()
	if len(crawled) > 0 && crawled[0].Title != "" && crawled[0].Title != crawled[0].URL {
		title = crawled[0].Title
	}

	website := &core.Source{
		Kind:  core.SourceKindWebsite,
		Title: title,
		URL:   startURL,
	}
	added, err := p.sources.AddSources(ctx, website)
	if err != nil {
		return nil, nil, err
	}
	website = added[0]

	pages := make([]*core.Source, 0, len(crawled))
	for _, cp := range crawled {
		pages = append(pages, &core.Source{
			Kind:     core.SourceKindPage,
			Title:    cp.Title,
			URL:      cp.URL,
			ParentId: website.Id,
			Text:     cp.Content,
		})
	}
	if len(pages) > 0 {
		if pages, err = p.sources.AddSources(ctx, pages...); err != nil {
			return website, nil, err
		}
	}

	p.logger.Info("indexed website", "id", website.Id, "url", startURL, "pages", len(pages))

	// Pages are persisted; chunk and embed them concurrently. A page whose
	// embedding fails stays retryable via ReingestSource.
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		pageErrs []error
	)
	for _, page := range pages {
		wg.Add(1)
		submitErr := p.pagePool.Submit(func() {
			defer wg.Done()
			if procErr := p.processSource(ctx, page.Kind, page.Id, page.Text); procErr != nil {
				mu.Lock()
				pageErrs = append(pageErrs, fmt.Errorf("page %d (%s): %w", page.Id, page.URL, procErr))
				mu.Unlock()
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			pageErrs = append(pageErrs, submitErr)
			mu.Unlock()
		}
	}
	wg.Wait()

	if len(pageErrs) > 0 {
		return website, pages, errors.Join(pageErrs...)
	}
	return website, pages, nil
}

// ReingestSource redoes the chunk/embed/store stage for an already persisted
// source using its stored text. Used to resume an ingestion whose embedding
// stage failed, or to refresh chunks after a source's text was updated.
func (p *Pipeline) ReingestSource(ctx context.Context, kind core.SourceKind, id core.ID) error {
	source, err := p.sources.GetSource(ctx, kind, id)
	if err != nil {
		return err
	}

	text := source.Text
	if kind == core.SourceKindMedia && source.Translation != "" {
		text += "\n\n" + source.Translation
	}

	return p.processSource(ctx, kind, id, text)
}

// processSource runs the chunk -> embed -> store stage for one source.
// Upserts are keyed by (kind, id, index) and stale tail chunks are trimmed,
// so re-running the stage with unchanged text is idempotent.
func (p *Pipeline) processSource(ctx context.Context, kind core.SourceKind, id core.ID, text string) error {
	windows, err := chunker.Chunk(text, p.chunkSize, p.chunkOverlap)
	if err != nil {
		return err
	}

	if len(windows) == 0 {
		p.logger.Debug("source has no chunkable text", "kind", kind, "id", id)
		return p.chunks.DeleteChunks(ctx, kind, id)
	}

	var vectors [][]float32
	err = RetryWithBackoff(ctx, func() error {
		var embedErr error
		vectors, embedErr = p.provider.Embedder().EmbedTexts(ctx, windows)
		return embedErr
	}, p.maxRetries, p.retryBaseDelay)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", p.maxRetries, err)
	}

	if len(vectors) != len(windows) {
		return fmt.Errorf("%w: expected %d vectors, got %d", core.ErrEmbeddingFailure, len(windows), len(vectors))
	}

	chunks := make([]*core.Chunk, len(windows))
	for i, window := range windows {
		chunks[i] = &core.Chunk{
			Kind:     kind,
			SourceId: id,
			Index:    i,
			Text:     window,
			Vector:   core.NormalizeVector(vectors[i]),
		}
	}

	if err := p.chunks.UpsertChunks(ctx, chunks...); err != nil {
		return err
	}

	// Trim chunks beyond the new count in case the source shrank.
	return p.chunks.DeleteChunksFrom(ctx, kind, id, len(chunks))
}
