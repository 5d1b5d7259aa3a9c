package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/quarrylabs/corpus/core"
	"github.com/quarrylabs/corpus/storage"
)

func TestSourceBasics(t *testing.T) {
	sourceRepo, chunkRepo, convRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() {
		convRepo.Close()
		chunkRepo.Close()
		sourceRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	source := &core.Source{
		Kind:  core.SourceKindDocument,
		Title: "report.txt",
		Text:  "the extracted text",
	}

	added, err := sourceRepo.AddSources(ctx, source)
	if err != nil {
		t.Fatalf("Failed to add source: %v", err)
	}
	if len(added) != 1 {
		t.Fatalf("Expected 1 source, got %d", len(added))
	}
	if added[0].Id == 0 {
		t.Fatal("Expected non-zero ID")
	}

	retrieved, err := sourceRepo.GetSource(ctx, core.SourceKindDocument, added[0].Id)
	if err != nil {
		t.Fatalf("Failed to get source: %v", err)
	}
	if retrieved.Text != "the extracted text" {
		t.Fatalf("Expected stored text, got %q", retrieved.Text)
	}
}

func TestSourceNotFound(t *testing.T) {
	sourceRepo, chunkRepo, convRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { convRepo.Close(); chunkRepo.Close(); sourceRepo.Close(); backend.Close() }()

	_, err = sourceRepo.GetSource(context.Background(), core.SourceKindDocument, 12345)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestUpdateSourceText(t *testing.T) {
	sourceRepo, chunkRepo, convRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { convRepo.Close(); chunkRepo.Close(); sourceRepo.Close(); backend.Close() }()

	ctx := context.Background()

	added, err := sourceRepo.AddSources(ctx, &core.Source{Kind: core.SourceKindDocument, Title: "a.txt"})
	if err != nil {
		t.Fatalf("Failed to add source: %v", err)
	}
	id := added[0].Id

	if err := sourceRepo.UpdateSourceText(ctx, core.SourceKindDocument, id, "new text"); err != nil {
		t.Fatalf("Failed to update text: %v", err)
	}

	text, err := sourceRepo.GetSourceText(ctx, core.SourceKindDocument, id)
	if err != nil {
		t.Fatalf("Failed to get text: %v", err)
	}
	if text != "new text" {
		t.Fatalf("Expected updated text, got %q", text)
	}

	err = sourceRepo.UpdateSourceText(ctx, core.SourceKindDocument, 99999, "x")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for missing source, got %v", err)
	}
}

func TestGetPagesByWebsite(t *testing.T) {
	sourceRepo, chunkRepo, convRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { convRepo.Close(); chunkRepo.Close(); sourceRepo.Close(); backend.Close() }()

	ctx := context.Background()

	site, err := sourceRepo.AddSources(ctx, &core.Source{Kind: core.SourceKindWebsite, URL: "https://example.com", Title: "Example"})
	if err != nil {
		t.Fatalf("Failed to add website: %v", err)
	}
	siteID := site[0].Id

	pages := []*core.Source{
		{Kind: core.SourceKindPage, ParentId: siteID, URL: "https://example.com/", Title: "Home", Text: "home"},
		{Kind: core.SourceKindPage, ParentId: siteID, URL: "https://example.com/a", Title: "A", Text: "page a"},
		{Kind: core.SourceKindPage, ParentId: siteID, URL: "https://example.com/b", Title: "B", Text: "page b"},
	}
	if _, err := sourceRepo.AddSources(ctx, pages...); err != nil {
		t.Fatalf("Failed to add pages: %v", err)
	}

	got, err := sourceRepo.GetPagesByWebsite(ctx, siteID, 10)
	if err != nil {
		t.Fatalf("Failed to get pages: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 pages, got %d", len(got))
	}
	// Stored order is insertion order
	if got[0].Title != "Home" || got[2].Title != "B" {
		t.Fatalf("Expected pages in crawl order, got %q..%q", got[0].Title, got[2].Title)
	}

	limited, err := sourceRepo.GetPagesByWebsite(ctx, siteID, 2)
	if err != nil {
		t.Fatalf("Failed to get limited pages: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("Expected 2 pages with limit, got %d", len(limited))
	}
}

func TestDeleteSourceCascades(t *testing.T) {
	sourceRepo, chunkRepo, convRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { convRepo.Close(); chunkRepo.Close(); sourceRepo.Close(); backend.Close() }()

	ctx := context.Background()

	added, err := sourceRepo.AddSources(ctx, &core.Source{Kind: core.SourceKindDocument, Title: "doc", Text: "text"})
	if err != nil {
		t.Fatalf("Failed to add source: %v", err)
	}
	id := added[0].Id

	chunks := []*core.Chunk{
		{Kind: core.SourceKindDocument, SourceId: id, Index: 0, Text: "part one", Vector: []float32{1, 0}},
		{Kind: core.SourceKindDocument, SourceId: id, Index: 1, Text: "part two", Vector: []float32{0, 1}},
	}
	if err := chunkRepo.UpsertChunks(ctx, chunks...); err != nil {
		t.Fatalf("Failed to upsert chunks: %v", err)
	}

	if err := sourceRepo.DeleteSource(ctx, core.SourceKindDocument, id); err != nil {
		t.Fatalf("Failed to delete source: %v", err)
	}

	if _, err := sourceRepo.GetSource(ctx, core.SourceKindDocument, id); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected source gone, got %v", err)
	}

	remaining, err := chunkRepo.GetChunks(ctx, core.SourceKindDocument, id)
	if err != nil {
		t.Fatalf("Failed to get chunks: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("Expected cascade to delete chunks, found %d", len(remaining))
	}
}

func TestDeleteWebsiteCascadesToPages(t *testing.T) {
	sourceRepo, chunkRepo, convRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { convRepo.Close(); chunkRepo.Close(); sourceRepo.Close(); backend.Close() }()

	ctx := context.Background()

	site, err := sourceRepo.AddSources(ctx, &core.Source{Kind: core.SourceKindWebsite, URL: "https://example.com"})
	if err != nil {
		t.Fatalf("Failed to add website: %v", err)
	}
	siteID := site[0].Id

	page, err := sourceRepo.AddSources(ctx, &core.Source{
		Kind: core.SourceKindPage, ParentId: siteID, URL: "https://example.com/a", Text: "page",
	})
	if err != nil {
		t.Fatalf("Failed to add page: %v", err)
	}
	pageID := page[0].Id

	chunk := &core.Chunk{Kind: core.SourceKindPage, SourceId: pageID, Index: 0, Text: "page", Vector: []float32{1}}
	if err := chunkRepo.UpsertChunks(ctx, chunk); err != nil {
		t.Fatalf("Failed to upsert chunk: %v", err)
	}

	if err := sourceRepo.DeleteSource(ctx, core.SourceKindWebsite, siteID); err != nil {
		t.Fatalf("Failed to delete website: %v", err)
	}

	if _, err := sourceRepo.GetSource(ctx, core.SourceKindPage, pageID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected page gone, got %v", err)
	}
	remaining, err := chunkRepo.GetChunks(ctx, core.SourceKindPage, pageID)
	if err != nil {
		t.Fatalf("Failed to get chunks: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("Expected page chunks gone, found %d", len(remaining))
	}
}
