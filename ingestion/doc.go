// Package ingestion provides pipeline orchestration for content ingestion.
//
// The Pipeline type sequences fetch/extract, raw source persistence,
// chunking, batch embedding, and vector storage for three kinds of content:
//   - Documents: uploaded bytes, text-extracted per media type
//   - Media: audio/video, transcribed and optionally translated
//   - Websites: crawled breadth-first, each page stored as its own source
//
// A source's raw text is always persisted before chunking and embedding, so
// a failure in the later stages is resumable with ReingestSource instead of
// re-fetching. The chunk/embed/store stage is idempotent: re-running it for
// unchanged text yields the same chunk set.
//
// Website pages are processed concurrently through a worker pool. Embedding
// calls are retried with exponential backoff before the stage is failed.
package ingestion
