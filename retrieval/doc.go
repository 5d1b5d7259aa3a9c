// Package retrieval assembles context strings for generation calls.
//
// Retrieval follows a strict scope precedence: a scope naming a document
// returns its full stored text, a website scope returns its stored pages
// with title/URL headers, a media scope returns the transcription and
// translation. Only the open-ended case (no scope, or a scope without a
// direct-fetch branch) embeds the query and runs a similarity search over
// the vector index.
//
// Every branch that finds nothing returns an empty context rather than an
// error; prompt assembly treats an empty context as "no retrieved context".
// Chunk-search results carry the ranking mode used, so callers can tell a
// similarity-ranked result from a recency-degraded one.
package retrieval
