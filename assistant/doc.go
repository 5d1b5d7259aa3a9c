// Package assistant sequences retrieve -> build-prompt -> generate -> persist
// for one question over the ingested corpus.
//
// The system instruction embeds the retrieved context when there is one and
// instructs the model to prefer it, falling back to general knowledge
// otherwise. Both the user query and the generated answer are stored as
// conversation turns. A failed retrieval never fails the turn; it degrades
// to a contextless answer.
package assistant
