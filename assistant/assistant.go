// Copyright 2025 Quarry Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package assistant

import (
	"context"
	"log/slog"
	"time"

	"github.com/quarrylabs/corpus/ai"
	"github.com/quarrylabs/corpus/core"
	"github.com/quarrylabs/corpus/retrieval"
	"github.com/quarrylabs/corpus/storage"
)

// Retriever assembles a context string for a query.
// Satisfied by *retrieval.Retriever.
type Retriever interface {
	Retrieve(ctx context.Context, query string, scope *retrieval.Scope) (*retrieval.Result, error)
}

// Answer is the outcome of one assistant turn.
type Answer struct {
	// Text is the generated response.
	Text string

	// ContextUsed reports whether retrieval produced any context.
	ContextUsed bool

	// Ranking is the chunk ranking mode of the retrieval, zero when the
	// context came from a direct fetch or retrieval found nothing.
	Ranking storage.RankingMode
}

// Assistant answers questions over the ingested corpus: it retrieves
// context, builds a system instruction, calls the generation service, and
// persists the exchange as conversation turns.
type Assistant struct {
	retriever    Retriever
	generator    ai.Generator
	conversation storage.ConversationRepository
	logger       *slog.Logger
}

// Option configures an Assistant.
type Option func(*Assistant) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assistant) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// NewAssistant creates a new assistant.
func NewAssistant(retriever Retriever, generator ai.Generator, conversation storage.ConversationRepository, opts ...Option) (*Assistant, error) {
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}
	if conversation == nil {
		return nil, ErrConversationRepositoryRequired
	}

	a := &Assistant{
		retriever:    retriever,
		generator:    generator,
		conversation: conversation,
		logger:       slog.Default().With("component", "assistant"),
	}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	return a, nil
}

// Ask answers a question, optionally scoped to one source. The user query
// and the generated answer are persisted as conversation turns. A retrieval
// failure degrades to a contextless answer rather than failing the turn.
func (a *Assistant) Ask(ctx context.Context, query string, scope *retrieval.Scope) (*Answer, error) {
	if query == "" {
		return nil, core.ErrInvalidInput
	}

	retrieved := &retrieval.Result{}
	result, err := a.retriever.Retrieve(ctx, query, scope)
	if err != nil {
		// A generation call with no context is still a valid answer.
		a.logger.Warn("retrieval failed, answering without context", "err", err)
	} else {
		retrieved = result
	}

	text, err := a.generator.Complete(ctx, BuildSystemPrompt(retrieved.Context), query)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	turns := []*core.Turn{
		{Speaker: core.SpeakerHuman, Contents: query, Timestamp: now},
		{Speaker: core.SpeakerAssistant, Contents: text, Timestamp: now.Add(time.Microsecond)},
	}
	if _, err := a.conversation.AddTurns(ctx, turns...); err != nil {
		return nil, err
	}

	a.logger.Info("answered question", "context_used", retrieved.Context != "", "ranking", retrieved.Ranking)

	return &Answer{
		Text:        text,
		ContextUsed: retrieved.Context != "",
		Ranking:     retrieved.Ranking,
	}, nil
}

// History returns the most recent conversation turns, newest first.
func (a *Assistant) History(ctx context.Context, limit int) ([]*core.Turn, error) {
	return a.conversation.GetRecentTurns(ctx, limit)
}
