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


package corpus

import (
	"log/slog"

	"github.com/quarrylabs/corpus/ai"
	"github.com/quarrylabs/corpus/ai/openai"
	"github.com/quarrylabs/corpus/assistant"
	"github.com/quarrylabs/corpus/crawler"
	"github.com/quarrylabs/corpus/ingestion"
	"github.com/quarrylabs/corpus/retrieval"
	"github.com/quarrylabs/corpus/storage"
	"github.com/quarrylabs/corpus/storage/badger"
)

// Database bundles the persistent store and AI services of one corpus and
// hands out the pipeline, retriever, and assistant built on top of them.
type Database struct {
	backend    *badger.Backend
	sourceRepo storage.SourceRepository
	chunkRepo  storage.ChunkRepository
	convRepo   storage.ConversationRepository
	provider   ai.AIProvider
	logger     *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
	inMemory bool
}

// WithAIConfig sets the configuration for the OpenAI-compatible provider.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithAIProvider injects a pre-built AI provider instead of constructing
// the OpenAI-compatible one. Used for testing.
func WithAIProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithInMemoryStorage keeps all data in memory instead of on disk.
func WithInMemoryStorage() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// NewDatabase opens (or creates) a corpus database at filePath.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	sourceRepo, err := badger.NewSourceRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	chunkRepo, err := badger.NewChunkRepository(backend)
	if err != nil {
		sourceRepo.Close()
		backend.Close()
		return nil, err
	}

	convRepo, err := badger.NewConversationRepository(backend)
	if err != nil {
		chunkRepo.Close()
		sourceRepo.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			convRepo.Close()
			chunkRepo.Close()
			sourceRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:    backend,
		sourceRepo: sourceRepo,
		chunkRepo:  chunkRepo,
		convRepo:   convRepo,
		provider:   provider,
		logger:     slog.Default(),
	}, nil
}

// Close releases the AI provider, repositories, and backend.
func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.convRepo.Close(); err != nil {
		db.logger.Error("error closing conversation repository", "err", err)
		return err
	}
	if err := db.chunkRepo.Close(); err != nil {
		db.logger.Error("error closing chunk repository", "err", err)
		return err
	}
	if err := db.sourceRepo.Close(); err != nil {
		db.logger.Error("error closing source repository", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// SourceRepository returns the source repository.
func (db *Database) SourceRepository() storage.SourceRepository {
	return db.sourceRepo
}

// ChunkRepository returns the chunk repository.
func (db *Database) ChunkRepository() storage.ChunkRepository {
	return db.chunkRepo
}

// ConversationRepository returns the conversation repository.
func (db *Database) ConversationRepository() storage.ConversationRepository {
	return db.convRepo
}

// Provider returns the AI provider.
func (db *Database) Provider() ai.AIProvider {
	return db.provider
}

// NewIngestionPipeline builds an ingestion pipeline over this database. A
// default crawler is wired in unless the options provide one.
func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	c, err := crawler.NewCrawler()
	if err != nil {
		return nil, err
	}

	opts = append([]ingestion.Option{ingestion.WithCrawler(c)}, opts...)
	return ingestion.NewPipeline(db.sourceRepo, db.chunkRepo, db.provider, opts...)
}

// NewRetriever builds a retriever over this database.
func (db *Database) NewRetriever(opts ...retrieval.Option) (*retrieval.Retriever, error) {
	return retrieval.NewRetriever(db.sourceRepo, db.chunkRepo, db.provider.Embedder(), opts...)
}

// NewAssistant builds an assistant over this database.
func (db *Database) NewAssistant(opts ...assistant.Option) (*assistant.Assistant, error) {
	retriever, err := db.NewRetriever()
	if err != nil {
		return nil, err
	}
	return assistant.NewAssistant(retriever, db.provider.Generator(), db.convRepo, opts...)
}
