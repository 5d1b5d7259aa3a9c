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


// Package ai provides abstractions for the AI services used in Corpus.
//
// This package defines interfaces for AI operations including text embeddings,
// chat completion, media transcription, and translation. It follows the
// dependency inversion principle, allowing the core domain and business logic
// to depend on abstractions rather than concrete implementations.
//
// # Design Principles
//
// The package is designed around a small set of single-purpose interfaces:
//
//   - Embedder: Generates vector embeddings from text
//   - Generator: Produces chat completions from system/user prompts
//   - Transcriber: Converts audio and video into text
//   - Translator: Translates text into a target language
//   - AIProvider: Aggregates the services for convenient initialization
//
// # Implementation Packages
//
// The ai package includes two implementation sub-packages:
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// Public constructors in ai/openai return interface types to enforce
// abstraction. Test utility constructors in ai/mock return concrete types to
// enable behavior injection and call-count assertions.
//
// # Usage Example
//
//	config := ai.NewConfig(
//	    ai.WithHost("http://localhost:11434/v1"),
//	    ai.WithEmbeddingModel("text-embedding-3-small"),
//	)
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "Hello world")
//	answer, err := provider.Generator().Complete(ctx, systemPrompt, question)
package ai
