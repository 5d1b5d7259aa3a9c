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


// Package openai provides production implementations of the ai interfaces
// using OpenAI-compatible APIs.
//
// Embeddings and chat completions go through langchaingo, which works with
// OpenAI itself as well as local OpenAI-compatible servers (Ollama, LocalAI,
// vLLM). Audio transcription talks to the /audio/transcriptions endpoint
// directly because langchaingo has no audio surface.
//
// All constructors accept an *ai.Config and return interface types. The usual
// entry point is NewProvider, which builds every service from one config:
//
//	provider, err := openai.NewProvider(ai.NewConfig(
//	    ai.WithHost("http://localhost:11434"),
//	))
package openai
