// Copyright 2025 Poiesic Systems
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

// Package ai provides abstractions for the AI services used by logscope.
//
// Two services are needed: an Embedder that turns a question or a log
// record into a vector, and a Generator that answers a question from a
// prompt assembled out of retrieved logs. An AIProvider bundles both so
// they can share configuration and be closed together.
//
// # Implementation Packages
//
//   - ai/openai: any OpenAI-compatible API (OpenAI, vLLM, LocalAI, Ollama's /v1)
//   - ai/ollama: the native Ollama API
//   - ai/mock: test doubles with deterministic vectors and scripted answers
//
// Public constructors return interface types. Mock constructors return
// concrete types so tests can inspect call counts and prompts.
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithHost("http://localhost:11434"))
//	provider, err := openai.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vec, err := provider.Embedder().EmbedText(ctx, "which pumps reported a fault?")
//	answer, err := provider.Generator().Generate(ctx, prompt)
package ai
