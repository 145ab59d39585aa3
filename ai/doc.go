// Copyright 2025 Helvetic Systems
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


// Package ai defines the embedding abstraction used by ingestion, the
// relevance engine and the re-embedding pass.
//
// The Embedder interface is the only contract the rest of the codebase
// depends on. Two implementations exist:
//
//   - ai/openai: production implementation for OpenAI-compatible embedding
//     APIs (OpenAI, Ollama, LocalAI, vLLM)
//   - ai/mock: deterministic test double with error injection
//
// Embedding is pure and stateless: the same text yields the same vector for
// a given model, and the provider keeps no local cache. Calls may fail or
// rate-limit; RetryWithBackoff is the shared retry helper for callers that
// want to ride out transient provider errors. A batch call has no
// partial-success contract: one failed input fails the whole batch, and
// partial tolerance belongs to the caller.
package ai
