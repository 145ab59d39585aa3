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


// Package relevance ranks documents for a query by blending three signals:
// the store's lexical substring-density score, cosine similarity between
// query and document embeddings, and the learned per-document boost from
// recorded clicks and feedback.
//
// Vector scoring is strictly optional. The corpus is small enough that
// substring density alone gives usable precision, so when no embedder is
// configured, the provider is down, or a document was never embedded, the
// engine silently degrades to lexical-only ranking instead of failing
// closed.
package relevance
