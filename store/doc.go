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


// Package store implements the document store for the labor-market knowledge
// base: keyed storage of documents with optional embeddings, a directed typed
// relation graph between document IDs, and lexical substring-density search.
//
// State lives in memory behind a single mutex and is persisted wholesale to a
// pair of JSON files (documents.json, relations.json) on flush. Flushing is
// best-effort: disk failures are logged and the store keeps serving from
// memory. There is no append-only log and no schema versioning; the files are
// rewritten completely on every flush.
//
// Absent documents are reported through boolean returns, never errors.
package store
