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


// Package learning observes user interaction with search results and
// maintains a bounded per-document ranking boost from clicks and explicit
// 1-5 feedback.
//
// Boost semantics are deliberately simple and monotone: clicks yield
// min(0.5, clicks*0.02), feedback moves the boost by +-0.1 per event based
// on the rolling average rating, and everything is clamped to [-0.3, 0.5].
// Once a document has been interacted with its score record is never
// deleted, only adjusted.
//
// State persists to events.json and scores.json, rewritten wholesale on
// flush. Search events flush every 10th event; clicks and feedback flush
// immediately.
package learning
