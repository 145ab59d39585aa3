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


// Package collectors gathers AI and labor-market coverage from Swiss news
// feeds (NZZ, Tages-Anzeiger, SRF, Handelszeitung). Feed items pass a
// keyword relevance filter before they are turned into markdown ingest
// documents; a BadgerDB cache remembers article IDs across runs so repeated
// collections only surface new material.
package collectors
