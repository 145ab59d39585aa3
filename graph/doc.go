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


// Package graph builds the entity and impact layer on top of the document
// store. Entities (industries, job roles, skills, locations, AI
// technologies) are extracted by pattern matching against the refdata
// tables, never by an AI model; impact scores combine automation potential,
// mention counts, trend direction, skills gap and adoption rate from the
// same tables into a 1-10 composite.
//
// Both layers are written back into the store as plain documents
// (entity:<type>:<name>, impact:entity:<type>:<name>) connected by typed
// relations, so the search surface and MCP tools can reach them without a
// separate graph database.
package graph
