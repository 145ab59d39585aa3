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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidIngestDocument indicates an IngestDocument failed validation.
	ErrInvalidIngestDocument = errors.New("invalid ingest document")

	// ErrEmptyID indicates the ID field is empty.
	ErrEmptyID = errors.New("document id cannot be empty")

	// ErrEmptyContent indicates the Content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidDocumentType indicates an unsupported document type.
	ErrInvalidDocumentType = errors.New("document type must be text, markdown, or json")

	// ErrInvalidDate indicates a metadata date that is not an ISO date.
	ErrInvalidDate = errors.New("metadata date must be YYYY-MM-DD")
)
