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

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateIngestDocument validates an IngestDocument at the ingestion
// boundary. Only the known metadata fields are checked; Extra is an open
// extension map and passes through unvalidated.
//
// Validation rules:
//   - ID and Content must not be empty
//   - Type must be text, markdown, or json
//   - Metadata.Date, when set, must be an ISO date (YYYY-MM-DD)
func ValidateIngestDocument(doc *IngestDocument) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidIngestDocument)
	}

	if err := validate.Struct(doc); err != nil {
		for _, fe := range err.(validator.ValidationErrors) {
			switch fe.Field() {
			case "ID":
				return fmt.Errorf("%w: %w", ErrInvalidIngestDocument, ErrEmptyID)
			case "Content":
				return fmt.Errorf("%w: %w", ErrInvalidIngestDocument, ErrEmptyContent)
			case "Type":
				return fmt.Errorf("%w: %w", ErrInvalidIngestDocument, ErrInvalidDocumentType)
			}
		}
		return fmt.Errorf("%w: %v", ErrInvalidIngestDocument, err)
	}

	if doc.Metadata.Date != "" {
		if _, err := time.Parse("2006-01-02", doc.Metadata.Date); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidIngestDocument, ErrInvalidDate)
		}
	}

	return nil
}
