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
	"encoding/hex"
	"fmt"

	"github.com/go-crypt/x/blake2b"
)

// ContentID generates a deterministic document ID from text content using
// BLAKE2b hashing, so identical content always maps to the same ID.
// The prefix names the source family (e.g. "news", "bfs").
func ContentID(prefix, text string) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return fmt.Sprintf("%s-%s", prefix, hex.EncodeToString(sum))
}

// ChunkID derives the ID for the nth chunk of a source document.
func ChunkID(sourceID string, index int) string {
	return fmt.Sprintf("%s-chunk-%d", sourceID, index)
}
