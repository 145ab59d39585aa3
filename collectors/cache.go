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


package collectors

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

const seenArticlePrefix = "seen:"

// seenEntry is the JSON value stored per collected article. Plain JSON keeps
// the cache inspectable with badger's CLI tooling.
type seenEntry struct {
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	Link        string    `json:"link"`
	CollectedAt time.Time `json:"collectedAt"`
}

// Cache is a BadgerDB-backed record of already-collected article IDs.
type Cache struct {
	db     *badger.DB
	logger *slog.Logger
}

// badgerLoggerAdapter adapts slog.Logger to the badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// OpenCache opens the article cache at the given path, creating the
// directory if needed. An empty path opens an in-memory cache, useful for
// one-off runs and tests.
func OpenCache(path string) (*Cache, error) {
	logger := slog.Default().With("component", "collector-cache")

	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0755); err != nil {
			return nil, fmt.Errorf("cannot create cache directory: %w", err)
		}
		opts = badger.DefaultOptions(path)
	}
	opts.Logger = &badgerLoggerAdapter{logger: logger}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("cannot open article cache: %w", err)
	}

	return &Cache{db: db, logger: logger}, nil
}

// Seen reports whether an article ID has been collected before.
func (c *Cache) Seen(articleID string) bool {
	err := c.db.View(func(tx *badger.Txn) error {
		_, err := tx.Get([]byte(seenArticlePrefix + articleID))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false
	}
	if err != nil {
		c.logger.Warn("cache lookup failed", "id", articleID, "err", err)
		return false
	}
	return true
}

// MarkSeen records an article so later runs skip it. Failures are logged;
// the worst case is collecting the same article twice.
func (c *Cache) MarkSeen(article Article) {
	entry := seenEntry{
		Title:       article.Title,
		Source:      article.Source,
		Link:        article.Link,
		CollectedAt: time.Now().UTC(),
	}
	value, err := json.Marshal(entry)
	if err != nil {
		c.logger.Warn("cannot marshal cache entry", "id", article.ID, "err", err)
		return
	}

	err = c.db.Update(func(tx *badger.Txn) error {
		return tx.Set([]byte(seenArticlePrefix+article.ID), value)
	})
	if err != nil {
		c.logger.Warn("cannot record article in cache", "id", article.ID, "err", err)
	}
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
