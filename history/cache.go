// Copyright 2025 Poiesic Systems
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


package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/poiesic/songfinder/core"
	"github.com/poiesic/songfinder/storage"
)

// MaxEntries is the number of searches the cache retains.
const MaxEntries = 10

// Cache is the most-recent-first query cache.
// It is safe for concurrent use, though the client drives it from one goroutine.
type Cache struct {
	mu       sync.RWMutex
	entries  []core.HistoryEntry
	store    storage.HistoryPersister
	capacity int
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache) error

// WithLogger sets the logger for the cache.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) error {
		c.logger = logger
		return nil
	}
}

// WithClock sets the time source used to stamp new entries.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) error {
		if now == nil {
			return errors.New("clock cannot be nil")
		}
		c.now = now
		return nil
	}
}

// WithCapacity overrides MaxEntries.
func WithCapacity(n int) Option {
	return func(c *Cache) error {
		if n <= 0 {
			return fmt.Errorf("capacity must be positive, got %d", n)
		}
		c.capacity = n
		return nil
	}
}

// NewCache creates a cache and loads the persisted sequence from store.
// Missing or corrupt persisted data yields an empty cache.
func NewCache(ctx context.Context, store storage.HistoryPersister, opts ...Option) (*Cache, error) {
	if store == nil {
		return nil, errors.New("history store cannot be nil")
	}
	c := &Cache{
		store:    store,
		capacity: MaxEntries,
		now:      time.Now,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With("component", "history")

	c.load(ctx)
	return c, nil
}

func (c *Cache) load(ctx context.Context) {
	entries, err := c.store.LoadHistory(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		c.logger.Debug("no persisted history")
		return
	case err != nil:
		c.logger.Warn("discarding unreadable history", "err", err)
		return
	}

	valid := make([]core.HistoryEntry, 0, min(len(entries), c.capacity))
	for _, entry := range entries {
		if len(valid) == c.capacity {
			break
		}
		if core.NormalizeQuery(entry.Query) == "" || entry.Result == nil {
			c.logger.Warn("skipping malformed history entry", "query", entry.Query)
			continue
		}
		valid = append(valid, entry)
	}
	c.entries = valid
	c.logger.Debug("loaded history", "entries", len(valid))
}

// Insert prepends a new entry for query and evicts entries beyond the capacity.
//
// When the new sequence cannot be persisted the entry is still kept in memory
// and an error wrapping ErrPersistFailed is returned along with it.
func (c *Cache) Insert(ctx context.Context, query string, resp *core.SearchResponse) (core.HistoryEntry, error) {
	normalized, err := core.ValidateQuery(query)
	if err != nil {
		return core.HistoryEntry{}, err
	}
	if resp == nil {
		return core.HistoryEntry{}, ErrNilResponse
	}

	entry := core.HistoryEntry{
		Query:         normalized,
		Timestamp:     c.now(),
		SelectedTitle: resp.SelectedTitle(),
		Result:        resp,
	}

	c.mu.Lock()
	entries := make([]core.HistoryEntry, 0, c.capacity)
	entries = append(entries, entry)
	entries = append(entries, c.entries...)
	if len(entries) > c.capacity {
		evicted := entries[c.capacity:]
		c.logger.Debug("evicting history entries", "count", len(evicted), "oldest", evicted[len(evicted)-1].Query)
		entries = entries[:c.capacity]
	}
	c.entries = entries
	snapshot := slices.Clone(entries)
	c.mu.Unlock()

	c.logger.Debug("cached search", "query", normalized, "entries", len(snapshot))
	if err := c.store.SaveHistory(ctx, snapshot); err != nil {
		c.logger.Error("failed to persist history", "query", normalized, "err", err)
		return entry, fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}
	return entry, nil
}

// Lookup returns the cached response of the most recent entry for query.
func (c *Cache) Lookup(query string) (*core.SearchResponse, bool) {
	normalized := core.NormalizeQuery(query)
	if normalized == "" {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, entry := range c.entries {
		if entry.Query == normalized {
			return entry.Result, true
		}
	}
	return nil, false
}

// Clear removes every entry from memory and from the store.
// Memory is emptied even when the store cannot be updated.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	cleared := len(c.entries)
	c.entries = nil
	c.mu.Unlock()

	if err := c.store.RemoveHistory(ctx); err != nil {
		c.logger.Error("failed to remove persisted history", "err", err)
		return fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}
	c.logger.Info("history cleared", "entries", cleared)
	return nil
}

// List returns a copy of the entries, newest first.
func (c *Cache) List() []core.HistoryEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.entries)
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Entry returns the entry at index i, where 0 is the newest.
func (c *Cache) Entry(i int) (core.HistoryEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i < 0 || i >= len(c.entries) {
		return core.HistoryEntry{}, fmt.Errorf("%w: %d", ErrEntryOutOfRange, i)
	}
	return c.entries[i], nil
}
