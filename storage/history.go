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


package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/songfinder/core"
)

// HistoryKey is the key under which the history sequence is stored.
const HistoryKey = "songSearchHistory"

// HistoryStore persists the history sequence as one value in a KeyValueStore.
type HistoryStore struct {
	kv     KeyValueStore
	key    string
	logger *slog.Logger
}

var _ HistoryPersister = (*HistoryStore)(nil)

// HistoryStoreOption configures a HistoryStore.
type HistoryStoreOption func(*HistoryStore) error

// WithKey overrides the key the sequence is stored under.
func WithKey(key string) HistoryStoreOption {
	return func(s *HistoryStore) error {
		if key == "" {
			return errors.New("history key cannot be empty")
		}
		s.key = key
		return nil
	}
}

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) HistoryStoreOption {
	return func(s *HistoryStore) error {
		s.logger = logger
		return nil
	}
}

// NewHistoryStore creates a HistoryStore backed by kv.
func NewHistoryStore(kv KeyValueStore, opts ...HistoryStoreOption) (*HistoryStore, error) {
	if kv == nil {
		return nil, errors.New("key-value store cannot be nil")
	}
	s := &HistoryStore{
		kv:  kv,
		key: HistoryKey,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "history-store")
	return s, nil
}

// LoadHistory implements HistoryPersister.
func (s *HistoryStore) LoadHistory(ctx context.Context) ([]core.HistoryEntry, error) {
	data, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	entries, err := UnmarshalHistory(data)
	if err != nil {
		s.logger.Warn("stored history is unreadable", "key", s.key, "bytes", len(data), "err", err)
		return nil, err
	}
	s.logger.Debug("loaded history", "entries", len(entries))
	return entries, nil
}

// SaveHistory implements HistoryPersister.
func (s *HistoryStore) SaveHistory(ctx context.Context, entries []core.HistoryEntry) error {
	data, err := MarshalHistory(entries)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	s.logger.Debug("saved history", "entries", len(entries), "bytes", len(data))
	return nil
}

// RemoveHistory implements HistoryPersister.
func (s *HistoryStore) RemoveHistory(ctx context.Context) error {
	if err := s.kv.Remove(ctx, s.key); err != nil {
		return fmt.Errorf("failed to remove history: %w", err)
	}
	return nil
}
