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

	"github.com/poiesic/songfinder/core"
)

// KeyValueStore is the narrow device-local persistence capability the client needs.
// Implementations must be safe for concurrent use.
type KeyValueStore interface {
	// Get returns the value stored under key.
	// Returns ErrNotFound if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// Close releases the underlying storage.
	Close() error
}

// HistoryPersister loads and saves the search history sequence as a single unit.
type HistoryPersister interface {
	// LoadHistory returns the persisted entries, newest first.
	// Returns ErrNotFound when nothing has been saved yet, and a wrapped
	// ErrSerializationFailed when the stored data is unreadable.
	LoadHistory(ctx context.Context) ([]core.HistoryEntry, error)

	// SaveHistory replaces the persisted sequence with entries.
	SaveHistory(ctx context.Context, entries []core.HistoryEntry) error

	// RemoveHistory deletes the persisted sequence.
	RemoveHistory(ctx context.Context) error
}
