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


// Package storage provides the device-local persistence layer for songfinder.
//
// The client persists exactly one thing: the search history sequence. It is
// written as a single value under HistoryKey in a KeyValueStore, so a reader
// never observes a partially written sequence.
//
// # Layout
//
//   - KeyValueStore: the narrow get/set/remove capability, implemented by the
//     badger subpackage
//   - HistoryPersister: loads and saves the whole history sequence
//   - HistoryStore: the HistoryPersister over a KeyValueStore
//
// # Serialization
//
// History entries are encoded with MUS (see HistoryRecordMUS). Each record
// carries the search response as the backend's JSON, so a stored entry
// replays exactly what the backend sent. The encoded sequence is prefixed
// with a format version and followed by a blake2b-64 checksum; data that
// fails any check is rejected with a wrapped ErrSerializationFailed.
//
// # Usage
//
//	store, err := badger.NewStore(dataDir)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	history, err := storage.NewHistoryStore(store)
package storage
