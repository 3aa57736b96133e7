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


// Package history implements the bounded search result cache.
//
// The cache holds at most MaxEntries history entries, newest first. Every
// insert prepends a new entry, even when the same query is already present;
// Lookup returns the front-most match, so an older duplicate is simply
// shadowed until it is evicted by the size bound.
//
// The sequence is loaded from a storage.HistoryPersister when the cache is
// created and written back in full after every change. Missing or unreadable
// persisted data yields an empty cache.
package history
