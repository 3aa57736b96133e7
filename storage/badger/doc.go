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


// Package badger implements storage.KeyValueStore on BadgerDB.
//
// Keys are namespaced under a fixed prefix. Every write runs in its own
// read-write transaction, so a value is replaced atomically.
//
//	store, err := badger.NewStore(dir, logger)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
// Use NewMemoryStore in tests.
package badger
