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

//go:generate go run ../cmd/musgen

import "time"

// HistoryRecord is the persisted form of a core.HistoryEntry.
type HistoryRecord struct {
	Query         string
	Timestamp     time.Time // Millisecond precision on disk
	SelectedTitle string    // Empty when nothing was selected
	Payload       string    // JSON-encoded core.SearchResponse, in the backend's wire format
}
