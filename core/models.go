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


package core

import (
	"strings"
	"time"
)

// Candidate is one ranked song returned by the search backend.
// At most one of the three score fields is expected to be populated.
type Candidate struct {
	ID     string // Opaque backend identifier; empty when the backend sent none
	Title  string
	Artist string
	Number *int     // Collection index, when known
	Themes []string
	Mood   []string
	Lyrics string // Canonical lyrics text, resolved once when the payload is decoded

	MatchPercent       *float64 // 0-100, relative to the best match in the set
	HybridScore        *float64 // 0.0-1.0
	SimilarityDistance *float64 // 0-2, lower is closer
}

// HasID reports whether the backend supplied an identifier for the candidate.
func (c *Candidate) HasID() bool {
	return c != nil && c.ID != ""
}

// SearchResponse is the full payload of a successful search.
type SearchResponse struct {
	Candidates    []Candidate // Ranking order as returned by the backend
	Selected      *Candidate  // Nil when the backend could not pick a winner
	Reasoning     string
	Warning       bool
	Message       string
	EnhancedQuery string
}

// SelectedTitle returns the title of the selected candidate, or "" when there is none.
func (r *SearchResponse) SelectedTitle() string {
	if r == nil || r.Selected == nil {
		return ""
	}
	return r.Selected.Title
}

// HistoryEntry is a cached search: the query and the response it produced.
type HistoryEntry struct {
	Query         string
	Timestamp     time.Time
	SelectedTitle string // Denormalized for quick display; empty when nothing was selected
	Result        *SearchResponse
}

// Feedback is the user's verdict on a selected song.
type Feedback string

const (
	FeedbackLike    Feedback = "like"
	FeedbackDislike Feedback = "dislike"
)

// FeedbackRequest is the body sent to the feedback endpoint.
type FeedbackRequest struct {
	Query          string   `json:"query"`
	SelectedSongID string   `json:"selected_song_id"`
	Feedback       Feedback `json:"feedback"`
}

// NormalizeQuery returns the canonical cache key for a user query.
// Two queries are the same iff their normalized forms are identical.
func NormalizeQuery(query string) string {
	return strings.TrimSpace(query)
}
