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
	"bytes"
	"encoding/json"
	"math"
)

// candidateJSON is the wire shape of a candidate.
type candidateJSON struct {
	ID                 string   `json:"id,omitempty"`
	Title              string   `json:"title,omitempty"`
	Artist             string   `json:"artist,omitempty"`
	Number             *int     `json:"number,omitempty"`
	Themes             []string `json:"themes,omitempty"`
	Mood               []string `json:"mood,omitempty"`
	Lyrics             string   `json:"lyrics,omitempty"`
	MatchPercent       *float64 `json:"match_percent,omitempty"`
	HybridScore        *float64 `json:"hybrid_score,omitempty"`
	SimilarityDistance *float64 `json:"similarity_distance,omitempty"`
}

// responseJSON is the wire shape of a search response.
type responseJSON struct {
	Candidates    []Candidate `json:"candidates"`
	Selected      *Candidate  `json:"selected,omitempty"`
	Reasoning     string      `json:"reasoning,omitempty"`
	Warning       bool        `json:"warning,omitempty"`
	Message       string      `json:"message,omitempty"`
	EnhancedQuery string      `json:"enhanced_query,omitempty"`
}

// MarshalJSON encodes the candidate in the backend's wire format.
// Lyrics are written in their canonical string form.
func (c Candidate) MarshalJSON() ([]byte, error) {
	return json.Marshal(candidateJSON{
		ID:                 c.ID,
		Title:              c.Title,
		Artist:             c.Artist,
		Number:             c.Number,
		Themes:             c.Themes,
		Mood:               c.Mood,
		Lyrics:             c.Lyrics,
		MatchPercent:       c.MatchPercent,
		HybridScore:        c.HybridScore,
		SimilarityDistance: c.SimilarityDistance,
	})
}

// UnmarshalJSON decodes a candidate leniently.
//
// Fields of an unexpected type are treated as absent; lyrics, themes and mood
// accept every shape the backend is known to send.
func (c *Candidate) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*c = Candidate{
		ID:                 decodeID(fields["id"]),
		Title:              decodeText(fields["title"]),
		Artist:             decodeText(fields["artist"]),
		Number:             decodeInt(fields["number"]),
		Themes:             decodeStringList(fields["themes"]),
		Mood:               decodeStringList(fields["mood"]),
		Lyrics:             decodeLyrics(fields["lyrics"]),
		MatchPercent:       decodeFloat(fields["match_percent"]),
		HybridScore:        decodeFloat(fields["hybrid_score"]),
		SimilarityDistance: decodeFloat(fields["similarity_distance"]),
	}
	return nil
}

// MarshalJSON encodes the response in the backend's wire format.
func (r SearchResponse) MarshalJSON() ([]byte, error) {
	candidates := r.Candidates
	if candidates == nil {
		candidates = []Candidate{}
	}
	return json.Marshal(responseJSON{
		Candidates:    candidates,
		Selected:      r.Selected,
		Reasoning:     r.Reasoning,
		Warning:       r.Warning,
		Message:       r.Message,
		EnhancedQuery: r.EnhancedQuery,
	})
}

// UnmarshalJSON decodes a search response.
// The candidates field must be an array (or absent); everything else is lenient.
// An empty array decodes to nil Candidates, matching what MarshalJSON writes for nil.
func (r *SearchResponse) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var candidates []Candidate
	if raw, ok := fields["candidates"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &candidates); err != nil {
			return err
		}
		if len(candidates) == 0 {
			candidates = nil
		}
	}

	var selected *Candidate
	if raw, ok := fields["selected"]; ok && !isNull(raw) {
		selected = &Candidate{}
		if err := json.Unmarshal(raw, selected); err != nil {
			selected = nil
		}
	}

	*r = SearchResponse{
		Candidates:    candidates,
		Selected:      selected,
		Reasoning:     decodeText(fields["reasoning"]),
		Warning:       decodeBool(fields["warning"]),
		Message:       decodeText(fields["message"]),
		EnhancedQuery: decodeText(fields["enhanced_query"]),
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeText(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// decodeID accepts string and numeric identifiers; numbers keep their literal text.
func decodeID(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func decodeFloat(raw json.RawMessage) *float64 {
	if isNull(raw) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func decodeInt(raw json.RawMessage) *int {
	f := decodeFloat(raw)
	if f == nil || *f != math.Trunc(*f) || math.Abs(*f) > math.MaxInt32 {
		return nil
	}
	n := int(*f)
	return &n
}

func decodeBool(raw json.RawMessage) bool {
	if isNull(raw) {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false
	}
	return b
}
