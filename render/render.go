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


package render

import (
	"slices"
	"unicode/utf8"

	"github.com/poiesic/songfinder/core"
)

const (
	// PreviewLength is the number of characters of lyrics shown on a collapsed card.
	PreviewLength = 150

	// Ellipsis marks a truncated preview.
	Ellipsis = "..."

	// UntitledTitle is shown for candidates the backend sent without a title.
	UntitledTitle = "Untitled"
)

// Card is the renderable form of one candidate.
type Card struct {
	Index    int // Position in the ranked list
	ID       string
	Title    string
	Artist   string
	Number   *int
	Themes   []string
	Mood     []string
	Score    float64
	HasScore bool

	Lyrics      string // Full lyrics text
	Preview     string // Lyrics as shown while collapsed
	NeedsToggle bool   // Whether the full text differs from the preview
	Selected    bool   // Whether this candidate is the backend's pick
}

// HasLyrics reports whether the card has any lyrics text to show.
func (c Card) HasLyrics() bool {
	return c.Lyrics != ""
}

// View is the renderable form of a search response.
type View struct {
	Cards    []Card
	Selected *Card // Nil when the backend made no selection

	// SelectionUnavailable is set when candidates exist but the backend picked none,
	// which signals a degraded ranking service rather than an error.
	SelectionUnavailable bool

	Reasoning     string
	Warning       bool
	Message       string
	EnhancedQuery string
}

// Render builds the view model for a search response.
//
// Render is deterministic and never modifies resp.
func Render(resp *core.SearchResponse) View {
	if resp == nil {
		return View{}
	}

	view := View{
		Cards:         make([]Card, 0, len(resp.Candidates)),
		Reasoning:     resp.Reasoning,
		Warning:       resp.Warning,
		Message:       resp.Message,
		EnhancedQuery: resp.EnhancedQuery,
	}

	selectedIdx := -1
	for i := range resp.Candidates {
		card := newCard(i, &resp.Candidates[i])
		if isSelected(&resp.Candidates[i], resp.Selected) {
			card.Selected = true
			if selectedIdx < 0 {
				selectedIdx = i
			}
		}
		view.Cards = append(view.Cards, card)
	}

	if resp.Selected != nil {
		selected := newCard(selectedIdx, resp.Selected)
		selected.Selected = true
		if !selected.HasScore && selectedIdx >= 0 {
			selected.Score = view.Cards[selectedIdx].Score
			selected.HasScore = view.Cards[selectedIdx].HasScore
		}
		view.Selected = &selected
	} else if len(resp.Candidates) > 0 {
		view.SelectionUnavailable = true
	}

	return view
}

// Preview returns the collapsed form of a lyrics text and whether it was truncated.
func Preview(lyrics string) (string, bool) {
	if utf8.RuneCountInString(lyrics) <= PreviewLength {
		return lyrics, false
	}
	runes := []rune(lyrics)
	return string(runes[:PreviewLength]) + Ellipsis, true
}

func newCard(index int, c *core.Candidate) Card {
	score, hasScore := Score(c)
	preview, truncated := Preview(c.Lyrics)

	title := c.Title
	if title == "" {
		title = UntitledTitle
	}

	var number *int
	if c.Number != nil {
		n := *c.Number
		number = &n
	}

	return Card{
		Index:       index,
		ID:          c.ID,
		Title:       title,
		Artist:      c.Artist,
		Number:      number,
		Themes:      slices.Clone(c.Themes),
		Mood:        slices.Clone(c.Mood),
		Score:       score,
		HasScore:    hasScore,
		Lyrics:      c.Lyrics,
		Preview:     preview,
		NeedsToggle: truncated,
	}
}

// isSelected compares identifiers only; a missing identifier on either side never matches.
func isSelected(c *core.Candidate, selected *core.Candidate) bool {
	return c.HasID() && selected.HasID() && c.ID == selected.ID
}
