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


package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/poiesic/songfinder/core"
	"github.com/poiesic/songfinder/render"
	"github.com/poiesic/songfinder/session"
)

// errWriter remembers the first write error so callers can check once.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

// WriteResult writes the session's current status and results as plain text.
// With full set every card shows its complete lyrics regardless of its
// expansion state.
func WriteResult(w io.Writer, s *session.Session, full bool) error {
	ew := &errWriter{w: w}

	ew.printf("[%s]", statusLabel(s.Status()))
	if msg := s.Message(); !msg.Empty() {
		ew.printf(" %s", msg.Text)
	}
	ew.printf("\n")

	if !s.ResultsVisible() {
		return ew.err
	}
	view := s.View()

	switch {
	case view.Selected != nil:
		ew.printf("\nBest match: %s\n", cardHeading(*view.Selected))
	case view.SelectionUnavailable:
		ew.printf("\n%s\n", noSelectionText)
	}
	if view.Reasoning != "" {
		ew.printf("Why this song: %s\n", view.Reasoning)
	}
	if view.EnhancedQuery != "" {
		ew.printf("Interpreted as: %s\n", view.EnhancedQuery)
	}

	for i, card := range view.Cards {
		ew.printf("\n%d. %s\n", i+1, cardHeading(card))
		if meta := tagLine(card); meta != "" {
			ew.printf("   %s\n", meta)
		}
		text, label := card.Lyrics, ""
		if !full {
			if t, l, err := s.CardText(i); err == nil {
				text, label = t, l
			}
		}
		if text != "" {
			ew.printf("%s\n", indent(text, "   "))
		}
		if label != "" {
			ew.printf("   (%s: more %d)\n", label, i+1)
		}
	}
	return ew.err
}

// WriteHistory writes the history entries, newest first, numbered from 1.
func WriteHistory(w io.Writer, entries []core.HistoryEntry) error {
	ew := &errWriter{w: w}
	if len(entries) == 0 {
		ew.printf("No searches yet\n")
		return ew.err
	}
	for i, entry := range entries {
		ew.printf("%2d. %s  %s", i+1, entry.Timestamp.Local().Format(historyTimeFmt), entry.Query)
		if entry.SelectedTitle != "" {
			ew.printf(" -> %s", entry.SelectedTitle)
		}
		ew.printf("\n")
	}
	return ew.err
}

func cardHeading(card render.Card) string {
	var b strings.Builder
	b.WriteString(card.Title)
	if card.Number != nil {
		fmt.Fprintf(&b, " #%d", *card.Number)
	}
	if card.Artist != "" {
		b.WriteString(" - " + card.Artist)
	}
	if card.HasScore {
		b.WriteString(" (" + render.FormatScore(card.Score) + ")")
	}
	if card.Selected {
		b.WriteString(" [selected]")
	}
	return b.String()
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
