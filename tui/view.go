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
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/poiesic/songfinder/render"
	"github.com/poiesic/songfinder/session"
)

const (
	appTitle        = "Song Finder"
	historyTimeFmt  = "Jan 02 15:04"
	noSelectionText = "The backend could not pick a single best match. Browse the candidates below."
)

// View renders the app.
func (a App) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(appTitle))
	b.WriteString("\n\n")

	if warning, ok := a.session.HealthWarning(); ok {
		b.WriteString(warningBanner.Render(warning + "\n" + mutedStyle.Render("enter: dismiss")))
		b.WriteString("\n\n")
	}

	b.WriteString(a.input.View())
	b.WriteString("\n")

	if a.session.Loading() {
		b.WriteString(fmt.Sprintf("%s Searching for %q...\n", a.spinner.View(), a.session.Query()))
	} else if msg := a.session.Message(); !msg.Empty() {
		b.WriteString(messageStyle(msg.Kind).Render(msg.Text))
		b.WriteString("\n")
	}

	if a.session.ResultsVisible() {
		b.WriteString("\n")
		b.WriteString(a.renderResults())
	}

	if a.focus == focusHistory {
		b.WriteString("\n")
		b.WriteString(a.renderHistory())
	}

	if confirm := a.session.Confirmation(); confirm.Visible {
		b.WriteString("\n")
		b.WriteString(modalStyle.Render(fmt.Sprintf("%s\n\n%s\n\n%s",
			cardTitle.Render(confirm.Title), confirm.Message, mutedStyle.Render("y: confirm  n: cancel"))))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(a.helpLine()))
	return b.String()
}

func (a App) renderResults() string {
	view := a.session.View()
	var b strings.Builder

	switch {
	case view.Selected != nil:
		b.WriteString(selectedPanel.Render(renderSelected(view.Selected)))
		b.WriteString("\n")
	case view.SelectionUnavailable:
		b.WriteString(placeholderPanel.Render(noSelectionText))
		b.WriteString("\n")
	}

	if view.Reasoning != "" {
		b.WriteString(cardTitle.Render("Why this song: "))
		b.WriteString(view.Reasoning)
		b.WriteString("\n")
	}
	if view.EnhancedQuery != "" {
		b.WriteString(mutedStyle.Render("Interpreted as: " + view.EnhancedQuery))
		b.WriteString("\n")
	}

	if a.session.FeedbackOpen() {
		b.WriteString(mutedStyle.Render("Was this the right song? l: like  d: dislike"))
		b.WriteString("\n")
	}

	for i, card := range view.Cards {
		b.WriteString("\n")
		b.WriteString(a.renderCard(i, card))
	}
	return b.String()
}

func renderSelected(card *render.Card) string {
	var b strings.Builder
	b.WriteString(selectedBadge.Render("Best match: "))
	b.WriteString(cardTitle.Render(card.Title))
	if card.Artist != "" {
		b.WriteString(" - " + card.Artist)
	}
	if card.HasScore {
		b.WriteString("  " + scoreStyle.Render(render.FormatScore(card.Score)))
	}
	return b.String()
}

func (a App) renderCard(i int, card render.Card) string {
	var b strings.Builder

	marker := "  "
	if a.focus == focusResults && i == a.cursor {
		marker = cursorStyle.Render("> ")
	}
	b.WriteString(marker)
	b.WriteString(cardTitle.Render(fmt.Sprintf("%d. %s", i+1, card.Title)))
	if card.Number != nil {
		b.WriteString(mutedStyle.Render(fmt.Sprintf(" #%d", *card.Number)))
	}
	if card.HasScore {
		b.WriteString("  " + scoreStyle.Render(render.FormatScore(card.Score)))
	}
	if card.Selected {
		b.WriteString("  " + selectedBadge.Render("[selected]"))
	}
	b.WriteString("\n")

	if card.Artist != "" {
		b.WriteString("   " + card.Artist + "\n")
	}
	if meta := tagLine(card); meta != "" {
		b.WriteString("   " + mutedStyle.Render(meta) + "\n")
	}

	text, label, err := a.session.CardText(i)
	if err == nil && text != "" {
		b.WriteString(lipgloss.NewStyle().PaddingLeft(3).Render(text))
		b.WriteString("\n")
	}
	if label != "" {
		b.WriteString("   " + toggleStyle.Render(label) + "\n")
	}
	return b.String()
}

func tagLine(card render.Card) string {
	var parts []string
	if len(card.Themes) > 0 {
		parts = append(parts, "themes: "+strings.Join(card.Themes, ", "))
	}
	if len(card.Mood) > 0 {
		parts = append(parts, "mood: "+strings.Join(card.Mood, ", "))
	}
	return strings.Join(parts, " | ")
}

func (a App) renderHistory() string {
	entries := a.session.History()
	var b strings.Builder
	b.WriteString(cardTitle.Render("Recent searches"))
	b.WriteString("\n")
	if len(entries) == 0 {
		b.WriteString(mutedStyle.Render("  no searches yet"))
		b.WriteString("\n")
		return b.String()
	}
	for i, entry := range entries {
		marker := "  "
		if i == a.historyCursor {
			marker = cursorStyle.Render("> ")
		}
		line := fmt.Sprintf("%s  %s", entry.Timestamp.Local().Format(historyTimeFmt), entry.Query)
		if entry.SelectedTitle != "" {
			line += mutedStyle.Render(" -> " + entry.SelectedTitle)
		}
		b.WriteString(marker + line + "\n")
	}
	return b.String()
}

func (a App) helpLine() string {
	switch {
	case a.session.Confirmation().Visible:
		return "y: confirm • n: cancel"
	case a.focus == focusInput:
		return "enter: search • tab: results • ctrl+c: quit"
	case a.focus == focusHistory:
		return "↑/↓: move • enter: replay • c: clear history • esc: back • q: quit"
	default:
		return "↑/↓: move • enter: expand • l/d: feedback • h: history • /: search • c: clear history • q: quit"
	}
}

// statusLabel is the short form of the session status shown in line mode.
func statusLabel(s session.Status) string {
	return strings.ToUpper(s.String())
}
