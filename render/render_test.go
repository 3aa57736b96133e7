package render

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/poiesic/songfinder/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_SelectedCandidate(t *testing.T) {
	resp := &core.SearchResponse{
		Candidates: []core.Candidate{
			{ID: "1", Title: "Song A", SimilarityDistance: ptr(0.4)},
		},
		Selected: &core.Candidate{ID: "1", Title: "Song A"},
	}

	view := Render(resp)

	require.Len(t, view.Cards, 1)
	card := view.Cards[0]
	assert.True(t, card.HasScore)
	assert.InDelta(t, 80.0, card.Score, 1e-9)
	assert.Equal(t, "80.0%", FormatScore(card.Score))
	assert.True(t, card.Selected)

	require.NotNil(t, view.Selected)
	assert.Equal(t, "Song A", view.Selected.Title)
	assert.True(t, view.Selected.HasScore, "selected panel should borrow the candidate score")
	assert.InDelta(t, 80.0, view.Selected.Score, 1e-9)
	assert.False(t, view.SelectionUnavailable)
}

func TestRender_SelectionMarking(t *testing.T) {
	tests := []struct {
		name         string
		candidates   []core.Candidate
		selected     *core.Candidate
		wantSelected []bool
	}{
		{
			name:         "matching id",
			candidates:   []core.Candidate{{ID: "1"}, {ID: "2"}},
			selected:     &core.Candidate{ID: "2"},
			wantSelected: []bool{false, true},
		},
		{
			name:         "selected without id",
			candidates:   []core.Candidate{{ID: "1"}, {ID: ""}},
			selected:     &core.Candidate{Title: "x"},
			wantSelected: []bool{false, false},
		},
		{
			name:         "candidate without id",
			candidates:   []core.Candidate{{Title: "a"}, {ID: "2"}},
			selected:     &core.Candidate{ID: "3"},
			wantSelected: []bool{false, false},
		},
		{
			name:         "no selection",
			candidates:   []core.Candidate{{ID: "1"}},
			selected:     nil,
			wantSelected: []bool{false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := Render(&core.SearchResponse{Candidates: tt.candidates, Selected: tt.selected})
			require.Len(t, view.Cards, len(tt.wantSelected))
			for i, want := range tt.wantSelected {
				assert.Equal(t, want, view.Cards[i].Selected, "card %d", i)
			}
		})
	}
}

func TestRender_DegradedSelection(t *testing.T) {
	view := Render(&core.SearchResponse{
		Candidates: []core.Candidate{{ID: "1", Title: "Song A"}},
		Message:    "ranking unavailable",
		Warning:    true,
	})

	assert.Nil(t, view.Selected)
	assert.True(t, view.SelectionUnavailable)
	assert.True(t, view.Warning)
	assert.Equal(t, "ranking unavailable", view.Message)
}

func TestRender_EmptyResponse(t *testing.T) {
	view := Render(&core.SearchResponse{Message: "nothing found"})

	assert.Empty(t, view.Cards)
	assert.Nil(t, view.Selected)
	assert.False(t, view.SelectionUnavailable)
	assert.Equal(t, "nothing found", view.Message)

	assert.Equal(t, View{}, Render(nil))
}

func TestRender_PreservesOrderAndMetadata(t *testing.T) {
	number := 17
	resp := &core.SearchResponse{
		Candidates: []core.Candidate{
			{ID: "b", Title: "Second", HybridScore: ptr(0.2)},
			{ID: "a", Title: "", Artist: "Band", Number: &number, Themes: []string{"sea"}, Mood: []string{"calm"}},
		},
		Reasoning:     "explained",
		EnhancedQuery: "better query",
	}

	view := Render(resp)

	require.Len(t, view.Cards, 2)
	assert.Equal(t, 0, view.Cards[0].Index)
	assert.Equal(t, "Second", view.Cards[0].Title)
	assert.Equal(t, 1, view.Cards[1].Index)
	assert.Equal(t, UntitledTitle, view.Cards[1].Title)
	assert.Equal(t, "Band", view.Cards[1].Artist)
	require.NotNil(t, view.Cards[1].Number)
	assert.Equal(t, 17, *view.Cards[1].Number)
	assert.Equal(t, []string{"sea"}, view.Cards[1].Themes)
	assert.False(t, view.Cards[1].HasScore)
	assert.Equal(t, "explained", view.Reasoning)
	assert.Equal(t, "better query", view.EnhancedQuery)
}

func TestRender_DoesNotMutateInput(t *testing.T) {
	number := 3
	resp := &core.SearchResponse{
		Candidates: []core.Candidate{
			{ID: "1", Title: "", Number: &number, Themes: []string{"sea"}, Lyrics: strings.Repeat("a", 300)},
		},
		Selected: &core.Candidate{ID: "1"},
	}

	view := Render(resp)
	view.Cards[0].Themes[0] = "changed"
	*view.Cards[0].Number = 99

	assert.Equal(t, "", resp.Candidates[0].Title)
	assert.Equal(t, "sea", resp.Candidates[0].Themes[0])
	assert.Equal(t, 3, *resp.Candidates[0].Number)
	assert.Equal(t, 300, len(resp.Candidates[0].Lyrics))
}

func TestRender_Deterministic(t *testing.T) {
	resp := &core.SearchResponse{
		Candidates: []core.Candidate{
			{ID: "1", Title: "Song A", SimilarityDistance: ptr(0.4), Lyrics: strings.Repeat("ля ", 80)},
			{ID: "2", Title: "Song B", MatchPercent: ptr(64)},
		},
		Selected:  &core.Candidate{ID: "2", Title: "Song B"},
		Reasoning: "why",
	}

	assert.Equal(t, Render(resp), Render(resp))
}

func TestPreview(t *testing.T) {
	t.Run("short text is kept", func(t *testing.T) {
		preview, truncated := Preview("short lyrics")
		assert.Equal(t, "short lyrics", preview)
		assert.False(t, truncated)
	})

	t.Run("exactly the limit is kept", func(t *testing.T) {
		text := strings.Repeat("x", PreviewLength)
		preview, truncated := Preview(text)
		assert.Equal(t, text, preview)
		assert.False(t, truncated)
	})

	t.Run("long text is cut with ellipsis", func(t *testing.T) {
		text := strings.Repeat("x", PreviewLength+1)
		preview, truncated := Preview(text)
		assert.True(t, truncated)
		assert.Equal(t, strings.Repeat("x", PreviewLength)+Ellipsis, preview)
	})

	t.Run("cuts on characters not bytes", func(t *testing.T) {
		text := strings.Repeat("я", 200)
		preview, truncated := Preview(text)
		assert.True(t, truncated)
		assert.True(t, utf8.ValidString(preview))
		assert.Equal(t, PreviewLength+len(Ellipsis), utf8.RuneCountInString(preview))
	})
}

func TestRender_CardToggleFlag(t *testing.T) {
	view := Render(&core.SearchResponse{
		Candidates: []core.Candidate{
			{ID: "1", Lyrics: strings.Repeat("a", 400)},
			{ID: "2", Lyrics: "short"},
			{ID: "3"},
		},
	})

	assert.True(t, view.Cards[0].NeedsToggle)
	assert.True(t, view.Cards[0].HasLyrics())
	assert.False(t, view.Cards[1].NeedsToggle)
	assert.True(t, view.Cards[1].HasLyrics())
	assert.False(t, view.Cards[2].NeedsToggle)
	assert.False(t, view.Cards[2].HasLyrics())
}
