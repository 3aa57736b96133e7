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


package session

import "fmt"

// Toggle labels for expandable lyrics.
const (
	LabelExpand   = "Show more"
	LabelCollapse = "Show less"
)

// CardState is the ephemeral expansion state of one rendered card.
type CardState struct {
	CandidateID string
	Expanded    bool
}

func (s *Session) resetCards() {
	s.cards = make([]CardState, len(s.view.Cards))
	for i, card := range s.view.Cards {
		s.cards[i] = CardState{CandidateID: card.ID}
	}
}

// Cards returns the expansion state of every rendered card.
func (s *Session) Cards() []CardState {
	out := make([]CardState, len(s.cards))
	copy(out, s.cards)
	return out
}

// ToggleCard flips card i between collapsed and expanded and returns the new state.
func (s *Session) ToggleCard(i int) (bool, error) {
	if i < 0 || i >= len(s.cards) {
		return false, fmt.Errorf("%w: %d", ErrCardOutOfRange, i)
	}
	if !s.view.Cards[i].NeedsToggle {
		return false, fmt.Errorf("%w: %d", ErrCardNotExpandable, i)
	}
	s.cards[i].Expanded = !s.cards[i].Expanded
	return s.cards[i].Expanded, nil
}

// CardText returns the lyrics text card i currently shows and the label of its
// toggle control. The label is empty for cards that need no toggle.
func (s *Session) CardText(i int) (text, label string, err error) {
	if i < 0 || i >= len(s.cards) {
		return "", "", fmt.Errorf("%w: %d", ErrCardOutOfRange, i)
	}
	card := s.view.Cards[i]
	switch {
	case !card.NeedsToggle:
		return card.Lyrics, "", nil
	case s.cards[i].Expanded:
		return card.Lyrics, LabelCollapse, nil
	default:
		return card.Preview, LabelExpand, nil
	}
}
