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

// Status is the top-level presentation state.
type Status int

const (
	StatusIdle Status = iota
	StatusSearching
	StatusSuccess
	StatusEmpty
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSearching:
		return "searching"
	case StatusSuccess:
		return "success"
	case StatusEmpty:
		return "empty"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Terminal reports whether s is one of the states a search settles in.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusEmpty || s == StatusError
}

// CanTransition reports whether the state machine allows moving from s to next.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusIdle:
		return next == StatusSearching
	case StatusSearching:
		return next.Terminal()
	case StatusSuccess, StatusEmpty, StatusError:
		return next == StatusSearching
	default:
		return false
	}
}

// MessageKind classifies a status message.
type MessageKind int

const (
	MessageNone MessageKind = iota
	MessageInfo
	MessageSuccess
	MessageWarning
	MessageError
)

func (k MessageKind) String() string {
	switch k {
	case MessageInfo:
		return "info"
	case MessageSuccess:
		return "success"
	case MessageWarning:
		return "warning"
	case MessageError:
		return "error"
	default:
		return "none"
	}
}

// StatusMessage is the single line of feedback shown to the user.
type StatusMessage struct {
	Kind MessageKind
	Text string
}

// Empty reports whether no message is shown.
func (m StatusMessage) Empty() bool {
	return m.Kind == MessageNone
}

// Default status texts used when the backend sends no message of its own.
const (
	DefaultSuccessMessage = "Search completed successfully"
	DefaultWarningMessage = "Search completed with warnings"
	DefaultEmptyMessage   = "No matching songs found"
	EmptyQueryMessage     = "Please enter a search query"
	HistoryClearedMessage = "Search history cleared"
	FeedbackThanksMessage = "Thanks for your feedback!"
	NoSelectionMessage    = "There is no selected song to rate"
)
