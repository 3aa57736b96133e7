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

import "errors"

var (
	// ErrSearchInFlight indicates a submission while a search is outstanding.
	ErrSearchInFlight = errors.New("a search is already in progress")

	// ErrStaleResult indicates a completion for a search that is no longer pending.
	ErrStaleResult = errors.New("result does not belong to the pending search")

	// ErrInvalidTransition indicates a status change the state machine does not allow.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrCardOutOfRange indicates a card index outside the rendered result set.
	ErrCardOutOfRange = errors.New("card index out of range")

	// ErrCardNotExpandable indicates a toggle on a card whose lyrics fit the preview.
	ErrCardNotExpandable = errors.New("card has nothing to expand")

	// ErrConfirmationActive indicates a confirmation request while another is visible.
	ErrConfirmationActive = errors.New("a confirmation is already pending")

	// ErrNoConfirmation indicates confirm or cancel with nothing pending.
	ErrNoConfirmation = errors.New("no confirmation is pending")

	// ErrInvalidConfirmation indicates a confirmation request missing its title, message or action.
	ErrInvalidConfirmation = errors.New("confirmation requires a title, a message and an action")

	// ErrFeedbackSubmitted indicates feedback was already sent for the displayed selection.
	ErrFeedbackSubmitted = errors.New("feedback already submitted for this result")
)
