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

import "context"

// ConfirmationView is the visible part of a pending confirmation.
type ConfirmationView struct {
	Visible bool
	Title   string
	Message string
}

// confirmation holds at most one pending action; it is consumed by Confirm.
type confirmation struct {
	title   string
	message string
	action  func() error
}

func (c *confirmation) visible() bool {
	return c.action != nil
}

// RequestConfirmation shows a confirmation for action.
func (s *Session) RequestConfirmation(title, message string, action func() error) error {
	if s.confirm.visible() {
		return ErrConfirmationActive
	}
	if title == "" || message == "" || action == nil {
		return ErrInvalidConfirmation
	}
	s.confirm = confirmation{title: title, message: message, action: action}
	return nil
}

// Confirmation returns the pending confirmation, if any.
func (s *Session) Confirmation() ConfirmationView {
	if !s.confirm.visible() {
		return ConfirmationView{}
	}
	return ConfirmationView{Visible: true, Title: s.confirm.title, Message: s.confirm.message}
}

// Confirm runs the pending action once and hides the confirmation.
func (s *Session) Confirm() error {
	if !s.confirm.visible() {
		return ErrNoConfirmation
	}
	action := s.confirm.action
	s.confirm = confirmation{}
	return action()
}

// Cancel hides the pending confirmation without running its action.
func (s *Session) Cancel() error {
	if !s.confirm.visible() {
		return ErrNoConfirmation
	}
	s.confirm = confirmation{}
	return nil
}

// RequestClearHistory asks for confirmation before clearing the search history.
func (s *Session) RequestClearHistory(ctx context.Context) error {
	return s.RequestConfirmation(
		"Clear history",
		"Delete all saved searches? This cannot be undone.",
		func() error { return s.clearHistory(ctx) },
	)
}

func (s *Session) clearHistory(ctx context.Context) error {
	if err := s.cache.Clear(ctx); err != nil {
		s.setMessage(MessageError, "Failed to clear history: "+err.Error())
		return err
	}
	s.setMessage(MessageInfo, HistoryClearedMessage)
	return nil
}
