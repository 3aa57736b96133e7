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

import (
	"context"
	"errors"

	"github.com/poiesic/songfinder/core"
)

// FeedbackGate allows one feedback submission per displayed selection.
type FeedbackGate struct {
	query      string
	selectedID string
	submitted  bool
}

// Reset opens the gate for a newly displayed result.
func (g *FeedbackGate) Reset(query string, selected *core.Candidate) {
	g.query = query
	g.selectedID = ""
	if selected.HasID() {
		g.selectedID = selected.ID
	}
	g.submitted = false
}

// Begin closes the gate and returns the request to send.
// Once Begin succeeds it fails with ErrFeedbackSubmitted until the next Reset.
func (g *FeedbackGate) Begin(outcome core.Feedback) (core.FeedbackRequest, error) {
	if err := core.ValidateFeedback(outcome); err != nil {
		return core.FeedbackRequest{}, err
	}
	if g.selectedID == "" {
		return core.FeedbackRequest{}, core.ErrNoSelection
	}
	if g.submitted {
		return core.FeedbackRequest{}, ErrFeedbackSubmitted
	}
	g.submitted = true
	return core.FeedbackRequest{
		Query:          g.query,
		SelectedSongID: g.selectedID,
		Feedback:       outcome,
	}, nil
}

// Open reports whether feedback can still be submitted.
func (g *FeedbackGate) Open() bool {
	return g.selectedID != "" && !g.submitted
}

// Submitted reports whether feedback was sent for the current result.
func (g *FeedbackGate) Submitted() bool {
	return g.submitted
}

// SubmitFeedback sends the user's verdict on the displayed selection.
// Failed submissions are reported and never retried.
func (s *Session) SubmitFeedback(ctx context.Context, sender FeedbackSender, outcome core.Feedback) error {
	req, err := s.BeginFeedback(outcome)
	if err != nil {
		return err
	}
	err = sender.SendFeedback(ctx, req)
	s.FinishFeedback(req, err)
	return err
}

// BeginFeedback closes the feedback gate and returns the request to send.
// Callers that send the request themselves report the outcome with FinishFeedback.
func (s *Session) BeginFeedback(outcome core.Feedback) (core.FeedbackRequest, error) {
	req, err := s.gate.Begin(outcome)
	switch {
	case errors.Is(err, core.ErrNoSelection):
		s.setMessage(MessageError, NoSelectionMessage)
		return req, err
	case errors.Is(err, ErrFeedbackSubmitted):
		s.setMessage(MessageInfo, "Feedback was already sent for this result")
		return req, err
	case err != nil:
		s.setMessage(MessageError, err.Error())
		return req, err
	}
	s.logger.Debug("sending feedback", "query", req.Query, "songId", req.SelectedSongID, "feedback", req.Feedback)
	return req, nil
}

// FinishFeedback records the outcome of a request returned by BeginFeedback.
func (s *Session) FinishFeedback(req core.FeedbackRequest, err error) {
	if err != nil {
		s.logger.Warn("feedback failed", "query", req.Query, "err", err)
		s.setMessage(MessageError, "Failed to send feedback: "+failureReason(err))
		return
	}
	s.setMessage(MessageSuccess, FeedbackThanksMessage)
}

// FeedbackOpen reports whether the displayed result can still be rated.
func (s *Session) FeedbackOpen() bool {
	return s.status == StatusSuccess && s.gate.Open()
}
