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
	"fmt"
	"log/slog"

	"github.com/poiesic/songfinder/core"
	"github.com/poiesic/songfinder/history"
	"github.com/poiesic/songfinder/render"
)

// Searcher performs a search against the backend.
type Searcher interface {
	Search(ctx context.Context, query string) (*core.SearchResponse, error)
}

// FeedbackSender delivers feedback on a selected song.
type FeedbackSender interface {
	SendFeedback(ctx context.Context, req core.FeedbackRequest) error
}

// ResultCache is the history the session reads and writes.
type ResultCache interface {
	Insert(ctx context.Context, query string, resp *core.SearchResponse) (core.HistoryEntry, error)
	Lookup(query string) (*core.SearchResponse, bool)
	Clear(ctx context.Context) error
	List() []core.HistoryEntry
	Entry(i int) (core.HistoryEntry, error)
}

var _ ResultCache = (*history.Cache)(nil)

// Ticket identifies one submitted search.
type Ticket struct {
	Query  string // Normalized query
	Cached bool   // Served from history; the search is already complete
	seq    uint64
}

// Session is the application state of one interactive client.
//
// It owns the presentation state machine, the rendered view and its card
// states, the confirmation modal and the feedback gate. A Session is not safe
// for concurrent use: every operation runs on the caller's event loop, and
// only the network request itself happens elsewhere.
type Session struct {
	cache  ResultCache
	logger *slog.Logger

	status  Status
	message StatusMessage
	query   string
	seq     uint64
	lastErr error

	response *core.SearchResponse
	view     render.View
	visible  bool
	cards    []CardState

	confirm       confirmation
	gate          FeedbackGate
	healthWarning string
}

// Option configures a Session.
type Option func(*Session) error

// WithLogger sets the logger for the session.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) error {
		s.logger = logger
		return nil
	}
}

// New creates an idle session backed by cache.
func New(cache ResultCache, opts ...Option) (*Session, error) {
	if cache == nil {
		return nil, errors.New("result cache cannot be nil")
	}
	s := &Session{
		cache:  cache,
		status: StatusIdle,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "session")
	return s, nil
}

// Begin submits query.
//
// An empty query is rejected before any state change. When the query is in
// the history its cached response is presented at once and the returned
// ticket is marked Cached; otherwise the caller performs the request and
// reports the outcome with Complete.
func (s *Session) Begin(query string) (Ticket, error) {
	if s.status == StatusSearching {
		return Ticket{}, ErrSearchInFlight
	}
	normalized, err := core.ValidateQuery(query)
	if err != nil {
		s.setMessage(MessageError, EmptyQueryMessage)
		return Ticket{}, err
	}

	if err := s.enterSearching(normalized); err != nil {
		return Ticket{}, err
	}
	ticket := Ticket{Query: normalized, seq: s.seq}

	if cached, ok := s.cache.Lookup(normalized); ok {
		s.logger.Debug("serving search from history", "query", normalized)
		s.settle(cached)
		ticket.Cached = true
	}
	return ticket, nil
}

// Complete reports the outcome of the request started by Begin.
func (s *Session) Complete(ctx context.Context, ticket Ticket, resp *core.SearchResponse, err error) error {
	if ticket.Cached || s.status != StatusSearching || ticket.seq != s.seq {
		return ErrStaleResult
	}

	if err == nil && resp == nil {
		err = fmt.Errorf("%w: empty body", core.ErrInvalidResponse)
	}
	if err != nil {
		s.fail(err)
		return nil
	}

	if core.NormalizeResponse(resp) {
		s.logger.Warn("dropped selection from response without candidates", "query", ticket.Query)
	}
	if s.settle(resp) == StatusSuccess {
		if _, err := s.cache.Insert(ctx, ticket.Query, resp); err != nil {
			s.logger.Warn("search result not saved to history", "query", ticket.Query, "err", err)
		}
	}
	return nil
}

// Search runs a complete search synchronously.
//
// The returned error covers rejected submissions only; the outcome of the
// request itself is reflected in Status, Message and LastError.
func (s *Session) Search(ctx context.Context, searcher Searcher, query string) error {
	ticket, err := s.Begin(query)
	if err != nil {
		return err
	}
	if ticket.Cached {
		return nil
	}
	resp, err := searcher.Search(ctx, ticket.Query)
	return s.Complete(ctx, ticket, resp, err)
}

// Replay presents history entry i without contacting the backend.
func (s *Session) Replay(i int) error {
	if s.status == StatusSearching {
		return ErrSearchInFlight
	}
	entry, err := s.cache.Entry(i)
	if err != nil {
		return err
	}
	if err := s.enterSearching(entry.Query); err != nil {
		return err
	}
	s.logger.Debug("replaying history entry", "index", i, "query", entry.Query)
	s.settle(entry.Result)
	return nil
}

func (s *Session) enterSearching(query string) error {
	if err := s.transition(StatusSearching); err != nil {
		return err
	}
	s.seq++
	s.query = query
	s.lastErr = nil
	s.message = StatusMessage{}
	s.clearResults()
	return nil
}

// settle moves a search that produced resp into Success or Empty.
func (s *Session) settle(resp *core.SearchResponse) Status {
	if resp == nil || len(resp.Candidates) == 0 {
		text := DefaultEmptyMessage
		if resp != nil && resp.Message != "" {
			text = resp.Message
		}
		s.mustTransition(StatusEmpty)
		s.setMessage(MessageInfo, text)
		return StatusEmpty
	}

	s.mustTransition(StatusSuccess)
	s.response = resp
	s.view = render.Render(resp)
	s.visible = true
	s.resetCards()
	s.gate.Reset(s.query, resp.Selected)

	switch {
	case resp.Warning:
		s.setMessage(MessageWarning, firstNonEmpty(resp.Message, DefaultWarningMessage))
	default:
		s.setMessage(MessageSuccess, firstNonEmpty(resp.Message, DefaultSuccessMessage))
	}
	s.logger.Debug("search settled", "query", s.query, "candidates", len(resp.Candidates), "selected", resp.SelectedTitle())
	return StatusSuccess
}

func (s *Session) fail(err error) {
	s.mustTransition(StatusError)
	s.lastErr = err
	s.setMessage(MessageError, failureReason(err))
	s.logger.Warn("search failed", "query", s.query, "err", err)
}

func (s *Session) clearResults() {
	s.response = nil
	s.view = render.View{}
	s.visible = false
	s.cards = nil
	s.gate.Reset("", nil)
}

func (s *Session) transition(next Status) error {
	if !s.status.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.status, next)
	}
	s.logger.Debug("status change", "from", s.status, "to", next)
	s.status = next
	return nil
}

// mustTransition is used where the caller has already checked the current status.
func (s *Session) mustTransition(next Status) {
	if err := s.transition(next); err != nil {
		panic(err)
	}
}

func (s *Session) setMessage(kind MessageKind, text string) {
	s.message = StatusMessage{Kind: kind, Text: text}
}

// ReportHealth records the outcome of the startup health check.
// A failure shows a warning but does not block searching.
func (s *Session) ReportHealth(err error) {
	if err == nil {
		s.healthWarning = ""
		return
	}
	s.healthWarning = "The search service is not ready: " + failureReason(err)
	s.logger.Warn("backend health check failed", "err", err)
}

// HealthWarning returns the pending startup warning, if any.
func (s *Session) HealthWarning() (string, bool) {
	return s.healthWarning, s.healthWarning != ""
}

// DismissHealthWarning hides the startup warning.
func (s *Session) DismissHealthWarning() {
	s.healthWarning = ""
}

// Status returns the current presentation state.
func (s *Session) Status() Status { return s.status }

// Message returns the current status message.
func (s *Session) Message() StatusMessage { return s.message }

// Query returns the normalized query of the current or last search.
func (s *Session) Query() string { return s.query }

// LastError returns the failure of the last search, or nil.
func (s *Session) LastError() error { return s.lastErr }

// Response returns the response being displayed, or nil.
func (s *Session) Response() *core.SearchResponse { return s.response }

// View returns the rendered result set. It is empty unless ResultsVisible.
func (s *Session) View() render.View { return s.view }

// ResultsVisible reports whether the results panel is shown.
func (s *Session) ResultsVisible() bool { return s.visible }

// Loading reports whether a search is outstanding.
func (s *Session) Loading() bool { return s.status == StatusSearching }

// SubmissionEnabled reports whether a new query can be submitted.
func (s *Session) SubmissionEnabled() bool { return s.status != StatusSearching }

// History returns the cached searches, newest first.
func (s *Session) History() []core.HistoryEntry { return s.cache.List() }

// failureReason returns the human-readable reason of a failed operation.
func failureReason(err error) string {
	var backendErr *core.BackendError
	if errors.As(err, &backendErr) {
		return backendErr.Error()
	}
	return err.Error()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
