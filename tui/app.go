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
	"context"
	"errors"
	"log/slog"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/poiesic/songfinder/core"
	"github.com/poiesic/songfinder/session"
)

type focus int

const (
	focusInput focus = iota
	focusResults
	focusHistory
)

// AppConfig holds the dependencies of an App.
type AppConfig struct {
	Context  context.Context
	Session  *session.Session
	Searcher session.Searcher
	Feedback session.FeedbackSender

	// CheckHealth runs the startup health check. Nil skips it.
	CheckHealth func(ctx context.Context) error

	Logger *slog.Logger
}

// App is the root Bubble Tea model.
//
// All session state changes happen in Update; commands only perform the
// network requests and report back with messages.
type App struct {
	ctx         context.Context
	session     *session.Session
	searcher    session.Searcher
	feedback    session.FeedbackSender
	checkHealth func(ctx context.Context) error
	logger      *slog.Logger

	input         textinput.Model
	spinner       spinner.Model
	focus         focus
	cursor        int // Highlighted card
	historyCursor int
	width         int
	height        int
}

// NewApp creates a new App.
func NewApp(cfg AppConfig) (App, error) {
	if cfg.Session == nil {
		return App{}, errors.New("session is required")
	}
	if cfg.Searcher == nil {
		return App{}, errors.New("searcher is required")
	}
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ti := textinput.New()
	ti.Placeholder = "describe the song you are looking for..."
	ti.Prompt = "> "
	ti.CharLimit = 500
	ti.Width = 60
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorSpinner)

	return App{
		ctx:         ctx,
		session:     cfg.Session,
		searcher:    cfg.Searcher,
		feedback:    cfg.Feedback,
		checkHealth: cfg.CheckHealth,
		logger:      logger.With("component", "tui"),
		input:       ti,
		spinner:     s,
		focus:       focusInput,
	}, nil
}

// Init starts the cursor blink and the health check.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if a.checkHealth != nil {
		cmds = append(cmds, a.healthCmd())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if msg.Width > 10 {
			a.input.Width = msg.Width - 10
		}
		return a, nil

	case spinner.TickMsg:
		if a.session.Loading() {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case SearchCompleted:
		if err := a.session.Complete(a.ctx, msg.Ticket, msg.Response, msg.Err); err != nil {
			a.logger.Debug("ignoring search result", "query", msg.Ticket.Query, "err", err)
			return a, nil
		}
		return a.afterSearch(), nil

	case FeedbackSent:
		a.session.FinishFeedback(msg.Request, msg.Err)
		return a, nil

	case HealthChecked:
		a.session.ReportHealth(msg.Err)
		return a, nil
	}

	if a.focus == focusInput {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return a, tea.Quit
	}

	// The confirmation modal captures every key until it is answered.
	if a.session.Confirmation().Visible {
		switch msg.String() {
		case "y", "Y", "enter":
			if err := a.session.Confirm(); err != nil {
				a.logger.Warn("confirmed action failed", "err", err)
			}
			a.historyCursor = 0
		case "n", "N", "esc":
			_ = a.session.Cancel()
		}
		return a, nil
	}

	if _, ok := a.session.HealthWarning(); ok {
		switch msg.Type {
		case tea.KeyEnter, tea.KeyEsc:
			a.session.DismissHealthWarning()
		}
		return a, nil
	}

	switch a.focus {
	case focusInput:
		return a.handleInputKey(msg)
	case focusHistory:
		return a.handleHistoryKey(msg)
	default:
		return a.handleResultsKey(msg)
	}
}

func (a App) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		return a.submitSearch()
	case tea.KeyEsc, tea.KeyTab:
		a.input.Blur()
		a.focus = focusResults
		return a, nil
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a App) handleResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		return a.moveCursor(-1), nil
	case tea.KeyDown:
		return a.moveCursor(1), nil
	case tea.KeyEnter, tea.KeySpace:
		return a.toggleCard(), nil
	case tea.KeyTab:
		a.focus = focusHistory
		return a, nil
	}

	switch msg.String() {
	case "/", "i":
		return a.editQuery()
	case "k":
		return a.moveCursor(-1), nil
	case "j":
		return a.moveCursor(1), nil
	case "l", "+":
		return a.sendFeedback(core.FeedbackLike)
	case "d", "-":
		return a.sendFeedback(core.FeedbackDislike)
	case "h":
		a.focus = focusHistory
		return a, nil
	case "c":
		return a.requestClear(), nil
	case "q":
		return a, tea.Quit
	}
	return a, nil
}

func (a App) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := len(a.session.History())
	switch msg.Type {
	case tea.KeyUp:
		if a.historyCursor > 0 {
			a.historyCursor--
		}
		return a, nil
	case tea.KeyDown:
		if a.historyCursor < entries-1 {
			a.historyCursor++
		}
		return a, nil
	case tea.KeyEnter:
		return a.replay(), nil
	case tea.KeyEsc, tea.KeyTab:
		a.focus = focusResults
		return a, nil
	}

	switch msg.String() {
	case "k":
		return a.handleHistoryKey(tea.KeyMsg{Type: tea.KeyUp})
	case "j":
		return a.handleHistoryKey(tea.KeyMsg{Type: tea.KeyDown})
	case "h":
		a.focus = focusResults
		return a, nil
	case "/", "i":
		return a.editQuery()
	case "c":
		return a.requestClear(), nil
	case "q":
		return a, tea.Quit
	}
	return a, nil
}

func (a App) editQuery() (tea.Model, tea.Cmd) {
	a.focus = focusInput
	return a, a.input.Focus()
}

// submitSearch starts a search for the text in the input.
func (a App) submitSearch() (tea.Model, tea.Cmd) {
	ticket, err := a.session.Begin(a.input.Value())
	if err != nil {
		// The session already shows why; an in-flight search simply ignores the key.
		return a, nil
	}
	a.cursor = 0
	if ticket.Cached {
		return a.afterSearch(), nil
	}
	return a, tea.Batch(a.spinner.Tick, a.searchCmd(ticket))
}

func (a App) afterSearch() App {
	a.cursor = 0
	if a.session.ResultsVisible() {
		a.input.Blur()
		a.focus = focusResults
	}
	return a
}

func (a App) replay() App {
	if err := a.session.Replay(a.historyCursor); err != nil {
		a.logger.Debug("replay failed", "index", a.historyCursor, "err", err)
		return a
	}
	a.input.SetValue(a.session.Query())
	a.focus = focusResults
	a.cursor = 0
	return a
}

func (a App) moveCursor(delta int) App {
	cards := len(a.session.View().Cards)
	a.cursor += delta
	if a.cursor >= cards {
		a.cursor = cards - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
	return a
}

func (a App) toggleCard() App {
	if _, err := a.session.ToggleCard(a.cursor); err != nil && !errors.Is(err, session.ErrCardNotExpandable) {
		a.logger.Debug("toggle failed", "card", a.cursor, "err", err)
	}
	return a
}

func (a App) sendFeedback(outcome core.Feedback) (tea.Model, tea.Cmd) {
	if a.feedback == nil {
		return a, nil
	}
	req, err := a.session.BeginFeedback(outcome)
	if err != nil {
		return a, nil
	}
	return a, a.feedbackCmd(req)
}

func (a App) requestClear() App {
	if err := a.session.RequestClearHistory(a.ctx); err != nil {
		a.logger.Debug("clear request rejected", "err", err)
	}
	return a
}

func (a App) searchCmd(ticket session.Ticket) tea.Cmd {
	ctx, searcher := a.ctx, a.searcher
	return func() tea.Msg {
		resp, err := searcher.Search(ctx, ticket.Query)
		return SearchCompleted{Ticket: ticket, Response: resp, Err: err}
	}
}

func (a App) feedbackCmd(req core.FeedbackRequest) tea.Cmd {
	ctx, sender := a.ctx, a.feedback
	return func() tea.Msg {
		return FeedbackSent{Request: req, Err: sender.SendFeedback(ctx, req)}
	}
}

func (a App) healthCmd() tea.Cmd {
	ctx, check := a.ctx, a.checkHealth
	return func() tea.Msg {
		return HealthChecked{Err: check(ctx)}
	}
}

// Session returns the session driven by the app.
func (a App) Session() *session.Session {
	return a.session
}

// Cursor returns the index of the highlighted card.
func (a App) Cursor() int {
	return a.cursor
}
