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
	"bufio"
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/poiesic/songfinder/core"
	"github.com/poiesic/songfinder/session"
)

const linePrompt = "query (or 'exit' to quit)> "

var exitWords = map[string]struct{}{
	"exit":  {},
	"quit":  {},
	"выход": {},
}

// LineConfig holds the dependencies of a line-mode loop.
type LineConfig struct {
	Session  *session.Session
	Searcher session.Searcher
	Feedback session.FeedbackSender
	In       io.Reader
	Out      io.Writer
}

// RunLine runs the interactive loop without a terminal UI, one query per line.
//
// Lines starting with ':' are commands: :like, :dislike, :more N, :history,
// :replay N, :clear and :help. The loop ends at EOF, on an exit word or when
// ctx is cancelled.
func RunLine(ctx context.Context, cfg LineConfig) error {
	if cfg.Session == nil || cfg.Searcher == nil {
		return errors.New("session and searcher are required")
	}
	l := &lineLoop{cfg: cfg, out: &errWriter{w: cfg.Out}}
	scanner := bufio.NewScanner(cfg.In)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		l.out.printf("%s", linePrompt)
		if l.out.err != nil {
			return l.out.err
		}
		if !scanner.Scan() {
			l.out.printf("\n")
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if _, ok := exitWords[strings.ToLower(line)]; ok {
			l.out.printf("Goodbye!\n")
			return l.out.err
		}
		if err := l.handle(ctx, line, scanner); err != nil {
			return err
		}
	}
}

type lineLoop struct {
	cfg LineConfig
	out *errWriter
}

func (l *lineLoop) handle(ctx context.Context, line string, scanner *bufio.Scanner) error {
	s := l.cfg.Session
	if !strings.HasPrefix(line, ":") {
		if err := s.Search(ctx, l.cfg.Searcher, line); err != nil {
			// Rejected before any request; the session message says why when it has one.
			if msg := s.Message(); msg.Empty() {
				l.out.printf("%v\n", err)
				return l.out.err
			}
		}
		return l.writeResult()
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case ":like", ":dislike":
		if l.cfg.Feedback == nil {
			l.out.printf("feedback is not available\n")
			return l.out.err
		}
		outcome := core.FeedbackLike
		if fields[0] == ":dislike" {
			outcome = core.FeedbackDislike
		}
		if err := s.SubmitFeedback(ctx, l.cfg.Feedback, outcome); err != nil {
			l.out.printf("%v\n", err)
		}
		l.printMessage()

	case ":more":
		i, ok := l.argIndex(fields)
		if !ok {
			break
		}
		if _, err := s.ToggleCard(i); err != nil {
			l.out.printf("%v\n", err)
			break
		}
		return l.writeResult()

	case ":history":
		return WriteHistory(l.cfg.Out, s.History())

	case ":replay":
		i, ok := l.argIndex(fields)
		if !ok {
			break
		}
		if err := s.Replay(i); err != nil {
			l.out.printf("%v\n", err)
			break
		}
		return l.writeResult()

	case ":clear":
		if err := s.RequestClearHistory(ctx); err != nil {
			l.out.printf("%v\n", err)
			break
		}
		confirm := s.Confirmation()
		l.out.printf("%s\n%s [y/N] ", confirm.Title, confirm.Message)
		answer := ""
		if scanner.Scan() {
			answer = strings.ToLower(strings.TrimSpace(scanner.Text()))
		}
		if answer == "y" || answer == "yes" {
			if err := s.Confirm(); err != nil {
				l.out.printf("%v\n", err)
			}
			l.printMessage()
		} else {
			_ = s.Cancel()
		}

	case ":help":
		l.out.printf(":like | :dislike | :more N | :history | :replay N | :clear | exit\n")

	default:
		l.out.printf("unknown command %s, try :help\n", fields[0])
	}
	return l.out.err
}

// argIndex parses the 1-based index argument of a command.
func (l *lineLoop) argIndex(fields []string) (int, bool) {
	if len(fields) < 2 {
		l.out.printf("usage: %s N\n", fields[0])
		return 0, false
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 1 {
		l.out.printf("invalid index %q\n", fields[1])
		return 0, false
	}
	return n - 1, true
}

func (l *lineLoop) printMessage() {
	if msg := l.cfg.Session.Message(); !msg.Empty() {
		l.out.printf("%s\n", msg.Text)
	}
}

func (l *lineLoop) writeResult() error {
	if err := WriteResult(l.cfg.Out, l.cfg.Session, false); err != nil {
		return err
	}
	if l.cfg.Session.FeedbackOpen() {
		l.out.printf("Was this the right song? :like / :dislike\n")
	}
	return l.out.err
}
