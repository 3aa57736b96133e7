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


package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/poiesic/songfinder/batch"
	"github.com/poiesic/songfinder/core"
	"github.com/poiesic/songfinder/session"
	"github.com/poiesic/songfinder/tui"
	"github.com/urfave/cli/v2"
)

func tuiCommand(c *cli.Context) error {
	client, err := openClient(c)
	if err != nil {
		return err
	}
	defer client.Close()

	if c.Bool("plain") || !isatty.IsTerminal(os.Stdout.Fd()) {
		s, err := client.NewSession()
		if err != nil {
			return err
		}
		if err := client.CheckHealth(c.Context); err != nil {
			s.ReportHealth(err)
			warning, _ := s.HealthWarning()
			fmt.Fprintln(c.App.ErrWriter, warning)
		}
		return tui.RunLine(c.Context, tui.LineConfig{
			Session:  s,
			Searcher: client.API(),
			Feedback: client.API(),
			In:       c.App.Reader,
			Out:      c.App.Writer,
		})
	}

	app, err := client.NewApp(c.Context)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(c.Context)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && c.Context.Err() != nil {
		return nil
	}
	return err
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return usageError(c)
	}

	client, err := openClient(c)
	if err != nil {
		return err
	}
	defer client.Close()

	s, err := client.NewSession()
	if err != nil {
		return err
	}
	if err := s.Search(c.Context, client.API(), query); err != nil {
		return err
	}
	return printOutcome(c, s)
}

func replayCommand(c *cli.Context) error {
	n, err := strconv.Atoi(c.Args().First())
	if err != nil || n < 1 || c.Args().Len() != 1 {
		return usageError(c)
	}

	client, err := openClient(c)
	if err != nil {
		return err
	}
	defer client.Close()

	s, err := client.NewSession()
	if err != nil {
		return err
	}
	if err := s.Replay(n - 1); err != nil {
		return err
	}
	return printOutcome(c, s)
}

// printOutcome writes the settled session and turns a failed search into an error.
func printOutcome(c *cli.Context, s *session.Session) error {
	if c.Bool("json") {
		if s.Status() == session.StatusError {
			return s.LastError()
		}
		resp := s.Response()
		if resp == nil {
			resp = &core.SearchResponse{Message: s.Message().Text}
		}
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	if err := tui.WriteResult(c.App.Writer, s, c.Bool("full")); err != nil {
		return err
	}
	if s.Status() == session.StatusError {
		return fmt.Errorf("search failed: %w", s.LastError())
	}
	return nil
}

type historyJSON struct {
	Query         string               `json:"query"`
	Timestamp     int64                `json:"timestamp"`
	SelectedTitle string               `json:"selected_title,omitempty"`
	Result        *core.SearchResponse `json:"result"`
}

func historyCommand(c *cli.Context) error {
	client, err := openClient(c)
	if err != nil {
		return err
	}
	defer client.Close()

	entries := client.History().List()
	if !c.Bool("json") {
		return tui.WriteHistory(c.App.Writer, entries)
	}

	out := make([]historyJSON, len(entries))
	for i, e := range entries {
		out[i] = historyJSON{
			Query:         e.Query,
			Timestamp:     e.Timestamp.UnixMilli(),
			SelectedTitle: e.SelectedTitle,
			Result:        e.Result,
		}
	}
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func clearCommand(c *cli.Context) error {
	client, err := openClient(c)
	if err != nil {
		return err
	}
	defer client.Close()

	s, err := client.NewSession()
	if err != nil {
		return err
	}
	if err := s.RequestClearHistory(c.Context); err != nil {
		return err
	}

	if !c.Bool("yes") {
		confirm := s.Confirmation()
		fmt.Fprintf(c.App.Writer, "%s [y/N] ", confirm.Message)
		answer, _ := bufio.NewReader(c.App.Reader).ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(c.App.Writer, "Cancelled")
			return s.Cancel()
		}
	}
	if err := s.Confirm(); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, s.Message().Text)
	return nil
}

func feedbackCommand(c *cli.Context) error {
	if c.Args().Len() < 2 {
		return usageError(c)
	}
	outcome := core.Feedback(strings.ToLower(c.Args().First()))
	if err := core.ValidateFeedback(outcome); err != nil {
		return err
	}
	query := strings.Join(c.Args().Tail(), " ")

	client, err := openClient(c)
	if err != nil {
		return err
	}
	defer client.Close()

	// The rated song is the one selected for the query, usually served from history.
	s, err := client.NewSession()
	if err != nil {
		return err
	}
	if err := s.Search(c.Context, client.API(), query); err != nil {
		return err
	}
	if s.Status() == session.StatusError {
		return fmt.Errorf("search failed: %w", s.LastError())
	}
	if err := s.SubmitFeedback(c.Context, client.API(), outcome); err != nil {
		return fmt.Errorf("%s: %w", s.Message().Text, err)
	}
	fmt.Fprintln(c.App.Writer, s.Message().Text)
	return nil
}

func healthCommand(c *cli.Context) error {
	client, err := openClient(c)
	if err != nil {
		return err
	}
	defer client.Close()

	attempts := c.Int("retries")
	if attempts <= 0 {
		attempts = client.Config().HealthRetries
	}

	ctx, cancel := context.WithTimeout(c.Context, healthTimeout)
	defer cancel()
	health, err := client.API().CheckHealth(ctx, attempts, client.Config().HealthRetryDelay)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s is %s\n", client.API().BaseURL(), health.Status)
	return nil
}

type batchLine struct {
	Query    string               `json:"query"`
	Cached   bool                 `json:"cached,omitempty"`
	Error    string               `json:"error,omitempty"`
	Response *core.SearchResponse `json:"response,omitempty"`
}

func batchCommand(c *cli.Context) error {
	queries, err := readQueries(c)
	if err != nil {
		return err
	}
	if len(queries) == 0 {
		return errors.New("no queries to search")
	}

	client, err := openClient(c)
	if err != nil {
		return err
	}
	defer client.Close()

	opts := []batch.Option{batch.WithProgress(c.App.ErrWriter, c.Int("report-interval"))}
	if workers := c.Int("workers"); workers > 0 {
		opts = append(opts, batch.WithPoolSize(workers))
	}
	runner, err := client.NewBatchRunner(opts...)
	if err != nil {
		return err
	}
	defer runner.Release()

	report, err := runner.Run(c.Context, queries)
	if err != nil {
		return fmt.Errorf("batch interrupted: %w", err)
	}

	enc := json.NewEncoder(c.App.Writer)
	for _, res := range report.Results {
		if c.Bool("json") {
			line := batchLine{Query: res.Query, Cached: res.Cached, Response: res.Response}
			if res.Err != nil {
				line.Error = res.Err.Error()
			}
			if err := enc.Encode(line); err != nil {
				return err
			}
			continue
		}
		fmt.Fprintf(c.App.Writer, "%d. %s: %s\n", res.Index+1, res.Query, describeResult(res))
	}
	if !c.Bool("json") {
		fmt.Fprintf(c.App.Writer, "\n%d succeeded, %d empty, %d failed, %d cached\n",
			report.Succeeded, report.Empty, report.Failed, report.Cached)
	}
	return nil
}

func describeResult(res batch.Result) string {
	switch {
	case res.Err != nil:
		return "error: " + res.Err.Error()
	case res.Response == nil:
		return "no response"
	case res.Empty():
		return session.DefaultEmptyMessage
	case res.Response.Selected != nil:
		return res.Response.Selected.Title
	default:
		return fmt.Sprintf("%d candidates, no selection", len(res.Response.Candidates))
	}
}

func readQueries(c *cli.Context) ([]string, error) {
	var in io.Reader = c.App.Reader
	if path := c.String("input"); path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open query file: %w", err)
		}
		defer f.Close()
		in = f
	}
	return batch.ParseQueries(in)
}
