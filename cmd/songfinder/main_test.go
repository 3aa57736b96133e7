package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/poiesic/songfinder/core"
	"github.com/poiesic/songfinder/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

const searchBody = `{
	"candidates": [
		{"id": "1", "title": "Song A", "similarity_distance": 0.4, "lyrics": ["first line", "second line"]},
		{"id": "2", "title": "Song B", "hybrid_score": 0.5}
	],
	"selected": {"id": "1", "title": "Song A"},
	"reasoning": "fits the mood"
}`

type testBackend struct {
	server   *httptest.Server
	searches atomic.Int32

	mu       sync.Mutex
	feedback []core.FeedbackRequest
}

func newTestBackend(t *testing.T) *testBackend {
	t.Helper()
	b := &testBackend{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/search", func(w http.ResponseWriter, r *http.Request) {
		b.searches.Add(1)
		var req struct {
			Query string `json:"query"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Query == "broken" {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error": "index not loaded"}`))
			return
		}
		switch req.Query {
		case "obscure":
			_, _ = w.Write([]byte(`{"candidates": [], "message": "No songs match that description"}`))
		case "silent":
			_, _ = w.Write([]byte(`{"candidates": []}`))
		default:
			_, _ = w.Write([]byte(searchBody))
		}
	})
	mux.HandleFunc("POST /api/feedback", func(w http.ResponseWriter, r *http.Request) {
		var req core.FeedbackRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		b.feedback = append(b.feedback, req)
		b.mu.Unlock()
		_, _ = w.Write([]byte(`{"status": "ok"}`))
	})
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "ok"}`))
	})
	b.server = httptest.NewServer(mux)
	t.Cleanup(b.server.Close)
	return b
}

type runner struct {
	t       *testing.T
	apiURL  string
	dataDir string
}

func newRunner(t *testing.T, b *testBackend) *runner {
	return &runner{t: t, apiURL: b.server.URL + "/api", dataDir: t.TempDir()}
}

// run executes the CLI with stdin and returns what it wrote to stdout.
func (r *runner) run(stdin string, args ...string) (string, error) {
	r.t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Reader = strings.NewReader(stdin)
	app.Writer = &out
	app.ErrWriter = io.Discard

	full := append([]string{"songfinder", "--log-level", "error", "--api-url", r.apiURL, "--data-dir", r.dataDir}, args...)
	err := app.Run(full)
	return out.String(), err
}

func TestSearchCommand(t *testing.T) {
	backend := newTestBackend(t)
	r := newRunner(t, backend)

	out, err := r.run("", "search", "calm", "song")
	require.NoError(t, err)
	assert.Contains(t, out, "[SUCCESS]")
	assert.Contains(t, out, "Best match: Song A (80.0%) [selected]")
	assert.Contains(t, out, "2. Song B (50.0%)")
	assert.Contains(t, out, "Why this song: fits the mood")
	assert.Contains(t, out, "   first line\n   second line")

	t.Run("second search is served from history", func(t *testing.T) {
		_, err := r.run("", "search", "  calm song ")
		require.NoError(t, err)
		assert.Equal(t, int32(1), backend.searches.Load())
	})

	t.Run("json output", func(t *testing.T) {
		out, err := r.run("", "search", "--json", "calm song")
		require.NoError(t, err)
		var resp core.SearchResponse
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		assert.Len(t, resp.Candidates, 2)
		assert.Equal(t, "first line\nsecond line", resp.Candidates[0].Lyrics)
	})

	t.Run("json output without candidates", func(t *testing.T) {
		for query, message := range map[string]string{
			"obscure": "No songs match that description",
			"silent":  session.DefaultEmptyMessage,
		} {
			out, err := r.run("", "search", "--json", query)
			require.NoError(t, err)
			assert.JSONEq(t, `{"candidates": [], "message": `+strconv.Quote(message)+`}`, out)
		}
	})

	t.Run("backend error", func(t *testing.T) {
		out, err := r.run("", "search", "broken")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "index not loaded")
		assert.Contains(t, out, "[ERROR] index not loaded")
	})

	t.Run("missing query", func(t *testing.T) {
		_, err := r.run("", "search")
		assert.ErrorIs(t, err, errUsage)
	})
}

func TestHistoryCommands(t *testing.T) {
	backend := newTestBackend(t)
	r := newRunner(t, backend)

	out, err := r.run("", "history")
	require.NoError(t, err)
	assert.Equal(t, "No searches yet\n", out)

	_, err = r.run("", "search", "calm song")
	require.NoError(t, err)
	_, err = r.run("", "search", "sea song")
	require.NoError(t, err)

	out, err = r.run("", "history")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "sea song -> Song A")
	assert.Contains(t, lines[1], "calm song -> Song A")

	out, err = r.run("", "history", "--json")
	require.NoError(t, err)
	var entries []historyJSON
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "sea song", entries[0].Query)

	out, err = r.run("", "replay", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Best match: Song A")
	assert.Equal(t, int32(2), backend.searches.Load())

	_, err = r.run("", "replay", "9")
	assert.Error(t, err)
	_, err = r.run("", "replay", "zero")
	assert.ErrorIs(t, err, errUsage)

	out, err = r.run("n\n", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled")
	out, err = r.run("", "history")
	require.NoError(t, err)
	assert.NotEqual(t, "No searches yet\n", out)

	out, err = r.run("", "clear", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Search history cleared")
	out, err = r.run("", "history")
	require.NoError(t, err)
	assert.Equal(t, "No searches yet\n", out)
}

func TestFeedbackCommand(t *testing.T) {
	backend := newTestBackend(t)
	r := newRunner(t, backend)

	out, err := r.run("", "feedback", "like", "calm", "song")
	require.NoError(t, err)
	assert.Contains(t, out, "Thanks for your feedback!")

	require.Len(t, backend.feedback, 1)
	assert.Equal(t, core.FeedbackRequest{Query: "calm song", SelectedSongID: "1", Feedback: core.FeedbackLike}, backend.feedback[0])

	_, err = r.run("", "feedback", "love", "calm song")
	assert.ErrorIs(t, err, core.ErrInvalidFeedback)

	_, err = r.run("", "feedback", "like")
	assert.ErrorIs(t, err, errUsage)
}

func TestHealthCommand(t *testing.T) {
	backend := newTestBackend(t)
	r := newRunner(t, backend)

	out, err := r.run("", "health")
	require.NoError(t, err)
	assert.Contains(t, out, "is ok")

	r.apiURL = backend.server.URL + "/missing"
	_, err = r.run("", "health", "--retries", "1")
	assert.Error(t, err)
}

func TestBatchCommand(t *testing.T) {
	backend := newTestBackend(t)
	r := newRunner(t, backend)

	out, err := r.run("calm song\n# comment\n\nsea song\ncalm song\nbroken\n", "batch", "--workers", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "1. calm song: Song A")
	assert.Contains(t, out, "4. broken: error: index not loaded")
	assert.Contains(t, out, "3 succeeded, 0 empty, 1 failed, 1 cached")
	assert.Equal(t, int32(3), backend.searches.Load())

	out, err = r.run("calm song\n", "batch", "--json")
	require.NoError(t, err)
	var line batchLine
	require.NoError(t, json.Unmarshal([]byte(out), &line))
	assert.Equal(t, "calm song", line.Query)
	assert.True(t, line.Cached)

	_, err = r.run("\n# nothing\n", "batch")
	assert.Error(t, err)
}

func TestTUICommandPlain(t *testing.T) {
	backend := newTestBackend(t)
	r := newRunner(t, backend)

	out, err := r.run("calm song\n:like\nexit\n", "tui", "--plain")
	require.NoError(t, err)
	assert.Contains(t, out, "Best match: Song A")
	assert.Contains(t, out, "Thanks for your feedback!")
	assert.Contains(t, out, "Goodbye!")
	assert.Len(t, backend.feedback, 1)
}

func TestInvalidConfiguration(t *testing.T) {
	backend := newTestBackend(t)
	r := newRunner(t, backend)
	r.apiURL = "localhost:5000"

	_, err := r.run("", "history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestAppFlags(t *testing.T) {
	app := newApp()

	var levelFlag *cli.StringFlag
	for _, flag := range app.Flags {
		if f, ok := flag.(*cli.StringFlag); ok && f.Name == "log-level" {
			levelFlag = f
		}
	}
	require.NotNil(t, levelFlag)
	assert.Equal(t, "warn", levelFlag.Value)
	assert.Equal(t, "tui", app.DefaultCommand)

	names := make([]string, 0, len(app.Commands))
	for _, cmd := range app.Commands {
		names = append(names, cmd.Name)
	}
	assert.ElementsMatch(t, []string{"tui", "search", "history", "replay", "clear", "feedback", "health", "batch"}, names)
}

func TestSetupLogger(t *testing.T) {
	t.Run("valid log levels", func(t *testing.T) {
		testCases := []struct {
			input    string
			expected slog.Level
		}{
			{"debug", slog.LevelDebug},
			{"info", slog.LevelInfo},
			{"WaRn", slog.LevelWarn},
			{"ERROR", slog.LevelError},
		}

		for _, tc := range testCases {
			t.Run(tc.input, func(t *testing.T) {
				app := &cli.App{
					Name: "test",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:  "log-level",
							Value: "warn",
						},
					},
					Before: setupLogger,
					Action: func(c *cli.Context) error {
						return nil
					},
				}

				err := app.Run([]string{"test", "--log-level", tc.input})
				require.NoError(t, err)
				assert.True(t, slog.Default().Enabled(t.Context(), tc.expected))
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		app := &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "log-level",
					Value: "warn",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				return nil
			},
		}

		err := app.Run([]string{"test", "--log-level", "invalid"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestNewLogHandler(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		enabled slog.Level
		muted   slog.Level
		wantErr string
	}{
		{"text warn", "warn", "text", slog.LevelWarn, slog.LevelInfo, ""},
		{"default format", "info", "", slog.LevelInfo, slog.LevelDebug, ""},
		{"json debug", "DEBUG", "JSON", slog.LevelDebug, slog.LevelDebug - 1, ""},
		{"offset level", "info+2", "text", slog.LevelInfo + 2, slog.LevelInfo, ""},
		{"bad level", "loud", "text", 0, 0, "invalid log level"},
		{"empty level", "", "text", 0, 0, "invalid log level"},
		{"bad format", "info", "xml", 0, 0, "invalid log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, err := newLogHandler(io.Discard, tt.level, tt.format)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, handler.Enabled(t.Context(), tt.enabled))
			assert.False(t, handler.Enabled(t.Context(), tt.muted))
		})
	}
}

func TestSetupLogger_WritesToErrWriter(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var stderr bytes.Buffer
	app := newApp()
	app.ErrWriter = &stderr
	app.Commands = []*cli.Command{{
		Name: "noop",
		Action: func(c *cli.Context) error {
			slog.Info("hello", "answer", 42)
			return nil
		},
	}}

	require.NoError(t, app.Run([]string{"songfinder", "--log-level", "info", "--log-format", "json", "noop"}))

	var record map[string]any
	require.NoError(t, json.Unmarshal(stderr.Bytes(), &record))
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "INFO", record["level"])
	assert.EqualValues(t, 42, record["answer"])
}
