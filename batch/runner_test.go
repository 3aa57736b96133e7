package batch

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/poiesic/songfinder/core"
	"github.com/poiesic/songfinder/history"
	"github.com/poiesic/songfinder/storage"
	"github.com/poiesic/songfinder/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapSearcher struct {
	mu        sync.Mutex
	calls     map[string]int
	responses map[string]*core.SearchResponse
	failures  map[string]error
}

func newMapSearcher() *mapSearcher {
	return &mapSearcher{
		calls:     make(map[string]int),
		responses: make(map[string]*core.SearchResponse),
		failures:  make(map[string]error),
	}
}

func (m *mapSearcher) Search(_ context.Context, query string) (*core.SearchResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[query]++
	if err, ok := m.failures[query]; ok {
		return nil, err
	}
	if resp, ok := m.responses[query]; ok {
		return resp, nil
	}
	return &core.SearchResponse{
		Candidates: []core.Candidate{{ID: query, Title: "Song for " + query}},
		Selected:   &core.Candidate{ID: query, Title: "Song for " + query},
	}, nil
}

func (m *mapSearcher) total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

func newTestCache(t *testing.T) *history.Cache {
	t.Helper()
	kv, err := badger.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	store, err := storage.NewHistoryStore(kv)
	require.NoError(t, err)
	cache, err := history.NewCache(context.Background(), store)
	require.NoError(t, err)
	return cache
}

func TestNewRunner(t *testing.T) {
	cache := newTestCache(t)

	_, err := NewRunner(nil, cache)
	assert.ErrorIs(t, err, ErrSearcherRequired)
	_, err = NewRunner(newMapSearcher(), nil)
	assert.ErrorIs(t, err, ErrCacheRequired)

	runner, err := NewRunner(newMapSearcher(), cache, WithPoolSize(0))
	require.NoError(t, err)
	runner.Release()
}

func TestRunner_Run(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)
	searcher := newMapSearcher()
	searcher.responses["пусто"] = &core.SearchResponse{Message: "nothing"}
	searcher.failures["broken"] = &core.BackendError{StatusCode: 500, Message: "overloaded"}

	_, err := cache.Insert(ctx, "known", &core.SearchResponse{
		Candidates: []core.Candidate{{ID: "k", Title: "Known"}},
	})
	require.NoError(t, err)

	var progress bytes.Buffer
	runner, err := NewRunner(searcher, cache, WithPoolSize(3), WithProgress(&progress, 1))
	require.NoError(t, err)
	defer runner.Release()

	queries := []string{"мир", "known", "  ", "пусто", "broken", "любовь", " мир "}
	report, err := runner.Run(ctx, queries)
	require.NoError(t, err)

	require.Len(t, report.Results, len(queries))
	for i, res := range report.Results {
		assert.Equal(t, i, res.Index)
	}

	assert.NoError(t, report.Results[0].Err)
	assert.False(t, report.Results[0].Cached)
	assert.True(t, report.Results[1].Cached)
	assert.Equal(t, "Known", report.Results[1].Response.Candidates[0].Title)
	assert.ErrorIs(t, report.Results[2].Err, core.ErrEmptyQuery)
	assert.True(t, report.Results[3].Empty())
	assert.ErrorIs(t, report.Results[4].Err, core.ErrBackend)
	assert.True(t, report.Results[6].Cached, "duplicate reuses the first search")
	assert.Same(t, report.Results[0].Response, report.Results[6].Response)

	assert.Equal(t, 4, report.Succeeded)
	assert.Equal(t, 1, report.Empty)
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, 2, report.Cached)

	assert.Equal(t, 1, searcher.calls["мир"])
	assert.Zero(t, searcher.calls["known"])
	assert.Equal(t, 4, searcher.total())

	// Successes with candidates are inserted in input order, so the last one is newest.
	entries := cache.List()
	require.Len(t, entries, 3)
	assert.Equal(t, "любовь", entries[0].Query)
	assert.Equal(t, "мир", entries[1].Query)
	assert.Equal(t, "known", entries[2].Query)

	assert.Contains(t, progress.String(), "Searched 4/4")
}

func TestRunner_SecondRunServedFromHistory(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)
	searcher := newMapSearcher()

	runner, err := NewRunner(searcher, cache)
	require.NoError(t, err)
	defer runner.Release()

	_, err = runner.Run(ctx, []string{"a", "b"})
	require.NoError(t, err)
	report, err := runner.Run(ctx, []string{"a", "b"})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Cached)
	assert.Equal(t, 2, searcher.total())
	assert.Len(t, cache.List(), 2)
}

func TestRunner_CanceledContext(t *testing.T) {
	cache := newTestCache(t)
	searcher := newMapSearcher()
	runner, err := NewRunner(searcher, cache)
	require.NoError(t, err)
	defer runner.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := runner.Run(ctx, []string{"a", "b"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, report.Failed)
	assert.Zero(t, searcher.total())
	assert.Empty(t, cache.List())
}

func TestRunner_CanceledContextCountsSkippedQueries(t *testing.T) {
	cache := newTestCache(t)
	var progress bytes.Buffer
	runner, err := NewRunner(newMapSearcher(), cache, WithProgress(&progress, 1))
	require.NoError(t, err)
	defer runner.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = runner.Run(ctx, []string{"a", "b", "c"})
	assert.ErrorIs(t, err, context.Canceled)

	lines := strings.Split(strings.TrimSpace(progress.String()), "\r")
	assert.Contains(t, lines[len(lines)-1], "Searched 3/3 (100.0%), 3 failed")
}

func TestParseQueries(t *testing.T) {
	input := strings.Join([]string{
		"# songs to check",
		"мир",
		"",
		"   любовь и море  ",
		"  # indented comment",
		"exit",
	}, "\n")

	queries, err := ParseQueries(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"мир", "любовь и море", "exit"}, queries)
}

func TestParseQueries_ReadError(t *testing.T) {
	_, err := ParseQueries(errReader{})
	assert.Error(t, err)
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) {
	return 0, errors.New("read failed")
}
