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


package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/songfinder/core"
	"github.com/poiesic/songfinder/session"
)

// Cache is the part of the history the runner reads and writes.
type Cache interface {
	Lookup(query string) (*core.SearchResponse, bool)
	Insert(ctx context.Context, query string, resp *core.SearchResponse) (core.HistoryEntry, error)
}

// Result is the outcome of one input query.
type Result struct {
	Index    int    // Position in the input
	Query    string // Normalized query
	Response *core.SearchResponse
	Cached   bool // Served from history or from an earlier duplicate in the batch
	Err      error
}

// Empty reports whether the query succeeded without candidates.
func (r Result) Empty() bool {
	return r.Err == nil && r.Response != nil && len(r.Response.Candidates) == 0
}

// Report summarizes a batch run. Results are in input order.
type Report struct {
	Results   []Result
	Succeeded int
	Empty     int
	Failed    int
	Cached    int
}

// Runner resolves lists of queries through a bounded worker pool.
type Runner struct {
	searcher       session.Searcher
	cache          Cache
	pool           *ants.Pool
	progress       io.Writer
	reportInterval int
	logger         *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner) error

// WithPoolSize sets the number of concurrent searches.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(r *Runner) error {
		if size < 1 {
			size = 1
		}
		if r.pool != nil {
			r.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		r.pool = pool
		return nil
	}
}

// WithProgress writes a progress line to w every interval finished queries.
func WithProgress(w io.Writer, interval int) Option {
	return func(r *Runner) error {
		r.progress = w
		r.reportInterval = interval
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRunner creates a runner. Call Release when done.
func NewRunner(searcher session.Searcher, cache Cache, opts ...Option) (*Runner, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	if cache == nil {
		return nil, ErrCacheRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		searcher:       searcher,
		cache:          cache,
		pool:           pool,
		reportInterval: 1,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		if optErr := opt(r); optErr != nil {
			r.Release()
			return nil, optErr
		}
	}
	r.logger = r.logger.With("component", "batch")
	return r, nil
}

// Release stops the worker pool.
func (r *Runner) Release() {
	if r.pool != nil {
		r.pool.Release()
	}
}

// Run searches every query.
//
// Queries already in the history are served from it, and a query repeated in
// the input is searched once. Successful searches with candidates are added to
// the history in input order after all searches finish. A failed query never
// stops the run; Run only returns an error when ctx is done.
func (r *Runner) Run(ctx context.Context, queries []string) (Report, error) {
	results := make([]Result, len(queries))
	first := make(map[string]int, len(queries))
	var pending []int

	for i, query := range queries {
		results[i].Index = i
		normalized, err := core.ValidateQuery(query)
		if err != nil {
			results[i].Query = strings.TrimSpace(query)
			results[i].Err = err
			continue
		}
		results[i].Query = normalized

		if _, seen := first[normalized]; seen {
			continue
		}
		first[normalized] = i
		if cached, ok := r.cache.Lookup(normalized); ok {
			results[i].Response = cached
			results[i].Cached = true
			continue
		}
		pending = append(pending, i)
	}

	tracker := NewProgressTracker(r.progress, len(pending), r.reportInterval)
	tracker.Start()
	r.logger.Info("starting batch", "queries", len(queries), "toSearch", len(pending))

	var wg sync.WaitGroup
	for _, i := range pending {
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			tracker.Done(true)
			continue
		}
		wg.Add(1)
		submitErr := r.pool.Submit(func() {
			defer wg.Done()
			results[i].Response, results[i].Err = r.search(ctx, results[i].Query)
			tracker.Done(results[i].Err != nil)
		})
		if submitErr != nil {
			wg.Done()
			results[i].Err = fmt.Errorf("failed to schedule search: %w", submitErr)
			tracker.Done(true)
		}
	}
	wg.Wait()
	tracker.Finish()

	// Later duplicates share the outcome of their first occurrence.
	for i := range results {
		if j, ok := first[results[i].Query]; ok && j != i && results[i].Err == nil {
			results[i].Response = results[j].Response
			results[i].Err = results[j].Err
			results[i].Cached = true
		}
	}

	report := Report{Results: results}
	for _, i := range pending {
		res := results[i]
		if res.Err != nil || res.Response == nil || len(res.Response.Candidates) == 0 {
			continue
		}
		if _, err := r.cache.Insert(ctx, res.Query, res.Response); err != nil {
			r.logger.Warn("search result not saved to history", "query", res.Query, "err", err)
		}
	}
	for _, res := range results {
		switch {
		case res.Err != nil:
			report.Failed++
		case res.Empty():
			report.Empty++
		default:
			report.Succeeded++
		}
		if res.Cached {
			report.Cached++
		}
	}

	r.logger.Info("batch finished",
		"succeeded", report.Succeeded,
		"empty", report.Empty,
		"failed", report.Failed,
		"cached", report.Cached)
	return report, ctx.Err()
}

func (r *Runner) search(ctx context.Context, query string) (*core.SearchResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := r.searcher.Search(ctx, query)
	if err != nil {
		r.logger.Debug("batch search failed", "query", query, "err", err)
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: empty body", core.ErrInvalidResponse)
	}
	core.NormalizeResponse(resp)
	return resp, nil
}

// ParseQueries reads one query per line. Blank lines and lines starting with
// '#' are skipped.
func ParseQueries(r io.Reader) ([]string, error) {
	var queries []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		queries = append(queries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read queries: %w", err)
	}
	return queries, nil
}
