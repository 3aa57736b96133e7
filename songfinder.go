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


package songfinder

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/poiesic/songfinder/api"
	"github.com/poiesic/songfinder/batch"
	"github.com/poiesic/songfinder/config"
	"github.com/poiesic/songfinder/history"
	"github.com/poiesic/songfinder/session"
	"github.com/poiesic/songfinder/storage"
	"github.com/poiesic/songfinder/storage/badger"
	"github.com/poiesic/songfinder/tui"
)

// Client wires the search backend, the persistent history and the session
// factories together from a Config.
type Client struct {
	cfg    *config.Config
	store  *badger.Store
	cache  *history.Cache
	api    *api.Client
	logger *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*clientOptions)

type clientOptions struct {
	logger     *slog.Logger
	httpClient *http.Client
	inMemory   bool
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// WithHTTPClient sets the HTTP client used to reach the backend.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(o *clientOptions) {
		o.httpClient = hc
	}
}

// WithInMemoryHistory keeps the history in memory only; nothing is written to DataDir.
func WithInMemoryHistory() ClientOption {
	return func(o *clientOptions) {
		o.inMemory = true
	}
}

// NewClient validates cfg, opens the history store and loads the saved history.
func NewClient(ctx context.Context, cfg *config.Config, opts ...ClientOption) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &clientOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}

	apiOpts := []api.Option{
		api.WithTimeout(cfg.RequestTimeout),
		api.WithRateLimit(cfg.RequestsPerSecond, cfg.Burst),
		api.WithLogger(options.logger),
	}
	if options.httpClient != nil {
		apiOpts = append(apiOpts, api.WithHTTPClient(options.httpClient))
	}
	apiClient, err := api.NewClient(cfg.APIURL, apiOpts...)
	if err != nil {
		return nil, err
	}

	var store *badger.Store
	if options.inMemory {
		store, err = badger.NewMemoryStore()
	} else {
		store, err = badger.NewStore(cfg.DataDir, options.logger)
	}
	if err != nil {
		return nil, err
	}

	historyStore, err := storage.NewHistoryStore(store, storage.WithLogger(options.logger))
	if err != nil {
		store.Close()
		return nil, err
	}

	cache, err := history.NewCache(ctx, historyStore, history.WithLogger(options.logger))
	if err != nil {
		store.Close()
		return nil, err
	}

	return &Client{
		cfg:    cfg,
		store:  store,
		cache:  cache,
		api:    apiClient,
		logger: options.logger,
	}, nil
}

// Close closes the history store.
func (c *Client) Close() error {
	if err := c.store.Close(); err != nil {
		c.logger.Error("error closing history store", "err", err)
		return err
	}
	return nil
}

// Config returns the validated configuration.
func (c *Client) Config() *config.Config {
	return c.cfg
}

// API returns the backend client.
func (c *Client) API() *api.Client {
	return c.api
}

// History returns the search history cache.
func (c *Client) History() *history.Cache {
	return c.cache
}

// CheckHealth checks the backend with the configured retry budget.
func (c *Client) CheckHealth(ctx context.Context) error {
	_, err := c.api.CheckHealth(ctx, c.cfg.HealthRetries, c.cfg.HealthRetryDelay)
	return err
}

// NewSession creates an interactive session over the shared history.
func (c *Client) NewSession(opts ...session.Option) (*session.Session, error) {
	opts = append([]session.Option{session.WithLogger(c.logger)}, opts...)
	return session.New(c.cache, opts...)
}

// NewBatchRunner creates a batch runner sized by the configured worker count.
// Call Release on the runner when done.
func (c *Client) NewBatchRunner(opts ...batch.Option) (*batch.Runner, error) {
	opts = append([]batch.Option{
		batch.WithPoolSize(c.cfg.Workers),
		batch.WithLogger(c.logger),
	}, opts...)
	return batch.NewRunner(c.api, c.cache, opts...)
}

// NewApp creates the terminal UI over a new session.
func (c *Client) NewApp(ctx context.Context) (tui.App, error) {
	s, err := c.NewSession()
	if err != nil {
		return tui.App{}, err
	}
	return tui.NewApp(tui.AppConfig{
		Context:     ctx,
		Session:     s,
		Searcher:    c.api,
		Feedback:    c.api,
		CheckHealth: c.CheckHealth,
		Logger:      c.logger,
	})
}
