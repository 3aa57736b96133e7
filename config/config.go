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


package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultAPIURL is the address of a locally running search backend.
const DefaultAPIURL = "http://localhost:5000/api"

// Environment variables read by ApplyEnv.
const (
	EnvAPIURL  = "SONGFINDER_API_URL"
	EnvDataDir = "SONGFINDER_DATA_DIR"
	EnvRPS     = "SONGFINDER_RPS"
	EnvWorkers = "SONGFINDER_WORKERS"
)

// Config holds the client configuration.
type Config struct {
	// APIURL is the base URL of the search backend, without a trailing slash.
	APIURL string `yaml:"api_url"`

	// DataDir is where the search history database lives.
	DataDir string `yaml:"data_dir"`

	// RequestTimeout bounds each backend request. Zero means no client-side timeout.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// RequestsPerSecond caps outgoing requests. Zero means unlimited.
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// Burst is the number of requests allowed above the rate at once.
	Burst int `yaml:"burst"`

	// HealthRetries is the number of startup health checks before warning.
	HealthRetries int `yaml:"health_retries"`

	// HealthRetryDelay is the first delay between health checks; it doubles each time.
	HealthRetryDelay time.Duration `yaml:"health_retry_delay"`

	// Workers is the number of concurrent searches in batch mode.
	Workers int `yaml:"workers"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithAPIURL sets the backend base URL.
func WithAPIURL(u string) ConfigOption {
	return func(c *Config) {
		c.APIURL = u
	}
}

// WithDataDir sets the history database directory.
func WithDataDir(dir string) ConfigOption {
	return func(c *Config) {
		c.DataDir = dir
	}
}

// WithRequestTimeout sets the per-request timeout.
func WithRequestTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.RequestTimeout = d
	}
}

// WithRateLimit sets the client-side request rate limit.
func WithRateLimit(rps float64, burst int) ConfigOption {
	return func(c *Config) {
		c.RequestsPerSecond = rps
		c.Burst = burst
	}
}

// WithHealthRetries sets the startup health check budget.
func WithHealthRetries(attempts int, delay time.Duration) ConfigOption {
	return func(c *Config) {
		c.HealthRetries = attempts
		c.HealthRetryDelay = delay
	}
}

// WithWorkers sets the batch worker count.
func WithWorkers(n int) ConfigOption {
	return func(c *Config) {
		c.Workers = n
	}
}

// DefaultConfig returns a Config for a backend running on the local machine.
func DefaultConfig() *Config {
	workers := runtime.NumCPU() / 2
	if workers < 1 {
		workers = 1
	}
	return &Config{
		APIURL:           DefaultAPIURL,
		DataDir:          DefaultDataDir(),
		Burst:            1,
		HealthRetries:    3,
		HealthRetryDelay: 500 * time.Millisecond,
		Workers:          workers,
	}
}

// DefaultDataDir returns $XDG_DATA_HOME/songfinder, falling back to
// ~/.local/share/songfinder.
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "songfinder")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".", ".songfinder")
	}
	return filepath.Join(home, ".local", "share", "songfinder")
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithAPIURL("http://search.local:5000/api"),
//	    WithRequestTimeout(30*time.Second),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// LoadFile reads a YAML configuration file on top of the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set. Missing
// files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: loading %s: %w", path, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from SONGFINDER_* environment variables.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvAPIURL); ok {
		c.APIURL = v
	}
	if v, ok := os.LookupEnv(EnvDataDir); ok {
		c.DataDir = v
	}
	if v, ok := os.LookupEnv(EnvRPS); ok {
		rps, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvRPS, err)
		}
		c.RequestsPerSecond = rps
	}
	if v, ok := os.LookupEnv(EnvWorkers); ok {
		workers, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvWorkers, err)
		}
		c.Workers = workers
	}
	return nil
}

// Normalize puts the configuration in canonical form: surrounding whitespace
// and trailing slashes are removed from the URL and the data directory is cleaned.
func (c *Config) Normalize() {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	c.DataDir = strings.TrimSpace(c.DataDir)
	if c.DataDir != "" {
		c.DataDir = filepath.Clean(c.DataDir)
	}
	if c.Burst < 1 {
		c.Burst = 1
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.APIURL == "" {
		return errors.New("config: APIURL is required")
	}
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("config: APIURL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("config: APIURL must use http or https, got %q", c.APIURL)
	}
	if u.Host == "" {
		return fmt.Errorf("config: APIURL has no host: %q", c.APIURL)
	}
	if c.DataDir == "" {
		return errors.New("config: DataDir is required")
	}
	if c.RequestTimeout < 0 {
		return errors.New("config: RequestTimeout cannot be negative")
	}
	if c.RequestsPerSecond < 0 {
		return errors.New("config: RequestsPerSecond cannot be negative")
	}
	if c.HealthRetries < 1 {
		return errors.New("config: HealthRetries must be at least 1")
	}
	if c.HealthRetryDelay < 0 {
		return errors.New("config: HealthRetryDelay cannot be negative")
	}
	if c.Workers < 1 {
		return errors.New("config: Workers must be at least 1")
	}
	return nil
}
