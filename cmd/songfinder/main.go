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
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/songfinder"
	"github.com/poiesic/songfinder/config"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "songfinder",
		Usage: "Find songs by describing them",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
				EnvVars: []string{"SONGFINDER_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log output format (text, json)",
				Value:   "text",
				EnvVars: []string{"SONGFINDER_LOG_FORMAT"},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to a .env file; missing files are ignored",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  "api-url",
				Usage: "Search backend base URL (overrides config and " + config.EnvAPIURL + ")",
			},
			&cli.StringFlag{
				Name:  "data-dir",
				Usage: "History database directory (overrides config and " + config.EnvDataDir + ")",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Per-request timeout, 0 for none",
			},
		},
		Before:         setupLogger,
		DefaultCommand: "tui",
		Commands: []*cli.Command{
			{
				Name:   "tui",
				Usage:  "Run the interactive search UI",
				Action: tuiCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "plain",
						Usage: "Read one query per line instead of running the full-screen UI",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search once and print the result",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "full",
						Usage: "Print complete lyrics instead of previews",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the raw response as JSON",
					},
				},
			},
			{
				Name:   "history",
				Usage:  "List saved searches, newest first",
				Action: historyCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print entries as JSON",
					},
				},
			},
			{
				Name:      "replay",
				Usage:     "Show a saved search without contacting the backend",
				ArgsUsage: "<n>",
				Action:    replayCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "full",
						Usage: "Print complete lyrics instead of previews",
					},
				},
			},
			{
				Name:   "clear",
				Usage:  "Delete all saved searches",
				Action: clearCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Do not ask for confirmation",
					},
				},
			},
			{
				Name:      "feedback",
				Usage:     "Rate the song selected for a query",
				ArgsUsage: "<like|dislike> <query>",
				Action:    feedbackCommand,
			},
			{
				Name:   "health",
				Usage:  "Check that the search backend is ready",
				Action: healthCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "retries",
						Usage: "Number of attempts, 0 uses the configured value",
					},
				},
			},
			{
				Name:   "batch",
				Usage:  "Search every query in a file, one per line",
				Action: batchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "input",
						Aliases: []string{"i"},
						Usage:   "Query file, - for stdin",
						Value:   "-",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent searches, 0 uses the configured value",
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N searches",
						Value: 10,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print results as JSON lines",
					},
				},
			},
		},
	}
}

// setupLogger installs the default logger described by --log-level and
// --log-format, writing to the app's error stream.
func setupLogger(c *cli.Context) error {
	handler, err := newLogHandler(c.App.ErrWriter, c.String("log-level"), c.String("log-format"))
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

func newLogHandler(w io.Writer, levelName, format string) (slog.Handler, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelName)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelName)
	}

	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.NewTextHandler(w, opts), nil
	case "json":
		return slog.NewJSONHandler(w, opts), nil
	default:
		return nil, fmt.Errorf("invalid log format %q: must be text or json", format)
	}
}

// loadConfig layers the configuration: defaults, config file, .env and
// SONGFINDER_* variables, then command-line flags.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if err := config.LoadDotEnv(c.String("env-file")); err != nil {
		return nil, err
	}

	cfg := config.DefaultConfig()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if c.IsSet("api-url") {
		cfg.APIURL = c.String("api-url")
	}
	if c.IsSet("data-dir") {
		cfg.DataDir = c.String("data-dir")
	}
	if c.IsSet("timeout") {
		cfg.RequestTimeout = c.Duration("timeout")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func openClient(c *cli.Context) (*songfinder.Client, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	slog.Debug("configuration loaded", "apiUrl", cfg.APIURL, "dataDir", cfg.DataDir)

	client, err := songfinder.NewClient(c.Context, cfg, songfinder.WithLogger(slog.Default()))
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return client, nil
}

// errUsage marks a command invoked with the wrong arguments.
var errUsage = errors.New("usage")

func usageError(c *cli.Context) error {
	return fmt.Errorf("%w: %s %s %s", errUsage, c.App.Name, c.Command.Name, c.Command.ArgsUsage)
}

const healthTimeout = 30 * time.Second
