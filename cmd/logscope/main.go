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
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/poiesic/logscope"
	"github.com/poiesic/logscope/config"
	"github.com/urfave/cli/v2"
)

const configKey = "config"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "logscope",
		Usage: "Ask questions about medical device logs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file",
				EnvVars: []string{"LOGSCOPE_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log output format (text, json)",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory",
			},
			&cli.StringFlag{
				Name:  "storage",
				Usage: "Storage backend (badger, qdrant)",
			},
			&cli.StringFlag{
				Name:  "provider",
				Usage: "AI provider (openai, ollama)",
			},
			&cli.StringFlag{
				Name:  "embedding-host",
				Usage: "Embedding service host URL",
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Embedding model name",
			},
			&cli.StringFlag{
				Name:  "generation-host",
				Usage: "Text generation service host URL",
			},
			&cli.StringFlag{
				Name:  "generation-model",
				Usage: "Text generation model name",
			},
			&cli.IntFlag{
				Name:  "dimension",
				Usage: "Embedding dimension produced by the embedding model",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			askCommand(),
			loadCommand(),
			uniqueCommand(),
			reembedCommand(),
		},
	}
}

// setup loads the configuration, applies flag overrides and installs the
// default logger.
func setup(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	applyFlags(c, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := setupLogger(cfg); err != nil {
		return err
	}
	if c.App.Metadata == nil {
		c.App.Metadata = map[string]interface{}{}
	}
	c.App.Metadata[configKey] = cfg
	return nil
}

func applyFlags(c *cli.Context, cfg *config.Config) {
	str := func(name string, dst *string) {
		if c.IsSet(name) {
			*dst = c.String(name)
		}
	}
	str("log-level", &cfg.Log.Level)
	str("log-format", &cfg.Log.Format)
	str("db", &cfg.Storage.Path)
	str("storage", &cfg.Storage.Backend)
	str("provider", &cfg.AI.Provider)
	str("embedding-model", &cfg.AI.EmbeddingModel)
	str("generation-model", &cfg.AI.GenerationModel)
	str("generation-host", &cfg.AI.GenerationHost)
	if c.IsSet("embedding-host") {
		cfg.AI.EmbeddingHost = c.String("embedding-host")
		if !c.IsSet("generation-host") && cfg.AI.GenerationHost == config.Default().AI.GenerationHost {
			cfg.AI.GenerationHost = cfg.AI.EmbeddingHost
		}
	}
	if c.IsSet("dimension") {
		cfg.AI.Dimension = c.Int("dimension")
	}
}

func setupLogger(cfg *config.Config) error {
	level := strings.ToLower(cfg.Log.Level)
	switch level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", level)
	}

	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler
	if cfg.JSONLogs() {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

func settings(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata[configKey].(*config.Config); ok {
		return cfg
	}
	return config.Default()
}

func openDatabase(ctx context.Context, c *cli.Context) (*logscope.Database, error) {
	db, err := logscope.Open(ctx, settings(c))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(c *cli.Context) (context.Context, context.CancelFunc) {
	parent := c.Context
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
