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
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/webrag"
	"github.com/poiesic/webrag/ai"
	"github.com/poiesic/webrag/fetch"
	"github.com/poiesic/webrag/mcpserver"
	"github.com/poiesic/webrag/pipeline"
)

const version = "0.1.0"

func main() {
	app := &cli.App{
		Name:    "webrag",
		Usage:   "Retrieval-augmented web search over an MCP stdio transport",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the rag_search and fetch_urls tools over stdio",
				Action: serveCommand,
				Flags:  serviceFlags(),
			},
			{
				Name:      "search",
				Usage:     "Run a single retrieval query and print the results as JSON",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: append(serviceFlags(),
					&cli.IntFlag{
						Name:  "num-results",
						Usage: "Number of search results to consider",
						Value: pipeline.DefaultNumResults,
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of top-ranked results to fetch content for",
						Value: pipeline.DefaultTopK,
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// serviceFlags are shared between serve and search.
func serviceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:  "summary-model",
			Usage: "Summarization model name",
			Value: "qwen2.5:3b",
		},
		&cli.BoolFlag{
			Name:  "summarize",
			Usage: "Summarize fetched content with the summary model",
		},
		&cli.IntFlag{
			Name:  "fetch-concurrency",
			Usage: "Maximum number of concurrent page fetches",
			Value: fetch.DefaultConcurrency,
		},
		&cli.DurationFlag{
			Name:  "fetch-timeout",
			Usage: "Timeout for fetching a single page",
			Value: fetch.DefaultTimeout,
		},
		&cli.IntFlag{
			Name:  "max-content-length",
			Usage: "Maximum characters of extracted text per page (0 disables truncation)",
			Value: fetch.DefaultMaxContentLength,
		},
		&cli.DurationFlag{
			Name:  "deadline",
			Usage: "End-to-end deadline for a pipeline run (0 disables)",
			Value: 0,
		},
	}
}

func serveCommand(c *cli.Context) error {
	service, err := newService(c)
	if err != nil {
		return err
	}
	defer service.Close()

	srv := mcpserver.New(service, version)

	slog.Info("serving MCP tools on stdio",
		"embedding_model", c.String("embedding-model"),
		"summarize", c.Bool("summarize"))

	if err := mcpserver.ServeStdio(srv); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("a query argument is required")
	}

	service, err := newService(c)
	if err != nil {
		return err
	}
	defer service.Close()

	result, err := service.Search(context.Background(), query, c.Int("num-results"), c.Int("top-k"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// newService builds a fully wired service from the CLI flags. The
// embedding model is probed here, so flag mistakes surface immediately.
func newService(c *cli.Context) (*webrag.Service, error) {
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithSummaryModel(c.String("summary-model")),
	)

	fetchOpts := []fetch.Option{
		fetch.WithConcurrency(c.Int("fetch-concurrency")),
		fetch.WithTimeout(c.Duration("fetch-timeout")),
		fetch.WithMaxContentLength(c.Int("max-content-length")),
	}

	var pipelineOpts []pipeline.Option
	if deadline := c.Duration("deadline"); deadline > 0 {
		pipelineOpts = append(pipelineOpts, pipeline.WithDeadline(deadline))
	}

	service, err := webrag.NewService(
		webrag.WithAIConfig(aiConfig),
		webrag.WithSummarization(c.Bool("summarize")),
		webrag.WithFetchOptions(fetchOpts...),
		webrag.WithPipelineOptions(pipelineOpts...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return service, nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// The MCP transport owns stdout, so logs go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
