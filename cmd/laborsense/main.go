// Copyright 2025 Helvetic Systems
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
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"

	"github.com/helvetic-systems/laborsense"
	"github.com/helvetic-systems/laborsense/ai"
	"github.com/helvetic-systems/laborsense/ai/openai"
	"github.com/helvetic-systems/laborsense/collectors"
	"github.com/helvetic-systems/laborsense/ingestion"
	"github.com/helvetic-systems/laborsense/reembed"
	"github.com/helvetic-systems/laborsense/relevance"
	"github.com/helvetic-systems/laborsense/store"
)

func main() {
	app := &cli.App{
		Name:  "laborsense",
		Usage: "Swiss labor market knowledge base for AI impact analysis",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Path to the data directory",
				Value:   "./data",
			},
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
				Name:      "ingest",
				Usage:     "Ingest documents from a directory into the knowledge base",
				ArgsUsage: "<directory>",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "source",
						Usage: "Source label stored with each document",
						Value: "manual",
					},
					&cli.BoolFlag{
						Name:  "no-embed",
						Usage: "Skip embedding, store lexical-only chunks",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search the knowledge base",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
						Value:   10,
					},
					&cli.StringFlag{
						Name:  "industry",
						Usage: "Filter by industry (aliases accepted)",
					},
					&cli.StringFlag{
						Name:  "canton",
						Usage: "Filter by canton code or name",
					},
					&cli.StringFlag{
						Name:  "timeframe",
						Usage: "Filter by timeframe (2024, 2020-2024, last_2_years)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the full response as JSON",
					},
				},
			},
			{
				Name:   "collect",
				Usage:  "Collect news articles from Swiss feeds and ingest them",
				Action: collectCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "sources",
						Usage: "Restrict to source keys (nzz, tagesanzeiger, srf, handelszeitung)",
					},
					&cli.BoolFlag{
						Name:  "no-ingest",
						Usage: "Only report collected articles, do not ingest",
					},
					&cli.StringFlag{
						Name:  "schedule",
						Usage: "Cron expression for periodic collection (e.g. \"0 */6 * * *\")",
					},
					&cli.DurationFlag{
						Name:  "retention",
						Usage: "Sweep documents older than this after each scheduled run (0 disables)",
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Backfill embeddings for documents stored without vectors",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of documents to embed per provider call",
						Value: 50,
					},
					&cli.IntFlag{
						Name:  "concurrency",
						Usage: "Number of batches embedded in parallel",
						Value: 4,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N documents",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:   "graph",
				Usage:  "Build the entity and impact graph from stored documents",
				Action: graphCommand,
			},
			{
				Name:   "stats",
				Usage:  "Print store and learning statistics",
				Action: statsCommand,
			},
			{
				Name:   "sweep",
				Usage:  "Remove news documents older than the retention window",
				Action: sweepCommand,
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:     "older-than",
						Usage:    "Age threshold, e.g. 2160h for 90 days",
						Required: true,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// aiConfigFromEnv builds the embedding configuration. Host and model default
// to the OpenAI API; the credential comes from OPENAI_API_KEY.
func aiConfigFromEnv() *ai.Config {
	cfg := ai.DefaultConfig()
	if host := os.Getenv("LABORSENSE_EMBEDDING_HOST"); host != "" {
		cfg.Host = host
	}
	if model := os.Getenv("LABORSENSE_EMBEDDING_MODEL"); model != "" {
		cfg.Model = model
	}
	return cfg
}

func openKnowledgeBase(c *cli.Context) (*laborsense.KnowledgeBase, error) {
	return laborsense.Open(c.String("data"), laborsense.WithAIConfig(aiConfigFromEnv()))
}

func ingestCommand(c *cli.Context) error {
	dir := c.Args().First()
	if dir == "" {
		return fmt.Errorf("directory argument is required")
	}

	kb, err := openKnowledgeBase(c)
	if err != nil {
		return err
	}
	defer kb.Close()

	pipeline := kb.NewIngestionPipeline()
	if c.Bool("no-embed") {
		pipeline = ingestion.NewPipeline(kb.Store())
	}

	results, err := pipeline.IngestDirectory(c.Context, dir, c.String("source"))
	if err != nil {
		return err
	}

	successful, chunks := 0, 0
	for _, result := range results {
		if result.Success {
			successful++
			chunks += result.ChunksCreated
		} else {
			fmt.Fprintf(os.Stderr, "failed: %s: %s\n", result.DocumentID, result.Error)
		}
	}
	fmt.Printf("Ingested %d/%d documents (%d chunks)\n", successful, len(results), chunks)
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if query == "" {
		return fmt.Errorf("query argument is required")
	}

	kb, err := openKnowledgeBase(c)
	if err != nil {
		return err
	}
	defer kb.Close()

	response := kb.Engine().Search(c.Context, relevance.Query{
		Text:      query,
		Limit:     c.Int("limit"),
		Industry:  c.String("industry"),
		Canton:    c.String("canton"),
		Timeframe: c.String("timeframe"),
	})

	if c.Bool("json") {
		return json.NewEncoder(os.Stdout).Encode(response)
	}

	fmt.Printf("%d results for %q\n\n", response.TotalResults, response.Query)
	for i, result := range response.Results {
		fmt.Printf("%2d. [%.2f] %s (%s)\n", i+1, result.Score, result.Title, result.ID)
		fmt.Printf("    %s\n", result.Snippet)
	}
	for _, suggestion := range response.Suggestions {
		fmt.Printf("Hint: %s\n", suggestion)
	}
	return nil
}

func collectCommand(c *cli.Context) error {
	if expr := c.String("schedule"); expr != "" {
		return runScheduledCollection(c, expr)
	}
	return runCollection(c)
}

func runCollection(c *cli.Context) error {
	kb, err := openKnowledgeBase(c)
	if err != nil {
		return err
	}
	defer kb.Close()

	return collectOnce(c.Context, c, kb)
}

func collectOnce(ctx context.Context, c *cli.Context, kb *laborsense.KnowledgeBase) error {
	cache, err := collectors.OpenCache(filepath.Join(c.String("data"), "collector-cache"))
	if err != nil {
		return err
	}
	defer cache.Close()

	opts := []collectors.CollectorOption{collectors.WithCache(cache)}
	if sources := c.StringSlice("sources"); len(sources) > 0 {
		opts = append(opts, collectors.WithSources(sources...))
	}

	result := collectors.NewCollector(opts...).Collect(ctx)
	fmt.Printf("Collected %d relevant articles (%d fetched, %d already known)\n",
		result.ArticlesRelevant, result.ArticlesFetched, result.ArticlesSkipped)
	for _, errMsg := range result.Errors {
		fmt.Fprintf(os.Stderr, "collect: %s\n", errMsg)
	}

	if c.Bool("no-ingest") || len(result.Articles) == 0 {
		return nil
	}

	results := kb.NewIngestionPipeline().IngestBatch(ctx, result.IngestDocuments())
	successful := 0
	for _, r := range results {
		if r.Success {
			successful++
		}
	}
	fmt.Printf("Ingested %d/%d articles\n", successful, len(results))
	return nil
}

// runScheduledCollection keeps collecting on the cron schedule until
// interrupted, sweeping old news documents after each run when a retention
// window is set.
func runScheduledCollection(c *cli.Context, expr string) error {
	kb, err := openKnowledgeBase(c)
	if err != nil {
		return err
	}
	defer kb.Close()

	logger := slog.Default().With("component", "scheduler")
	retention := c.Duration("retention")

	scheduler := cron.New()
	_, err = scheduler.AddFunc(expr, func() {
		if err := collectOnce(context.Background(), c, kb); err != nil {
			logger.Error("scheduled collection failed", "err", err)
		}
		if retention > 0 {
			removed := kb.Store().Sweep(retention)
			if removed > 0 {
				logger.Info("retention sweep", "removed", removed)
			}
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", expr, err)
	}

	logger.Info("scheduler started", "schedule", expr, "retention", retention)
	scheduler.Start()
	defer scheduler.Stop()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("scheduler stopping")
	return nil
}

func reembedCommand(c *cli.Context) error {
	aiConfig := aiConfigFromEnv()
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid embedding configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	config := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		Concurrency:    c.Int("concurrency"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	st := store.New(c.String("data"))
	defer st.Close()

	fmt.Fprintf(os.Stderr, "Data directory: %s\n", c.String("data"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", aiConfig.Host)
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", aiConfig.Model)
	fmt.Fprintln(os.Stderr)

	reembedder := reembed.NewReembedder(st, embedder, config, os.Stderr)
	if err := reembedder.Run(c.Context); err != nil {
		return fmt.Errorf("embedding backfill failed: %w", err)
	}
	return nil
}

func graphCommand(c *cli.Context) error {
	kb, err := openKnowledgeBase(c)
	if err != nil {
		return err
	}
	defer kb.Close()

	result := kb.BuildGraph()
	fmt.Printf("Processed %d documents\n", result.DocumentsProcessed)
	fmt.Printf("Entities: %d, impact scores: %d, relations: %d\n",
		result.EntitiesExtracted, result.ScoresComputed, result.RelationsCreated)
	return nil
}

func statsCommand(c *cli.Context) error {
	kb, err := openKnowledgeBase(c)
	if err != nil {
		return err
	}
	defer kb.Close()

	storeStats := kb.Store().Stats()
	learnStats := kb.Learner().Stats()

	fmt.Printf("Documents: %d\n", storeStats.DocumentCount)
	fmt.Printf("Relations: %d\n", storeStats.RelationCount)
	fmt.Printf("Index size: %d bytes\n", storeStats.IndexSize)
	fmt.Printf("Searches: %d, clicks: %d, feedback: %d\n",
		learnStats.TotalSearches, learnStats.TotalClicks, learnStats.TotalFeedback)
	fmt.Printf("Click rate: %.2f, avg feedback: %.2f\n",
		learnStats.AvgClickRate, learnStats.AvgFeedbackScore)
	for _, q := range learnStats.TopQueries {
		fmt.Printf("  %4dx %s\n", q.Count, q.Query)
	}
	return nil
}

func sweepCommand(c *cli.Context) error {
	kb, err := openKnowledgeBase(c)
	if err != nil {
		return err
	}
	defer kb.Close()

	removed := kb.Store().Sweep(c.Duration("older-than"))
	fmt.Printf("Removed %d documents\n", removed)
	return nil
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

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
