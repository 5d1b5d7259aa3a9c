// Copyright 2025 Quarry Labs
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
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/quarrylabs/corpus"
	"github.com/quarrylabs/corpus/ai"
	"github.com/quarrylabs/corpus/core"
	"github.com/quarrylabs/corpus/ingestion"
	"github.com/quarrylabs/corpus/retrieval"
	"github.com/urfave/cli/v2"
)

func main() {
	// Missing .env files are fine; flags and real env still apply.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "corpus",
		Usage: "Ingest documents, media, and websites into a searchable corpus",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory",
				EnvVars: []string{"CORPUS_DB"},
				Value:   "./corpus_db",
			},
			&cli.StringFlag{
				Name:    "ai-host",
				Usage:   "OpenAI-compatible service host URL",
				EnvVars: []string{"CORPUS_AI_HOST"},
				Value:   "http://localhost:11434/v1",
			},
			&cli.StringFlag{
				Name:    "embedding-model",
				Usage:   "Embedding model name",
				EnvVars: []string{"CORPUS_EMBEDDING_MODEL"},
				Value:   "embeddinggemma",
			},
			&cli.StringFlag{
				Name:    "chat-model",
				Usage:   "Chat model name for generation and translation",
				EnvVars: []string{"CORPUS_CHAT_MODEL"},
				Value:   "qwen2.5:3b",
			},
			&cli.StringFlag{
				Name:    "transcription-model",
				Usage:   "Transcription model name",
				EnvVars: []string{"CORPUS_TRANSCRIPTION_MODEL"},
				Value:   "whisper-1",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest a document file",
				ArgsUsage: "<file>",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "media-type",
						Usage: "MIME type of the file (detected from extension if empty)",
					},
				},
			},
			{
				Name:      "media",
				Usage:     "Transcribe (and optionally translate) a media file",
				ArgsUsage: "<file>",
				Action:    mediaCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "media-type",
						Usage: "MIME type of the file (detected from extension if empty)",
					},
					&cli.StringFlag{
						Name:  "language",
						Usage: "Target language for translation (no translation if empty)",
					},
				},
			},
			{
				Name:      "index",
				Usage:     "Crawl and index a website",
				ArgsUsage: "<url>",
				Action:    indexCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "max-pages",
						Usage: "Maximum number of pages to crawl",
						Value: ingestion.DefaultMaxPages,
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Ask a question over the corpus",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "kind",
						Usage: "Scope to a source kind (document, media, website, website_page)",
					},
					&cli.Uint64Flag{
						Name:  "source",
						Usage: "Scope to a single source id",
					},
				},
			},
			{
				Name:   "history",
				Usage:  "Show the most recent conversation turns",
				Action: historyCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of turns to show",
						Value: 10,
					},
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a source and its chunks",
				ArgsUsage: "<kind> <id>",
				Action:    deleteCommand,
			},
			{
				Name:      "reingest",
				Usage:     "Rechunk and reembed a stored source",
				ArgsUsage: "<kind> <id>",
				Action:    reingestCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openDatabase(c *cli.Context) (*corpus.Database, error) {
	config := ai.NewConfig(
		ai.WithHost(c.String("ai-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithChatModel(c.String("chat-model")),
		ai.WithTranscriptionModel(c.String("transcription-model")),
	)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	return corpus.NewDatabase(c.String("db"), corpus.WithAIConfig(config))
}

func resolveMediaType(c *cli.Context, path string) string {
	if mt := c.String("media-type"); mt != "" {
		return mt
	}
	if mt := mime.TypeByExtension(filepath.Ext(path)); mt != "" {
		return mt
	}
	return "text/plain"
}

func ingestCommand(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("file path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Release()

	source, err := pipeline.IngestDocument(
		context.Background(), filepath.Base(path), data, resolveMediaType(c, path))
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("Ingested document %q (%d)\n", source.Title, source.Id)
	return nil
}

func mediaCommand(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("file path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Release()

	source, err := pipeline.IngestMedia(
		context.Background(), filepath.Base(path), data,
		resolveMediaType(c, path), c.String("language"))
	if err != nil {
		return fmt.Errorf("media ingestion failed: %w", err)
	}

	fmt.Printf("Ingested media %q (%d)\n", source.Title, source.Id)
	return nil
}

func indexCommand(c *cli.Context) error {
	startURL := c.Args().First()
	if startURL == "" {
		return fmt.Errorf("start URL is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Release()

	website, pages, err := pipeline.IndexWebsite(context.Background(), startURL, c.Int("max-pages"))
	if err != nil {
		return fmt.Errorf("website indexing failed: %w", err)
	}

	fmt.Printf("Indexed website %q (%d) with %d pages\n", website.Title, website.Id, len(pages))
	return nil
}

func askCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("question is required")
	}

	scope, err := parseScope(c)
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	asst, err := db.NewAssistant()
	if err != nil {
		return err
	}

	answer, err := asst.Ask(context.Background(), question, scope)
	if err != nil {
		return fmt.Errorf("question failed: %w", err)
	}

	fmt.Println(answer.Text)
	return nil
}

func historyCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	asst, err := db.NewAssistant()
	if err != nil {
		return err
	}

	turns, err := asst.History(context.Background(), c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	for _, turn := range turns {
		fmt.Printf("[%s] %s: %s\n",
			turn.Timestamp.Format("2006-01-02 15:04"), turn.Speaker, turn.Contents)
	}
	return nil
}

func deleteCommand(c *cli.Context) error {
	kind, id, err := parseSourceArgs(c)
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.SourceRepository().DeleteSource(context.Background(), kind, id); err != nil {
		return fmt.Errorf("failed to delete source: %w", err)
	}

	fmt.Printf("Deleted %s %d\n", kind, id)
	return nil
}

func reingestCommand(c *cli.Context) error {
	kind, id, err := parseSourceArgs(c)
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Release()

	if err := pipeline.ReingestSource(context.Background(), kind, id); err != nil {
		return fmt.Errorf("reingestion failed: %w", err)
	}

	fmt.Printf("Reingested %s %d\n", kind, id)
	return nil
}

func parseScope(c *cli.Context) (*retrieval.Scope, error) {
	kindStr := c.String("kind")
	sourceId := c.Uint64("source")
	if kindStr == "" && sourceId == 0 {
		return nil, nil
	}
	if kindStr == "" {
		return nil, fmt.Errorf("source scope requires a kind")
	}

	kind, err := parseKind(kindStr)
	if err != nil {
		return nil, err
	}
	return &retrieval.Scope{Kind: kind, SourceId: core.ID(sourceId)}, nil
}

func parseSourceArgs(c *cli.Context) (core.SourceKind, core.ID, error) {
	if c.Args().Len() != 2 {
		return 0, 0, fmt.Errorf("expected <kind> <id> arguments")
	}

	kind, err := parseKind(c.Args().Get(0))
	if err != nil {
		return 0, 0, err
	}

	id, err := strconv.ParseUint(c.Args().Get(1), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid source id %q", c.Args().Get(1))
	}
	return kind, core.ID(id), nil
}

func parseKind(s string) (core.SourceKind, error) {
	switch strings.ToLower(s) {
	case "document":
		return core.SourceKindDocument, nil
	case "media":
		return core.SourceKindMedia, nil
	case "website":
		return core.SourceKindWebsite, nil
	case "website_page", "page":
		return core.SourceKindPage, nil
	default:
		return 0, fmt.Errorf("invalid source kind %q: must be one of document, media, website, website_page", s)
	}
}

func setup(c *cli.Context) error {
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
