// Package app wires configuration into the extraction pipeline, processor and run store
// shared by the daemon and the CLI.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/joseph-ayodele/contract-extractor/internal/common"
	"github.com/joseph-ayodele/contract-extractor/internal/pipeline"
	"github.com/joseph-ayodele/contract-extractor/internal/qa"
	"github.com/joseph-ayodele/contract-extractor/internal/repository"
	"github.com/joseph-ayodele/contract-extractor/internal/textextract"
)

type App struct {
	Config    *common.Config
	Pipeline  *pipeline.Pipeline
	Processor *pipeline.Processor
	Store     repository.Store // nil when no database is configured

	logger *slog.Logger
}

// New validates cfg and builds the components. The QA provider is constructed lazily on
// the first question.
func New(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	renderer, err := textextract.NewRenderer(cfg.PDF, logger)
	if err != nil {
		return nil, fmt.Errorf("pdf renderer: %w", err)
	}
	reader := textextract.NewExtractor(renderer, logger)

	answerer := qa.NewLazy(func() (qa.Answerer, error) {
		return qa.NewAnswerer(cfg.QA, logger)
	})
	asker := qa.NewAggregator(answerer, qa.Config{
		MaxWords:     cfg.QA.MaxWords,
		Concurrency:  cfg.QA.Concurrency,
		ChunkTimeout: cfg.QA.ChunkTimeout,
	}, logger)

	pipe := pipeline.New(reader, asker, pipeline.Config{
		RequestTimeout:   cfg.Pipeline.RequestTimeout,
		LocationQuestion: cfg.Pipeline.LocationQuestion,
	}, logger)

	store, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("open run store: %w", err)
	}
	var runs repository.RunRepository
	if store != nil {
		runs = store
	}

	logger.Info("app.ready", "pdf_backend", renderer.Name(), "qa_provider", cfg.QA.Provider,
		"database", cfg.Database.Driver)
	return &App{
		Config:    cfg,
		Pipeline:  pipe,
		Processor: pipeline.NewProcessor(logger, pipe, runs),
		Store:     store,
		logger:    logger,
	}, nil
}

func (a *App) Close() {
	repository.Close(a.Store, a.logger)
}

// NewLogger returns a JSON logger, or a text logger without time and level keys.
func NewLogger(w io.Writer, verbose, jsonLogs bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if jsonLogs {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Remove time and level attributes, keep message and other variables
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}
