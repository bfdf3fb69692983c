// Package pipeline turns one contract document into a ContractRecord by running the text,
// pattern, QA, clause and object extractors in a fixed order.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/contract-extractor/constants"
	"github.com/joseph-ayodele/contract-extractor/internal/common"
	"github.com/joseph-ayodele/contract-extractor/internal/entity"
	"github.com/joseph-ayodele/contract-extractor/internal/fields"
	"github.com/joseph-ayodele/contract-extractor/internal/qa"
)

// State is a stage of one Extract call. States advance linearly.
type State int

const (
	StateInitialized State = iota
	StateTextExtracted
	StateFieldsPopulated
	StateMerged
	StateDone
)

func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateTextExtracted:
		return "text_extracted"
	case StateFieldsPopulated:
		return "fields_populated"
	case StateMerged:
		return "merged"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// DocumentReader is the text access the pipeline needs; *textextract.Extractor implements it.
type DocumentReader interface {
	ExtractFullText(ctx context.Context, path string) (string, error)
	ExtractFirstPageText(ctx context.Context, path string) (string, error)
}

// Asker answers a question over a whole document; *qa.Aggregator implements it.
type Asker interface {
	Ask(ctx context.Context, fullText, question string) (qa.Candidate, bool)
}

// Config holds per-request limits.
type Config struct {
	RequestTimeout   time.Duration // 0 -> no limit beyond ctx
	LocationQuestion string        // default common.DefaultLocationQuestion
}

type Pipeline struct {
	reader DocumentReader
	asker  Asker
	object *fields.ObjectExtractor
	rules  []fields.Rule
	cfg    Config
	logger *slog.Logger
}

func New(reader DocumentReader, asker Asker, cfg Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.LocationQuestion == "" {
		cfg.LocationQuestion = common.DefaultLocationQuestion
	}
	return &Pipeline{
		reader: reader,
		asker:  asker,
		object: fields.NewObjectExtractor(reader, logger),
		rules:  fields.Rules,
		cfg:    cfg,
		logger: logger,
	}
}

// Extract runs the whole extraction for the document at path and returns the record with
// the full text it was built from. Only document-level failures are returned
// (common.ErrDocumentRead, common.ErrEmptyDocument) plus the context error when the
// request deadline expires; individual field misses leave the field absent.
func (p *Pipeline) Extract(ctx context.Context, path string) (entity.ContractRecord, string, error) {
	if p.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.RequestTimeout)
		defer cancel()
	}
	start := time.Now()
	p.enter(path, StateInitialized)

	fullText, err := p.reader.ExtractFullText(ctx, path)
	if err != nil {
		p.logger.Warn("pipeline.extract.text_failed", "path", path, "error", err)
		return entity.ContractRecord{}, "", err
	}
	if strings.TrimSpace(fullText) == "" {
		p.logger.Warn("pipeline.extract.empty_document", "path", path)
		return entity.ContractRecord{}, "", common.EmptyDocumentError(path)
	}
	p.enter(path, StateTextExtracted)

	b := entity.NewRecordBuilder()
	for _, r := range p.rules {
		if v, ok := fields.ExtractField(fullText, r.Pattern, r.Group); ok {
			b.Set(r.Field, v, entity.SourcePattern)
		}
	}

	if cand, ok := p.asker.Ask(ctx, fullText, p.cfg.LocationQuestion); ok && cand.Text != "" {
		b.Set(constants.Location, cand.Text, entity.SourceQA)
	}

	client, supplier, clientOK, supplierOK := fields.ExtractParties(fullText)
	if clientOK {
		if v := fields.FirstLine(client); v != "" {
			b.Set(constants.Client, v, entity.SourceClause)
		}
	}
	if supplierOK {
		if v := fields.StripLabel(fields.FirstLine(supplier)); v != "" {
			b.Set(constants.Supplier, v, entity.SourceClause)
		}
	}

	if obj, ok := p.object.Extract(ctx, path); ok {
		b.Set(constants.Object, obj, entity.SourceHeuristic)
	}
	p.enter(path, StateFieldsPopulated)

	if err := ctx.Err(); err != nil {
		p.logger.Warn("pipeline.extract.deadline", "path", path, "error", err)
		return entity.ContractRecord{}, "", fmt.Errorf("extract %s: %w", path, err)
	}

	b.Update(constants.TotalAmount, fields.NormalizeAmount)
	b.Update(constants.Currency, fields.NormalizeCurrency)
	rec := b.Build()
	p.enter(path, StateMerged)

	p.logger.Info("pipeline.extract.ok",
		"path", path,
		"text_bytes", len(fullText),
		"sources", rec.Sources(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	p.enter(path, StateDone)
	return rec, fullText, nil
}

// AnswerFreeform asks question against previously extracted text.
func (p *Pipeline) AnswerFreeform(ctx context.Context, fullText, question string) (string, bool) {
	if p.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.RequestTimeout)
		defer cancel()
	}
	cand, ok := p.asker.Ask(ctx, fullText, question)
	if !ok || cand.Text == "" {
		return "", false
	}
	return cand.Text, true
}

func (p *Pipeline) enter(path string, s State) {
	p.logger.Debug("pipeline.state", "path", path, "state", s.String())
}
