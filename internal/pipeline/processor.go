package pipeline

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/contract-extractor/constants"
	"github.com/joseph-ayodele/contract-extractor/internal/common"
	"github.com/joseph-ayodele/contract-extractor/internal/entity"
	"github.com/joseph-ayodele/contract-extractor/internal/ingest"
	"github.com/joseph-ayodele/contract-extractor/internal/repository"
)

// Extractor is the single-document contract Processor drives; *Pipeline implements it.
type Extractor interface {
	Extract(ctx context.Context, path string) (entity.ContractRecord, string, error)
}

// Result is the outcome of processing one file.
type Result struct {
	Path     string
	Hash     []byte
	RunID    uuid.UUID
	Record   entity.ContractRecord
	FullText string
	Cached   bool // served from the run store without re-extracting
}

// Processor hashes a file, reuses a stored run for identical content when allowed,
// otherwise extracts it and records the run. The store is optional.
type Processor struct {
	logger    *slog.Logger
	extractor Extractor
	runs      repository.RunRepository
}

func NewProcessor(logger *slog.Logger, extractor Extractor, runs repository.RunRepository) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{logger: logger, extractor: extractor, runs: runs}
}

// ProcessFile extracts path. With force == false a previous successful run for the same
// content is returned instead. Document failures are stored as FAILED runs and returned.
func (p *Processor) ProcessFile(ctx context.Context, path string, force bool) (Result, error) {
	hash, err := ingest.HashFile(path)
	if err != nil {
		return Result{Path: path}, common.DocumentReadError(path, err)
	}
	hashHex := hex.EncodeToString(hash)

	if p.runs != nil && !force {
		prev, err := p.runs.GetByHash(ctx, hash)
		switch {
		case err == nil && prev.Status == constants.RunStatusOK:
			p.logger.Info("processor.cache.hit", "path", path, "hash", hashHex, "run_id", prev.ID)
			return Result{
				Path:     path,
				Hash:     hash,
				RunID:    prev.ID,
				Record:   prev.Record,
				FullText: prev.FullText,
				Cached:   true,
			}, nil
		case err != nil && !errors.Is(err, common.ErrNotFound):
			p.logger.Warn("processor.cache.lookup_failed", "path", path, "error", err)
		}
	}

	rec, fullText, err := p.extractor.Extract(ctx, path)
	if err != nil {
		p.logger.Error("processor.extract.failed", "path", path, "hash", hashHex, "err", err)
		if p.runs != nil && common.IsDocumentError(err) {
			p.save(ctx, entity.NewFailedRun(path, hash, err))
		}
		return Result{Path: path, Hash: hash}, err
	}

	res := Result{Path: path, Hash: hash, Record: rec, FullText: fullText}
	if p.runs != nil {
		run := entity.NewSuccessfulRun(path, hash, rec, fullText)
		if p.save(ctx, run) {
			res.RunID = run.ID
		}
	}
	p.logger.Debug("processor.extract.ok", "path", path, "hash", hashHex, "run_id", res.RunID)
	return res, nil
}

// save persists run; a store failure does not fail the extraction.
func (p *Processor) save(ctx context.Context, run entity.ExtractionRun) bool {
	if err := p.runs.Save(ctx, run); err != nil {
		p.logger.Error("processor.save.failed", "path", run.SourcePath, "status", run.Status, "err", err)
		return false
	}
	return true
}
