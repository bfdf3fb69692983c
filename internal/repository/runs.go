package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/contract-extractor/constants"
	"github.com/joseph-ayodele/contract-extractor/internal/entity"
)

// RunRepository stores extraction runs keyed by document content hash.
type RunRepository interface {
	Save(ctx context.Context, run entity.ExtractionRun) error
	// GetByHash returns the newest run for hash or an error wrapping common.ErrNotFound.
	GetByHash(ctx context.Context, hash []byte) (entity.ExtractionRun, error)
	// List returns up to limit runs, newest first. limit <= 0 means 100.
	List(ctx context.Context, limit int) ([]entity.ExtractionRun, error)
}

// Store is a RunRepository bound to a live database.
type Store interface {
	RunRepository
	HealthCheck(ctx context.Context, timeout time.Duration) error
	Close()
}

const defaultListLimit = 100

// runRow is the column set shared by both drivers.
type runRow struct {
	ID           string
	SourcePath   string
	ContentHash  []byte
	Status       string
	ErrorMessage *string
	Record       []byte
	FullText     string
	CreatedAt    time.Time
}

func toRow(run entity.ExtractionRun) (runRow, error) {
	rec, err := json.Marshal(run.Record)
	if err != nil {
		return runRow{}, fmt.Errorf("encode record: %w", err)
	}
	id := run.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	created := run.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	return runRow{
		ID:           id.String(),
		SourcePath:   run.SourcePath,
		ContentHash:  run.ContentHash,
		Status:       string(run.Status),
		ErrorMessage: run.ErrorMessage,
		Record:       rec,
		FullText:     run.FullText,
		CreatedAt:    created.UTC(),
	}, nil
}

func (r runRow) toEntity() (entity.ExtractionRun, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return entity.ExtractionRun{}, fmt.Errorf("parse run id: %w", err)
	}
	if err := entity.ValidateRecordJSON(r.Record); err != nil {
		return entity.ExtractionRun{}, fmt.Errorf("run %s record: %w", r.ID, err)
	}
	var rec entity.ContractRecord
	if err := json.Unmarshal(r.Record, &rec); err != nil {
		return entity.ExtractionRun{}, fmt.Errorf("decode record: %w", err)
	}
	return entity.ExtractionRun{
		ID:           id,
		SourcePath:   r.SourcePath,
		ContentHash:  r.ContentHash,
		Status:       constants.RunStatus(r.Status),
		ErrorMessage: r.ErrorMessage,
		Record:       rec,
		FullText:     r.FullText,
		CreatedAt:    r.CreatedAt,
	}, nil
}
