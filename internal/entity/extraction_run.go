package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/contract-extractor/constants"
)

// ExtractionRun is one stored extraction attempt for data transfer between layers.
type ExtractionRun struct {
	ID           uuid.UUID           `json:"id"`
	SourcePath   string              `json:"source_path"`
	ContentHash  []byte              `json:"content_hash"`
	Status       constants.RunStatus `json:"status"`
	ErrorMessage *string             `json:"error_message,omitempty"`
	Record       ContractRecord      `json:"record"`
	FullText     string              `json:"full_text,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}

// NewSuccessfulRun builds an OK run for a record.
func NewSuccessfulRun(path string, hash []byte, rec ContractRecord, fullText string) ExtractionRun {
	return ExtractionRun{
		ID:          uuid.New(),
		SourcePath:  path,
		ContentHash: hash,
		Status:      constants.RunStatusOK,
		Record:      rec,
		FullText:    fullText,
		CreatedAt:   time.Now().UTC(),
	}
}

// NewFailedRun builds a FAILED run carrying the error text and an empty record.
func NewFailedRun(path string, hash []byte, err error) ExtractionRun {
	msg := err.Error()
	return ExtractionRun{
		ID:           uuid.New(),
		SourcePath:   path,
		ContentHash:  hash,
		Status:       constants.RunStatusFailed,
		ErrorMessage: &msg,
		CreatedAt:    time.Now().UTC(),
	}
}
