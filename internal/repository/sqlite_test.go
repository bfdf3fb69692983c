package repository

import (
	"context"
	"crypto/sha256"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/contract-extractor/constants"
	"github.com/joseph-ayodele/contract-extractor/internal/common"
	"github.com/joseph-ayodele/contract-extractor/internal/entity"
)

func openMemory(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(context.Background(), ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestSQLiteSaveAndGetByHash(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)
	hash := sha256.Sum256([]byte("%PDF-1.7 contract"))

	rec := entity.NewRecordBuilder().
		Set(constants.ContractNumber, "2023/045", entity.SourcePattern).
		Set(constants.Client, "ACME", entity.SourceClause).
		Build()
	run := entity.NewSuccessfulRun("/in/a.pdf", hash[:], rec, "CONTRAT N° 2023/045")
	require.NoError(t, s.Save(ctx, run))

	got, err := s.GetByHash(ctx, hash[:])
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, constants.RunStatusOK, got.Status)
	assert.Equal(t, "/in/a.pdf", got.SourcePath)
	assert.Equal(t, "CONTRAT N° 2023/045", got.FullText)
	assert.Nil(t, got.ErrorMessage)
	assert.Equal(t, rec.Values(), got.Record.Values())
	assert.WithinDuration(t, run.CreatedAt, got.CreatedAt, time.Microsecond)
}

func TestSQLiteGetByHashReturnsNewest(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)
	hash := []byte{1, 2, 3}

	failed := entity.NewFailedRun("/in/b.pdf", hash, errors.New("document has no extractable text"))
	failed.CreatedAt = time.Now().Add(-time.Hour).UTC()
	require.NoError(t, s.Save(ctx, failed))

	ok := entity.NewSuccessfulRun("/in/b.pdf", hash, entity.ContractRecord{}, "text")
	require.NoError(t, s.Save(ctx, ok))

	got, err := s.GetByHash(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, ok.ID, got.ID)

	runs, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ok.ID, runs[0].ID)
	assert.Equal(t, constants.RunStatusFailed, runs[1].Status)
	require.NotNil(t, runs[1].ErrorMessage)
	assert.Contains(t, *runs[1].ErrorMessage, "no extractable text")
}

func TestSQLiteGetByHashNotFound(t *testing.T) {
	s := openMemory(t)
	_, err := s.GetByHash(context.Background(), []byte("missing"))
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestOpenByDriver(t *testing.T) {
	ctx := context.Background()

	store, err := Open(ctx, common.DatabaseConfig{}, nil)
	require.NoError(t, err)
	assert.Nil(t, store)

	dsn := filepath.Join(t.TempDir(), "runs.db")
	store, err = Open(ctx, common.DatabaseConfig{Driver: "sqlite", DSN: dsn}, nil)
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()
	assert.NoError(t, store.HealthCheck(ctx, time.Second))

	_, err = Open(ctx, common.DatabaseConfig{Driver: "mysql", DSN: "x"}, nil)
	assert.Error(t, err)
}
