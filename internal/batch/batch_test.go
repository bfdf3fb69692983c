package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/contract-extractor/constants"
	"github.com/joseph-ayodele/contract-extractor/internal/common"
	"github.com/joseph-ayodele/contract-extractor/internal/entity"
	"github.com/joseph-ayodele/contract-extractor/internal/pipeline"
)

type stubProcessor struct {
	calls atomic.Int32
}

func (s *stubProcessor) ProcessFile(_ context.Context, path string, force bool) (pipeline.Result, error) {
	s.calls.Add(1)
	base := filepath.Base(path)
	if strings.HasPrefix(base, "empty") {
		return pipeline.Result{Path: path}, common.EmptyDocumentError(path)
	}
	rec := entity.NewRecordBuilder().
		Set(constants.ContractNumber, strings.TrimSuffix(base, ".pdf"), entity.SourcePattern).
		Build()
	return pipeline.Result{Path: path, Record: rec, Cached: !force && strings.HasPrefix(base, "seen")}, nil
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))
}

func TestRunOrdersRowsAndRecordsFailures(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"c.pdf", "a.pdf", "empty.pdf", "seen.pdf", "sub/b.pdf", "readme.txt", ".tmp.pdf"} {
		touch(t, filepath.Join(dir, name))
	}

	proc := &stubProcessor{}
	r := NewRunner(proc, Config{Workers: 3, QueueSize: 2, SkipHidden: true}, nil)
	rows, sum, err := r.Run(context.Background(), dir)
	require.NoError(t, err)

	var names []string
	for _, row := range rows {
		names = append(names, row.Filename)
	}
	assert.Equal(t, []string{"a.pdf", "c.pdf", "empty.pdf", "seen.pdf", "sub/b.pdf"}, names)
	assert.EqualValues(t, 5, proc.calls.Load())

	assert.Empty(t, rows[0].Err)
	v, ok := rows[0].Record.Get(constants.ContractNumber)
	assert.True(t, ok)
	assert.Equal(t, "a", v)

	assert.NotEmpty(t, rows[2].Err)
	_, ok = rows[2].Record.Get(constants.ContractNumber)
	assert.False(t, ok)

	assert.Equal(t, Summary{Found: 5, Succeeded: 4, Failed: 1, Cached: 1, Elapsed: sum.Elapsed}, sum)
}

func TestRunForceDisablesCache(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "seen.pdf"))

	_, sum, err := NewRunner(&stubProcessor{}, Config{Force: true}, nil).Run(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Cached)
	assert.Equal(t, 1, sum.Succeeded)
}

func TestRunMissingDir(t *testing.T) {
	_, _, err := NewRunner(&stubProcessor{}, Config{}, nil).Run(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestRunCancelled(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.pdf"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewRunner(&stubProcessor{}, Config{}, nil).Run(ctx, dir)
	assert.True(t, errors.Is(err, context.Canceled))
}
