// Package batch extracts every contract in a folder and collects one row per document.
package batch

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/joseph-ayodele/contract-extractor/internal/async"
	"github.com/joseph-ayodele/contract-extractor/internal/export"
	"github.com/joseph-ayodele/contract-extractor/internal/ingest"
	"github.com/joseph-ayodele/contract-extractor/internal/pipeline"
)

// DefaultOutput is the output file used when none is given.
const DefaultOutput = "extracted_contracts.csv"

type Config struct {
	Workers        int
	QueueSize      int
	ProcessTimeout time.Duration
	Force          bool // ignore stored runs for identical content
	SkipHidden     bool
}

// Summary counts the outcome of a run.
type Summary struct {
	Found     int
	Succeeded int
	Failed    int
	Cached    int
	Elapsed   time.Duration
}

type Runner struct {
	proc   async.FileProcessor
	cfg    Config
	logger *slog.Logger
}

func NewRunner(proc async.FileProcessor, cfg Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{proc: proc, cfg: cfg, logger: logger}
}

// Run extracts every document under dir. Per-file failures become rows with Err set and
// no field values. Rows are ordered by filename (path relative to dir).
func (r *Runner) Run(ctx context.Context, dir string) ([]export.Row, Summary, error) {
	start := time.Now()

	found, stats, err := ingest.ScanDirectory(ctx, dir, r.cfg.SkipHidden)
	if err != nil {
		return nil, Summary{}, err
	}
	r.logger.Info("batch.scan.ok", "dir", dir, "matched", stats.Matched, "skipped", stats.Skipped, "failed", stats.Failed)

	var (
		mu   sync.Mutex
		rows = make([]export.Row, 0, len(found))
		sum  = Summary{Found: len(found)}
	)
	record := func(row export.Row, cached bool) {
		mu.Lock()
		defer mu.Unlock()
		rows = append(rows, row)
		switch {
		case row.Err != "":
			sum.Failed++
		case cached:
			sum.Cached++
			sum.Succeeded++
		default:
			sum.Succeeded++
		}
	}

	q := async.NewProcessorQueue(r.proc, r.logger,
		async.WithWorkers(r.cfg.Workers),
		async.WithQueueSize(r.cfg.QueueSize),
		async.WithProcessTimeout(r.cfg.ProcessTimeout),
		async.WithResultHandler(func(job async.Job, res pipeline.Result, err error) {
			row := export.Row{Filename: relName(dir, job.Path)}
			if err != nil {
				row.Err = err.Error()
			} else {
				row.Record = res.Record
			}
			record(row, res.Cached)
		}),
	)

	var enqueueErr error
	for _, f := range found {
		if f.Err != "" {
			record(export.Row{Filename: relName(dir, f.Path), Err: f.Err}, false)
			continue
		}
		if err := q.Enqueue(ctx, async.NewJob(f.Path, r.cfg.Force)); err != nil {
			enqueueErr = err
			break
		}
	}
	q.Shutdown(context.WithoutCancel(ctx))
	if enqueueErr != nil {
		return nil, Summary{}, enqueueErr
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Filename < rows[j].Filename })
	sum.Elapsed = time.Since(start)
	r.logger.Info("batch.run.ok", "dir", dir,
		"found", sum.Found, "succeeded", sum.Succeeded, "failed", sum.Failed, "cached", sum.Cached,
		"elapsed_ms", sum.Elapsed.Milliseconds())
	return rows, sum, nil
}

func relName(dir, path string) string {
	if rel, err := filepath.Rel(dir, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return filepath.Base(path)
}
