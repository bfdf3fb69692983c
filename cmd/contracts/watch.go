package main

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/contract-extractor/internal/async"
	"github.com/joseph-ayodele/contract-extractor/internal/ingest"
	"github.com/joseph-ayodele/contract-extractor/internal/pipeline"
)

var watchInitial bool

var watchCmd = &cobra.Command{
	Use:   "watch <folder>",
	Short: "Extract PDFs as they appear in a folder",
	Long: `Watch a folder (recursively) and extract every PDF that is created or rewritten.

Results are logged and, when a database is configured, stored as extraction runs.
Stop with Ctrl+C; queued files finish before exit.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		if a.Store == nil {
			logger.Warn("no database configured; results are only logged")
		}

		events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Roots:       []string{args[0]},
			InitialScan: watchInitial,
			Debounce:    a.Config.Batch.Debounce,
			SkipHidden:  true,
		}, logger)
		if err != nil {
			return err
		}

		queue := async.NewProcessorQueue(a.Processor, logger,
			async.WithWorkers(a.Config.Batch.Workers),
			async.WithQueueSize(a.Config.Batch.QueueSize),
			async.WithProcessTimeout(a.Config.Batch.ProcessTimeout),
			async.WithResultHandler(func(job async.Job, res pipeline.Result, err error) {
				if err != nil {
					return
				}
				record, _ := json.Marshal(res.Record)
				logger.Info("watch.extracted", "path", job.Path, "run_id", res.RunID, "cached", res.Cached, "record", string(record))
			}),
		)
		defer queue.Shutdown(context.WithoutCancel(ctx))

		logger.Info("watching", "dir", args[0])
		for {
			select {
			case path, ok := <-events:
				if !ok {
					return nil
				}
				if err := queue.Enqueue(ctx, async.NewJob(path, false)); err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				logger.Warn("watch error", "error", err)
			}
		}
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchInitial, "initial", false, "also extract PDFs already in the folder")
}
