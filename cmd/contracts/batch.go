package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/contract-extractor/internal/batch"
	"github.com/joseph-ayodele/contract-extractor/internal/export"
)

var (
	batchOut     string
	batchWorkers int
	batchForce   bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <folder>",
	Short: "Extract every PDF in a folder into a CSV or XLSX table",
	Long: `Extract every PDF under a folder and write one row per file.

Failed files keep a row with an empty record and the error in the Error column.
The output format follows the extension of --out (.csv or .xlsx).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		workers := a.Config.Batch.Workers
		if batchWorkers > 0 {
			workers = batchWorkers
		}
		runner := batch.NewRunner(a.Processor, batch.Config{
			Workers:        workers,
			QueueSize:      a.Config.Batch.QueueSize,
			ProcessTimeout: a.Config.Batch.ProcessTimeout,
			Force:          batchForce,
			SkipHidden:     true,
		}, logger)

		rows, sum, err := runner.Run(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "no PDF files found in %s\n", args[0])
			return nil
		}
		if err := export.NewService(logger).WriteFile(batchOut, rows); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "processed %d files: %d ok (%d from store), %d failed -> %s\n",
			sum.Found, sum.Succeeded, sum.Cached, sum.Failed, batchOut)
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVarP(&batchOut, "out", "o", batch.DefaultOutput, "output file (.csv or .xlsx)")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "parallel extractions (default: batch.workers from config)")
	batchCmd.Flags().BoolVar(&batchForce, "force", false, "re-extract files already in the run store")
}
