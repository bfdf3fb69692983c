package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/contract-extractor/internal/entity"
)

var (
	extractFullText bool
	extractForce    bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <file.pdf>",
	Short: "Extract contract fields from one PDF and print them as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Processor.ProcessFile(cmd.Context(), args[0], extractForce)
		if err != nil {
			return err
		}

		out := struct {
			ExtractedData entity.ContractRecord `json:"extracted_data"`
			FullText      *string               `json:"full_text,omitempty"`
		}{ExtractedData: res.Record}
		if extractFullText {
			out.FullText = &res.FullText
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(out)
	},
}

func init() {
	extractCmd.Flags().BoolVar(&extractFullText, "full-text", false, "include the extracted document text")
	extractCmd.Flags().BoolVar(&extractForce, "force", false, "re-extract even if a stored run exists")
}
