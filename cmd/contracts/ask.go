package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var askTextFile string

var askCmd = &cobra.Command{
	Use:   "ask [file.pdf] <question>",
	Short: "Answer a free-form question about a contract",
	Long: `Answer a question using the QA model over the whole contract text.

The text comes from a PDF, or from a plain-text file given with --text-file.

Examples:
  contracts ask contract.pdf "Quelle est la durée du contrat ?"
  contracts ask --text-file contract.txt "Who is the supplier?"`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		var text, question string
		switch {
		case askTextFile != "" && len(args) == 1:
			b, err := os.ReadFile(askTextFile)
			if err != nil {
				return err
			}
			text, question = string(b), args[0]
		case askTextFile == "" && len(args) == 2:
			res, err := a.Processor.ProcessFile(cmd.Context(), args[0], false)
			if err != nil {
				return err
			}
			text, question = res.FullText, args[1]
		default:
			return errors.New("give either a PDF and a question, or --text-file and a question")
		}
		if strings.TrimSpace(question) == "" {
			return errors.New("question is required")
		}

		answer, ok := a.Pipeline.AnswerFreeform(cmd.Context(), text, question)
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "no answer found")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), answer)
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&askTextFile, "text-file", "", "read the contract text from a plain-text file")
}
