package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	parseQuestionsPath string
	parseAnswersPath   string
	parseNoLLM         bool
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse a question PDF and print the extracted questions as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		e, err := initEnv(ctx, false, !parseNoLLM)
		if err != nil {
			return err
		}
		defer e.Close()

		questions, err := parseDocuments(ctx, e, parseQuestionsPath, parseAnswersPath)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(questions); err != nil {
			return eris.Wrap(err, "encode questions")
		}
		return nil
	},
}

func init() {
	parseCmd.Flags().StringVar(&parseQuestionsPath, "questions", "", "path to question PDF (required)")
	parseCmd.Flags().StringVar(&parseAnswersPath, "answers", "", "path to answer-key PDF")
	parseCmd.Flags().BoolVar(&parseNoLLM, "no-llm", false, "skip the LLM pass and parse rule-based only")
	_ = parseCmd.MarkFlagRequired("questions")
	rootCmd.AddCommand(parseCmd)
}
