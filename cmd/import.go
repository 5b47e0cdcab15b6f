package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/quizbank/quizbank-cli/internal/model"
	"github.com/quizbank/quizbank-cli/internal/pdftext"
)

var (
	importTitle         string
	importQuestionsPath string
	importAnswersPath   string
	importNoLLM         bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a question PDF (and optional answer-key PDF) into the store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		e, err := initEnv(ctx, true, !importNoLLM)
		if err != nil {
			return err
		}
		defer e.Close()

		questions, err := parseDocuments(ctx, e, importQuestionsPath, importAnswersPath)
		if err != nil {
			return err
		}
		if len(questions) == 0 {
			return eris.Errorf("no questions found in %s", importQuestionsPath)
		}

		qs, err := e.Store.CreateQuestionSet(ctx, importTitle)
		if err != nil {
			return eris.Wrap(err, "create question set")
		}
		stored, err := e.Store.InsertQuestions(ctx, qs.ID, questions)
		if err != nil {
			return eris.Wrap(err, "insert questions")
		}

		zap.L().Info("import complete",
			zap.String("set_id", qs.ID),
			zap.String("title", importTitle),
			zap.Int("questions", len(stored)),
		)
		return nil
	},
}

// extractDocuments pulls text out of the question PDF and the optional
// answer-key PDF concurrently.
func extractDocuments(ctx context.Context, extractor pdftext.Extractor, questionsPath, answersPath string) (questionsText, answersText string, err error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		text, err := extractor.ExtractText(gctx, questionsPath)
		if err != nil {
			return eris.Wrapf(err, "extract %s", questionsPath)
		}
		questionsText = text
		return nil
	})

	if answersPath != "" {
		g.Go(func() error {
			text, err := extractor.ExtractText(gctx, answersPath)
			if err != nil {
				return eris.Wrapf(err, "extract %s", answersPath)
			}
			answersText = text
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", "", err
	}
	return questionsText, answersText, nil
}

// parseDocuments runs the full extraction pipeline: PDF text, question
// parse, answer-key parse, merge.
func parseDocuments(ctx context.Context, e *env, questionsPath, answersPath string) ([]model.Question, error) {
	questionsText, answersText, err := extractDocuments(ctx, e.Extractor, questionsPath, answersPath)
	if err != nil {
		return nil, err
	}

	questions := e.Parser.ParseQuestions(ctx, questionsText)
	if answersText != "" {
		answers := e.Parser.ParseAnswers(answersText)
		questions = e.Parser.Merge(questions, answers)
	}
	return questions, nil
}

func init() {
	importCmd.Flags().StringVar(&importTitle, "title", "", "question set title (required)")
	importCmd.Flags().StringVar(&importQuestionsPath, "questions", "", "path to question PDF (required)")
	importCmd.Flags().StringVar(&importAnswersPath, "answers", "", "path to answer-key PDF")
	importCmd.Flags().BoolVar(&importNoLLM, "no-llm", false, "skip the LLM pass and parse rule-based only")
	_ = importCmd.MarkFlagRequired("title")
	_ = importCmd.MarkFlagRequired("questions")
	rootCmd.AddCommand(importCmd)
}
