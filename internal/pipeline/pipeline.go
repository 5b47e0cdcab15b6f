// Package pipeline turns raw exam text into structured questions. The
// LLM-assisted path is best effort: any failure falls back to the
// rule-based parser, so ParseQuestions never returns an error.
package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/quizbank/quizbank-cli/internal/extract"
	"github.com/quizbank/quizbank-cli/internal/model"
	"github.com/quizbank/quizbank-cli/internal/parser"
)

const defaultMaxInputChars = 15000

// Completer produces a free-text completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Parser extracts questions from exam text, preferring the LLM path when a
// completer is configured.
type Parser struct {
	completer Completer
	maxInput  int
}

// NewParser creates a Parser. A nil completer disables the LLM path;
// maxInput <= 0 selects the default input cap.
func NewParser(completer Completer, maxInput int) *Parser {
	if maxInput <= 0 {
		maxInput = defaultMaxInputChars
	}
	return &Parser{completer: completer, maxInput: maxInput}
}

// ParseQuestions extracts questions from question-bank text. The prompt
// sees at most maxInput characters, but the rule-based fallback always
// runs over the full original text.
func (p *Parser) ParseQuestions(ctx context.Context, text string) []model.Question {
	if p.completer == nil {
		return parser.ParseQuestions(text)
	}

	prompt := text
	if runes := []rune(prompt); len(runes) > p.maxInput {
		prompt = string(runes[:p.maxInput])
		zap.L().Warn("input text truncated for prompt",
			zap.Int("original_chars", len(runes)),
			zap.Int("max_chars", p.maxInput))
	}

	reply, err := p.completer.Complete(ctx, buildPrompt(prompt))
	if err != nil {
		zap.L().Warn("llm parse failed, falling back to rule-based parser",
			zap.Error(err))
		return parser.ParseQuestions(text)
	}

	questions := extract.FromReply(reply)
	if len(questions) == 0 {
		zap.L().Warn("no questions extracted from llm reply, falling back to rule-based parser",
			zap.Int("reply_chars", len(reply)))
		return parser.ParseQuestions(text)
	}

	zap.L().Info("questions extracted from llm reply",
		zap.Int("count", len(questions)))
	return questions
}

// ParseAnswers extracts an answer key from answer-sheet text.
func (p *Parser) ParseAnswers(text string) map[int]model.AnswerKey {
	return parser.ParseAnswers(text)
}

// Merge applies an answer key onto parsed questions.
func (p *Parser) Merge(questions []model.Question, answers map[int]model.AnswerKey) []model.Question {
	return parser.Merge(questions, answers)
}
