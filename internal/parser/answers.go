package parser

import (
	"strings"

	"github.com/quizbank/quizbank-cli/internal/model"
)

// ParseAnswers parses an answer-key document into records keyed by question
// number. Answer-key documents list answers without repeating the stem, so
// the trigger that opens a record is an answer line carrying a leading
// question number, not a question-start line. An answer line without a number
// is not actionable and opens nothing.
//
// A record is only inserted into the result when an explanation line closes
// it; an opened record that never sees an explanation is lost. That asymmetry
// with the question parser is deliberate and covered by tests.
func ParseAnswers(text string) map[int]model.AnswerKey {
	answers := make(map[int]model.AnswerKey)
	var open *model.AnswerKey

	for _, raw := range strings.Split(text, "\n") {
		line := NormalizeLine(raw)
		if line == "" {
			continue
		}

		if letters, ok := MatchAnswer(line); ok {
			if num, ok := MatchLeadingNumber(line); ok {
				open = &model.AnswerKey{Number: num, CorrectAnswers: letters}
				continue
			}
			// No number on the line: fall through, the line may still
			// carry an explanation marker.
		}

		if expl, ok := MatchExplanation(line); ok && open != nil {
			open.Explanation = expl
			answers[open.Number] = *open
			open = nil
			continue
		}

		// Continuation extends an explanation that has already been set.
		// Explanation-setting also closes the record, so in practice this
		// only guards against malformed interleavings.
		if open != nil && open.Explanation != "" {
			open.Explanation += " " + line
		}
	}

	return answers
}
