package parser

import "github.com/quizbank/quizbank-cli/internal/model"

// Merge overlays answer-key records onto questions by number, in place, and
// returns the same slice. Where a key exists, its answers and explanation
// replace whatever the question-side parse produced, and the type is
// recomputed from the new cardinality (zero answers map to single; see
// model.DeriveType). Questions with no matching key are left untouched.
// Duplicate numbers resolve to the last key parsed, matching the map-based
// answer store.
func Merge(questions []model.Question, answers map[int]model.AnswerKey) []model.Question {
	for i := range questions {
		key, ok := answers[questions[i].Number]
		if !ok {
			continue
		}
		questions[i].CorrectAnswers = key.CorrectAnswers
		questions[i].Explanation = key.Explanation
		questions[i].Type = model.DeriveType(len(key.CorrectAnswers))
	}
	return questions
}
