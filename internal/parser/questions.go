package parser

import (
	"strings"

	"github.com/quizbank/quizbank-cli/internal/model"
)

// questionState is the accumulator threaded through the line reduction: the
// finished records plus the record currently being assembled, if any. Each
// transition is explicit in feed, so the state machine can be exercised line
// by line in tests.
type questionState struct {
	done []model.Question
	open *model.Question
}

// ParseQuestions parses a questions document into records, in encounter
// order. Text with no recognizable question-start line yields nil, not an
// error. The parse is a pure function of its input; no state survives the
// call.
func ParseQuestions(text string) []model.Question {
	st := questionState{}
	for _, raw := range strings.Split(text, "\n") {
		line := NormalizeLine(raw)
		if line == "" {
			continue
		}
		st = st.feed(line)
	}
	return st.finish()
}

// feed applies one non-blank line. Recognizers are tried in fixed precedence:
// question-start, option, answer, explanation, then continuation handling.
func (st questionState) feed(line string) questionState {
	if qs, ok := MatchQuestionStart(line); ok {
		if st.open != nil {
			st.done = append(st.done, *st.open)
		}
		st.open = &model.Question{
			Number:  qs.Number,
			Text:    qs.Text,
			Options: map[string]string{},
			Type:    model.TypeSingle,
		}
		return st
	}

	// Everything below only applies while a record is open; lines before the
	// first question-start are dropped.
	if st.open == nil {
		return st
	}

	if opt, ok := MatchOption(line); ok {
		// A repeated letter overwrites the earlier option text.
		st.open.Options[opt.Letter] = opt.Text
		return st
	}

	if letters, ok := MatchAnswer(line); ok {
		st.open.CorrectAnswers = letters
		st.open.Type = model.DeriveType(len(letters))
		return st
	}

	if expl, ok := MatchExplanation(line); ok {
		st.open.Explanation = expl
		return st
	}

	// Continuation line: extends the stem while no option has been seen,
	// extends the explanation once one exists, and is otherwise treated as
	// inter-option noise and dropped.
	switch {
	case len(st.open.Options) == 0:
		st.open.Text += " " + line
	case st.open.Explanation != "":
		st.open.Explanation += " " + line
	}
	return st
}

// finish emits the still-open record, if any, and returns the result.
func (st questionState) finish() []model.Question {
	if st.open != nil {
		st.done = append(st.done, *st.open)
	}
	return st.done
}
