package model

import "time"

// QuestionType classifies a question by how many answers it expects.
type QuestionType string

const (
	TypeSingle   QuestionType = "single"
	TypeMultiple QuestionType = "multiple"
)

// DeriveType maps answer cardinality to a question type. Zero answers map to
// single; that is the established merge policy, not an accident.
func DeriveType(n int) QuestionType {
	if n > 1 {
		return TypeMultiple
	}
	return TypeSingle
}

// Question is an extracted multiple-choice question. The JSON field names
// double as the schema requested from the completion service, so a structured
// reply decodes directly into this type.
type Question struct {
	Number         int               `json:"question_number"`
	Text           string            `json:"question_text"`
	Options        map[string]string `json:"options"`
	Type           QuestionType      `json:"question_type"`
	CorrectAnswers []string          `json:"correct_answers"`
	Explanation    string            `json:"explanation"`
}

// AnswerKey is one entry parsed from an answer-key document. It carries no
// stem or options; it exists only to be merged into a Question by number.
type AnswerKey struct {
	Number         int      `json:"question_number"`
	CorrectAnswers []string `json:"correct_answers"`
	Explanation    string   `json:"explanation"`
}

// QuestionSet groups the questions imported from one pair of documents.
// QuestionCount is filled on listing; Questions only on detail fetches.
type QuestionSet struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	CreatedAt     time.Time        `json:"created_at"`
	QuestionCount int              `json:"question_count"`
	Questions     []StoredQuestion `json:"questions,omitempty"`
}

// StoredQuestion is a Question with durable identity assigned by the store.
type StoredQuestion struct {
	ID    string `json:"id"`
	SetID string `json:"question_set_id"`
	Question
}

// Submission records one graded answer attempt.
type Submission struct {
	ID          string    `json:"id"`
	QuestionID  string    `json:"question_id"`
	Answers     []string  `json:"answers"`
	IsCorrect   bool      `json:"is_correct"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Grade reports whether submitted letters match the correct letters by set
// equality: order is ignored and duplicates collapse on both sides.
func Grade(correct, submitted []string) bool {
	cs := letterSet(correct)
	ss := letterSet(submitted)
	if len(cs) != len(ss) {
		return false
	}
	for l := range cs {
		if !ss[l] {
			return false
		}
	}
	return true
}

func letterSet(letters []string) map[string]bool {
	set := make(map[string]bool, len(letters))
	for _, l := range letters {
		set[l] = true
	}
	return set
}
