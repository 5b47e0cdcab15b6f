package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/quizbank/quizbank-cli/internal/config"
	"github.com/quizbank/quizbank-cli/internal/model"
)

// ErrNotFound is returned when a question set or question does not exist.
var ErrNotFound = eris.New("store: not found")

// Store defines the persistence interface for question sets.
type Store interface {
	// Question sets
	CreateQuestionSet(ctx context.Context, title string) (*model.QuestionSet, error)
	ListQuestionSets(ctx context.Context) ([]model.QuestionSet, error)
	GetQuestionSet(ctx context.Context, setID string) (*model.QuestionSet, error)
	DeleteQuestionSet(ctx context.Context, setID string) error

	// Questions
	InsertQuestions(ctx context.Context, setID string, questions []model.Question) ([]model.StoredQuestion, error)
	GetQuestion(ctx context.Context, questionID string) (*model.StoredQuestion, error)

	// Submissions
	RecordSubmission(ctx context.Context, sub model.Submission) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a Store for the configured driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return NewSQLite(cfg.DatabaseURL)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
