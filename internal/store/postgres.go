package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/quizbank/quizbank-cli/internal/db"
	"github.com/quizbank/quizbank-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_question_set": `INSERT INTO question_sets (id, title, created_at) VALUES ($1, $2, $3)`,
	"get_question_set":    `SELECT id, title, created_at FROM question_sets WHERE id = $1`,
	"get_question":        `SELECT id, set_id, question_number, question_text, options, question_type, correct_answers, explanation FROM questions WHERE id = $1`,
	"insert_submission":   `INSERT INTO submissions (id, question_id, answers, is_correct, submitted_at) VALUES ($1, $2, $3, $4, $5)`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS question_sets (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	title      TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS questions (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	set_id          TEXT NOT NULL REFERENCES question_sets(id) ON DELETE CASCADE,
	question_number INTEGER NOT NULL,
	question_text   TEXT NOT NULL,
	options         JSONB NOT NULL,
	question_type   TEXT NOT NULL DEFAULT 'single',
	correct_answers JSONB NOT NULL,
	explanation     TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS submissions (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	question_id  TEXT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
	answers      JSONB NOT NULL,
	is_correct   BOOLEAN NOT NULL,
	submitted_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_questions_set_id ON questions(set_id);
CREATE INDEX IF NOT EXISTS idx_questions_set_number ON questions(set_id, question_number);
CREATE INDEX IF NOT EXISTS idx_submissions_question_id ON submissions(question_id);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateQuestionSet(ctx context.Context, title string) (*model.QuestionSet, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO question_sets (id, title, created_at) VALUES ($1, $2, $3)`,
		id, title, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert question set")
	}

	return &model.QuestionSet{ID: id, Title: title, CreatedAt: now}, nil
}

func (s *PostgresStore) ListQuestionSets(ctx context.Context) ([]model.QuestionSet, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT qs.id, qs.title, qs.created_at, COUNT(q.id)
		 FROM question_sets qs
		 LEFT JOIN questions q ON q.set_id = qs.id
		 GROUP BY qs.id, qs.title, qs.created_at
		 ORDER BY qs.created_at DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list question sets")
	}
	defer rows.Close()

	var sets []model.QuestionSet
	for rows.Next() {
		var qs model.QuestionSet
		if err := rows.Scan(&qs.ID, &qs.Title, &qs.CreatedAt, &qs.QuestionCount); err != nil {
			return nil, eris.Wrap(err, "postgres: scan question set")
		}
		sets = append(sets, qs)
	}
	return sets, eris.Wrap(rows.Err(), "postgres: list question sets iterate")
}

func (s *PostgresStore) GetQuestionSet(ctx context.Context, setID string) (*model.QuestionSet, error) {
	var qs model.QuestionSet
	err := s.pool.QueryRow(ctx,
		`SELECT id, title, created_at FROM question_sets WHERE id = $1`,
		setID,
	).Scan(&qs.ID, &qs.Title, &qs.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "question set %s", setID)
		}
		return nil, eris.Wrapf(err, "postgres: get question set %s", setID)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, set_id, question_number, question_text, options, question_type, correct_answers, explanation
		 FROM questions WHERE set_id = $1 ORDER BY question_number`,
		setID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get questions for set %s", setID)
	}
	defer rows.Close()

	for rows.Next() {
		q, err := scanPgQuestion(rows)
		if err != nil {
			return nil, err
		}
		qs.Questions = append(qs.Questions, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: get questions iterate")
	}
	qs.QuestionCount = len(qs.Questions)
	return &qs, nil
}

func (s *PostgresStore) DeleteQuestionSet(ctx context.Context, setID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM question_sets WHERE id = $1`, setID)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete question set %s", setID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "question set %s", setID)
	}
	return nil
}

func (s *PostgresStore) InsertQuestions(ctx context.Context, setID string, questions []model.Question) ([]model.StoredQuestion, error) {
	stored := make([]model.StoredQuestion, 0, len(questions))
	rows := make([][]any, 0, len(questions))

	for _, q := range questions {
		id := uuid.New().String()

		optionsJSON, answersJSON, err := marshalQuestionFields(q)
		if err != nil {
			return nil, err
		}

		rows = append(rows, []any{
			id, setID, q.Number, q.Text, []byte(optionsJSON), string(q.Type), []byte(answersJSON), q.Explanation,
		})
		stored = append(stored, model.StoredQuestion{ID: id, SetID: setID, Question: q})
	}

	_, err := db.CopyFrom(ctx, s.pool, "questions",
		[]string{"id", "set_id", "question_number", "question_text", "options", "question_type", "correct_answers", "explanation"},
		rows,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert questions for set %s", setID)
	}
	return stored, nil
}

func (s *PostgresStore) GetQuestion(ctx context.Context, questionID string) (*model.StoredQuestion, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, set_id, question_number, question_text, options, question_type, correct_answers, explanation
		 FROM questions WHERE id = $1`,
		questionID,
	)
	q, err := scanPgQuestion(row)
	if eris.Is(err, ErrNotFound) {
		return nil, eris.Wrapf(ErrNotFound, "question %s", questionID)
	}
	return q, err
}

func (s *PostgresStore) RecordSubmission(ctx context.Context, sub model.Submission) error {
	answersJSON, err := json.Marshal(sub.Answers)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal answers")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO submissions (id, question_id, answers, is_correct, submitted_at) VALUES ($1, $2, $3, $4, $5)`,
		sub.ID, sub.QuestionID, answersJSON, sub.IsCorrect, sub.SubmittedAt,
	)
	return eris.Wrap(err, "postgres: insert submission")
}

func scanPgQuestion(row scannable) (*model.StoredQuestion, error) {
	var q model.StoredQuestion
	var optionsJSON, answersJSON []byte

	err := row.Scan(&q.ID, &q.SetID, &q.Number, &q.Text, &optionsJSON, &q.Type, &answersJSON, &q.Explanation)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrap(err, "postgres: scan question")
	}

	if err := json.Unmarshal(optionsJSON, &q.Options); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal options")
	}
	if err := json.Unmarshal(answersJSON, &q.CorrectAnswers); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal correct answers")
	}
	return &q, nil
}
