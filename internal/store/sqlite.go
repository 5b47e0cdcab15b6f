package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/quizbank/quizbank-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS question_sets (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS questions (
	id              TEXT PRIMARY KEY,
	set_id          TEXT NOT NULL REFERENCES question_sets(id) ON DELETE CASCADE,
	question_number INTEGER NOT NULL,
	question_text   TEXT NOT NULL,
	options         TEXT NOT NULL,
	question_type   TEXT NOT NULL DEFAULT 'single',
	correct_answers TEXT NOT NULL,
	explanation     TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS submissions (
	id           TEXT PRIMARY KEY,
	question_id  TEXT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
	answers      TEXT NOT NULL,
	is_correct   INTEGER NOT NULL,
	submitted_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_questions_set_id ON questions(set_id);
CREATE INDEX IF NOT EXISTS idx_questions_set_number ON questions(set_id, question_number);
CREATE INDEX IF NOT EXISTS idx_submissions_question_id ON submissions(question_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateQuestionSet(ctx context.Context, title string) (*model.QuestionSet, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO question_sets (id, title, created_at) VALUES (?, ?, ?)`,
		id, title, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert question set")
	}

	return &model.QuestionSet{ID: id, Title: title, CreatedAt: now}, nil
}

func (s *SQLiteStore) ListQuestionSets(ctx context.Context) ([]model.QuestionSet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT qs.id, qs.title, qs.created_at, COUNT(q.id)
		 FROM question_sets qs
		 LEFT JOIN questions q ON q.set_id = qs.id
		 GROUP BY qs.id, qs.title, qs.created_at
		 ORDER BY qs.created_at DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list question sets")
	}
	defer rows.Close()

	var sets []model.QuestionSet
	for rows.Next() {
		var qs model.QuestionSet
		if err := rows.Scan(&qs.ID, &qs.Title, &qs.CreatedAt, &qs.QuestionCount); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan question set")
		}
		sets = append(sets, qs)
	}
	return sets, eris.Wrap(rows.Err(), "sqlite: list question sets iterate")
}

func (s *SQLiteStore) GetQuestionSet(ctx context.Context, setID string) (*model.QuestionSet, error) {
	var qs model.QuestionSet
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, created_at FROM question_sets WHERE id = ?`,
		setID,
	).Scan(&qs.ID, &qs.Title, &qs.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(ErrNotFound, "question set %s", setID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get question set %s", setID)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, set_id, question_number, question_text, options, question_type, correct_answers, explanation
		 FROM questions WHERE set_id = ? ORDER BY question_number`,
		setID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get questions for set %s", setID)
	}
	defer rows.Close()

	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		qs.Questions = append(qs.Questions, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: get questions iterate")
	}
	qs.QuestionCount = len(qs.Questions)
	return &qs, nil
}

func (s *SQLiteStore) DeleteQuestionSet(ctx context.Context, setID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM question_sets WHERE id = ?`, setID)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete question set %s", setID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "question set %s", setID)
	}
	return nil
}

func (s *SQLiteStore) InsertQuestions(ctx context.Context, setID string, questions []model.Question) ([]model.StoredQuestion, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	stored := make([]model.StoredQuestion, 0, len(questions))
	for _, q := range questions {
		id := uuid.New().String()

		optionsJSON, answersJSON, err := marshalQuestionFields(q)
		if err != nil {
			return nil, err
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO questions (id, set_id, question_number, question_text, options, question_type, correct_answers, explanation)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, setID, q.Number, q.Text, optionsJSON, string(q.Type), answersJSON, q.Explanation,
		)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: insert question %d", q.Number)
		}

		stored = append(stored, model.StoredQuestion{ID: id, SetID: setID, Question: q})
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit tx")
	}
	return stored, nil
}

func (s *SQLiteStore) GetQuestion(ctx context.Context, questionID string) (*model.StoredQuestion, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, set_id, question_number, question_text, options, question_type, correct_answers, explanation
		 FROM questions WHERE id = ?`,
		questionID,
	)
	q, err := scanQuestion(row)
	if eris.Is(err, ErrNotFound) {
		return nil, eris.Wrapf(ErrNotFound, "question %s", questionID)
	}
	return q, err
}

func (s *SQLiteStore) RecordSubmission(ctx context.Context, sub model.Submission) error {
	answersJSON, err := json.Marshal(sub.Answers)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal answers")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO submissions (id, question_id, answers, is_correct, submitted_at) VALUES (?, ?, ?, ?, ?)`,
		sub.ID, sub.QuestionID, string(answersJSON), sub.IsCorrect, sub.SubmittedAt,
	)
	return eris.Wrap(err, "sqlite: insert submission")
}

// helpers

func marshalQuestionFields(q model.Question) (options, answers string, err error) {
	opts := q.Options
	if opts == nil {
		opts = map[string]string{}
	}
	optionsJSON, err := json.Marshal(opts)
	if err != nil {
		return "", "", eris.Wrap(err, "sqlite: marshal options")
	}

	ans := q.CorrectAnswers
	if ans == nil {
		ans = []string{}
	}
	answersJSON, err := json.Marshal(ans)
	if err != nil {
		return "", "", eris.Wrap(err, "sqlite: marshal correct answers")
	}
	return string(optionsJSON), string(answersJSON), nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanQuestion(row scannable) (*model.StoredQuestion, error) {
	var q model.StoredQuestion
	var optionsJSON, answersJSON string

	err := row.Scan(&q.ID, &q.SetID, &q.Number, &q.Text, &optionsJSON, &q.Type, &answersJSON, &q.Explanation)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan question")
	}

	if err := json.Unmarshal([]byte(optionsJSON), &q.Options); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal options")
	}
	if err := json.Unmarshal([]byte(answersJSON), &q.CorrectAnswers); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal correct answers")
	}
	return &q, nil
}
