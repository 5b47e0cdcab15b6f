package main

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/quizbank/quizbank-cli/internal/model"
	"github.com/quizbank/quizbank-cli/internal/store"
)

// maxUploadBytes caps the multipart form kept in memory before spilling
// to disk.
const maxUploadBytes = 32 << 20

// api holds the HTTP handler dependencies.
type api struct {
	env *env
}

func newAPI(e *env) *api {
	return &api{env: e}
}

func (a *api) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/upload", a.handleUpload)
		r.Get("/question-sets", a.handleListSets)
		r.Get("/question-sets/{id}", a.handleGetSet)
		r.Delete("/question-sets/{id}", a.handleDeleteSet)
		r.Get("/questions/{id}", a.handleGetQuestion)
		r.Post("/submit-answer", a.handleSubmitAnswer)
		r.Post("/submit-batch-answers", a.handleSubmitBatch)
	})

	return r
}

// handleUpload accepts a multipart form with a title, a question PDF and
// an optional answer-key PDF, runs the extraction pipeline and stores the
// resulting question set.
func (a *api) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	title := r.FormValue("title")
	if title == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	questionsPath, cleanupQ, err := saveUpload(r, "questions_file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "questions_file is required")
		return
	}
	defer cleanupQ()

	answersPath := ""
	if path, cleanupA, err := saveUpload(r, "answers_file"); err == nil {
		answersPath = path
		defer cleanupA()
	}

	questions, err := parseDocuments(r.Context(), a.env, questionsPath, answersPath)
	if err != nil {
		zap.L().Error("upload parse failed", zap.String("title", title), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to parse uploaded documents")
		return
	}
	if len(questions) == 0 {
		respondError(w, http.StatusUnprocessableEntity, "no questions found in uploaded document")
		return
	}

	qs, err := a.env.Store.CreateQuestionSet(r.Context(), title)
	if err != nil {
		zap.L().Error("create question set failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to store question set")
		return
	}
	stored, err := a.env.Store.InsertQuestions(r.Context(), qs.ID, questions)
	if err != nil {
		zap.L().Error("insert questions failed", zap.String("set_id", qs.ID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to store questions")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"message":         "upload complete",
		"question_set_id": qs.ID,
		"questions_count": len(stored),
	})
}

func (a *api) handleListSets(w http.ResponseWriter, r *http.Request) {
	sets, err := a.env.Store.ListQuestionSets(r.Context())
	if err != nil {
		zap.L().Error("list question sets failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list question sets")
		return
	}
	if sets == nil {
		sets = []model.QuestionSet{}
	}
	respondJSON(w, http.StatusOK, sets)
}

func (a *api) handleGetSet(w http.ResponseWriter, r *http.Request) {
	qs, err := a.env.Store.GetQuestionSet(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if eris.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "question set not found")
			return
		}
		zap.L().Error("get question set failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to get question set")
		return
	}
	respondJSON(w, http.StatusOK, qs)
}

func (a *api) handleDeleteSet(w http.ResponseWriter, r *http.Request) {
	err := a.env.Store.DeleteQuestionSet(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if eris.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "question set not found")
			return
		}
		zap.L().Error("delete question set failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to delete question set")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleGetQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := a.env.Store.GetQuestion(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if eris.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "question not found")
			return
		}
		zap.L().Error("get question failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to get question")
		return
	}
	respondJSON(w, http.StatusOK, q)
}

type submitRequest struct {
	QuestionID  string   `json:"question_id"`
	UserAnswers []string `json:"user_answers"`
}

type submitResult struct {
	QuestionID     string   `json:"question_id,omitempty"`
	IsCorrect      bool     `json:"is_correct"`
	CorrectAnswers []string `json:"correct_answers"`
	Explanation    string   `json:"explanation"`
}

// gradeAndRecord grades one submission against the stored question and
// persists the attempt.
func (a *api) gradeAndRecord(r *http.Request, req submitRequest) (*submitResult, error) {
	q, err := a.env.Store.GetQuestion(r.Context(), req.QuestionID)
	if err != nil {
		return nil, err
	}

	isCorrect := model.Grade(q.CorrectAnswers, req.UserAnswers)
	err = a.env.Store.RecordSubmission(r.Context(), model.Submission{
		ID:          uuid.New().String(),
		QuestionID:  q.ID,
		Answers:     req.UserAnswers,
		IsCorrect:   isCorrect,
		SubmittedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	return &submitResult{
		QuestionID:     q.ID,
		IsCorrect:      isCorrect,
		CorrectAnswers: q.CorrectAnswers,
		Explanation:    q.Explanation,
	}, nil
}

func (a *api) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.QuestionID == "" {
		respondError(w, http.StatusBadRequest, "question_id is required")
		return
	}

	result, err := a.gradeAndRecord(r, req)
	if err != nil {
		if eris.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "question not found")
			return
		}
		zap.L().Error("submit answer failed", zap.String("question_id", req.QuestionID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to record submission")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"message":         "answer recorded",
		"is_correct":      result.IsCorrect,
		"correct_answers": result.CorrectAnswers,
		"explanation":     result.Explanation,
	})
}

// handleSubmitBatch grades each submission independently; a missing
// question yields a per-item error instead of failing the batch.
func (a *api) handleSubmitBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Answers []submitRequest `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	results := make([]map[string]any, 0, len(req.Answers))
	for _, sub := range req.Answers {
		result, err := a.gradeAndRecord(r, sub)
		if err != nil {
			if eris.Is(err, store.ErrNotFound) {
				results = append(results, map[string]any{
					"question_id": sub.QuestionID,
					"error":       "question not found",
				})
				continue
			}
			zap.L().Error("submit batch item failed", zap.String("question_id", sub.QuestionID), zap.Error(err))
			respondError(w, http.StatusInternalServerError, "failed to record submission")
			return
		}
		results = append(results, map[string]any{
			"question_id":     result.QuestionID,
			"is_correct":      result.IsCorrect,
			"correct_answers": result.CorrectAnswers,
			"explanation":     result.Explanation,
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "batch submission complete",
		"results": results,
	})
}

// saveUpload writes the named multipart file to a temp path for the PDF
// extractors, which read from disk.
func saveUpload(r *http.Request, field string) (path string, cleanup func(), err error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", nil, eris.Wrapf(err, "form file %s", field)
	}
	defer file.Close()

	tmp, err := os.CreateTemp("", "quizbank-upload-*"+filepath.Ext(header.Filename))
	if err != nil {
		return "", nil, eris.Wrap(err, "create temp file")
	}
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, eris.Wrap(err, "write temp file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", nil, eris.Wrap(err, "close temp file")
	}

	name := tmp.Name()
	return name, func() { os.Remove(name) }, nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
