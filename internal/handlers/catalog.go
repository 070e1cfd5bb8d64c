package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"neetmentor-backend/internal/middleware"
	"neetmentor-backend/internal/models"
)

type catalogRepository interface {
	ListSubjects(ctx context.Context) ([]*models.Subject, error)
	ListTopics(ctx context.Context, subjectID *int64, subjectName string) ([]*models.Topic, error)
	ListQuestions(ctx context.Context, topicID int64) ([]*models.Question, error)
	GetQuestion(ctx context.Context, id int64) (*models.Question, error)
	RecordAnswer(ctx context.Context, userID uuid.UUID, q *models.Question, selected int) (bool, error)
	ListProgress(ctx context.Context, userID uuid.UUID) ([]*models.UserProgress, error)
}

// CatalogHandler serves the read-only question bank.
type CatalogHandler struct {
	repo catalogRepository
}

func NewCatalogHandler(repo catalogRepository) *CatalogHandler {
	return &CatalogHandler{repo: repo}
}

func int64Param(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || v <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid "+name, r))
		return 0, false
	}
	return v, true
}

func (h *CatalogHandler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.repo.ListSubjects(r.Context())
	if err != nil {
		internalError(w, r, err, "failed to list subjects")
		return
	}
	writeJSON(w, http.StatusOK, subjects)
}

// ListTopics serves /topics?subject=Name and /topics/{subjectID}.
func (h *CatalogHandler) ListTopics(w http.ResponseWriter, r *http.Request) {
	var subjectID *int64
	if chi.URLParam(r, "subjectID") != "" {
		id, ok := int64Param(w, r, "subjectID")
		if !ok {
			return
		}
		subjectID = &id
	}

	topics, err := h.repo.ListTopics(r.Context(), subjectID, r.URL.Query().Get("subject"))
	if err != nil {
		internalError(w, r, err, "failed to list topics")
		return
	}
	writeJSON(w, http.StatusOK, topics)
}

func (h *CatalogHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	topicID, ok := int64Param(w, r, "topicID")
	if !ok {
		return
	}

	questions, err := h.repo.ListQuestions(r.Context(), topicID)
	if err != nil {
		internalError(w, r, err, "failed to list questions")
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func (h *CatalogHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitAnswerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fields := map[string]string{}
	if req.QuestionID <= 0 {
		fields["question_id"] = "question_id is required"
	}
	if req.SelectedOption == nil {
		fields["selected_option"] = "selected_option is required"
	}
	if len(fields) > 0 {
		validationFailed(w, r, fields)
		return
	}

	q, err := h.repo.GetQuestion(r.Context(), req.QuestionID)
	if errors.Is(err, pgx.ErrNoRows) {
		notFound(w, r, "Question")
		return
	}
	if err != nil {
		internalError(w, r, err, "failed to load question")
		return
	}

	if *req.SelectedOption < 0 || *req.SelectedOption >= len(q.Options) {
		validationFailed(w, r, map[string]string{"selected_option": "Option out of range"})
		return
	}

	isCorrect, err := h.repo.RecordAnswer(r.Context(), middleware.GetUserID(r.Context()), q, *req.SelectedOption)
	if err != nil {
		internalError(w, r, err, "failed to record answer")
		return
	}

	writeJSON(w, http.StatusOK, models.SubmitAnswerResponse{
		IsCorrect:     isCorrect,
		CorrectOption: q.CorrectOption,
		Explanation:   q.Explanation,
	})
}

func (h *CatalogHandler) ListProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := h.repo.ListProgress(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		internalError(w, r, err, "failed to list progress")
		return
	}
	writeJSON(w, http.StatusOK, progress)
}
