package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"neetmentor-backend/internal/middleware"
	"neetmentor-backend/internal/models"
)

const sourceQuizAttempt = "quiz_attempt"

type quizAttemptRepository interface {
	Create(ctx context.Context, a *models.QuizAttempt) error
	GetByID(ctx context.Context, id, userID uuid.UUID) (*models.QuizAttempt, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.QuizAttempt, error)
	Delete(ctx context.Context, id, userID uuid.UUID) (bool, error)
}

type QuizAttemptHandler struct {
	repo   quizAttemptRepository
	events eventPublisher
}

func NewQuizAttemptHandler(repo quizAttemptRepository, events eventPublisher) *QuizAttemptHandler {
	return &QuizAttemptHandler{repo: repo, events: events}
}

func validateQuizAttempt(req *models.CreateQuizAttemptRequest) map[string]string {
	fields := map[string]string{}
	req.QuizName = strings.TrimSpace(req.QuizName)
	if req.QuizName == "" {
		fields["quiz_name"] = "quiz_name is required"
	}
	if req.TotalQuestions < 0 {
		fields["total_questions"] = "Must be zero or more"
	}
	if req.CorrectAnswers < 0 {
		fields["correct_answers"] = "Must be zero or more"
	} else if req.CorrectAnswers > req.TotalQuestions {
		fields["correct_answers"] = "Cannot exceed total_questions"
	}
	if req.IncorrectAnswers < 0 {
		fields["incorrect_answers"] = "Must be zero or more"
	}
	if req.TimeTaken < 0 {
		fields["time_taken"] = "Must be zero or more"
	}
	if req.Subject != nil {
		s := strings.TrimSpace(*req.Subject)
		if s == "" {
			req.Subject = nil
		} else {
			req.Subject = &s
		}
	}
	if len(req.MistakeData) > 0 {
		var list []json.RawMessage
		if err := json.Unmarshal(req.MistakeData, &list); err != nil {
			fields["mistake_data"] = "Must be a JSON list"
		}
	}
	return fields
}

func (h *QuizAttemptHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req models.CreateQuizAttemptRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if fields := validateQuizAttempt(&req); len(fields) > 0 {
		validationFailed(w, r, fields)
		return
	}

	attempt := &models.QuizAttempt{
		UserID:           userID,
		QuizName:         req.QuizName,
		Category:         req.Category,
		Subject:          req.Subject,
		Score:            req.Score,
		TotalQuestions:   req.TotalQuestions,
		CorrectAnswers:   req.CorrectAnswers,
		IncorrectAnswers: req.IncorrectAnswers,
		TimeTaken:        req.TimeTaken,
		MistakeData:      req.MistakeData,
	}
	if err := h.repo.Create(r.Context(), attempt); err != nil {
		internalError(w, r, err, "failed to create quiz attempt")
		return
	}

	h.events.AnalyticsChanged(r.Context(), userID, sourceQuizAttempt, "created", attempt.ID.String())
	writeJSON(w, http.StatusCreated, attempt)
}

func (h *QuizAttemptHandler) List(w http.ResponseWriter, r *http.Request) {
	attempts, err := h.repo.ListByUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		internalError(w, r, err, "failed to list quiz attempts")
		return
	}
	writeJSON(w, http.StatusOK, attempts)
}

func (h *QuizAttemptHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	attempt, err := h.repo.GetByID(r.Context(), id, middleware.GetUserID(r.Context()))
	if errors.Is(err, pgx.ErrNoRows) {
		notFound(w, r, "Quiz attempt")
		return
	}
	if err != nil {
		internalError(w, r, err, "failed to load quiz attempt")
		return
	}
	writeJSON(w, http.StatusOK, attempt)
}

func (h *QuizAttemptHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	userID := middleware.GetUserID(r.Context())

	deleted, err := h.repo.Delete(r.Context(), id, userID)
	if err != nil {
		internalError(w, r, err, "failed to delete quiz attempt")
		return
	}
	if !deleted {
		notFound(w, r, "Quiz attempt")
		return
	}

	h.events.AnalyticsChanged(r.Context(), userID, sourceQuizAttempt, "deleted", id.String())
	w.WriteHeader(http.StatusNoContent)
}
