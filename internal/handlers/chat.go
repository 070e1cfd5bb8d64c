package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"

	"neetmentor-backend/internal/models"
	"neetmentor-backend/internal/services"
)

type questionGetter interface {
	GetQuestion(ctx context.Context, id int64) (*models.Question, error)
}

type doubtSolver interface {
	SolveDoubt(ctx context.Context, q *models.Question, message string, history []models.ChatMessage) (string, error)
}

// ChatHandler answers student doubts about a single question.
type ChatHandler struct {
	questions questionGetter
	solver    doubtSolver
}

func NewChatHandler(questions questionGetter, solver doubtSolver) *ChatHandler {
	return &ChatHandler{questions: questions, solver: solver}
}

func (h *ChatHandler) AskDoubt(w http.ResponseWriter, r *http.Request) {
	questionID, ok := int64Param(w, r, "id")
	if !ok {
		return
	}

	var req models.DoubtRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		validationFailed(w, r, map[string]string{"message": "Message is required"})
		return
	}
	if utf8.RuneCountInString(req.Message) > services.MaxDoubtMessageLen {
		validationFailed(w, r, map[string]string{"message": "Message is too long"})
		return
	}

	question, err := h.questions.GetQuestion(r.Context(), questionID)
	if errors.Is(err, pgx.ErrNoRows) {
		notFound(w, r, "Question")
		return
	}
	if err != nil {
		internalError(w, r, err, "failed to load question")
		return
	}

	reply, err := h.solver.SolveDoubt(r.Context(), question, req.Message, req.History)
	if errors.Is(err, services.ErrAIUnavailable) {
		handleServiceError(w, r, err)
		return
	}
	if err != nil {
		internalError(w, r, err, "doubt solver failed")
		return
	}

	writeJSON(w, http.StatusOK, models.DoubtResponse{QuestionID: question.ID, Reply: reply})
}
