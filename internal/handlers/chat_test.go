package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neetmentor-backend/internal/models"
	"neetmentor-backend/internal/services"
)

type stubSolver struct {
	reply      string
	err        error
	gotMessage string
	gotHistory []models.ChatMessage
	calls      int
}

func (s *stubSolver) SolveDoubt(ctx context.Context, q *models.Question, message string, history []models.ChatMessage) (string, error) {
	s.calls++
	s.gotMessage, s.gotHistory = message, history
	return s.reply, s.err
}

func TestChatHandler_AskDoubt(t *testing.T) {
	solver := &stubSolver{reply: "Use v = u + at with u = 0."}
	h := NewChatHandler(&stubCatalogRepo{question: sampleQuestion()}, solver)

	body := `{"message":" why is it 2? ","history":[{"role":"user","content":"hi"},{"role":"assistant","content":"hello"}]}`
	rr := httptest.NewRecorder()
	h.AskDoubt(rr, newRequest(http.MethodPost, "/", body, uuid.New(), map[string]string{"id": "7"}))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	resp := decodeBody[models.DoubtResponse](t, rr)
	assert.EqualValues(t, 7, resp.QuestionID)
	assert.Equal(t, "Use v = u + at with u = 0.", resp.Reply)
	assert.Equal(t, "why is it 2?", solver.gotMessage)
	assert.Len(t, solver.gotHistory, 2)
}

func TestChatHandler_AskDoubtValidation(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		body   string
		status int
	}{
		{"empty message", "7", `{"message":"   "}`, http.StatusBadRequest},
		{"message too long", "7", `{"message":"` + strings.Repeat("a", services.MaxDoubtMessageLen+1) + `"}`, http.StatusBadRequest},
		{"bad id", "abc", `{"message":"why"}`, http.StatusBadRequest},
		{"unknown question", "8", `{"message":"why"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			solver := &stubSolver{reply: "x"}
			h := NewChatHandler(&stubCatalogRepo{question: sampleQuestion()}, solver)

			rr := httptest.NewRecorder()
			h.AskDoubt(rr, newRequest(http.MethodPost, "/", tt.body, uuid.New(), map[string]string{"id": tt.id}))

			assert.Equal(t, tt.status, rr.Code)
			assert.Zero(t, solver.calls)
		})
	}
}

func TestChatHandler_AIUnavailable(t *testing.T) {
	h := NewChatHandler(&stubCatalogRepo{question: sampleQuestion()}, &stubSolver{err: services.ErrAIUnavailable})

	rr := httptest.NewRecorder()
	h.AskDoubt(rr, newRequest(http.MethodPost, "/", `{"message":"why"}`, uuid.New(), map[string]string{"id": "7"}))

	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "AI_UNAVAILABLE", decodeError(t, rr).Code)
}

func TestChatHandler_NilGeminiServiceIsUnavailable(t *testing.T) {
	var gemini *services.GeminiService
	h := NewChatHandler(&stubCatalogRepo{question: sampleQuestion()}, gemini)

	rr := httptest.NewRecorder()
	h.AskDoubt(rr, newRequest(http.MethodPost, "/", `{"message":"why"}`, uuid.New(), map[string]string{"id": "7"}))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestChatHandler_SolverFailure(t *testing.T) {
	h := NewChatHandler(&stubCatalogRepo{question: sampleQuestion()}, &stubSolver{err: errors.New("quota exceeded")})

	rr := httptest.NewRecorder()
	h.AskDoubt(rr, newRequest(http.MethodPost, "/", `{"message":"why"}`, uuid.New(), map[string]string{"id": "7"}))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "INTERNAL_ERROR", decodeError(t, rr).Code)
}
