package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"neetmentor-backend/internal/middleware"
	"neetmentor-backend/internal/models"
)

type taskRepository interface {
	Create(ctx context.Context, t *models.StudyTask) error
	GetByID(ctx context.Context, id, userID uuid.UUID) (*models.StudyTask, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.StudyTask, error)
	Update(ctx context.Context, t *models.StudyTask) error
	Delete(ctx context.Context, id, userID uuid.UUID) (bool, error)
}

var validPriorities = map[string]bool{"low": true, "medium": true, "high": true}

type TaskHandler struct {
	repo taskRepository
}

func NewTaskHandler(repo taskRepository) *TaskHandler {
	return &TaskHandler{repo: repo}
}

func applyTask(t *models.StudyTask, req *models.StudyTaskRequest) map[string]string {
	if req.Subject != nil {
		t.Subject = strings.TrimSpace(*req.Subject)
	}
	if req.Topic != nil {
		t.Topic = strings.TrimSpace(*req.Topic)
	}
	if req.TimeGoal != nil {
		t.TimeGoal = *req.TimeGoal
	}
	if req.QuestionsGoal != nil {
		t.QuestionsGoal = *req.QuestionsGoal
	}
	if req.Priority != nil {
		t.Priority = strings.ToLower(strings.TrimSpace(*req.Priority))
	}
	if req.IsDone != nil {
		t.IsDone = *req.IsDone
	}
	if t.Priority == "" {
		t.Priority = models.DefaultTaskPriority
	}

	fields := map[string]string{}
	if t.Subject == "" {
		fields["subject"] = "subject is required"
	}
	if t.Topic == "" {
		fields["topic"] = "topic is required"
	}
	if !validPriorities[t.Priority] {
		fields["priority"] = "Must be one of low, medium, high"
	}
	return fields
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.StudyTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	task := &models.StudyTask{UserID: middleware.GetUserID(r.Context())}
	if fields := applyTask(task, &req); len(fields) > 0 {
		validationFailed(w, r, fields)
		return
	}

	if err := h.repo.Create(r.Context(), task); err != nil {
		internalError(w, r, err, "failed to create task")
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// List serves both /tasks and the read-only /task-history, newest first.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.repo.ListByUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		internalError(w, r, err, "failed to list tasks")
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) load(w http.ResponseWriter, r *http.Request) (*models.StudyTask, bool) {
	id, ok := idParam(w, r)
	if !ok {
		return nil, false
	}
	task, err := h.repo.GetByID(r.Context(), id, middleware.GetUserID(r.Context()))
	if errors.Is(err, pgx.ErrNoRows) {
		notFound(w, r, "Task")
		return nil, false
	}
	if err != nil {
		internalError(w, r, err, "failed to load task")
		return nil, false
	}
	return task, true
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	task, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	task, ok := h.load(w, r)
	if !ok {
		return
	}

	var req models.StudyTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if fields := applyTask(task, &req); len(fields) > 0 {
		validationFailed(w, r, fields)
		return
	}

	if err := h.repo.Update(r.Context(), task); err != nil {
		internalError(w, r, err, "failed to update task")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	deleted, err := h.repo.Delete(r.Context(), id, middleware.GetUserID(r.Context()))
	if err != nil {
		internalError(w, r, err, "failed to delete task")
		return
	}
	if !deleted {
		notFound(w, r, "Task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
