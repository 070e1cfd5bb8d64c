package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neetmentor-backend/internal/models"
)

type stubTaskRepo struct {
	created []*models.StudyTask
	task    *models.StudyTask
	updated *models.StudyTask
}

func (s *stubTaskRepo) Create(ctx context.Context, t *models.StudyTask) error {
	t.ID = uuid.New()
	s.created = append(s.created, t)
	return nil
}

func (s *stubTaskRepo) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.StudyTask, error) {
	if s.task == nil || s.task.ID != id || s.task.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	cp := *s.task
	return &cp, nil
}

func (s *stubTaskRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.StudyTask, error) {
	return []*models.StudyTask{}, nil
}

func (s *stubTaskRepo) Update(ctx context.Context, t *models.StudyTask) error {
	s.updated = t
	return nil
}

func (s *stubTaskRepo) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	return false, nil
}

func TestTaskHandler_Create(t *testing.T) {
	repo := &stubTaskRepo{}
	h := NewTaskHandler(repo)

	rr := httptest.NewRecorder()
	h.Create(rr, newRequest(http.MethodPost, "/", `{"subject":"Biology","topic":"Genetics","time_goal":"45 min","priority":"HIGH"}`, uuid.New(), nil))

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	require.Len(t, repo.created, 1)
	assert.Equal(t, "high", repo.created[0].Priority)
	assert.Equal(t, "45 min", repo.created[0].TimeGoal)
	assert.False(t, repo.created[0].IsDone)
}

func TestTaskHandler_CreateDefaultsPriority(t *testing.T) {
	repo := &stubTaskRepo{}
	h := NewTaskHandler(repo)

	rr := httptest.NewRecorder()
	h.Create(rr, newRequest(http.MethodPost, "/", `{"subject":"Physics","topic":"Optics"}`, uuid.New(), nil))

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, models.DefaultTaskPriority, repo.created[0].Priority)
}

func TestTaskHandler_CreateValidation(t *testing.T) {
	h := NewTaskHandler(&stubTaskRepo{})

	rr := httptest.NewRecorder()
	h.Create(rr, newRequest(http.MethodPost, "/", `{"subject":" ","priority":"urgent"}`, uuid.New(), nil))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	fields := decodeError(t, rr).Fields
	assert.Contains(t, fields, "subject")
	assert.Contains(t, fields, "topic")
	assert.Contains(t, fields, "priority")
}

func TestTaskHandler_MarkDone(t *testing.T) {
	userID := uuid.New()
	existing := &models.StudyTask{ID: uuid.New(), UserID: userID, Subject: "Chemistry", Topic: "Mole concept", Priority: "low"}
	repo := &stubTaskRepo{task: existing}
	h := NewTaskHandler(repo)

	rr := httptest.NewRecorder()
	h.Update(rr, newRequest(http.MethodPatch, "/", `{"is_done":true}`, userID, map[string]string{"id": existing.ID.String()}))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.NotNil(t, repo.updated)
	assert.True(t, repo.updated.IsDone)
	assert.Equal(t, "low", repo.updated.Priority)
}

func TestTaskHandler_DeleteMissing(t *testing.T) {
	h := NewTaskHandler(&stubTaskRepo{})
	rr := httptest.NewRecorder()
	h.Delete(rr, newRequest(http.MethodDelete, "/", "", uuid.New(), map[string]string{"id": uuid.NewString()}))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
