package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"neetmentor-backend/internal/middleware"
	"neetmentor-backend/internal/models"
)

const sourceStudyLog = "study_log"

type studyLogRepository interface {
	Create(ctx context.Context, l *models.StudyLog) error
	GetByID(ctx context.Context, id, userID uuid.UUID) (*models.StudyLog, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.StudyLog, error)
	Update(ctx context.Context, l *models.StudyLog) error
	Delete(ctx context.Context, id, userID uuid.UUID) (bool, error)
}

type StudyLogHandler struct {
	repo   studyLogRepository
	events eventPublisher
	loc    *time.Location
	now    func() time.Time
}

// NewStudyLogHandler builds the handler. Logs without a date are filed
// under today in loc.
func NewStudyLogHandler(repo studyLogRepository, events eventPublisher, loc *time.Location) *StudyLogHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &StudyLogHandler{repo: repo, events: events, loc: loc, now: time.Now}
}

func applyStudyLog(l *models.StudyLog, req *models.StudyLogRequest) map[string]string {
	if req.Date != nil {
		l.Date = *req.Date
	}
	if req.Minutes != nil {
		l.Minutes = *req.Minutes
	}
	if req.Subject != nil {
		l.Subject = req.Subject
	}
	if req.Topic != nil {
		l.Topic = req.Topic
	}

	fields := map[string]string{}
	if l.Minutes < 0 {
		fields["minutes"] = "Must be zero or more"
	}
	if l.Minutes > 24*60 {
		fields["minutes"] = "Cannot exceed a full day"
	}
	return fields
}

func (h *StudyLogHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req models.StudyLogRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Minutes == nil {
		validationFailed(w, r, map[string]string{"minutes": "minutes is required"})
		return
	}

	entry := &models.StudyLog{UserID: userID, Date: models.NewDate(h.now().In(h.loc))}
	if fields := applyStudyLog(entry, &req); len(fields) > 0 {
		validationFailed(w, r, fields)
		return
	}

	if err := h.repo.Create(r.Context(), entry); err != nil {
		internalError(w, r, err, "failed to create study log")
		return
	}

	h.events.AnalyticsChanged(r.Context(), userID, sourceStudyLog, "created", entry.ID.String())
	writeJSON(w, http.StatusCreated, entry)
}

func (h *StudyLogHandler) List(w http.ResponseWriter, r *http.Request) {
	logs, err := h.repo.ListByUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		internalError(w, r, err, "failed to list study logs")
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (h *StudyLogHandler) load(w http.ResponseWriter, r *http.Request) (*models.StudyLog, bool) {
	id, ok := idParam(w, r)
	if !ok {
		return nil, false
	}
	entry, err := h.repo.GetByID(r.Context(), id, middleware.GetUserID(r.Context()))
	if errors.Is(err, pgx.ErrNoRows) {
		notFound(w, r, "Study log")
		return nil, false
	}
	if err != nil {
		internalError(w, r, err, "failed to load study log")
		return nil, false
	}
	return entry, true
}

func (h *StudyLogHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Update applies the fields present in the body.
func (h *StudyLogHandler) Update(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.load(w, r)
	if !ok {
		return
	}

	var req models.StudyLogRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if fields := applyStudyLog(entry, &req); len(fields) > 0 {
		validationFailed(w, r, fields)
		return
	}

	if err := h.repo.Update(r.Context(), entry); err != nil {
		internalError(w, r, err, "failed to update study log")
		return
	}

	h.events.AnalyticsChanged(r.Context(), entry.UserID, sourceStudyLog, "updated", entry.ID.String())
	writeJSON(w, http.StatusOK, entry)
}

func (h *StudyLogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	userID := middleware.GetUserID(r.Context())

	deleted, err := h.repo.Delete(r.Context(), id, userID)
	if err != nil {
		internalError(w, r, err, "failed to delete study log")
		return
	}
	if !deleted {
		notFound(w, r, "Study log")
		return
	}

	h.events.AnalyticsChanged(r.Context(), userID, sourceStudyLog, "deleted", id.String())
	w.WriteHeader(http.StatusNoContent)
}
