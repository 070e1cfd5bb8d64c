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

type mockTestRepository interface {
	Create(ctx context.Context, m *models.MockTestResult) error
	GetByID(ctx context.Context, id, userID uuid.UUID) (*models.MockTestResult, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.MockTestResult, error)
	Update(ctx context.Context, m *models.MockTestResult) error
	Delete(ctx context.Context, id, userID uuid.UUID) (bool, error)
}

type MockTestHandler struct {
	repo mockTestRepository
}

func NewMockTestHandler(repo mockTestRepository) *MockTestHandler {
	return &MockTestHandler{repo: repo}
}

// applyMockTest copies the present fields of req onto m. When creating,
// every scored field must be present.
func applyMockTest(m *models.MockTestResult, req *models.MockTestRequest, creating bool) map[string]string {
	fields := map[string]string{}

	if creating {
		required := map[string]bool{
			"name":      req.Name != nil,
			"date":      req.Date != nil,
			"score":     req.Score != nil,
			"physics":   req.Physics != nil,
			"chemistry": req.Chemistry != nil,
			"biology":   req.Biology != nil,
			"incorrect": req.Incorrect != nil,
		}
		for name, present := range required {
			if !present {
				fields[name] = name + " is required"
			}
		}
		if len(fields) > 0 {
			return fields
		}
	}

	if req.Name != nil {
		m.Name = strings.TrimSpace(*req.Name)
	}
	if req.Date != nil {
		m.Date = *req.Date
	}
	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	setInt(&m.Score, req.Score)
	setInt(&m.Physics, req.Physics)
	setInt(&m.Chemistry, req.Chemistry)
	setInt(&m.Biology, req.Biology)
	setInt(&m.Incorrect, req.Incorrect)
	setInt(&m.TimeBio, req.TimeBio)
	setInt(&m.TimeChem, req.TimeChem)
	setInt(&m.TimePhy, req.TimePhy)
	if req.AttemptOrder != nil {
		m.AttemptOrder = req.AttemptOrder
	}
	if len(req.MistakeBreakdown) > 0 {
		m.MistakeBreakdown = req.MistakeBreakdown
	}

	if m.Name == "" {
		fields["name"] = "name is required"
	}
	if m.Incorrect < 0 {
		fields["incorrect"] = "Must be zero or more"
	}
	for name, v := range map[string]int{"time_bio": m.TimeBio, "time_chem": m.TimeChem, "time_phy": m.TimePhy} {
		if v < 0 {
			fields[name] = "Must be zero or more"
		}
	}
	if len(m.MistakeBreakdown) > 0 {
		var list []json.RawMessage
		if err := json.Unmarshal(m.MistakeBreakdown, &list); err != nil {
			fields["mistake_breakdown"] = "Must be a JSON list"
		}
	}
	return fields
}

func (h *MockTestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.MockTestRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result := &models.MockTestResult{UserID: middleware.GetUserID(r.Context())}
	if fields := applyMockTest(result, &req, true); len(fields) > 0 {
		validationFailed(w, r, fields)
		return
	}

	if err := h.repo.Create(r.Context(), result); err != nil {
		internalError(w, r, err, "failed to create mock test result")
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *MockTestHandler) List(w http.ResponseWriter, r *http.Request) {
	results, err := h.repo.ListByUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		internalError(w, r, err, "failed to list mock test results")
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *MockTestHandler) load(w http.ResponseWriter, r *http.Request) (*models.MockTestResult, bool) {
	id, ok := idParam(w, r)
	if !ok {
		return nil, false
	}
	result, err := h.repo.GetByID(r.Context(), id, middleware.GetUserID(r.Context()))
	if errors.Is(err, pgx.ErrNoRows) {
		notFound(w, r, "Mock test result")
		return nil, false
	}
	if err != nil {
		internalError(w, r, err, "failed to load mock test result")
		return nil, false
	}
	return result, true
}

func (h *MockTestHandler) Get(w http.ResponseWriter, r *http.Request) {
	result, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *MockTestHandler) Update(w http.ResponseWriter, r *http.Request) {
	result, ok := h.load(w, r)
	if !ok {
		return
	}

	var req models.MockTestRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if fields := applyMockTest(result, &req, false); len(fields) > 0 {
		validationFailed(w, r, fields)
		return
	}

	if err := h.repo.Update(r.Context(), result); err != nil {
		internalError(w, r, err, "failed to update mock test result")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *MockTestHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	deleted, err := h.repo.Delete(r.Context(), id, middleware.GetUserID(r.Context()))
	if err != nil {
		internalError(w, r, err, "failed to delete mock test result")
		return
	}
	if !deleted {
		notFound(w, r, "Mock test result")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
