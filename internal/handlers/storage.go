package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"

	"neetmentor-backend/internal/middleware"
)

const sourceUserStorage = "user_storage"

type storageRepository interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (json.RawMessage, error)
	Replace(ctx context.Context, userID uuid.UUID, data json.RawMessage) (json.RawMessage, error)
	Merge(ctx context.Context, userID uuid.UUID, patch json.RawMessage) (json.RawMessage, error)
}

// StorageHandler exposes the per-user JSON blob that holds syllabus
// progress among other client state.
type StorageHandler struct {
	repo   storageRepository
	events eventPublisher
}

func NewStorageHandler(repo storageRepository, events eventPublisher) *StorageHandler {
	return &StorageHandler{repo: repo, events: events}
}

func readRawJSON(w http.ResponseWriter, r *http.Request) (json.RawMessage, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil || !json.Valid(body) {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return nil, false
	}
	return body, true
}

func isJSONObject(raw json.RawMessage) bool {
	var obj map[string]json.RawMessage
	return json.Unmarshal(raw, &obj) == nil && obj != nil
}

func (h *StorageHandler) Get(w http.ResponseWriter, r *http.Request) {
	data, err := h.repo.GetOrCreate(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		internalError(w, r, err, "failed to load user storage")
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (h *StorageHandler) Replace(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	body, ok := readRawJSON(w, r)
	if !ok {
		return
	}

	data, err := h.repo.Replace(r.Context(), userID, body)
	if err != nil {
		internalError(w, r, err, "failed to replace user storage")
		return
	}
	h.events.AnalyticsChanged(r.Context(), userID, sourceUserStorage, "updated", "")
	writeJSON(w, http.StatusOK, data)
}

// Merge shallow-merges an object body into the blob. Any other JSON value
// leaves the blob as it was.
func (h *StorageHandler) Merge(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	body, ok := readRawJSON(w, r)
	if !ok {
		return
	}

	if !isJSONObject(body) {
		data, err := h.repo.GetOrCreate(r.Context(), userID)
		if err != nil {
			internalError(w, r, err, "failed to load user storage")
			return
		}
		writeJSON(w, http.StatusOK, data)
		return
	}

	data, err := h.repo.Merge(r.Context(), userID, body)
	if err != nil {
		internalError(w, r, err, "failed to update user storage")
		return
	}
	h.events.AnalyticsChanged(r.Context(), userID, sourceUserStorage, "updated", "")
	writeJSON(w, http.StatusOK, data)
}
