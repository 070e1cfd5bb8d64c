package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStorageRepo keeps a single user's blob and merges the way the
// Postgres repository does: top-level keys of the patch win.
type stubStorageRepo struct {
	data   map[string]json.RawMessage
	merges int
}

func (s *stubStorageRepo) current() json.RawMessage {
	if s.data == nil {
		s.data = map[string]json.RawMessage{}
	}
	out, _ := json.Marshal(s.data)
	return out
}

func (s *stubStorageRepo) GetOrCreate(ctx context.Context, userID uuid.UUID) (json.RawMessage, error) {
	return s.current(), nil
}

func (s *stubStorageRepo) Replace(ctx context.Context, userID uuid.UUID, data json.RawMessage) (json.RawMessage, error) {
	s.data = map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &s.data); err != nil {
		return data, nil
	}
	return s.current(), nil
}

func (s *stubStorageRepo) Merge(ctx context.Context, userID uuid.UUID, patch json.RawMessage) (json.RawMessage, error) {
	s.merges++
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(patch, &obj); err != nil {
		return nil, err
	}
	s.current()
	for k, v := range obj {
		s.data[k] = v
	}
	return s.current(), nil
}

func TestStorageHandler_GetCreatesEmptyBlob(t *testing.T) {
	h := NewStorageHandler(&stubStorageRepo{}, &stubEvents{})

	rr := httptest.NewRecorder()
	h.Get(rr, newRequest(http.MethodGet, "/", "", uuid.New(), nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{}`, rr.Body.String())
}

func TestStorageHandler_ReplaceAndMerge(t *testing.T) {
	userID := uuid.New()
	repo := &stubStorageRepo{}
	events := &stubEvents{}
	h := NewStorageHandler(repo, events)

	rr := httptest.NewRecorder()
	h.Replace(rr, newRequest(http.MethodPost, "/", `{"syllabus":{"Physics":{"Optics":"completed"}},"theme":"dark"}`, userID, nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = httptest.NewRecorder()
	h.Merge(rr, newRequest(http.MethodPatch, "/", `{"theme":"light"}`, userID, nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"syllabus":{"Physics":{"Optics":"completed"}},"theme":"light"}`, rr.Body.String())

	require.Len(t, events.events, 2)
	for _, e := range events.events {
		assert.Equal(t, "user_storage", e.source)
		assert.Equal(t, userID, e.userID)
	}
}

func TestStorageHandler_MergeNonObjectLeavesBlob(t *testing.T) {
	for _, body := range []string{`[1,2,3]`, `"text"`, `42`, `null`} {
		t.Run(body, func(t *testing.T) {
			repo := &stubStorageRepo{data: map[string]json.RawMessage{"theme": json.RawMessage(`"dark"`)}}
			events := &stubEvents{}
			h := NewStorageHandler(repo, events)

			rr := httptest.NewRecorder()
			h.Merge(rr, newRequest(http.MethodPatch, "/", body, uuid.New(), nil))

			require.Equal(t, http.StatusOK, rr.Code)
			assert.JSONEq(t, `{"theme":"dark"}`, rr.Body.String())
			assert.Zero(t, repo.merges)
			assert.Empty(t, events.events)
		})
	}
}

func TestStorageHandler_RejectsInvalidJSON(t *testing.T) {
	repo := &stubStorageRepo{}
	h := NewStorageHandler(repo, &stubEvents{})

	rr := httptest.NewRecorder()
	h.Replace(rr, newRequest(http.MethodPost, "/", `{"unterminated"`, uuid.New(), nil))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rr).Code)
}
