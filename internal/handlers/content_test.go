package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neetmentor-backend/internal/models"
	"neetmentor-backend/internal/services"
)

type stubVideoLookup struct {
	video *models.VideoResource
	err   error
	got   string
}

func (s *stubVideoLookup) Lookup(ctx context.Context, rawURL string) (*models.VideoResource, error) {
	s.got = rawURL
	return s.video, s.err
}

func TestContentHandler_ValidateYouTube(t *testing.T) {
	lookup := &stubVideoLookup{video: &models.VideoResource{VideoID: "dQw4w9WgXcQ", Title: "Kinematics in one shot", DurationSeconds: 3600}}
	h := NewContentHandler(lookup)

	rr := httptest.NewRecorder()
	h.ValidateYouTube(rr, newRequest(http.MethodPost, "/", `{"url":"https://youtu.be/dQw4w9WgXcQ"}`, uuid.New(), nil))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "https://youtu.be/dQw4w9WgXcQ", lookup.got)
	assert.Equal(t, "Kinematics in one shot", decodeBody[models.VideoResource](t, rr).Title)
}

func TestContentHandler_ValidateYouTubeErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"missing url", `{}`, nil, http.StatusBadRequest},
		{"not a youtube link", `{"url":"https://example.com"}`, &services.ValidationError{Fields: map[string]string{"url": "bad"}}, http.StatusBadRequest},
		{"video unavailable", `{"url":"https://youtu.be/aaaaaaaaaaa"}`, &services.NotFoundError{Message: "gone"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewContentHandler(&stubVideoLookup{err: tt.err})
			rr := httptest.NewRecorder()
			h.ValidateYouTube(rr, newRequest(http.MethodPost, "/", tt.body, uuid.New(), nil))
			assert.Equal(t, tt.status, rr.Code)
		})
	}
}
