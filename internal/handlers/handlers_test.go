package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"neetmentor-backend/internal/middleware"
	"neetmentor-backend/internal/models"
)

type recordedEvent struct {
	userID     uuid.UUID
	source     string
	action     string
	resourceID string
}

type stubEvents struct {
	events []recordedEvent
}

func (s *stubEvents) AnalyticsChanged(ctx context.Context, userID uuid.UUID, source, action, resourceID string) {
	s.events = append(s.events, recordedEvent{userID: userID, source: source, action: action, resourceID: resourceID})
}

// newRequest builds a request as the router would hand it over: URL params
// set and the caller authenticated as userID.
func newRequest(method, target, body string, userID uuid.UUID, params map[string]string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)

	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, middleware.UserIDKey, userID)
	return req.WithContext(ctx)
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), "body: %s", rr.Body.String())
	return out
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) models.APIError {
	t.Helper()
	return decodeBody[models.ErrorResponse](t, rr).Error
}
