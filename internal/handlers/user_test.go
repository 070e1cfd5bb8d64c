package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neetmentor-backend/internal/models"
)

type stubUserRepo struct {
	user      *models.User
	firstName string
}

func (s *stubUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, pgx.ErrNoRows
	}
	return s.user, nil
}

func (s *stubUserRepo) UpdateFirstName(ctx context.Context, userID uuid.UUID, firstName string) error {
	s.firstName = firstName
	return nil
}

func TestUserHandler_GetProfile(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "asha@example.com", FirstName: "Asha", SubscriptionTier: "Pro", CreatedAt: time.Now()}
	h := NewUserHandler(&stubUserRepo{user: user})

	rr := httptest.NewRecorder()
	h.GetProfile(rr, newRequest(http.MethodGet, "/", "", user.ID, nil))

	require.Equal(t, http.StatusOK, rr.Code)
	profile := decodeBody[models.UserProfile](t, rr)
	assert.Equal(t, "asha@example.com", profile.Username)
	assert.Equal(t, "Pro", profile.Subscription)

	rr = httptest.NewRecorder()
	h.GetMe(rr, newRequest(http.MethodGet, "/", "", uuid.New(), nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUserHandler_UpdateProfile(t *testing.T) {
	repo := &stubUserRepo{}
	h := NewUserHandler(repo)

	rr := httptest.NewRecorder()
	h.UpdateProfile(rr, newRequest(http.MethodPatch, "/", `{"first_name":"  Ravi "}`, uuid.New(), nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Ravi", repo.firstName)

	rr = httptest.NewRecorder()
	h.UpdateProfile(rr, newRequest(http.MethodPatch, "/", `{}`, uuid.New(), nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	h.UpdateProfile(rr, newRequest(http.MethodPatch, "/", `{"first_name":"`+strings.Repeat("x", 101)+`"}`, uuid.New(), nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
