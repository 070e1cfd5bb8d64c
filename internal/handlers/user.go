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

type userRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateFirstName(ctx context.Context, userID uuid.UUID, firstName string) error
}

type UserHandler struct {
	userRepo userRepository
}

func NewUserHandler(userRepo userRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

func (h *UserHandler) loadUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, err := h.userRepo.GetByID(r.Context(), middleware.GetUserID(r.Context()))
	if errors.Is(err, pgx.ErrNoRows) {
		notFound(w, r, "User")
		return nil, false
	}
	if err != nil {
		internalError(w, r, err, "failed to load user")
		return nil, false
	}
	return user, true
}

func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func profileOf(u *models.User) models.UserProfile {
	return models.UserProfile{
		ID:           u.ID,
		Username:     u.Email,
		FirstName:    u.FirstName,
		Email:        u.Email,
		DateJoined:   u.CreatedAt,
		Subscription: u.SubscriptionTier,
	}
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, profileOf(user))
}

// UpdateProfile changes the display name. Other profile fields are read-only.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.FirstName == nil {
		validationFailed(w, r, map[string]string{"first_name": "first_name is required"})
		return
	}

	firstName := strings.TrimSpace(*req.FirstName)
	if len(firstName) > 100 {
		validationFailed(w, r, map[string]string{"first_name": "Must be at most 100 characters"})
		return
	}

	if err := h.userRepo.UpdateFirstName(r.Context(), middleware.GetUserID(r.Context()), firstName); err != nil {
		internalError(w, r, err, "failed to update profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated", "first_name": firstName})
}
