package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"neetmentor-backend/internal/models"
)

// ErrRegistrationNotFound is returned when no pending registration exists
// for an email, either because none was made or because it expired.
var ErrRegistrationNotFound = errors.New("pending registration not found")

// RegistrationStore keeps sign-ups awaiting OTP confirmation in Redis. One
// entry per email; saving again replaces the previous attempt.
type RegistrationStore struct {
	redis *redis.Client
}

func NewRegistrationStore(redisClient *redis.Client) *RegistrationStore {
	return &RegistrationStore{redis: redisClient}
}

func registrationKey(email string) string {
	return "pending_registration:" + strings.ToLower(email)
}

func (s *RegistrationStore) Save(ctx context.Context, p *models.PendingRegistration, ttl time.Duration) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode pending registration: %w", err)
	}
	return s.redis.Set(ctx, registrationKey(p.Email), data, ttl).Err()
}

func (s *RegistrationStore) Get(ctx context.Context, email string) (*models.PendingRegistration, error) {
	raw, err := s.redis.Get(ctx, registrationKey(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrRegistrationNotFound
	}
	if err != nil {
		return nil, err
	}

	var p models.PendingRegistration
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to decode pending registration: %w", err)
	}
	return &p, nil
}

func (s *RegistrationStore) Exists(ctx context.Context, email string) (bool, error) {
	n, err := s.redis.Exists(ctx, registrationKey(email)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RegistrationStore) Delete(ctx context.Context, email string) error {
	return s.redis.Del(ctx, registrationKey(email)).Err()
}
