package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"neetmentor-backend/internal/models"
)

// UserChannel is the pub/sub channel the websocket hub relays to a user's sockets.
func UserChannel(userID uuid.UUID) string {
	return fmt.Sprintf("user_updates:%s", userID.String())
}

// EventPublisher fans live updates out to every server instance via Redis.
type EventPublisher struct {
	redis *redis.Client
}

func NewEventPublisher(redisClient *redis.Client) *EventPublisher {
	return &EventPublisher{redis: redisClient}
}

func (p *EventPublisher) Publish(ctx context.Context, userID uuid.UUID, msg models.WSMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return p.redis.Publish(ctx, UserChannel(userID), string(data)).Err()
}

// AnalyticsChanged tells the user's open dashboards to refetch analytics.
// Delivery is best effort.
func (p *EventPublisher) AnalyticsChanged(ctx context.Context, userID uuid.UUID, source, action, resourceID string) {
	err := p.Publish(ctx, userID, models.WSMessage{
		Type: models.EventAnalyticsUpdated,
		Payload: models.AnalyticsUpdated{
			Source:     source,
			Action:     action,
			ResourceID: resourceID,
			At:         time.Now().UTC(),
		},
	})
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Str("source", source).Msg("failed to publish analytics update")
	}
}
