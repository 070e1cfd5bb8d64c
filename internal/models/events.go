package models

import (
	"time"

	"github.com/google/uuid"
)

// WebSocket message types
const (
	EventAnalyticsUpdated = "analytics_updated"
)

type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// AnalyticsUpdated tells connected clients their report is stale.
type AnalyticsUpdated struct {
	Source     string    `json:"source"` // "quiz_attempt" | "study_log" | "note" | "user_storage"
	Action     string    `json:"action"` // "created" | "updated" | "deleted"
	ResourceID string    `json:"resource_id,omitempty"`
	At         time.Time `json:"at"`
}

// Email job kinds
const (
	EmailKindOTP    = "otp"
	EmailKindDigest = "digest"
)

// EmailJob is a queued outbound email processed by the worker pool.
type EmailJob struct {
	ID         uuid.UUID `json:"id"`
	Kind       string    `json:"kind"`
	To         string    `json:"to"`
	Subject    string    `json:"subject"`
	HTML       string    `json:"html"`
	RetryCount int       `json:"retry_count"`
	MaxRetries int       `json:"max_retries"`
	CreatedAt  time.Time `json:"created_at"`
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
