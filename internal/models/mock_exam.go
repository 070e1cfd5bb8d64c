package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MockTestResult is a full-length mock exam entered by the student, with
// per-subject marks and time split.
type MockTestResult struct {
	ID               uuid.UUID       `json:"id"`
	UserID           uuid.UUID       `json:"user"`
	Name             string          `json:"name"`
	Date             Date            `json:"date"`
	Score            int             `json:"score"`
	Physics          int             `json:"physics"`
	Chemistry        int             `json:"chemistry"`
	Biology          int             `json:"biology"`
	Incorrect        int             `json:"incorrect"`
	AttemptOrder     *string         `json:"attempt_order"`
	TimeBio          int             `json:"time_bio"`
	TimeChem         int             `json:"time_chem"`
	TimePhy          int             `json:"time_phy"`
	MistakeBreakdown json.RawMessage `json:"mistake_breakdown"`
	CreatedAt        time.Time       `json:"-"`
}

type MockTestRequest struct {
	Name             *string         `json:"name"`
	Date             *Date           `json:"date"`
	Score            *int            `json:"score"`
	Physics          *int            `json:"physics"`
	Chemistry        *int            `json:"chemistry"`
	Biology          *int            `json:"biology"`
	Incorrect        *int            `json:"incorrect"`
	AttemptOrder     *string         `json:"attempt_order"`
	TimeBio          *int            `json:"time_bio"`
	TimeChem         *int            `json:"time_chem"`
	TimePhy          *int            `json:"time_phy"`
	MistakeBreakdown json.RawMessage `json:"mistake_breakdown"`
}
