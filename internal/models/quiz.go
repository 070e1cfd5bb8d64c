package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// QuizAttempt is a finished quiz as reported by the client. Attempts are
// immutable once recorded; only create, read and delete are exposed.
type QuizAttempt struct {
	ID               uuid.UUID       `json:"id"`
	UserID           uuid.UUID       `json:"user"`
	QuizName         string          `json:"quiz_name"`
	Category         string          `json:"category"`
	Subject          *string         `json:"subject"`
	Score            int             `json:"score"`
	TotalQuestions   int             `json:"total_questions"`
	CorrectAnswers   int             `json:"correct_answers"`
	IncorrectAnswers int             `json:"incorrect_answers"`
	TimeTaken        int             `json:"time_taken"`
	MistakeData      json.RawMessage `json:"mistake_data"`
	CreatedAt        time.Time       `json:"created_at"`
}

type CreateQuizAttemptRequest struct {
	QuizName         string          `json:"quiz_name"`
	Category         string          `json:"category"`
	Subject          *string         `json:"subject"`
	Score            int             `json:"score"`
	TotalQuestions   int             `json:"total_questions"`
	CorrectAnswers   int             `json:"correct_answers"`
	IncorrectAnswers int             `json:"incorrect_answers"`
	TimeTaken        int             `json:"time_taken"`
	MistakeData      json.RawMessage `json:"mistake_data"`
}
