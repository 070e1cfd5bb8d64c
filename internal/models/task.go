package models

import (
	"time"

	"github.com/google/uuid"
)

const DefaultTaskPriority = "medium"

// StudyTask is a planner entry. Goals are free text such as "45 min" or "20 MCQs".
type StudyTask struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user"`
	Subject       string    `json:"subject"`
	Topic         string    `json:"topic"`
	TimeGoal      string    `json:"time_goal"`
	QuestionsGoal string    `json:"questions_goal"`
	Priority      string    `json:"priority"`
	IsDone        bool      `json:"is_done"`
	CreatedAt     time.Time `json:"created_at"`
}

type StudyTaskRequest struct {
	Subject       *string `json:"subject"`
	Topic         *string `json:"topic"`
	TimeGoal      *string `json:"time_goal"`
	QuestionsGoal *string `json:"questions_goal"`
	Priority      *string `json:"priority"`
	IsDone        *bool   `json:"is_done"`
}
