package models

import (
	"time"

	"github.com/google/uuid"
)

// Difficulty levels accepted for catalog questions.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

type Subject struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Topic struct {
	ID        int64  `json:"id"`
	SubjectID int64  `json:"subject"`
	Name      string `json:"name"`
}

type Question struct {
	ID            int64    `json:"id"`
	TopicID       int64    `json:"topic"`
	Content       string   `json:"content"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correct_option"`
	Difficulty    string   `json:"difficulty"`
	Explanation   *string  `json:"explanation"`
}

type SubmitAnswerRequest struct {
	QuestionID     int64 `json:"question_id"`
	SelectedOption *int  `json:"selected_option"`
}

type SubmitAnswerResponse struct {
	IsCorrect     bool    `json:"is_correct"`
	CorrectOption int     `json:"correct_option"`
	Explanation   *string `json:"explanation"`
}

type UserProgress struct {
	UserID          uuid.UUID `json:"user"`
	TopicID         int64     `json:"topic"`
	QuestionsSolved int       `json:"questions_solved"`
	Percentage      float64   `json:"percentage"`
	LastUpdated     time.Time `json:"last_updated"`
}
