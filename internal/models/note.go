package models

import (
	"time"

	"github.com/google/uuid"
)

const DefaultNoteSubject = "General"

type Note struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Subject   string    `json:"subject"`
	Chapter   *string   `json:"chapter"`
	ImageURL  *string   `json:"image_url"`
	IsPinned  bool      `json:"is_pinned"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type NoteRequest struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Subject  *string `json:"subject"`
	Chapter  *string `json:"chapter"`
	ImageURL *string `json:"image_url"`
	IsPinned *bool   `json:"is_pinned"`
}
