package models

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// DoubtRequest is a student's question about a catalog question.
type DoubtRequest struct {
	Message string        `json:"message"`
	History []ChatMessage `json:"history"`
}

type DoubtResponse struct {
	QuestionID int64  `json:"question_id"`
	Reply      string `json:"reply"`
}

// VideoResource is the metadata returned for a validated YouTube link.
type VideoResource struct {
	VideoID         string `json:"video_id"`
	URL             string `json:"url"`
	Title           string `json:"title"`
	Channel         string `json:"channel"`
	DurationSeconds int    `json:"duration_seconds"`
	Thumbnail       string `json:"thumbnail"`
}

type ResourceRequest struct {
	URL string `json:"url"`
}
