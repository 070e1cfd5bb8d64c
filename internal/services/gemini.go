package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"neetmentor-backend/internal/models"
)

// MaxDoubtMessageLen bounds a single student message.
const MaxDoubtMessageLen = 2000

const (
	maxDoubtHistory  = 20
	rateSlotTimeout  = 2 * time.Minute
	doubtTemperature = 0.4
)

// GeminiService answers student doubts about a question bank item.
type GeminiService struct {
	client    *genai.Client
	modelName string
	rateChan  chan struct{} // token bucket
}

func NewGeminiService(ctx context.Context, apiKey, modelName string, concurrentReqs int) (*GeminiService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if concurrentReqs < 1 {
		concurrentReqs = 1
	}
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &GeminiService{
		client:    client,
		modelName: modelName,
		rateChan:  rateChan,
	}, nil
}

func (s *GeminiService) Close() {
	if s == nil {
		return
	}
	s.client.Close()
}

func (s *GeminiService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(rateSlotTimeout):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (s *GeminiService) releaseRate() {
	s.rateChan <- struct{}{}
}

// SolveDoubt continues a tutoring conversation grounded on q. A nil service
// means no API key was configured.
func (s *GeminiService) SolveDoubt(ctx context.Context, q *models.Question, message string, history []models.ChatMessage) (string, error) {
	if s == nil {
		return "", ErrAIUnavailable
	}
	if err := s.acquireRate(ctx); err != nil {
		return "", err
	}
	defer s.releaseRate()

	model := s.client.GenerativeModel(s.modelName)
	model.SetTemperature(doubtTemperature)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(buildDoubtContext(q))},
	}

	cs := model.StartChat()
	cs.History = toGenaiHistory(history)

	resp, err := cs.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", fmt.Errorf("gemini chat failed: %w", err)
	}

	reply := strings.TrimSpace(extractText(resp))
	if reply == "" {
		return "", fmt.Errorf("gemini returned an empty reply")
	}
	return reply, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text.WriteString(string(t))
			}
		}
	}
	return text.String()
}

func buildDoubtContext(q *models.Question) string {
	var b strings.Builder
	b.WriteString("You are a patient NEET tutor for Physics, Chemistry and Biology. ")
	b.WriteString("Explain step by step at the level of a class 11-12 student, use NCERT terminology, ")
	b.WriteString("and keep answers under 250 words unless asked for more.\n\n")
	b.WriteString("The student is asking about this multiple choice question:\n")
	b.WriteString(q.Content)
	b.WriteString("\n\nOptions:\n")
	for i, opt := range q.Options {
		fmt.Fprintf(&b, "%d. %s\n", i+1, opt)
	}
	if q.CorrectOption >= 0 && q.CorrectOption < len(q.Options) {
		fmt.Fprintf(&b, "\nCorrect option: %d (%s)\n", q.CorrectOption+1, q.Options[q.CorrectOption])
	}
	if q.Explanation != nil && *q.Explanation != "" {
		b.WriteString("Reference explanation: ")
		b.WriteString(*q.Explanation)
		b.WriteString("\n")
	}
	return b.String()
}

// toGenaiHistory keeps the most recent turns and maps roles onto the two
// Gemini accepts. Empty turns are dropped.
func toGenaiHistory(history []models.ChatMessage) []*genai.Content {
	if len(history) > maxDoubtHistory {
		history = history[len(history)-maxDoubtHistory:]
	}

	out := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		text := strings.TrimSpace(m.Content)
		if text == "" {
			continue
		}
		role := "user"
		if m.Role == "assistant" || m.Role == "model" {
			role = "model"
		}
		out = append(out, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(text)}})
	}
	return out
}
