package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"

	"schoolhub-backend/internal/models"
)

// GeminiService generates flash cards and quiz questions from material
// text. It returns raw model output; normalizing that output into typed
// domain objects is the content parser's job, so the sync and async paths
// share one parsing rule.
type GeminiService struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	redis    *redis.Client
	rateChan chan struct{} // Token bucket
}

func NewGeminiService(apiKey string, concurrentReqs int, redisClient *redis.Client) (*GeminiService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-3-flash-preview")
	model.SetTemperature(0.3)
	model.SetTopP(0.95)

	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &GeminiService{
		client:   client,
		model:    model,
		redis:    redisClient,
		rateChan: rateChan,
	}, nil
}

func (s *GeminiService) Close() {
	s.client.Close()
}

// acquireRate blocks until a rate slot is available
func (s *GeminiService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (s *GeminiService) releaseRate() {
	s.rateChan <- struct{}{}
}

// PublishUpdate sends a WebSocket update via Redis pub/sub
func (s *GeminiService) PublishUpdate(ctx context.Context, userID uuid.UUID, msg models.WSMessage) {
	data, _ := json.Marshal(msg)
	s.redis.Publish(ctx, fmt.Sprintf("user_updates:%s", userID.String()), string(data))
}

// GenerateFlashCards asks the model for a card list and returns the raw
// response text.
func (s *GeminiService) GenerateFlashCards(ctx context.Context, req models.GenerateFlashCardsRequest, sourceText string) (string, error) {
	if err := s.acquireRate(ctx); err != nil {
		return "", err
	}
	defer s.releaseRate()

	resp, err := s.model.GenerateContent(ctx, genai.Text(buildFlashCardPrompt(req, sourceText)))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	return extractText(resp), nil
}

// GenerateQuiz asks the model for a question list and returns the raw
// response text.
func (s *GeminiService) GenerateQuiz(ctx context.Context, req models.GenerateQuizRequest, sourceText string) (string, error) {
	if err := s.acquireRate(ctx); err != nil {
		return "", err
	}
	defer s.releaseRate()

	resp, err := s.model.GenerateContent(ctx, genai.Text(buildQuizPrompt(req, sourceText)))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	return extractText(resp), nil
}

// Helper functions

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}

func buildFlashCardPrompt(req models.GenerateFlashCardsRequest, content string) string {
	var b strings.Builder

	b.WriteString("You are an expert flashcard creator for school students. Generate high-quality flash cards from the material below.\n\n")
	b.WriteString("CRITICAL: Return ONLY a valid JSON array. No preamble, no markdown, no backticks.\n\n")
	b.WriteString(fmt.Sprintf("Generate exactly %d flash cards.\n\n", req.NumCards))

	switch req.Strategy {
	case "question_answer":
		b.WriteString("Strategy: Front = question. Back = concise answer.\n")
	default:
		b.WriteString("Strategy: Front = term or concept. Back = clear definition.\n")
	}

	b.WriteString(`
Rules:
- Front must be under 15 words
- Back must be under 60 words and self-contained
- No two cards may test the same concept

JSON schema per card:
{"front": "string", "back": "string"}
`)

	b.WriteString("\n---MATERIAL---\n")
	b.WriteString(content)
	b.WriteString("\n---END---\n")

	return b.String()
}

func buildQuizPrompt(req models.GenerateQuizRequest, content string) string {
	var b strings.Builder

	b.WriteString("You are an expert educational assessor. Generate quiz questions based on the following material.\n\n")
	b.WriteString("CRITICAL: Return ONLY a valid JSON array. No preamble, no markdown, no backticks.\n\n")
	b.WriteString(fmt.Sprintf("Generate exactly %d questions.\n", req.NumQuestions))
	b.WriteString(fmt.Sprintf("Difficulty: %s\n", req.Difficulty))

	switch req.Difficulty {
	case "easy":
		b.WriteString("Easy = direct recall from text.\n")
	case "hard":
		b.WriteString("Hard = analysis, synthesis, or inference beyond what is explicitly stated.\n")
	default:
		b.WriteString("Medium = application of concepts.\n")
	}

	b.WriteString(`
JSON schema per question:
{"question": "string", "options": ["string"], "correct": int, "rationale": "string"}

Each question has exactly 4 options; "correct" is the zero-based index of the right option.
`)

	b.WriteString("\n---MATERIAL---\n")
	b.WriteString(content)
	b.WriteString("\n---END---\n")

	return b.String()
}
