package models

import "github.com/google/uuid"

// GenerateFlashCardsRequest configures AI flash-card generation from a
// material resource.
type GenerateFlashCardsRequest struct {
	MaterialID uuid.UUID `json:"material_id"`
	Title      string    `json:"title"`
	NumCards   int       `json:"num_cards"`
	Strategy   string    `json:"strategy"` // "term_definition" | "question_answer"
	Async      bool      `json:"async"`
}

// GenerateQuizRequest configures AI quiz generation from a material
// resource.
type GenerateQuizRequest struct {
	MaterialID   uuid.UUID `json:"material_id"`
	Title        string    `json:"title"`
	NumQuestions int       `json:"num_questions"`
	Difficulty   string    `json:"difficulty"` // "easy" | "medium" | "hard"
	Async        bool      `json:"async"`
}

// GenerateResponse is the synchronous AI generation reply: the raw model
// text, which the caller feeds through the content parser.
type GenerateResponse struct {
	Content string `json:"content"`
}
