package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	ResourceMaterial   = "material"
	ResourceQuiz       = "quiz"
	ResourceFlashCards = "flash_cards"
)

// Resource is a persisted content item: a study material, a quiz, or a
// flash-card deck. Quizzes carry QuestionsJSON, decks carry CardsJSON,
// materials carry BodyRaw plus an optional file or YouTube source.
type Resource struct {
	ID            uuid.UUID       `json:"id"`
	SchoolID      *uuid.UUID      `json:"school_id"`
	ClassID       *uuid.UUID      `json:"class_id"`
	CreatorID     uuid.UUID       `json:"creator_id"`
	Type          string          `json:"type"`
	Title         string          `json:"title"`
	Description   *string         `json:"description"`
	BodyRaw       *string         `json:"body_raw"`
	FilePath      *string         `json:"-"`
	SourceURL     *string         `json:"source_url"`
	CardsJSON     json.RawMessage `json:"cards"`
	QuestionsJSON json.RawMessage `json:"questions"`
	Published     bool            `json:"published"`
	CreatedAt     time.Time       `json:"created_at"`
}

func ValidResourceType(t string) bool {
	switch t {
	case ResourceMaterial, ResourceQuiz, ResourceFlashCards:
		return true
	}
	return false
}

type ResourceRequest struct {
	Type        string          `json:"type"`
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	ClassID     *uuid.UUID      `json:"class_id"`
	BodyRaw     *string         `json:"body_raw"`
	SourceURL   *string         `json:"source_url"`
	Cards       json.RawMessage `json:"cards"`
	Questions   json.RawMessage `json:"questions"`
	Published   bool            `json:"published"`
}
