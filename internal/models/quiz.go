package models

import (
	"time"

	"github.com/google/uuid"
)

// QuizQuestion is authored by a teacher or produced by AI generation and is
// immutable to students.
type QuizQuestion struct {
	Question  string   `json:"question"`
	Options   []string `json:"options"`
	Correct   int      `json:"correct"`
	Rationale string   `json:"rationale,omitempty"`
}

// SkippedAnswer marks a question the student left unanswered.
const SkippedAnswer = -1

// QuestionResult carries everything the results view needs so the client
// can render "your answer / correct answer / why" without re-fetching the
// question bank.
type QuestionResult struct {
	QuestionIndex int      `json:"question_index"`
	QuestionText  string   `json:"question_text"`
	Options       []string `json:"options"`
	SelectedIndex int      `json:"selected_index"`
	CorrectIndex  int      `json:"correct_index"`
	Rationale     string   `json:"rationale,omitempty"`
}

// QuizAttempt is a student's single scored submission for a quiz resource.
// At most one attempt exists per (resource, student); it is immutable once
// written.
type QuizAttempt struct {
	ID         uuid.UUID        `json:"id"`
	ResourceID uuid.UUID        `json:"resource_id"`
	UserID     uuid.UUID        `json:"user_id"`
	Answers    []int            `json:"answers"`
	Score      int              `json:"score"`
	MaxScore   int              `json:"max_score"`
	Results    []QuestionResult `json:"results"`
	CreatedAt  time.Time        `json:"created_at"`
}

type SubmitAttemptRequest struct {
	Answers []int `json:"answers"`
}
