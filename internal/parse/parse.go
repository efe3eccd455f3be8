// Package parse converts raw AI-generated text into typed domain objects,
// tolerating the formatting noise models produce (code fences, preambles,
// alternate field names). Parsing never fails with an error: malformed input
// degrades to an Unparseable result and the caller falls back to raw-text
// editing.
package parse

import (
	"encoding/json"
	"strings"

	"schoolhub-backend/internal/models"
)

type Kind int

const (
	Unparseable Kind = iota
	Cards
	Quiz
)

// Result is the tagged union produced by the parser. Exactly one of
// Cards/Questions is populated, selected by Kind.
type Result struct {
	Kind      Kind
	Cards     []models.FlashCard
	Questions []models.QuizQuestion
}

// StripFence removes a surrounding triple-backtick code fence (optionally
// tagged "json") and trims whitespace. Text without a fence passes through
// trimmed.
func StripFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// rawCard accepts both generation shapes: {front, back} and
// {question, answer}.
type rawCard struct {
	Front    *string `json:"front"`
	Back     *string `json:"back"`
	Question *string `json:"question"`
	Answer   *string `json:"answer"`
}

// FlashCards parses AI output into a normalized card list. Every element
// must resolve both a front and a back; otherwise the whole input is
// Unparseable.
func FlashCards(text string) Result {
	raw := StripFence(text)

	var items []rawCard
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return Result{Kind: Unparseable}
	}

	cards := make([]models.FlashCard, 0, len(items))
	for _, it := range items {
		front := firstSet(it.Front, it.Question)
		back := firstSet(it.Back, it.Answer)
		if front == nil || back == nil {
			return Result{Kind: Unparseable}
		}
		cards = append(cards, models.FlashCard{Front: *front, Back: *back})
	}

	return Result{Kind: Cards, Cards: cards}
}

type rawQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Correct     *int     `json:"correct"`
	Rationale   string   `json:"rationale"`
	Explanation string   `json:"explanation"`
}

// QuizQuestions parses AI output into a normalized question list. Both a bare
// array and an object wrapping a "questions" array are accepted.
func QuizQuestions(text string) Result {
	raw := StripFence(text)

	var items []rawQuestion
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		var wrapped struct {
			Questions []rawQuestion `json:"questions"`
		}
		if err := json.Unmarshal([]byte(raw), &wrapped); err != nil || wrapped.Questions == nil {
			return Result{Kind: Unparseable}
		}
		items = wrapped.Questions
	}

	questions := make([]models.QuizQuestion, 0, len(items))
	for _, it := range items {
		q := models.QuizQuestion{
			Question:  it.Question,
			Options:   it.Options,
			Rationale: it.Rationale,
		}
		if q.Options == nil {
			q.Options = []string{}
		}
		if q.Rationale == "" {
			q.Rationale = it.Explanation
		}
		if it.Correct != nil && *it.Correct >= 0 && *it.Correct < len(q.Options) {
			q.Correct = *it.Correct
		}
		questions = append(questions, q)
	}

	return Result{Kind: Quiz, Questions: questions}
}

func firstSet(candidates ...*string) *string {
	for _, c := range candidates {
		if c != nil {
			return c
		}
	}
	return nil
}
