// Package grading scores a submitted answer vector against a quiz's answer
// key and produces the per-question breakdown the results view renders.
package grading

import (
	"fmt"

	"schoolhub-backend/internal/models"
)

// Grade scores answers against questions. answers must be the same length
// as questions; each element is a selected option index or
// models.SkippedAnswer. Scoring is a pure function: one pass, no state.
func Grade(questions []models.QuizQuestion, answers []int) (score, maxScore int, results []models.QuestionResult, err error) {
	if len(answers) != len(questions) {
		return 0, 0, nil, fmt.Errorf("expected %d answers, got %d", len(questions), len(answers))
	}

	results = make([]models.QuestionResult, len(questions))
	for i, q := range questions {
		if answers[i] == q.Correct {
			score++
		}
		results[i] = models.QuestionResult{
			QuestionIndex: i,
			QuestionText:  q.Question,
			Options:       q.Options,
			SelectedIndex: answers[i],
			CorrectIndex:  q.Correct,
			Rationale:     q.Rationale,
		}
	}

	return score, len(questions), results, nil
}
