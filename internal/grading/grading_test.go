package grading

import (
	"testing"

	"schoolhub-backend/internal/models"
)

func threeQuestions() []models.QuizQuestion {
	return []models.QuizQuestion{
		{Question: "Q1", Options: []string{"a", "b"}, Correct: 1, Rationale: "b is right"},
		{Question: "Q2", Options: []string{"a", "b", "c"}, Correct: 2},
		{Question: "Q3", Options: []string{"a", "b"}, Correct: 0},
	}
}

func TestGrade_ScoreAndSkipped(t *testing.T) {
	score, maxScore, results, err := Grade(threeQuestions(), []int{1, -1, 0})
	if err != nil {
		t.Fatalf("Grade failed: %v", err)
	}

	if score != 2 {
		t.Errorf("Expected score 2, got %d", score)
	}
	if maxScore != 3 {
		t.Errorf("Expected max score 3, got %d", maxScore)
	}

	skipped := results[1]
	if skipped.SelectedIndex != models.SkippedAnswer {
		t.Errorf("Expected skipped answer -1, got %d", skipped.SelectedIndex)
	}
	if skipped.CorrectIndex != 2 {
		t.Errorf("Expected correct index 2, got %d", skipped.CorrectIndex)
	}
}

func TestGrade_ResultsCarryQuestionContext(t *testing.T) {
	_, _, results, err := Grade(threeQuestions(), []int{0, 2, 1})
	if err != nil {
		t.Fatalf("Grade failed: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}

	first := results[0]
	if first.QuestionIndex != 0 || first.QuestionText != "Q1" {
		t.Errorf("Unexpected first result: %+v", first)
	}
	if len(first.Options) != 2 || first.Rationale != "b is right" {
		t.Errorf("Expected options and rationale carried through, got %+v", first)
	}
}

func TestGrade_AllCorrectAndAllSkipped(t *testing.T) {
	qs := threeQuestions()

	score, _, _, err := Grade(qs, []int{1, 2, 0})
	if err != nil || score != 3 {
		t.Errorf("Expected perfect score 3, got %d (err %v)", score, err)
	}

	score, _, _, err = Grade(qs, []int{-1, -1, -1})
	if err != nil || score != 0 {
		t.Errorf("Expected score 0 for all skipped, got %d (err %v)", score, err)
	}
}

func TestGrade_LengthMismatch(t *testing.T) {
	if _, _, _, err := Grade(threeQuestions(), []int{0}); err == nil {
		t.Error("Expected error for answer vector length mismatch")
	}

	if _, _, _, err := Grade(nil, nil); err != nil {
		t.Errorf("Expected empty quiz to grade cleanly, got %v", err)
	}
}
