package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"schoolhub-backend/internal/middleware"
	"schoolhub-backend/internal/models"
	"schoolhub-backend/internal/repository"
)

type stubQuizResourceRepo struct {
	res *models.Resource
}

func (s *stubQuizResourceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Resource, error) {
	if s.res == nil || s.res.ID != id {
		return nil, context.Canceled
	}
	return s.res, nil
}

type stubAttemptRepo struct {
	stored       *models.QuizAttempt
	createErr    error
	createCalled bool
	// raceStored becomes visible to reads only after Create fails, to
	// model a concurrent submission winning the insert.
	raceStored *models.QuizAttempt
}

func (s *stubAttemptRepo) Create(ctx context.Context, a *models.QuizAttempt) error {
	s.createCalled = true
	if s.createErr != nil {
		if s.raceStored != nil {
			s.stored = s.raceStored
		}
		return s.createErr
	}
	s.stored = a
	return nil
}

func (s *stubAttemptRepo) GetByResourceAndUser(ctx context.Context, resourceID, userID uuid.UUID) (*models.QuizAttempt, error) {
	return s.stored, nil
}

func (s *stubAttemptRepo) ListByResource(ctx context.Context, resourceID uuid.UUID) ([]*models.QuizAttempt, error) {
	if s.stored == nil {
		return nil, nil
	}
	return []*models.QuizAttempt{s.stored}, nil
}

func quizTestResource(creatorID uuid.UUID) *models.Resource {
	questions := []models.QuizQuestion{
		{Question: "2+2?", Options: []string{"3", "4"}, Correct: 1},
		{Question: "3+3?", Options: []string{"6", "7"}, Correct: 0},
	}
	questionsJSON, _ := json.Marshal(questions)
	return &models.Resource{
		ID:            uuid.New(),
		CreatorID:     creatorID,
		Type:          models.ResourceQuiz,
		Title:         "Arithmetic check",
		QuestionsJSON: questionsJSON,
	}
}

func submitAttemptRequest(resourceID, userID uuid.UUID, answers []int) *http.Request {
	body, _ := json.Marshal(models.SubmitAttemptRequest{Answers: answers})

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", resourceID.String())

	req := httptest.NewRequest(http.MethodPost, "/api/resources/"+resourceID.String()+"/quiz-attempt", bytes.NewReader(body))
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, userID))
	req = req.WithContext(context.WithValue(req.Context(), middleware.RoleKey, models.RoleStudent))
	return req
}

func TestQuizHandler_SubmitAttempt_GradesAndStores(t *testing.T) {
	userID := uuid.New()
	res := quizTestResource(userID)
	attempts := &stubAttemptRepo{}
	h := &QuizHandler{resourceRepo: &stubQuizResourceRepo{res: res}, attemptRepo: attempts}

	rr := httptest.NewRecorder()
	h.SubmitAttempt(rr, submitAttemptRequest(res.ID, userID, []int{1, models.SkippedAnswer}))

	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}

	var resp struct {
		Score    int                 `json:"score"`
		MaxScore int                 `json:"max_score"`
		Attempt  *models.QuizAttempt `json:"attempt"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Score != 1 || resp.MaxScore != 2 {
		t.Errorf("Expected score 1/2, got %d/%d", resp.Score, resp.MaxScore)
	}
	if attempts.stored == nil || attempts.stored.UserID != userID || attempts.stored.ResourceID != res.ID {
		t.Errorf("Expected attempt persisted for the submitting student, got %+v", attempts.stored)
	}
}

func TestQuizHandler_SubmitAttempt_SecondSubmissionRejected(t *testing.T) {
	userID := uuid.New()
	res := quizTestResource(userID)
	existing := &models.QuizAttempt{
		ID:         uuid.New(),
		ResourceID: res.ID,
		UserID:     userID,
		Answers:    []int{1, 0},
		Score:      2,
		MaxScore:   2,
	}
	attempts := &stubAttemptRepo{stored: existing}
	h := &QuizHandler{resourceRepo: &stubQuizResourceRepo{res: res}, attemptRepo: attempts}

	rr := httptest.NewRecorder()
	h.SubmitAttempt(rr, submitAttemptRequest(res.ID, userID, []int{0, 0}))

	if rr.Code != http.StatusConflict {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusConflict, rr.Code, rr.Body.String())
	}
	if attempts.createCalled {
		t.Error("Expected no write for a repeat submission")
	}

	var resp struct {
		Attempt *models.QuizAttempt `json:"attempt"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Attempt == nil || resp.Attempt.ID != existing.ID {
		t.Errorf("Expected the stored attempt in the conflict body, got %+v", resp.Attempt)
	}
	if resp.Attempt.Score != 2 {
		t.Errorf("Expected the stored score untouched by the new answers, got %d", resp.Attempt.Score)
	}
}

func TestQuizHandler_SubmitAttempt_ConcurrentLoserGetsStoredAttempt(t *testing.T) {
	userID := uuid.New()
	res := quizTestResource(userID)
	winner := &models.QuizAttempt{
		ID:         uuid.New(),
		ResourceID: res.ID,
		UserID:     userID,
		Answers:    []int{1, 0},
		Score:      2,
		MaxScore:   2,
	}
	attempts := &stubAttemptRepo{createErr: repository.ErrAttemptExists, raceStored: winner}
	h := &QuizHandler{resourceRepo: &stubQuizResourceRepo{res: res}, attemptRepo: attempts}

	rr := httptest.NewRecorder()
	h.SubmitAttempt(rr, submitAttemptRequest(res.ID, userID, []int{0, 1}))

	if rr.Code != http.StatusConflict {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusConflict, rr.Code, rr.Body.String())
	}

	var resp struct {
		Attempt *models.QuizAttempt `json:"attempt"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Attempt == nil || resp.Attempt.ID != winner.ID {
		t.Errorf("Expected the winning attempt in the conflict body, got %+v", resp.Attempt)
	}
}
