package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"schoolhub-backend/internal/grading"
	"schoolhub-backend/internal/middleware"
	"schoolhub-backend/internal/models"
	"schoolhub-backend/internal/repository"
)

type QuizHandler struct {
	resourceRepo quizResourceRepository
	attemptRepo  attemptRepository
	classRepo    *repository.ClassRepo
	userRepo     *repository.UserRepo
}

type quizResourceRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Resource, error)
}

type attemptRepository interface {
	Create(ctx context.Context, a *models.QuizAttempt) error
	GetByResourceAndUser(ctx context.Context, resourceID, userID uuid.UUID) (*models.QuizAttempt, error)
	ListByResource(ctx context.Context, resourceID uuid.UUID) ([]*models.QuizAttempt, error)
}

func NewQuizHandler(
	resourceRepo quizResourceRepository,
	attemptRepo attemptRepository,
	classRepo *repository.ClassRepo,
	userRepo *repository.UserRepo,
) *QuizHandler {
	return &QuizHandler{
		resourceRepo: resourceRepo,
		attemptRepo:  attemptRepo,
		classRepo:    classRepo,
		userRepo:     userRepo,
	}
}

// GetAttempt returns the caller's stored attempt for a quiz, or null when
// none exists yet. Reading is idempotent.
func (h *QuizHandler) GetAttempt(w http.ResponseWriter, r *http.Request) {
	res, _, ok := h.loadQuiz(w, r)
	if !ok {
		return
	}

	attempt, err := h.attemptRepo.GetByResourceAndUser(r.Context(), res.ID, middleware.GetUserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch attempt", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"attempt": attempt})
}

// SubmitAttempt grades and stores a student's one and only attempt. A
// repeat submission is rejected with the stored attempt; it is never
// re-scored.
func (h *QuizHandler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	res, questions, ok := h.loadQuiz(w, r)
	if !ok {
		return
	}

	var req models.SubmitAttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	userID := middleware.GetUserID(r.Context())

	if existing, err := h.attemptRepo.GetByResourceAndUser(r.Context(), res.ID, userID); err == nil && existing != nil {
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error":   errorResp("CONFLICT", "Quiz already attempted", r).Error,
			"attempt": existing,
		})
		return
	}

	score, maxScore, results, err := grading.Grade(questions, req.Answers)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "answers must match the question count", r))
		return
	}

	attempt := &models.QuizAttempt{
		ResourceID: res.ID,
		UserID:     userID,
		Answers:    req.Answers,
		Score:      score,
		MaxScore:   maxScore,
		Results:    results,
	}

	if err := h.attemptRepo.Create(r.Context(), attempt); err != nil {
		if errors.Is(err, repository.ErrAttemptExists) {
			// Lost the race against a concurrent submission; the stored
			// attempt wins.
			stored, getErr := h.attemptRepo.GetByResourceAndUser(r.Context(), res.ID, userID)
			if getErr == nil && stored != nil {
				writeJSON(w, http.StatusConflict, map[string]interface{}{
					"error":   errorResp("CONFLICT", "Quiz already attempted", r).Error,
					"attempt": stored,
				})
				return
			}
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to save attempt", r))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"score":     score,
		"max_score": maxScore,
		"results":   results,
		"attempt":   attempt,
	})
}

// ListAttempts is the teacher-facing view of every student attempt on a
// quiz.
func (h *QuizHandler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	res, _, ok := h.loadQuiz(w, r)
	if !ok {
		return
	}

	if !canManageResource(r, res, h.userRepo) {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return
	}

	attempts, err := h.attemptRepo.ListByResource(r.Context(), res.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch attempts", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"attempts": attempts})
}

func (h *QuizHandler) loadQuiz(w http.ResponseWriter, r *http.Request) (*models.Resource, []models.QuizQuestion, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid resource ID", r))
		return nil, nil, false
	}

	res, err := h.resourceRepo.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Resource not found", r))
		return nil, nil, false
	}

	if res.Type != models.ResourceQuiz {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Resource is not a quiz", r))
		return nil, nil, false
	}

	if !canViewResource(r, res, h.userRepo, h.classRepo) {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return nil, nil, false
	}

	var questions []models.QuizQuestion
	if len(res.QuestionsJSON) > 0 {
		if err := json.Unmarshal(res.QuestionsJSON, &questions); err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Stored question data is corrupt", r))
			return nil, nil, false
		}
	}

	return res, questions, true
}
