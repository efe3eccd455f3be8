package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"schoolhub-backend/internal/middleware"
	"schoolhub-backend/internal/models"
	"schoolhub-backend/internal/repository"
	"schoolhub-backend/internal/services"
)

type AIHandler struct {
	resourceRepo *repository.ResourceRepo
	classRepo    *repository.ClassRepo
	userRepo     *repository.UserRepo
	jobRepo      *repository.JobRepo
	gemini       *services.GeminiService
	redis        *redis.Client
}

func NewAIHandler(
	resourceRepo *repository.ResourceRepo,
	classRepo *repository.ClassRepo,
	userRepo *repository.UserRepo,
	jobRepo *repository.JobRepo,
	gemini *services.GeminiService,
	redisClient *redis.Client,
) *AIHandler {
	return &AIHandler{
		resourceRepo: resourceRepo,
		classRepo:    classRepo,
		userRepo:     userRepo,
		jobRepo:      jobRepo,
		gemini:       gemini,
		redis:        redisClient,
	}
}

// GenerateFlashCards produces flash cards from a material. The synchronous
// path returns the raw model text for the caller to parse; the async path
// creates an empty deck resource and a background job that fills it.
func (h *AIHandler) GenerateFlashCards(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateFlashCardsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if req.NumCards <= 0 {
		req.NumCards = 10
	}
	switch req.Strategy {
	case "":
		req.Strategy = "term_definition"
	case "term_definition", "question_answer":
	default:
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "strategy must be term_definition or question_answer", r))
		return
	}

	material, sourceText, ok := h.loadMaterial(w, r, req.MaterialID)
	if !ok {
		return
	}

	if !req.Async {
		content, err := h.gemini.GenerateFlashCards(r.Context(), req, sourceText)
		if err != nil {
			writeJSON(w, http.StatusBadGateway, errorResp("GENERATION_FAILED", "Flash-card generation failed", r))
			return
		}
		writeJSON(w, http.StatusOK, models.GenerateResponse{Content: content})
		return
	}

	h.enqueue(w, r, material, "flash-card-generation", models.ResourceFlashCards, req.Title, req)
}

// GenerateQuiz is the quiz counterpart of GenerateFlashCards.
func (h *AIHandler) GenerateQuiz(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if req.NumQuestions <= 0 {
		req.NumQuestions = 5
	}
	switch req.Difficulty {
	case "":
		req.Difficulty = "medium"
	case "easy", "medium", "hard":
	default:
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "difficulty must be easy, medium or hard", r))
		return
	}

	material, sourceText, ok := h.loadMaterial(w, r, req.MaterialID)
	if !ok {
		return
	}

	if !req.Async {
		content, err := h.gemini.GenerateQuiz(r.Context(), req, sourceText)
		if err != nil {
			writeJSON(w, http.StatusBadGateway, errorResp("GENERATION_FAILED", "Quiz generation failed", r))
			return
		}
		writeJSON(w, http.StatusOK, models.GenerateResponse{Content: content})
		return
	}

	h.enqueue(w, r, material, "quiz-generation", models.ResourceQuiz, req.Title, req)
}

func (h *AIHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid job ID", r))
		return
	}

	job, err := h.jobRepo.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Job not found", r))
		return
	}

	if job.UserID != middleware.GetUserID(r.Context()) {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"job": job})
}

func (h *AIHandler) loadMaterial(w http.ResponseWriter, r *http.Request, materialID uuid.UUID) (*models.Resource, string, bool) {
	if materialID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "material_id is required", r))
		return nil, "", false
	}

	material, err := h.resourceRepo.GetByID(r.Context(), materialID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Material not found", r))
		return nil, "", false
	}

	if material.Type != models.ResourceMaterial {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Resource is not a material", r))
		return nil, "", false
	}

	if !canViewResource(r, material, h.userRepo, h.classRepo) {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return nil, "", false
	}

	if material.BodyRaw == nil || *material.BodyRaw == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Material has no text to generate from", r))
		return nil, "", false
	}

	return material, *material.BodyRaw, true
}

func (h *AIHandler) enqueue(w http.ResponseWriter, r *http.Request, material *models.Resource, jobType, resourceType, title string, config interface{}) {
	userID := middleware.GetUserID(r.Context())

	if title == "" {
		title = material.Title
	}

	target := &models.Resource{
		SchoolID:    material.SchoolID,
		ClassID:     material.ClassID,
		CreatorID:   userID,
		Type:        resourceType,
		Title:       title,
		Description: material.Description,
	}
	if err := h.resourceRepo.Create(r.Context(), target); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create resource", r))
		return
	}

	configBytes, _ := json.Marshal(config)
	job := &models.Job{
		UserID:      userID,
		Type:        jobType,
		ReferenceID: target.ID,
		ConfigJSON:  configBytes,
	}
	if err := h.jobRepo.Create(r.Context(), job); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create job", r))
		return
	}

	jobBytes, _ := json.Marshal(job)
	h.redis.LPush(r.Context(), "queue:"+jobType, string(jobBytes))

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id":      job.ID,
		"resource_id": target.ID,
	})
}
