package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"schoolhub-backend/internal/middleware"
	"schoolhub-backend/internal/models"
	"schoolhub-backend/internal/repository"
	"schoolhub-backend/internal/services"
)

const maxUploadSize = 50 << 20 // 50 MB

type ResourceHandler struct {
	resourceRepo *repository.ResourceRepo
	classRepo    *repository.ClassRepo
	userRepo     *repository.UserRepo
	extract      *services.MaterialExtractService
	youtube      *services.YouTubeService
	storagePath  string
}

func NewResourceHandler(
	resourceRepo *repository.ResourceRepo,
	classRepo *repository.ClassRepo,
	userRepo *repository.UserRepo,
	extract *services.MaterialExtractService,
	youtube *services.YouTubeService,
	storagePath string,
) *ResourceHandler {
	return &ResourceHandler{
		resourceRepo: resourceRepo,
		classRepo:    classRepo,
		userRepo:     userRepo,
		extract:      extract,
		youtube:      youtube,
		storagePath:  storagePath,
	}
}

func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.ResourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if !models.ValidResourceType(req.Type) {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "type must be material, quiz or flash_cards", r))
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Title is required", r))
		return
	}

	switch req.Type {
	case models.ResourceQuiz:
		var questions []models.QuizQuestion
		if len(req.Questions) > 0 {
			if err := json.Unmarshal(req.Questions, &questions); err != nil {
				writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "questions must be a valid question array", r))
				return
			}
		}
		for i, q := range questions {
			if q.Question == "" || len(q.Options) < 2 || q.Correct < 0 || q.Correct >= len(q.Options) {
				writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", fmt.Sprintf("questions[%d] is incomplete", i), r))
				return
			}
		}
	case models.ResourceFlashCards:
		var cards []models.FlashCard
		if len(req.Cards) > 0 {
			if err := json.Unmarshal(req.Cards, &cards); err != nil {
				writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "cards must be a valid card array", r))
				return
			}
		}
		for i, c := range cards {
			if c.Front == "" || c.Back == "" {
				writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", fmt.Sprintf("cards[%d] is incomplete", i), r))
				return
			}
		}
	}

	actor, err := h.userRepo.GetByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Invalid session", r))
		return
	}

	if req.ClassID != nil {
		if _, err := h.classRepo.GetByID(r.Context(), *req.ClassID); err != nil {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Class not found", r))
			return
		}
	}

	res := &models.Resource{
		SchoolID:      actor.SchoolID,
		ClassID:       req.ClassID,
		CreatorID:     actor.ID,
		Type:          req.Type,
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		BodyRaw:       req.BodyRaw,
		SourceURL:     req.SourceURL,
		CardsJSON:     req.Cards,
		QuestionsJSON: req.Questions,
		Published:     req.Published,
	}

	// A YouTube material without a body gets its transcript pulled in as
	// the study text.
	if req.Type == models.ResourceMaterial && req.SourceURL != nil && (req.BodyRaw == nil || *req.BodyRaw == "") {
		if videoID, err := services.ExtractVideoID(*req.SourceURL); err == nil {
			if transcript, err := h.youtube.GetTranscript(videoID); err == nil {
				res.BodyRaw = &transcript
			} else {
				log.Printf("transcript fetch failed for %s: %v", videoID, err)
			}
		}
	}

	if err := h.resourceRepo.Create(r.Context(), res); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create resource", r))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"resource": res})
}

// Upload ingests a material file (.txt, .md, .pdf), stores it, and extracts
// its text as the material body.
func (h *ResourceHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid multipart form", r))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "file is required", r))
		return
	}
	defer file.Close()

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		title = header.Filename
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".txt", ".md", ".pdf":
	default:
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Only .txt, .md and .pdf files are supported", r))
		return
	}

	var classID *uuid.UUID
	if raw := r.FormValue("class_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid class ID", r))
			return
		}
		classID = &id
	}

	actor, err := h.userRepo.GetByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Invalid session", r))
		return
	}

	storedName := uuid.NewString() + ext
	fullPath := filepath.Join(h.storagePath, storedName)
	if err := os.MkdirAll(h.storagePath, 0o755); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to store file", r))
		return
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to store file", r))
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(fullPath)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to store file", r))
		return
	}
	dst.Close()

	body, err := h.extract.ExtractText(fullPath)
	if err != nil {
		os.Remove(fullPath)
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Could not extract text from file", r))
		return
	}

	res := &models.Resource{
		SchoolID:  actor.SchoolID,
		ClassID:   classID,
		CreatorID: actor.ID,
		Type:      models.ResourceMaterial,
		Title:     title,
		BodyRaw:   &body,
		FilePath:  &storedName,
	}

	if err := h.resourceRepo.Create(r.Context(), res); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create resource", r))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"resource": res})
}

// List returns published class resources when class_id is given, otherwise
// the caller's own creations.
func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("class_id"); raw != "" {
		classID, err := uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid class ID", r))
			return
		}

		if middleware.GetRole(r.Context()) == models.RoleStudent {
			enrolled, err := h.classRepo.IsEnrolled(r.Context(), classID, middleware.GetUserID(r.Context()))
			if err != nil || !enrolled {
				writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Not enrolled in this class", r))
				return
			}
		}

		resources, err := h.resourceRepo.ListPublishedForClass(r.Context(), classID)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch resources", r))
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"resources": resources})
		return
	}

	resources, err := h.resourceRepo.ListByCreator(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch resources", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"resources": resources})
}

func (h *ResourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	res, ok := h.loadResource(w, r)
	if !ok {
		return
	}

	if !h.canView(r, res) {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"resource": res})
}

func (h *ResourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	res, ok := h.loadResource(w, r)
	if !ok {
		return
	}

	if !h.canManage(r, res) {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return
	}

	var req models.ResourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if strings.TrimSpace(req.Title) != "" {
		res.Title = strings.TrimSpace(req.Title)
	}
	if req.Description != nil {
		res.Description = req.Description
	}
	if req.ClassID != nil {
		res.ClassID = req.ClassID
	}
	if req.BodyRaw != nil {
		res.BodyRaw = req.BodyRaw
	}
	if len(req.Cards) > 0 {
		res.CardsJSON = req.Cards
	}
	if len(req.Questions) > 0 {
		res.QuestionsJSON = req.Questions
	}
	res.Published = req.Published

	if err := h.resourceRepo.Update(r.Context(), res); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to update resource", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"resource": res})
}

func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	res, ok := h.loadResource(w, r)
	if !ok {
		return
	}

	if !h.canManage(r, res) {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return
	}

	if err := h.resourceRepo.Delete(r.Context(), res.ID); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete resource", r))
		return
	}

	if res.FilePath != nil {
		os.Remove(filepath.Join(h.storagePath, *res.FilePath))
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Resource deleted"})
}

func (h *ResourceHandler) loadResource(w http.ResponseWriter, r *http.Request) (*models.Resource, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid resource ID", r))
		return nil, false
	}

	res, err := h.resourceRepo.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Resource not found", r))
		return nil, false
	}
	return res, true
}

func (h *ResourceHandler) canManage(r *http.Request, res *models.Resource) bool {
	return canManageResource(r, res, h.userRepo)
}

func (h *ResourceHandler) canView(r *http.Request, res *models.Resource) bool {
	return canViewResource(r, res, h.userRepo, h.classRepo)
}
