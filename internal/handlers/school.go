package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"schoolhub-backend/internal/middleware"
	"schoolhub-backend/internal/models"
	"schoolhub-backend/internal/repository"
)

type SchoolHandler struct {
	schoolRepo *repository.SchoolRepo
	userRepo   *repository.UserRepo
}

func NewSchoolHandler(schoolRepo *repository.SchoolRepo, userRepo *repository.UserRepo) *SchoolHandler {
	return &SchoolHandler{schoolRepo: schoolRepo, userRepo: userRepo}
}

func (h *SchoolHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.SchoolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Name is required", r))
		return
	}

	school := &models.School{Name: strings.TrimSpace(req.Name), Address: req.Address}
	if err := h.schoolRepo.Create(r.Context(), school); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create school", r))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"school": school})
}

func (h *SchoolHandler) List(w http.ResponseWriter, r *http.Request) {
	schools, err := h.schoolRepo.List(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch schools", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"schools": schools})
}

func (h *SchoolHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid school ID", r))
		return
	}

	school, err := h.schoolRepo.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "School not found", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"school": school})
}

func (h *SchoolHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid school ID", r))
		return
	}

	var req models.SchoolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	school, err := h.schoolRepo.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "School not found", r))
		return
	}

	if strings.TrimSpace(req.Name) != "" {
		school.Name = strings.TrimSpace(req.Name)
	}
	if req.Address != nil {
		school.Address = req.Address
	}

	if err := h.schoolRepo.Update(r.Context(), school); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to update school", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"school": school})
}

func (h *SchoolHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid school ID", r))
		return
	}

	if err := h.schoolRepo.Delete(r.Context(), id); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete school", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "School deleted"})
}

// Subjects

func (h *SchoolHandler) CreateSubject(w http.ResponseWriter, r *http.Request) {
	schoolID, ok := h.resolveSchool(w, r)
	if !ok {
		return
	}

	var req models.SubjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Name is required", r))
		return
	}

	subject := &models.Subject{SchoolID: schoolID, Name: strings.TrimSpace(req.Name)}
	if err := h.schoolRepo.CreateSubject(r.Context(), subject); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create subject", r))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"subject": subject})
}

func (h *SchoolHandler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	schoolID, ok := h.resolveSchool(w, r)
	if !ok {
		return
	}

	subjects, err := h.schoolRepo.ListSubjects(r.Context(), schoolID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch subjects", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"subjects": subjects})
}

func (h *SchoolHandler) DeleteSubject(w http.ResponseWriter, r *http.Request) {
	schoolID, ok := h.resolveSchool(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "subjectID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid subject ID", r))
		return
	}

	subjects, err := h.schoolRepo.ListSubjects(r.Context(), schoolID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch subjects", r))
		return
	}
	found := false
	for _, s := range subjects {
		if s.ID == id {
			found = true
			break
		}
	}
	if !found {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Subject not found", r))
		return
	}

	if err := h.schoolRepo.DeleteSubject(r.Context(), id); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete subject", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Subject deleted"})
}

// resolveSchool resolves the {id} path param and checks that a school admin
// is operating on their own school. Super admins pass through.
func (h *SchoolHandler) resolveSchool(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	schoolID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid school ID", r))
		return uuid.Nil, false
	}

	if middleware.GetRole(r.Context()) == models.RoleSuperAdmin {
		return schoolID, true
	}

	actor, err := h.userRepo.GetByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil || actor.SchoolID == nil || *actor.SchoolID != schoolID {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return uuid.Nil, false
	}
	return schoolID, true
}
