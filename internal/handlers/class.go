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

type ClassHandler struct {
	classRepo *repository.ClassRepo
	userRepo  *repository.UserRepo
}

func NewClassHandler(classRepo *repository.ClassRepo, userRepo *repository.UserRepo) *ClassHandler {
	return &ClassHandler{classRepo: classRepo, userRepo: userRepo}
}

func (h *ClassHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.ClassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Name is required", r))
		return
	}

	actor, err := h.userRepo.GetByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil || actor.SchoolID == nil {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "No school membership", r))
		return
	}

	class := &models.Class{
		SchoolID:  *actor.SchoolID,
		SubjectID: req.SubjectID,
		TeacherID: req.TeacherID,
		Name:      strings.TrimSpace(req.Name),
	}
	if actor.Role == models.RoleTeacher {
		// Teachers always own the classes they create.
		class.TeacherID = &actor.ID
	}

	if err := h.classRepo.Create(r.Context(), class); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create class", r))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"class": class})
}

// List returns the classes visible to the caller: enrolled classes for
// students, school classes for everyone else.
func (h *ClassHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := h.userRepo.GetByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Invalid session", r))
		return
	}

	if actor.Role == models.RoleStudent {
		classes, err := h.classRepo.ListByStudent(r.Context(), actor.ID)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch classes", r))
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"classes": classes})
		return
	}

	if actor.SchoolID == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"classes": []*models.Class{}})
		return
	}

	classes, err := h.classRepo.ListBySchool(r.Context(), *actor.SchoolID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch classes", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"classes": classes})
}

func (h *ClassHandler) Get(w http.ResponseWriter, r *http.Request) {
	class, ok := h.loadClass(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"class": class})
}

func (h *ClassHandler) Update(w http.ResponseWriter, r *http.Request) {
	class, ok := h.loadClass(w, r)
	if !ok {
		return
	}

	if !h.canManage(r, class) {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return
	}

	var req models.ClassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if strings.TrimSpace(req.Name) != "" {
		class.Name = strings.TrimSpace(req.Name)
	}
	if req.SubjectID != nil {
		class.SubjectID = req.SubjectID
	}
	if req.TeacherID != nil {
		class.TeacherID = req.TeacherID
	}

	if err := h.classRepo.Update(r.Context(), class); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to update class", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"class": class})
}

func (h *ClassHandler) Delete(w http.ResponseWriter, r *http.Request) {
	class, ok := h.loadClass(w, r)
	if !ok {
		return
	}

	if !h.canManage(r, class) {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return
	}

	if err := h.classRepo.Delete(r.Context(), class.ID); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete class", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Class deleted"})
}

func (h *ClassHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	class, ok := h.loadClass(w, r)
	if !ok {
		return
	}

	if !h.canManage(r, class) {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return
	}

	var req models.EnrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.StudentID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "student_id is required", r))
		return
	}

	student, err := h.userRepo.GetByID(r.Context(), req.StudentID)
	if err != nil || student.Role != models.RoleStudent {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Student not found", r))
		return
	}
	if student.SchoolID == nil || *student.SchoolID != class.SchoolID {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Student belongs to a different school", r))
		return
	}

	if err := h.classRepo.Enroll(r.Context(), class.ID, req.StudentID); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to enroll student", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Student enrolled"})
}

func (h *ClassHandler) Unenroll(w http.ResponseWriter, r *http.Request) {
	class, ok := h.loadClass(w, r)
	if !ok {
		return
	}

	if !h.canManage(r, class) {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return
	}

	studentID, err := uuid.Parse(chi.URLParam(r, "studentID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid student ID", r))
		return
	}

	if err := h.classRepo.Unenroll(r.Context(), class.ID, studentID); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to unenroll student", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Student unenrolled"})
}

func (h *ClassHandler) loadClass(w http.ResponseWriter, r *http.Request) (*models.Class, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid class ID", r))
		return nil, false
	}

	class, err := h.classRepo.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Class not found", r))
		return nil, false
	}
	return class, true
}

// canManage allows the assigned teacher, the school's admins, and super
// admins to modify a class and its roster.
func (h *ClassHandler) canManage(r *http.Request, class *models.Class) bool {
	userID := middleware.GetUserID(r.Context())

	switch middleware.GetRole(r.Context()) {
	case models.RoleSuperAdmin:
		return true
	case models.RoleSchoolAdmin:
		actor, err := h.userRepo.GetByID(r.Context(), userID)
		return err == nil && actor.SchoolID != nil && *actor.SchoolID == class.SchoolID
	case models.RoleTeacher:
		return class.TeacherID != nil && *class.TeacherID == userID
	}
	return false
}
