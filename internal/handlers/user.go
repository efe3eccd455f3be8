package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"schoolhub-backend/internal/middleware"
	"schoolhub-backend/internal/models"
	"schoolhub-backend/internal/repository"
)

type UserHandler struct {
	userRepo *repository.UserRepo
}

func NewUserHandler(userRepo *repository.UserRepo) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := h.userRepo.GetByID(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "User not found", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	fields := map[string]string{}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		fields["email"] = "A valid email is required"
	}
	if strings.TrimSpace(req.FullName) == "" {
		fields["full_name"] = "Full name is required"
	}
	if len(req.Password) < 8 {
		fields["password"] = "Password must be at least 8 characters"
	}
	if !models.ValidRole(req.Role) {
		fields["role"] = "Role must be super_admin, school_admin, teacher or student"
	}
	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fields, r))
		return
	}

	actor, err := h.userRepo.GetByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Invalid session", r))
		return
	}

	schoolID := req.SchoolID
	if actor.Role == models.RoleSchoolAdmin {
		// School admins create accounts only inside their own school, and
		// never admin accounts.
		if req.Role == models.RoleSuperAdmin || req.Role == models.RoleSchoolAdmin {
			writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Cannot create admin accounts", r))
			return
		}
		schoolID = actor.SchoolID
	}
	if req.Role != models.RoleSuperAdmin && schoolID == nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "school_id is required for this role", r))
		return
	}

	if existing, _ := h.userRepo.GetByEmail(r.Context(), req.Email); existing != nil {
		writeJSON(w, http.StatusConflict, errorResp("CONFLICT", "Email is already registered", r))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create user", r))
		return
	}

	user := &models.User{
		SchoolID:     schoolID,
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(req.FullName),
		Role:         req.Role,
		IsActive:     true,
	}

	if err := h.userRepo.Create(r.Context(), user); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create user", r))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"user": user})
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := h.userRepo.GetByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Invalid session", r))
		return
	}

	var schoolID uuid.UUID
	if actor.Role == models.RoleSuperAdmin {
		id, err := uuid.Parse(r.URL.Query().Get("school_id"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "school_id query parameter is required", r))
			return
		}
		schoolID = id
	} else {
		if actor.SchoolID == nil {
			writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "No school membership", r))
			return
		}
		schoolID = *actor.SchoolID
	}

	role := r.URL.Query().Get("role")
	if role != "" && !models.ValidRole(role) {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Unknown role filter", r))
		return
	}

	users, err := h.userRepo.ListBySchool(r.Context(), schoolID, role)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch users", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid user ID", r))
		return
	}

	var req models.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	user, err := h.userRepo.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "User not found", r))
		return
	}

	if !h.canManage(r, user) {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return
	}

	if req.FullName != nil && strings.TrimSpace(*req.FullName) != "" {
		user.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := h.userRepo.Update(r.Context(), user); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to update user", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid user ID", r))
		return
	}

	user, err := h.userRepo.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "User not found", r))
		return
	}

	if !h.canManage(r, user) {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return
	}

	if err := h.userRepo.Delete(r.Context(), id); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete user", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}

// canManage reports whether the caller may modify the target account. Super
// admins manage everyone; school admins manage non-admin accounts in their
// own school.
func (h *UserHandler) canManage(r *http.Request, target *models.User) bool {
	role := middleware.GetRole(r.Context())
	if role == models.RoleSuperAdmin {
		return true
	}
	if role != models.RoleSchoolAdmin {
		return false
	}
	if target.Role == models.RoleSuperAdmin || target.Role == models.RoleSchoolAdmin {
		return false
	}

	actor, err := h.userRepo.GetByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil || actor.SchoolID == nil || target.SchoolID == nil {
		return false
	}
	return *actor.SchoolID == *target.SchoolID
}
