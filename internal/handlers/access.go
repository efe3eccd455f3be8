package handlers

import (
	"net/http"

	"schoolhub-backend/internal/middleware"
	"schoolhub-backend/internal/models"
	"schoolhub-backend/internal/repository"
)

// canManageResource allows the creator, the school's admins, and super
// admins.
func canManageResource(r *http.Request, res *models.Resource, userRepo *repository.UserRepo) bool {
	userID := middleware.GetUserID(r.Context())
	if res.CreatorID == userID {
		return true
	}

	switch middleware.GetRole(r.Context()) {
	case models.RoleSuperAdmin:
		return true
	case models.RoleSchoolAdmin:
		actor, err := userRepo.GetByID(r.Context(), userID)
		return err == nil && actor.SchoolID != nil && res.SchoolID != nil && *actor.SchoolID == *res.SchoolID
	}
	return false
}

// canViewResource extends canManageResource with the student path: a
// published resource in a class the student is enrolled in.
func canViewResource(r *http.Request, res *models.Resource, userRepo *repository.UserRepo, classRepo *repository.ClassRepo) bool {
	if canManageResource(r, res, userRepo) {
		return true
	}
	if middleware.GetRole(r.Context()) != models.RoleStudent {
		return false
	}
	if !res.Published || res.ClassID == nil {
		return false
	}

	enrolled, err := classRepo.IsEnrolled(r.Context(), *res.ClassID, middleware.GetUserID(r.Context()))
	return err == nil && enrolled
}
