package models

import (
	"time"

	"github.com/google/uuid"
)

// Roles are ordered by privilege: super admins manage schools, school admins
// manage their own school, teachers author resources, students consume them.
const (
	RoleSuperAdmin  = "super_admin"
	RoleSchoolAdmin = "school_admin"
	RoleTeacher     = "teacher"
	RoleStudent     = "student"
)

func ValidRole(role string) bool {
	switch role {
	case RoleSuperAdmin, RoleSchoolAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

type User struct {
	ID           uuid.UUID  `json:"id"`
	SchoolID     *uuid.UUID `json:"school_id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FullName     string     `json:"full_name"`
	Role         string     `json:"role"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at"`
}

type RegisterRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateUserRequest is the admin-side account creation payload. SchoolID is
// ignored for school admins, who can only create accounts in their own
// school.
type CreateUserRequest struct {
	FullName string     `json:"full_name"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Role     string     `json:"role"`
	SchoolID *uuid.UUID `json:"school_id"`
}

type UpdateUserRequest struct {
	FullName *string `json:"full_name"`
	IsActive *bool   `json:"is_active"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}
