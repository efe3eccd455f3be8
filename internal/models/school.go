package models

import (
	"time"

	"github.com/google/uuid"
)

type School struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   *string   `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

type Subject struct {
	ID        uuid.UUID `json:"id"`
	SchoolID  uuid.UUID `json:"school_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Class struct {
	ID        uuid.UUID  `json:"id"`
	SchoolID  uuid.UUID  `json:"school_id"`
	SubjectID *uuid.UUID `json:"subject_id"`
	TeacherID *uuid.UUID `json:"teacher_id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
}

type SchoolRequest struct {
	Name    string  `json:"name"`
	Address *string `json:"address"`
}

type SubjectRequest struct {
	Name string `json:"name"`
}

type ClassRequest struct {
	Name      string     `json:"name"`
	SubjectID *uuid.UUID `json:"subject_id"`
	TeacherID *uuid.UUID `json:"teacher_id"`
}

type EnrollRequest struct {
	StudentID uuid.UUID `json:"student_id"`
}
