package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"schoolhub-backend/internal/models"
)

type ClassRepo struct {
	pool *pgxpool.Pool
}

func NewClassRepo(pool *pgxpool.Pool) *ClassRepo {
	return &ClassRepo{pool: pool}
}

const classColumns = "id, school_id, subject_id, teacher_id, name, created_at"

func (r *ClassRepo) Create(ctx context.Context, c *models.Class) error {
	c.ID = uuid.New()
	query := `INSERT INTO classes (id, school_id, subject_id, teacher_id, name)
		VALUES ($1, $2, $3, $4, $5) RETURNING created_at`
	return r.pool.QueryRow(ctx, query, c.ID, c.SchoolID, c.SubjectID, c.TeacherID, c.Name).Scan(&c.CreatedAt)
}

func (r *ClassRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Class, error) {
	c := &models.Class{}
	err := r.pool.QueryRow(ctx, "SELECT "+classColumns+" FROM classes WHERE id = $1", id).Scan(
		&c.ID, &c.SchoolID, &c.SubjectID, &c.TeacherID, &c.Name, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ClassRepo) ListBySchool(ctx context.Context, schoolID uuid.UUID) ([]*models.Class, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+classColumns+" FROM classes WHERE school_id = $1 ORDER BY name", schoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var classes []*models.Class
	for rows.Next() {
		c := &models.Class{}
		if err := rows.Scan(&c.ID, &c.SchoolID, &c.SubjectID, &c.TeacherID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

// ListByStudent returns the classes a student is enrolled in.
func (r *ClassRepo) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*models.Class, error) {
	query := `SELECT c.id, c.school_id, c.subject_id, c.teacher_id, c.name, c.created_at
		FROM classes c
		JOIN class_students cs ON cs.class_id = c.id
		WHERE cs.student_id = $1
		ORDER BY c.name`

	rows, err := r.pool.Query(ctx, query, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var classes []*models.Class
	for rows.Next() {
		c := &models.Class{}
		if err := rows.Scan(&c.ID, &c.SchoolID, &c.SubjectID, &c.TeacherID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

func (r *ClassRepo) Update(ctx context.Context, c *models.Class) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE classes SET name = $1, subject_id = $2, teacher_id = $3 WHERE id = $4",
		c.Name, c.SubjectID, c.TeacherID, c.ID,
	)
	return err
}

func (r *ClassRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM classes WHERE id = $1", id)
	return err
}

// Enrollment

func (r *ClassRepo) Enroll(ctx context.Context, classID, studentID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		"INSERT INTO class_students (class_id, student_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		classID, studentID,
	)
	return err
}

func (r *ClassRepo) Unenroll(ctx context.Context, classID, studentID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		"DELETE FROM class_students WHERE class_id = $1 AND student_id = $2", classID, studentID)
	return err
}

func (r *ClassRepo) IsEnrolled(ctx context.Context, classID, studentID uuid.UUID) (bool, error) {
	var enrolled bool
	err := r.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM class_students WHERE class_id = $1 AND student_id = $2)",
		classID, studentID,
	).Scan(&enrolled)
	return enrolled, err
}
