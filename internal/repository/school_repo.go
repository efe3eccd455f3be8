package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"schoolhub-backend/internal/models"
)

type SchoolRepo struct {
	pool *pgxpool.Pool
}

func NewSchoolRepo(pool *pgxpool.Pool) *SchoolRepo {
	return &SchoolRepo{pool: pool}
}

func (r *SchoolRepo) Create(ctx context.Context, s *models.School) error {
	s.ID = uuid.New()
	query := `INSERT INTO schools (id, name, address) VALUES ($1, $2, $3) RETURNING created_at`
	return r.pool.QueryRow(ctx, query, s.ID, s.Name, s.Address).Scan(&s.CreatedAt)
}

func (r *SchoolRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.School, error) {
	s := &models.School{}
	err := r.pool.QueryRow(ctx,
		"SELECT id, name, address, created_at FROM schools WHERE id = $1", id,
	).Scan(&s.ID, &s.Name, &s.Address, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SchoolRepo) List(ctx context.Context) ([]*models.School, error) {
	rows, err := r.pool.Query(ctx, "SELECT id, name, address, created_at FROM schools ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schools []*models.School
	for rows.Next() {
		s := &models.School{}
		if err := rows.Scan(&s.ID, &s.Name, &s.Address, &s.CreatedAt); err != nil {
			return nil, err
		}
		schools = append(schools, s)
	}
	return schools, rows.Err()
}

func (r *SchoolRepo) Update(ctx context.Context, s *models.School) error {
	_, err := r.pool.Exec(ctx, "UPDATE schools SET name = $1, address = $2 WHERE id = $3", s.Name, s.Address, s.ID)
	return err
}

func (r *SchoolRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM schools WHERE id = $1", id)
	return err
}

// Subjects

func (r *SchoolRepo) CreateSubject(ctx context.Context, s *models.Subject) error {
	s.ID = uuid.New()
	query := `INSERT INTO subjects (id, school_id, name) VALUES ($1, $2, $3) RETURNING created_at`
	return r.pool.QueryRow(ctx, query, s.ID, s.SchoolID, s.Name).Scan(&s.CreatedAt)
}

func (r *SchoolRepo) ListSubjects(ctx context.Context, schoolID uuid.UUID) ([]*models.Subject, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT id, school_id, name, created_at FROM subjects WHERE school_id = $1 ORDER BY name", schoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []*models.Subject
	for rows.Next() {
		s := &models.Subject{}
		if err := rows.Scan(&s.ID, &s.SchoolID, &s.Name, &s.CreatedAt); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

func (r *SchoolRepo) DeleteSubject(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM subjects WHERE id = $1", id)
	return err
}
