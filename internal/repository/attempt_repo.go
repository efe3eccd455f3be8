package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"schoolhub-backend/internal/models"
)

// ErrAttemptExists reports a second submission for a (resource, student)
// pair that already has its one scored attempt.
var ErrAttemptExists = errors.New("quiz attempt already exists")

type AttemptRepo struct {
	pool *pgxpool.Pool
}

func NewAttemptRepo(pool *pgxpool.Pool) *AttemptRepo {
	return &AttemptRepo{pool: pool}
}

// Create writes the one-and-only attempt for a student on a quiz. The
// unique index on (resource_id, user_id) makes the write-once rule hold
// even under concurrent submissions.
func (r *AttemptRepo) Create(ctx context.Context, a *models.QuizAttempt) error {
	a.ID = uuid.New()
	answersJSON, _ := json.Marshal(a.Answers)
	resultsJSON, _ := json.Marshal(a.Results)

	query := `INSERT INTO quiz_attempts (id, resource_id, user_id, answers_json, score, max_score, results_json)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at`

	err := r.pool.QueryRow(ctx, query,
		a.ID, a.ResourceID, a.UserID, answersJSON, a.Score, a.MaxScore, resultsJSON,
	).Scan(&a.CreatedAt)

	return mapAttemptWriteError(err)
}

// mapAttemptWriteError converts a unique violation on the
// (resource_id, user_id) index into ErrAttemptExists; anything else passes
// through.
func mapAttemptWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrAttemptExists
	}
	return err
}

// GetByResourceAndUser returns the stored attempt, or nil when the student
// has not submitted yet. Reads are idempotent; the stored attempt is never
// re-scored.
func (r *AttemptRepo) GetByResourceAndUser(ctx context.Context, resourceID, userID uuid.UUID) (*models.QuizAttempt, error) {
	a := &models.QuizAttempt{}
	var answersJSON, resultsJSON []byte

	query := `SELECT id, resource_id, user_id, answers_json, score, max_score, results_json, created_at
		FROM quiz_attempts WHERE resource_id = $1 AND user_id = $2`

	err := r.pool.QueryRow(ctx, query, resourceID, userID).Scan(
		&a.ID, &a.ResourceID, &a.UserID, &answersJSON, &a.Score, &a.MaxScore, &resultsJSON, &a.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(answersJSON, &a.Answers); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(resultsJSON, &a.Results); err != nil {
		return nil, err
	}
	return a, nil
}

// ListByResource returns all attempts for a quiz, for teacher-facing
// reports.
func (r *AttemptRepo) ListByResource(ctx context.Context, resourceID uuid.UUID) ([]*models.QuizAttempt, error) {
	query := `SELECT id, resource_id, user_id, answers_json, score, max_score, results_json, created_at
		FROM quiz_attempts WHERE resource_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, resourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []*models.QuizAttempt
	for rows.Next() {
		a := &models.QuizAttempt{}
		var answersJSON, resultsJSON []byte
		if err := rows.Scan(&a.ID, &a.ResourceID, &a.UserID, &answersJSON, &a.Score, &a.MaxScore, &resultsJSON, &a.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(answersJSON, &a.Answers); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(resultsJSON, &a.Results); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
