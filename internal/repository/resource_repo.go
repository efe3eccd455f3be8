package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"schoolhub-backend/internal/models"
)

type ResourceRepo struct {
	pool *pgxpool.Pool
}

func NewResourceRepo(pool *pgxpool.Pool) *ResourceRepo {
	return &ResourceRepo{pool: pool}
}

const resourceColumns = `id, school_id, class_id, creator_id, type, title, description,
	body_raw, file_path, source_url, cards_json, questions_json, published, created_at`

func (r *ResourceRepo) Create(ctx context.Context, res *models.Resource) error {
	res.ID = uuid.New()
	if res.CardsJSON == nil {
		res.CardsJSON = json.RawMessage("[]")
	}
	if res.QuestionsJSON == nil {
		res.QuestionsJSON = json.RawMessage("[]")
	}

	query := `INSERT INTO resources (id, school_id, class_id, creator_id, type, title, description,
		body_raw, file_path, source_url, cards_json, questions_json, published)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		res.ID, res.SchoolID, res.ClassID, res.CreatorID, res.Type, res.Title, res.Description,
		res.BodyRaw, res.FilePath, res.SourceURL, res.CardsJSON, res.QuestionsJSON, res.Published,
	).Scan(&res.CreatedAt)
}

func (r *ResourceRepo) scanResource(row interface{ Scan(...any) error }) (*models.Resource, error) {
	res := &models.Resource{}
	err := row.Scan(
		&res.ID, &res.SchoolID, &res.ClassID, &res.CreatorID, &res.Type, &res.Title, &res.Description,
		&res.BodyRaw, &res.FilePath, &res.SourceURL, &res.CardsJSON, &res.QuestionsJSON,
		&res.Published, &res.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *ResourceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Resource, error) {
	return r.scanResource(r.pool.QueryRow(ctx, "SELECT "+resourceColumns+" FROM resources WHERE id = $1", id))
}

func (r *ResourceRepo) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]*models.Resource, error) {
	return r.list(ctx, "SELECT "+resourceColumns+" FROM resources WHERE creator_id = $1 ORDER BY created_at DESC", creatorID)
}

// ListPublishedForClass returns the published resources a student in the
// given class can study.
func (r *ResourceRepo) ListPublishedForClass(ctx context.Context, classID uuid.UUID) ([]*models.Resource, error) {
	return r.list(ctx,
		"SELECT "+resourceColumns+" FROM resources WHERE class_id = $1 AND published ORDER BY created_at DESC",
		classID)
}

func (r *ResourceRepo) list(ctx context.Context, query string, args ...any) ([]*models.Resource, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resources []*models.Resource
	for rows.Next() {
		res, err := r.scanResource(rows)
		if err != nil {
			return nil, err
		}
		resources = append(resources, res)
	}
	return resources, rows.Err()
}

func (r *ResourceRepo) Update(ctx context.Context, res *models.Resource) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE resources SET title = $1, description = $2, class_id = $3, body_raw = $4,
		 source_url = $5, cards_json = $6, questions_json = $7, published = $8 WHERE id = $9`,
		res.Title, res.Description, res.ClassID, res.BodyRaw,
		res.SourceURL, res.CardsJSON, res.QuestionsJSON, res.Published, res.ID,
	)
	return err
}

func (r *ResourceRepo) UpdateCards(ctx context.Context, id uuid.UUID, cards json.RawMessage) error {
	_, err := r.pool.Exec(ctx, "UPDATE resources SET cards_json = $1 WHERE id = $2", cards, id)
	return err
}

func (r *ResourceRepo) UpdateQuestions(ctx context.Context, id uuid.UUID, questions json.RawMessage) error {
	_, err := r.pool.Exec(ctx, "UPDATE resources SET questions_json = $1 WHERE id = $2", questions, id)
	return err
}

func (r *ResourceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM resources WHERE id = $1", id)
	return err
}
