package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"schoolhub-backend/internal/models"
)

type RatingRepo struct {
	pool *pgxpool.Pool
}

func NewRatingRepo(pool *pgxpool.Pool) *RatingRepo {
	return &RatingRepo{pool: pool}
}

// Upsert overwrites any previous rating for the same (resource, student,
// card) tuple with the new rating and its next review time.
func (r *RatingRepo) Upsert(ctx context.Context, resourceID, userID uuid.UUID, cardIndex int, rating string, nextReviewAt time.Time) error {
	query := `INSERT INTO card_ratings (resource_id, user_id, card_index, rating, next_review_at, rated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (resource_id, user_id, card_index)
		DO UPDATE SET rating = EXCLUDED.rating, next_review_at = EXCLUDED.next_review_at, rated_at = NOW()`

	_, err := r.pool.Exec(ctx, query, resourceID, userID, cardIndex, rating, nextReviewAt)
	return err
}

// GetForStudent returns the rating snapshot for one student on one
// resource, keyed by card index. next_review_at is nullable: rows written
// before scheduling existed have no schedule and are always due.
func (r *RatingRepo) GetForStudent(ctx context.Context, resourceID, userID uuid.UUID) (map[int]models.CardRating, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT card_index, rating, next_review_at FROM card_ratings WHERE resource_id = $1 AND user_id = $2",
		resourceID, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ratings := make(map[int]models.CardRating)
	for rows.Next() {
		var idx int
		var rating models.CardRating
		if err := rows.Scan(&idx, &rating.Rating, &rating.NextReviewAt); err != nil {
			return nil, err
		}
		ratings[idx] = rating
	}
	return ratings, rows.Err()
}

// RatingCount aggregates how a resource's cards are being rated across
// students, for teacher-facing reports.
type RatingCount struct {
	CardIndex int    `json:"card_index"`
	Rating    string `json:"rating"`
	Count     int    `json:"count"`
}

func (r *RatingRepo) CountsByResource(ctx context.Context, resourceID uuid.UUID) ([]RatingCount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT card_index, rating, COUNT(*) FROM card_ratings
		 WHERE resource_id = $1 GROUP BY card_index, rating ORDER BY card_index`,
		resourceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []RatingCount
	for rows.Next() {
		var c RatingCount
		if err := rows.Scan(&c.CardIndex, &c.Rating, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
