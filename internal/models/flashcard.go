package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// FlashCard is immutable once generated and identified by its ordinal
// position within the owning resource's card list.
type FlashCard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

const (
	RatingEasy   = "easy"
	RatingMedium = "medium"
	RatingHard   = "hard"
)

func ValidRating(r string) bool {
	return r == RatingEasy || r == RatingMedium || r == RatingHard
}

// CardRating holds the most recent rating a student gave a card and the
// server-computed next review time. NextReviewAt is nil for legacy rows
// written before scheduling existed; nil means always due.
type CardRating struct {
	Rating       string     `json:"rating"`
	NextReviewAt *time.Time `json:"next_review_at"`
}

// UnmarshalJSON accepts both the current object shape and the legacy bare
// rating string stored by early clients.
func (c *CardRating) UnmarshalJSON(data []byte) error {
	var bare string
	if err := json.Unmarshal(data, &bare); err == nil {
		c.Rating = bare
		c.NextReviewAt = nil
		return nil
	}

	type alias CardRating
	var full alias
	if err := json.Unmarshal(data, &full); err != nil {
		return fmt.Errorf("card rating must be a string or an object: %w", err)
	}
	*c = CardRating(full)
	return nil
}

type RateCardRequest struct {
	CardIndex int    `json:"card_index"`
	Rating    string `json:"rating"`
}

type RatingsResponse struct {
	Ratings map[int]CardRating `json:"ratings"`
}
