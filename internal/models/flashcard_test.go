package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestCardRating_UnmarshalLegacyString(t *testing.T) {
	var rating CardRating
	if err := json.Unmarshal([]byte(`"easy"`), &rating); err != nil {
		t.Fatalf("Failed to unmarshal legacy rating: %v", err)
	}

	if rating.Rating != RatingEasy {
		t.Errorf("Expected rating 'easy', got %q", rating.Rating)
	}
	if rating.NextReviewAt != nil {
		t.Error("Expected legacy rating to have no next review time")
	}
}

func TestCardRating_UnmarshalObject(t *testing.T) {
	var rating CardRating
	data := []byte(`{"rating":"hard","next_review_at":"2026-09-01T10:00:00Z"}`)
	if err := json.Unmarshal(data, &rating); err != nil {
		t.Fatalf("Failed to unmarshal rating object: %v", err)
	}

	if rating.Rating != RatingHard {
		t.Errorf("Expected rating 'hard', got %q", rating.Rating)
	}
	want := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	if rating.NextReviewAt == nil || !rating.NextReviewAt.Equal(want) {
		t.Errorf("Expected next review at %v, got %v", want, rating.NextReviewAt)
	}
}

func TestCardRating_UnmarshalMixedMap(t *testing.T) {
	// A stored snapshot can mix legacy strings and current objects.
	data := []byte(`{"0":"medium","1":{"rating":"easy","next_review_at":null}}`)

	var ratings map[int]CardRating
	if err := json.Unmarshal(data, &ratings); err != nil {
		t.Fatalf("Failed to unmarshal mixed snapshot: %v", err)
	}

	if ratings[0].Rating != RatingMedium {
		t.Errorf("Expected card 0 rating 'medium', got %q", ratings[0].Rating)
	}
	if ratings[1].Rating != RatingEasy {
		t.Errorf("Expected card 1 rating 'easy', got %q", ratings[1].Rating)
	}
	if ratings[1].NextReviewAt != nil {
		t.Error("Expected null next review time to stay nil")
	}
}

func TestCardRating_UnmarshalRejectsOtherShapes(t *testing.T) {
	var rating CardRating
	if err := json.Unmarshal([]byte(`42`), &rating); err == nil {
		t.Error("Expected an error for a numeric rating value")
	}
}

func TestValidRating(t *testing.T) {
	for _, r := range []string{RatingEasy, RatingMedium, RatingHard} {
		if !ValidRating(r) {
			t.Errorf("Expected %q to be valid", r)
		}
	}
	for _, r := range []string{"", "impossible", "EASY"} {
		if ValidRating(r) {
			t.Errorf("Expected %q to be invalid", r)
		}
	}
}
