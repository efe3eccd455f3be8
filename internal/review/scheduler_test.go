package review

import (
	"testing"
	"time"

	"schoolhub-backend/internal/models"
)

func ratedAt(rating string, next time.Time) models.CardRating {
	return models.CardRating{Rating: rating, NextReviewAt: &next}
}

func TestNextReviewAt_IntervalPolicy(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		rating   string
		expected time.Time
	}{
		{models.RatingHard, now.Add(time.Minute)},
		{models.RatingMedium, now.Add(24 * time.Hour)},
		{models.RatingEasy, now.Add(72 * time.Hour)},
	}

	for _, tc := range tests {
		t.Run(tc.rating, func(t *testing.T) {
			got := NextReviewAt(tc.rating, now)
			if !got.Equal(tc.expected) {
				t.Errorf("Expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestBuildDeck_AllNew(t *testing.T) {
	deck := BuildDeck(4, map[int]models.CardRating{}, time.Now())
	expected := []int{0, 1, 2, 3}
	if len(deck) != len(expected) {
		t.Fatalf("Expected deck of %d, got %d", len(expected), len(deck))
	}
	for i, idx := range expected {
		if deck[i] != idx {
			t.Errorf("Position %d: expected card %d, got %d", i, idx, deck[i])
		}
	}
}

func TestBuildDeck_DueBeforeNew(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	ratings := map[int]models.CardRating{
		3: ratedAt(models.RatingMedium, past),
	}

	deck := BuildDeck(4, ratings, now)
	expected := []int{3, 0, 1, 2}
	for i, idx := range expected {
		if deck[i] != idx {
			t.Fatalf("Expected deck %v, got %v", expected, deck)
		}
	}
}

func TestBuildDeck_ScheduledExcluded(t *testing.T) {
	now := time.Now()
	ratings := map[int]models.CardRating{
		0: ratedAt(models.RatingEasy, now.Add(time.Hour)),
		1: {Rating: models.RatingMedium, NextReviewAt: nil}, // legacy: always due
	}

	deck := BuildDeck(3, ratings, now)
	expected := []int{1, 2}
	if len(deck) != 2 || deck[0] != 1 || deck[1] != 2 {
		t.Errorf("Expected deck %v, got %v", expected, deck)
	}
}

func TestBuildDeck_EasyCardReturnsAfterThreeDays(t *testing.T) {
	ratedTime := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	next := NextReviewAt(models.RatingEasy, ratedTime)
	ratings := map[int]models.CardRating{0: ratedAt(models.RatingEasy, next)}

	atOneDay := BuildDeck(1, ratings, ratedTime.Add(24*time.Hour))
	if len(atOneDay) != 0 {
		t.Errorf("Expected easy card excluded at +1 day, got deck %v", atOneDay)
	}

	atThreeDays := BuildDeck(1, ratings, ratedTime.Add(72*time.Hour+time.Second))
	if len(atThreeDays) != 1 || atThreeDays[0] != 0 {
		t.Errorf("Expected easy card due at +3 days, got deck %v", atThreeDays)
	}
}

func TestBuildDeck_HardCardReturnsAfterOneMinute(t *testing.T) {
	ratedTime := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	next := NextReviewAt(models.RatingHard, ratedTime)
	ratings := map[int]models.CardRating{0: ratedAt(models.RatingHard, next)}

	before := BuildDeck(1, ratings, ratedTime.Add(30*time.Second))
	if len(before) != 0 {
		t.Errorf("Expected hard card excluded before +1 minute, got deck %v", before)
	}

	after := BuildDeck(1, ratings, ratedTime.Add(time.Minute))
	if len(after) != 1 {
		t.Errorf("Expected hard card due at +1 minute, got deck %v", after)
	}
}

func TestBuildRecap_AscendingOrder(t *testing.T) {
	now := time.Now()
	ratings := map[int]models.CardRating{
		0: ratedAt(models.RatingEasy, now.Add(3*time.Hour)),
		1: ratedAt(models.RatingMedium, now.Add(time.Hour)),
		2: ratedAt(models.RatingEasy, now.Add(2*time.Hour)),
		3: ratedAt(models.RatingMedium, now.Add(-time.Hour)), // past, excluded
	}

	recap := BuildRecap(ratings, now)
	if len(recap.Upcoming) != 3 {
		t.Fatalf("Expected 3 upcoming reviews, got %d", len(recap.Upcoming))
	}
	if recap.Overflow != 0 {
		t.Errorf("Expected no overflow, got %d", recap.Overflow)
	}

	expected := []int{1, 2, 0}
	for i, u := range recap.Upcoming {
		if u.CardIndex != expected[i] {
			t.Errorf("Position %d: expected card %d, got %d", i, expected[i], u.CardIndex)
		}
	}
}

func TestBuildRecap_PreviewCapAndOverflow(t *testing.T) {
	now := time.Now()
	ratings := make(map[int]models.CardRating, 8)
	for i := 0; i < 8; i++ {
		ratings[i] = ratedAt(models.RatingEasy, now.Add(time.Duration(i+1)*time.Hour))
	}

	recap := BuildRecap(ratings, now)
	if len(recap.Upcoming) != 5 {
		t.Errorf("Expected preview capped at 5, got %d", len(recap.Upcoming))
	}
	if recap.Overflow != 3 {
		t.Errorf("Expected overflow 3, got %d", recap.Overflow)
	}
}
