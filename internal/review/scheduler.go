// Package review implements spaced-repetition scheduling for flash-card
// study sessions: which cards a student sees, and when a rated card becomes
// due again. All interval arithmetic uses the server clock; clients only
// display the timestamps it hands out.
package review

import (
	"sort"
	"time"

	"schoolhub-backend/internal/models"
)

// Fixed rating-to-interval policy. Hard cards come back almost immediately,
// medium after a day, easy after three.
const (
	HardInterval   = time.Minute
	MediumInterval = 24 * time.Hour
	EasyInterval   = 3 * 24 * time.Hour
)

// NextReviewAt computes the next review time for a rating submitted at now.
func NextReviewAt(rating string, now time.Time) time.Time {
	switch rating {
	case models.RatingHard:
		return now.Add(HardInterval)
	case models.RatingEasy:
		return now.Add(EasyInterval)
	default:
		return now.Add(MediumInterval)
	}
}

// BuildDeck partitions card indices [0, cardCount) into the session deck:
// due rated cards first (a card is due when its next review time is unset or
// has passed), then never-rated cards, both in original index order. Cards
// scheduled in the future are excluded entirely.
func BuildDeck(cardCount int, ratings map[int]models.CardRating, now time.Time) []int {
	var due, fresh []int
	for i := 0; i < cardCount; i++ {
		r, rated := ratings[i]
		switch {
		case !rated:
			fresh = append(fresh, i)
		case r.NextReviewAt == nil || !r.NextReviewAt.After(now):
			due = append(due, i)
		}
	}
	return append(due, fresh...)
}

// UpcomingReview is one entry in the session recap.
type UpcomingReview struct {
	CardIndex    int       `json:"card_index"`
	NextReviewAt time.Time `json:"next_review_at"`
}

// Recap summarizes what comes next once a session is complete: the soonest
// scheduled reviews, capped to a small preview, plus how many more exist.
type Recap struct {
	Upcoming []UpcomingReview `json:"upcoming"`
	Overflow int              `json:"overflow"`
}

const recapPreviewSize = 5

// BuildRecap collects cards with a future next review time, soonest first.
func BuildRecap(ratings map[int]models.CardRating, now time.Time) Recap {
	var upcoming []UpcomingReview
	for idx, r := range ratings {
		if r.NextReviewAt != nil && r.NextReviewAt.After(now) {
			upcoming = append(upcoming, UpcomingReview{CardIndex: idx, NextReviewAt: *r.NextReviewAt})
		}
	}

	sort.Slice(upcoming, func(i, j int) bool {
		if upcoming[i].NextReviewAt.Equal(upcoming[j].NextReviewAt) {
			return upcoming[i].CardIndex < upcoming[j].CardIndex
		}
		return upcoming[i].NextReviewAt.Before(upcoming[j].NextReviewAt)
	})

	recap := Recap{Upcoming: upcoming}
	if len(upcoming) > recapPreviewSize {
		recap.Upcoming = upcoming[:recapPreviewSize]
		recap.Overflow = len(upcoming) - recapPreviewSize
	}
	return recap
}
