package review

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"schoolhub-backend/internal/models"
)

func newTestStore() *Store {
	return NewStore(time.Hour)
}

func TestStore_StartBuildsDeckFromRatings(t *testing.T) {
	st := newTestStore()
	user, resource := uuid.New(), uuid.New()
	now := time.Now()
	future := now.Add(time.Hour)
	ratings := map[int]models.CardRating{
		1: {Rating: models.RatingEasy, NextReviewAt: &future},
	}

	state := st.Start(user, resource, 3, ratings, false, now)
	if state.Complete {
		t.Fatal("Expected active session")
	}
	if len(state.Deck) != 2 || state.Deck[0] != 0 || state.Deck[1] != 2 {
		t.Errorf("Expected deck [0 2], got %v", state.Deck)
	}
	if state.CardIndex != 0 {
		t.Errorf("Expected current card 0, got %d", state.CardIndex)
	}
}

func TestStore_StartEmptyDeckIsComplete(t *testing.T) {
	st := newTestStore()
	user, resource := uuid.New(), uuid.New()
	now := time.Now()
	future := now.Add(time.Hour)
	ratings := map[int]models.CardRating{
		0: {Rating: models.RatingEasy, NextReviewAt: &future},
		1: {Rating: models.RatingMedium, NextReviewAt: &future},
	}

	state := st.Start(user, resource, 2, ratings, false, now)
	if !state.Complete {
		t.Error("Expected session complete when every card is scheduled")
	}
	if state.CardIndex != -1 {
		t.Errorf("Expected card index -1, got %d", state.CardIndex)
	}
}

func TestStore_RateRemovesCurrentCard(t *testing.T) {
	st := newTestStore()
	user, resource := uuid.New(), uuid.New()
	st.Start(user, resource, 3, nil, false, time.Now())

	cardIndex, state, err := st.Rate(user, resource, models.RatingEasy)
	if err != nil {
		t.Fatalf("Rate failed: %v", err)
	}
	if cardIndex != 0 {
		t.Errorf("Expected rated card 0, got %d", cardIndex)
	}
	if len(state.Deck) != 2 || state.CardIndex != 1 {
		t.Errorf("Expected deck [1 2] with current card 1, got %v (current %d)", state.Deck, state.CardIndex)
	}
}

func TestStore_RateLastCardCompletesSession(t *testing.T) {
	st := newTestStore()
	user, resource := uuid.New(), uuid.New()
	st.Start(user, resource, 1, nil, false, time.Now())

	_, state, err := st.Rate(user, resource, models.RatingMedium)
	if err != nil {
		t.Fatalf("Rate failed: %v", err)
	}
	if !state.Complete {
		t.Error("Expected session complete after rating the only card")
	}

	if _, _, err := st.Rate(user, resource, models.RatingMedium); err != ErrSessionComplete {
		t.Errorf("Expected ErrSessionComplete, got %v", err)
	}
}

func TestStore_CompletionCancelsPendingRequeues(t *testing.T) {
	st := newTestStore()
	user, resource := uuid.New(), uuid.New()
	key := sessionKey{user, resource}
	st.Start(user, resource, 2, nil, false, time.Now())

	hardIndex, _, err := st.Rate(user, resource, models.RatingHard)
	if err != nil {
		t.Fatalf("Rate failed: %v", err)
	}
	_, state, err := st.Rate(user, resource, models.RatingMedium)
	if err != nil {
		t.Fatalf("Rate failed: %v", err)
	}
	if !state.Complete {
		t.Fatal("Expected session complete after rating both cards")
	}

	st.mu.Lock()
	s := st.sessions[key]
	pending := len(s.timers)
	st.mu.Unlock()
	if pending != 0 {
		t.Errorf("Expected no pending requeue timers after completion, got %d", pending)
	}

	// A requeue already in flight when the deck emptied must not revive
	// the session.
	st.requeueHard(key, s, hardIndex)
	got, err := st.Get(user, resource)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !got.Complete {
		t.Errorf("Expected session to stay complete, got %+v", got)
	}
}

func TestStore_LastCardRatedHardStaysComplete(t *testing.T) {
	st := newTestStore()
	user, resource := uuid.New(), uuid.New()
	key := sessionKey{user, resource}
	st.Start(user, resource, 1, nil, false, time.Now())

	cardIndex, state, err := st.Rate(user, resource, models.RatingHard)
	if err != nil {
		t.Fatalf("Rate failed: %v", err)
	}
	if !state.Complete {
		t.Fatal("Expected session complete after rating the only card hard")
	}

	st.mu.Lock()
	s := st.sessions[key]
	pending := len(s.timers)
	st.mu.Unlock()
	if pending != 0 {
		t.Errorf("Expected the final hard card to schedule no requeue, got %d timers", pending)
	}

	st.requeueHard(key, s, cardIndex)
	got, err := st.Get(user, resource)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !got.Complete {
		t.Errorf("Expected session to stay complete, got %+v", got)
	}
}

func TestStore_HardCardNotRequeuedImmediately(t *testing.T) {
	st := newTestStore()
	user, resource := uuid.New(), uuid.New()
	st.Start(user, resource, 2, nil, false, time.Now())

	cardIndex, state, err := st.Rate(user, resource, models.RatingHard)
	if err != nil {
		t.Fatalf("Rate failed: %v", err)
	}
	if cardIndex != 0 {
		t.Errorf("Expected rated card 0, got %d", cardIndex)
	}
	// The 60s requeue has not fired; card 0 must be gone from the live deck.
	for _, idx := range state.Deck {
		if idx == cardIndex {
			t.Errorf("Hard card %d still in deck %v", cardIndex, state.Deck)
		}
	}
}

func TestStore_DiscardedSessionNotMutatedByRequeue(t *testing.T) {
	st := newTestStore()
	user, resource := uuid.New(), uuid.New()
	st.Start(user, resource, 2, nil, false, time.Now())

	if _, _, err := st.Rate(user, resource, models.RatingHard); err != nil {
		t.Fatalf("Rate failed: %v", err)
	}
	st.Discard(user, resource)

	// A fresh start must re-derive purely from the rating snapshot.
	state := st.Start(user, resource, 2, nil, false, time.Now())
	if len(state.Deck) != 2 {
		t.Errorf("Expected fresh deck of 2, got %v", state.Deck)
	}
}

func TestStore_NavigateWrapsCircularly(t *testing.T) {
	st := newTestStore()
	user, resource := uuid.New(), uuid.New()
	st.Start(user, resource, 3, nil, false, time.Now())

	state, err := st.Navigate(user, resource, false)
	if err != nil {
		t.Fatalf("Navigate failed: %v", err)
	}
	if state.CardIndex != 2 {
		t.Errorf("Expected previous from 0 to wrap to card 2, got %d", state.CardIndex)
	}

	state, _ = st.Navigate(user, resource, true)
	if state.CardIndex != 0 {
		t.Errorf("Expected next to wrap back to card 0, got %d", state.CardIndex)
	}
}

func TestStore_PreviewUsesFullListAndRejectsRating(t *testing.T) {
	st := newTestStore()
	user, resource := uuid.New(), uuid.New()
	now := time.Now()
	future := now.Add(time.Hour)
	ratings := map[int]models.CardRating{
		0: {Rating: models.RatingEasy, NextReviewAt: &future},
	}

	state := st.Start(user, resource, 3, ratings, true, now)
	if len(state.Deck) != 3 {
		t.Errorf("Expected preview deck over the full card list, got %v", state.Deck)
	}

	if _, _, err := st.Rate(user, resource, models.RatingEasy); err == nil {
		t.Error("Expected rating to be rejected in preview mode")
	}
}

func TestStore_GetWithoutSession(t *testing.T) {
	st := newTestStore()
	if _, err := st.Get(uuid.New(), uuid.New()); err != ErrNoSession {
		t.Errorf("Expected ErrNoSession, got %v", err)
	}
}
