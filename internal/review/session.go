package review

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"schoolhub-backend/internal/models"
)

// RequeueDelay is how long a "hard" card waits before re-entering the live
// deck. This short loop is a UX hint only: a session rebuilt from server
// state sees the card again when its stored next review time elapses.
const RequeueDelay = 60 * time.Second

var (
	ErrNoSession       = errors.New("no active review session")
	ErrSessionComplete = errors.New("review session is complete")
	ErrPreviewSession  = errors.New("preview sessions do not accept ratings")
)

// State is the snapshot handlers serialize to the client. CardIndex is the
// resolved current card, or -1 once the deck is empty.
type State struct {
	Deck      []int `json:"deck"`
	Position  int   `json:"position"`
	CardIndex int   `json:"card_index"`
	Remaining int   `json:"remaining"`
	Complete  bool  `json:"complete"`
}

type sessionKey struct {
	userID     uuid.UUID
	resourceID uuid.UUID
}

// session is ephemeral by design: it lives only in memory, is rebuilt from
// the rating snapshot on every start, and is never persisted.
type session struct {
	deck       []int
	position   int
	cardCount  int
	preview    bool
	done       bool
	timers     []*time.Timer
	lastActive time.Time
}

// Store holds the active review sessions, one per (user, resource). It is
// the only shared mutable state in the review path; every access goes
// through the mutex. Idle sessions are reaped by a janitor goroutine.
type Store struct {
	mu       sync.Mutex
	sessions map[sessionKey]*session
	idleTTL  time.Duration
}

func NewStore(idleTTL time.Duration) *Store {
	st := &Store{
		sessions: make(map[sessionKey]*session),
		idleTTL:  idleTTL,
	}

	// Janitor goroutine
	go func() {
		for {
			time.Sleep(idleTTL)
			st.mu.Lock()
			for k, s := range st.sessions {
				if time.Since(s.lastActive) > idleTTL {
					s.stopTimers()
					delete(st.sessions, k)
				}
			}
			st.mu.Unlock()
		}
	}()

	return st
}

// Start builds a fresh session from the current rating snapshot, replacing
// any existing session for the same user and resource. Preview sessions
// (teachers, admins) navigate the full unfiltered card list and never rate.
func (st *Store) Start(userID, resourceID uuid.UUID, cardCount int, ratings map[int]models.CardRating, preview bool, now time.Time) State {
	var deck []int
	if preview {
		deck = make([]int, cardCount)
		for i := range deck {
			deck[i] = i
		}
	} else {
		deck = BuildDeck(cardCount, ratings, now)
	}

	s := &session{
		deck:       deck,
		cardCount:  cardCount,
		preview:    preview,
		lastActive: now,
	}

	key := sessionKey{userID, resourceID}

	st.mu.Lock()
	defer st.mu.Unlock()
	if old, ok := st.sessions[key]; ok {
		old.stopTimers()
	}
	st.sessions[key] = s
	return s.state()
}

// Get returns the current session state.
func (st *Store) Get(userID, resourceID uuid.UUID) (State, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[sessionKey{userID, resourceID}]
	if !ok {
		return State{}, ErrNoSession
	}
	s.lastActive = time.Now()
	return s.state(), nil
}

// Rate removes the current card from the deck at its session position and,
// for a "hard" rating, schedules its card index to rejoin the deck tail
// after RequeueDelay. It returns the rated card index; persisting the
// rating is the caller's job. Rating the final card completes the session,
// and completion is terminal: pending requeues are cancelled and the final
// card never schedules one. The requeue callback re-checks that this
// session is still the live one and not complete, so a discarded,
// restarted, or finished session is never mutated late.
func (st *Store) Rate(userID, resourceID uuid.UUID, rating string) (int, State, error) {
	key := sessionKey{userID, resourceID}

	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[key]
	if !ok {
		return 0, State{}, ErrNoSession
	}
	if s.preview {
		return 0, State{}, ErrPreviewSession
	}
	if len(s.deck) == 0 {
		return 0, State{}, ErrSessionComplete
	}

	s.lastActive = time.Now()

	pos := s.currentPos()
	cardIndex := s.deck[pos]
	s.deck = append(s.deck[:pos], s.deck[pos+1:]...)

	if len(s.deck) == 0 {
		s.done = true
		s.stopTimers()
		return cardIndex, s.state(), nil
	}

	if rating == models.RatingHard {
		timer := time.AfterFunc(RequeueDelay, func() {
			st.requeueHard(key, s, cardIndex)
		})
		s.timers = append(s.timers, timer)
	}

	return cardIndex, s.state(), nil
}

// requeueHard returns a hard-rated card to the deck tail, unless the
// session was replaced, discarded, or completed since the timer was set.
func (st *Store) requeueHard(key sessionKey, s *session, cardIndex int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.sessions[key] == s && !s.done {
		s.deck = append(s.deck, cardIndex)
	}
}

// Navigate moves the position forward or backward, wrapping circularly
// within the active deck.
func (st *Store) Navigate(userID, resourceID uuid.UUID, forward bool) (State, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[sessionKey{userID, resourceID}]
	if !ok {
		return State{}, ErrNoSession
	}
	if len(s.deck) == 0 {
		return State{}, ErrSessionComplete
	}

	s.lastActive = time.Now()

	pos := s.currentPos()
	if forward {
		s.position = (pos + 1) % len(s.deck)
	} else {
		s.position = (pos - 1 + len(s.deck)) % len(s.deck)
	}
	return s.state(), nil
}

// Discard drops the session and cancels any pending requeue timers.
func (st *Store) Discard(userID, resourceID uuid.UUID) {
	key := sessionKey{userID, resourceID}

	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[key]; ok {
		s.stopTimers()
		delete(st.sessions, key)
	}
}

// currentPos clamps the stored position into range; the deck shrinks as
// cards are rated.
func (s *session) currentPos() int {
	if s.position >= len(s.deck) {
		return len(s.deck) - 1
	}
	return s.position
}

func (s *session) state() State {
	if len(s.deck) == 0 {
		return State{Deck: []int{}, CardIndex: -1, Complete: s.cardCount > 0}
	}
	pos := s.currentPos()
	deck := make([]int, len(s.deck))
	copy(deck, s.deck)
	return State{
		Deck:      deck,
		Position:  pos,
		CardIndex: s.deck[pos],
		Remaining: len(s.deck),
	}
}

func (s *session) stopTimers() {
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = nil
}
