package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"schoolhub-backend/internal/middleware"
	"schoolhub-backend/internal/models"
	"schoolhub-backend/internal/repository"
	"schoolhub-backend/internal/review"
)

type FlashcardHandler struct {
	resourceRepo *repository.ResourceRepo
	ratingRepo   *repository.RatingRepo
	classRepo    *repository.ClassRepo
	userRepo     *repository.UserRepo
	sessions     *review.Store
}

func NewFlashcardHandler(
	resourceRepo *repository.ResourceRepo,
	ratingRepo *repository.RatingRepo,
	classRepo *repository.ClassRepo,
	userRepo *repository.UserRepo,
	sessions *review.Store,
) *FlashcardHandler {
	return &FlashcardHandler{
		resourceRepo: resourceRepo,
		ratingRepo:   ratingRepo,
		classRepo:    classRepo,
		userRepo:     userRepo,
		sessions:     sessions,
	}
}

func (h *FlashcardHandler) GetRatings(w http.ResponseWriter, r *http.Request) {
	res, _, ok := h.loadDeck(w, r)
	if !ok {
		return
	}

	ratings, err := h.ratingRepo.GetForStudent(r.Context(), res.ID, middleware.GetUserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch ratings", r))
		return
	}

	writeJSON(w, http.StatusOK, models.RatingsResponse{Ratings: ratings})
}

func (h *FlashcardHandler) RateCard(w http.ResponseWriter, r *http.Request) {
	res, cards, ok := h.loadDeck(w, r)
	if !ok {
		return
	}

	var req models.RateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if !models.ValidRating(req.Rating) {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "rating must be easy, medium or hard", r))
		return
	}
	if req.CardIndex < 0 || req.CardIndex >= len(cards) {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "card_index is out of range", r))
		return
	}

	nextReviewAt := review.NextReviewAt(req.Rating, time.Now())
	userID := middleware.GetUserID(r.Context())

	if err := h.ratingRepo.Upsert(r.Context(), res.ID, userID, req.CardIndex, req.Rating, nextReviewAt); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to save rating", r))
		return
	}

	writeJSON(w, http.StatusOK, models.CardRating{Rating: req.Rating, NextReviewAt: &nextReviewAt})
}

// ImportRatings migrates a client-kept rating snapshot in one call. Values
// may be the legacy bare rating strings or the current object shape;
// CardRating's unmarshaler accepts both. Legacy entries carry no schedule
// and land as due cards.
func (h *FlashcardHandler) ImportRatings(w http.ResponseWriter, r *http.Request) {
	res, cards, ok := h.loadDeck(w, r)
	if !ok {
		return
	}

	var req struct {
		Ratings map[string]models.CardRating `json:"ratings"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	now := time.Now()
	imported := 0

	for key, rating := range req.Ratings {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(cards) || !models.ValidRating(rating.Rating) {
			continue
		}

		nextReviewAt := now
		if rating.NextReviewAt != nil {
			nextReviewAt = *rating.NextReviewAt
		}

		if err := h.ratingRepo.Upsert(r.Context(), res.ID, userID, idx, rating.Rating, nextReviewAt); err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to import ratings", r))
			return
		}
		imported++
	}

	writeJSON(w, http.StatusOK, map[string]int{"imported": imported})
}

// RatingSummary is the teacher-facing report of how students rate each
// card.
func (h *FlashcardHandler) RatingSummary(w http.ResponseWriter, r *http.Request) {
	res, _, ok := h.loadDeck(w, r)
	if !ok {
		return
	}

	if !canManageResource(r, res, h.userRepo) {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return
	}

	counts, err := h.ratingRepo.CountsByResource(r.Context(), res.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch rating summary", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"counts": counts})
}

// Review sessions

type sessionResponse struct {
	Session review.State      `json:"session"`
	Card    *models.FlashCard `json:"card,omitempty"`
	Recap   *review.Recap     `json:"recap,omitempty"`
}

// StartSession builds a fresh deck from the stored rating snapshot. Any
// prior session for the same deck is discarded. Non-students get a preview
// session over the full card list.
func (h *FlashcardHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	res, cards, ok := h.loadDeck(w, r)
	if !ok {
		return
	}

	userID := middleware.GetUserID(r.Context())
	preview := middleware.GetRole(r.Context()) != models.RoleStudent

	var ratings map[int]models.CardRating
	if !preview {
		var err error
		ratings, err = h.ratingRepo.GetForStudent(r.Context(), res.ID, userID)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch ratings", r))
			return
		}
	}

	now := time.Now()
	state := h.sessions.Start(userID, res.ID, len(cards), ratings, preview, now)

	writeJSON(w, http.StatusOK, h.respond(state, cards, ratings, now))
}

func (h *FlashcardHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	res, cards, ok := h.loadDeck(w, r)
	if !ok {
		return
	}

	userID := middleware.GetUserID(r.Context())
	state, err := h.sessions.Get(userID, res.ID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "No active review session", r))
		return
	}

	var ratings map[int]models.CardRating
	if state.Complete {
		ratings, _ = h.ratingRepo.GetForStudent(r.Context(), res.ID, userID)
	}

	writeJSON(w, http.StatusOK, h.respond(state, cards, ratings, time.Now()))
}

// RateSessionCard rates the session's current card: the rating is persisted
// with its next review time, and the card leaves the live deck. Hard cards
// come back to the deck tail after a short delay.
func (h *FlashcardHandler) RateSessionCard(w http.ResponseWriter, r *http.Request) {
	res, cards, ok := h.loadDeck(w, r)
	if !ok {
		return
	}

	var req struct {
		Rating string `json:"rating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if !models.ValidRating(req.Rating) {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "rating must be easy, medium or hard", r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	cardIndex, state, err := h.sessions.Rate(userID, res.ID, req.Rating)
	if err != nil {
		h.sessionError(w, r, err)
		return
	}

	now := time.Now()
	nextReviewAt := review.NextReviewAt(req.Rating, now)
	if err := h.ratingRepo.Upsert(r.Context(), res.ID, userID, cardIndex, req.Rating, nextReviewAt); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to save rating", r))
		return
	}

	var ratings map[int]models.CardRating
	if state.Complete {
		ratings, _ = h.ratingRepo.GetForStudent(r.Context(), res.ID, userID)
	}

	resp := h.respond(state, cards, ratings, now)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rated_card_index": cardIndex,
		"rating":           models.CardRating{Rating: req.Rating, NextReviewAt: &nextReviewAt},
		"session":          resp.Session,
		"card":             resp.Card,
		"recap":            resp.Recap,
	})
}

func (h *FlashcardHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	res, cards, ok := h.loadDeck(w, r)
	if !ok {
		return
	}

	var req struct {
		Direction string `json:"direction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if req.Direction != "next" && req.Direction != "previous" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "direction must be next or previous", r))
		return
	}

	state, err := h.sessions.Navigate(middleware.GetUserID(r.Context()), res.ID, req.Direction == "next")
	if err != nil {
		h.sessionError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.respond(state, cards, nil, time.Now()))
}

func (h *FlashcardHandler) DiscardSession(w http.ResponseWriter, r *http.Request) {
	res, _, ok := h.loadDeck(w, r)
	if !ok {
		return
	}

	h.sessions.Discard(middleware.GetUserID(r.Context()), res.ID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Session discarded"})
}

// loadDeck resolves the resource, checks access, and decodes its card list.
func (h *FlashcardHandler) loadDeck(w http.ResponseWriter, r *http.Request) (*models.Resource, []models.FlashCard, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid resource ID", r))
		return nil, nil, false
	}

	res, err := h.resourceRepo.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Resource not found", r))
		return nil, nil, false
	}

	if res.Type != models.ResourceFlashCards {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Resource is not a flash-card deck", r))
		return nil, nil, false
	}

	if !canViewResource(r, res, h.userRepo, h.classRepo) {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return nil, nil, false
	}

	var cards []models.FlashCard
	if len(res.CardsJSON) > 0 {
		if err := json.Unmarshal(res.CardsJSON, &cards); err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Stored card data is corrupt", r))
			return nil, nil, false
		}
	}

	return res, cards, true
}

func (h *FlashcardHandler) respond(state review.State, cards []models.FlashCard, ratings map[int]models.CardRating, now time.Time) sessionResponse {
	resp := sessionResponse{Session: state}

	if state.CardIndex >= 0 && state.CardIndex < len(cards) {
		card := cards[state.CardIndex]
		resp.Card = &card
	}

	if state.Complete && ratings != nil {
		recap := review.BuildRecap(ratings, now)
		resp.Recap = &recap
	}

	return resp
}

func (h *FlashcardHandler) sessionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, review.ErrNoSession):
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "No active review session", r))
	case errors.Is(err, review.ErrSessionComplete):
		writeJSON(w, http.StatusConflict, errorResp("CONFLICT", "Review session is already complete", r))
	case errors.Is(err, review.ErrPreviewSession):
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Preview sessions do not accept ratings", r))
	default:
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
	}
}
