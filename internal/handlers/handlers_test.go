package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"schoolhub-backend/internal/models"
	"schoolhub-backend/internal/review"
	"schoolhub-backend/internal/services"
)

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()

	writeJSON(rr, http.StatusCreated, map[string]string{"message": "Created"})

	if rr.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got %q", ct)
	}

	var body map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["message"] != "Created" {
		t.Errorf("Expected message 'Created', got %q", body["message"])
	}
}

func TestErrorResp_CarriesRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/resources", nil)
	req.Header.Set("X-Request-ID", "req-123")

	resp := errorResp("NOT_FOUND", "Resource not found", req)

	if resp.Error.Code != "NOT_FOUND" {
		t.Errorf("Expected code NOT_FOUND, got %q", resp.Error.Code)
	}
	if resp.Error.Message != "Resource not found" {
		t.Errorf("Expected message 'Resource not found', got %q", resp.Error.Message)
	}
	if resp.Error.RequestID != "req-123" {
		t.Errorf("Expected request ID 'req-123', got %q", resp.Error.RequestID)
	}
}

func TestErrorRespWithFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", nil)

	fields := map[string]string{"email": "A valid email is required"}
	resp := errorRespWithFields("VALIDATION_ERROR", "Validation failed", fields, req)

	if resp.Error.Fields["email"] != "A valid email is required" {
		t.Errorf("Expected field error to round-trip, got %v", resp.Error.Fields)
	}
}

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", &services.ValidationError{Fields: map[string]string{"email": "bad"}}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"conflict", &services.ConflictError{Message: "Email is already registered"}, http.StatusConflict, "CONFLICT"},
		{"not found", &services.NotFoundError{Message: "User not found"}, http.StatusNotFound, "NOT_FOUND"},
		{"unauthorized", &services.UnauthorizedError{Message: "Invalid credentials"}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", &services.ForbiddenError{Message: "Access denied"}, http.StatusForbidden, "FORBIDDEN"},
		{"rate limited", &services.RateLimitError{Message: "Too many requests"}, http.StatusTooManyRequests, "RATE_LIMITED"},
		{"unknown", http.ErrHandlerTimeout, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)

			handleServiceError(rr, req, tc.err)

			if rr.Code != tc.wantStatus {
				t.Errorf("Expected status %d, got %d", tc.wantStatus, rr.Code)
			}

			var resp models.ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp.Error.Code != tc.wantCode {
				t.Errorf("Expected code %q, got %q", tc.wantCode, resp.Error.Code)
			}
		})
	}
}

func TestSessionErrorMapping(t *testing.T) {
	h := &FlashcardHandler{}

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"no session", review.ErrNoSession, http.StatusNotFound},
		{"complete", review.ErrSessionComplete, http.StatusConflict},
		{"preview", review.ErrPreviewSession, http.StatusForbidden},
		{"unknown", http.ErrHandlerTimeout, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", nil)

			h.sessionError(rr, req, tc.err)

			if rr.Code != tc.wantStatus {
				t.Errorf("Expected status %d, got %d", tc.wantStatus, rr.Code)
			}
		})
	}
}

func TestSessionResponse_ResolvesCurrentCard(t *testing.T) {
	h := &FlashcardHandler{}
	cards := []models.FlashCard{
		{Front: "2+2?", Back: "4"},
		{Front: "3+3?", Back: "6"},
	}

	state := review.State{Deck: []int{1}, Position: 0, CardIndex: 1, Remaining: 1}
	resp := h.respond(state, cards, nil, time.Now())

	if resp.Card == nil {
		t.Fatal("Expected current card to be resolved")
	}
	if resp.Card.Front != "3+3?" {
		t.Errorf("Expected card front '3+3?', got %q", resp.Card.Front)
	}
	if resp.Recap != nil {
		t.Error("Expected no recap on an active session")
	}
}

func TestSessionResponse_CompleteWithRecap(t *testing.T) {
	h := &FlashcardHandler{}
	now := time.Now()
	next := now.Add(24 * time.Hour)

	ratings := map[int]models.CardRating{
		0: {Rating: models.RatingMedium, NextReviewAt: &next},
	}

	state := review.State{Deck: []int{}, CardIndex: -1, Complete: true}
	resp := h.respond(state, []models.FlashCard{{Front: "a", Back: "b"}}, ratings, now)

	if resp.Card != nil {
		t.Error("Expected no current card on a complete session")
	}
	if resp.Recap == nil {
		t.Fatal("Expected a recap on a complete session")
	}
	if len(resp.Recap.Upcoming) != 1 {
		t.Errorf("Expected 1 upcoming review, got %d", len(resp.Recap.Upcoming))
	}
}
