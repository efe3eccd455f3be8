package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestJWTMiddleware_ValidToken(t *testing.T) {
	j := NewJWTAuth("test-secret")
	userID := uuid.New()

	token, err := j.GenerateAccessToken(userID, "teacher@school.test", "teacher")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	var gotID uuid.UUID
	var gotRole string
	handler := j.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = GetUserID(r.Context())
		gotRole = GetRole(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if gotID != userID {
		t.Errorf("Expected user ID %s, got %s", userID, gotID)
	}
	if gotRole != "teacher" {
		t.Errorf("Expected role 'teacher', got %q", gotRole)
	}
}

func TestJWTMiddleware_Rejections(t *testing.T) {
	j := NewJWTAuth("test-secret")

	other := NewJWTAuth("other-secret")
	forged, _ := other.GenerateAccessToken(uuid.New(), "x@x.test", "student")

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc123"},
		{"garbage token", "Bearer not-a-jwt"},
		{"wrong secret", "Bearer " + forged},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := j.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("Handler should not be reached")
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("Expected status 401, got %d", rr.Code)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	j := NewJWTAuth("test-secret")

	tests := []struct {
		name       string
		role       string
		allowed    []string
		wantStatus int
	}{
		{"role allowed", "teacher", []string{"teacher", "school_admin"}, http.StatusOK},
		{"role denied", "student", []string{"teacher", "school_admin"}, http.StatusForbidden},
		{"empty role denied", "", []string{"teacher"}, http.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			token, _ := j.GenerateAccessToken(uuid.New(), "u@school.test", tc.role)

			handler := j.Middleware(RequireRole(tc.allowed...)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})))

			req := httptest.NewRequest(http.MethodPost, "/api/resources", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if rr.Code != tc.wantStatus {
				t.Errorf("Expected status %d, got %d", tc.wantStatus, rr.Code)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("X-Request-ID")
	}))

	t.Run("generates when absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		if seen == "" {
			t.Error("Expected a generated request ID")
		}
		if rr.Header().Get("X-Request-ID") != seen {
			t.Error("Expected response header to echo the request ID")
		}
	})

	t.Run("respects inbound ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("X-Request-ID", "upstream-42")
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		if seen != "upstream-42" {
			t.Errorf("Expected 'upstream-42', got %q", seen)
		}
	})
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("Request %d: expected status 200, got %d", i+1, rr.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", rr.Code)
	}

	// A different client is unaffected.
	req = httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200 for a different client, got %d", rr.Code)
	}
}
