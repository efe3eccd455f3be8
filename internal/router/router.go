package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"schoolhub-backend/internal/handlers"
	"schoolhub-backend/internal/middleware"
	"schoolhub-backend/internal/models"
	"schoolhub-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	schoolHandler *handlers.SchoolHandler,
	classHandler *handlers.ClassHandler,
	resourceHandler *handlers.ResourceHandler,
	flashcardHandler *handlers.FlashcardHandler,
	quizHandler *handlers.QuizHandler,
	aiHandler *handlers.AIHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	staffOnly := middleware.RequireRole(models.RoleSuperAdmin, models.RoleSchoolAdmin, models.RoleTeacher)
	adminOnly := middleware.RequireRole(models.RoleSuperAdmin, models.RoleSchoolAdmin)
	studentOnly := middleware.RequireRole(models.RoleStudent)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {

		// ──── Auth Routes ────
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(authLimiter.Middleware)
				r.Post("/register", authHandler.Register)
				r.Post("/login", authHandler.Login)
				r.Post("/refresh", authHandler.Refresh)
				r.Post("/forgot-password", authHandler.ForgotPassword)
				r.Post("/reset-password", authHandler.ResetPassword)
			})

			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/logout", authHandler.Logout)
				r.Get("/me", userHandler.Me)
			})
		})

		// ──── User Administration ────
		r.Route("/users", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Use(adminOnly)
			r.Post("/", userHandler.Create)
			r.Get("/", userHandler.List)
			r.Put("/{id}", userHandler.Update)
			r.Delete("/{id}", userHandler.Delete)
		})

		// ──── School Routes ────
		r.Route("/schools", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleSuperAdmin))
				r.Post("/", schoolHandler.Create)
				r.Get("/", schoolHandler.List)
				r.Put("/{id}", schoolHandler.Update)
				r.Delete("/{id}", schoolHandler.Delete)
			})

			r.Get("/{id}", schoolHandler.Get)

			r.Route("/{id}/subjects", func(r chi.Router) {
				r.Get("/", schoolHandler.ListSubjects)

				r.Group(func(r chi.Router) {
					r.Use(adminOnly)
					r.Post("/", schoolHandler.CreateSubject)
					r.Delete("/{subjectID}", schoolHandler.DeleteSubject)
				})
			})
		})

		// ──── Class Routes ────
		r.Route("/classes", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", classHandler.List)
			r.Get("/{id}", classHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(staffOnly)
				r.Post("/", classHandler.Create)
				r.Put("/{id}", classHandler.Update)
				r.Delete("/{id}", classHandler.Delete)
				r.Post("/{id}/students", classHandler.Enroll)
				r.Delete("/{id}/students/{studentID}", classHandler.Unenroll)
			})
		})

		// ──── Resource Routes ────
		r.Route("/resources", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", resourceHandler.List)
			r.Get("/{id}", resourceHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(staffOnly)
				r.Post("/", resourceHandler.Create)
				r.Post("/upload", resourceHandler.Upload)
				r.Put("/{id}", resourceHandler.Update)
				r.Delete("/{id}", resourceHandler.Delete)
			})

			// Flash-card ratings
			r.Get("/{id}/flash-card-ratings", flashcardHandler.GetRatings)
			r.With(staffOnly).Get("/{id}/flash-card-ratings/summary", flashcardHandler.RatingSummary)
			r.Group(func(r chi.Router) {
				r.Use(studentOnly)
				r.Post("/{id}/flash-card-ratings", flashcardHandler.RateCard)
				r.Post("/{id}/flash-card-ratings/import", flashcardHandler.ImportRatings)
			})

			// Review sessions
			r.Route("/{id}/review-session", func(r chi.Router) {
				r.Post("/", flashcardHandler.StartSession)
				r.Get("/", flashcardHandler.GetSession)
				r.Delete("/", flashcardHandler.DiscardSession)
				r.Post("/rate", flashcardHandler.RateSessionCard)
				r.Post("/navigate", flashcardHandler.Navigate)
			})

			// Quiz attempts
			r.Get("/{id}/quiz-attempt", quizHandler.GetAttempt)
			r.With(studentOnly).Post("/{id}/quiz-attempt", quizHandler.SubmitAttempt)
			r.With(staffOnly).Get("/{id}/quiz-attempts", quizHandler.ListAttempts)
		})

		// ──── AI Generation ────
		r.Route("/ai", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Use(staffOnly)
			r.Post("/flash-cards", aiHandler.GenerateFlashCards)
			r.Post("/quizzes", aiHandler.GenerateQuiz)
			r.Get("/jobs/{id}", aiHandler.GetJob)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
