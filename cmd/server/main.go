package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"schoolhub-backend/internal/config"
	"schoolhub-backend/internal/database"
	"schoolhub-backend/internal/handlers"
	"schoolhub-backend/internal/middleware"
	"schoolhub-backend/internal/repository"
	"schoolhub-backend/internal/review"
	"schoolhub-backend/internal/router"
	"schoolhub-backend/internal/services"
	"schoolhub-backend/internal/websocket"
	"schoolhub-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting SchoolHub Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepo(pool)
	schoolRepo := repository.NewSchoolRepo(pool)
	classRepo := repository.NewClassRepo(pool)
	resourceRepo := repository.NewResourceRepo(pool)
	ratingRepo := repository.NewRatingRepo(pool)
	attemptRepo := repository.NewAttemptRepo(pool)
	jobRepo := repository.NewJobRepo(pool)

	// ──── Step 5: Initialize Gemini Client ────
	geminiService, err := services.NewGeminiService(
		cfg.GeminiAPIKey,
		cfg.GeminiConcurrentReqs,
		redisClients.Queue,
	)
	if err != nil {
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	}
	defer geminiService.Close()
	log.Println("✓ Gemini Flash client initialized")

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	emailService := services.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.FrontendURL)
	youtubeService := services.NewYouTubeService()
	extractService := services.NewMaterialExtractService()
	authService := services.NewAuthService(userRepo, redisClients.Queue, jwtAuth, emailService)

	// ──── Review Session Store ────
	sessionStore := review.NewStore(time.Duration(cfg.SessionIdleMinutes) * time.Minute)

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userRepo)
	schoolHandler := handlers.NewSchoolHandler(schoolRepo, userRepo)
	classHandler := handlers.NewClassHandler(classRepo, userRepo)
	resourceHandler := handlers.NewResourceHandler(resourceRepo, classRepo, userRepo, extractService, youtubeService, cfg.StoragePath)
	flashcardHandler := handlers.NewFlashcardHandler(resourceRepo, ratingRepo, classRepo, userRepo, sessionStore)
	quizHandler := handlers.NewQuizHandler(resourceRepo, attemptRepo, classRepo, userRepo)
	aiHandler := handlers.NewAIHandler(resourceRepo, classRepo, userRepo, jobRepo, geminiService, redisClients.Queue)

	// ──── Step 6: Start Job Worker Pool ────
	workerPool := worker.NewPool(
		redisClients.Queue,
		geminiService,
		jobRepo,
		resourceRepo,
		cfg.WorkerCount,
	)
	workerPool.Start()

	// ──── Step 7: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, cfg.JWTSecret, cfg.FrontendURL)
	log.Println("✓ WebSocket hub started")

	// ──── Step 8: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		authHandler,
		userHandler,
		schoolHandler,
		classHandler,
		resourceHandler,
		flashcardHandler,
		quizHandler,
		aiHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		workerPool.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ SchoolHub Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
