package main

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vocab-backend/internal/config"
	"vocab-backend/internal/database"
	"vocab-backend/internal/handlers"
	"vocab-backend/internal/middleware"
	"vocab-backend/internal/repository"
	"vocab-backend/internal/router"
	"vocab-backend/internal/services"
	"vocab-backend/internal/websocket"
	"vocab-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting Vocab Learning Backend...")

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

	// ──── Step 3: Run Database Migrations ────
	if err := database.RunMigrations(pool); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Step 4: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Initialize Repositories ────
	vocabularyRepo := repository.NewVocabularyRepo(pool)
	collectionRepo := repository.NewCollectionRepo(pool)
	progressRepo := repository.NewProgressRepo(pool)
	userProgressRepo := repository.NewUserProgressRepo(pool)
	studySessionRepo := repository.NewStudySessionRepo(pool)

	// ──── Initialize Services ────
	seed := uint64(cfg.QuestionSeed)
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	notifier := services.NewRedisNotifier(redisClients.Events, cfg.StatsCacheTTL)
	userProgressService := services.NewUserProgressService(userProgressRepo, vocabularyRepo, notifier, cfg.StudyLocation)
	learningService := services.NewLearningService(
		vocabularyRepo,
		collectionRepo,
		progressRepo,
		userProgressService,
		notifier,
		rand.New(rand.NewPCG(seed, seed>>1)),
	)
	studySessionService := services.NewStudySessionService(studySessionRepo, userProgressService)
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)

	// ──── Initialize Handlers ────
	learningHandler := handlers.NewLearningHandler(learningService)
	progressHandler := handlers.NewProgressHandler(userProgressService)
	studySessionHandler := handlers.NewStudySessionHandler(studySessionService, learningService)

	// ──── Step 5: Start Session Sweeper ────
	sweeper := worker.NewSessionSweeper(studySessionService, cfg.StudySessionIdle, cfg.SessionSweepInterval)
	sweeper.Start()
	log.Println("✓ Study session sweeper started")

	// ──── Step 6: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.Subscriber, jwtAuth, cfg.FrontendURL)
	log.Println("✓ WebSocket hub started")

	// ──── Step 7: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		learningHandler,
		progressHandler,
		studySessionHandler,
		wsHub,
		router.Options{
			FrontendURL:             cfg.FrontendURL,
			LearningRateLimitPerMin: cfg.LearningRateLimitPerMin,
		},
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
		sweeper.Stop()
		wsHub.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Vocab Learning Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
