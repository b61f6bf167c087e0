package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"vocab-backend/internal/handlers"
	"vocab-backend/internal/middleware"
	"vocab-backend/internal/websocket"
)

type Options struct {
	FrontendURL             string
	LearningRateLimitPerMin int
}

func New(
	jwtAuth *middleware.JWTAuth,
	learningHandler *handlers.LearningHandler,
	progressHandler *handlers.ProgressHandler,
	studySessionHandler *handlers.StudySessionHandler,
	wsHub *websocket.Hub,
	opts Options,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(opts.FrontendURL))

	// Per-user limiter for answer submission and question polling
	learningLimiter := middleware.NewRateLimiter(opts.LearningRateLimitPerMin, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Learning Routes ────
		r.Route("/learning", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Use(learningLimiter.Middleware)
			r.Get("/next/{collectionId}", learningHandler.Next)
			r.Post("/submit", learningHandler.Submit)
			r.Get("/stats/{collectionId}", learningHandler.Stats)
		})

		// ──── User Progress Routes ────
		r.Route("/progress", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", progressHandler.Get)
			r.Post("/learned", progressHandler.IncrementLearned)
			r.Post("/study-time", progressHandler.AddStudyTime)
			r.Post("/quiz-result", progressHandler.RecordQuizResult)
		})

		// ──── Collection Vocabulary Routes ────
		r.Route("/collections/{id}/vocabulary", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", learningHandler.ListVocabulary)
			r.Put("/{vocabularyId}/learned", learningHandler.MarkLearned)
			r.Post("/{vocabularyId}/toggle-learned", learningHandler.ToggleLearned)
		})

		// ──── Study Session Routes ────
		r.Route("/study-sessions", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/start", studySessionHandler.Start)
			r.Post("/{id}/heartbeat", studySessionHandler.Heartbeat)
			r.Post("/{id}/stop", studySessionHandler.Stop)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
