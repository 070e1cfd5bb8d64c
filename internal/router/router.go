package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"neetmentor-backend/internal/handlers"
	"neetmentor-backend/internal/middleware"
	"neetmentor-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	catalogHandler *handlers.CatalogHandler,
	quizAttemptHandler *handlers.QuizAttemptHandler,
	studyLogHandler *handlers.StudyLogHandler,
	noteHandler *handlers.NoteHandler,
	taskHandler *handlers.TaskHandler,
	mockTestHandler *handlers.MockTestHandler,
	storageHandler *handlers.StorageHandler,
	dashboardHandler *handlers.DashboardHandler,
	chatHandler *handlers.ChatHandler,
	contentHandler *handlers.ContentHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(frontendURL))

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// The websocket authenticates with ?token= since browsers cannot set headers on upgrade.
	r.Get("/ws", wsHub.HandleWebSocket)

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", authHandler.Register)
			r.Post("/verify-otp", authHandler.VerifyOTP)
			r.Post("/resend-otp", authHandler.ResendOTP)
			r.Post("/login", authHandler.Login)
			r.Post("/google", authHandler.GoogleLogin)
			r.Post("/refresh", authHandler.Refresh)

			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/logout", authHandler.Logout)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(jwtAuth.Middleware)

			// ──── Profile ────
			r.Get("/me", userHandler.GetMe)
			r.Get("/user-profile", userHandler.GetProfile)
			r.Patch("/user-profile", userHandler.UpdateProfile)
			r.Put("/user/password", authHandler.ChangePassword)

			// ──── Catalog ────
			r.Get("/subjects", catalogHandler.ListSubjects)
			r.Get("/topics", catalogHandler.ListTopics)
			r.Get("/topics/{subjectID}", catalogHandler.ListTopics)
			r.Get("/questions/{topicID}", catalogHandler.ListQuestions)
			r.Post("/questions/{id}/doubt", chatHandler.AskDoubt)
			r.Post("/submit-answer", catalogHandler.SubmitAnswer)
			r.Get("/progress", catalogHandler.ListProgress)

			// ──── Student records ────
			r.Route("/quiz-attempts", func(r chi.Router) {
				r.Post("/", quizAttemptHandler.Create)
				r.Get("/", quizAttemptHandler.List)
				r.Get("/{id}", quizAttemptHandler.Get)
				r.Delete("/{id}", quizAttemptHandler.Delete)
			})

			r.Route("/study-logs", func(r chi.Router) {
				r.Post("/", studyLogHandler.Create)
				r.Get("/", studyLogHandler.List)
				r.Get("/{id}", studyLogHandler.Get)
				r.Put("/{id}", studyLogHandler.Update)
				r.Patch("/{id}", studyLogHandler.Update)
				r.Delete("/{id}", studyLogHandler.Delete)
			})

			r.Route("/notes", func(r chi.Router) {
				r.Post("/", noteHandler.Create)
				r.Post("/import", noteHandler.Import)
				r.Get("/", noteHandler.List)
				r.Get("/{id}", noteHandler.Get)
				r.Put("/{id}", noteHandler.Update)
				r.Patch("/{id}", noteHandler.Update)
				r.Delete("/{id}", noteHandler.Delete)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Post("/", taskHandler.Create)
				r.Get("/", taskHandler.List)
				r.Get("/{id}", taskHandler.Get)
				r.Put("/{id}", taskHandler.Update)
				r.Patch("/{id}", taskHandler.Update)
				r.Delete("/{id}", taskHandler.Delete)
			})
			r.Get("/task-history", taskHandler.List)

			r.Route("/mock-tests", func(r chi.Router) {
				r.Post("/", mockTestHandler.Create)
				r.Get("/", mockTestHandler.List)
				r.Get("/{id}", mockTestHandler.Get)
				r.Put("/{id}", mockTestHandler.Update)
				r.Patch("/{id}", mockTestHandler.Update)
				r.Delete("/{id}", mockTestHandler.Delete)
			})

			// ──── User storage & analytics ────
			r.Get("/user-storage", storageHandler.Get)
			r.Post("/user-storage", storageHandler.Replace)
			r.Patch("/user-storage", storageHandler.Merge)
			r.Get("/analytics-data", dashboardHandler.Analytics)

			// ──── Resources ────
			r.Post("/resources/youtube", contentHandler.ValidateYouTube)
		})
	})

	return r
}
