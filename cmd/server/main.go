package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"neetmentor-backend/internal/analytics"
	"neetmentor-backend/internal/config"
	"neetmentor-backend/internal/database"
	"neetmentor-backend/internal/handlers"
	"neetmentor-backend/internal/logger"
	"neetmentor-backend/internal/middleware"
	"neetmentor-backend/internal/repository"
	"neetmentor-backend/internal/router"
	"neetmentor-backend/internal/services"
	"neetmentor-backend/internal/websocket"
	"neetmentor-backend/internal/worker"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting NEETMentor backend")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("PostgreSQL connection failed")
	}
	defer pool.Close()

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Redis connection failed")
	}
	defer redisClients.Close()

	// ──── Step 4: Run Database Migrations ────
	applied, err := database.RunMigrations(context.Background(), pool, cfg.MigrationsDir)
	if err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}
	log.Info().Int("applied", applied).Msg("database migrations up to date")

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepo(pool)
	registrations := repository.NewRegistrationStore(redisClients.KV)
	catalogRepo := repository.NewCatalogRepo(pool)
	quizAttemptRepo := repository.NewQuizAttemptRepo(pool)
	studyLogRepo := repository.NewStudyLogRepo(pool)
	noteRepo := repository.NewNoteRepo(pool)
	taskRepo := repository.NewTaskRepo(pool)
	mockTestRepo := repository.NewMockTestRepo(pool)
	storageRepo := repository.NewStorageRepo(pool)
	analyticsStore := repository.NewAnalyticsStore(pool, storageRepo)
	emailQueue := repository.NewEmailQueue(redisClients.Queue)

	// ──── Step 5: Initialize Gemini Client (optional) ────
	var geminiService *services.GeminiService
	if cfg.GeminiAPIKey != "" {
		geminiService, err = services.NewGeminiService(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiConcurrentReqs)
		if err != nil {
			log.Fatal().Err(err).Msg("Gemini client initialization failed")
		}
		defer geminiService.Close()
		log.Info().Str("model", cfg.GeminiModel).Msg("Gemini client initialized")
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set; doubt solver disabled")
	}

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	mailer := services.NewMailer(services.MailerConfig{
		ResendAPIKey: cfg.ResendAPIKey,
		SMTPHost:     cfg.SMTPHost,
		SMTPPort:     cfg.SMTPPort,
		SMTPUser:     cfg.SMTPUser,
		SMTPPass:     cfg.SMTPPass,
		From:         cfg.EmailFrom,
	})
	emailService := services.NewEmailService(emailQueue, mailer, cfg.FrontendURL)
	authService := services.NewAuthService(userRepo, registrations, redisClients.KV, jwtAuth, emailService, cfg.OTPTTL)
	events := services.NewEventPublisher(redisClients.KV)
	youtubeService := services.NewYouTubeService()
	fileExtractService := services.NewFileExtractService()

	aggregator := analytics.NewAggregator(analyticsStore, noteRepo, cfg.Timezone)
	analyticsService := analytics.NewService(aggregator, cfg.Scoring)

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userRepo)
	catalogHandler := handlers.NewCatalogHandler(catalogRepo)
	quizAttemptHandler := handlers.NewQuizAttemptHandler(quizAttemptRepo, events)
	studyLogHandler := handlers.NewStudyLogHandler(studyLogRepo, events, cfg.Timezone)
	noteHandler := handlers.NewNoteHandler(noteRepo, fileExtractService, events)
	taskHandler := handlers.NewTaskHandler(taskRepo)
	mockTestHandler := handlers.NewMockTestHandler(mockTestRepo)
	storageHandler := handlers.NewStorageHandler(storageRepo, events)
	dashboardHandler := handlers.NewDashboardHandler(analyticsService)
	chatHandler := handlers.NewChatHandler(catalogRepo, geminiService)
	contentHandler := handlers.NewContentHandler(youtubeService)

	// ──── Step 6: Start Email Worker Pool ────
	workerPool := worker.NewPool(emailQueue, emailService, cfg.EmailWorkers)
	workerPool.Start()
	log.Info().Int("workers", cfg.EmailWorkers).Msg("email worker pool started")

	var digest *services.DigestScheduler
	if cfg.DigestEnabled {
		digest = services.NewDigestScheduler(userRepo, analyticsService, emailService, redisClients.KV, cfg.DigestCron, cfg.Timezone)
		if err := digest.Start(); err != nil {
			log.Fatal().Err(err).Str("cron", cfg.DigestCron).Msg("failed to start digest scheduler")
		}
	}

	// ──── Step 7: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, jwtAuth, services.UserChannel, cfg.FrontendURL)

	// ──── Step 8: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		authHandler,
		userHandler,
		catalogHandler,
		quizAttemptHandler,
		studyLogHandler,
		noteHandler,
		taskHandler,
		mockTestHandler,
		storageHandler,
		dashboardHandler,
		chatHandler,
		contentHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("shutting down")
		if digest != nil {
			digest.Stop()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("HTTP server shutdown failed")
		}
		workerPool.Stop()
	}()

	log.Info().Str("port", cfg.Port).Msg("NEETMentor backend ready")

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server error")
	}
	<-stopped
}
