package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quiz-ai-backend/internal/cache"
	"quiz-ai-backend/internal/config"
	"quiz-ai-backend/internal/database"
	"quiz-ai-backend/internal/events"
	"quiz-ai-backend/internal/handlers"
	"quiz-ai-backend/internal/scheduler"
	"quiz-ai-backend/internal/services"
	"quiz-ai-backend/internal/ws"

	"github.com/gin-gonic/gin"
)

// @title           Quiz AI API
// @version         1.0
// @description     AI-generated school quizzes with scoring, feedback, hints and leaderboards
// @host            localhost:8080
// @BasePath        /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter "Bearer {token}"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run returns only after every deferred resource has been released.
func run() error {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	db := database.Connect(cfg)
	defer database.Close(db)
	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	if err := database.SeedSubjects(db); err != nil {
		return fmt.Errorf("seed subjects: %w", err)
	}

	var store cache.Cache = cache.Nop{}
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisCache, err := cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		cancel()
		if err != nil {
			log.Printf("redis unavailable, caching disabled: %v", err)
		} else {
			defer redisCache.Close()
			store = redisCache
		}
	} else {
		log.Println("REDIS_ADDR not set, caching disabled")
	}

	publisher, err := events.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
	if err != nil {
		log.Printf("rabbitmq unavailable, event publishing disabled: %v", err)
		publisher, _ = events.NewPublisher("", cfg.RabbitMQExchange)
	}
	defer publisher.Close()

	aiService := services.NewAIService(cfg.AIAPIKey, cfg.AIAPIURL, cfg.AIModel, cfg.AITimeout)
	if !aiService.IsAvailable() {
		log.Println("AI_API_KEY not set, quiz generation and hints are disabled")
	}

	hub := ws.NewHub()
	defer hub.Close()

	authService := services.NewAuthService(db, cfg.JWTSecret, cfg.JWTTTL)
	userService := services.NewUserService(db, store, cfg.ProfileCacheTTL)
	subjectService := services.NewSubjectService(db)
	quizService := services.NewQuizService(db, subjectService, aiService)
	feedbackService := services.NewFeedbackService(aiService)
	submissionService := services.NewSubmissionService(db, quizService, feedbackService, publisher)
	historyService := services.NewHistoryService(db)
	hintService := services.NewHintService(quizService, aiService)
	leaderboardService := services.NewLeaderboardService(db, store, cfg.LeaderboardCacheTTL)

	jobs, err := scheduler.New(cfg.AttemptExpirySchedule, submissionService, cfg.AttemptExpiry)
	if err != nil {
		return fmt.Errorf("invalid ATTEMPT_EXPIRY_SCHEDULE %q: %w", cfg.AttemptExpirySchedule, err)
	}
	jobs.Start()

	if err := handlers.RegisterValidators(); err != nil {
		return fmt.Errorf("register validators: %w", err)
	}

	r := handlers.NewRouter(handlers.Services{
		DB:          db,
		Auth:        authService,
		Users:       userService,
		Subjects:    subjectService,
		Quizzes:     quizService,
		AI:          aiService,
		Submissions: submissionService,
		History:     historyService,
		Hints:       hintService,
		Leaderboard: leaderboardService,
		Hub:         hub,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("server starting on :%s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	var failed error
	select {
	case <-quit:
		log.Println("shutting down server...")
	case err := <-serveErr:
		failed = fmt.Errorf("serve: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	jobs.Stop(ctx)
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}
	log.Println("server exited")
	return failed
}
