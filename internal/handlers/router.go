package handlers

import (
	"fmt"
	"net/http"

	"quiz-ai-backend/internal/middleware"
	"quiz-ai-backend/internal/services"
	"quiz-ai-backend/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

type Services struct {
	DB          *gorm.DB
	Auth        *services.AuthService
	Users       *services.UserService
	Subjects    *services.SubjectService
	Quizzes     *services.QuizService
	AI          *services.AIService
	Submissions *services.SubmissionService
	History     *services.HistoryService
	Hints       *services.HintService
	Leaderboard *services.LeaderboardService
	Hub         *ws.Hub
}

// NewRouter builds the gin engine with every route of the API.
func NewRouter(s Services) *gin.Engine {
	authHandler := NewAuthHandler(s.Auth)
	userHandler := NewUserHandler(s.Users)
	subjectHandler := NewSubjectHandler(s.Subjects)
	quizHandler := NewQuizHandler(s.Quizzes, s.Submissions)
	aiHandler := NewAIGenerateHandler(s.Quizzes, s.AI)
	submissionHandler := NewSubmissionHandler(s.Submissions, s.History, s.Leaderboard, s.Hub)
	hintHandler := NewHintHandler(s.Hints)
	leaderboardHandler := NewLeaderboardHandler(s.Leaderboard)
	wsHandler := NewWSHandler(s.Hub, s.Leaderboard)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(gin.LoggerWithFormatter(requestLogFormat))
	r.Use(gin.Recovery())
	r.Use(middleware.Metrics())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	}))

	r.GET("/health", healthHandler(s.DB))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ws/quizzes/:id/leaderboard", middleware.QueryTokenAuth(s.Auth), wsHandler.WatchLeaderboard)

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		users := api.Group("/users")
		users.Use(middleware.JWTAuth(s.Auth))
		{
			users.GET("/me", userHandler.GetProfile)
			users.PUT("/me", userHandler.UpdateProfile)
		}

		subjects := api.Group("/subjects")
		subjects.Use(middleware.JWTAuth(s.Auth))
		{
			subjects.GET("", subjectHandler.ListSubjects)
			subjects.POST("", subjectHandler.CreateSubject)
			subjects.DELETE("/:id", subjectHandler.DeleteSubject)
		}

		quizzes := api.Group("/quizzes")
		quizzes.Use(middleware.JWTAuth(s.Auth))
		{
			quizzes.GET("/ai-status", aiHandler.CheckAI)
			quizzes.POST("/generate", aiHandler.Generate)
			quizzes.GET("", quizHandler.ListQuizzes)
			quizzes.GET("/:id", quizHandler.GetQuiz)
			quizzes.DELETE("/:id", quizHandler.DeactivateQuiz)
			quizzes.GET("/:id/export", quizHandler.ExportQuiz)
			quizzes.POST("/:id/start", quizHandler.StartQuiz)
			quizzes.POST("/:id/submit", submissionHandler.SubmitQuiz)
			quizzes.GET("/:id/questions/:questionId/hint", hintHandler.GetHint)
			quizzes.GET("/:id/leaderboard", leaderboardHandler.GetQuizLeaderboard)
		}

		submissions := api.Group("/submissions")
		submissions.Use(middleware.JWTAuth(s.Auth))
		{
			submissions.GET("/history", submissionHandler.GetHistory)
			submissions.GET("/:id", submissionHandler.GetSubmission)
			submissions.POST("/:id/abandon", submissionHandler.AbandonSubmission)
		}

		api.GET("/leaderboard", middleware.JWTAuth(s.Auth), leaderboardHandler.GetLeaderboard)
	}

	return r
}

func requestLogFormat(p gin.LogFormatterParams) string {
	id, _ := p.Keys[middleware.RequestIDKey].(string)
	return fmt.Sprintf("[GIN] %s | %s | %3d | %13v | %15s | %-7s %s %s\n",
		p.TimeStamp.Format("2006/01/02 15:04:05"),
		id,
		p.StatusCode,
		p.Latency,
		p.ClientIP,
		p.Method,
		p.Path,
		p.ErrorMessage,
	)
}

// Health godoc
// @Summary      Health check
// @Tags         ops
// @Produce      json
// @Success      200 {object} map[string]string
// @Failure      503 {object} map[string]string
// @Router       /health [get]
func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
