package handlers

import (
	"net/http"

	"quiz-ai-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type AIGenerateHandler struct {
	quizService *services.QuizService
	aiService   *services.AIService
}

func NewAIGenerateHandler(quizService *services.QuizService, aiService *services.AIService) *AIGenerateHandler {
	return &AIGenerateHandler{
		quizService: quizService,
		aiService:   aiService,
	}
}

type GenerateRequest struct {
	Grade          int    `json:"grade" binding:"required,min=1,max=12" example:"7"`
	Subject        string `json:"subject" binding:"required" example:"Mathematics"`
	TotalQuestions int    `json:"total_questions" binding:"required,min=1,max=50" example:"5"`
	MaxScore       int    `json:"max_score" binding:"required,min=1" example:"10"`
	Difficulty     string `json:"difficulty" binding:"required,difficulty" example:"medium"`
}

// CheckAI godoc
// @Summary      Check if AI generation is available
// @Tags         ai
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]interface{}
// @Router       /api/v1/quizzes/ai-status [get]
func (h *AIGenerateHandler) CheckAI(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"available": h.aiService != nil && h.aiService.IsAvailable()})
}

// Generate godoc
// @Summary      Generate quiz with AI
// @Description  Generate and store a multiple-choice quiz for a subject and grade
// @Tags         ai
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body GenerateRequest true "Generation parameters"
// @Success      201 {object} QuizView
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /api/v1/quizzes/generate [post]
func (h *AIGenerateHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	quiz, err := h.quizService.GenerateQuiz(c.Request.Context(), currentUserID(c), services.GenerateQuizInput{
		GradeLevel:    req.Grade,
		Subject:       req.Subject,
		QuestionCount: req.TotalQuestions,
		MaxScore:      req.MaxScore,
		Difficulty:    req.Difficulty,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newQuizView(quiz))
}
