package handlers

import (
	"net/http"

	"quiz-ai-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type HintHandler struct {
	hintService *services.HintService
}

func NewHintHandler(hintService *services.HintService) *HintHandler {
	return &HintHandler{hintService: hintService}
}

type HintResponse struct {
	QuestionID uint   `json:"question_id" example:"12"`
	Hint       string `json:"hint" example:"Think about what happens to the angles of a triangle."`
}

// GetHint godoc
// @Summary      Get a hint
// @Description  Ask the AI for a hint that does not reveal the answer
// @Tags         quizzes
// @Produce      json
// @Security     BearerAuth
// @Param        id         path int true "Quiz ID"
// @Param        questionId path int true "Question ID"
// @Success      200 {object} HintResponse
// @Failure      404 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /api/v1/quizzes/{id}/questions/{questionId}/hint [get]
func (h *HintHandler) GetHint(c *gin.Context) {
	quizID, ok := parseIDParam(c, "id", "quiz id")
	if !ok {
		return
	}
	questionID, ok := parseIDParam(c, "questionId", "question id")
	if !ok {
		return
	}

	hint, err := h.hintService.Hint(c.Request.Context(), quizID, questionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, HintResponse{QuestionID: questionID, Hint: hint})
}
