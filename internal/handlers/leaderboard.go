package handlers

import (
	"net/http"
	"strconv"

	"quiz-ai-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type LeaderboardHandler struct {
	leaderboardService *services.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService *services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

// GetLeaderboard godoc
// @Summary      Global leaderboard
// @Description  Rank users by the sum of their best score per quiz
// @Tags         leaderboard
// @Produce      json
// @Security     BearerAuth
// @Param        grade   query int    false "Grade level"
// @Param        subject query string false "Subject name"
// @Param        limit   query int    false "Maximum entries (default 10, max 100)"
// @Success      200 {array} services.LeaderboardEntry
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/leaderboard [get]
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	filter := services.LeaderboardFilter{Subject: c.Query("subject")}
	var err error
	if filter.GradeLevel, err = optionalInt(c, "grade"); err != nil {
		badRequest(c, err.Error())
		return
	}
	if filter.Limit, err = limitParam(c); err != nil {
		badRequest(c, err.Error())
		return
	}

	h.respond(c, filter)
}

// GetQuizLeaderboard godoc
// @Summary      Quiz leaderboard
// @Description  Rank users by their best score on one quiz
// @Tags         leaderboard
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  int true  "Quiz ID"
// @Param        limit query int false "Maximum entries (default 10, max 100)"
// @Success      200 {array} services.LeaderboardEntry
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/quizzes/{id}/leaderboard [get]
func (h *LeaderboardHandler) GetQuizLeaderboard(c *gin.Context) {
	quizID, ok := parseIDParam(c, "id", "quiz id")
	if !ok {
		return
	}
	limit, err := limitParam(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	h.respond(c, services.LeaderboardFilter{QuizID: &quizID, Limit: limit})
}

func (h *LeaderboardHandler) respond(c *gin.Context, filter services.LeaderboardFilter) {
	entries, err := h.leaderboardService.Leaderboard(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func limitParam(c *gin.Context) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, queryError("invalid limit")
	}
	return limit, nil
}
