package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"quiz-ai-backend/internal/services"
	"quiz-ai-backend/internal/ws"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

type SubmissionHandler struct {
	submissionService  *services.SubmissionService
	historyService     *services.HistoryService
	leaderboardService *services.LeaderboardService
	hub                *ws.Hub
}

func NewSubmissionHandler(
	submissionService *services.SubmissionService,
	historyService *services.HistoryService,
	leaderboardService *services.LeaderboardService,
	hub *ws.Hub,
) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService:  submissionService,
		historyService:     historyService,
		leaderboardService: leaderboardService,
		hub:                hub,
	}
}

type SubmitRequest struct {
	Answers []services.SubmittedAnswer `json:"answers" binding:"required,min=1,dive"`
}

// SubmitQuiz godoc
// @Summary      Submit answers
// @Description  Grade the answers, request improvement suggestions and record the attempt
// @Tags         submissions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Quiz ID"
// @Param        request body SubmitRequest true "Answers"
// @Success      201 {object} services.SubmitResult
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/quizzes/{id}/submit [post]
func (h *SubmissionHandler) SubmitQuiz(c *gin.Context) {
	quizID, ok := parseIDParam(c, "id", "quiz id")
	if !ok {
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.submissionService.Submit(c.Request.Context(), currentUserID(c), quizID, req.Answers)
	if err != nil {
		respondError(c, err)
		return
	}

	h.pushLeaderboard(quizID)
	c.JSON(http.StatusCreated, result)
}

// pushLeaderboard recomputes the quiz leaderboard and sends it to live
// watchers. It runs after the response is decided and never fails the request.
func (h *SubmissionHandler) pushLeaderboard(quizID uint) {
	if h.hub == nil || h.leaderboardService == nil || h.hub.Watchers(quizID) == 0 {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		entries, err := h.leaderboardService.Refresh(ctx, services.LeaderboardFilter{QuizID: &quizID})
		if err != nil {
			log.Printf("ws: leaderboard refresh for quiz %d failed: %v", quizID, err)
			return
		}
		h.hub.Broadcast(quizID, ws.Message{Type: ws.MessageLeaderboard, Data: entries})
	}()
}

// GetHistory godoc
// @Summary      Submission history
// @Description  List the caller's completed submissions. Filters combine with AND; dates use YYYY-MM-DD and from/to are inclusive.
// @Tags         submissions
// @Produce      json
// @Security     BearerAuth
// @Param        grade         query int    false "Grade level"
// @Param        subject       query string false "Subject name"
// @Param        marks         query int    false "Exact score"
// @Param        completedDate query string false "Completion date"
// @Param        from          query string false "Completed on or after"
// @Param        to            query string false "Completed on or before"
// @Param        sort          query string false "recent, oldest or score"
// @Success      200 {array} services.HistoryEntry
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/submissions/history [get]
func (h *SubmissionHandler) GetHistory(c *gin.Context) {
	filter, err := parseHistoryFilter(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	entries, err := h.historyService.History(c.Request.Context(), currentUserID(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

type queryError string

func (e queryError) Error() string { return string(e) }

func parseHistoryFilter(c *gin.Context) (services.HistoryFilter, error) {
	f := services.HistoryFilter{
		Subject: c.Query("subject"),
		Sort:    c.Query("sort"),
	}

	var err error
	if f.GradeLevel, err = optionalInt(c, "grade"); err != nil {
		return f, err
	}
	if f.Marks, err = optionalInt(c, "marks"); err != nil {
		return f, err
	}
	if f.CompletedDate, err = optionalDate(c, "completedDate"); err != nil {
		return f, err
	}
	if f.From, err = optionalDate(c, "from"); err != nil {
		return f, err
	}
	if f.To, err = optionalDate(c, "to"); err != nil {
		return f, err
	}
	return f, nil
}

func optionalInt(c *gin.Context, key string) (*int, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, queryError("invalid " + key)
	}
	return &v, nil
}

func optionalDate(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, queryError("invalid " + key + ", expected YYYY-MM-DD")
	}
	return &t, nil
}

// GetSubmission godoc
// @Summary      Get a submission
// @Description  Get one of the caller's submissions with its recorded answers
// @Tags         submissions
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Submission ID"
// @Success      200 {object} models.Submission
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/submissions/{id} [get]
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	submissionID, ok := parseIDParam(c, "id", "submission id")
	if !ok {
		return
	}

	sub, err := h.submissionService.GetSubmission(c.Request.Context(), currentUserID(c), submissionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// AbandonSubmission godoc
// @Summary      Abandon an attempt
// @Tags         submissions
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Submission ID"
// @Success      200 {object} MessageResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /api/v1/submissions/{id}/abandon [post]
func (h *SubmissionHandler) AbandonSubmission(c *gin.Context) {
	submissionID, ok := parseIDParam(c, "id", "submission id")
	if !ok {
		return
	}

	if err := h.submissionService.Abandon(c.Request.Context(), currentUserID(c), submissionID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "attempt abandoned"})
}
