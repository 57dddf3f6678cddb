package handlers

import (
	"net/http"
	"strconv"
	"time"

	"quiz-ai-backend/internal/models"
	"quiz-ai-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type QuizHandler struct {
	quizService       *services.QuizService
	submissionService *services.SubmissionService
}

func NewQuizHandler(quizService *services.QuizService, submissionService *services.SubmissionService) *QuizHandler {
	return &QuizHandler{quizService: quizService, submissionService: submissionService}
}

// QuizView is a quiz as shown to players: options carry no correctness flag.
type QuizView struct {
	ID             uint           `json:"id"`
	Title          string         `json:"title"`
	Subject        string         `json:"subject"`
	GradeLevel     int            `json:"grade_level"`
	Difficulty     string         `json:"difficulty"`
	TotalQuestions int            `json:"total_questions"`
	TotalMarks     int            `json:"total_marks"`
	IsActive       bool           `json:"is_active"`
	CreatedBy      uint           `json:"created_by"`
	CreatedAt      time.Time      `json:"created_at"`
	Questions      []QuestionView `json:"questions,omitempty"`
}

type QuestionView struct {
	ID         uint         `json:"id"`
	Text       string       `json:"text"`
	Type       string       `json:"type"`
	Difficulty string       `json:"difficulty"`
	Marks      int          `json:"marks"`
	OrderNum   int          `json:"order_num"`
	Options    []OptionView `json:"options"`
}

type OptionView struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

func newQuizView(q *models.Quiz) QuizView {
	view := QuizView{
		ID:             q.ID,
		Title:          q.Title,
		Subject:        q.Subject.Name,
		GradeLevel:     q.GradeLevel,
		Difficulty:     q.Difficulty,
		TotalQuestions: q.TotalQuestions,
		TotalMarks:     q.TotalMarks,
		IsActive:       q.IsActive,
		CreatedBy:      q.CreatedBy,
		CreatedAt:      q.CreatedAt,
	}
	for _, question := range q.Questions {
		qv := QuestionView{
			ID:         question.ID,
			Text:       question.Text,
			Type:       question.Type,
			Difficulty: question.Difficulty,
			Marks:      question.Marks,
			OrderNum:   question.OrderNum,
			Options:    make([]OptionView, 0, len(question.Options)),
		}
		for _, o := range question.Options {
			qv.Options = append(qv.Options, OptionView{ID: o.ID, Text: o.Text})
		}
		view.Questions = append(view.Questions, qv)
	}
	return view
}

// ListQuizzes godoc
// @Summary      List quizzes
// @Description  List active quizzes, optionally filtered by grade and subject
// @Tags         quizzes
// @Produce      json
// @Security     BearerAuth
// @Param        grade   query int    false "Grade level"
// @Param        subject query string false "Subject name"
// @Success      200 {array} QuizView
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/quizzes [get]
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	filter := services.QuizFilter{Subject: c.Query("subject"), ActiveOnly: true}
	if raw := c.Query("grade"); raw != "" {
		grade, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "invalid grade")
			return
		}
		filter.GradeLevel = &grade
	}

	quizzes, err := h.quizService.ListQuizzes(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]QuizView, 0, len(quizzes))
	for i := range quizzes {
		views = append(views, newQuizView(&quizzes[i]))
	}
	c.JSON(http.StatusOK, views)
}

// GetQuiz godoc
// @Summary      Get a quiz
// @Description  Get quiz with its questions and options, without the answers
// @Tags         quizzes
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Quiz ID"
// @Success      200 {object} QuizView
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/quizzes/{id} [get]
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	quizID, ok := parseIDParam(c, "id", "quiz id")
	if !ok {
		return
	}

	quiz, err := h.quizService.GetQuiz(c.Request.Context(), quizID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newQuizView(quiz))
}

// DeactivateQuiz godoc
// @Summary      Deactivate a quiz
// @Description  Hide a quiz from new attempts. Only its creator may do this.
// @Tags         quizzes
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Quiz ID"
// @Success      200 {object} MessageResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/quizzes/{id} [delete]
func (h *QuizHandler) DeactivateQuiz(c *gin.Context) {
	quizID, ok := parseIDParam(c, "id", "quiz id")
	if !ok {
		return
	}

	if err := h.quizService.Deactivate(c.Request.Context(), quizID, currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "quiz deactivated"})
}

// StartQuiz godoc
// @Summary      Start an attempt
// @Description  Open an in-progress attempt, or return the one already open
// @Tags         quizzes
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Quiz ID"
// @Success      201 {object} models.Submission
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/quizzes/{id}/start [post]
func (h *QuizHandler) StartQuiz(c *gin.Context) {
	quizID, ok := parseIDParam(c, "id", "quiz id")
	if !ok {
		return
	}

	sub, err := h.submissionService.StartAttempt(c.Request.Context(), currentUserID(c), quizID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sub)
}
