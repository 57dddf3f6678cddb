package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"quiz-ai-backend/internal/models"

	"github.com/gin-gonic/gin"
)

type ExportOption struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

type ExportQuestion struct {
	Text       string         `json:"text"`
	Difficulty string         `json:"difficulty"`
	Marks      int            `json:"marks"`
	Options    []ExportOption `json:"options"`
}

type ExportData struct {
	Title      string           `json:"title"`
	Subject    string           `json:"subject"`
	GradeLevel int              `json:"grade_level"`
	Difficulty string           `json:"difficulty"`
	TotalMarks int              `json:"total_marks"`
	Questions  []ExportQuestion `json:"questions"`
}

func newExportData(quiz *models.Quiz) ExportData {
	data := ExportData{
		Title:      quiz.Title,
		Subject:    quiz.Subject.Name,
		GradeLevel: quiz.GradeLevel,
		Difficulty: quiz.Difficulty,
		TotalMarks: quiz.TotalMarks,
	}
	for _, q := range quiz.Questions {
		eq := ExportQuestion{Text: q.Text, Difficulty: q.Difficulty, Marks: q.Marks}
		for _, o := range q.Options {
			eq.Options = append(eq.Options, ExportOption{Text: o.Text, IsCorrect: o.IsCorrect})
		}
		data.Questions = append(data.Questions, eq)
	}
	return data
}

// ExportQuiz godoc
// @Summary      Export a quiz with its answers
// @Description  Download a quiz the caller created, including the correct options, as JSON or CSV
// @Tags         quizzes
// @Produce      json
// @Produce      text/csv
// @Security     BearerAuth
// @Param        id     path  int    true  "Quiz ID"
// @Param        format query string false "json (default) or csv"
// @Success      200 {object} ExportData
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/quizzes/{id}/export [get]
func (h *QuizHandler) ExportQuiz(c *gin.Context) {
	quizID, ok := parseIDParam(c, "id", "quiz id")
	if !ok {
		return
	}

	quiz, err := h.quizService.GetOwnQuiz(c.Request.Context(), quizID, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	format := c.DefaultQuery("format", "json")
	if format != "json" && format != "csv" {
		badRequest(c, "format must be json or csv")
		return
	}

	data := newExportData(quiz)
	filename := strings.ReplaceAll(quiz.Title, " ", "_")

	if format == "csv" {
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

		w := csv.NewWriter(c.Writer)
		w.Write([]string{"question", "difficulty", "marks", "option1", "option2", "option3", "option4", "correct"})
		for _, q := range data.Questions {
			row := make([]string, 8)
			row[0] = q.Text
			row[1] = q.Difficulty
			row[2] = strconv.Itoa(q.Marks)
			for i, o := range q.Options {
				if i < 4 {
					row[3+i] = o.Text
				}
				if o.IsCorrect {
					row[7] = strconv.Itoa(i + 1)
				}
			}
			w.Write(row)
		}
		w.Flush()
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.json\"", filename))
	c.JSON(http.StatusOK, data)
}
