package handlers

import (
	"net/http"

	"quiz-ai-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type SubjectHandler struct {
	subjectService *services.SubjectService
}

func NewSubjectHandler(subjectService *services.SubjectService) *SubjectHandler {
	return &SubjectHandler{subjectService: subjectService}
}

type CreateSubjectRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100" example:"Mathematics"`
	Description string `json:"description" example:"Numbers, algebra and geometry"`
}

// ListSubjects godoc
// @Summary      List subjects
// @Tags         subjects
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} models.Subject
// @Router       /api/v1/subjects [get]
func (h *SubjectHandler) ListSubjects(c *gin.Context) {
	subjects, err := h.subjectService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subjects)
}

// CreateSubject godoc
// @Summary      Create a subject
// @Tags         subjects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateSubjectRequest true "Subject data"
// @Success      201 {object} models.Subject
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /api/v1/subjects [post]
func (h *SubjectHandler) CreateSubject(c *gin.Context) {
	var req CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	subject, err := h.subjectService.Create(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, subject)
}

// DeleteSubject godoc
// @Summary      Delete a subject
// @Description  Delete a subject together with its quizzes and their submissions
// @Tags         subjects
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Subject ID"
// @Success      200 {object} MessageResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/subjects/{id} [delete]
func (h *SubjectHandler) DeleteSubject(c *gin.Context) {
	subjectID, ok := parseIDParam(c, "id", "subject id")
	if !ok {
		return
	}

	if err := h.subjectService.Delete(c.Request.Context(), subjectID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "subject deleted"})
}
