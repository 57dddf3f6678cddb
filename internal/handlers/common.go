package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"quiz-ai-backend/internal/middleware"
	"quiz-ai-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
	Code  string `json:"code,omitempty" example:"validation_error"`
}

type MessageResponse struct {
	Message string `json:"message" example:"operation successful"`
}

var kindStatus = map[services.ErrorKind]int{
	services.KindValidation:        http.StatusBadRequest,
	services.KindNotFound:          http.StatusNotFound,
	services.KindUnauthorized:      http.StatusUnauthorized,
	services.KindConflict:          http.StatusConflict,
	services.KindUpstreamFormat:    http.StatusInternalServerError,
	services.KindDataIntegrity:     http.StatusInternalServerError,
	services.KindConfiguration:     http.StatusInternalServerError,
	services.KindTransientUpstream: http.StatusBadGateway,
}

// respondError writes err with the status of its kind. Untyped errors only
// reveal their text in debug mode.
func respondError(c *gin.Context, err error) {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		status, ok := kindStatus[svcErr.Kind]
		if !ok {
			status = http.StatusInternalServerError
		}
		if status >= http.StatusInternalServerError {
			log.Printf("handlers: %s %s: %v", c.Request.Method, c.FullPath(), err)
		}
		c.JSON(status, ErrorResponse{Error: svcErr.Message, Code: string(svcErr.Kind)})
		return
	}

	log.Printf("handlers: %s %s: %v", c.Request.Method, c.FullPath(), err)
	msg := "internal server error"
	if gin.Mode() == gin.DebugMode {
		msg = err.Error()
	}
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msg, Code: string(services.KindInternal)})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Code: string(services.KindValidation)})
}

func parseIDParam(c *gin.Context, param, label string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "invalid "+label)
		return 0, false
	}
	return uint(id), true
}

func currentUserID(c *gin.Context) uint {
	return c.GetUint(middleware.UserIDKey)
}
