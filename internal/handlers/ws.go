package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"quiz-ai-backend/internal/services"
	"quiz-ai-backend/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	hub                *ws.Hub
	leaderboardService *services.LeaderboardService
}

func NewWSHandler(hub *ws.Hub, leaderboardService *services.LeaderboardService) *WSHandler {
	return &WSHandler{hub: hub, leaderboardService: leaderboardService}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WatchLeaderboard godoc
// @Summary      Live quiz leaderboard
// @Description  WebSocket feed that sends the quiz leaderboard on connect and after every submission. Pass the JWT as ?token=.
// @Tags         websocket
// @Param        id    path  int    true "Quiz ID"
// @Param        token query string true "JWT"
// @Router       /ws/quizzes/{id}/leaderboard [get]
func (h *WSHandler) WatchLeaderboard(c *gin.Context) {
	quizID, ok := parseIDParam(c, "id", "quiz id")
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws: upgrade error: %v", err)
		return
	}

	h.hub.Subscribe(quizID, conn)
	defer h.hub.Unsubscribe(quizID, conn)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	entries, err := h.leaderboardService.Leaderboard(ctx, services.LeaderboardFilter{QuizID: &quizID})
	cancel()
	if err != nil {
		log.Printf("ws: initial leaderboard for quiz %d failed: %v", quizID, err)
	} else {
		h.hub.Send(quizID, conn, ws.Message{Type: ws.MessageLeaderboard, Data: entries})
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
