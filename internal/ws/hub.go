package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	MessageLeaderboard = "leaderboard_update"

	writeWait = 10 * time.Second
)

type Message struct {
	Type   string      `json:"type"`
	QuizID uint        `json:"quiz_id"`
	Data   interface{} `json:"data"`
}

// Hub fans leaderboard updates out to the clients watching each quiz.
type Hub struct {
	mu      sync.Mutex
	watches map[uint]map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{
		watches: make(map[uint]map[*websocket.Conn]struct{}),
	}
}

func (h *Hub) Subscribe(quizID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.watches[quizID] == nil {
		h.watches[quizID] = make(map[*websocket.Conn]struct{})
	}
	h.watches[quizID][conn] = struct{}{}
	log.Printf("ws: client watching quiz %d (total: %d)", quizID, len(h.watches[quizID]))
}

func (h *Hub) Unsubscribe(quizID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(quizID, conn)
}

func (h *Hub) drop(quizID uint, conn *websocket.Conn) {
	conns, ok := h.watches[quizID]
	if !ok {
		return
	}
	if _, ok := conns[conn]; !ok {
		return
	}
	delete(conns, conn)
	conn.Close()
	if len(conns) == 0 {
		delete(h.watches, quizID)
	}
	log.Printf("ws: client stopped watching quiz %d", quizID)
}

// Watchers returns how many clients currently watch the quiz.
func (h *Hub) Watchers(quizID uint) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.watches[quizID])
}

// Broadcast sends msg to every watcher of the quiz. Clients that fail the
// write are disconnected.
func (h *Hub) Broadcast(quizID uint, msg Message) {
	msg.QuizID = quizID
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("ws: marshal error: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.watches[quizID] {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("ws: write error: %v", err)
			h.drop(quizID, conn)
		}
	}
}

// Send writes msg to a single watcher of the quiz.
func (h *Hub) Send(quizID uint, conn *websocket.Conn, msg Message) {
	msg.QuizID = quizID
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("ws: marshal error: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.watches[quizID][conn]; !ok {
		return
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Printf("ws: write error: %v", err)
		h.drop(quizID, conn)
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for quizID, conns := range h.watches {
		for conn := range conns {
			conn.Close()
		}
		delete(h.watches, quizID)
	}
}
