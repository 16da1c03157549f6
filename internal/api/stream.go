package api

import (
	"net/http"

	"eduquest_backend/internal/service"
	"eduquest_backend/pkg/auth"
	"eduquest_backend/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Dashboard clients hold this socket open and ask for fresh snapshots instead
// of re-polling the REST endpoint.

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type streamRoutes struct {
	ps service.ProgressServiceI
	a  *auth.ServiceAuth
}

type streamMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type streamReply struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

func NewStreamRoutes(handler *gin.RouterGroup, ps service.ProgressServiceI, a *auth.ServiceAuth) {
	h := &streamRoutes{ps: ps, a: a}

	ws := handler.Group("/ws")
	ws.Use(a.Middleware())

	ws.GET("/progress/:course_id/:user_id", h.handleProgressStream)
}

func (h *streamRoutes) handleProgressStream(c *gin.Context) {
	log := logger.Logger()

	courseID, userID, ok := parseCourseUserParams(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Info("progress stream closed unexpectedly", zap.Error(err))
			}
			return
		}

		var msg streamMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.send(conn, streamReply{Type: "error", Payload: gin.H{"error": "invalid message"}})
			continue
		}

		switch msg.Type {
		case "course_progress":
			progress := h.ps.CourseProgress(c.Request.Context(), userID, courseID, true)
			h.send(conn, streamReply{Type: "course_progress", Payload: progress})
		case "quest_progress":
			var payload struct {
				QuestID string `json:"quest_id"`
			}
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				h.send(conn, streamReply{Type: "error", Payload: gin.H{"error": "invalid payload"}})
				continue
			}
			questID, err := uuid.Parse(payload.QuestID)
			if err != nil {
				h.send(conn, streamReply{Type: "error", Payload: gin.H{"error": "invalid quest_id"}})
				continue
			}
			progress := h.ps.QuestProgress(c.Request.Context(), userID, questID)
			h.send(conn, streamReply{Type: "quest_progress", Payload: progress})
		default:
			h.send(conn, streamReply{Type: "error", Payload: gin.H{"error": "unknown message type"}})
		}
	}
}

func (h *streamRoutes) send(conn *websocket.Conn, reply streamReply) {
	data, err := json.Marshal(reply)
	if err != nil {
		logger.Logger().Error("failed to marshal stream reply", zap.Error(err))
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		logger.Logger().Info("failed to write stream reply", zap.Error(err))
	}
}
