package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"mangahub/internal/auth"
	"mangahub/pkg/logger"
	"mangahub/pkg/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler wires the gateway's WS upgrade route to a Hub. Auth is checked
// here rather than via the usual gin middleware chain since spec §4.5
// allows the token to arrive as a query parameter for WS upgrades, which
// plain browsers can't attach as a header.
type Handler struct {
	hub  *Hub
	auth auth.Service
}

func NewHandler(hub *Hub, authService auth.Service) *Handler {
	return &Handler{hub: hub, auth: authService}
}

// ServeWS upgrades GET /ws/chat?room=...&token=... into a chat session.
func (h *Handler) ServeWS(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		if authHeader := c.GetHeader("Authorization"); len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			token = authHeader[7:]
		}
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, models.NewErrorResponse(models.ErrCodeUnauthorized, "missing token", nil))
		return
	}

	claims, err := h.auth.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.NewErrorResponse(models.ErrCodeUnauthorized, "invalid token", nil))
		return
	}

	roomID := c.Query("room")
	if roomID == "" {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeValidation, "room is required", nil))
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Errorf("failed to upgrade websocket connection: %v", err)
		return
	}

	client := &Client{
		hub:      h.hub,
		conn:     conn,
		send:     make(chan models.ChatMessage, 256),
		userID:   claims.UserID,
		username: claims.Username,
		roomID:   roomID,
	}

	h.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// GetRoomInfo reports the connected usernames for a room.
func (h *Handler) GetRoomInfo(c *gin.Context) {
	roomID := c.Param("room_id")
	if roomID == "" {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeValidation, "room_id required", nil))
		return
	}

	users := h.hub.RoomMembers(roomID)
	c.JSON(http.StatusOK, gin.H{
		"room_id": roomID,
		"users":   users,
		"count":   len(users),
	})
}
