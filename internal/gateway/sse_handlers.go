package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mangahub/internal/auth"
	"mangahub/pkg/logger"
	"mangahub/pkg/models"
)

// SSEHandler serves the two browser-facing bridge endpoints described by
// spec §4.5: /sse/progress and /sse/notifications. Each authenticated
// request gets its own SSEClient; frames demultiplexed from C2/C3 are
// delivered as they arrive, with a ping every KeepAlive as a liveness
// signal.
type SSEHandler struct {
	progressHub      *SSEHub
	notificationsHub *SSEHub
	tcpSessions      *TCPSessionManager
	keepAlive        time.Duration
}

func NewSSEHandler(progressHub, notificationsHub *SSEHub, tcpSessions *TCPSessionManager, keepAlive time.Duration) *SSEHandler {
	return &SSEHandler{
		progressHub:      progressHub,
		notificationsHub: notificationsHub,
		tcpSessions:      tcpSessions,
		keepAlive:        keepAlive,
	}
}

// StreamProgress opens a per-user progress feed, dialing C2 on first
// connect for this user_id if no session exists yet.
func (h *SSEHandler) StreamProgress(c *gin.Context) {
	claims := auth.GetCurrentClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, models.NewErrorResponse(models.ErrCodeUnauthorized, "authentication required", nil))
		return
	}

	if err := h.tcpSessions.ConnectUser(claims.UserID); err != nil {
		logger.Errorf("failed to open TCP session for user %s: %v", claims.UserID, err)
	}

	client := h.progressHub.Register()
	defer h.progressHub.Remove(client)

	h.stream(c, client)
}

// StreamNotifications opens the process-wide notification feed (C3 is a
// single shared UDP registration, not per-user).
func (h *SSEHandler) StreamNotifications(c *gin.Context) {
	claims := auth.GetCurrentClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, models.NewErrorResponse(models.ErrCodeUnauthorized, "authentication required", nil))
		return
	}

	client := h.notificationsHub.Register()
	defer h.notificationsHub.Remove(client)

	h.stream(c, client)
}

func (h *SSEHandler) stream(c *gin.Context, client *SSEClient) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.SSEvent("connected", client.ID)
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-client.ch:
			if !ok {
				return
			}
			c.SSEvent("message", string(data))
			c.Writer.Flush()
		case <-ticker.C:
			c.SSEvent("ping", "keep-alive")
			c.Writer.Flush()
		}
	}
}

// ProgressDispatcher marshals a ProgressFrame received from a TCP session
// and broadcasts it to every connected progress SSEClient.
func ProgressDispatcher(hub *SSEHub) func(models.ProgressFrame) {
	return func(frame models.ProgressFrame) {
		data, err := json.Marshal(frame)
		if err != nil {
			logger.Errorf("marshal progress frame: %v", err)
			return
		}
		hub.Broadcast(data)
	}
}

// NotificationDispatcher wires a UDP client's OnNotification callback to
// the notifications SSE hub.
func NotificationDispatcher(hub *SSEHub) func(models.NotificationFrame) {
	return func(frame models.NotificationFrame) {
		data, err := json.Marshal(frame)
		if err != nil {
			logger.Errorf("marshal notification frame: %v", err)
			return
		}
		hub.Broadcast(data)
	}
}
