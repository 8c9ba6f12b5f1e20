// Package websocket - Chat Fabric (C4)
// Quản lý WebSocket connections và chat rooms
// Chức năng:
//   - Room registry keyed by topic id ("general", "manga:<id>"); a room
//     exists implicitly on first join
//   - Join/leave broadcast plus a per-join user_list roster
//   - Inbound chat message validation and fan-out
//   - Domain-event projection: BroadcastProgressUpdate/BroadcastNotification
//     shadow a C1/C3 event into the matching room for connected members
//   - Idle-room reap: an empty room is removed after an idle interval
//   - Messages are not persisted (spec §3's ChatMessage is ephemeral)
package websocket

import (
	"sync"
	"time"

	"mangahub/pkg/logger"
	"mangahub/pkg/models"
)

// Room is a topic's membership set. A second concurrent session for the
// same (user, topic) is tolerated — the fabric broadcasts to each rather
// than deduplicating (spec §4.4).
type Room struct {
	ID           string
	members      map[*Client]bool
	lastActivity time.Time
}

// Hub owns every room and the single goroutine that mutates them.
type Hub struct {
	rooms map[string]*Room
	mu    sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan models.ChatMessage
	stop       chan struct{}

	idleTimeout time.Duration
}

// NewHub builds a hub whose empty rooms are reaped after idleTimeout.
func NewHub(idleTimeout time.Duration) *Hub {
	return &Hub{
		rooms:       make(map[string]*Room),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan models.ChatMessage, 256),
		stop:        make(chan struct{}),
		idleTimeout: idleTimeout,
	}
}

func (h *Hub) Run() {
	go h.reapLoop()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case frame := <-h.broadcast:
			h.dispatch(frame)
		case <-h.stop:
			logger.Info("websocket hub stopping")
			return
		}
	}
}

func (h *Hub) registerClient(c *Client) {
	h.mu.Lock()
	room, exists := h.rooms[c.roomID]
	if !exists {
		room = &Room{ID: c.roomID, members: make(map[*Client]bool)}
		h.rooms[c.roomID] = room
	}
	room.members[c] = true
	room.lastActivity = time.Now()
	users := roomUsernames(room)
	h.mu.Unlock()

	logger.WebSocket("join", c.roomID, c.userID)

	h.dispatch(models.NewJoinMessage(c.roomID, c.userID, c.username))

	roster := models.NewUserListMessage(c.roomID, users)
	select {
	case c.send <- roster:
	default:
	}
}

func (h *Hub) unregisterClient(c *Client) {
	h.mu.Lock()
	room, exists := h.rooms[c.roomID]
	if !exists {
		h.mu.Unlock()
		return
	}
	if _, ok := room.members[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(room.members, c)
	close(c.send)
	room.lastActivity = time.Now()
	empty := len(room.members) == 0
	h.mu.Unlock()

	logger.WebSocket("leave", c.roomID, c.userID)

	h.dispatch(models.NewLeaveMessage(c.roomID, c.userID, c.username))

	if empty {
		logger.Infof("room %s is now empty, eligible for reap", c.roomID)
	}
}

// dispatch fans a frame out to every member of frame.RoomID. A member whose
// outbound queue is full is closed rather than blocking the room (spec
// §4.4's backpressure rule).
func (h *Hub) dispatch(frame models.ChatMessage) {
	h.mu.RLock()
	room, exists := h.rooms[frame.Room]
	if !exists {
		h.mu.RUnlock()
		return
	}
	members := make([]*Client, 0, len(room.members))
	for c := range room.members {
		members = append(members, c)
	}
	h.mu.RUnlock()

	for _, c := range members {
		select {
		case c.send <- frame:
		default:
			logger.Warnf("websocket client %s send buffer full, closing", c.username)
			go func(c *Client) { h.unregister <- c }(c)
		}
	}
}

// reapLoop removes rooms that have been empty for longer than idleTimeout.
func (h *Hub) reapLoop() {
	ticker := time.NewTicker(h.idleTimeout / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			h.mu.Lock()
			now := time.Now()
			for id, room := range h.rooms {
				if len(room.members) == 0 && now.Sub(room.lastActivity) > h.idleTimeout {
					delete(h.rooms, id)
					logger.Infof("reaped idle room %s", id)
				}
			}
			h.mu.Unlock()
		case <-h.stop:
			return
		}
	}
}

// BroadcastProgressUpdate projects a C1 progress change into a manga's
// room, per spec §4.4's event-projection rule. Non-members never see it.
func (h *Hub) BroadcastProgressUpdate(room, userID, username string, chapter int) {
	h.submit(models.NewProgressUpdateMessage(room, userID, username, chapter))
}

// BroadcastNotification projects a C3 notification into a room.
func (h *Hub) BroadcastNotification(room, notificationType, message string) {
	h.submit(models.NewNotificationMessage(room, notificationType, message))
}

// submit enqueues a frame for the hub goroutine, dropping it (with a log)
// rather than blocking the caller if the hub is backed up.
func (h *Hub) submit(frame models.ChatMessage) {
	select {
	case h.broadcast <- frame:
	default:
		logger.Warn("websocket hub broadcast channel full, dropping projected event")
	}
}

// RoomMembers reports the connected usernames for a room, for the gateway's
// GET /rooms/:room_id status endpoint.
func (h *Hub) RoomMembers(roomID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	room, exists := h.rooms[roomID]
	if !exists {
		return nil
	}
	return roomUsernames(room)
}

func roomUsernames(room *Room) []string {
	users := make([]string, 0, len(room.members))
	for c := range room.members {
		users = append(users, c.username)
	}
	return users
}

func (h *Hub) Stop() {
	close(h.stop)
}
