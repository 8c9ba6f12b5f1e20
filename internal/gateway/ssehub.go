package gateway

import (
	"sync"

	"github.com/google/uuid"

	"mangahub/pkg/logger"
)

// SSEClient is one authenticated browser's SSE stream. ch carries
// pre-marshaled event payloads.
type SSEClient struct {
	ID string
	ch chan []byte
}

// SSEHub fans frames out to every connected SSEClient of one kind
// ("progress" or "notifications"). Overflowing a client's bounded queue
// drops the frame rather than blocking the hub (spec §5).
type SSEHub struct {
	kind         string
	clientBuffer int

	mu      sync.RWMutex
	clients map[string]*SSEClient
}

func NewSSEHub(kind string, clientBuffer int) *SSEHub {
	return &SSEHub{
		kind:         kind,
		clientBuffer: clientBuffer,
		clients:      make(map[string]*SSEClient),
	}
}

// Register admits a new SSE client and returns its handle.
func (h *SSEHub) Register() *SSEClient {
	client := &SSEClient{ID: uuid.NewString(), ch: make(chan []byte, h.clientBuffer)}

	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()

	logger.SSE("connect", client.ID, h.kind)
	return client
}

// Remove releases a client, e.g. on request-context cancellation.
func (h *SSEHub) Remove(client *SSEClient) {
	h.mu.Lock()
	if _, exists := h.clients[client.ID]; exists {
		delete(h.clients, client.ID)
		close(client.ch)
	}
	h.mu.Unlock()

	logger.SSE("disconnect", client.ID, h.kind)
}

// Broadcast delivers data to every connected client of this hub.
func (h *SSEHub) Broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		select {
		case client.ch <- data:
		default:
			logger.Warnf("sse client %s backpressure on %s hub, dropping frame", client.ID, h.kind)
		}
	}
}

// ClientCount reports live client count, for health checks.
func (h *SSEHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
