// Package gateway implements C5's HTTP side: the REST front door, the
// WebSocket upgrade, and the SSE bridge that multiplexes C2/C3 back to the
// browser (spec §4.5).
package gateway

import (
	"sync"
	"time"

	"mangahub/internal/tcp"
	"mangahub/pkg/logger"
	"mangahub/pkg/models"
)

// TCPSessionManager is the gateway-side per-user TCP session pool: one
// outbound dial to C2 per logged-in user_id, singleton-keyed. Frames
// received from C2 are forwarded to onFrame (the progress hub).
type TCPSessionManager struct {
	addr           string
	heartbeatEvery time.Duration
	onFrame        func(models.ProgressFrame)

	mu       sync.Mutex
	sessions map[string]*tcp.Client
}

func NewTCPSessionManager(addr string, heartbeatEvery time.Duration, onFrame func(models.ProgressFrame)) *TCPSessionManager {
	return &TCPSessionManager{
		addr:           addr,
		heartbeatEvery: heartbeatEvery,
		onFrame:        onFrame,
		sessions:       make(map[string]*tcp.Client),
	}
}

// ConnectUser opens a TCP session for userID if one doesn't already exist.
func (m *TCPSessionManager) ConnectUser(userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[userID]; exists {
		return nil
	}

	client := tcp.NewClient(m.addr, userID)
	client.OnFrame = m.onFrame
	client.OnClose = func() { m.forget(userID) }

	if err := client.Connect(m.heartbeatEvery); err != nil {
		return err
	}

	m.sessions[userID] = client
	logger.TCP("gateway-connect", userID, m.addr)
	return nil
}

// DisconnectUser closes userID's session, e.g. on logout.
func (m *TCPSessionManager) DisconnectUser(userID string) {
	m.mu.Lock()
	client, exists := m.sessions[userID]
	if exists {
		delete(m.sessions, userID)
	}
	m.mu.Unlock()

	if exists {
		_ = client.Close()
	}
}

// forget drops a session whose read loop has ended, making the user_id
// reconnect-eligible on the next ConnectUser call.
func (m *TCPSessionManager) forget(userID string) {
	m.mu.Lock()
	delete(m.sessions, userID)
	m.mu.Unlock()
}

// ActiveUsers reports the number of live sessions, for health checks.
func (m *TCPSessionManager) ActiveUsers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
