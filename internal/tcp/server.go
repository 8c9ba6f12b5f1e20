// Package tcp - TCP Progress Bus (C2)
// Maintains per-user long-lived TCP sessions and fans a progress event out
// to every session whose user is a subscriber.
// Chức năng:
//   - Newline-delimited JSON frames; PING/PONG and DISCONNECT control lines
//   - At most one live subscription per user_id; re-subscribe closes the
//     previous connection
//   - CONNECTED -> SUBSCRIBED -> (SUBSCRIBED|DRAINING) -> CLOSED per session
//   - Idle timeout (>= 90s); a client's PING is answered with PONG (the bus
//     sends no heartbeat of its own)
package tcp

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"mangahub/pkg/logger"
	"mangahub/pkg/models"
)

type sessionState int

const (
	stateConnected sessionState = iota
	stateSubscribed
	stateDraining
	stateClosed
)

// drainBudget bounds how many further non-control lines a DRAINING session
// (one that sent DISCONNECT) has processed before its read loop ends.
// Frames still queued when the read loop ends are written out before the
// socket closes.
const drainBudget = 16

type subscription struct {
	userID   string
	conn     net.Conn
	send     chan []byte
	lastSeen time.Time
	state    sessionState
	mu       sync.Mutex
}

func (s *subscription) setState(st sessionState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *subscription) getState() sessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Server is the TCP progress bus.
type Server struct {
	Addr           string
	IdleTimeout    time.Duration
	HeartbeatEvery time.Duration

	listener net.Listener

	mu   sync.RWMutex
	subs map[string]*subscription // user_id -> subscription

	Broadcast  chan models.ProgressFrame
	register   chan *subscription
	unregister chan *subscription
	stop       chan struct{}
}

func NewServer(addr string, idleTimeout, heartbeatEvery time.Duration) *Server {
	return &Server{
		Addr:           addr,
		IdleTimeout:    idleTimeout,
		HeartbeatEvery: heartbeatEvery,
		subs:           make(map[string]*subscription),
		Broadcast:      make(chan models.ProgressFrame, 100),
		register:       make(chan *subscription),
		unregister:     make(chan *subscription),
		stop:           make(chan struct{}),
	}
}

func (s *Server) Start() error {
	l, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("listen tcp: %w", err)
	}
	s.listener = l
	logger.TCP("listen", "", s.Addr)

	go s.runHub()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.stop:
				return nil
			default:
				logger.Errorf("tcp accept error: %v", err)
				continue
			}
		}
		go s.handleConnection(conn)
	}
}

func (s *Server) runHub() {
	for {
		select {
		case sub := <-s.register:
			s.mu.Lock()
			if prev, ok := s.subs[sub.userID]; ok {
				s.closeSubscription(prev)
			}
			s.subs[sub.userID] = sub
			s.mu.Unlock()
			logger.TCP("subscribe", sub.userID, fmt.Sprintf("total=%d", len(s.subs)))

		case sub := <-s.unregister:
			s.mu.Lock()
			if current, ok := s.subs[sub.userID]; ok && current == sub {
				delete(s.subs, sub.userID)
			}
			s.mu.Unlock()
			logger.TCP("unsubscribe", sub.userID, fmt.Sprintf("total=%d", len(s.subs)))

		case frame := <-s.Broadcast:
			data, err := json.Marshal(frame)
			if err != nil {
				logger.Errorf("marshal progress frame: %v", err)
				continue
			}
			s.broadcastBytes(data)

		case <-s.stop:
			return
		}
	}
}

// closeSubscription must be called with s.mu held.
func (s *Server) closeSubscription(sub *subscription) {
	sub.setState(stateClosed)
	close(sub.send)
	_ = sub.conn.Close()
}

func (s *Server) broadcastBytes(data []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sub := range s.subs {
		if sub.getState() == stateClosed {
			continue
		}
		select {
		case sub.send <- data:
		default:
			logger.Warnf("tcp send buffer full for user %s, dropping frame", sub.userID)
		}
	}
}

// sendTo queues data on sub's outbound channel, guarded against the
// close-during-send race with closeSubscription: both the state check and
// the send happen while s.mu is held, the same lock closeSubscription's
// caller holds while closing the channel.
func (s *Server) sendTo(sub *subscription, data []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sub.getState() == stateClosed {
		return
	}
	select {
	case sub.send <- data:
	default:
		logger.Warnf("tcp send buffer full for user %s, dropping frame", sub.userID)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	sub := &subscription{
		conn:     conn,
		send:     make(chan []byte, 16),
		lastSeen: time.Now(),
		state:    stateConnected,
	}

	_ = conn.SetReadDeadline(time.Now().Add(s.IdleTimeout))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.readLoop(sub)
		// The read side has ended (idle timeout, read error, EOF or drain):
		// close the outbound queue so writeLoop flushes what is queued and
		// returns, and the session is then unregistered.
		s.mu.Lock()
		if sub.getState() != stateClosed {
			sub.setState(stateClosed)
			close(sub.send)
		}
		s.mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		s.writeLoop(sub)
	}()

	wg.Wait()
	if sub.userID != "" {
		s.unregister <- sub
	}
	_ = conn.Close()
}

func (s *Server) readLoop(sub *subscription) {
	reader := bufio.NewScanner(sub.conn)
	drained := 0

	for reader.Scan() {
		_ = sub.conn.SetReadDeadline(time.Now().Add(s.IdleTimeout))
		line := reader.Bytes()

		switch string(line) {
		case "PING":
			s.sendTo(sub, []byte("PONG"))
			continue
		case "PONG":
			continue
		case "DISCONNECT":
			sub.setState(stateDraining)
			drained = drainBudget
			continue
		}

		if sub.getState() == stateDraining {
			if drained <= 0 {
				return
			}
			drained--
		}

		var subscribe models.SubscribeFrame
		if err := json.Unmarshal(line, &subscribe); err == nil && subscribe.Type == "subscribe" && subscribe.UserID != "" {
			sub.userID = subscribe.UserID
			sub.setState(stateSubscribed)
			s.register <- sub
			continue
		}

		var frame models.ProgressFrame
		if err := json.Unmarshal(line, &frame); err != nil {
			logger.Warnf("tcp: non-JSON, non-control line ignored: %q", string(line))
			continue
		}
		s.Broadcast <- frame
	}

	if err := reader.Err(); err != nil {
		logger.Warnf("tcp read error: %v", err)
	}
}

func (s *Server) writeLoop(sub *subscription) {
	for msg := range sub.send {
		if _, err := sub.conn.Write(append(msg, '\n')); err != nil {
			logger.Warnf("tcp write error: %v", err)
			return
		}
	}
}

// Trigger is the injection point used by the admin HTTP port: indistinguishable
// from a subscribed client's own write (spec §4.2's broadcast policy).
func (s *Server) Trigger(frame models.ProgressFrame) {
	select {
	case s.Broadcast <- frame:
	default:
		logger.Warnf("tcp broadcast channel full, dropping triggered frame for user %s", frame.UserID)
	}
}

// SubscriberCount reports the number of live subscriptions, for health checks.
func (s *Server) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

func (s *Server) Stop() error {
	close(s.stop)
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}
