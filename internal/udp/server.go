// Package udp - UDP Notification Bus (C3)
// Quản lý UDP datagram communication cho push notifications
// Chức năng:
//   - REGISTER/PONG/PING bare-word control protocol with heartbeat liveness
//   - Fan a notification datagram out to every live endpoint
//   - Eviction on missed heartbeat, not explicit UNREGISTER
//   - Connectionless, non-blocking sends
package udp

import (
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"mangahub/pkg/logger"
	"mangahub/pkg/models"
)

type endpoint struct {
	addr     *net.UDPAddr
	lastSeen time.Time
}

// Server is the UDP notification bus.
type Server struct {
	Addr        string
	EvictAfter  time.Duration
	conn        *net.UDPConn

	mu        sync.RWMutex
	endpoints map[string]*endpoint // remote_addr -> endpoint

	Broadcast chan models.NotificationFrame
	stop      chan struct{}
}

func NewServer(addr string, evictAfter time.Duration) *Server {
	return &Server{
		Addr:       addr,
		EvictAfter: evictAfter,
		endpoints:  make(map[string]*endpoint),
		Broadcast:  make(chan models.NotificationFrame, 100),
		stop:       make(chan struct{}),
	}
}

func (s *Server) Start() error {
	addr, err := net.ResolveUDPAddr("udp", s.Addr)
	if err != nil {
		return fmt.Errorf("resolve udp addr: %w", err)
	}

	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("listen udp: %w", err)
	}
	s.conn = conn
	logger.UDP("listen", "", s.Addr)

	go s.runHub()
	go s.evictLoop()
	s.listen()

	return nil
}

func (s *Server) runHub() {
	for {
		select {
		case notification := <-s.Broadcast:
			s.broadcastNotification(notification)
		case <-s.stop:
			return
		}
	}
}

// evictLoop removes endpoints whose last heartbeat exceeds EvictAfter
// (spec §4.3's "30s recommended" eviction threshold).
func (s *Server) evictLoop() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			now := time.Now()
			for key, ep := range s.endpoints {
				if now.Sub(ep.lastSeen) > s.EvictAfter {
					delete(s.endpoints, key)
					logger.UDP("evict", key, fmt.Sprintf("idle>%s", s.EvictAfter))
				}
			}
			s.mu.Unlock()
		case <-s.stop:
			return
		}
	}
}

func (s *Server) listen() {
	buffer := make([]byte, 2048)
	for {
		select {
		case <-s.stop:
			return
		default:
			n, addr, err := s.conn.ReadFromUDP(buffer)
			if err != nil {
				if !isClosedErr(err) {
					logger.Errorf("udp read error: %v", err)
				}
				continue
			}
			s.handleDatagram(addr, buffer[:n])
		}
	}
}

func (s *Server) handleDatagram(addr *net.UDPAddr, payload []byte) {
	message := string(payload)

	switch message {
	case "REGISTER":
		s.mu.Lock()
		s.endpoints[addr.String()] = &endpoint{addr: addr, lastSeen: time.Now()}
		total := len(s.endpoints)
		s.mu.Unlock()
		logger.UDP("REGISTER", addr.String(), fmt.Sprintf("total_subscribers=%d", total))
		s.sendTo(addr, []byte("REGISTERED"))

	case "PONG":
		s.mu.Lock()
		if ep, ok := s.endpoints[addr.String()]; ok {
			ep.lastSeen = time.Now()
		}
		s.mu.Unlock()

	case "PING":
		s.sendTo(addr, []byte("PONG"))

	default:
		var notification models.NotificationFrame
		if err := json.Unmarshal(payload, &notification); err != nil {
			logger.Warnf("unknown UDP datagram from %s: %s", addr.String(), message)
			return
		}
		s.Broadcast <- notification
	}
}

func (s *Server) broadcastNotification(notification models.NotificationFrame) {
	data, err := json.Marshal(notification)
	if err != nil {
		logger.Errorf("marshal notification: %v", err)
		return
	}

	s.mu.RLock()
	if len(s.endpoints) == 0 {
		s.mu.RUnlock()
		return
	}

	logger.UDP("broadcast", fmt.Sprintf("%d_endpoints", len(s.endpoints)), notification.Type+": "+notification.Message)

	var failed []string
	for key, ep := range s.endpoints {
		if err := s.sendTo(ep.addr, data); err != nil {
			logger.Warnf("udp send to %s failed: %v", key, err)
			failed = append(failed, key)
		}
	}
	s.mu.RUnlock()

	if len(failed) == 0 {
		return
	}

	s.mu.Lock()
	for _, key := range failed {
		delete(s.endpoints, key)
	}
	s.mu.Unlock()
	logger.UDP("evict", fmt.Sprintf("%d_endpoints", len(failed)), "send failure")
}

func (s *Server) sendTo(addr *net.UDPAddr, data []byte) error {
	_, err := s.conn.WriteToUDP(data, addr)
	return err
}

// Trigger is the injection point used by the admin HTTP port.
func (s *Server) Trigger(notification models.NotificationFrame) {
	select {
	case s.Broadcast <- notification:
	default:
		logger.Warn("udp broadcast channel full, dropping triggered notification")
	}
}

// EndpointCount reports the number of live endpoints, for health checks.
func (s *Server) EndpointCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.endpoints)
}

func (s *Server) Stop() error {
	close(s.stop)
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func isClosedErr(err error) bool {
	return err != nil && err.Error() == "use of closed network connection"
}
