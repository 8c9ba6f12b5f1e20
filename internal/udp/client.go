package udp

import (
	"encoding/json"
	"fmt"
	"net"
	"time"

	"mangahub/pkg/logger"
	"mangahub/pkg/models"
)

// Client is the gateway-side registration used by the gateway's single,
// process-wide outbound UDP registration to C3 (spec §4.5).
type Client struct {
	ServerAddr string
	conn       *net.UDPConn

	// OnNotification is invoked with every parsed notification, forwarded
	// into the gateway's notifications SSE hub.
	OnNotification func(models.NotificationFrame)

	stop chan struct{}
}

func NewClient(addr string) *Client {
	return &Client{ServerAddr: addr, stop: make(chan struct{})}
}

// Connect registers with C3 and starts the heartbeat and listen loops.
// Per spec §4.3: clients must PONG (or re-register) every <= 25s.
func (c *Client) Connect(heartbeatEvery time.Duration) error {
	serverAddr, err := net.ResolveUDPAddr("udp", c.ServerAddr)
	if err != nil {
		return fmt.Errorf("resolve server addr: %w", err)
	}

	conn, err := net.DialUDP("udp", nil, serverAddr)
	if err != nil {
		return fmt.Errorf("dial udp: %w", err)
	}
	c.conn = conn

	if _, err := conn.Write([]byte("REGISTER")); err != nil {
		return fmt.Errorf("send register: %w", err)
	}

	buffer := make([]byte, 1024)
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := conn.Read(buffer)
	if err != nil {
		return fmt.Errorf("read confirmation: %w", err)
	}
	if confirmation := string(buffer[:n]); confirmation != "REGISTERED" {
		return fmt.Errorf("unexpected confirmation: %s", confirmation)
	}
	_ = conn.SetReadDeadline(time.Time{})

	logger.UDP("connect", c.ServerAddr, "registered")

	go c.heartbeatLoop(heartbeatEvery)
	go c.listen()

	return nil
}

func (c *Client) heartbeatLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := c.conn.Write([]byte("PONG")); err != nil {
				return
			}
		case <-c.stop:
			return
		}
	}
}

func (c *Client) listen() {
	buffer := make([]byte, 2048)
	for {
		select {
		case <-c.stop:
			return
		default:
			n, err := c.conn.Read(buffer)
			if err != nil {
				if !isClosedErr(err) {
					logger.Errorf("udp client read error: %v", err)
				}
				return
			}

			switch string(buffer[:n]) {
			case "PING":
				_, _ = c.conn.Write([]byte("PONG"))
				continue
			case "PONG", "REGISTERED":
				continue
			}

			var notification models.NotificationFrame
			if err := json.Unmarshal(buffer[:n], &notification); err != nil {
				continue
			}
			if c.OnNotification != nil {
				c.OnNotification(notification)
			}
		}
	}
}

func (c *Client) Close() error {
	close(c.stop)
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
