package tcp

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"mangahub/pkg/logger"
	"mangahub/pkg/models"
)

// Client is the gateway-side half of a per-user TCP session to C2: one
// Client per logged-in browser, dialed and owned by the gateway's TCP user
// manager (spec §4.5).
type Client struct {
	addr   string
	userID string
	conn   net.Conn

	// OnFrame is invoked with every parsed progress frame received from C2,
	// forwarded into the gateway's progress SSE hub.
	OnFrame func(models.ProgressFrame)

	// OnClose is invoked once the read loop exits (clean close or read
	// error), letting the gateway's TCP user manager mark the user_id
	// reconnect-eligible (spec §4.5).
	OnClose func()

	stop chan struct{}
}

func NewClient(addr, userID string) *Client {
	return &Client{addr: addr, userID: userID, stop: make(chan struct{})}
}

// Connect dials C2, sends the subscribe frame, and starts the heartbeat and
// read goroutines. Per spec §4.5: "A background heartbeat sends PING every
// 30s. A read goroutine parses lines and forwards parsed frames."
func (c *Client) Connect(heartbeatEvery time.Duration) error {
	conn, err := net.DialTimeout("tcp", c.addr, 5*time.Second)
	if err != nil {
		return fmt.Errorf("dial tcp bus: %w", err)
	}
	c.conn = conn

	sub := models.SubscribeFrame{Type: "subscribe", UserID: c.userID}
	data, _ := json.Marshal(sub)
	if _, err := conn.Write(append(data, '\n')); err != nil {
		_ = conn.Close()
		return fmt.Errorf("send subscribe frame: %w", err)
	}

	logger.TCP("connect", c.userID, c.addr)

	go c.heartbeatLoop(heartbeatEvery)
	go c.readLoop()

	return nil
}

func (c *Client) heartbeatLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := c.conn.Write([]byte("PING\n")); err != nil {
				return
			}
		case <-c.stop:
			return
		}
	}
}

// readLoop parses lines from C2 and forwards progress frames. On read
// error the session is dropped — the caller's user_id becomes
// reconnect-eligible (spec §4.5).
func (c *Client) readLoop() {
	scanner := bufio.NewScanner(c.conn)
	for scanner.Scan() {
		line := scanner.Bytes()
		switch string(line) {
		case "PING", "PONG":
			continue
		}

		var frame models.ProgressFrame
		if err := json.Unmarshal(line, &frame); err != nil {
			continue
		}
		if c.OnFrame != nil {
			c.OnFrame(frame)
		}
	}
	logger.TCP("disconnect", c.userID, "read loop ended")
	if c.OnClose != nil {
		c.OnClose()
	}
}

// Close sends a clean DISCONNECT frame and tears down the session.
func (c *Client) Close() error {
	close(c.stop)
	if c.conn != nil {
		_, _ = c.conn.Write([]byte("DISCONNECT\n"))
		return c.conn.Close()
	}
	return nil
}
