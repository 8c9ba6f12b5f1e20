package test

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	pb "mangahub/internal/grpc/pb"
	"mangahub/pkg/models"
)

// These exercise a live cluster (gateway + tcp-bus + udp-bus + grpc-server)
// started out of band; each skips rather than fails when its target isn't
// reachable, since `go test ./...` shouldn't require the whole stack up.
// The exception is TestConcurrentTCPSubscriptions, which asserts that at
// least one of its dials succeeded and so fails when the TCP bus is down.

func TestHTTPHealthCheck(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	resp, err := http.Get("http://localhost:8080/healthz")
	if err != nil {
		t.Skipf("gateway not running: %v", err)
	}
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	assert.Equal(t, "ok", result["status"])
}

func TestHTTPMangaSearch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	resp, err := http.Get("http://localhost:8080/manga?limit=5")
	if err != nil {
		t.Skipf("gateway not running: %v", err)
	}
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	assert.Equal(t, true, result["success"])
}

func TestGRPCSearchManga(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	conn, err := grpc.NewClient("localhost:9092", grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Skipf("gRPC server not running: %v", err)
	}
	defer conn.Close()

	client := pb.NewMangaServiceClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.SearchManga(ctx, &pb.SearchRequest{
		Query:  "one",
		Limit:  10,
		Offset: 0,
	})
	if err != nil {
		t.Skipf("gRPC call failed: %v", err)
	}

	assert.NotNil(t, resp)
	assert.GreaterOrEqual(t, len(resp.Manga), 0)
}

func TestGRPCPing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	conn, err := grpc.NewClient("localhost:9092", grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Skipf("gRPC server not running: %v", err)
	}
	defer conn.Close()

	client := pb.NewMangaServiceClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.Ping(ctx, &pb.PingRequest{})
	if err != nil {
		t.Skipf("gRPC call failed: %v", err)
	}

	assert.True(t, resp.Ok)
}

func TestTCPSubscribeAndHeartbeat(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	conn, err := net.DialTimeout("tcp", "localhost:9090", 2*time.Second)
	if err != nil {
		t.Skipf("tcp bus not running: %v", err)
	}
	defer conn.Close()

	sub := models.SubscribeFrame{Type: "subscribe", UserID: "integration-test-user"}
	data, _ := json.Marshal(sub)
	_, err = conn.Write(append(data, '\n'))
	assert.NoError(t, err)

	_, err = conn.Write([]byte("PING\n"))
	assert.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buffer := make([]byte, 64)
	n, _ := conn.Read(buffer)
	if n > 0 {
		t.Logf("tcp bus replied: %s", buffer[:n])
	}
}

func TestTCPAdminTrigger(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	frame := models.ProgressFrame{
		UserID:     "integration-test-user",
		Username:   "integration-test-user",
		MangaTitle: "One Piece",
		Chapter:    50,
		Timestamp:  time.Now().Unix(),
	}
	body, _ := json.Marshal(frame)

	resp, err := http.Post("http://localhost:9190/trigger", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Skipf("tcp bus admin port not running: %v", err)
	}
	defer resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}

func TestUDPRegisterAndHeartbeat(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	addr, _ := net.ResolveUDPAddr("udp", "localhost:9091")
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		t.Skipf("udp bus not running: %v", err)
	}
	defer conn.Close()

	_, err = conn.Write([]byte("REGISTER"))
	assert.NoError(t, err)

	buffer := make([]byte, 256)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := conn.Read(buffer)
	if err == nil && n > 0 {
		assert.Equal(t, "REGISTERED", string(buffer[:n]))
	}
}

func TestUDPAdminTrigger(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	frame := models.NotificationFrame{
		Type:      models.NotificationTypeChapterRelease,
		MangaID:   "one-piece",
		Message:   "chapter 1100 released",
		Timestamp: time.Now().Unix(),
	}
	body, _ := json.Marshal(frame)

	resp, err := http.Post("http://localhost:9191/trigger", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Skipf("udp bus admin port not running: %v", err)
	}
	defer resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}

func TestWebSocketEndpointRejectsPlainGET(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	resp, err := http.Get("http://localhost:8080/ws/chat?room=general")
	if err != nil {
		t.Skipf("gateway not running: %v", err)
	}
	defer resp.Body.Close()

	assert.True(t, resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized)
}

func TestConcurrentTCPSubscriptions(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	const numClients = 5
	done := make(chan bool, numClients)

	for i := 0; i < numClients; i++ {
		go func(id int) {
			conn, err := net.DialTimeout("tcp", "localhost:9090", 2*time.Second)
			if err != nil {
				done <- false
				return
			}
			defer conn.Close()

			sub := models.SubscribeFrame{Type: "subscribe", UserID: "concurrent-user"}
			data, _ := json.Marshal(sub)
			_, err = conn.Write(append(data, '\n'))
			done <- err == nil
		}(i)
	}

	successCount := 0
	for i := 0; i < numClients; i++ {
		if <-done {
			successCount++
		}
	}

	t.Logf("successful concurrent subscriptions: %d/%d", successCount, numClients)
	assert.Greater(t, successCount, 0)
}
