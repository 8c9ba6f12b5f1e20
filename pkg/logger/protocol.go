package logger

import "github.com/sirupsen/logrus"

// Protocol tags used to prefix every transport's trace line, so a single
// log stream can be grepped per-protocol.
const (
	ProtocolHTTP      = "http"
	ProtocolTCP       = "tcp"
	ProtocolUDP       = "udp"
	ProtocolWebSocket = "websocket"
	ProtocolGRPC      = "grpc"
	ProtocolSSE       = "sse"
	ProtocolAdmin     = "admin"
)

// HTTP traces one REST request/response.
func HTTP(method, path string, status int, latencyMs int64) {
	Get().WithFields(logrus.Fields{
		"protocol": ProtocolHTTP,
		"method":   method,
		"path":     path,
		"status":   status,
		"latency_ms": latencyMs,
	}).Infof("[HTTP] %s %s -> %d (%dms)", method, path, status, latencyMs)
}

// TCP traces a progress-bus event (subscribe, broadcast, disconnect, error).
func TCP(event, userID string, detail string) {
	Get().WithFields(logrus.Fields{
		"protocol": ProtocolTCP,
		"event":    event,
		"user_id":  userID,
	}).Infof("[TCP] %s user=%s %s", event, userID, detail)
}

// UDP traces a notification-bus event (register, evict, broadcast, error).
func UDP(event, remoteAddr string, detail string) {
	Get().WithFields(logrus.Fields{
		"protocol": ProtocolUDP,
		"event":    event,
		"remote":   remoteAddr,
	}).Infof("[UDP] %s remote=%s %s", event, remoteAddr, detail)
}

// WebSocket traces a chat-fabric event (join, leave, message, close).
func WebSocket(event, room, userID string) {
	Get().WithFields(logrus.Fields{
		"protocol": ProtocolWebSocket,
		"event":    event,
		"room":     room,
		"user_id":  userID,
	}).Infof("[WS] %s room=%s user=%s", event, room, userID)
}

// GRPC traces a unary RPC call.
func GRPC(method string, success bool, latencyMs int64) {
	Get().WithFields(logrus.Fields{
		"protocol": ProtocolGRPC,
		"method":   method,
		"success":  success,
		"latency_ms": latencyMs,
	}).Infof("[GRPC] %s success=%v (%dms)", method, success, latencyMs)
}

// SSE traces an SSE client lifecycle event (connect, disconnect, ping).
func SSE(event, clientID, streamKind string) {
	Get().WithFields(logrus.Fields{
		"protocol":    ProtocolSSE,
		"event":       event,
		"client_id":   clientID,
		"stream_kind": streamKind,
	}).Infof("[SSE] %s client=%s stream=%s", event, clientID, streamKind)
}

// Admin traces an admin-trigger HTTP call made against C2/C3.
func Admin(target, path string, status int, err error) {
	fields := logrus.Fields{
		"protocol": ProtocolAdmin,
		"target":   target,
		"path":     path,
		"status":   status,
	}
	if err != nil {
		fields["error"] = err.Error()
		Get().WithFields(fields).Warnf("[ADMIN] POST %s%s failed: %v", target, path, err)
		return
	}
	Get().WithFields(fields).Infof("[ADMIN] POST %s%s -> %d", target, path, status)
}
