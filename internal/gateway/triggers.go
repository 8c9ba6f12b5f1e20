package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"mangahub/pkg/logger"
	"mangahub/pkg/models"
)

// Triggers posts to C2/C3's admin ports on a state change. Every call is
// best-effort: the success of the originating intent is defined by the
// store mutation alone, never by whether the trigger lands (spec §7).
type Triggers struct {
	httpClient *http.Client
	tcpURL     string
	udpURL     string
}

func NewTriggers(tcpURL, udpURL string, timeout time.Duration) *Triggers {
	return &Triggers{
		httpClient: &http.Client{Timeout: timeout},
		tcpURL:     tcpURL,
		udpURL:     udpURL,
	}
}

// ProgressAsync fires a C2 admin POST in the background.
func (t *Triggers) ProgressAsync(frame models.ProgressFrame) {
	go t.post("tcp", t.tcpURL, frame)
}

// NotificationAsync fires a C3 admin POST in the background.
func (t *Triggers) NotificationAsync(frame models.NotificationFrame) {
	go t.post("udp", t.udpURL, frame)
}

func (t *Triggers) post(target, url string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		logger.Errorf("trigger marshal error: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), t.httpClient.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		logger.Admin(target, "/trigger", 0, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		logger.Admin(target, "/trigger", 0, err)
		return
	}
	defer resp.Body.Close()

	logger.Admin(target, "/trigger", resp.StatusCode, nil)
}
