// Package main - C2: the TCP progress bus.
//
// Holds one subscription per logged-in user_id, rebroadcasting each
// ProgressFrame (pushed by the gateway over the admin trigger port, or
// written by a subscribed client) to every live subscription (spec §4.2).
package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"mangahub/internal/tcp"
	"mangahub/pkg/config"
	"mangahub/pkg/logger"
)

func main() {
	cfg, err := config.Load("./configs/development.yaml")
	if err != nil {
		fmt.Println("failed to load config:", err)
		return
	}

	logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})

	dataAddr := fmt.Sprintf("%s:%d", cfg.TCP.Host, cfg.TCP.Port)
	bus := tcp.NewServer(dataAddr, cfg.TCP.IdleTimeout, cfg.TCP.HeartbeatEvery)
	go func() {
		if err := bus.Start(); err != nil {
			logger.Fatalf("tcp bus error: %v", err)
		}
	}()

	adminAddr := fmt.Sprintf("%s:%d", cfg.TCP.Host, cfg.TCP.AdminPort)
	admin := tcp.NewAdminServer(adminAddr, bus)
	go func() {
		if err := admin.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("tcp admin server error: %v", err)
		}
	}()

	logger.Infof("tcp progress bus listening on %s (admin %s)", dataAddr, adminAddr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Infof("shutting down tcp progress bus")
	_ = bus.Stop()
	time.Sleep(100 * time.Millisecond)
}
