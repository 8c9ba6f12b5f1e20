// Package main - C3: the UDP notification bus.
//
// Holds one registration per connected endpoint (the gateway's single
// process-wide registration, plus any CLI debug listeners), evicting
// endpoints that miss their heartbeat window and broadcasting
// NotificationFrame events pushed over the admin trigger port (spec §4.3).
package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"mangahub/internal/udp"
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

	dataAddr := fmt.Sprintf("%s:%d", cfg.UDP.Host, cfg.UDP.Port)
	bus := udp.NewServer(dataAddr, cfg.UDP.EvictAfter)
	go func() {
		if err := bus.Start(); err != nil {
			logger.Fatalf("udp bus error: %v", err)
		}
	}()

	adminAddr := fmt.Sprintf("%s:%d", cfg.UDP.Host, cfg.UDP.AdminPort)
	admin := udp.NewAdminServer(adminAddr, bus)
	go func() {
		if err := admin.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("udp admin server error: %v", err)
		}
	}()

	logger.Infof("udp notification bus listening on %s (admin %s)", dataAddr, adminAddr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Infof("shutting down udp notification bus")
	_ = bus.Stop()
}
