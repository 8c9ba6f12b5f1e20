// Package main - C5 Gateway
//
// The HTTP/REST front door (gRPC is served by the separate cmd/grpc-server
// process) plus the WebSocket chat upgrade and the
// SSE bridge that multiplexes the TCP progress bus (C2) and UDP
// notification bus (C3) back to the browser. It is the only component
// that fans a successful domain mutation out to the other buses: C2/C3
// admin triggers and C4 chat-room projections.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"mangahub/internal/auth"
	"mangahub/internal/chapter"
	"mangahub/internal/gateway"
	"mangahub/internal/library"
	"mangahub/internal/manga"
	"mangahub/internal/progress"
	"mangahub/internal/rating"
	"mangahub/internal/udp"
	"mangahub/internal/websocket"
	"mangahub/pkg/cache"
	"mangahub/pkg/config"
	"mangahub/pkg/database"
	"mangahub/pkg/external"
	"mangahub/pkg/logger"

	"github.com/gin-gonic/gin"
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

	db, err := database.NewDB(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		logger.Fatalf("failed to init database: %v", err)
	}
	defer db.Close()

	catalog := external.NewFallbackCatalog(cfg.External)

	authSvc := auth.NewService(db.DB, cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiration)

	mangaRepo := manga.NewRepository(db.DB)
	mangaSvc := manga.NewService(mangaRepo, catalog)

	chapterRepo := chapter.NewRepository(db.DB)
	chapterSvc := chapter.NewService(chapterRepo, catalog)

	libraryRepo := library.NewRepository(db.DB)
	librarySvc := library.NewService(libraryRepo)

	progressRepo := progress.NewRepository(db.DB)
	progressSvc := progress.NewService(progressRepo, libraryRepo)

	ratingRepo := rating.NewRepository(db.DB)
	ratingSvc := rating.NewService(ratingRepo)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	rateLimiter := cache.NewRateLimiter(redisClient, cfg.RateLimit.RequestsPerMinute)

	triggers := gateway.NewTriggers(cfg.Admin.TCPTriggerURL, cfg.Admin.UDPTriggerURL, cfg.Admin.Timeout)

	chatHub := websocket.NewHub(cfg.WebSocket.RoomIdleTimeout)
	go chatHub.Run()
	defer chatHub.Stop()

	progressHub := gateway.NewSSEHub("progress", cfg.SSE.ClientBuffer)
	notificationsHub := gateway.NewSSEHub("notifications", cfg.SSE.ClientBuffer)

	tcpAddr := fmt.Sprintf("%s:%d", cfg.TCP.Host, cfg.TCP.Port)
	tcpSessions := gateway.NewTCPSessionManager(tcpAddr, cfg.TCP.HeartbeatEvery, gateway.ProgressDispatcher(progressHub))

	udpAddr := fmt.Sprintf("%s:%d", cfg.UDP.Host, cfg.UDP.Port)
	udpClient := udp.NewClient(udpAddr)
	udpClient.OnNotification = gateway.NotificationDispatcher(notificationsHub)
	if err := udpClient.Connect(cfg.UDP.HeartbeatEvery); err != nil {
		logger.Warnf("could not register with notification bus at %s: %v (notifications degraded)", udpAddr, err)
	} else {
		defer udpClient.Close()
	}

	sseHandler := gateway.NewSSEHandler(progressHub, notificationsHub, tcpSessions, cfg.SSE.KeepAliveInterval)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gateway.NewRouter(gateway.RouterDeps{
		Config:      cfg.CORS,
		Auth:        authSvc,
		Manga:       mangaSvc,
		Chapter:     chapterSvc,
		Library:     librarySvc,
		Progress:    progressSvc,
		Rating:      ratingSvc,
		RateLimiter: rateLimiter,
		Triggers:    triggers,
		ChatHub:     chatHub,
		SSE:         sseHandler,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Infof("gateway listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("gateway server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down gateway")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("gateway shutdown error: %v", err)
	}
}
