// Package main - gRPC Service Server (C5 gRPC surface)
// Điểm vào cho gRPC server dùng cho inter-service communication
// Chức năng:
//   - High-performance RPC calls với Protocol Buffers message shapes
//   - GetManga, SearchManga, UpdateProgress, Ping RPCs, delegating to the
//     same manga/progress domain services the HTTP gateway uses
//   - Reflection API support cho debugging
//
// Port: 9092
package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpcpkg "mangahub/internal/grpc"
	pb "mangahub/internal/grpc/pb"
	"mangahub/internal/library"
	"mangahub/internal/manga"
	"mangahub/internal/progress"
	"mangahub/pkg/config"
	"mangahub/pkg/database"
	"mangahub/pkg/external"
	"mangahub/pkg/logger"
)

func main() {
	cfg, err := config.Load("./configs/development.yaml")
	if err != nil {
		panic(err)
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
		logger.Fatal("failed to init database:", err)
	}
	defer db.Close()

	catalog := external.NewFallbackCatalog(cfg.External)
	mangaRepo := manga.NewRepository(db.DB)
	mangaSvc := manga.NewService(mangaRepo, catalog)

	libraryRepo := library.NewRepository(db.DB)
	progressRepo := progress.NewRepository(db.DB)
	progressSvc := progress.NewService(progressRepo, libraryRepo)

	addr := fmt.Sprintf("%s:%d", cfg.GRPC.Host, cfg.GRPC.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Fatalf("failed to listen: %v", err)
	}

	grpcServer := grpc.NewServer(
		grpc.MaxRecvMsgSize(100*1024*1024),
		grpc.MaxSendMsgSize(100*1024*1024),
	)
	mangaService := grpcpkg.NewMangaServiceServer(mangaSvc, progressSvc)
	pb.RegisterMangaServiceServer(grpcServer, mangaService)

	reflection.Register(grpcServer)

	logger.Infof("gRPC server listening on %s", addr)

	go func() {
		if err := grpcServer.Serve(listener); err != nil {
			logger.Fatalf("server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("Shutting down gRPC server...")
	grpcServer.GracefulStop()
	logger.Info("gRPC server stopped.")
}
