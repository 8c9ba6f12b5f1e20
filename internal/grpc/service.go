// Package grpc - gRPC Service Implementation (C5 gRPC surface)
// Implements the internal MangaService RPC for server-to-server callers
// that need typed, binary-framed access to the same manga/progress domain
// logic the HTTP gateway exposes.
// Chức năng:
//   - GetManga RPC: delegates to manga.Service.GetByID (remote-catalog
//     fallback included)
//   - SearchManga RPC: delegates to manga.Service.List
//   - UpdateProgress RPC: delegates to progress.Service.Update
//   - Ping RPC: liveness probe
//   - RPC failures are returned as gRPC status errors: domain errors are
//     mapped onto gRPC status codes, never left as bare Go errors; the
//     response messages carry no application-level error field
package grpc

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"mangahub/internal/manga"
	"mangahub/internal/progress"
	pb "mangahub/internal/grpc/pb"
	"mangahub/pkg/logger"
	"mangahub/pkg/models"
)

// mangaServiceServer implements pb.MangaServiceServer against the same
// domain services the HTTP gateway uses — no direct database access here.
type mangaServiceServer struct {
	pb.UnimplementedMangaServiceServer
	manga    manga.Service
	progress progress.Service
}

func NewMangaServiceServer(mangaSvc manga.Service, progressSvc progress.Service) pb.MangaServiceServer {
	return &mangaServiceServer{manga: mangaSvc, progress: progressSvc}
}

func (s *mangaServiceServer) GetManga(ctx context.Context, req *pb.GetMangaRequest) (*pb.MangaResponse, error) {
	m, err := s.manga.GetByID(ctx, req.MangaId)
	logger.GRPC("GetManga", err == nil, 0)
	if err != nil {
		return nil, toGRPCStatus(err)
	}
	return toMangaResponse(m), nil
}

func (s *mangaServiceServer) SearchManga(ctx context.Context, req *pb.SearchRequest) (*pb.SearchResponse, error) {
	result, err := s.manga.List(ctx, models.MangaSearchRequest{
		Query:  req.Query,
		Status: req.Status,
		Type:   req.Type,
		Limit:  int(req.Limit),
		Offset: int(req.Offset),
	})
	logger.GRPC("SearchManga", err == nil, 0)
	if err != nil {
		return nil, toGRPCStatus(err)
	}

	items := make([]*pb.MangaResponse, 0, len(result.Data))
	for i := range result.Data {
		items = append(items, toMangaResponse(&result.Data[i]))
	}

	return &pb.SearchResponse{
		Manga:  items,
		Total:  int32(result.Total),
		Limit:  int32(result.Limit),
		Offset: int32(result.Offset),
	}, nil
}

func (s *mangaServiceServer) UpdateProgress(ctx context.Context, req *pb.ProgressRequest) (*pb.ProgressResponse, error) {
	record, err := s.progress.Update(ctx, req.UserId, models.UpdateProgressRequest{
		MangaID:        req.MangaId,
		CurrentChapter: int(req.CurrentChapter),
		Status:         req.Status,
	})
	logger.GRPC("UpdateProgress", err == nil, 0)
	if err != nil {
		return nil, toGRPCStatus(err)
	}

	return &pb.ProgressResponse{
		UserId:         record.UserID,
		MangaId:        record.MangaID,
		CurrentChapter: int32(record.CurrentChapter),
		LastReadAt:     record.LastReadAt.Unix(),
	}, nil
}

func (s *mangaServiceServer) Ping(ctx context.Context, req *pb.PingRequest) (*pb.PingResponse, error) {
	return &pb.PingResponse{Ok: true, Version: "1"}, nil
}

func toMangaResponse(m *models.Manga) *pb.MangaResponse {
	return &pb.MangaResponse{
		Id:              m.ID,
		Title:           m.Title,
		Author:          m.Author,
		Artist:          m.Artist,
		Description:     m.Description,
		CoverUrl:        m.CoverURL,
		Status:          m.Status,
		Type:            m.Type,
		Genres:          m.Genres,
		TotalChapters:   int32(m.TotalChapters),
		Rating:          m.Rating,
		RatingCount:     int32(m.RatingCount),
		PublicationYear: int32(m.PublicationYear),
	}
}

// toGRPCStatus maps a domain AppError onto the matching grpc/status code,
// so callers see a typed status code rather than a raw internal error.
func toGRPCStatus(err error) error {
	appErr, ok := err.(*models.AppError)
	if !ok {
		return status.Error(codes.Internal, err.Error())
	}
	switch appErr.Code {
	case models.ErrCodeNotFound:
		return status.Error(codes.NotFound, appErr.Message)
	case models.ErrCodeValidation:
		return status.Error(codes.InvalidArgument, appErr.Message)
	case models.ErrCodeUnauthorized:
		return status.Error(codes.Unauthenticated, appErr.Message)
	case models.ErrCodeForbidden:
		return status.Error(codes.PermissionDenied, appErr.Message)
	default:
		return status.Error(codes.Internal, appErr.Message)
	}
}
