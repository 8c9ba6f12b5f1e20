// Package chapter - chapter release service
package chapter

import (
	"context"

	"mangahub/pkg/external"
	"mangahub/pkg/models"
)

type Service interface {
	List(ctx context.Context, mangaID string, limit, offset int) (*models.ChapterListResponse, error)
	GetPages(ctx context.Context, chapterID string) (*models.Chapter, error)
	Create(ctx context.Context, mangaID string, req models.CreateChapterRequest) (*models.Chapter, error)
}

type service struct {
	repo    Repository
	catalog *external.FallbackCatalog
}

func NewService(repo Repository, catalog *external.FallbackCatalog) Service {
	return &service{repo: repo, catalog: catalog}
}

func (s *service) List(ctx context.Context, mangaID string, limit, offset int) (*models.ChapterListResponse, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	chapters, total, err := s.repo.List(ctx, mangaID, limit, offset)
	if err != nil {
		return nil, models.ErrInternalf(err)
	}

	if total == 0 && s.catalog != nil {
		remote, err := s.catalog.Chapters(ctx, mangaID, limit, offset)
		if err == nil {
			chapters = remote
			total = len(remote)
		}
	}

	return &models.ChapterListResponse{Data: chapters, Total: total, Limit: limit, Offset: offset}, nil
}

// GetPages resolves a chapter by id. An external chapter (is_external) has
// no stored pages — callers redirect to ExternalURL instead of rendering
// the empty Pages slice directly (spec §3's Chapter invariant).
func (s *service) GetPages(ctx context.Context, chapterID string) (*models.Chapter, error) {
	return s.repo.GetByID(ctx, chapterID)
}

func (s *service) Create(ctx context.Context, mangaID string, req models.CreateChapterRequest) (*models.Chapter, error) {
	return s.repo.Create(ctx, mangaID, req)
}
