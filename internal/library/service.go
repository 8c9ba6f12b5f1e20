// Package library - collection membership service
package library

import (
	"context"

	"mangahub/pkg/models"
	"mangahub/pkg/utils"
)

type Service interface {
	Add(ctx context.Context, userID string, req models.AddToLibraryRequest) (*models.LibraryEntry, error)
	Remove(ctx context.Context, userID, mangaID string) error
	List(ctx context.Context, userID string, filter models.LibraryFilterRequest) ([]models.LibraryEntryWithManga, error)
	Stats(ctx context.Context, userID string) (*models.LibraryStats, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Add(ctx context.Context, userID string, req models.AddToLibraryRequest) (*models.LibraryEntry, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, models.ErrValidation(err.Error())
	}
	if req.Status != "" && !models.IsValidLibraryStatus(req.Status) {
		return nil, models.ErrValidation("invalid library status: " + req.Status)
	}

	entry, err := s.repo.Add(ctx, userID, req.MangaID, req.Status)
	if err != nil {
		return nil, models.ErrInternalf(err)
	}
	return entry, nil
}

func (s *service) Remove(ctx context.Context, userID, mangaID string) error {
	return s.repo.Remove(ctx, userID, mangaID)
}

func (s *service) List(ctx context.Context, userID string, filter models.LibraryFilterRequest) ([]models.LibraryEntryWithManga, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 200 {
		filter.Limit = 200
	}
	entries, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		return nil, models.ErrInternalf(err)
	}
	return entries, nil
}

func (s *service) Stats(ctx context.Context, userID string) (*models.LibraryStats, error) {
	stats, err := s.repo.Stats(ctx, userID)
	if err != nil {
		return nil, models.ErrInternalf(err)
	}
	return stats, nil
}
