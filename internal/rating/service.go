// Package rating - Rating Service
// Business logic layer cho rating system
// Chức năng:
//   - Validate the 1-5 rating value
//   - Coordinate between handlers and repository
//   - Build rating aggregates for GET /manga/:id/ratings
package rating

import (
	"context"

	"mangahub/pkg/models"
)

// Service defines business operations for ratings
type Service interface {
	Rate(ctx context.Context, userID, mangaID string, req models.RateMangaRequest) (*models.Rating, error)
	GetStats(ctx context.Context, mangaID, forUserID string) (*models.RatingStats, error)
	DeleteRating(ctx context.Context, userID, mangaID string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Rate(ctx context.Context, userID, mangaID string, req models.RateMangaRequest) (*models.Rating, error) {
	r := models.Rating{UserID: userID, MangaID: mangaID, Value: req.Value}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	rating, err := s.repo.Upsert(ctx, userID, mangaID, req.Value)
	if err != nil {
		return nil, models.ErrInternalf(err)
	}
	return rating, nil
}

func (s *service) GetStats(ctx context.Context, mangaID, forUserID string) (*models.RatingStats, error) {
	stats, err := s.repo.GetStats(ctx, mangaID, forUserID)
	if err != nil {
		return nil, models.ErrInternalf(err)
	}
	return stats, nil
}

func (s *service) DeleteRating(ctx context.Context, userID, mangaID string) error {
	return s.repo.Delete(ctx, userID, mangaID)
}
