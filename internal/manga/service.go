// Package manga - Manga Management Service
// Xử lý tất cả logic liên quan đến manga data
// Chức năng:
//   - Search manga với filters (query, status, type, genres)
//   - Get manga details theo ID, falling back to the remote catalog on a
//     local miss (spec §7's remote-catalog-failure row)
//   - Popular ranking via the Bayesian-weighted rating helper
//   - Admin catalog stats and manga creation
package manga

import (
	"context"
	"sort"

	"mangahub/pkg/external"
	"mangahub/pkg/models"
)

type Service interface {
	List(ctx context.Context, req models.MangaSearchRequest) (*models.MangaListResponse, error)
	GetByID(ctx context.Context, id string) (*models.Manga, error)
	Create(ctx context.Context, req models.CreateMangaRequest) (*models.Manga, error)
	Popular(ctx context.Context, limit int) ([]models.Manga, error)
	Stats(ctx context.Context) (*models.MangaStats, error)
}

// minVotesForRanking is the Bayesian prior vote count fed to
// CalculateWeightedRating so a single 5-star rating can't outrank a
// well-established title (spec §12 enrichment, not a core invariant).
const minVotesForRanking = 5

type service struct {
	repo    Repository
	catalog *external.FallbackCatalog
}

func NewService(repo Repository, catalog *external.FallbackCatalog) Service {
	return &service{repo: repo, catalog: catalog}
}

func (s *service) List(ctx context.Context, req models.MangaSearchRequest) (*models.MangaListResponse, error) {
	if err := models.ValidateMangaSearch(&req); err != nil {
		return nil, models.ErrValidation(err.Error())
	}

	manga, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, models.NewAppError(models.ErrCodeInternal, "failed to list manga", 500, err)
	}

	if total == 0 && req.Query != "" && s.catalog != nil {
		manga = s.catalog.Search(ctx, req.Query, req.Limit)
		total = len(manga)
	}

	hasMore := req.Offset+req.Limit < total
	return &models.MangaListResponse{
		Data:    manga,
		Total:   total,
		Limit:   req.Limit,
		Offset:  req.Offset,
		HasMore: hasMore,
	}, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*models.Manga, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err == nil {
		return m, nil
	}
	appErr, ok := err.(*models.AppError)
	if !ok || appErr.Code != models.ErrCodeNotFound || s.catalog == nil {
		return nil, err
	}
	return s.catalog.Get(ctx, id)
}

func (s *service) Create(ctx context.Context, req models.CreateMangaRequest) (*models.Manga, error) {
	return s.repo.Create(ctx, req)
}

func (s *service) Popular(ctx context.Context, limit int) ([]models.Manga, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	ranked, err := s.repo.Popular(ctx, limit*2)
	if err != nil {
		return nil, models.NewAppError(models.ErrCodeInternal, "failed to rank manga", 500, err)
	}

	var globalMean float64
	for _, m := range ranked {
		globalMean += m.Rating
	}
	if len(ranked) > 0 {
		globalMean /= float64(len(ranked))
	}

	for i := range ranked {
		ranked[i].Rating = models.CalculateWeightedRating(ranked[i].Rating, ranked[i].RatingCount, minVotesForRanking, globalMean)
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Rating > ranked[j].Rating })

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

func (s *service) Stats(ctx context.Context) (*models.MangaStats, error) {
	return s.repo.Stats(ctx)
}
