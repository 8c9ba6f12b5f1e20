// Package progress - Reading Progress Service
// Xử lý logic theo dõi tiến độ đọc truyện của user
// Chức năng:
//   - Update the current-chapter position for a (user, manga) pair
//   - Optionally touch the caller's LibraryEntry status in the same request
//     (spec §3: UpdateProgressRequest.Status is independent of, but may
//     also update, library membership)
//   - List a user's progress joined with manga details
package progress

import (
	"context"

	"mangahub/pkg/models"
	"mangahub/pkg/utils"
)

// libraryStatusSetter is satisfied structurally by library.Repository's
// SetStatus method — no import of internal/library needed here.
type libraryStatusSetter interface {
	SetStatus(ctx context.Context, userID, mangaID, status string) error
}

type Service interface {
	Update(ctx context.Context, userID string, req models.UpdateProgressRequest) (*models.ProgressRecord, error)
	UpdateBatch(ctx context.Context, userID string, req models.UpdateProgressBatchRequest) ([]models.ProgressRecord, error)
	List(ctx context.Context, userID string) ([]models.ProgressWithManga, error)
}

type service struct {
	repo    Repository
	library libraryStatusSetter
}

// NewService wires the progress repository. library may be nil when no
// library-status side effect is needed (e.g. in tests).
func NewService(repo Repository, library libraryStatusSetter) Service {
	return &service{repo: repo, library: library}
}

func (s *service) Update(ctx context.Context, userID string, req models.UpdateProgressRequest) (*models.ProgressRecord, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, models.ErrValidation(err.Error())
	}

	record, err := s.repo.Upsert(ctx, userID, req.MangaID, req.CurrentChapter)
	if err != nil {
		return nil, models.ErrInternalf(err)
	}

	if req.Status != "" && s.library != nil {
		if err := s.library.SetStatus(ctx, userID, req.MangaID, req.Status); err != nil {
			return nil, models.ErrInternalf(err)
		}
	}

	return record, nil
}

func (s *service) UpdateBatch(ctx context.Context, userID string, req models.UpdateProgressBatchRequest) ([]models.ProgressRecord, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, models.ErrValidation(err.Error())
	}

	records := make([]models.ProgressRecord, 0, len(req.Updates))
	for _, u := range req.Updates {
		record, err := s.Update(ctx, userID, u)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, nil
}

func (s *service) List(ctx context.Context, userID string) ([]models.ProgressWithManga, error) {
	return s.repo.ListByUser(ctx, userID)
}
