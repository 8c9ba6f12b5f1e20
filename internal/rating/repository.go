// Package rating - Rating Repository
// Data access layer cho rating system
// Chức năng:
//   - Upsert a user's 1-5 rating for a manga
//   - Compute the distribution/average aggregate (manga.average_rating is
//     kept current by a database trigger, spec §3's derived fields)
//   - User rating lookup and removal
package rating

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"mangahub/pkg/models"
)

type Repository interface {
	Upsert(ctx context.Context, userID, mangaID string, value int) (*models.Rating, error)
	GetByUserAndManga(ctx context.Context, userID, mangaID string) (*models.Rating, error)
	GetStats(ctx context.Context, mangaID string, forUserID string) (*models.RatingStats, error)
	Delete(ctx context.Context, userID, mangaID string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Upsert(ctx context.Context, userID, mangaID string, value int) (*models.Rating, error) {
	now := time.Now()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ratings (user_id, manga_id, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, manga_id) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		userID, mangaID, value, now,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert rating: %w", err)
	}

	return &models.Rating{UserID: userID, MangaID: mangaID, Value: value, UpdatedAt: now}, nil
}

func (r *repository) GetByUserAndManga(ctx context.Context, userID, mangaID string) (*models.Rating, error) {
	var rating models.Rating
	err := r.db.QueryRowContext(ctx,
		"SELECT user_id, manga_id, value, updated_at FROM ratings WHERE user_id = ? AND manga_id = ?",
		userID, mangaID,
	).Scan(&rating.UserID, &rating.MangaID, &rating.Value, &rating.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrNotFoundf(models.ErrRatingNotFound)
		}
		return nil, fmt.Errorf("get rating: %w", err)
	}
	return &rating, nil
}

func (r *repository) GetStats(ctx context.Context, mangaID string, forUserID string) (*models.RatingStats, error) {
	stats := &models.RatingStats{MangaID: mangaID, Distribution: make(map[int]int)}

	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(AVG(value), 0), COUNT(*) FROM ratings WHERE manga_id = ?", mangaID,
	).Scan(&stats.Average, &stats.Count)
	if err != nil {
		return nil, fmt.Errorf("get rating stats: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT value, COUNT(*) FROM ratings WHERE manga_id = ? GROUP BY value", mangaID,
	)
	if err != nil {
		return nil, fmt.Errorf("get rating distribution: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var value, count int
		if err := rows.Scan(&value, &count); err != nil {
			return nil, err
		}
		stats.Distribution[value] = count
	}

	if forUserID != "" {
		var userValue int
		err := r.db.QueryRowContext(ctx,
			"SELECT value FROM ratings WHERE user_id = ? AND manga_id = ?", forUserID, mangaID,
		).Scan(&userValue)
		if err == nil {
			stats.UserRating = &userValue
		} else if err != sql.ErrNoRows {
			return nil, fmt.Errorf("get user rating: %w", err)
		}
	}

	return stats, nil
}

func (r *repository) Delete(ctx context.Context, userID, mangaID string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM ratings WHERE user_id = ? AND manga_id = ?", userID, mangaID,
	)
	if err != nil {
		return fmt.Errorf("delete rating: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return models.ErrNotFoundf(models.ErrRatingNotFound)
	}
	return nil
}
