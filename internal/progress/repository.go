package progress

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"mangahub/pkg/models"
)

type Repository interface {
	Upsert(ctx context.Context, userID, mangaID string, currentChapter int) (*models.ProgressRecord, error)
	ListByUser(ctx context.Context, userID string) ([]models.ProgressWithManga, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Upsert(ctx context.Context, userID, mangaID string, currentChapter int) (*models.ProgressRecord, error) {
	now := time.Now()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO progress_records (user_id, manga_id, current_chapter, last_read_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, manga_id) DO UPDATE SET current_chapter = excluded.current_chapter, last_read_at = excluded.last_read_at`,
		userID, mangaID, currentChapter, now,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert progress: %w", err)
	}

	return &models.ProgressRecord{UserID: userID, MangaID: mangaID, CurrentChapter: currentChapter, LastReadAt: now}, nil
}

func (r *repository) ListByUser(ctx context.Context, userID string) ([]models.ProgressWithManga, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			p.user_id, p.manga_id, p.current_chapter, p.last_read_at,
			m.id, m.title, m.author, m.artist, m.description, m.cover_url,
			m.status, m.type, m.genres, m.total_chapters, m.average_rating, m.rating_count,
			m.publication_year, m.created_at, m.updated_at
		FROM progress_records p
		JOIN manga m ON p.manga_id = m.id
		WHERE p.user_id = ?
		ORDER BY p.last_read_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	defer rows.Close()

	var result []models.ProgressWithManga
	for rows.Next() {
		var p models.ProgressWithManga
		var genresJSON string
		if err := rows.Scan(
			&p.UserID, &p.MangaID, &p.CurrentChapter, &p.LastReadAt,
			&p.Manga.ID, &p.Manga.Title, &p.Manga.Author, &p.Manga.Artist, &p.Manga.Description, &p.Manga.CoverURL,
			&p.Manga.Status, &p.Manga.Type, &genresJSON, &p.Manga.TotalChapters, &p.Manga.Rating, &p.Manga.RatingCount,
			&p.Manga.PublicationYear, &p.Manga.CreatedAt, &p.Manga.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		p.Manga.GenresJSON = genresJSON
		result = append(result, p)
	}
	return result, nil
}
