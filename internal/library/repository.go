// Package library - collection membership, separate from reading progress
// (spec §3's LibraryEntry vs ProgressRecord split, Open Question #1).
package library

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"mangahub/pkg/models"
)

type Repository interface {
	Add(ctx context.Context, userID, mangaID, status string) (*models.LibraryEntry, error)
	Remove(ctx context.Context, userID, mangaID string) error
	List(ctx context.Context, userID string, filter models.LibraryFilterRequest) ([]models.LibraryEntryWithManga, error)
	SetStatus(ctx context.Context, userID, mangaID, status string) error
	Stats(ctx context.Context, userID string) (*models.LibraryStats, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Add(ctx context.Context, userID, mangaID, status string) (*models.LibraryEntry, error) {
	if status == "" {
		status = models.LibraryStatusPlanToRead
	}
	now := time.Now()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO library_entries (user_id, manga_id, status, added_at, last_updated)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, manga_id) DO UPDATE SET status = excluded.status, last_updated = excluded.last_updated`,
		userID, mangaID, status, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("add library entry: %w", err)
	}

	return &models.LibraryEntry{UserID: userID, MangaID: mangaID, Status: status, AddedAt: now, LastUpdated: now}, nil
}

func (r *repository) Remove(ctx context.Context, userID, mangaID string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM library_entries WHERE user_id = ? AND manga_id = ?", userID, mangaID,
	)
	if err != nil {
		return fmt.Errorf("remove library entry: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return models.ErrNotFoundf(models.ErrLibraryEntryNotFound)
	}
	return nil
}

func (r *repository) List(ctx context.Context, userID string, filter models.LibraryFilterRequest) ([]models.LibraryEntryWithManga, error) {
	query := `
		SELECT l.user_id, l.manga_id, l.status, l.added_at, l.last_updated,
		       m.id, m.title, m.author, m.artist, m.description, m.cover_url,
		       m.status, m.type, m.genres, m.total_chapters, m.average_rating, m.rating_count,
		       m.publication_year, m.created_at, m.updated_at
		FROM library_entries l
		JOIN manga m ON l.manga_id = m.id
		WHERE l.user_id = ?`
	args := []interface{}{userID}

	if filter.Status != "" {
		query += " AND l.status = ?"
		args = append(args, filter.Status)
	}
	query += " ORDER BY l.last_updated DESC"

	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list library: %w", err)
	}
	defer rows.Close()

	var result []models.LibraryEntryWithManga
	for rows.Next() {
		var e models.LibraryEntryWithManga
		var genresJSON string
		if err := rows.Scan(
			&e.UserID, &e.MangaID, &e.Status, &e.AddedAt, &e.LastUpdated,
			&e.Manga.ID, &e.Manga.Title, &e.Manga.Author, &e.Manga.Artist, &e.Manga.Description, &e.Manga.CoverURL,
			&e.Manga.Status, &e.Manga.Type, &genresJSON, &e.Manga.TotalChapters, &e.Manga.Rating, &e.Manga.RatingCount,
			&e.Manga.PublicationYear, &e.Manga.CreatedAt, &e.Manga.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan library entry: %w", err)
		}
		e.Manga.GenresJSON = genresJSON
		result = append(result, e)
	}
	return result, nil
}

func (r *repository) SetStatus(ctx context.Context, userID, mangaID, status string) error {
	now := time.Now()
	result, err := r.db.ExecContext(ctx,
		"UPDATE library_entries SET status = ?, last_updated = ? WHERE user_id = ? AND manga_id = ?",
		status, now, userID, mangaID,
	)
	if err != nil {
		return fmt.Errorf("update library status: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		_, err := r.Add(ctx, userID, mangaID, status)
		return err
	}
	return nil
}

func (r *repository) Stats(ctx context.Context, userID string) (*models.LibraryStats, error) {
	stats := &models.LibraryStats{ByStatus: make(map[string]int)}

	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM library_entries WHERE user_id = ?", userID).
		Scan(&stats.TotalManga); err != nil {
		return nil, fmt.Errorf("count library: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT status, COUNT(*) FROM library_entries WHERE user_id = ? GROUP BY status", userID)
	if err != nil {
		return nil, fmt.Errorf("library by status: %w", err)
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			rows.Close()
			return nil, err
		}
		stats.ByStatus[status] = count
	}
	rows.Close()

	if err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(p.current_chapter), 0)
		FROM progress_records p
		JOIN library_entries l ON l.user_id = p.user_id AND l.manga_id = p.manga_id
		WHERE p.user_id = ?`, userID).Scan(&stats.ChaptersRead); err != nil {
		return nil, fmt.Errorf("chapters read: %w", err)
	}

	if err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(AVG(r.value), 0)
		FROM ratings r
		JOIN library_entries l ON l.user_id = r.user_id AND l.manga_id = r.manga_id
		WHERE r.user_id = ?`, userID).Scan(&stats.AverageRating); err != nil {
		return nil, fmt.Errorf("average rating: %w", err)
	}

	return stats, nil
}
