// Package chapter manages manga chapter releases, separate from the manga
// catalog entity itself (spec §3's Chapter type).
package chapter

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"mangahub/pkg/models"
)

type Repository interface {
	List(ctx context.Context, mangaID string, limit, offset int) ([]models.Chapter, int, error)
	GetByID(ctx context.Context, id string) (*models.Chapter, error)
	Create(ctx context.Context, mangaID string, req models.CreateChapterRequest) (*models.Chapter, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const chapterColumns = `id, manga_id, number, volume, title, language, source, published_at, pages, external_url, is_external`

func scanChapter(row interface{ Scan(...interface{}) error }) (*models.Chapter, error) {
	var c models.Chapter
	if err := row.Scan(
		&c.ID, &c.MangaID, &c.Number, &c.Volume, &c.Title, &c.Language,
		&c.Source, &c.PublishedAt, &c.PagesJSON, &c.ExternalURL, &c.IsExternal,
	); err != nil {
		return nil, err
	}
	if c.PagesJSON != "" {
		_ = json.Unmarshal([]byte(c.PagesJSON), &c.Pages)
	}
	return &c, nil
}

func (r *repository) List(ctx context.Context, mangaID string, limit, offset int) ([]models.Chapter, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chapters WHERE manga_id = ?", mangaID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count chapters: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM chapters WHERE manga_id = ? ORDER BY number ASC LIMIT ? OFFSET ?`, chapterColumns),
		mangaID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query chapters: %w", err)
	}
	defer rows.Close()

	var result []models.Chapter
	for rows.Next() {
		c, err := scanChapter(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan chapter: %w", err)
		}
		result = append(result, *c)
	}
	return result, total, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*models.Chapter, error) {
	row := r.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT %s FROM chapters WHERE id = ?`, chapterColumns), id)
	c, err := scanChapter(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrNotFoundf(models.ErrChapterNotFound)
		}
		return nil, fmt.Errorf("get chapter: %w", err)
	}
	return c, nil
}

func (r *repository) Create(ctx context.Context, mangaID string, req models.CreateChapterRequest) (*models.Chapter, error) {
	c := models.Chapter{
		ID:          uuid.New().String(),
		MangaID:     mangaID,
		Number:      req.Number,
		Volume:      req.Volume,
		Title:       req.Title,
		Language:    req.Language,
		Source:      req.Source,
		PublishedAt: time.Now(),
		Pages:       req.Pages,
		ExternalURL: req.ExternalURL,
		IsExternal:  req.IsExternal,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	pagesJSON, _ := json.Marshal(c.Pages)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chapters (id, manga_id, number, volume, title, language, source, published_at, pages, external_url, is_external)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.MangaID, c.Number, c.Volume, c.Title, c.Language, c.Source, c.PublishedAt,
		string(pagesJSON), c.ExternalURL, c.IsExternal,
	)
	if err != nil {
		return nil, fmt.Errorf("insert chapter: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		"UPDATE manga SET total_chapters = total_chapters + 1, updated_at = ? WHERE id = ?", time.Now(), mangaID)
	if err != nil {
		return nil, fmt.Errorf("bump total_chapters: %w", err)
	}

	return &c, nil
}
