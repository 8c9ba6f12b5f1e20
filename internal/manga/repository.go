package manga

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"mangahub/pkg/models"
)

type Repository interface {
	List(ctx context.Context, req models.MangaSearchRequest) ([]models.Manga, int, error)
	GetByID(ctx context.Context, id string) (*models.Manga, error)
	Create(ctx context.Context, req models.CreateMangaRequest) (*models.Manga, error)
	Popular(ctx context.Context, limit int) ([]models.Manga, error)
	Stats(ctx context.Context) (*models.MangaStats, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const mangaColumns = `id, title, author, artist, description, cover_url, status, type,
	       genres, total_chapters, average_rating, rating_count, publication_year, created_at, updated_at`

func scanManga(row interface{ Scan(...interface{}) error }) (*models.Manga, error) {
	var m models.Manga
	if err := row.Scan(
		&m.ID, &m.Title, &m.Author, &m.Artist, &m.Description, &m.CoverURL,
		&m.Status, &m.Type, &m.GenresJSON, &m.TotalChapters, &m.Rating, &m.RatingCount,
		&m.PublicationYear, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if m.GenresJSON != "" {
		_ = json.Unmarshal([]byte(m.GenresJSON), &m.Genres)
	}
	return &m, nil
}

func (r *repository) List(ctx context.Context, req models.MangaSearchRequest) ([]models.Manga, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if req.Query != "" {
		conditions = append(conditions, "(title LIKE ? OR author LIKE ?)")
		q := "%" + req.Query + "%"
		args = append(args, q, q)
	}
	if req.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, req.Status)
	}
	if req.Type != "" {
		conditions = append(conditions, "type = ?")
		args = append(args, req.Type)
	}
	for _, g := range req.Genres {
		conditions = append(conditions, "genres LIKE ?")
		args = append(args, "%\""+g+"\"%")
	}

	where := strings.Join(conditions, " AND ")

	countSQL := "SELECT COUNT(*) FROM manga WHERE " + where
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count manga: %w", err)
	}

	orderBy := "title ASC"
	switch req.SortBy {
	case "rating":
		orderBy = "average_rating DESC"
	case "year":
		orderBy = "publication_year DESC"
	}
	if strings.EqualFold(req.Order, "asc") && req.SortBy != "" {
		orderBy = strings.Replace(orderBy, "DESC", "ASC", 1)
	}

	listSQL := fmt.Sprintf(`SELECT %s FROM manga WHERE %s ORDER BY %s LIMIT ? OFFSET ?`, mangaColumns, where, orderBy)

	argsWithPaging := append(append([]interface{}{}, args...), req.Limit, req.Offset)

	rows, err := r.db.QueryContext(ctx, listSQL, argsWithPaging...)
	if err != nil {
		return nil, 0, fmt.Errorf("query manga: %w", err)
	}
	defer rows.Close()

	var result []models.Manga
	for rows.Next() {
		m, err := scanManga(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan manga: %w", err)
		}
		result = append(result, *m)
	}

	return result, total, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*models.Manga, error) {
	row := r.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT %s FROM manga WHERE id = ?`, mangaColumns), id)

	m, err := scanManga(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.NewAppError(models.ErrCodeNotFound, "manga not found", 404, models.ErrMangaNotFound)
		}
		return nil, fmt.Errorf("get manga: %w", err)
	}
	return m, nil
}

func (r *repository) Create(ctx context.Context, req models.CreateMangaRequest) (*models.Manga, error) {
	m := models.Manga{
		ID:              uuid.New().String(),
		Title:           req.Title,
		Author:          req.Author,
		Artist:          req.Artist,
		Description:     req.Description,
		CoverURL:        req.CoverURL,
		Status:          req.Status,
		Type:            req.Type,
		Genres:          req.Genres,
		PublicationYear: req.PublicationYear,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	genresJSON, _ := json.Marshal(m.Genres)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO manga (id, title, author, artist, description, cover_url, status, type, genres, total_chapters, average_rating, rating_count, publication_year, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, 0.0, 0, ?, ?, ?)`,
		m.ID, m.Title, m.Author, m.Artist, m.Description, m.CoverURL,
		m.Status, m.Type, string(genresJSON), m.PublicationYear, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert manga: %w", err)
	}
	m.CreatedAt, m.UpdatedAt = now, now
	return &m, nil
}

func (r *repository) Popular(ctx context.Context, limit int) ([]models.Manga, error) {
	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM manga WHERE rating_count > 0 ORDER BY average_rating DESC, rating_count DESC LIMIT ?`, mangaColumns),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query popular manga: %w", err)
	}
	defer rows.Close()

	var result []models.Manga
	for rows.Next() {
		m, err := scanManga(rows)
		if err != nil {
			return nil, fmt.Errorf("scan manga: %w", err)
		}
		result = append(result, *m)
	}
	return result, nil
}

func (r *repository) Stats(ctx context.Context) (*models.MangaStats, error) {
	stats := &models.MangaStats{
		ByStatus: make(map[string]int),
		ByType:   make(map[string]int),
	}

	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*), COALESCE(SUM(total_chapters), 0) FROM manga").
		Scan(&stats.TotalManga, &stats.TotalChapters); err != nil {
		return nil, fmt.Errorf("stats totals: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM manga GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("stats by status: %w", err)
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

	rows, err = r.db.QueryContext(ctx, "SELECT type, COUNT(*) FROM manga GROUP BY type")
	if err != nil {
		return nil, fmt.Errorf("stats by type: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var mtype string
		var count int
		if err := rows.Scan(&mtype, &count); err != nil {
			return nil, err
		}
		stats.ByType[mtype] = count
	}

	return stats, nil
}
