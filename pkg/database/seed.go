package database

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"mangahub/pkg/models"
	"mangahub/pkg/utils"
)

// Seed populates an empty database with an admin user and a handful of
// catalog entries, so the gateway has something to serve on first run.
func (db *DB) Seed() error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM manga").Scan(&count); err != nil {
		return fmt.Errorf("failed to check seed status: %w", err)
	}
	if count > 0 {
		return nil
	}

	if err := db.seedAdminUser(); err != nil {
		return err
	}
	if err := db.seedDefaultManga(); err != nil {
		return err
	}
	return nil
}

func (db *DB) seedAdminUser() error {
	hash, err := utils.HashPassword("admin123")
	if err != nil {
		return err
	}

	user := models.User{
		ID:           uuid.New().String(),
		Username:     "admin",
		Email:        "admin@mangahub.local",
		PasswordHash: hash,
		DisplayName:  "Administrator",
		Role:         "admin",
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	_, err = db.Exec(`
		INSERT INTO users (id, username, email, password_hash, display_name, role, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.DisplayName,
		user.Role, user.IsActive, user.CreatedAt, user.UpdatedAt,
	)
	return err
}

func (db *DB) seedDefaultManga() error {
	defaultManga := []models.Manga{
		{
			ID:              uuid.New().String(),
			Title:           "One Piece",
			Author:          "Eiichiro Oda",
			Artist:          "Eiichiro Oda",
			Description:     "Monkey D. Luffy and his Straw Hat Pirates search for the ultimate treasure known as One Piece.",
			CoverURL:        "https://example.com/one-piece.jpg",
			Status:          models.MangaStatusOngoing,
			Type:            "manga",
			Genres:          []string{models.GenreAction, models.GenreAdventure, models.GenreFantasy},
			TotalChapters:   1100,
			PublicationYear: 1997,
		},
		{
			ID:              uuid.New().String(),
			Title:           "Attack on Titan",
			Author:          "Hajime Isayama",
			Artist:          "Hajime Isayama",
			Description:     "Humanity lives inside cities surrounded by walls that protect them from man-eating giants.",
			CoverURL:        "https://example.com/aot.jpg",
			Status:          models.MangaStatusCompleted,
			Type:            "manga",
			Genres:          []string{models.GenreAction, models.GenreDrama, models.GenreHorror},
			TotalChapters:   139,
			PublicationYear: 2009,
		},
		{
			ID:              uuid.New().String(),
			Title:           "Solo Leveling",
			Author:          "Chugong",
			Artist:          "DUBU",
			Description:     "In a world of monster-hunters, the weakest hunter becomes the strongest through a mysterious leveling system.",
			CoverURL:        "https://example.com/solo-leveling.jpg",
			Status:          models.MangaStatusCompleted,
			Type:            "manhwa",
			Genres:          []string{models.GenreAction, models.GenreFantasy, models.GenreAdventure},
			TotalChapters:   179,
			PublicationYear: 2018,
		},
	}

	now := time.Now()
	for _, manga := range defaultManga {
		genresJSON, _ := json.Marshal(manga.Genres)
		_, err := db.Exec(`
			INSERT INTO manga (id, title, author, artist, description, cover_url, status, type, genres, total_chapters, average_rating, rating_count, publication_year, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			manga.ID, manga.Title, manga.Author, manga.Artist, manga.Description,
			manga.CoverURL, manga.Status, manga.Type, string(genresJSON),
			manga.TotalChapters, 0.0, 0, manga.PublicationYear, now, now,
		)
		if err != nil {
			return err
		}
	}

	return nil
}
