// Package external - remote catalog fallback chain
// Consulted by the manga service only on a local-store miss (spec §7's
// "Remote catalog failure" row) — never as a bulk ingestion pipeline.
package external

import (
	"context"

	"mangahub/pkg/config"
	"mangahub/pkg/logger"
	"mangahub/pkg/models"
)

// FallbackCatalog wraps the MangaDex and Jikan/MAL clients. Search merges
// both providers' results; Get and Chapters consult the one provider named
// by the id prefix.
type FallbackCatalog struct {
	mangadex *MangaDexClient
	jikan    *JikanClient
}

// NewFallbackCatalog builds the fallback chain from configuration.
func NewFallbackCatalog(cfg config.ExternalConfig) *FallbackCatalog {
	return &FallbackCatalog{
		mangadex: NewMangaDexClient(cfg.MangaDex),
		jikan:    NewJikanClient(cfg.Jikan),
	}
}

// Search queries both providers and merges results, MangaDex first.
func (f *FallbackCatalog) Search(ctx context.Context, query string, limit int) []models.Manga {
	var out []models.Manga
	if results, err := f.mangadex.SearchManga(ctx, query, limit); err != nil {
		logger.Warnf("mangadex fallback search failed: %v", err)
	} else {
		out = append(out, results...)
	}
	if results, err := f.jikan.SearchManga(ctx, query, limit); err != nil {
		logger.Warnf("jikan fallback search failed: %v", err)
	} else {
		out = append(out, results...)
	}
	return out
}

// Get resolves a single manga by its prefixed id ("md-..." or "mal-...").
// Only the provider named by the prefix is consulted. Returns
// models.ErrMangaNotFound if id carries neither recognized prefix or that
// provider answers 404.
func (f *FallbackCatalog) Get(ctx context.Context, id string) (*models.Manga, error) {
	switch {
	case len(id) > 3 && id[:3] == "md-":
		return f.mangadex.GetManga(ctx, id[3:])
	case len(id) > 4 && id[:4] == "mal-":
		return f.jikan.GetManga(ctx, id[4:])
	default:
		return nil, models.ErrMangaNotFound
	}
}

// Chapters resolves a MangaDex chapter list for a prefixed manga id; Jikan
// has no chapter-level API so non-"md-" ids return no chapters.
func (f *FallbackCatalog) Chapters(ctx context.Context, mangaID string, limit, offset int) ([]models.Chapter, error) {
	if len(mangaID) > 3 && mangaID[:3] == "md-" {
		return f.mangadex.GetChapterList(ctx, mangaID[3:], limit, offset, "")
	}
	return nil, nil
}
