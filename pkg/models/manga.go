package models

import (
	"strings"
	"time"
)

// Manga statuses, per the catalog invariant.
const (
	MangaStatusOngoing   = "ongoing"
	MangaStatusCompleted = "completed"
	MangaStatusHiatus    = "hiatus"
	MangaStatusDropped    = "dropped"
	MangaStatusCancelled = "cancelled"
)

var validMangaStatuses = map[string]bool{
	MangaStatusOngoing:   true,
	MangaStatusCompleted: true,
	MangaStatusHiatus:    true,
	MangaStatusDropped:    true,
	MangaStatusCancelled: true,
}

// IsValidMangaStatus reports whether s is one of the enumerated statuses.
func IsValidMangaStatus(s string) bool {
	return validMangaStatuses[s]
}

// Manga represents a catalog entry. Id may carry an external-source prefix
// (e.g. "md-<uuid>", "mal-<id>") when it originates from a remote fallback.
type Manga struct {
	ID            string    `json:"id" db:"id"`
	Title         string    `json:"title" db:"title" validate:"required"`
	Author        string    `json:"author" db:"author"`
	Artist        string    `json:"artist" db:"artist"`
	Description   string    `json:"description" db:"description"`
	CoverURL      string    `json:"cover_url" db:"cover_url"`
	Status        string    `json:"status" db:"status"`
	Type          string    `json:"type" db:"type"`
	Genres        []string  `json:"genres" db:"-"`
	GenresJSON    string    `json:"-" db:"genres"`
	TotalChapters int       `json:"total_chapters" db:"total_chapters"`
	Rating        float64   `json:"rating" db:"rating"`
	RatingCount   int       `json:"rating_count" db:"rating_count"`
	PublicationYear int     `json:"publication_year" db:"publication_year"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`

	// Source is set on remote-fallback results only ("mangadex", "jikan"); empty
	// for locally-stored manga.
	Source string `json:"source,omitempty" db:"-"`
}

// Validate enforces the catalog invariants: non-empty title, at least one
// genre, a recognized status, and an absolute http(s) cover_url when present.
func (m *Manga) Validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return ErrValidation("title is required")
	}
	if len(m.Genres) == 0 {
		return ErrValidation("at least one genre is required")
	}
	if m.Status == "" {
		m.Status = MangaStatusOngoing
	}
	if !IsValidMangaStatus(m.Status) {
		return ErrValidation("invalid status: " + m.Status)
	}
	if m.CoverURL != "" && !strings.HasPrefix(m.CoverURL, "http://") && !strings.HasPrefix(m.CoverURL, "https://") {
		return ErrValidation("cover_url must be an absolute http(s) URL")
	}
	return nil
}

// MangaSearchRequest represents catalog search/filter parameters.
type MangaSearchRequest struct {
	Query  string   `json:"query" form:"query"`
	Genres []string `json:"genres" form:"genres"`
	Status string   `json:"status" form:"status"`
	Type   string   `json:"type" form:"type"`
	Limit  int      `json:"limit" form:"limit"`
	Offset int      `json:"offset" form:"offset"`
	SortBy string   `json:"sort_by" form:"sort_by"` // title, rating, year
	Order  string   `json:"order" form:"order"`     // asc, desc
}

// MangaListResponse represents paginated manga results.
type MangaListResponse struct {
	Data    []Manga `json:"data"`
	Total   int     `json:"total"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
	HasMore bool    `json:"has_more"`
}

// ValidateMangaSearch normalizes paging parameters in place.
func ValidateMangaSearch(req *MangaSearchRequest) error {
	if req.Limit <= 0 {
		req.Limit = 20
	}
	if req.Limit > 100 {
		req.Limit = 100
	}
	if req.Offset < 0 {
		req.Offset = 0
	}
	return nil
}

// CreateMangaRequest is the admin-only catalog create/update intent.
type CreateMangaRequest struct {
	Title           string   `json:"title" validate:"required"`
	Author          string   `json:"author"`
	Artist          string   `json:"artist"`
	Description     string   `json:"description"`
	CoverURL        string   `json:"cover_url"`
	Status          string   `json:"status"`
	Type            string   `json:"type"`
	Genres          []string `json:"genres" validate:"required,min=1"`
	PublicationYear int      `json:"publication_year"`
}

// MangaStats is the aggregate surfaced by GET /manga/stats.
type MangaStats struct {
	TotalManga    int            `json:"total_manga"`
	TotalChapters int            `json:"total_chapters"`
	ByStatus      map[string]int `json:"by_status"`
	ByType        map[string]int `json:"by_type"`
}

// Chapter is a single release of a Manga.
type Chapter struct {
	ID            string    `json:"id" db:"id"`
	MangaID       string    `json:"manga_id" db:"manga_id"`
	Number        float64   `json:"number" db:"number"`
	Volume        *int      `json:"volume,omitempty" db:"volume"`
	Title         string    `json:"title" db:"title"`
	Language      string    `json:"language" db:"language"`
	Source        string    `json:"source" db:"source"`
	PublishedAt   time.Time `json:"published_at" db:"published_at"`
	Pages         []string  `json:"pages" db:"-"`
	PagesJSON     string    `json:"-" db:"pages"`
	ExternalURL   string    `json:"external_url,omitempty" db:"external_url"`
	IsExternal    bool      `json:"is_external" db:"is_external"`
}

// Validate enforces that external chapters carry no pages and a target URL.
func (c *Chapter) Validate() error {
	if c.IsExternal {
		c.Pages = nil
		if strings.TrimSpace(c.ExternalURL) == "" {
			return ErrValidation("external_url is required for an external chapter")
		}
	}
	return nil
}

// ChapterListResponse is the GET /manga/:id/chapters shape.
type ChapterListResponse struct {
	Data   []Chapter `json:"data"`
	Total  int       `json:"total"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
}

// CreateChapterRequest is the admin-only chapter-release intent.
type CreateChapterRequest struct {
	Number      float64  `json:"number" validate:"required"`
	Volume      *int     `json:"volume"`
	Title       string   `json:"title"`
	Language    string   `json:"language" validate:"required"`
	Source      string   `json:"source"`
	Pages       []string `json:"pages"`
	ExternalURL string   `json:"external_url"`
	IsExternal  bool     `json:"is_external"`
}
