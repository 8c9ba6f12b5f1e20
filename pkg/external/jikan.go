// Package external - Jikan API client (MyAnimeList, unofficial)
// Used only as a remote-catalog fallback when the local store misses
// (spec §7 "Remote catalog failure", supplemented per SPEC_FULL §12).
//
// API docs: https://docs.api.jikan.moe/
package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"mangahub/pkg/config"
	"mangahub/pkg/models"
)

// JikanClient talks to the Jikan REST API.
type JikanClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewJikanClient creates a new Jikan API client.
func NewJikanClient(cfg config.JikanConfig) *JikanClient {
	return &JikanClient{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type jikanMangaResponse struct {
	Data jikanMangaData `json:"data"`
}

type jikanSearchResponse struct {
	Data []jikanMangaData `json:"data"`
}

type jikanMangaData struct {
	MalID      int          `json:"mal_id"`
	Title      string       `json:"title"`
	Type       string       `json:"type"`
	Chapters   int          `json:"chapters"`
	Status     string       `json:"status"`
	Score      float64      `json:"score"`
	ScoredBy   int          `json:"scored_by"`
	Synopsis   string       `json:"synopsis"`
	Authors    []jikanNamed `json:"authors"`
	Genres     []jikanNamed `json:"genres"`
	Themes     []jikanNamed `json:"themes"`
	Images     jikanImages  `json:"images"`
	Published  jikanPublished `json:"published"`
}

type jikanNamed struct {
	Name string `json:"name"`
}

type jikanImages struct {
	JPG struct {
		LargeImageURL string `json:"large_image_url"`
	} `json:"jpg"`
}

type jikanPublished struct {
	From string `json:"from"`
}

// SearchManga queries Jikan by title and returns results mapped into the
// catalog's own Manga shape, each id prefixed "mal-" per spec §3's
// "opaque string, may carry an external-source prefix".
func (c *JikanClient) SearchManga(ctx context.Context, query string, limit int) ([]models.Manga, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("sfw", "true")

	var result jikanSearchResponse
	if err := c.get(ctx, fmt.Sprintf("%s/manga?%s", c.baseURL, params.Encode()), &result); err != nil {
		return nil, err
	}

	out := make([]models.Manga, 0, len(result.Data))
	for _, m := range result.Data {
		out = append(out, m.toManga())
	}
	return out, nil
}

// GetManga fetches one manga by its bare MAL id (no "mal-" prefix).
func (c *JikanClient) GetManga(ctx context.Context, malID string) (*models.Manga, error) {
	var result jikanMangaResponse
	if err := c.get(ctx, fmt.Sprintf("%s/manga/%s/full", c.baseURL, malID), &result); err != nil {
		return nil, err
	}
	manga := result.Data.toManga()
	return &manga, nil
}

func (c *JikanClient) get(ctx context.Context, reqURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return models.ErrMangaNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("jikan API error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// toManga maps a Jikan record into the catalog's Manga shape. MAL's 0-10
// Score is carried through as-is; the catalog's own rating aggregate
// (derived from local Rating rows) takes precedence once the manga is
// adopted locally.
func (m *jikanMangaData) toManga() models.Manga {
	var genres []string
	for _, g := range m.Genres {
		genres = append(genres, g.Name)
	}
	for _, t := range m.Themes {
		genres = append(genres, t.Name)
	}
	if len(genres) == 0 {
		genres = []string{"unknown"}
	}

	var authors string
	for i, a := range m.Authors {
		if i > 0 {
			authors += ", "
		}
		authors += a.Name
	}

	status := models.MangaStatusOngoing
	switch m.Status {
	case "Finished":
		status = models.MangaStatusCompleted
	case "On Hiatus":
		status = models.MangaStatusHiatus
	case "Discontinued":
		status = models.MangaStatusDropped
	}

	year := 0
	if len(m.Published.From) >= 4 {
		if y, err := strconv.Atoi(m.Published.From[:4]); err == nil {
			year = y
		}
	}

	return models.Manga{
		ID:              fmt.Sprintf("mal-%d", m.MalID),
		Title:           m.Title,
		Author:          authors,
		Description:     m.Synopsis,
		CoverURL:        m.Images.JPG.LargeImageURL,
		Status:          status,
		Type:            "manga",
		Genres:          genres,
		TotalChapters:   m.Chapters,
		Rating:          m.Score,
		RatingCount:     m.ScoredBy,
		PublicationYear: year,
		Source:          "jikan",
	}
}
