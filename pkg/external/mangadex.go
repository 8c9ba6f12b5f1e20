// Package external - MangaDex API client
// Used only as a remote-catalog fallback when the local store misses
// (spec §7 "Remote catalog failure", supplemented per SPEC_FULL §12).
//
// API docs: https://api.mangadex.org/docs/
package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"mangahub/pkg/config"
	"mangahub/pkg/models"
)

// RateLimiter is a token-bucket limiter shared across a client's requests.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64
	lastRefill time.Time
}

// NewRateLimiter creates a rate limiter admitting ratePerSecond requests/s.
func NewRateLimiter(ratePerSecond int) *RateLimiter {
	return &RateLimiter{
		tokens:     float64(ratePerSecond),
		maxTokens:  float64(ratePerSecond),
		refillRate: float64(ratePerSecond),
		lastRefill: time.Now(),
	}
}

// Wait blocks until a token is available or ctx is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		now := time.Now()
		elapsed := now.Sub(r.lastRefill).Seconds()
		r.tokens += elapsed * r.refillRate
		if r.tokens > r.maxTokens {
			r.tokens = r.maxTokens
		}
		r.lastRefill = now

		if r.tokens >= 1 {
			r.tokens--
			r.mu.Unlock()
			return nil
		}

		waitTime := time.Duration((1-r.tokens)/r.refillRate*1000) * time.Millisecond
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}
}

// MangaDexClient talks to the MangaDex REST API.
type MangaDexClient struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewMangaDexClient creates a new MangaDex API client.
func NewMangaDexClient(cfg config.MangaDexConfig) *MangaDexClient {
	return &MangaDexClient{
		baseURL:     cfg.BaseURL,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		rateLimiter: NewRateLimiter(cfg.RateLimit),
	}
}

type mangaDexSearchResponse struct {
	Data []mangaDexManga `json:"data"`
}

type mangaDexMangaResponse struct {
	Data mangaDexManga `json:"data"`
}

type mangaDexManga struct {
	ID            string                 `json:"id"`
	Attributes    mangaDexAttributes     `json:"attributes"`
	Relationships []mangaDexRelationship `json:"relationships"`
}

type mangaDexAttributes struct {
	Title       map[string]string `json:"title"`
	Description map[string]string `json:"description"`
	Status      string            `json:"status"`
	Year        int               `json:"year"`
	Tags        []mangaDexTag     `json:"tags"`
}

type mangaDexTag struct {
	Attributes struct {
		Name map[string]string `json:"name"`
	} `json:"attributes"`
}

type mangaDexRelationship struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

type mangaDexChapterResponse struct {
	Data []mangaDexChapter `json:"data"`
}

type mangaDexChapter struct {
	ID         string `json:"id"`
	Attributes struct {
		Volume             string `json:"volume"`
		Chapter            string `json:"chapter"`
		Title              string `json:"title"`
		TranslatedLanguage string `json:"translatedLanguage"`
		ExternalURL        string `json:"externalUrl"`
		PublishAt          string `json:"publishAt"`
		Pages              int    `json:"pages"`
	} `json:"attributes"`
}

// SearchManga queries MangaDex by title and returns results mapped into the
// catalog's own Manga shape, each id prefixed "md-" per spec §3.
func (c *MangaDexClient) SearchManga(ctx context.Context, query string, limit int) ([]models.Manga, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter cancelled: %w", err)
	}

	params := url.Values{}
	params.Set("title", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("includes[]", "cover_art")
	params.Set("includes[]", "author")

	var result mangaDexSearchResponse
	if err := c.get(ctx, fmt.Sprintf("%s/manga?%s", c.baseURL, params.Encode()), &result); err != nil {
		return nil, err
	}

	out := make([]models.Manga, 0, len(result.Data))
	for _, m := range result.Data {
		out = append(out, m.toManga())
	}
	return out, nil
}

// GetManga fetches one manga by its bare MangaDex uuid (no "md-" prefix).
func (c *MangaDexClient) GetManga(ctx context.Context, mangaID string) (*models.Manga, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter cancelled: %w", err)
	}

	params := url.Values{}
	params.Set("includes[]", "cover_art")
	params.Set("includes[]", "author")

	var result mangaDexMangaResponse
	if err := c.get(ctx, fmt.Sprintf("%s/manga/%s?%s", c.baseURL, mangaID, params.Encode()), &result); err != nil {
		return nil, err
	}
	manga := result.Data.toManga()
	return &manga, nil
}

// GetChapterList fetches chapters for a bare MangaDex manga id.
func (c *MangaDexClient) GetChapterList(ctx context.Context, mangaID string, limit, offset int, lang string) ([]models.Chapter, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter cancelled: %w", err)
	}

	params := url.Values{}
	params.Set("manga", mangaID)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))
	params.Set("order[chapter]", "asc")
	if lang != "" {
		params.Set("translatedLanguage[]", lang)
	}

	var result mangaDexChapterResponse
	if err := c.get(ctx, fmt.Sprintf("%s/chapter?%s", c.baseURL, params.Encode()), &result); err != nil {
		return nil, err
	}

	out := make([]models.Chapter, 0, len(result.Data))
	for _, ch := range result.Data {
		num, _ := strconv.ParseFloat(ch.Attributes.Chapter, 64)
		publishedAt, _ := time.Parse(time.RFC3339, ch.Attributes.PublishAt)
		c := models.Chapter{
			ID:          fmt.Sprintf("md-%s", ch.ID),
			MangaID:     fmt.Sprintf("md-%s", mangaID),
			Number:      num,
			Title:       ch.Attributes.Title,
			Language:    ch.Attributes.TranslatedLanguage,
			Source:      "mangadex",
			PublishedAt: publishedAt,
			ExternalURL: ch.Attributes.ExternalURL,
			IsExternal:  ch.Attributes.ExternalURL != "",
		}
		out = append(out, c)
	}
	return out, nil
}

func (c *MangaDexClient) get(ctx context.Context, reqURL string, out interface{}) error {
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
		return fmt.Errorf("mangadex API error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// toManga maps a MangaDex record into the catalog's Manga shape.
func (m *mangaDexManga) toManga() models.Manga {
	title := m.Attributes.Title["en"]
	if title == "" {
		for _, t := range m.Attributes.Title {
			title = t
			break
		}
	}

	description := m.Attributes.Description["en"]

	var genres []string
	for _, tag := range m.Attributes.Tags {
		if name, ok := tag.Attributes.Name["en"]; ok {
			genres = append(genres, name)
		}
	}
	if len(genres) == 0 {
		genres = []string{"unknown"}
	}

	coverURL := ""
	var authors string
	for _, rel := range m.Relationships {
		switch rel.Type {
		case "cover_art":
			if fileName, ok := rel.Attributes["fileName"].(string); ok {
				coverURL = GetCoverURL(m.ID, fileName, "")
			}
		case "author", "artist":
			if name, ok := rel.Attributes["name"].(string); ok {
				if authors != "" {
					authors += ", "
				}
				authors += name
			}
		}
	}

	status := models.MangaStatusOngoing
	switch m.Attributes.Status {
	case "completed":
		status = models.MangaStatusCompleted
	case "hiatus":
		status = models.MangaStatusHiatus
	case "cancelled":
		status = models.MangaStatusCancelled
	}

	return models.Manga{
		ID:              fmt.Sprintf("md-%s", m.ID),
		Title:           title,
		Author:          authors,
		Description:     description,
		CoverURL:        coverURL,
		Status:          status,
		Type:            "manga",
		Genres:          genres,
		PublicationYear: m.Attributes.Year,
		Source:          "mangadex",
	}
}

// GetCoverURL builds a MangaDex cover image URL. size is "256", "512", or
// empty for the original.
func GetCoverURL(mangaID, coverFileName string, size string) string {
	if size != "" {
		return fmt.Sprintf("https://uploads.mangadex.org/covers/%s/%s.%s.jpg", mangaID, coverFileName, size)
	}
	return fmt.Sprintf("https://uploads.mangadex.org/covers/%s/%s", mangaID, coverFileName)
}
