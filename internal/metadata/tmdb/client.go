// Flickpick - Personalized Movie Recommendations for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flickpick

// Package tmdb enriches movie records with plot keywords from The Movie
// Database. Keywords are the highest-weighted similarity category, so a run
// with TMDB enabled scores noticeably sharper than genre/cast alone.
package tmdb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/flickpick/internal/config"
)

const (
	// defaultBaseURL is the production TMDB v3 API endpoint.
	defaultBaseURL = "https://api.themoviedb.org/3"

	// maxErrorBodySize caps error response bodies read for diagnostics.
	maxErrorBodySize = 64 * 1024
)

// Client fetches movie metadata from TMDB.
//
// Lookups are memoized for the lifetime of the client so a movie appearing in
// both history and candidates costs one request. TMDB permits ~40 requests
// per 10 seconds; the limiter stays under that.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
	logger  zerolog.Logger

	mu          sync.Mutex
	keywordMemo map[int][]string
	findMemo    map[string]int
}

// NewClient builds a TMDB client from configuration.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewClient(cfg config.TMDBConfig, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL:     defaultBaseURL,
		apiKey:      cfg.APIKey,
		http:        &http.Client{Timeout: timeout},
		limiter:     rate.NewLimiter(rate.Every(time.Second/3), 3),
		logger:      logger.With().Str("component", "tmdb").Logger(),
		keywordMemo: make(map[int][]string),
		findMemo:    make(map[string]int),
	}
}

// SetBaseURL overrides the API endpoint, for tests.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

// get executes one API request and decodes the JSON response.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("tmdb rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+path+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("tmdb GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return fmt.Errorf("tmdb %s returned %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode tmdb response: %w", err)
	}
	return nil
}

// findResponse is the /find/{id} response shape.
type findResponse struct {
	MovieResults []struct {
		ID int `json:"id"`
	} `json:"movie_results"`
}

// FindByIMDbID resolves an IMDb identifier (tt-prefixed) to a TMDB movie ID.
// Returns 0 when TMDB has no match.
//
// Endpoint: GET /find/{imdb_id}?external_source=imdb_id
func (c *Client) FindByIMDbID(ctx context.Context, imdbID string) (int, error) {
	if imdbID == "" {
		return 0, nil
	}

	c.mu.Lock()
	if id, ok := c.findMemo[imdbID]; ok {
		c.mu.Unlock()
		return id, nil
	}
	c.mu.Unlock()

	params := url.Values{}
	params.Set("external_source", "imdb_id")

	var resp findResponse
	if err := c.get(ctx, "/find/"+url.PathEscape(imdbID), params, &resp); err != nil {
		return 0, err
	}

	id := 0
	if len(resp.MovieResults) > 0 {
		id = resp.MovieResults[0].ID
	}

	c.mu.Lock()
	c.findMemo[imdbID] = id
	c.mu.Unlock()

	return id, nil
}

// keywordsResponse is the /movie/{id}/keywords response shape.
type keywordsResponse struct {
	Keywords []struct {
		Name string `json:"name"`
	} `json:"keywords"`
}

// Keywords fetches plot keywords for a TMDB movie ID.
//
// Endpoint: GET /movie/{id}/keywords
func (c *Client) Keywords(ctx context.Context, tmdbID int) ([]string, error) {
	if tmdbID <= 0 {
		return nil, nil
	}

	c.mu.Lock()
	if kw, ok := c.keywordMemo[tmdbID]; ok {
		c.mu.Unlock()
		return kw, nil
	}
	c.mu.Unlock()

	var resp keywordsResponse
	if err := c.get(ctx, "/movie/"+strconv.Itoa(tmdbID)+"/keywords", nil, &resp); err != nil {
		return nil, err
	}

	keywords := make([]string, 0, len(resp.Keywords))
	for _, k := range resp.Keywords {
		keywords = append(keywords, k.Name)
	}

	c.mu.Lock()
	c.keywordMemo[tmdbID] = keywords
	c.mu.Unlock()

	return keywords, nil
}
