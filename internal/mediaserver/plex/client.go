// Flickpick - Personalized Movie Recommendations for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flickpick

// Package plex is a thin client for the Plex Media Server API: it feeds the
// scoring engine watched and unwatched movies and applies labels to the
// finalized recommendations.
package plex

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/flickpick/internal/config"
)

// pageSize is the container size for paginated library fetches.
const pageSize = 200

// maxErrorBodySize caps how much of an error response body is read back for
// diagnostics.
const maxErrorBodySize = 64 * 1024

// Client talks to one Plex server.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  zerolog.Logger
}

// NewClient builds a Plex client from configuration.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewClient(cfg config.PlexConfig, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.URL,
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "plex").Logger(),
	}
}

// get executes an authenticated JSON GET and decodes into result.
func (c *Client) get(ctx context.Context, path string, query url.Values, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Plex-Token", c.token)
	req.Header.Set("Accept", "application/json")
	if len(query) > 0 {
		req.URL.RawQuery = query.Encode()
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("plex request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return fmt.Errorf("plex %s returned %d: %s", path, resp.StatusCode, string(body))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode plex response: %w", err)
		}
	}
	return nil
}

// put executes an authenticated PUT with query parameters and no body,
// Plex's convention for metadata edits.
func (c *Client) put(ctx context.Context, path string, query url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Plex-Token", c.token)
	req.URL.RawQuery = query.Encode()

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("plex request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return fmt.Errorf("plex %s returned %d: %s", path, resp.StatusCode, string(body))
	}
	return nil
}

// FindMovieSection resolves the configured movie library title to its
// section key.
//
// Endpoint: GET /library/sections
func (c *Client) FindMovieSection(ctx context.Context, title string) (string, error) {
	var resp sectionsResponse
	if err := c.get(ctx, "/library/sections", nil, &resp); err != nil {
		return "", err
	}
	for _, s := range resp.MediaContainer.Directory {
		if s.Type == "movie" && s.Title == title {
			return s.Key, nil
		}
	}
	return "", fmt.Errorf("movie library %q not found on plex server", title)
}

// GetMovies fetches every movie in the section, paginated, with external
// GUIDs included so records carry stable cross-service identifiers.
//
// Endpoint: GET /library/sections/{key}/all
func (c *Client) GetMovies(ctx context.Context, sectionKey string) ([]Movie, error) {
	var movies []Movie

	for start := 0; ; start += pageSize {
		query := url.Values{}
		query.Set("type", "1") // movies
		query.Set("includeGuids", "1")
		query.Set("X-Plex-Container-Start", strconv.Itoa(start))
		query.Set("X-Plex-Container-Size", strconv.Itoa(pageSize))

		var resp contentResponse
		if err := c.get(ctx, "/library/sections/"+sectionKey+"/all", query, &resp); err != nil {
			return nil, err
		}

		movies = append(movies, resp.MediaContainer.Metadata...)

		total := resp.MediaContainer.TotalSize
		if total == 0 {
			total = resp.MediaContainer.Size
		}
		if len(resp.MediaContainer.Metadata) == 0 || len(movies) >= total {
			break
		}
	}

	c.logger.Debug().Int("movies", len(movies)).Str("section", sectionKey).Msg("library fetched")
	return movies, nil
}

// ApplyLabel adds a label to a movie without disturbing existing labels.
//
// Endpoint: PUT /library/sections/{key}/all?type=1&id={ratingKey}
func (c *Client) ApplyLabel(ctx context.Context, sectionKey, ratingKey, label string, existing []string) error {
	query := url.Values{}
	query.Set("type", "1")
	query.Set("id", ratingKey)
	query.Set("label.locked", "1")

	idx := 0
	for _, l := range existing {
		query.Set(fmt.Sprintf("label[%d].tag.tag", idx), l)
		idx++
	}
	query.Set(fmt.Sprintf("label[%d].tag.tag", idx), label)

	return c.put(ctx, "/library/sections/"+sectionKey+"/all", query)
}

// RemoveLabel drops a label from a movie, keeping the others.
func (c *Client) RemoveLabel(ctx context.Context, sectionKey, ratingKey, label string, existing []string) error {
	query := url.Values{}
	query.Set("type", "1")
	query.Set("id", ratingKey)
	query.Set("label.locked", "1")
	query.Set("label[].tag.tag-", label)

	idx := 0
	for _, l := range existing {
		if l == label {
			continue
		}
		query.Set(fmt.Sprintf("label[%d].tag.tag", idx), l)
		idx++
	}

	return c.put(ctx, "/library/sections/"+sectionKey+"/all", query)
}
