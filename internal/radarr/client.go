// Flickpick - Personalized Movie Recommendations for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flickpick

// Package radarr submits acquisition requests for recommended movies that are
// missing from the library.
package radarr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/flickpick/internal/config"
)

// maxErrorBodySize caps error response bodies read for diagnostics.
const maxErrorBodySize = 64 * 1024

// Movie is Radarr's v3 API movie resource, reduced to the fields we set or
// inspect.
type Movie struct {
	ID               int64  `json:"id,omitempty"`
	Title            string `json:"title"`
	TitleSlug        string `json:"titleSlug,omitempty"`
	Year             int    `json:"year,omitempty"`
	TMDBID           int    `json:"tmdbId"`
	QualityProfileID int    `json:"qualityProfileId,omitempty"`
	RootFolderPath   string `json:"rootFolderPath,omitempty"`
	Monitored        bool   `json:"monitored"`
	HasFile          bool   `json:"hasFile,omitempty"`

	AddOptions *AddOptions `json:"addOptions,omitempty"`
}

// AddOptions controls Radarr's behavior when a movie is added.
type AddOptions struct {
	SearchForMovie bool `json:"searchForMovie"`
}

// Client talks to a Radarr v3 instance.
type Client struct {
	baseURL string
	apiKey  string
	cfg     config.RadarrConfig
	http    *http.Client
	logger  zerolog.Logger
}

// NewClient builds a Radarr client from configuration.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewClient(cfg config.RadarrConfig, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		cfg:     cfg,
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "radarr").Logger(),
	}
}

// do executes one API request and decodes the JSON response into result.
func (c *Client) do(ctx context.Context, method, path string, payload, result interface{}) error {
	var reqBody io.Reader = http.NoBody
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal radarr payload: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("radarr %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return fmt.Errorf("radarr %s returned %d: %s", path, resp.StatusCode, string(body))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode radarr response: %w", err)
		}
	}
	return nil
}

// Lookup resolves a TMDB ID to Radarr's movie resource, whether or not the
// movie is already managed.
//
// Endpoint: GET /api/v3/movie/lookup/tmdb?tmdbId={id}
func (c *Client) Lookup(ctx context.Context, tmdbID int) (*Movie, error) {
	if tmdbID <= 0 {
		return nil, fmt.Errorf("radarr lookup needs a tmdb id, got %d", tmdbID)
	}

	var movie Movie
	path := "/api/v3/movie/lookup/tmdb?tmdbId=" + url.QueryEscape(strconv.Itoa(tmdbID))
	if err := c.do(ctx, http.MethodGet, path, nil, &movie); err != nil {
		return nil, err
	}
	return &movie, nil
}

// Managed reports whether Radarr already tracks the movie with this TMDB ID.
//
// Endpoint: GET /api/v3/movie?tmdbId={id}
func (c *Client) Managed(ctx context.Context, tmdbID int) (bool, error) {
	var movies []Movie
	path := "/api/v3/movie?tmdbId=" + url.QueryEscape(strconv.Itoa(tmdbID))
	if err := c.do(ctx, http.MethodGet, path, nil, &movies); err != nil {
		return false, err
	}
	return len(movies) > 0, nil
}

// Add submits the movie for acquisition using the configured root folder and
// quality profile. Movies Radarr already manages are skipped.
//
// Endpoint: POST /api/v3/movie
func (c *Client) Add(ctx context.Context, tmdbID int) (*Movie, error) {
	managed, err := c.Managed(ctx, tmdbID)
	if err != nil {
		return nil, err
	}
	if managed {
		c.logger.Debug().Int("tmdb_id", tmdbID).Msg("movie already managed, skipping add")
		return nil, nil
	}

	movie, err := c.Lookup(ctx, tmdbID)
	if err != nil {
		return nil, err
	}

	movie.QualityProfileID = c.cfg.QualityProfileID
	movie.RootFolderPath = c.cfg.RootFolder
	movie.Monitored = c.cfg.Monitor
	movie.AddOptions = &AddOptions{SearchForMovie: c.cfg.SearchForMovie}

	var added Movie
	if err := c.do(ctx, http.MethodPost, "/api/v3/movie", movie, &added); err != nil {
		return nil, err
	}

	c.logger.Info().
		Str("title", added.Title).
		Int("tmdb_id", tmdbID).
		Bool("search", c.cfg.SearchForMovie).
		Msg("movie added to radarr")
	return &added, nil
}
