// Flickpick - Personalized Movie Recommendations for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flickpick

// Package tautulli is a thin client for Tautulli's v2 API. When configured,
// it replaces Plex view counts as the watch-history feed, which preserves
// history for managed users and survives Plex database resets.
package tautulli

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

// historyPageSize is how many records each get_history call requests.
const historyPageSize = 500

// maxErrorBodySize caps error response bodies read for diagnostics.
const maxErrorBodySize = 64 * 1024

// HistoryRecord is one watched-movie history row.
type HistoryRecord struct {
	RatingKey string
	Title     string
	Year      int
	User      string

	// WatchedStatus is Tautulli's completion marker: 1 fully watched,
	// 0.5 partially, 0 barely started.
	WatchedStatus float64
}

// historyRow is the wire form of one get_history row. Tautulli sends
// rating_key as a JSON number and watched_status as a fraction.
type historyRow struct {
	RatingKey     json.Number `json:"rating_key"`
	Title         string      `json:"title"`
	Year          int         `json:"year"`
	User          string      `json:"user"`
	WatchedStatus float64     `json:"watched_status"`
}

// historyEnvelope is the get_history response envelope.
type historyEnvelope struct {
	Response struct {
		Result  string `json:"result"`
		Message string `json:"message"`
		Data    struct {
			RecordsFiltered int          `json:"recordsFiltered"`
			Data            []historyRow `json:"data"`
		} `json:"data"`
	} `json:"response"`
}

// Client talks to one Tautulli instance.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  zerolog.Logger
}

// NewClient builds a Tautulli client from configuration.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewClient(cfg config.TautulliConfig, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.URL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "tautulli").Logger(),
	}
}

// apiCall executes a Tautulli v2 API command and decodes the envelope.
func (c *Client) apiCall(ctx context.Context, cmd string, params url.Values, result interface{}) error {
	query := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			query.Add(k, v)
		}
	}
	query.Set("apikey", c.apiKey)
	query.Set("cmd", cmd)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v2", http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.URL.RawQuery = query.Encode()

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("tautulli %s: %w", cmd, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return fmt.Errorf("tautulli %s returned %d: %s", cmd, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode tautulli response: %w", err)
	}
	return nil
}

// Ping verifies connectivity and the API key.
func (c *Client) Ping(ctx context.Context) error {
	var resp struct {
		Response struct {
			Result string `json:"result"`
		} `json:"response"`
	}
	if err := c.apiCall(ctx, "status", nil, &resp); err != nil {
		return err
	}
	if resp.Response.Result != "success" {
		return fmt.Errorf("tautulli status result %q", resp.Response.Result)
	}
	return nil
}

// GetWatchedMovies pages through get_history for the given user (empty means
// all users) and returns rows marked fully watched.
//
// Endpoint: GET /api/v2?cmd=get_history&media_type=movie
func (c *Client) GetWatchedMovies(ctx context.Context, user string) ([]HistoryRecord, error) {
	var records []HistoryRecord

	for start := 0; ; start += historyPageSize {
		params := url.Values{}
		params.Set("media_type", "movie")
		params.Set("length", strconv.Itoa(historyPageSize))
		params.Set("start", strconv.Itoa(start))
		if user != "" {
			params.Set("user", user)
		}

		var resp historyEnvelope
		if err := c.apiCall(ctx, "get_history", params, &resp); err != nil {
			return nil, err
		}
		if resp.Response.Result != "success" {
			return nil, fmt.Errorf("tautulli get_history: %s", resp.Response.Message)
		}

		rows := resp.Response.Data.Data
		for _, row := range rows {
			if row.WatchedStatus < 1 {
				continue
			}
			records = append(records, HistoryRecord{
				RatingKey:     row.RatingKey.String(),
				Title:         row.Title,
				Year:          row.Year,
				User:          row.User,
				WatchedStatus: row.WatchedStatus,
			})
		}

		if len(rows) == 0 || start+len(rows) >= resp.Response.Data.RecordsFiltered {
			break
		}
	}

	c.logger.Debug().Str("user", user).Int("records", len(records)).Msg("watch history fetched")
	return records, nil
}
