// Flickpick - Personalized Movie Recommendations for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flickpick

// Package trakt is a thin client for the Trakt API: it uploads watch history
// so Trakt personalizes against current data, and fetches movie
// recommendations to augment the local scoring engine's output.
//
// All calls go through a circuit breaker and a client-side rate limiter;
// Trakt enforces per-token request budgets and a tripped breaker degrades the
// run to local-only recommendations instead of failing it.
package trakt

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/flickpick/internal/config"
)

const (
	// defaultBaseURL is the production Trakt API endpoint.
	defaultBaseURL = "https://api.trakt.tv"

	// apiVersion is the trakt-api-version header value.
	apiVersion = "2"

	// recommendationsPageSize is Trakt's maximum page size.
	recommendationsPageSize = 100

	// maxErrorBodySize caps error response bodies read for diagnostics.
	maxErrorBodySize = 64 * 1024
)

// IDs carries a movie's cross-service identifiers.
type IDs struct {
	Trakt int    `json:"trakt,omitempty"`
	IMDb  string `json:"imdb,omitempty"`
	TMDB  int    `json:"tmdb,omitempty"`
	Slug  string `json:"slug,omitempty"`
}

// Movie is Trakt's movie shape (extended=full adds rating/genres/language).
type Movie struct {
	Title    string   `json:"title"`
	Year     int      `json:"year"`
	IDs      IDs      `json:"ids"`
	Rating   float64  `json:"rating,omitempty"`
	Genres   []string `json:"genres,omitempty"`
	Language string   `json:"language,omitempty"`
	Overview string   `json:"overview,omitempty"`
}

// WatchedMovie is one history upload entry.
type WatchedMovie struct {
	Title     string    `json:"title"`
	Year      int       `json:"year,omitempty"`
	WatchedAt time.Time `json:"watched_at"`
	IDs       IDs       `json:"ids"`
}

// Client talks to the Trakt API for one configured account.
type Client struct {
	baseURL     string
	clientID    string
	accessToken string
	http        *http.Client
	breaker     *gobreaker.CircuitBreaker[[]byte]
	limiter     *rate.Limiter
	logger      zerolog.Logger
}

// NewClient builds a Trakt client from configuration.
//
// Circuit breaker: opens after 60% failures across at least 5 requests in a
// 1 minute window, half-opens after 2 minutes. Rate limiter: 3 requests per
// second, burst of 3, well under Trakt's documented budget.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewClient(cfg config.TraktConfig, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	log := logger.With().Str("component", "trakt").Logger()

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "trakt-api",
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("trakt circuit breaker state change")
		},
	})

	return &Client{
		baseURL:     defaultBaseURL,
		clientID:    cfg.ClientID,
		accessToken: cfg.AccessToken,
		http:        &http.Client{Timeout: timeout},
		breaker:     breaker,
		limiter:     rate.NewLimiter(rate.Every(time.Second/3), 3),
		logger:      log,
	}
}

// SetBaseURL overrides the API endpoint, for tests.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

// call executes one API request through the limiter and breaker, returning
// the response body.
func (c *Client) call(ctx context.Context, method, path string, payload, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("trakt rate limit wait: %w", err)
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		var reqBody io.Reader = http.NoBody
		if payload != nil {
			data, err := json.Marshal(payload)
			if err != nil {
				return nil, fmt.Errorf("marshal trakt payload: %w", err)
			}
			reqBody = bytes.NewReader(data)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("trakt-api-version", apiVersion)
		req.Header.Set("trakt-api-key", c.clientID)
		req.Header.Set("Authorization", "Bearer "+c.accessToken)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("trakt %s %s: %w", method, path, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
			return nil, fmt.Errorf("trakt %s returned %d: %s", path, resp.StatusCode, string(errBody))
		}

		return io.ReadAll(resp.Body)
	})
	if err != nil {
		return err
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("decode trakt response: %w", err)
		}
	}
	return nil
}

// syncPayload is the /sync/history request body.
type syncPayload struct {
	Movies []WatchedMovie `json:"movies"`
}

// syncResponse is the /sync/history response body.
type syncResponse struct {
	Added struct {
		Movies int `json:"movies"`
	} `json:"added"`
}

// SyncHistory uploads watched movies and returns how many Trakt accepted.
//
// Endpoint: POST /sync/history
func (c *Client) SyncHistory(ctx context.Context, movies []WatchedMovie) (int, error) {
	if len(movies) == 0 {
		return 0, nil
	}

	var resp syncResponse
	if err := c.call(ctx, http.MethodPost, "/sync/history", syncPayload{Movies: movies}, &resp); err != nil {
		return 0, err
	}

	c.logger.Info().Int("uploaded", len(movies)).Int("added", resp.Added.Movies).Msg("watch history synced")
	return resp.Added.Movies, nil
}

// historyEntry is one /sync/history/movies row.
type historyEntry struct {
	ID    int64 `json:"id"`
	Movie Movie `json:"movie"`
}

// ClearHistory removes every synced movie from the account's watch history.
//
// Endpoints: GET /sync/history/movies, POST /sync/history/remove
func (c *Client) ClearHistory(ctx context.Context) (int, error) {
	var ids []int64
	for page := 1; ; page++ {
		var entries []historyEntry
		path := "/sync/history/movies?limit=" + strconv.Itoa(recommendationsPageSize) +
			"&page=" + strconv.Itoa(page)
		if err := c.call(ctx, http.MethodGet, path, nil, &entries); err != nil {
			return 0, err
		}
		if len(entries) == 0 {
			break
		}
		for _, e := range entries {
			ids = append(ids, e.ID)
		}
	}

	if len(ids) == 0 {
		return 0, nil
	}

	payload := map[string][]int64{"ids": ids}
	if err := c.call(ctx, http.MethodPost, "/sync/history/remove", payload, nil); err != nil {
		return 0, err
	}

	c.logger.Info().Int("removed", len(ids)).Msg("watch history cleared")
	return len(ids), nil
}

// Recommendations fetches personalized movie recommendations, paging until
// limit entries are collected or Trakt runs out.
//
// Endpoint: GET /recommendations/movies?extended=full
func (c *Client) Recommendations(ctx context.Context, limit int) ([]Movie, error) {
	if limit <= 0 {
		return nil, nil
	}

	var collected []Movie
	for page := 1; len(collected) < limit; page++ {
		path := fmt.Sprintf("/recommendations/movies?extended=full&limit=%d&page=%d",
			recommendationsPageSize, page)

		var movies []Movie
		if err := c.call(ctx, http.MethodGet, path, nil, &movies); err != nil {
			return nil, err
		}
		if len(movies) == 0 {
			break
		}
		collected = append(collected, movies...)
	}

	if len(collected) > limit {
		collected = collected[:limit]
	}

	c.logger.Debug().Int("recommendations", len(collected)).Msg("trakt recommendations fetched")
	return collected, nil
}
