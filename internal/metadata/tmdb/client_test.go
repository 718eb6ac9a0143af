// Flickpick - Personalized Movie Recommendations for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flickpick

package tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/flickpick/internal/config"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(config.TMDBConfig{
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	}, zerolog.Nop())
	c.SetBaseURL(srv.URL)
	return c
}

func TestFindByIMDbID(t *testing.T) {
	calls := 0
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/find/tt0113277" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("external_source") != "imdb_id" {
			t.Errorf("external_source = %q", r.URL.Query().Get("external_source"))
		}
		if r.URL.Query().Get("api_key") != "test-key" {
			t.Errorf("api_key = %q", r.URL.Query().Get("api_key"))
		}
		_, _ = w.Write([]byte(`{"movie_results":[{"id":949}]}`))
	}))

	ctx := context.Background()

	id, err := c.FindByIMDbID(ctx, "tt0113277")
	if err != nil {
		t.Fatalf("FindByIMDbID: %v", err)
	}
	if id != 949 {
		t.Errorf("id = %d, want 949", id)
	}

	// Second lookup is served from the memo.
	id, err = c.FindByIMDbID(ctx, "tt0113277")
	if err != nil {
		t.Fatalf("FindByIMDbID (cached): %v", err)
	}
	if id != 949 {
		t.Errorf("cached id = %d, want 949", id)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestFindByIMDbIDNoMatch(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"movie_results":[]}`))
	}))

	id, err := c.FindByIMDbID(context.Background(), "tt9999999")
	if err != nil {
		t.Fatalf("FindByIMDbID: %v", err)
	}
	if id != 0 {
		t.Errorf("id = %d, want 0", id)
	}
}

func TestFindByIMDbIDEmpty(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty id")
	}))

	id, err := c.FindByIMDbID(context.Background(), "")
	if err != nil {
		t.Fatalf("FindByIMDbID: %v", err)
	}
	if id != 0 {
		t.Errorf("id = %d, want 0", id)
	}
}

func TestKeywords(t *testing.T) {
	calls := 0
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/movie/949/keywords" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"id":949,"keywords":[{"id":1,"name":"heist"},{"id":2,"name":"los angeles"}]}`))
	}))

	ctx := context.Background()

	kw, err := c.Keywords(ctx, 949)
	if err != nil {
		t.Fatalf("Keywords: %v", err)
	}
	if len(kw) != 2 || kw[0] != "heist" || kw[1] != "los angeles" {
		t.Errorf("keywords = %v", kw)
	}

	// Memoized on repeat.
	if _, err := c.Keywords(ctx, 949); err != nil {
		t.Fatalf("Keywords (cached): %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestKeywordsInvalidID(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for invalid id")
	}))

	kw, err := c.Keywords(context.Background(), 0)
	if err != nil {
		t.Fatalf("Keywords: %v", err)
	}
	if kw != nil {
		t.Errorf("keywords = %v, want nil", kw)
	}
}

func TestKeywordsServerError(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status_message":"not found"}`, http.StatusNotFound)
	}))

	if _, err := c.Keywords(context.Background(), 42); err == nil {
		t.Fatal("expected error for 404 response")
	}
}
