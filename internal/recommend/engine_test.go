// Flickpick - Personalized Movie Recommendations for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flickpick

package recommend

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func newTestEngine(t *testing.T, cfg EngineConfig) *Engine {
	t.Helper()
	e, err := NewEngine(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestNewEngineRejectsInvalidWeights(t *testing.T) {
	_, err := NewEngine(EngineConfig{
		Weights: CategoryWeights{Genre: 0.9, Director: 0.9},
	}, zerolog.Nop())

	var cfgErr *ConfigValidationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigValidationError, got %v", err)
	}
}

func TestEngineRecommendEndToEnd(t *testing.T) {
	e := newTestEngine(t, EngineConfig{
		Weights:    DefaultCategoryWeights(),
		RatingMode: RatingMultiplier,
		Seed:       7,
	})

	five, nine := 5.0, 9.5
	watched := []RawMovie{
		{ID: "w1", Title: "Heat", Genres: []string{"Crime", "Thriller"}, Directors: []string{"Michael Mann"}, UserRating: &nine},
		{ID: "w2", Title: "Collateral", Genres: []string{"Crime"}, Directors: []string{"Michael Mann"}, UserRating: &nine},
		{ID: "w3", Title: "Notting Hill", Genres: []string{"Romance"}, UserRating: &five},
		{Title: "broken record"}, // skipped, run continues
	}

	candidates := []RawMovie{
		{ID: "c1", Title: "Thief", Genres: []string{"Crime"}, Directors: []string{"Michael Mann"}},
		{ID: "c2", Title: "Love Actually", Genres: []string{"Romance"}},
		{ID: "c3", Title: "Catalog Filler", Genres: []string{"Documentary"}},
		{Title: "another broken record"},
	}

	out := e.Recommend(watched, candidates, SelectOptions{
		ExcludedGenres: []string{"documentary"},
		Limit:          2,
	})

	if len(out) != 2 {
		t.Fatalf("got %d recommendations, want 2", len(out))
	}
	if out[0].ID != "c1" {
		t.Errorf("top recommendation = %s, want the Mann crime film c1", out[0].ID)
	}
	for _, m := range out {
		if m.ID == "c3" {
			t.Error("excluded-genre candidate recommended")
		}
	}
}

func TestEngineEmptyHistoryScoresAllZero(t *testing.T) {
	e := newTestEngine(t, EngineConfig{Weights: DefaultCategoryWeights()})

	profile := e.BuildProfile(nil)
	scored := e.ScoreCandidates(profile, []RawMovie{
		{ID: "c1", Title: "Anything", Genres: []string{"Action"}},
	})

	if len(scored) != 1 {
		t.Fatalf("got %d scored candidates, want 1", len(scored))
	}
	if scored[0].Score != 0 {
		t.Errorf("empty history should score candidates 0, got %v", scored[0].Score)
	}
}
