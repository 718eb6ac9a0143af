// Flickpick - Personalized Movie Recommendations for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flickpick

package recommend

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestBuildProfileEmptyWatchedSet(t *testing.T) {
	profile := BuildProfile(nil, ProfileOptions{RatingMode: RatingMultiplier})

	for _, cat := range Categories {
		if profile[cat] == nil {
			t.Errorf("category %s map is nil, want allocated empty map", cat)
		}
		if len(profile[cat]) != 0 {
			t.Errorf("category %s has %d entries, want 0", cat, len(profile[cat]))
		}
	}
}

func TestBuildProfileFrequency(t *testing.T) {
	watched := []MovieRecord{
		{ID: "1", Title: "A", Genres: []string{"action"}, Director: "ann", UserRating: -1, ExternalRating: -1},
		{ID: "2", Title: "B", Genres: []string{"action", "drama"}, Director: "ann", UserRating: -1, ExternalRating: -1},
	}

	profile := BuildProfile(watched, ProfileOptions{RatingMode: RatingOff})

	if got := profile[CategoryGenre]["action"]; !almostEqual(got, 2.0) {
		t.Errorf("action weight = %v, want 2.0", got)
	}
	if got := profile[CategoryGenre]["drama"]; !almostEqual(got, 1.0) {
		t.Errorf("drama weight = %v, want 1.0", got)
	}
	if got := profile[CategoryDirector]["ann"]; !almostEqual(got, 2.0) {
		t.Errorf("director weight = %v, want 2.0", got)
	}
}

func TestBuildProfileRatingMultiplier(t *testing.T) {
	watched := []MovieRecord{
		{ID: "1", Title: "Loved", Genres: []string{"action"}, UserRating: 10, ExternalRating: -1},
		{ID: "2", Title: "Hated", Genres: []string{"romance"}, UserRating: 0, ExternalRating: -1},
		{ID: "3", Title: "Unrated", Genres: []string{"drama"}, UserRating: -1, ExternalRating: -1},
	}

	profile := BuildProfile(watched, ProfileOptions{RatingMode: RatingMultiplier})

	if got := profile[CategoryGenre]["action"]; !almostEqual(got, 2.0) {
		t.Errorf("10/10 rated increment = %v, want 2.0", got)
	}
	if got := profile[CategoryGenre]["romance"]; !almostEqual(got, 0.1) {
		t.Errorf("0/10 rated increment = %v, want 0.1", got)
	}
	if got := profile[CategoryGenre]["drama"]; !almostEqual(got, 1.0) {
		t.Errorf("unrated increment = %v, want 1.0 unscaled", got)
	}
}

func TestBuildProfileRatingModeOffIgnoresRatings(t *testing.T) {
	watched := []MovieRecord{
		{ID: "1", Title: "Loved", Genres: []string{"action"}, UserRating: 10, ExternalRating: -1},
	}

	profile := BuildProfile(watched, ProfileOptions{RatingMode: RatingOff})

	if got := profile[CategoryGenre]["action"]; !almostEqual(got, 1.0) {
		t.Errorf("RatingOff increment = %v, want 1.0", got)
	}
}

func TestBuildProfileNormalize(t *testing.T) {
	watched := []MovieRecord{
		{ID: "1", Title: "A", Genres: []string{"action"}, UserRating: -1, ExternalRating: -1},
		{ID: "2", Title: "B", Genres: []string{"action"}, UserRating: -1, ExternalRating: -1},
		{ID: "3", Title: "C", Genres: []string{"action", "drama"}, UserRating: -1, ExternalRating: -1},
	}

	profile := BuildProfile(watched, ProfileOptions{RatingMode: RatingOff, Normalize: true})

	if got := profile[CategoryGenre]["action"]; !almostEqual(got, 1.0) {
		t.Errorf("normalized top genre = %v, want 1.0", got)
	}
	if got := profile[CategoryGenre]["drama"]; !almostEqual(got, 1.0/3.0) {
		t.Errorf("normalized drama = %v, want 1/3", got)
	}
}

func TestRatingMultiplierTable(t *testing.T) {
	tests := []struct {
		rating float64
		want   float64
	}{
		{0, 0.1},
		{3, 0.6},
		{5, 1.0},
		{7, 1.4},
		{10, 2.0},
		{10.7, 2.0}, // clamped high
		{-2, 0.1},   // clamped low
		{6.6, 1.4},  // rounds to 7
	}

	for _, tt := range tests {
		if got := ratingMultiplier(tt.rating); !almostEqual(got, tt.want) {
			t.Errorf("ratingMultiplier(%v) = %v, want %v", tt.rating, got, tt.want)
		}
	}
}

func TestBuildProfileMonotoneWeights(t *testing.T) {
	// Weights are built by addition only; adding a record never lowers any
	// existing weight.
	base := []MovieRecord{
		{ID: "1", Title: "A", Genres: []string{"action"}, Cast: []string{"x"}, UserRating: -1, ExternalRating: -1},
	}
	more := append(base, MovieRecord{
		ID: "2", Title: "B", Genres: []string{"action"}, Cast: []string{"x", "y"}, UserRating: 1, ExternalRating: -1,
	})

	before := BuildProfile(base, ProfileOptions{RatingMode: RatingMultiplier})
	after := BuildProfile(more, ProfileOptions{RatingMode: RatingMultiplier})

	for _, cat := range Categories {
		for value, w := range before[cat] {
			if after[cat][value] < w {
				t.Errorf("weight %s/%s decreased from %v to %v", cat, value, w, after[cat][value])
			}
		}
	}
}
