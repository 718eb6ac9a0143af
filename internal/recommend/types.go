// Flickpick - Personalized Movie Recommendations for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flickpick

package recommend

import (
	"fmt"
	"math"
)

// Category is one of the five attribute classes used for similarity scoring.
type Category string

const (
	// CategoryGenre is the genre attribute class.
	CategoryGenre Category = "genre"
	// CategoryDirector is the director attribute class.
	CategoryDirector Category = "director"
	// CategoryActor is the actor attribute class.
	CategoryActor Category = "actor"
	// CategoryLanguage is the audio language attribute class.
	CategoryLanguage Category = "language"
	// CategoryKeyword is the plot keyword attribute class.
	CategoryKeyword Category = "keyword"
)

// Categories lists all attribute classes in a fixed order.
var Categories = []Category{
	CategoryGenre,
	CategoryDirector,
	CategoryActor,
	CategoryLanguage,
	CategoryKeyword,
}

// MovieRecord is a normalized movie with the fixed attribute set consumed by
// the scoring engine. Records are immutable once constructed by the extractor.
type MovieRecord struct {
	// ID is the stable cross-service identifier (Plex rating key or IMDb id).
	ID string `json:"id"`

	// Title is the movie title.
	Title string `json:"title"`

	// Year is the release year; zero when unknown.
	Year int `json:"year,omitempty"`

	// Genres is the deduplicated, lower-cased genre set.
	Genres []string `json:"genres,omitempty"`

	// Director is the primary director; empty when absent.
	Director string `json:"director,omitempty"`

	// Cast holds the top-billed actors in source order, truncated at
	// extraction time.
	Cast []string `json:"cast,omitempty"`

	// Language is the primary audio language, lower-cased; empty when absent.
	Language string `json:"language,omitempty"`

	// ExternalRating is the critic/audience rating on a 0-10 scale.
	// Negative means absent.
	ExternalRating float64 `json:"external_rating"`

	// UserRating is the user's own rating on a 0-10 scale.
	// Negative means absent.
	UserRating float64 `json:"user_rating"`

	// Keywords is the deduplicated, lower-cased plot keyword set.
	Keywords []string `json:"keywords,omitempty"`
}

// HasExternalRating reports whether the record carries an external rating.
func (m *MovieRecord) HasExternalRating() bool { return m.ExternalRating >= 0 }

// HasUserRating reports whether the record carries a user rating.
func (m *MovieRecord) HasUserRating() bool { return m.UserRating >= 0 }

// Attributes returns the record's values for the given category.
// Single-valued categories yield a zero- or one-element slice.
func (m *MovieRecord) Attributes(cat Category) []string {
	switch cat {
	case CategoryGenre:
		return m.Genres
	case CategoryDirector:
		if m.Director == "" {
			return nil
		}
		return []string{m.Director}
	case CategoryActor:
		return m.Cast
	case CategoryLanguage:
		if m.Language == "" {
			return nil
		}
		return []string{m.Language}
	case CategoryKeyword:
		return m.Keywords
	default:
		return nil
	}
}

// TasteProfile maps each category to accumulated attribute weights built from
// a user's watch history. Weights only ever grow during a build pass; a fresh
// profile starts all-zero. The profile is read-only once built.
type TasteProfile map[Category]map[string]float64

// NewTasteProfile returns an empty profile with all category maps allocated.
func NewTasteProfile() TasteProfile {
	p := make(TasteProfile, len(Categories))
	for _, cat := range Categories {
		p[cat] = make(map[string]float64)
	}
	return p
}

// Add increments the accumulated weight of a value within a category.
func (p TasteProfile) Add(cat Category, value string, weight float64) {
	m, ok := p[cat]
	if !ok {
		m = make(map[string]float64)
		p[cat] = m
	}
	m[value] += weight
}

// Max returns the largest accumulated weight in the category, or zero when
// the category is empty.
func (p TasteProfile) Max(cat Category) float64 {
	var max float64
	for _, w := range p[cat] {
		if w > max {
			max = w
		}
	}
	return max
}

// CategoryWeights is the normalized contribution of each category to the
// similarity score. The five weights must sum to 1.0 within tolerance.
type CategoryWeights struct {
	Genre    float64 `json:"genre_weight" koanf:"genre_weight" validate:"gte=0,lte=1"`
	Director float64 `json:"director_weight" koanf:"director_weight" validate:"gte=0,lte=1"`
	Actor    float64 `json:"actor_weight" koanf:"actor_weight" validate:"gte=0,lte=1"`
	Language float64 `json:"language_weight" koanf:"language_weight" validate:"gte=0,lte=1"`
	Keyword  float64 `json:"keyword_weight" koanf:"keyword_weight" validate:"gte=0,lte=1"`
}

// weightSumTolerance is the permitted deviation of the weight sum from 1.0.
const weightSumTolerance = 1e-6

// DefaultCategoryWeights mirrors the stock weighting: genres and keywords
// carry the taste signal, language the least.
func DefaultCategoryWeights() CategoryWeights {
	return CategoryWeights{
		Genre:    0.25,
		Director: 0.20,
		Actor:    0.20,
		Language: 0.10,
		Keyword:  0.25,
	}
}

// For returns the weight configured for a category.
func (w CategoryWeights) For(cat Category) float64 {
	switch cat {
	case CategoryGenre:
		return w.Genre
	case CategoryDirector:
		return w.Director
	case CategoryActor:
		return w.Actor
	case CategoryLanguage:
		return w.Language
	case CategoryKeyword:
		return w.Keyword
	default:
		return 0
	}
}

// Validate checks that every weight is in [0,1] and the sum is 1.0 within
// tolerance. A violation invalidates every downstream score, so callers must
// abort the run on error.
func (w CategoryWeights) Validate() error {
	for _, cat := range Categories {
		v := w.For(cat)
		if v < 0 || v > 1 {
			return &ConfigValidationError{
				Reason: fmt.Sprintf("%s_weight %.4f outside [0,1]", cat, v),
			}
		}
	}

	sum := w.Genre + w.Director + w.Actor + w.Language + w.Keyword
	if math.Abs(sum-1.0) > weightSumTolerance {
		return &ConfigValidationError{
			Reason: fmt.Sprintf("category weights sum to %.6f, expected 1.0", sum),
		}
	}
	return nil
}

// ScoredCandidate pairs a candidate movie with its similarity score for one
// run. Candidates are ephemeral and never persisted.
type ScoredCandidate struct {
	Movie MovieRecord `json:"movie"`

	// Score is the weighted similarity against the taste profile.
	// Non-negative; higher is better; no upper bound is guaranteed.
	Score float64 `json:"score"`

	// ExternalRating is the rating used as a secondary ranking signal.
	// Negative means absent.
	ExternalRating float64 `json:"external_rating"`
}

// RatingMode controls whether user ratings scale profile increments.
type RatingMode string

const (
	// RatingOff ignores user ratings; every watch contributes 1.0.
	RatingOff RatingMode = "off"

	// RatingMultiplier scales increments by the user's rating so that
	// preference and mere exposure are separated.
	RatingMultiplier RatingMode = "multiplier"
)

// ParseRatingMode parses a rating mode string; empty defaults to multiplier.
func ParseRatingMode(s string) (RatingMode, error) {
	switch s {
	case "", string(RatingMultiplier):
		return RatingMultiplier, nil
	case string(RatingOff):
		return RatingOff, nil
	default:
		return "", &ConfigValidationError{Reason: fmt.Sprintf("unknown rating_mode %q", s)}
	}
}
