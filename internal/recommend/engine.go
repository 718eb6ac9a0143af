// Flickpick - Personalized Movie Recommendations for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flickpick

package recommend

import (
	"github.com/rs/zerolog"
)

// EngineConfig configures one scoring engine instance.
type EngineConfig struct {
	// Weights is the category weight vector; validated at construction.
	Weights CategoryWeights

	// RatingMode controls rating-aware profile building.
	RatingMode RatingMode

	// NormalizeCounters applies per-category max-normalization to the profile.
	NormalizeCounters bool

	// TopCast truncates cast lists at extraction time. Default 3.
	TopCast int

	// Seed seeds the selector's random source. Zero uses a fixed default.
	Seed int64
}

// Engine converts watch history into a taste profile, scores candidates
// against it, and selects the final varied result set. One engine serves one
// run; it holds no locks and no cross-run state beyond the injected cache.
type Engine struct {
	cfg       EngineConfig
	extractor *Extractor
	selector  *Selector
	logger    zerolog.Logger
}

// NewEngine validates the scoring configuration and builds an engine.
// An invalid category weight vector aborts before any scoring happens.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg EngineConfig, logger zerolog.Logger) (*Engine, error) {
	if err := cfg.Weights.Validate(); err != nil {
		return nil, err
	}
	if cfg.RatingMode == "" {
		cfg.RatingMode = RatingMultiplier
	}

	return &Engine{
		cfg:       cfg,
		extractor: NewExtractor(cfg.TopCast),
		selector:  NewSelector(cfg.Seed),
		logger:    logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// BuildProfile extracts the watched set and folds it into a taste profile.
// Incomplete records are logged and skipped, never fatal.
func (e *Engine) BuildProfile(watched []RawMovie) TasteProfile {
	records := e.extractor.ExtractAll(watched, e.logger)

	profile := BuildProfile(records, ProfileOptions{
		RatingMode: e.cfg.RatingMode,
		Normalize:  e.cfg.NormalizeCounters,
	})

	e.logger.Debug().
		Int("watched", len(records)).
		Int("genres", len(profile[CategoryGenre])).
		Int("directors", len(profile[CategoryDirector])).
		Int("actors", len(profile[CategoryActor])).
		Int("languages", len(profile[CategoryLanguage])).
		Int("keywords", len(profile[CategoryKeyword])).
		Msg("taste profile built")

	return profile
}

// ScoreCandidates extracts and scores the unwatched candidate set.
func (e *Engine) ScoreCandidates(profile TasteProfile, candidates []RawMovie) []ScoredCandidate {
	records := e.extractor.ExtractAll(candidates, e.logger)
	return ScoreAll(profile, records, e.cfg.Weights)
}

// Recommend runs the full pass: profile from watched, score candidates,
// select the final list under opts.
func (e *Engine) Recommend(watched, candidates []RawMovie, opts SelectOptions) []MovieRecord {
	profile := e.BuildProfile(watched)
	scored := e.ScoreCandidates(profile, candidates)

	selected := e.selector.Select(scored, opts)

	e.logger.Info().
		Int("candidates", len(scored)).
		Int("selected", len(selected)).
		Int("limit", opts.Limit).
		Bool("randomized", opts.Randomize).
		Msg("recommendations selected")

	return selected
}
