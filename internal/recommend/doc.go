// Flickpick - Personalized Movie Recommendations for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flickpick

// Package recommend implements the recommendation scoring engine: it folds a
// user's watch history into a frequency-weighted taste profile, scores
// unwatched candidates against that profile, and samples a varied final list
// from the top-scoring band.
//
// # Pipeline
//
//	watched RawMovies  -> Extractor -> MovieRecords -> BuildProfile -> TasteProfile
//	candidate RawMovies -> Extractor -> MovieRecords -> ScoreAll ----> ScoredCandidates
//	ScoredCandidates + RunCache -> Selector.Select -> final []MovieRecord
//
// The profile weights five attribute categories (genre, director, actor,
// language, keyword). With RatingMultiplier, per-movie user ratings scale
// each increment so that preference is separated from mere exposure.
//
// # Determinism
//
// Score is a pure function. Selection is deliberately randomized for
// run-to-run variety: the Selector samples without replacement from the top
// band, weighted by score, using an injectable seeded random source so tests
// can assert exact selection sets.
//
// This package has no dependencies on other internal packages except logging
// types; collaborator I/O (media server, metadata, download manager) stays
// behind the pipeline package.
package recommend
