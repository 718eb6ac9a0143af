// Flickpick - Personalized Movie Recommendations for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flickpick

package recommend

import (
	"math/rand"
	"sort"
	"strings"
)

// ActionRecommended marks a run-cache entry written by the selector.
const ActionRecommended = "recommended"

// RunCache is the selector's view of the cross-run cache: membership checks
// before selection, and recording of finalized picks after.
type RunCache interface {
	// SeenBefore reports whether the identifier was recorded by a prior run.
	SeenBefore(id string) bool

	// Record stores the identifier with the current run's timestamp.
	Record(id, action string)
}

// topBandFactor sizes the sampling band relative to the configured limit.
// Pure top-K selection yields identical lists on every run when history is
// stable; sampling from a band of 3x the limit keeps quality while varying
// run-to-run composition.
const topBandFactor = 3

// SelectOptions controls one selection pass.
type SelectOptions struct {
	// ExcludedGenres drops any candidate whose genre set intersects it.
	// Matching is case-insensitive.
	ExcludedGenres []string

	// Limit is the maximum number of results. Must be >= 0.
	Limit int

	// Cache records selections and, with ExcludeCacheHits, suppresses
	// candidates already handled by prior runs. May be nil.
	Cache RunCache

	// ExcludeCacheHits drops candidates present in the cache from a prior run.
	ExcludeCacheHits bool

	// Randomize samples from the top band weighted by score instead of
	// taking the top Limit outright.
	Randomize bool
}

// Selector ranks scored candidates and picks the final recommendation list.
// The random source is injected so tests can pin the sequence.
type Selector struct {
	rng *rand.Rand
}

// NewSelector creates a selector seeded for reproducible sampling.
// A zero seed falls back to a fixed default.
func NewSelector(seed int64) *Selector {
	if seed == 0 {
		seed = 42
	}
	return &Selector{rng: rand.New(rand.NewSource(seed))} //nolint:gosec // math/rand is fine for recommendation sampling
}

// Select filters, ranks, and samples candidates into the final list.
//
// Candidates with an excluded genre never appear in the output regardless of
// score. With ExcludeCacheHits, candidates recorded by prior runs are dropped
// so the same title is never re-recommended or re-submitted. Survivors are
// sorted by score descending (ties keep input order); the top band of
// max(topBandFactor*limit, limit) is then sampled without replacement with
// probability proportional to score, or truncated to the top Limit when
// Randomize is off. Selected identifiers are recorded into the cache.
//
// Returns an empty slice, never an error, when nothing survives filtering.
func (s *Selector) Select(candidates []ScoredCandidate, opts SelectOptions) []MovieRecord {
	if opts.Limit <= 0 {
		return []MovieRecord{}
	}

	excluded := make(map[string]struct{}, len(opts.ExcludedGenres))
	for _, g := range opts.ExcludedGenres {
		g = strings.ToLower(strings.TrimSpace(g))
		if g != "" {
			excluded[g] = struct{}{}
		}
	}

	eligible := make([]ScoredCandidate, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		if hasExcludedGenre(c.Movie.Genres, excluded) {
			continue
		}
		if opts.ExcludeCacheHits && opts.Cache != nil && opts.Cache.SeenBefore(c.Movie.ID) {
			continue
		}
		eligible = append(eligible, *c)
	}

	if len(eligible) == 0 {
		return []MovieRecord{}
	}

	// Stable: equal scores keep input order, so identical input yields an
	// identical band.
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Score > eligible[j].Score
	})

	band := topBandFactor * opts.Limit
	if band < opts.Limit {
		band = opts.Limit
	}
	if band > len(eligible) {
		band = len(eligible)
	}
	pool := eligible[:band]

	var picked []ScoredCandidate
	if opts.Randomize {
		picked = s.sampleByScore(pool, opts.Limit)
	} else {
		n := opts.Limit
		if n > len(pool) {
			n = len(pool)
		}
		picked = pool[:n]
	}

	out := make([]MovieRecord, 0, len(picked))
	for i := range picked {
		out = append(out, picked[i].Movie)
		if opts.Cache != nil {
			opts.Cache.Record(picked[i].Movie.ID, ActionRecommended)
		}
	}
	return out
}

// sampleByScore draws up to k candidates without replacement, each draw
// weighted by score. When all remaining scores are zero the draw degrades to
// uniform so zero-scored pools still produce output.
func (s *Selector) sampleByScore(pool []ScoredCandidate, k int) []ScoredCandidate {
	remaining := make([]ScoredCandidate, len(pool))
	copy(remaining, pool)

	if k > len(remaining) {
		k = len(remaining)
	}

	picked := make([]ScoredCandidate, 0, k)
	for len(picked) < k {
		var total float64
		for i := range remaining {
			total += remaining[i].Score
		}

		var idx int
		if total <= 0 {
			idx = s.rng.Intn(len(remaining))
		} else {
			r := s.rng.Float64() * total
			for i := range remaining {
				r -= remaining[i].Score
				if r <= 0 {
					idx = i
					break
				}
			}
		}

		picked = append(picked, remaining[idx])
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	return picked
}

// hasExcludedGenre reports whether any of the candidate's genres is excluded.
// Genres are already lower-cased at extraction time.
func hasExcludedGenre(genres []string, excluded map[string]struct{}) bool {
	if len(excluded) == 0 {
		return false
	}
	for _, g := range genres {
		if _, hit := excluded[g]; hit {
			return true
		}
	}
	return false
}
