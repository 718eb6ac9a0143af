// Flickpick - Personalized Movie Recommendations for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flickpick

package recommend

// externalRatingWeight is the fixed blend weight for the candidate's external
// rating, kept small relative to the five primary category weights so it only
// orders otherwise equally-similar candidates.
const externalRatingWeight = 0.05

// externalRatingScale is the upper bound of the external rating scale.
const externalRatingScale = 10.0

// Score computes the weighted similarity between a taste profile and one
// candidate movie.
//
// For each category the match value is the arithmetic mean of the profile
// weights over every value the candidate exhibits (values absent from the
// profile contribute zero), divided by the category's maximum observed weight
// so categories are comparable regardless of volume. A profile already
// normalized at build time has a maximum of 1.0, making the division a no-op.
// Each match value is scaled by its configured category weight and summed;
// the candidate's external rating is then blended in additively with a small
// fixed weight.
//
// Score is a pure function: no hidden state, identical inputs yield identical
// results. The result is non-negative with no guaranteed upper bound.
func Score(profile TasteProfile, candidate MovieRecord, weights CategoryWeights) float64 {
	var score float64

	for _, cat := range Categories {
		values := candidate.Attributes(cat)
		if len(values) == 0 {
			continue
		}

		max := profile.Max(cat)
		if max <= 0 {
			continue
		}

		var sum float64
		for _, v := range values {
			sum += profile[cat][v]
		}

		match := sum / float64(len(values)) / max
		score += match * weights.For(cat)
	}

	if candidate.HasExternalRating() {
		score += externalRatingWeight * (candidate.ExternalRating / externalRatingScale)
	}

	return score
}

// ScoreAll scores every candidate against the profile, producing the
// ephemeral per-run candidate set fed to the selector.
func ScoreAll(profile TasteProfile, candidates []MovieRecord, weights CategoryWeights) []ScoredCandidate {
	scored := make([]ScoredCandidate, 0, len(candidates))
	for i := range candidates {
		scored = append(scored, ScoredCandidate{
			Movie:          candidates[i],
			Score:          Score(profile, candidates[i], weights),
			ExternalRating: candidates[i].ExternalRating,
		})
	}
	return scored
}
