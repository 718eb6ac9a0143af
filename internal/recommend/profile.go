// Flickpick - Personalized Movie Recommendations for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flickpick

package recommend

import "math"

// ratingMultipliers maps a rounded 0-10 user rating to the factor applied to
// each profile increment. 5 is the neutral midpoint; lower ratings shrink the
// increment toward 0.1, higher ratings grow it toward 2.0. Never negative, so
// profile weights stay monotone under addition.
var ratingMultipliers = map[int]float64{
	0:  0.1, // Strong dislike
	1:  0.2,
	2:  0.4,
	3:  0.6,
	4:  0.8,
	5:  1.0, // Neutral baseline
	6:  1.2,
	7:  1.4,
	8:  1.6,
	9:  1.8,
	10: 2.0, // Outstanding
}

// ratingMultiplier returns the increment factor for a 0-10 user rating.
func ratingMultiplier(rating float64) float64 {
	r := int(math.Round(rating))
	if r < 0 {
		r = 0
	}
	if r > 10 {
		r = 10
	}
	return ratingMultipliers[r]
}

// ProfileOptions controls how watch history folds into a taste profile.
type ProfileOptions struct {
	// RatingMode selects whether user ratings scale increments.
	RatingMode RatingMode

	// Normalize divides each category's weights by the category maximum so
	// the top value in every category is 1.0. This stops high-volume
	// categories (keywords, actors) from dominating purely on count.
	Normalize bool
}

// BuildProfile folds the watched set into a frequency-weighted taste profile.
//
// Every attribute value of every watched record increments its accumulated
// weight by 1.0. With RatingMultiplier, records carrying a user rating scale
// the increment by ratingMultiplier; unrated records contribute 1.0 unscaled.
// Raw frequency alone conflates "watched often" with "liked"; the multiplier
// separates exposure from preference.
//
// An empty watched set yields a profile with empty category maps, and every
// downstream score is zero.
func BuildProfile(records []MovieRecord, opts ProfileOptions) TasteProfile {
	profile := NewTasteProfile()

	for i := range records {
		rec := &records[i]

		increment := 1.0
		if opts.RatingMode == RatingMultiplier && rec.HasUserRating() {
			increment = ratingMultiplier(rec.UserRating)
		}

		for _, cat := range Categories {
			for _, value := range rec.Attributes(cat) {
				profile.Add(cat, value, increment)
			}
		}
	}

	if opts.Normalize {
		normalizeProfile(profile)
	}

	return profile
}

// normalizeProfile scales each category so its maximum weight is 1.0.
func normalizeProfile(profile TasteProfile) {
	for _, cat := range Categories {
		max := profile.Max(cat)
		if max <= 0 {
			continue
		}
		for value, w := range profile[cat] {
			profile[cat][value] = w / max
		}
	}
}
