// Flickpick - Personalized Movie Recommendations for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flickpick

package recommend

import (
	"strings"

	"github.com/rs/zerolog"
)

// RawMovie is the loosely-shaped record the media-server and metadata
// collaborators deliver. Every field except ID and Title may be empty.
type RawMovie struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Year           int      `json:"year,omitempty"`
	Genres         []string `json:"genres,omitempty"`
	Directors      []string `json:"directors,omitempty"`
	Cast           []string `json:"cast,omitempty"`
	Language       string   `json:"language,omitempty"`
	ExternalRating *float64 `json:"external_rating,omitempty"`
	UserRating     *float64 `json:"user_rating,omitempty"`
	Keywords       []string `json:"keywords,omitempty"`
}

// DefaultTopCast is how many top-billed actors contribute to the profile and
// scoring when no override is configured.
const DefaultTopCast = 3

// Extractor normalizes raw movie records into MovieRecords.
// The transform is pure: a failed record is reported, never mutated.
type Extractor struct {
	topCast int
}

// NewExtractor creates an extractor truncating cast lists to topCast entries.
// Non-positive values fall back to DefaultTopCast.
func NewExtractor(topCast int) *Extractor {
	if topCast <= 0 {
		topCast = DefaultTopCast
	}
	return &Extractor{topCast: topCast}
}

// Extract normalizes one raw record. It returns IncompleteRecordError when
// the identifier or title is missing; all other attributes degrade to absent.
func (e *Extractor) Extract(raw RawMovie) (MovieRecord, error) {
	if strings.TrimSpace(raw.ID) == "" {
		return MovieRecord{}, &IncompleteRecordError{Field: "id", Title: raw.Title}
	}
	if strings.TrimSpace(raw.Title) == "" {
		return MovieRecord{}, &IncompleteRecordError{Field: "title", Title: raw.ID}
	}

	rec := MovieRecord{
		ID:             raw.ID,
		Title:          raw.Title,
		Year:           raw.Year,
		Genres:         normalizeSet(raw.Genres),
		Language:       strings.ToLower(strings.TrimSpace(raw.Language)),
		Keywords:       normalizeSet(raw.Keywords),
		ExternalRating: -1,
		UserRating:     -1,
	}

	if len(raw.Directors) > 0 {
		rec.Director = strings.TrimSpace(raw.Directors[0])
	}

	cast := raw.Cast
	if len(cast) > e.topCast {
		cast = cast[:e.topCast]
	}
	rec.Cast = trimAll(cast)

	if raw.ExternalRating != nil && *raw.ExternalRating >= 0 {
		rec.ExternalRating = *raw.ExternalRating
	}
	if raw.UserRating != nil && *raw.UserRating >= 0 {
		rec.UserRating = *raw.UserRating
	}

	return rec, nil
}

// ExtractAll normalizes a batch, logging and skipping incomplete records.
// Extraction failures are isolated per record and never abort the batch.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Extractor) ExtractAll(raws []RawMovie, logger zerolog.Logger) []MovieRecord {
	records := make([]MovieRecord, 0, len(raws))
	for _, raw := range raws {
		rec, err := e.Extract(raw)
		if err != nil {
			logger.Warn().Err(err).Msg("skipping incomplete movie record")
			continue
		}
		records = append(records, rec)
	}
	return records
}

// normalizeSet lower-cases, trims, and deduplicates attribute values while
// preserving first-seen order.
func normalizeSet(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// trimAll trims whitespace and drops empty entries, preserving order.
func trimAll(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
