// Flickpick - Personalized Movie Recommendations for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flickpick

package plex

import (
	"strings"

	"github.com/tomtom215/flickpick/internal/recommend"
)

// sectionsResponse is the /library/sections payload.
type sectionsResponse struct {
	MediaContainer struct {
		Directory []Section `json:"Directory"`
	} `json:"MediaContainer"`
}

// Section is one library section (Movies, TV Shows, ...).
type Section struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

// contentResponse is the /library/sections/{key}/all payload.
type contentResponse struct {
	MediaContainer struct {
		Size      int     `json:"size"`
		TotalSize int     `json:"totalSize"`
		Metadata  []Movie `json:"Metadata"`
	} `json:"MediaContainer"`
}

// tag is Plex's {tag: "value"} wrapper used for genres, directors, roles,
// and labels.
type tag struct {
	Tag string `json:"tag"`
}

// guid is an external identifier entry, e.g. imdb://tt0113277.
type guid struct {
	ID string `json:"id"`
}

// Movie is one Plex movie item with the metadata the scoring engine and the
// collaborators consume.
type Movie struct {
	RatingKey      string  `json:"ratingKey"`
	Title          string  `json:"title"`
	Year           int     `json:"year"`
	ViewCount      int     `json:"viewCount"`
	UserRating     float64 `json:"userRating"`
	Rating         float64 `json:"rating"`
	AudienceRating float64 `json:"audienceRating"`
	Genres         []tag   `json:"Genre"`
	Directors      []tag   `json:"Director"`
	Roles          []tag   `json:"Role"`
	Labels         []tag   `json:"Label"`
	Guids          []guid  `json:"Guid"`
	Media          []media `json:"Media"`
}

type media struct {
	Parts []part `json:"Part"`
}

type part struct {
	Streams []stream `json:"Stream"`
}

// audioStreamType is Plex's stream type discriminator for audio tracks.
const audioStreamType = 2

type stream struct {
	StreamType   int    `json:"streamType"`
	LanguageTag  string `json:"languageTag"`
	LanguageCode string `json:"languageCode"`
	Language     string `json:"language"`
}

// Watched reports whether the movie has been played at least once.
func (m *Movie) Watched() bool { return m.ViewCount > 0 }

// IMDbID returns the movie's IMDb identifier, or empty.
func (m *Movie) IMDbID() string { return m.guidFor("imdb") }

// TMDBID returns the movie's TMDB identifier, or empty.
func (m *Movie) TMDBID() string { return m.guidFor("tmdb") }

func (m *Movie) guidFor(scheme string) string {
	prefix := scheme + "://"
	for _, g := range m.Guids {
		if strings.HasPrefix(g.ID, prefix) {
			return strings.TrimPrefix(g.ID, prefix)
		}
	}
	return ""
}

// HasLabel reports whether the movie carries the given label.
func (m *Movie) HasLabel(label string) bool {
	for _, l := range m.Labels {
		if strings.EqualFold(l.Tag, label) {
			return true
		}
	}
	return false
}

// Language returns the primary audio language as a full lower-case name, or
// empty when no audio stream metadata is present.
func (m *Movie) Language() string {
	for _, med := range m.Media {
		for _, p := range med.Parts {
			for _, s := range p.Streams {
				if s.StreamType != audioStreamType {
					continue
				}
				code := s.LanguageTag
				if code == "" {
					code = s.LanguageCode
				}
				if code == "" {
					code = s.Language
				}
				if code != "" {
					return languageName(code)
				}
			}
		}
	}
	return ""
}

// ToRaw converts the Plex item into the extractor's raw record shape.
// The stable identifier prefers IMDb, then TMDB, then the Plex rating key,
// so the run cache survives library rebuilds.
func (m *Movie) ToRaw() recommend.RawMovie {
	id := m.IMDbID()
	if id == "" {
		if t := m.TMDBID(); t != "" {
			id = "tmdb:" + t
		} else {
			id = "plex:" + m.RatingKey
		}
	}

	raw := recommend.RawMovie{
		ID:       id,
		Title:    m.Title,
		Year:     m.Year,
		Language: m.Language(),
	}
	for _, g := range m.Genres {
		raw.Genres = append(raw.Genres, g.Tag)
	}
	for _, d := range m.Directors {
		raw.Directors = append(raw.Directors, d.Tag)
	}
	for _, r := range m.Roles {
		raw.Cast = append(raw.Cast, r.Tag)
	}

	if m.UserRating > 0 {
		v := m.UserRating
		raw.UserRating = &v
	}
	if ext := m.externalRating(); ext > 0 {
		v := ext
		raw.ExternalRating = &v
	}
	return raw
}

// externalRating prefers the audience rating and falls back to the critic
// rating, matching how Plex surfaces a single rating in its UI.
func (m *Movie) externalRating() float64 {
	if m.AudienceRating > 0 {
		return m.AudienceRating
	}
	return m.Rating
}

// languageNames maps common ISO 639-1 codes to full names so profile keys
// match across sources that report codes and sources that report names.
var languageNames = map[string]string{
	"en": "english", "es": "spanish", "fr": "french", "de": "german",
	"it": "italian", "zh": "chinese", "ja": "japanese", "ko": "korean",
	"pt": "portuguese", "ru": "russian", "ar": "arabic", "hi": "hindi",
	"nl": "dutch", "da": "danish", "sv": "swedish", "no": "norwegian",
	"fi": "finnish", "pl": "polish", "cs": "czech", "hu": "hungarian",
	"el": "greek", "he": "hebrew", "id": "indonesian", "th": "thai",
	"tr": "turkish", "vi": "vietnamese",
}

// languageName resolves a language code or name to a lower-case full name.
func languageName(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if full, ok := languageNames[code]; ok {
		return full
	}
	return code
}
