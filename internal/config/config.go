// Flickpick - Personalized Movie Recommendations for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flickpick

// Package config loads and validates Flickpick configuration.
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (PLEX_URL, TRAKT_CLIENT_ID, ...)
//   - Config file (config.yaml, or CONFIG_PATH override)
//   - Built-in defaults
package config

import (
	"time"

	"github.com/tomtom215/flickpick/internal/recommend"
)

// Config is the root configuration for one Flickpick run.
type Config struct {
	Plex     PlexConfig                `koanf:"plex"`
	Tautulli TautulliConfig            `koanf:"tautulli"`
	Trakt    TraktConfig               `koanf:"trakt"`
	TMDB     TMDBConfig                `koanf:"tmdb"`
	Radarr   RadarrConfig              `koanf:"radarr"`
	Weights  recommend.CategoryWeights `koanf:"weights" validate:"required"`
	General  GeneralConfig             `koanf:"general"`
	Logging  LoggingConfig             `koanf:"logging"`
}

// PlexConfig connects to the media server, the primary watch-history and
// candidate source and the target for label application.
type PlexConfig struct {
	// URL is the Plex server base URL, e.g. http://localhost:32400.
	URL string `koanf:"url" validate:"required,url"`

	// Token is the X-Plex-Token used for all requests.
	Token string `koanf:"token" validate:"required"`

	// MovieLibrary is the title of the movie library section.
	MovieLibrary string `koanf:"movie_library" validate:"required"`

	// ManageLabels applies LabelName to recommended movies and removes it
	// from movies recommended by earlier runs.
	ManageLabels bool `koanf:"manage_labels"`

	// LabelName is the label applied to recommendations.
	LabelName string `koanf:"label_name"`

	// Timeout bounds each Plex API request.
	Timeout time.Duration `koanf:"timeout"`
}

// TautulliConfig optionally sources watch history from Tautulli instead of
// Plex, which preserves history for managed users.
type TautulliConfig struct {
	Enabled bool   `koanf:"enabled"`
	URL     string `koanf:"url" validate:"required_if=Enabled true,omitempty,url"`
	APIKey  string `koanf:"api_key" validate:"required_if=Enabled true"`

	// Users limits history to these Tautulli usernames. Empty means all.
	Users []string `koanf:"users"`

	Timeout time.Duration `koanf:"timeout"`
}

// TraktConfig drives the external recommendation service integration.
type TraktConfig struct {
	Enabled      bool   `koanf:"enabled"`
	ClientID     string `koanf:"client_id" validate:"required_if=Enabled true"`
	ClientSecret string `koanf:"client_secret"`
	AccessToken  string `koanf:"access_token" validate:"required_if=Enabled true"`

	// SyncWatchHistory uploads newly watched movies before fetching
	// recommendations so Trakt personalizes against current history.
	SyncWatchHistory bool `koanf:"sync_watch_history"`

	// ClearWatchHistory removes all previously synced history first.
	ClearWatchHistory bool `koanf:"clear_watch_history"`

	// LimitResults caps fetched Trakt recommendations.
	LimitResults int `koanf:"limit_results" validate:"gte=0"`

	Timeout time.Duration `koanf:"timeout"`
}

// TMDBConfig enables plot-keyword enrichment for the keyword category.
type TMDBConfig struct {
	Enabled bool          `koanf:"enabled"`
	APIKey  string        `koanf:"api_key" validate:"required_if=Enabled true"`
	Timeout time.Duration `koanf:"timeout"`
}

// RadarrConfig submits acquisition requests for recommended titles missing
// from the library.
type RadarrConfig struct {
	Enabled          bool   `koanf:"enabled"`
	URL              string `koanf:"url" validate:"required_if=Enabled true,omitempty,url"`
	APIKey           string `koanf:"api_key" validate:"required_if=Enabled true"`
	RootFolder       string `koanf:"root_folder" validate:"required_if=Enabled true"`
	QualityProfileID int    `koanf:"quality_profile_id" validate:"gte=0"`

	// Monitor marks added movies as monitored.
	Monitor bool `koanf:"monitor"`

	// SearchForMovie triggers an immediate search after adding.
	SearchForMovie bool `koanf:"search_for_movie"`

	Timeout time.Duration `koanf:"timeout"`
}

// GeneralConfig holds the scoring and selection knobs.
type GeneralConfig struct {
	// LimitResults is the maximum number of recommendations per run.
	LimitResults int `koanf:"limit_results" validate:"gte=0"`

	// ExcludeGenre drops candidates carrying any of these genres.
	// Comma-separated in env form, list in YAML.
	ExcludeGenre []string `koanf:"exclude_genre"`

	// RandomizeRecommendations samples from the top band instead of taking
	// the top results outright, varying lists across runs.
	RandomizeRecommendations bool `koanf:"randomize_recommendations"`

	// NormalizeCounters max-normalizes each profile category.
	NormalizeCounters bool `koanf:"normalize_counters"`

	// RatingMode is "multiplier" (user ratings scale profile increments) or
	// "off".
	RatingMode string `koanf:"rating_mode"`

	// TopCast is how many top-billed actors count per movie.
	TopCast int `koanf:"top_cast" validate:"gte=0"`

	// ExcludePriorRecommendations suppresses titles already handled by
	// earlier runs (run cache hits).
	ExcludePriorRecommendations bool `koanf:"exclude_prior_recommendations"`

	// CachePath is the run cache file location.
	CachePath string `koanf:"cache_path" validate:"required"`

	// CacheMaxAgeDays prunes run cache entries older than this. 0 disables.
	CacheMaxAgeDays int `koanf:"cache_max_age_days" validate:"gte=0"`

	// Seed pins the selector's random source; 0 seeds from the clock so
	// scheduled runs vary.
	Seed int64 `koanf:"seed"`
}

// LoggingConfig mirrors the logging package configuration.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// defaultConfig returns a Config with all defaults applied. Defaults are
// loaded first, then overridden by the config file and environment.
func defaultConfig() *Config {
	return &Config{
		Plex: PlexConfig{
			URL:          "",
			Token:        "",
			MovieLibrary: "Movies",
			ManageLabels: false,
			LabelName:    "Recommended",
			Timeout:      30 * time.Second,
		},
		Tautulli: TautulliConfig{
			Enabled: false,
			Timeout: 30 * time.Second,
		},
		Trakt: TraktConfig{
			Enabled:      false,
			LimitResults: 10,
			Timeout:      30 * time.Second,
		},
		TMDB: TMDBConfig{
			Enabled: false,
			Timeout: 15 * time.Second,
		},
		Radarr: RadarrConfig{
			Enabled:          false,
			QualityProfileID: 1,
			Monitor:          true,
			SearchForMovie:   false,
			Timeout:          30 * time.Second,
		},
		Weights: recommend.DefaultCategoryWeights(),
		General: GeneralConfig{
			LimitResults:                10,
			ExcludeGenre:                nil,
			RandomizeRecommendations:    true,
			NormalizeCounters:           true,
			RatingMode:                  string(recommend.RatingMultiplier),
			TopCast:                     recommend.DefaultTopCast,
			ExcludePriorRecommendations: true,
			CachePath:                   "cache/flickpick_cache.json",
			CacheMaxAgeDays:             90,
			Seed:                        0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
