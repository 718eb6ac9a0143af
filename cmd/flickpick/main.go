// Flickpick - Personalized Movie Recommendations for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flickpick

// Package main is the entry point for the flickpick CLI.
//
// Flickpick builds a taste profile from a Plex library's watch history,
// scores every unwatched movie against it, and produces a personalized
// recommendation list. One invocation is one run; schedule it with cron or a
// systemd timer.
//
// # Run Pipeline
//
// Each run executes the following steps:
//
//  1. Configuration: load settings from environment variables and config file (Koanf v2)
//  2. Run cache: load previously surfaced titles for cross-run deduplication
//  3. Library: fetch the configured Plex movie section
//  4. History: partition into watched/candidates (Tautulli history when enabled)
//  5. Keywords: enrich movies with TMDB plot keywords (optional)
//  6. Scoring: build the taste profile and score candidates
//  7. Selection: genre exclusion, cache dedup, weighted top-band sampling
//  8. Labels: reconcile the recommendation label in Plex (optional)
//  9. Trakt: sync history and fetch external recommendations (optional)
//  10. Radarr: request missing recommended titles (optional)
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority
// wins): environment variables, config file (config.yaml or CONFIG_PATH),
// built-in defaults.
//
// Minimal run against Plex only:
//
//	export PLEX_URL=http://localhost:32400
//	export PLEX_TOKEN=your-plex-token
//	./flickpick
//
// With Tautulli history and TMDB keywords:
//
//	export TAUTULLI_ENABLED=true
//	export TAUTULLI_URL=http://localhost:8181
//	export TAUTULLI_API_KEY=your-api-key
//	export TMDB_ENABLED=true
//	export TMDB_API_KEY=your-tmdb-key
//	./flickpick
//
// # Exit Codes
//
// 0 on a completed run, 1 on configuration or media server failure. Optional
// collaborators (Tautulli, TMDB, Trakt, Radarr) degrade the run instead of
// failing it.
package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/tomtom215/flickpick/internal/config"
	"github.com/tomtom215/flickpick/internal/logging"
	"github.com/tomtom215/flickpick/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Default logger for config errors; config not yet available.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	logging.Info().
		Str("library", cfg.Plex.MovieLibrary).
		Bool("tautulli", cfg.Tautulli.Enabled).
		Bool("tmdb", cfg.TMDB.Enabled).
		Bool("trakt", cfg.Trakt.Enabled).
		Bool("radarr", cfg.Radarr.Enabled).
		Int("limit", cfg.General.LimitResults).
		Msg("Starting flickpick")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := pipeline.NewRunner(cfg, logging.Logger())

	result, err := runner.Run(ctx)
	if err != nil {
		logging.Fatal().Err(err).Msg("Recommendation run failed")
	}

	printResult(result)
}

// printResult writes the recommendation list to stdout for interactive runs;
// structured details already went to the log.
func printResult(result *pipeline.Result) {
	if len(result.Recommended) == 0 {
		fmt.Println("No recommendations this run.")
	} else {
		fmt.Printf("Recommended (%d):\n", len(result.Recommended))
		for i, m := range result.Recommended {
			fmt.Printf("  %2d. %s (%d)\n", i+1, m.Title, m.Year)
		}
	}

	if len(result.External) > 0 {
		fmt.Printf("Not in your library (%d):\n", len(result.External))
		for i, m := range result.External {
			fmt.Printf("  %2d. %s (%d)\n", i+1, m.Title, m.Year)
		}
	}
	if result.Requested > 0 {
		fmt.Printf("Requested for acquisition: %d\n", result.Requested)
	}
}
