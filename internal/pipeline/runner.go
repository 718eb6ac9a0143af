// Flickpick - Personalized Movie Recommendations for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flickpick

// Package pipeline orchestrates one recommendation run end to end: load the
// run cache, pull library and watch history, enrich with plot keywords, score
// and select, then fan results out to labels, acquisition, and the external
// recommendation service.
//
// Collaborator failures degrade the run rather than abort it: the media
// server is the only hard dependency. Everything else logs a warning and the
// run continues with what it has.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/flickpick/internal/config"
	"github.com/tomtom215/flickpick/internal/mediaserver/plex"
	"github.com/tomtom215/flickpick/internal/mediaserver/tautulli"
	"github.com/tomtom215/flickpick/internal/metadata/tmdb"
	"github.com/tomtom215/flickpick/internal/radarr"
	"github.com/tomtom215/flickpick/internal/recommend"
	"github.com/tomtom215/flickpick/internal/runcache"
	"github.com/tomtom215/flickpick/internal/trakt"
)

// Run cache actions beyond the selector's own.
const (
	// ActionSynced marks an external recommendation surfaced to the user.
	ActionSynced = "synced"

	// ActionRequested marks a movie submitted for acquisition.
	ActionRequested = "requested"
)

// mediaServer is the slice of the Plex client the pipeline needs.
type mediaServer interface {
	FindMovieSection(ctx context.Context, title string) (string, error)
	GetMovies(ctx context.Context, sectionKey string) ([]plex.Movie, error)
	ApplyLabel(ctx context.Context, sectionKey, ratingKey, label string, existing []string) error
	RemoveLabel(ctx context.Context, sectionKey, ratingKey, label string, existing []string) error
}

// historySource supplies watch history when Tautulli is preferred over the
// media server's own view counts.
type historySource interface {
	GetWatchedMovies(ctx context.Context, user string) ([]tautulli.HistoryRecord, error)
}

// keywordSource enriches movies with plot keywords.
type keywordSource interface {
	FindByIMDbID(ctx context.Context, imdbID string) (int, error)
	Keywords(ctx context.Context, tmdbID int) ([]string, error)
}

// recommendationService is the external personalized recommendation API.
type recommendationService interface {
	SyncHistory(ctx context.Context, movies []trakt.WatchedMovie) (int, error)
	ClearHistory(ctx context.Context) (int, error)
	Recommendations(ctx context.Context, limit int) ([]trakt.Movie, error)
}

// acquisitionService requests movies the library is missing.
type acquisitionService interface {
	Add(ctx context.Context, tmdbID int) (*radarr.Movie, error)
}

// Result summarizes one completed run.
type Result struct {
	RunID string

	// Recommended is the final local recommendation list, in selection order.
	Recommended []recommend.MovieRecord

	// External holds recommendations from the external service that are not
	// already in the library.
	External []trakt.Movie

	// Requested counts movies submitted for acquisition this run.
	Requested int

	Duration time.Duration
}

// Runner executes recommendation runs for one configuration.
type Runner struct {
	cfg    *config.Config
	logger zerolog.Logger

	media   mediaServer
	history historySource
	keyword keywordSource
	recSvc  recommendationService
	acq     acquisitionService

	now func() time.Time
}

// NewRunner wires concrete clients from configuration. Optional
// collaborators stay nil when their sections are disabled.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRunner(cfg *config.Config, logger zerolog.Logger) *Runner {
	r := &Runner{
		cfg:    cfg,
		logger: logger,
		media:  plex.NewClient(cfg.Plex, logger),
		now:    time.Now,
	}

	if cfg.Tautulli.Enabled {
		r.history = tautulli.NewClient(cfg.Tautulli, logger)
	}
	if cfg.TMDB.Enabled {
		r.keyword = tmdb.NewClient(cfg.TMDB, logger)
	}
	if cfg.Trakt.Enabled {
		r.recSvc = trakt.NewClient(cfg.Trakt, logger)
	}
	if cfg.Radarr.Enabled {
		r.acq = radarr.NewClient(cfg.Radarr, logger)
	}

	return r
}

// Run executes one full recommendation pass.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	started := r.now()
	runID := uuid.New().String()
	log := r.logger.With().Str("run_id", runID).Logger()

	log.Info().Msg("recommendation run starting")

	cache := r.loadCache(log)

	movies, sectionKey, err := r.fetchLibrary(ctx)
	if err != nil {
		return nil, err
	}

	watched, candidates := r.splitHistory(ctx, log, movies)
	log.Info().
		Int("library", len(movies)).
		Int("watched", len(watched)).
		Int("candidates", len(candidates)).
		Msg("library partitioned")

	watchedRaws := toRaws(watched)
	candidateRaws := toRaws(candidates)
	r.enrichKeywords(ctx, log, watchedRaws)
	r.enrichKeywords(ctx, log, candidateRaws)

	engine, err := recommend.NewEngine(recommend.EngineConfig{
		Weights:           r.cfg.Weights,
		RatingMode:        recommend.RatingMode(r.cfg.General.RatingMode),
		NormalizeCounters: r.cfg.General.NormalizeCounters,
		TopCast:           r.cfg.General.TopCast,
		Seed:              r.seed(),
	}, log)
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}

	selected := engine.Recommend(watchedRaws, candidateRaws, recommend.SelectOptions{
		ExcludedGenres:   r.cfg.General.ExcludeGenre,
		Limit:            r.cfg.General.LimitResults,
		Cache:            cache,
		ExcludeCacheHits: r.cfg.General.ExcludePriorRecommendations,
		Randomize:        r.cfg.General.RandomizeRecommendations,
	})

	r.applyLabels(ctx, log, sectionKey, movies, selected)

	external := r.runExternal(ctx, log, cache, watched, movies)
	requested := r.requestAcquisitions(ctx, log, cache, external)

	r.saveCache(log, cache)

	result := &Result{
		RunID:       runID,
		Recommended: selected,
		External:    external,
		Requested:   requested,
		Duration:    r.now().Sub(started),
	}

	log.Info().
		Int("recommended", len(result.Recommended)).
		Int("external", len(result.External)).
		Int("requested", result.Requested).
		Dur("duration", result.Duration).
		Msg("recommendation run finished")

	return result, nil
}

// seed returns the configured selector seed, or one from the clock so
// scheduled runs vary.
func (r *Runner) seed() int64 {
	if r.cfg.General.Seed != 0 {
		return r.cfg.General.Seed
	}
	return r.now().UnixNano()
}

// loadCache loads the run cache, downgrading corruption to a warning and an
// empty cache so one bad file never blocks a run.
func (r *Runner) loadCache(log zerolog.Logger) *runcache.Cache {
	cache, err := runcache.Load(r.cfg.General.CachePath, r.now())
	if err != nil {
		var corrupt *runcache.CacheCorruptError
		if errors.As(err, &corrupt) {
			log.Warn().Err(err).Str("path", corrupt.Path).Msg("run cache corrupt, starting empty")
		} else {
			log.Warn().Err(err).Msg("run cache unreadable, starting empty")
		}
	}
	return cache
}

// saveCache prunes expired entries and persists the cache. A failed save
// costs cross-run dedup, not the run.
func (r *Runner) saveCache(log zerolog.Logger, cache *runcache.Cache) {
	if maxAge := r.cfg.General.CacheMaxAgeDays; maxAge > 0 {
		pruned := cache.Prune(time.Duration(maxAge) * 24 * time.Hour)
		if pruned > 0 {
			log.Debug().Int("pruned", pruned).Msg("expired run cache entries dropped")
		}
	}
	if err := cache.Save(); err != nil {
		log.Warn().Err(err).Msg("run cache save failed")
	}
}

// fetchLibrary resolves the configured movie section and pulls its contents.
func (r *Runner) fetchLibrary(ctx context.Context) ([]plex.Movie, string, error) {
	sectionKey, err := r.media.FindMovieSection(ctx, r.cfg.Plex.MovieLibrary)
	if err != nil {
		return nil, "", fmt.Errorf("find movie library: %w", err)
	}

	movies, err := r.media.GetMovies(ctx, sectionKey)
	if err != nil {
		return nil, "", fmt.Errorf("fetch library: %w", err)
	}
	return movies, sectionKey, nil
}

// splitHistory partitions the library into watched and candidate sets.
// Tautulli history wins when enabled; otherwise the media server's view
// counts decide. A Tautulli failure falls back to view counts.
func (r *Runner) splitHistory(ctx context.Context, log zerolog.Logger, movies []plex.Movie) (watched, candidates []plex.Movie) {
	watchedKeys := r.tautulliWatchedKeys(ctx, log)

	for _, m := range movies {
		isWatched := m.Watched()
		if watchedKeys != nil {
			_, isWatched = watchedKeys[m.RatingKey]
		}
		if isWatched {
			watched = append(watched, m)
		} else {
			candidates = append(candidates, m)
		}
	}
	return watched, candidates
}

// tautulliWatchedKeys returns the set of watched rating keys from Tautulli,
// or nil when Tautulli is disabled or unreachable.
func (r *Runner) tautulliWatchedKeys(ctx context.Context, log zerolog.Logger) map[string]struct{} {
	if r.history == nil {
		return nil
	}

	users := r.cfg.Tautulli.Users
	if len(users) == 0 {
		users = []string{""}
	}

	keys := make(map[string]struct{})
	for _, user := range users {
		records, err := r.history.GetWatchedMovies(ctx, user)
		if err != nil {
			log.Warn().Err(err).Str("user", user).Msg("tautulli history unavailable, using server view counts")
			return nil
		}
		for _, rec := range records {
			keys[rec.RatingKey] = struct{}{}
		}
	}
	return keys
}

// toRaws converts media server movies into scoring input.
func toRaws(movies []plex.Movie) []recommend.RawMovie {
	raws := make([]recommend.RawMovie, 0, len(movies))
	for i := range movies {
		raws = append(raws, movies[i].ToRaw())
	}
	return raws
}

// enrichKeywords fills in plot keywords where the keyword source knows the
// movie. A lookup failure skips that movie only.
func (r *Runner) enrichKeywords(ctx context.Context, log zerolog.Logger, raws []recommend.RawMovie) {
	if r.keyword == nil {
		return
	}

	enriched := 0
	for i := range raws {
		tmdbID, err := r.resolveTMDBID(ctx, raws[i])
		if err != nil {
			log.Debug().Err(err).Str("title", raws[i].Title).Msg("tmdb lookup failed")
			continue
		}
		if tmdbID <= 0 {
			continue
		}

		keywords, err := r.keyword.Keywords(ctx, tmdbID)
		if err != nil {
			log.Debug().Err(err).Str("title", raws[i].Title).Msg("keyword fetch failed")
			continue
		}
		if len(keywords) > 0 {
			raws[i].Keywords = keywords
			enriched++
		}
	}

	if enriched > 0 {
		log.Debug().Int("enriched", enriched).Int("total", len(raws)).Msg("keyword enrichment done")
	}
}

// resolveTMDBID extracts or looks up the TMDB ID for a raw movie. Raw IDs
// come from the media server as "tt…" (IMDb), "tmdb:N", or "plex:N".
func (r *Runner) resolveTMDBID(ctx context.Context, raw recommend.RawMovie) (int, error) {
	if id, ok := tmdbIDFromRaw(raw.ID); ok {
		return id, nil
	}
	if len(raw.ID) > 2 && raw.ID[:2] == "tt" {
		return r.keyword.FindByIMDbID(ctx, raw.ID)
	}
	return 0, nil
}

// tmdbIDFromRaw parses a "tmdb:N" raw ID.
func tmdbIDFromRaw(id string) (int, bool) {
	const prefix = "tmdb:"
	if len(id) <= len(prefix) || id[:len(prefix)] != prefix {
		return 0, false
	}
	n, err := strconv.Atoi(id[len(prefix):])
	if err != nil {
		return 0, false
	}
	return n, true
}

// applyLabels reconciles the recommendation label: applied to this run's
// picks, removed from movies labeled by earlier runs.
func (r *Runner) applyLabels(ctx context.Context, log zerolog.Logger, sectionKey string, movies []plex.Movie, selected []recommend.MovieRecord) {
	if !r.cfg.Plex.ManageLabels || r.cfg.Plex.LabelName == "" {
		return
	}
	label := r.cfg.Plex.LabelName

	selectedIDs := make(map[string]struct{}, len(selected))
	for i := range selected {
		selectedIDs[selected[i].ID] = struct{}{}
	}

	applied, removed := 0, 0
	for i := range movies {
		m := &movies[i]
		_, picked := selectedIDs[m.ToRaw().ID]

		existing := make([]string, 0, len(m.Labels))
		for _, l := range m.Labels {
			existing = append(existing, l.Tag)
		}

		switch {
		case picked && !m.HasLabel(label):
			if err := r.media.ApplyLabel(ctx, sectionKey, m.RatingKey, label, existing); err != nil {
				log.Warn().Err(err).Str("title", m.Title).Msg("label apply failed")
				continue
			}
			applied++
		case !picked && m.HasLabel(label):
			if err := r.media.RemoveLabel(ctx, sectionKey, m.RatingKey, label, existing); err != nil {
				log.Warn().Err(err).Str("title", m.Title).Msg("label remove failed")
				continue
			}
			removed++
		}
	}

	if applied > 0 || removed > 0 {
		log.Info().Int("applied", applied).Int("removed", removed).Str("label", label).Msg("labels reconciled")
	}
}

// runExternal syncs watch history to the external recommendation service and
// fetches its personalized list, dropping titles the library already has and,
// when configured, titles surfaced by earlier runs.
func (r *Runner) runExternal(ctx context.Context, log zerolog.Logger, cache *runcache.Cache, watched, library []plex.Movie) []trakt.Movie {
	if r.recSvc == nil {
		return nil
	}

	if r.cfg.Trakt.ClearWatchHistory {
		if n, err := r.recSvc.ClearHistory(ctx); err != nil {
			log.Warn().Err(err).Msg("history clear failed")
		} else if n > 0 {
			log.Info().Int("removed", n).Msg("external watch history cleared")
		}
	}

	if r.cfg.Trakt.SyncWatchHistory {
		if _, err := r.recSvc.SyncHistory(ctx, r.traktHistory(watched)); err != nil {
			log.Warn().Err(err).Msg("history sync failed")
		}
	}

	fetched, err := r.recSvc.Recommendations(ctx, r.cfg.Trakt.LimitResults)
	if err != nil {
		log.Warn().Err(err).Msg("external recommendations unavailable")
		return nil
	}

	inLibrary := libraryIDSet(library)

	var external []trakt.Movie
	for _, m := range fetched {
		id := traktMovieID(m)
		if id == "" {
			continue
		}
		if _, have := inLibrary[id]; have {
			continue
		}
		if r.cfg.General.ExcludePriorRecommendations && cache.SeenBefore(id) {
			continue
		}
		cache.Record(id, ActionSynced)
		external = append(external, m)
	}

	log.Info().Int("fetched", len(fetched)).Int("kept", len(external)).Msg("external recommendations filtered")
	return external
}

// traktHistory converts watched library movies into history upload entries.
// Movies without an IMDb or TMDB identifier are skipped; the service cannot
// match them.
func (r *Runner) traktHistory(watched []plex.Movie) []trakt.WatchedMovie {
	watchedAt := r.now()

	entries := make([]trakt.WatchedMovie, 0, len(watched))
	for i := range watched {
		m := &watched[i]
		ids := trakt.IDs{IMDb: m.IMDbID()}
		if tmdbStr := m.TMDBID(); tmdbStr != "" {
			if n, err := strconv.Atoi(tmdbStr); err == nil {
				ids.TMDB = n
			}
		}
		if ids.IMDb == "" && ids.TMDB == 0 {
			continue
		}

		entries = append(entries, trakt.WatchedMovie{
			Title:     m.Title,
			Year:      m.Year,
			WatchedAt: watchedAt,
			IDs:       ids,
		})
	}
	return entries
}

// libraryIDSet collects every identifier form the library movies answer to.
func libraryIDSet(movies []plex.Movie) map[string]struct{} {
	ids := make(map[string]struct{}, len(movies)*2)
	for i := range movies {
		m := &movies[i]
		if imdb := m.IMDbID(); imdb != "" {
			ids[imdb] = struct{}{}
		}
		if tmdbStr := m.TMDBID(); tmdbStr != "" {
			ids["tmdb:"+tmdbStr] = struct{}{}
		}
	}
	return ids
}

// traktMovieID picks the identifier used for library matching and the run
// cache, preferring IMDb like the media server conversion does.
func traktMovieID(m trakt.Movie) string {
	if m.IDs.IMDb != "" {
		return m.IDs.IMDb
	}
	if m.IDs.TMDB != 0 {
		return "tmdb:" + strconv.Itoa(m.IDs.TMDB)
	}
	return ""
}

// requestAcquisitions submits external recommendations with TMDB IDs for
// acquisition.
func (r *Runner) requestAcquisitions(ctx context.Context, log zerolog.Logger, cache *runcache.Cache, external []trakt.Movie) int {
	if r.acq == nil || len(external) == 0 {
		return 0
	}

	requested := 0
	for _, m := range external {
		if m.IDs.TMDB == 0 {
			continue
		}

		added, err := r.acq.Add(ctx, m.IDs.TMDB)
		if err != nil {
			log.Warn().Err(err).Str("title", m.Title).Msg("acquisition request failed")
			continue
		}
		if added == nil {
			continue
		}

		cache.Record(traktMovieID(m), ActionRequested)
		requested++
	}

	return requested
}
