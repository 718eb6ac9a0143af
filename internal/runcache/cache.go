// Flickpick - Personalized Movie Recommendations for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flickpick

// Package runcache persists the identifiers handled by previous runs so a
// later run can avoid duplicate submissions and re-recommendations.
//
// The cache is a flat JSON file mapping movie identifier to the last run that
// touched it. Saves go through a temp file plus rename so an interrupted
// write never leaves a corrupt cache behind. Single-process, single-run
// usage is assumed; there is no locking.
package runcache

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
)

// Entry records the last run that touched a movie identifier.
type Entry struct {
	// LastRun is the timestamp of the run that recorded the entry.
	LastRun time.Time `json:"last_run"`

	// Action is what that run did: recommended, synced, or requested.
	Action string `json:"action"`
}

// CacheCorruptError reports a cache file that exists but cannot be parsed.
// Callers decide whether to continue with an empty cache (the default
// pipeline behavior, logged as a warning) or abort.
type CacheCorruptError struct {
	Path string
	Err  error
}

func (e *CacheCorruptError) Error() string {
	return fmt.Sprintf("run cache %s is corrupt: %v", e.Path, e.Err)
}

func (e *CacheCorruptError) Unwrap() error { return e.Err }

// Cache is the in-memory view of the run cache file. It implements the
// selector's RunCache interface.
type Cache struct {
	path    string
	now     time.Time
	entries map[string]Entry
}

// New returns an empty cache that will save to path. The now timestamp is
// stamped onto entries recorded during this run.
func New(path string, now time.Time) *Cache {
	return &Cache{
		path:    path,
		now:     now,
		entries: make(map[string]Entry),
	}
}

// Load reads the cache file at path. A missing file yields an empty cache; an
// unparsable file yields an empty cache plus CacheCorruptError so the caller
// can warn and continue.
func Load(path string, now time.Time) (*Cache, error) {
	c := New(path, now)

	data, err := os.ReadFile(path) //nolint:gosec // path comes from local configuration
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		// An unreadable file is an I/O problem, not corruption.
		return c, fmt.Errorf("read run cache %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &c.entries); err != nil {
		c.entries = make(map[string]Entry)
		return c, &CacheCorruptError{Path: path, Err: err}
	}
	return c, nil
}

// SeenBefore reports whether the identifier was recorded by a prior run.
// Entries written during the current run do not count.
func (c *Cache) SeenBefore(id string) bool {
	e, ok := c.entries[id]
	return ok && e.LastRun.Before(c.now)
}

// Record stores the identifier with the current run's timestamp.
func (c *Cache) Record(id, action string) {
	c.entries[id] = Entry{LastRun: c.now, Action: action}
}

// Len returns the number of cached identifiers.
func (c *Cache) Len() int { return len(c.entries) }

// Prune drops entries older than the retention window and returns how many
// were removed. maxAge <= 0 disables pruning.
func (c *Cache) Prune(maxAge time.Duration) int {
	if maxAge <= 0 {
		return 0
	}
	cutoff := c.now.Add(-maxAge)
	removed := 0
	for id, e := range c.entries {
		if e.LastRun.Before(cutoff) {
			delete(c.entries, id)
			removed++
		}
	}
	return removed
}

// Save writes the cache atomically: marshal to a temp file in the target
// directory, then rename over the destination.
func (c *Cache) Save() error {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run cache: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp cache file: %w", err)
	}

	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace cache file: %w", err)
	}
	return nil
}
