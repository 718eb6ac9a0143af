// Flickpick - Personalized Movie Recommendations for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flickpick

package recommend

import (
	"fmt"
	"testing"
)

// mockRunCache implements RunCache for testing.
type mockRunCache struct {
	prior    map[string]struct{}
	recorded map[string]string
}

func newMockRunCache(priorIDs ...string) *mockRunCache {
	prior := make(map[string]struct{}, len(priorIDs))
	for _, id := range priorIDs {
		prior[id] = struct{}{}
	}
	return &mockRunCache{prior: prior, recorded: make(map[string]string)}
}

func (m *mockRunCache) SeenBefore(id string) bool {
	_, ok := m.prior[id]
	return ok
}

func (m *mockRunCache) Record(id, action string) {
	m.recorded[id] = action
}

func makeCandidates(n int) []ScoredCandidate {
	cands := make([]ScoredCandidate, 0, n)
	for i := 0; i < n; i++ {
		cands = append(cands, ScoredCandidate{
			Movie: MovieRecord{
				ID:             fmt.Sprintf("m%d", i),
				Title:          fmt.Sprintf("Movie %d", i),
				Genres:         []string{"action"},
				ExternalRating: -1,
				UserRating:     -1,
			},
			Score: float64(n - i), // descending distinct scores
		})
	}
	return cands
}

func TestSelectGenreExclusion(t *testing.T) {
	cands := makeCandidates(5)
	// Give the top-scoring candidate an excluded genre.
	cands[0].Movie.Genres = []string{"documentary"}
	cands[0].Score = 100

	s := NewSelector(1)
	out := s.Select(cands, SelectOptions{
		ExcludedGenres: []string{"Documentary"},
		Limit:          5,
	})

	for _, m := range out {
		if m.ID == cands[0].Movie.ID {
			t.Error("excluded-genre candidate appeared in output despite top score")
		}
	}
	if len(out) != 4 {
		t.Errorf("got %d results, want 4 after exclusion", len(out))
	}
}

func TestSelectCacheHitExclusionAndRecording(t *testing.T) {
	cands := makeCandidates(4)
	cache := newMockRunCache("m0", "m2")

	s := NewSelector(1)
	out := s.Select(cands, SelectOptions{
		Limit:            4,
		Cache:            cache,
		ExcludeCacheHits: true,
	})

	if len(out) != 2 {
		t.Fatalf("got %d results, want 2 after cache exclusion", len(out))
	}
	for _, m := range out {
		if m.ID == "m0" || m.ID == "m2" {
			t.Errorf("cache-hit candidate %s re-recommended", m.ID)
		}
		if cache.recorded[m.ID] != ActionRecommended {
			t.Errorf("selected %s not recorded in run cache", m.ID)
		}
	}
}

func TestSelectCacheHitsKeptWhenNotExcluding(t *testing.T) {
	cands := makeCandidates(3)
	cache := newMockRunCache("m0")

	s := NewSelector(1)
	out := s.Select(cands, SelectOptions{Limit: 3, Cache: cache})

	if len(out) != 3 {
		t.Errorf("got %d results, want all 3 when ExcludeCacheHits is off", len(out))
	}
}

func TestSelectSizeBound(t *testing.T) {
	s := NewSelector(7)

	t.Run("limit caps output", func(t *testing.T) {
		out := s.Select(makeCandidates(10), SelectOptions{Limit: 3, Randomize: true})
		if len(out) != 3 {
			t.Errorf("got %d results, want exactly 3", len(out))
		}
	})

	t.Run("fewer eligible than limit", func(t *testing.T) {
		out := s.Select(makeCandidates(2), SelectOptions{Limit: 5})
		if len(out) != 2 {
			t.Errorf("got %d results, want 2", len(out))
		}
	})

	t.Run("zero limit", func(t *testing.T) {
		out := s.Select(makeCandidates(4), SelectOptions{Limit: 0})
		if len(out) != 0 {
			t.Errorf("got %d results, want 0", len(out))
		}
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		out := s.Select(nil, SelectOptions{Limit: 3})
		if out == nil || len(out) != 0 {
			t.Errorf("got %v, want empty non-nil slice", out)
		}
	})
}

func TestSelectTopKWithoutRandomize(t *testing.T) {
	cands := makeCandidates(10)

	s := NewSelector(1)
	out := s.Select(cands, SelectOptions{Limit: 3})

	want := []string{"m0", "m1", "m2"}
	for i, m := range out {
		if m.ID != want[i] {
			t.Errorf("out[%d] = %s, want %s", i, m.ID, want[i])
		}
	}
}

func TestSelectRandomizedDrawsFromTopBand(t *testing.T) {
	// limit 3 -> band is the top 9 of 10 candidates; m9 (lowest score) must
	// never be picked.
	for seed := int64(1); seed <= 20; seed++ {
		s := NewSelector(seed)
		out := s.Select(makeCandidates(10), SelectOptions{Limit: 3, Randomize: true})
		if len(out) != 3 {
			t.Fatalf("seed %d: got %d results, want 3", seed, len(out))
		}
		for _, m := range out {
			if m.ID == "m9" {
				t.Errorf("seed %d: candidate outside the top band was selected", seed)
			}
		}
	}
}

func TestSelectRandomizedVariesAcrossSeeds(t *testing.T) {
	pick := func(seed int64) string {
		s := NewSelector(seed)
		out := s.Select(makeCandidates(10), SelectOptions{Limit: 3, Randomize: true})
		ids := ""
		for _, m := range out {
			ids += m.ID + ","
		}
		return ids
	}

	first := pick(1)
	varied := false
	for seed := int64(2); seed <= 10; seed++ {
		if pick(seed) != first {
			varied = true
			break
		}
	}
	if !varied {
		t.Error("randomized selection identical across 10 seeds")
	}
}

func TestSelectDeterministicWithPinnedSeed(t *testing.T) {
	run := func() []MovieRecord {
		s := NewSelector(99)
		return s.Select(makeCandidates(10), SelectOptions{Limit: 3, Randomize: true})
	}

	a, b := run(), run()
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Fatalf("pinned seed produced differing selections: %v vs %v", a, b)
		}
	}
}

func TestSelectStableTieOrder(t *testing.T) {
	cands := []ScoredCandidate{
		{Movie: MovieRecord{ID: "first", Title: "F", ExternalRating: -1, UserRating: -1}, Score: 1.0},
		{Movie: MovieRecord{ID: "second", Title: "S", ExternalRating: -1, UserRating: -1}, Score: 1.0},
		{Movie: MovieRecord{ID: "third", Title: "T", ExternalRating: -1, UserRating: -1}, Score: 1.0},
	}

	s := NewSelector(1)
	out := s.Select(cands, SelectOptions{Limit: 3})

	want := []string{"first", "second", "third"}
	for i, m := range out {
		if m.ID != want[i] {
			t.Errorf("tie order not stable: out[%d] = %s, want %s", i, m.ID, want[i])
		}
	}
}

func TestSelectZeroScoresStillSample(t *testing.T) {
	cands := makeCandidates(5)
	for i := range cands {
		cands[i].Score = 0
	}

	s := NewSelector(3)
	out := s.Select(cands, SelectOptions{Limit: 2, Randomize: true})
	if len(out) != 2 {
		t.Errorf("got %d results from zero-scored pool, want 2", len(out))
	}
}
