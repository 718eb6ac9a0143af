// Flickpick - Personalized Movie Recommendations for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flickpick

package recommend

import (
	"errors"
	"reflect"
	"testing"

	"github.com/rs/zerolog"
)

func floatPtr(f float64) *float64 { return &f }

func TestExtractMandatoryFields(t *testing.T) {
	e := NewExtractor(0)

	tests := []struct {
		name      string
		raw       RawMovie
		wantField string
	}{
		{"missing id", RawMovie{Title: "Heat"}, "id"},
		{"blank id", RawMovie{ID: "  ", Title: "Heat"}, "id"},
		{"missing title", RawMovie{ID: "1"}, "title"},
		{"blank title", RawMovie{ID: "1", Title: " "}, "title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Extract(tt.raw)
			var incomplete *IncompleteRecordError
			if !errors.As(err, &incomplete) {
				t.Fatalf("expected IncompleteRecordError, got %v", err)
			}
			if incomplete.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", incomplete.Field, tt.wantField)
			}
		})
	}
}

func TestExtractNormalization(t *testing.T) {
	e := NewExtractor(3)

	rec, err := e.Extract(RawMovie{
		ID:        "m1",
		Title:     "Heat",
		Year:      1995,
		Genres:    []string{"Crime", "crime", " Thriller ", ""},
		Directors: []string{"Michael Mann", "Someone Else"},
		Cast:      []string{"Al Pacino", "Robert De Niro", "Val Kilmer", "Jon Voight"},
		Language:  "English",
		Keywords:  []string{"Heist", "heist", "Los Angeles"},
	})
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	if got, want := rec.Genres, []string{"crime", "thriller"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Genres = %v, want %v", got, want)
	}
	if rec.Director != "Michael Mann" {
		t.Errorf("Director = %q, want first-listed director", rec.Director)
	}
	if got, want := rec.Cast, []string{"Al Pacino", "Robert De Niro", "Val Kilmer"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Cast = %v, want top 3 in source order %v", got, want)
	}
	if rec.Language != "english" {
		t.Errorf("Language = %q, want lower-cased", rec.Language)
	}
	if got, want := rec.Keywords, []string{"heist", "los angeles"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keywords = %v, want %v", got, want)
	}
}

func TestExtractAbsentAttributesDegrade(t *testing.T) {
	e := NewExtractor(0)

	rec, err := e.Extract(RawMovie{ID: "m2", Title: "Unknown Film"})
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	if rec.HasExternalRating() {
		t.Error("absent external rating should report HasExternalRating() == false")
	}
	if rec.HasUserRating() {
		t.Error("absent user rating should report HasUserRating() == false")
	}
	if rec.Director != "" || rec.Language != "" || rec.Genres != nil || rec.Keywords != nil {
		t.Errorf("absent attributes should be empty, got %+v", rec)
	}
}

func TestExtractRatings(t *testing.T) {
	e := NewExtractor(0)

	rec, err := e.Extract(RawMovie{
		ID:             "m3",
		Title:          "Rated",
		ExternalRating: floatPtr(7.4),
		UserRating:     floatPtr(9),
	})
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if !rec.HasExternalRating() || rec.ExternalRating != 7.4 {
		t.Errorf("ExternalRating = %v, want 7.4", rec.ExternalRating)
	}
	if !rec.HasUserRating() || rec.UserRating != 9 {
		t.Errorf("UserRating = %v, want 9", rec.UserRating)
	}
}

func TestExtractAllSkipsIncomplete(t *testing.T) {
	e := NewExtractor(0)

	raws := []RawMovie{
		{ID: "m1", Title: "Keep Me"},
		{Title: "No ID"},
		{ID: "m3", Title: "Also Keep"},
	}

	records := e.ExtractAll(raws, zerolog.Nop())
	if len(records) != 2 {
		t.Fatalf("ExtractAll returned %d records, want 2", len(records))
	}
	if records[0].ID != "m1" || records[1].ID != "m3" {
		t.Errorf("unexpected records: %+v", records)
	}
}
