package resolve_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/fieldclimate/fieldclimate-cli/internal/api"
	"github.com/fieldclimate/fieldclimate-cli/internal/resolve"
)

func station(original, custom string) api.Station {
	return api.Station{Name: api.StationName{Original: original, Custom: custom}}
}

func TestFuzzyMatch_ExactHit(t *testing.T) {
	items := []resolve.Named{
		{ID: "00206C61", Name: "North field"},
		{ID: "00208E6F", Name: "South field"},
	}
	id, err := resolve.FuzzyMatch("north field", items)
	if err != nil {
		t.Fatal(err)
	}
	if id != "00206C61" {
		t.Fatalf("expected 00206C61, got %s", id)
	}
}

func TestFuzzyMatch_IDHit(t *testing.T) {
	items := []resolve.Named{{ID: "00206C61", Name: "North field"}}
	id, err := resolve.FuzzyMatch("00206c61", items)
	if err != nil || id != "00206C61" {
		t.Fatalf("FuzzyMatch() = %q, %v", id, err)
	}
}

func TestFuzzyMatch_PartialHit(t *testing.T) {
	items := []resolve.Named{
		{ID: "00206C61", Name: "North vineyard"},
		{ID: "00208E6F", Name: "Greenhouse"},
	}
	id, err := resolve.FuzzyMatch("vine", items)
	if err != nil {
		t.Fatal(err)
	}
	if id != "00206C61" {
		t.Fatalf("expected 00206C61, got %s", id)
	}
}

func TestFuzzyMatch_Errors(t *testing.T) {
	items := []resolve.Named{{ID: "1", Name: "Orchard"}}

	if _, err := resolve.FuzzyMatch("  ", items); !errors.Is(err, resolve.ErrEmptyQuery) {
		t.Errorf("expected ErrEmptyQuery, got %v", err)
	}
	if _, err := resolve.FuzzyMatch("x", nil); !errors.Is(err, resolve.ErrEmptyItems) {
		t.Errorf("expected ErrEmptyItems, got %v", err)
	}

	_, err := resolve.FuzzyMatch("zzz", items)
	var nf *resolve.NotFoundError
	if !errors.As(err, &nf) || nf.Query != "zzz" {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestFuzzyMatch_Ambiguous(t *testing.T) {
	items := []resolve.Named{
		{ID: "A", Name: "field one"},
		{ID: "B", Name: "field two"},
	}
	_, err := resolve.FuzzyMatch("field", items)

	var amb *resolve.AmbiguousError
	if !errors.As(err, &amb) {
		t.Fatalf("expected AmbiguousError, got %v", err)
	}
	if len(amb.Matches) != 2 {
		t.Errorf("expected 2 candidates, got %d", len(amb.Matches))
	}
	if !strings.Contains(err.Error(), "A: field one") {
		t.Errorf("candidates missing from message: %s", err.Error())
	}
}

func TestFuzzyMatchAll(t *testing.T) {
	items := []resolve.Named{
		{ID: "1", Name: "orchard east"},
		{ID: "2", Name: "orchard west"},
		{ID: "3", Name: "greenhouse"},
	}
	matches := resolve.FuzzyMatchAll("orch", items, 5)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %v", matches)
	}
	if got := resolve.FuzzyMatchAll("orch", items, 1); len(got) != 1 {
		t.Errorf("limit not honored: %v", got)
	}
	if got := resolve.FuzzyMatchAll("", items, 5); got != nil {
		t.Errorf("empty query should return nil, got %v", got)
	}
}

func TestStations(t *testing.T) {
	items := resolve.Stations([]api.Station{
		station("00206C61", "North field"),
		station("00208E6F", ""),
		station("", "orphan"),
	})
	if len(items) != 3 {
		t.Fatalf("expected 3 candidates, got %v", items)
	}
	if items[1] != (resolve.Named{ID: "00206C61", Name: "North field"}) {
		t.Errorf("custom name candidate = %+v", items[1])
	}
}

func TestStationID(t *testing.T) {
	stations := []api.Station{
		station("00206C61", "North field"),
		station("00208E6F", "Greenhouse"),
	}

	tests := []struct {
		query string
		want  string
	}{
		{"00208E6F", "00208E6F"},
		{"greenhouse", "00208E6F"},
		{"north", "00206C61"},
	}
	for _, tt := range tests {
		got, err := resolve.StationID(tt.query, stations)
		if err != nil {
			t.Fatalf("StationID(%q) error = %v", tt.query, err)
		}
		if got != tt.want {
			t.Errorf("StationID(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}
