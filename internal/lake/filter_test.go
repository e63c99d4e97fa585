package lake

import (
	"reflect"
	"strings"
	"testing"
)

func sampleLakes() []Lake {
	return []Lake{
		{ID: "1", Name: "Tahoe", Species: []string{"Trout", "Bass"}, Location: Location{39.0968, -120.0324}},
		{ID: "2", Name: "Mono Lake", Species: []string{"Brine Shrimp"}, Location: Location{38.0162, -119.0092}},
	}
}

func ids(lakes []Lake) []ID {
	out := make([]ID, 0, len(lakes))
	for _, l := range lakes {
		out = append(out, l.ID)
	}
	return out
}

func TestFilterScenarios(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []ID
	}{
		{"species match", "trout", []ID{"1"}},
		{"name match only", "lake", []ID{"2"}},
		{"mixed case", "SHRIMP", []ID{"2"}},
		{"substring in both", "a", []ID{"1", "2"}},
		{"no match", "pike", []ID{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Filter(sampleLakes(), tt.query))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Filter(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestFilterEmptyQueryIsIdentity(t *testing.T) {
	lakes := sampleLakes()
	got := Filter(lakes, "")

	if len(got) != len(lakes) {
		t.Fatalf("Expected %d lakes, got %d", len(lakes), len(got))
	}
	if &got[0] != &lakes[0] {
		t.Error("empty query should return the input slice itself")
	}
}

func TestFilterDoesNotAliasInput(t *testing.T) {
	lakes := sampleLakes()
	got := Filter(lakes, "tahoe")
	got[0].Name = "changed"

	if lakes[0].Name != "Tahoe" {
		t.Error("filtered result should not share storage with the input")
	}
}

func TestFilterMatchesDefinition(t *testing.T) {
	lakes := []Lake{
		{ID: "a", Name: "Lake Superior", Species: []string{"Lake Trout", "Walleye"}},
		{ID: "b", Name: "Crater", Species: nil},
		{ID: "c", Name: "Clear Lake", Species: []string{"Largemouth Bass"}},
		{ID: "d", Name: "Flathead", Species: []string{"Bull Trout", "Kokanee"}},
		{ID: "e", Name: "ÉTANG", Species: []string{"Brochet"}},
	}
	queries := []string{"lake", "TROUT", "ee", "e", "x", "bass ", "étang", "Crater"}

	for _, q := range queries {
		var want []ID
		lq := strings.ToLower(q)
		for _, l := range lakes {
			hit := strings.Contains(strings.ToLower(l.Name), lq)
			for _, s := range l.Species {
				hit = hit || strings.Contains(strings.ToLower(s), lq)
			}
			if hit {
				want = append(want, l.ID)
			}
		}

		got := Filter(lakes, q)
		if want == nil {
			want = []ID{}
		}
		if !reflect.DeepEqual(ids(got), want) {
			t.Errorf("Filter(%q) = %v, want %v", q, ids(got), want)
		}

		// idempotent
		if again := Filter(got, q); !reflect.DeepEqual(ids(again), ids(got)) {
			t.Errorf("Filter is not idempotent for %q: %v then %v", q, ids(got), ids(again))
		}
	}
}

func TestFilterPreservesOrder(t *testing.T) {
	lakes := []Lake{
		{ID: "3", Name: "Zeta Trout Pond"},
		{ID: "1", Name: "Alpha"},
		{ID: "2", Name: "Beta", Species: []string{"trout"}},
	}

	got := ids(Filter(lakes, "trout"))
	want := []ID{"3", "2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}
