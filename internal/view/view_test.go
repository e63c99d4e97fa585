package view

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/woozymasta/lakemap/internal/catalog"
	"github.com/woozymasta/lakemap/internal/config"
	"github.com/woozymasta/lakemap/internal/lake"
)

type stringSource struct {
	body string
	err  error
}

func (s stringSource) Open(context.Context) (io.ReadCloser, error) {
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(strings.NewReader(s.body)), nil
}

func (s stringSource) String() string { return "test" }

const sampleJSON = `[
	{"id": 1, "name": "Tahoe", "species": ["Trout", "Bass"], "location": [39.0968, -120.0324]},
	{"id": 2, "name": "Mono Lake", "species": ["Brine Shrimp"], "location": [38.0162, -119.0092]}
]`

func display(t *testing.T, src stringSource) MapDisplay {
	t.Helper()

	c := catalog.New(nil)
	c.Load(context.Background(), src)
	return MapDisplay{Catalog: c, Map: config.Default().Map}
}

func TestRootQuery(t *testing.T) {
	var r Root
	if r.Query() != "" {
		t.Fatalf("initial query should be empty, got %q", r.Query())
	}

	r.SetQuery("  Trout ")
	if r.Query() != "  Trout " {
		t.Errorf("SetQuery should store the raw value, got %q", r.Query())
	}

	r.SetQuery("")
	if r.Query() != "" {
		t.Errorf("SetQuery should replace unconditionally, got %q", r.Query())
	}
}

func TestSearchInputEmitsRawValue(t *testing.T) {
	var r Root
	in := r.SearchInput()
	if in.Name != QueryParam {
		t.Errorf("Expected input name %q, got %q", QueryParam, in.Name)
	}

	for _, raw := range []string{"T", "Tr", "TROUT ", ""} {
		in.Change(raw)
		if r.Query() != raw {
			t.Errorf("Change(%q) left query %q", raw, r.Query())
		}
	}

	// a search input without a callback is inert
	SearchInput{}.Change("ignored")
}

func TestRenderNotLoaded(t *testing.T) {
	d := MapDisplay{Catalog: catalog.New(nil), Map: config.Default().Map}
	v := d.Render("trout")

	if v.Status != StatusLoading {
		t.Errorf("Expected status loading, got %s", v.Status)
	}
	if v.Markers == nil || len(v.Markers) != 0 {
		t.Errorf("Expected an empty marker list, got %#v", v.Markers)
	}
	if v.Center != [2]float64{config.DefaultLat, config.DefaultLon} || v.Zoom != config.DefaultZoom {
		t.Errorf("unexpected viewport %v zoom %d", v.Center, v.Zoom)
	}
}

func TestRenderLoaded(t *testing.T) {
	d := display(t, stringSource{body: sampleJSON})

	tests := []struct {
		query string
		want  []lake.ID
	}{
		{"trout", []lake.ID{"1"}},
		{"lake", []lake.ID{"2"}},
		{"", []lake.ID{"1", "2"}},
		{"SHRIMP", []lake.ID{"2"}},
	}

	for _, tt := range tests {
		v := d.Render(tt.query)
		if v.Status != StatusReady {
			t.Errorf("Expected status ready, got %s", v.Status)
		}
		if v.Total != 2 || v.Query != tt.query {
			t.Errorf("unexpected totals %d / query %q", v.Total, v.Query)
		}
		if len(v.Markers) != len(tt.want) {
			t.Errorf("Render(%q): expected %d markers, got %d", tt.query, len(tt.want), len(v.Markers))
			continue
		}
		for i, m := range v.Markers {
			if m.ID != tt.want[i] {
				t.Errorf("Render(%q) marker %d = %s, want %s", tt.query, i, m.ID, tt.want[i])
			}
		}
	}
}

func TestRenderLoadError(t *testing.T) {
	d := display(t, stringSource{err: errors.New("no route to host")})
	v := d.Render("")

	if v.Status != StatusError {
		t.Fatalf("Expected status error, got %s", v.Status)
	}
	if !strings.Contains(v.Error, "no route to host") {
		t.Errorf("error indicator should carry the reason, got %q", v.Error)
	}
	if len(v.Markers) != 0 {
		t.Errorf("Expected no markers after a failed load, got %d", len(v.Markers))
	}
}

func TestRenderPartial(t *testing.T) {
	body := `[
		{"id": 1, "name": "Tahoe", "species": ["Trout"], "location": [39.1, -120.0]},
		{"id": 2, "name": "Lost", "species": ["Trout"]}
	]`
	v := display(t, stringSource{body: body}).Render("trout")

	if v.Status != StatusPartial || v.Skipped != 1 {
		t.Errorf("Expected partial status with 1 skipped, got %s / %d", v.Status, v.Skipped)
	}
	if len(v.Markers) != 1 {
		t.Errorf("Expected 1 marker, got %d", len(v.Markers))
	}
}

func TestPopup(t *testing.T) {
	got := string(Popup(lake.Lake{Name: "Tahoe", Species: []string{"Trout", "Bass"}}))
	want := "<h2>Tahoe</h2><ul><li>Trout</li><li>Bass</li></ul>"
	if got != want {
		t.Errorf("Popup = %q, want %q", got, want)
	}

	got = string(Popup(lake.Lake{Name: `<script>alert("x")</script>`}))
	if strings.Contains(got, "<script>") {
		t.Errorf("popup content should be escaped, got %q", got)
	}
	if !strings.HasSuffix(got, "<ul></ul>") {
		t.Errorf("empty species should render an empty list, got %q", got)
	}
}

func TestNewMarkerSpeciesNeverNil(t *testing.T) {
	m := NewMarker(lake.Lake{ID: "9", Name: "Empty"})
	if m.Species == nil {
		t.Error("marker species should be an empty list, not nil")
	}
}
