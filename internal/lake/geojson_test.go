package lake

import (
	"reflect"
	"testing"
)

func TestFeatureCollection(t *testing.T) {
	fc := FeatureCollection([]Lake{
		{ID: "1", Name: "Tahoe", Species: []string{"Trout"}, Location: Location{39.09, -120.03}},
		{ID: "2", Name: "Mono Lake", Location: Location{38.0, -119.0}},
	})

	if fc.Type != "FeatureCollection" || len(fc.Features) != 2 {
		t.Fatalf("unexpected collection %+v", fc)
	}

	f := fc.Features[0]
	if f.ID != "1" || f.Geometry.Type != "Point" {
		t.Errorf("unexpected feature %+v", f)
	}
	if want := []float64{-120.03, 39.09}; !reflect.DeepEqual(f.Geometry.Coordinates, want) {
		t.Errorf("Expected coordinates %v, got %v", want, f.Geometry.Coordinates)
	}
	if f.Properties["name"] != "Tahoe" {
		t.Errorf("Expected name Tahoe, got %v", f.Properties["name"])
	}

	species, ok := fc.Features[1].Properties["species"].([]string)
	if !ok || species == nil || len(species) != 0 {
		t.Errorf("missing species should be an empty list, got %#v", fc.Features[1].Properties["species"])
	}
}
