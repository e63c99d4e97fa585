// Package geo handles geographic data structures and coordinate conversions.
package geo

// FeatureCollection is a GeoJSON collection of point features.
type FeatureCollection struct {
	Type     string    `json:"type" yaml:"type"`
	Features []Feature `json:"features" yaml:"features"`
}

// Feature is a single GeoJSON feature with geometry and properties.
type Feature struct {
	ID         string         `json:"id,omitempty" yaml:"id,omitempty"`
	Type       string         `json:"type" yaml:"type"`
	Geometry   Geometry       `json:"geometry" yaml:"geometry"`
	Properties map[string]any `json:"properties" yaml:"properties"`
}

// Geometry of a feature. Only points are produced here.
type Geometry struct {
	Type        string    `json:"type" yaml:"type"`
	Coordinates []float64 `json:"coordinates" yaml:"coordinates"` // [Lon, Lat]
}

// NewFeatureCollection returns an empty collection with room for n features.
func NewFeatureCollection(n int) FeatureCollection {
	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]Feature, 0, n),
	}
}

// NewPoint builds a point feature. Note the GeoJSON [lon, lat] axis order.
func NewPoint(id string, lat, lon float64, props map[string]any) Feature {
	if props == nil {
		props = map[string]any{}
	}

	return Feature{
		ID:   id,
		Type: "Feature",
		Geometry: Geometry{
			Type:        "Point",
			Coordinates: []float64{lon, lat},
		},
		Properties: props,
	}
}
