package lake

import "github.com/woozymasta/lakemap/internal/geo"

// FeatureCollection converts lakes to GeoJSON points carrying name and
// species properties.
func FeatureCollection(lakes []Lake) geo.FeatureCollection {
	fc := geo.NewFeatureCollection(len(lakes))
	for _, l := range lakes {
		species := l.Species
		if species == nil {
			species = []string{}
		}

		fc.Features = append(fc.Features, geo.NewPoint(string(l.ID), l.Location.Lat(), l.Location.Lon(), map[string]any{
			"name":    l.Name,
			"species": species,
		}))
	}
	return fc
}
