package geo

import "math"

// MaxLat is the latitude limit of the Web Mercator projection.
const MaxLat = 85.05112878

// BBox is a latitude/longitude bounding box.
type BBox struct {
	MinLat, MinLon float64
	MaxLat, MaxLon float64
}

// EmptyBBox returns a box that any Extend call replaces.
func EmptyBBox() BBox {
	return BBox{
		MinLat: math.Inf(1), MinLon: math.Inf(1),
		MaxLat: math.Inf(-1), MaxLon: math.Inf(-1),
	}
}

// IsEmpty reports whether no point was added.
func (b BBox) IsEmpty() bool {
	return b.MinLat > b.MaxLat || b.MinLon > b.MaxLon
}

// Extend grows the box to contain the point.
func (b BBox) Extend(lat, lon float64) BBox {
	b.MinLat = math.Min(b.MinLat, lat)
	b.MaxLat = math.Max(b.MaxLat, lat)
	b.MinLon = math.Min(b.MinLon, lon)
	b.MaxLon = math.Max(b.MaxLon, lon)
	return b
}

// Pad widens the box by deg degrees on each side, clamped to valid ranges.
func (b BBox) Pad(deg float64) BBox {
	if b.IsEmpty() {
		return b
	}

	b.MinLat = clamp(b.MinLat-deg, -MaxLat, MaxLat)
	b.MaxLat = clamp(b.MaxLat+deg, -MaxLat, MaxLat)
	b.MinLon = clamp(b.MinLon-deg, -180, 180)
	b.MaxLon = clamp(b.MaxLon+deg, -180, 180)
	return b
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
