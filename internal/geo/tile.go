package geo

import "math"

// Tile is a slippy map tile address.
type Tile struct {
	Z, X, Y int
}

// LatLonToTile returns the Web Mercator tile containing the point at zoom z.
func LatLonToTile(lat, lon float64, z int) Tile {
	lat = clamp(lat, -MaxLat, MaxLat)
	lon = clamp(lon, -180, 180)

	n := 1 << z
	x := int(math.Floor((lon + 180.0) / 360.0 * float64(n)))

	latRad := lat * math.Pi / 180.0
	y := int(math.Floor((1.0 - math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0 * float64(n)))

	// lon == 180 and lat == -MaxLat land one past the last tile
	x = min(max(x, 0), n-1)
	y = min(max(y, 0), n-1)

	return Tile{Z: z, X: x, Y: y}
}

// TileRange lists all tiles at zoom z that cover the box, row by row.
func TileRange(b BBox, z int) []Tile {
	if b.IsEmpty() {
		return nil
	}

	// north-west corner has the smallest y
	nw := LatLonToTile(b.MaxLat, b.MinLon, z)
	se := LatLonToTile(b.MinLat, b.MaxLon, z)

	tiles := make([]Tile, 0, (se.X-nw.X+1)*(se.Y-nw.Y+1))
	for y := nw.Y; y <= se.Y; y++ {
		for x := nw.X; x <= se.X; x++ {
			tiles = append(tiles, Tile{Z: z, X: x, Y: y})
		}
	}

	return tiles
}
