// Package lake defines lake records, the dataset decoder and the search filter.
package lake

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/woozymasta/lakemap/internal/geo"
)

// ID identifies a lake within a dataset. JSON numbers and strings are both
// accepted and kept in their string form. Numbers are canonicalized, so 1,
// 1.0 and 1e0 are the same id.
type ID string

// UnmarshalJSON accepts a number or a string.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a number or a string: %w", err)
	}
	*id = ID(canonicalNumber(n))
	return nil
}

func canonicalNumber(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if f, err := n.Float64(); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return n.String()
}

// MarshalJSON writes numeric ids back as numbers.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Location is a [latitude, longitude] pair.
type Location [2]float64

// Lat returns the latitude.
func (l Location) Lat() float64 { return l[0] }

// Lon returns the longitude.
func (l Location) Lon() float64 { return l[1] }

// Valid reports whether both values are finite and within range.
func (l Location) Valid() bool {
	for _, v := range l {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return l[0] >= -90 && l[0] <= 90 && l[1] >= -180 && l[1] <= 180
}

// Lake is one record of the dataset.
type Lake struct {
	ID       ID       `json:"id"`
	Name     string   `json:"name"`
	Species  []string `json:"species"`
	Location Location `json:"location"`
}

// Bounds returns the bounding box of all lake locations.
func Bounds(lakes []Lake) geo.BBox {
	b := geo.EmptyBBox()
	for _, l := range lakes {
		b = b.Extend(l.Location.Lat(), l.Location.Lon())
	}
	return b
}
