package geo

import (
	"fmt"
	"regexp"
	"strconv"
)

// Matches "46:30-46:36N, 120:10-120:20W": a degree:minute range per axis.
var dmsRangeRegex = regexp.MustCompile(
	`(\d+):(\d+)-(\d+):(\d+)\s*([NS])\s*,\s*` +
		`(\d+):(\d+)-(\d+):(\d+)\s*([EW])`,
)

// ParseDMSRange converts a degree:minute range location string into the
// midpoint latitude and longitude. Southern and western values are negative.
func ParseDMSRange(s string) (lat, lon float64, err error) {
	m := dmsRangeRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, fmt.Errorf("no coordinate range in %q", s)
	}

	n := make([]float64, 0, 8)
	for _, idx := range []int{1, 2, 3, 4, 6, 7, 8, 9} {
		v, err := strconv.ParseFloat(m[idx], 64)
		if err != nil {
			return 0, 0, err
		}
		n = append(n, v)
	}

	lat = (n[0] + n[1]/60 + n[2] + n[3]/60) / 2
	lon = (n[4] + n[5]/60 + n[6] + n[7]/60) / 2

	if m[5] == "S" {
		lat = -lat
	}
	if m[10] == "W" {
		lon = -lon
	}

	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("coordinates out of range in %q", s)
	}

	return lat, lon, nil
}
