package utils

import (
	"time"

	"github.com/bradfitz/latlong"
)

// TimeZoneName resolves an IANA zone from coordinates, falling back to UTC.
func TimeZoneName(lat, lng *float64) string {
	if lat == nil || lng == nil {
		return "UTC"
	}
	tzName := latlong.LookupZoneName(*lat, *lng)
	if tzName == "" {
		return "UTC"
	}
	return tzName
}

// LoadLocationOrUTC never fails; unknown zones map to UTC.
func LoadLocationOrUTC(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
