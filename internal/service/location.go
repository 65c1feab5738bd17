package service

import (
	"errors"
	"math"
	"strconv"
)

// ErrInvalidCoordinates is returned for a latitude/longitude pair outside the valid range.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// MapLink builds the map URL stored as a request's location from a device position.
func MapLink(lat, lon float64) (string, error) {
	if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return "", ErrInvalidCoordinates
	}
	return "https://www.google.com/maps?q=" +
		strconv.FormatFloat(lat, 'f', -1, 64) + "," +
		strconv.FormatFloat(lon, 'f', -1, 64), nil
}
