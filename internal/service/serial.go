package service

import (
	"math/rand/v2"
	"strconv"
)

// SerialPrefix starts every submission serial number.
const SerialPrefix = "MS-"

// SerialFunc produces a display reference for a submission.
type SerialFunc func() string

// NewSerial returns "MS-" followed by a random integer in [100000, 999999].
// Serials are display references only; collisions are possible.
func NewSerial() string {
	return SerialPrefix + strconv.Itoa(100000+rand.IntN(900000))
}
