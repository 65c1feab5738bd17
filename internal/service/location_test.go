package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapLink(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		want     string
		wantErr  bool
	}{
		{name: "cairo", lat: 30.0444, lon: 31.2357, want: "https://www.google.com/maps?q=30.0444,31.2357"},
		{name: "integers", lat: 30, lon: 31, want: "https://www.google.com/maps?q=30,31"},
		{name: "negative", lat: -33.8688, lon: -151.2093, want: "https://www.google.com/maps?q=-33.8688,-151.2093"},
		{name: "bounds", lat: 90, lon: -180, want: "https://www.google.com/maps?q=90,-180"},
		{name: "latitude out of range", lat: 90.5, lon: 0, wantErr: true},
		{name: "longitude out of range", lat: 0, lon: 181, wantErr: true},
		{name: "nan", lat: math.NaN(), lon: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MapLink(tt.lat, tt.lon)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCoordinates)
				assert.Empty(t, got)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
