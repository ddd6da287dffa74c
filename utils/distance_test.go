package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKm(t *testing.T) {
	// Jakarta (Monas) to Bandung (Gedung Sate), roughly 118 km apart.
	d := HaversineKm(-6.1754, 106.8272, -6.9025, 107.6186)
	assert.InDelta(t, 118, d, 5)

	assert.Equal(t, 0.0, HaversineKm(-6.2, 106.8, -6.2, 106.8))

	// Two points about 1.1 km apart within Bandung.
	short := HaversineKm(-6.9147, 107.6098, -6.9147, 107.6198)
	assert.InDelta(t, 1.1, short, 0.1)
}

func TestFormatCurrencyIDR(t *testing.T) {
	assert.Equal(t, "Rp 15.000", FormatCurrencyIDR(15000))
	assert.Equal(t, "Rp 1.250.000", FormatCurrencyIDR(1250000))
	assert.Equal(t, "Rp 500", FormatCurrencyIDR(500))
	assert.Equal(t, "Rp 0", FormatCurrencyIDR(0))
}
