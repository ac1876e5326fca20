package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategory(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"Mountain bike, barely used", "sports"},
		{"Gaming Laptop RTX", "electronics"},
		{"Hardcover novel collection", "books"},
		{"IKEA desk, white", "furniture"},
		{"Acoustic guitar with case", "music"},
		{"Cordless drill 18V", "tools"},
		{"Winter jacket size M", "clothing"},
		{"Lego castle set", "toys"},
		{"Mystery box", "other"},
		{"", "other"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Category(tc.text), tc.text)
	}
}

func TestCategory_CaseInsensitive(t *testing.T) {
	assert.Equal(t, Category("VINTAGE CAMERA"), Category("vintage camera"))
}

func TestItemText(t *testing.T) {
	assert.Equal(t, "Desk", ItemText("Desk", nil))
	assert.Equal(t, "Desk wood office", ItemText("Desk", []string{"wood", "office"}))
}

func TestPriceBandIndex(t *testing.T) {
	cases := []struct {
		price float64
		want  int
	}{
		{0, 0},
		{499.99, 0},
		{500, 1},
		{1999, 1},
		{2000, 2},
		{4999, 2},
		{5000, 3},
		{9999, 3},
		{10000, 4},
		{1e9, 4},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, PriceBandIndex(tc.price), "price %v", tc.price)
	}
}

func TestPriceBand(t *testing.T) {
	assert.Equal(t, "budget", PriceBand(0))
	assert.Equal(t, "low", PriceBand(750))
	assert.Equal(t, "mid", PriceBand(3000))
	assert.Equal(t, "high", PriceBand(7500))
	assert.Equal(t, "premium", PriceBand(25000))
}

func TestMaxBandDelta(t *testing.T) {
	assert.Equal(t, 4, MaxBandDelta())
	assert.Equal(t, MaxBandDelta(), PriceBandIndex(1e12)-PriceBandIndex(0))
}
