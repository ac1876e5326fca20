package classify

// Price band boundaries shared by the band labeler and the interval
// price-score mode: [0,500) [500,2000) [2000,5000) [5000,10000) [10000,∞).
var bandBounds = []float64{500, 2000, 5000, 10000}

var bandLabels = []string{"budget", "low", "mid", "high", "premium"}

// PriceBandIndex returns the index of the band containing price.
func PriceBandIndex(price float64) int {
	for i, bound := range bandBounds {
		if price < bound {
			return i
		}
	}
	return len(bandBounds)
}

// PriceBand returns the bucket label for a price.
func PriceBand(price float64) string {
	return bandLabels[PriceBandIndex(price)]
}

// MaxBandDelta is the largest possible distance between two band indexes.
func MaxBandDelta() int {
	return len(bandBounds)
}
