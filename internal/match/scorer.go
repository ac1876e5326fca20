package match

import (
	"fmt"
	"math"

	"barterhub-api/internal/classify"
	"barterhub-api/internal/model"
)

// PriceMode selects how the price component of a compatibility score is
// computed.
type PriceMode int

const (
	// PriceModeDiff scores by relative price difference.
	PriceModeDiff PriceMode = iota
	// PriceModeInterval scores by distance between price bands.
	PriceModeInterval
	// PriceModeTolerance scores by absolute difference against a
	// caller-supplied tolerance.
	PriceModeTolerance
)

// ParsePriceMode converts the wire representation of a price mode.
// An empty string defaults to diff.
func ParsePriceMode(s string) (PriceMode, error) {
	switch s {
	case "", "diff":
		return PriceModeDiff, nil
	case "interval":
		return PriceModeInterval, nil
	case "tolerance":
		return PriceModeTolerance, nil
	}
	return PriceModeDiff, fmt.Errorf("unknown price mode %q", s)
}

func (m PriceMode) String() string {
	switch m {
	case PriceModeInterval:
		return "interval"
	case PriceModeTolerance:
		return "tolerance"
	default:
		return "diff"
	}
}

// Weights holds the relative importance of each score component. They
// are fractions that need not sum to 1; active weights are renormalized
// before combining.
type Weights struct {
	Damage   float64
	Rating   float64
	Price    float64
	Distance float64
}

// Options configures the price component of the scorer.
type Options struct {
	PriceMode      PriceMode
	PriceTolerance float64
}

// LocationLookup resolves a user identity to its location, or nil when
// the location is unknown.
type LocationLookup func(identity string) *model.Location

const (
	earthRadiusKM = 6371

	// distanceDecayKM controls the exponential distance decay
	// exp(-km/distanceDecayKM).
	distanceDecayKM = 10
)

// Score rates how desirable the candidate item is to the evaluator
// relative to giving up their own item. The result is always in [0,1].
//
// The distance component only participates when both the evaluator and
// the candidate's owner have known locations; otherwise its weight is
// forced to zero and the remaining weights are renormalized. An
// all-zero weight vector yields an all-zero score rather than a
// division fault.
func Score(evaluator model.User, candidate, own model.Item, locate LocationLookup, w Weights, opts Options) float64 {
	damage := float64(candidate.Condition) / 100
	rating := candidate.Rating / 5
	price := priceScore(candidate.Price, own.Price, opts)

	evalLoc := evaluator.Location
	if evalLoc == nil && locate != nil {
		evalLoc = locate(evaluator.Identity)
	}
	var ownerLoc *model.Location
	if locate != nil {
		ownerLoc = locate(candidate.OwnerIdentity)
	}

	distance := 0.0
	distWeight := w.Distance
	if evalLoc != nil && ownerLoc != nil {
		km := haversineKM(*evalLoc, *ownerLoc)
		distance = math.Exp(-km / distanceDecayKM)
	} else {
		distWeight = 0
	}

	sum := w.Damage + w.Rating + w.Price + distWeight
	if sum == 0 {
		sum = 1
	}

	score := (w.Damage*damage + w.Rating*rating + w.Price*price + distWeight*distance) / sum
	return clamp01(score)
}

// priceScore computes the price component in [0,1] for the configured mode.
func priceScore(candidate, own float64, opts Options) float64 {
	switch opts.PriceMode {
	case PriceModeInterval:
		delta := classify.PriceBandIndex(candidate) - classify.PriceBandIndex(own)
		if delta < 0 {
			delta = -delta
		}
		return 1 - float64(delta)/float64(classify.MaxBandDelta())

	case PriceModeTolerance:
		if opts.PriceTolerance > 0 {
			return math.Max(0, 1-math.Abs(candidate-own)/opts.PriceTolerance)
		}
		if candidate == own {
			return 1
		}
		return 0

	default: // diff
		max := math.Max(candidate, own)
		if max == 0 {
			return 0
		}
		return 1 - math.Abs(candidate-own)/max
	}
}

// haversineKM returns the great-circle distance between two points in km.
func haversineKM(a, b model.Location) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusKM * math.Asin(math.Sqrt(h))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
