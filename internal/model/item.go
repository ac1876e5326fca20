package model

import "time"

// DefaultRating is the neutral rating assigned to items uploaded without one.
const DefaultRating = 2.5

// Item is a listing offered for barter. The owner is immutable once set;
// category and price band may be backfilled after creation.
type Item struct {
	ID            string    `json:"id"`
	OwnerIdentity string    `json:"owner_identity"`
	Title         string    `json:"title"`
	Tags          []string  `json:"tags,omitempty"`
	Condition     int       `json:"condition"` // percentage, 0-100
	Price         float64   `json:"price"`
	Category      string    `json:"category,omitempty"`
	PriceBand     string    `json:"price_band,omitempty"`
	Rating        float64   `json:"rating"` // 0-5 scale
	CreatedAt     time.Time `json:"created_at"`
}
