package model

import "time"

// User is a marketplace participant, keyed by identity (an email-like string).
// Users are created and updated via upsert and never deleted.
type User struct {
	Identity    string    `json:"identity"`
	DisplayName string    `json:"display_name,omitempty"`
	Location    *Location `json:"location,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Location is a geographic point supplied by the client. The service
// never geocodes; coordinates arrive ready-made.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
