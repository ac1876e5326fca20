package model

import "time"

// InviteStatus is the lifecycle state of a swap invite.
// Status is monotonic: pending transitions to accepted or rejected,
// both of which are terminal.
type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accepted"
	InviteStatusRejected InviteStatus = "rejected"
)

// Invite is a proposal by one user to swap a specific owned item for a
// specific item owned by another user. At most one pending invite may
// exist per exact (from, to, fromItem, toItem) tuple.
type Invite struct {
	ID           string       `json:"id"`
	FromIdentity string       `json:"from_identity"`
	ToIdentity   string       `json:"to_identity"`
	FromItemID   string       `json:"from_item_id"`
	ToItemID     string       `json:"to_item_id"`
	Status       InviteStatus `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
}
