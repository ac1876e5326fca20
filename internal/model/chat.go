package model

import "time"

// Chat is the negotiation channel created when an invite is accepted.
// It is scoped to one member pair and one item pair: at most one chat
// exists per (sorted member pair, item pair) key. The chat closes
// exactly when every member has confirmed the swap is done.
type Chat struct {
	ID                string     `json:"id"`
	MemberA           string     `json:"member_a"` // sorted: MemberA <= MemberB
	MemberB           string     `json:"member_b"`
	FromItemID        string     `json:"from_item_id"`
	ToItemID          string     `json:"to_item_id"`
	DoneConfirmations []string   `json:"done_confirmations"`
	Closed            bool       `json:"closed"`
	ClosedAt          *time.Time `json:"closed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// IsMember reports whether identity belongs to the chat.
func (c *Chat) IsMember(identity string) bool {
	return identity == c.MemberA || identity == c.MemberB
}

// HasConfirmed reports whether identity already confirmed completion.
func (c *Chat) HasConfirmed(identity string) bool {
	for _, id := range c.DoneConfirmations {
		if id == identity {
			return true
		}
	}
	return false
}

// ChatKey normalizes an invite's participants into the chat uniqueness
// key. Members are ordered lexicographically and the item pair is
// flipped together with them, so mirrored invites (B proposing the
// reverse swap to A) resolve to the same chat.
func ChatKey(from, to, fromItem, toItem string) (memberA, memberB, itemA, itemB string) {
	if from <= to {
		return from, to, fromItem, toItem
	}
	return to, from, toItem, fromItem
}

// Message is a single chat entry. Messages are immutable once appended;
// ordering is append order, with a server-assigned timestamp.
type Message struct {
	SenderIdentity string    `json:"sender_identity"`
	Text           string    `json:"text"`
	SentAt         time.Time `json:"sent_at"`
}

// ChatSummary pairs a chat with its most recent message for list views.
type ChatSummary struct {
	Chat        Chat     `json:"chat"`
	LastMessage *Message `json:"last_message,omitempty"`
}
