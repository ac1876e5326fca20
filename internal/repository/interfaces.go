package repository

import (
	"context"
	"errors"

	"barterhub-api/internal/model"
)

// ErrNotFound is returned when a record does not resolve.
var ErrNotFound = errors.New("not found")

// ErrChatClosed is returned when appending to a closed chat.
var ErrChatClosed = errors.New("chat closed")

// UserRepository defines user directory access.
type UserRepository interface {
	// UpsertUser inserts or updates a user by identity.
	UpsertUser(ctx context.Context, user model.User) error

	// GetUser resolves a user by identity. Returns ErrNotFound.
	GetUser(ctx context.Context, identity string) (*model.User, error)

	// ListUsers returns all registered users.
	ListUsers(ctx context.Context) ([]model.User, error)
}

// ItemRepository defines item catalog access.
type ItemRepository interface {
	// CreateItem stores a new item.
	CreateItem(ctx context.Context, item model.Item) error

	// GetItem resolves an item by id. Returns ErrNotFound.
	GetItem(ctx context.Context, id string) (*model.Item, error)

	// ListItems returns the full catalog.
	ListItems(ctx context.Context) ([]model.Item, error)

	// ListItemsByOwner returns all items owned by identity.
	ListItemsByOwner(ctx context.Context, owner string) ([]model.Item, error)

	// SearchItems matches keyword against title and tags, optionally
	// excluding one owner's items.
	SearchItems(ctx context.Context, keyword, excludeOwner string) ([]model.Item, error)
}

// InviteRepository defines swap invite access. Uniqueness of the pending
// (from, to, fromItem, toItem) key is enforced here, atomically.
type InviteRepository interface {
	// CreateInvite inserts the invite unless a pending invite with the
	// same tuple already exists, in which case the existing invite is
	// returned unchanged. Insert-if-absent is atomic under concurrent
	// callers.
	CreateInvite(ctx context.Context, invite model.Invite) (model.Invite, error)

	// GetInvite resolves an invite by id. Returns ErrNotFound.
	GetInvite(ctx context.Context, id string) (*model.Invite, error)

	// AcceptInvite atomically transitions pending -> accepted. Returns
	// false when the invite was not pending (already terminal).
	AcceptInvite(ctx context.Context, id string) (bool, error)

	// RejectInvite atomically transitions pending -> rejected. Returns
	// false when the invite was not pending.
	RejectInvite(ctx context.Context, id string) (bool, error)

	// ListInvitesTo returns invites received by identity, newest first.
	ListInvitesTo(ctx context.Context, identity string) ([]model.Invite, error)

	// ListInvitesFrom returns invites sent by identity, newest first.
	ListInvitesFrom(ctx context.Context, identity string) ([]model.Invite, error)
}

// ChatRepository defines negotiation chat access. Uniqueness of the
// (sorted member pair, item pair) key is enforced here, atomically.
type ChatRepository interface {
	// FindOrCreateChat returns the chat keyed by (memberA, memberB,
	// fromItemID, toItemID), creating it when absent. Concurrent calls
	// with the same key never produce two chats.
	FindOrCreateChat(ctx context.Context, chat model.Chat) (model.Chat, error)

	// GetChat resolves a chat by id. Returns ErrNotFound.
	GetChat(ctx context.Context, id string) (*model.Chat, error)

	// ListChatsByMember returns chat summaries for identity, with the
	// most recent message of each chat.
	ListChatsByMember(ctx context.Context, identity string) ([]model.ChatSummary, error)

	// ListMessages returns a chat's message log in append order.
	ListMessages(ctx context.Context, chatID string) ([]model.Message, error)

	// AppendMessage appends to an open chat. Returns ErrChatClosed when
	// the chat is closed; the closed check and the append are atomic.
	AppendMessage(ctx context.Context, chatID string, msg model.Message) error

	// ConfirmDone adds identity to the chat's confirmation set
	// (idempotently) and closes the chat exactly once when the set
	// covers both members. Union and closure check are evaluated
	// atomically; the updated chat is returned.
	ConfirmDone(ctx context.Context, chatID, identity string) (*model.Chat, error)
}

// Store bundles every repository backed by one storage engine.
type Store interface {
	UserRepository
	ItemRepository
	InviteRepository
	ChatRepository

	// Close releases the underlying storage.
	Close() error
}
