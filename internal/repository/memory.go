package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"barterhub-api/internal/model"
)

// MemoryStore is an in-memory implementation of Store. Use it for
// development and tests; a single mutex gives it the same atomicity
// guarantees the SQL backends get from unique keys and transactions.
type MemoryStore struct {
	mu sync.RWMutex

	users    map[string]model.User
	items    map[string]model.Item
	itemSeq  []string // creation order for deterministic listings
	invites  map[string]model.Invite
	chats    map[string]*memoryChat
	chatKeys map[string]string // uniqueness key -> chat id
}

type memoryChat struct {
	chat     model.Chat
	messages []model.Message
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]model.User),
		items:    make(map[string]model.Item),
		invites:  make(map[string]model.Invite),
		chats:    make(map[string]*memoryChat),
		chatKeys: make(map[string]string),
	}
}

// --- users ---

func (s *MemoryStore) UpsertUser(ctx context.Context, user model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.Identity] = user
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, identity string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[identity]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) ListUsers(ctx context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Identity < users[j].Identity })
	return users, nil
}

// --- items ---

func (s *MemoryStore) CreateItem(ctx context.Context, item model.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = item
	s.itemSeq = append(s.itemSeq, item.ID)
	return nil
}

func (s *MemoryStore) GetItem(ctx context.Context, id string) (*model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &it, nil
}

func (s *MemoryStore) ListItems(ctx context.Context) ([]model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]model.Item, 0, len(s.itemSeq))
	for _, id := range s.itemSeq {
		items = append(items, s.items[id])
	}
	return items, nil
}

func (s *MemoryStore) ListItemsByOwner(ctx context.Context, owner string) ([]model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var items []model.Item
	for _, id := range s.itemSeq {
		if it := s.items[id]; it.OwnerIdentity == owner {
			items = append(items, it)
		}
	}
	return items, nil
}

func (s *MemoryStore) SearchItems(ctx context.Context, keyword, excludeOwner string) ([]model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	kw := strings.ToLower(keyword)
	var items []model.Item
	for _, id := range s.itemSeq {
		it := s.items[id]
		if excludeOwner != "" && it.OwnerIdentity == excludeOwner {
			continue
		}
		if strings.Contains(strings.ToLower(it.Title), kw) ||
			strings.Contains(strings.ToLower(strings.Join(it.Tags, " ")), kw) {
			items = append(items, it)
		}
	}
	return items, nil
}

// --- invites ---

func (s *MemoryStore) CreateInvite(ctx context.Context, invite model.Invite) (model.Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.invites {
		if existing.Status == model.InviteStatusPending &&
			existing.FromIdentity == invite.FromIdentity &&
			existing.ToIdentity == invite.ToIdentity &&
			existing.FromItemID == invite.FromItemID &&
			existing.ToItemID == invite.ToItemID {
			return existing, nil
		}
	}
	s.invites[invite.ID] = invite
	return invite, nil
}

func (s *MemoryStore) GetInvite(ctx context.Context, id string) (*model.Invite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invites[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &inv, nil
}

func (s *MemoryStore) AcceptInvite(ctx context.Context, id string) (bool, error) {
	return s.transitionInvite(id, model.InviteStatusAccepted)
}

func (s *MemoryStore) RejectInvite(ctx context.Context, id string) (bool, error) {
	return s.transitionInvite(id, model.InviteStatusRejected)
}

func (s *MemoryStore) transitionInvite(id string, to model.InviteStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invites[id]
	if !ok || inv.Status != model.InviteStatusPending {
		return false, nil
	}
	inv.Status = to
	s.invites[id] = inv
	return true, nil
}

func (s *MemoryStore) ListInvitesTo(ctx context.Context, identity string) ([]model.Invite, error) {
	return s.filterInvites(func(inv model.Invite) bool { return inv.ToIdentity == identity })
}

func (s *MemoryStore) ListInvitesFrom(ctx context.Context, identity string) ([]model.Invite, error) {
	return s.filterInvites(func(inv model.Invite) bool { return inv.FromIdentity == identity })
}

func (s *MemoryStore) filterInvites(keep func(model.Invite) bool) ([]model.Invite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var invites []model.Invite
	for _, inv := range s.invites {
		if keep(inv) {
			invites = append(invites, inv)
		}
	}
	sort.Slice(invites, func(i, j int) bool {
		return invites[i].CreatedAt.After(invites[j].CreatedAt)
	})
	return invites, nil
}

// --- chats ---

func chatKeyOf(c model.Chat) string {
	return c.MemberA + "|" + c.MemberB + "|" + c.FromItemID + "|" + c.ToItemID
}

func (s *MemoryStore) FindOrCreateChat(ctx context.Context, chat model.Chat) (model.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := chatKeyOf(chat)
	if id, ok := s.chatKeys[key]; ok {
		return s.snapshotChat(s.chats[id]), nil
	}
	mc := &memoryChat{chat: chat}
	mc.chat.DoneConfirmations = nil
	s.chats[chat.ID] = mc
	s.chatKeys[key] = chat.ID
	return s.snapshotChat(mc), nil
}

func (s *MemoryStore) GetChat(ctx context.Context, id string) (*model.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mc, ok := s.chats[id]
	if !ok {
		return nil, ErrNotFound
	}
	chat := s.snapshotChat(mc)
	return &chat, nil
}

func (s *MemoryStore) ListChatsByMember(ctx context.Context, identity string) ([]model.ChatSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var summaries []model.ChatSummary
	for _, mc := range s.chats {
		if !mc.chat.IsMember(identity) {
			continue
		}
		summary := model.ChatSummary{Chat: s.snapshotChat(mc)}
		if n := len(mc.messages); n > 0 {
			last := mc.messages[n-1]
			summary.LastMessage = &last
		}
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Chat.CreatedAt.After(summaries[j].Chat.CreatedAt)
	})
	return summaries, nil
}

func (s *MemoryStore) ListMessages(ctx context.Context, chatID string) ([]model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mc, ok := s.chats[chatID]
	if !ok {
		return nil, ErrNotFound
	}
	messages := make([]model.Message, len(mc.messages))
	copy(messages, mc.messages)
	return messages, nil
}

func (s *MemoryStore) AppendMessage(ctx context.Context, chatID string, msg model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mc, ok := s.chats[chatID]
	if !ok {
		return ErrNotFound
	}
	if mc.chat.Closed {
		return ErrChatClosed
	}
	mc.messages = append(mc.messages, msg)
	return nil
}

func (s *MemoryStore) ConfirmDone(ctx context.Context, chatID, identity string) (*model.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mc, ok := s.chats[chatID]
	if !ok {
		return nil, ErrNotFound
	}

	if !mc.chat.HasConfirmed(identity) {
		mc.chat.DoneConfirmations = append(mc.chat.DoneConfirmations, identity)
		sort.Strings(mc.chat.DoneConfirmations)
	}

	if !mc.chat.Closed &&
		mc.chat.HasConfirmed(mc.chat.MemberA) && mc.chat.HasConfirmed(mc.chat.MemberB) {
		now := time.Now().UTC()
		mc.chat.Closed = true
		mc.chat.ClosedAt = &now
	}

	chat := s.snapshotChat(mc)
	return &chat, nil
}

// snapshotChat copies a chat so callers never alias internal state.
func (s *MemoryStore) snapshotChat(mc *memoryChat) model.Chat {
	chat := mc.chat
	if mc.chat.DoneConfirmations != nil {
		chat.DoneConfirmations = make([]string, len(mc.chat.DoneConfirmations))
		copy(chat.DoneConfirmations, mc.chat.DoneConfirmations)
	}
	return chat
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
