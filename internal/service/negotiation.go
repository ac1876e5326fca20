package service

import (
	"context"
	"errors"
	"time"

	"barterhub-api/internal/model"
	"barterhub-api/internal/repository"
	"barterhub-api/pkg/apierror"
	"barterhub-api/pkg/uid"
)

// NegotiationService governs the invite -> chat state machine: proposal,
// acceptance or rejection, messaging, and mutual completion
// confirmation. Every operation is safe to retry: creates and accepts
// are idempotent on their natural keys, rejects and confirms are no-ops
// when already applied.
type NegotiationService struct {
	invites repository.InviteRepository
	chats   repository.ChatRepository
}

// NewNegotiationService creates a new negotiation service.
func NewNegotiationService(invites repository.InviteRepository, chats repository.ChatRepository) *NegotiationService {
	if invites == nil || chats == nil {
		return nil
	}
	return &NegotiationService{invites: invites, chats: chats}
}

// CreateInvite proposes a swap. If a pending invite with the exact
// (from, to, fromItem, toItem) tuple already exists, it is returned
// unchanged.
func (s *NegotiationService) CreateInvite(ctx context.Context, from, to, fromItem, toItem string) (model.Invite, error) {
	invite := model.Invite{
		ID:           uid.New(),
		FromIdentity: from,
		ToIdentity:   to,
		FromItemID:   fromItem,
		ToItemID:     toItem,
		Status:       model.InviteStatusPending,
		CreatedAt:    time.Now().UTC(),
	}
	return s.invites.CreateInvite(ctx, invite)
}

// AcceptInvite transitions a pending invite to accepted and returns the
// id of the chat keyed by (sorted member pair, item pair), creating the
// chat on first acceptance and reusing it on repeats. Accepting an
// already-rejected invite is a conflict.
func (s *NegotiationService) AcceptInvite(ctx context.Context, id string) (string, error) {
	invite, err := s.getInvite(ctx, id)
	if err != nil {
		return "", err
	}

	if invite.Status == model.InviteStatusRejected {
		return "", apierror.Conflict("invite was already rejected")
	}

	if invite.Status == model.InviteStatusPending {
		if _, err := s.invites.AcceptInvite(ctx, id); err != nil {
			return "", err
		}
		// A racing transition may have won; re-read so a concurrent
		// reject is still surfaced as a conflict.
		invite, err = s.getInvite(ctx, id)
		if err != nil {
			return "", err
		}
		if invite.Status == model.InviteStatusRejected {
			return "", apierror.Conflict("invite was already rejected")
		}
	}

	chat, err := s.chats.FindOrCreateChat(ctx, s.chatFor(*invite))
	if err != nil {
		return "", err
	}
	return chat.ID, nil
}

// chatFor builds the chat uniqueness key for an invite.
func (s *NegotiationService) chatFor(invite model.Invite) model.Chat {
	memberA, memberB, itemA, itemB := model.ChatKey(
		invite.FromIdentity, invite.ToIdentity, invite.FromItemID, invite.ToItemID)
	return model.Chat{
		ID:         uid.New(),
		MemberA:    memberA,
		MemberB:    memberB,
		FromItemID: itemA,
		ToItemID:   itemB,
		CreatedAt:  time.Now().UTC(),
	}
}

// RejectInvite transitions a pending invite to rejected. Rejecting an
// invite that is already terminal is a no-op success.
func (s *NegotiationService) RejectInvite(ctx context.Context, id string) error {
	if _, err := s.getInvite(ctx, id); err != nil {
		return err
	}
	_, err := s.invites.RejectInvite(ctx, id)
	return err
}

// ListInvites returns the invites received by and sent from identity,
// each newest first.
func (s *NegotiationService) ListInvites(ctx context.Context, identity string) (received, sent []model.Invite, err error) {
	received, err = s.invites.ListInvitesTo(ctx, identity)
	if err != nil {
		return nil, nil, err
	}
	sent, err = s.invites.ListInvitesFrom(ctx, identity)
	if err != nil {
		return nil, nil, err
	}
	if received == nil {
		received = []model.Invite{}
	}
	if sent == nil {
		sent = []model.Invite{}
	}
	return received, sent, nil
}

// PostMessage appends a message to an open chat. Only members may post,
// and closed chats refuse new messages.
func (s *NegotiationService) PostMessage(ctx context.Context, chatID, sender, text string) error {
	chat, err := s.getChat(ctx, chatID)
	if err != nil {
		return err
	}
	if !chat.IsMember(sender) {
		return apierror.Forbidden("sender is not a chat member")
	}

	msg := model.Message{
		SenderIdentity: sender,
		Text:           text,
		SentAt:         time.Now().UTC(),
	}
	err = s.chats.AppendMessage(ctx, chatID, msg)
	if errors.Is(err, repository.ErrChatClosed) {
		return apierror.Forbidden("chat is closed")
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apierror.NotFound("chat not found")
	}
	return err
}

// ConfirmDone records a member's completion confirmation, idempotently,
// and closes the chat exactly once when both members have confirmed.
func (s *NegotiationService) ConfirmDone(ctx context.Context, chatID, identity string) (*model.Chat, error) {
	chat, err := s.getChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.IsMember(identity) {
		return nil, apierror.Forbidden("identity is not a chat member")
	}

	updated, err := s.chats.ConfirmDone(ctx, chatID, identity)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierror.NotFound("chat not found")
	}
	return updated, err
}

// ListChats returns chat summaries for identity with last messages.
func (s *NegotiationService) ListChats(ctx context.Context, identity string) ([]model.ChatSummary, error) {
	summaries, err := s.chats.ListChatsByMember(ctx, identity)
	if err != nil {
		return nil, err
	}
	if summaries == nil {
		summaries = []model.ChatSummary{}
	}
	return summaries, nil
}

// ChatMessages returns a chat with its full message log in append order.
func (s *NegotiationService) ChatMessages(ctx context.Context, chatID string) (*model.Chat, []model.Message, error) {
	chat, err := s.getChat(ctx, chatID)
	if err != nil {
		return nil, nil, err
	}
	messages, err := s.chats.ListMessages(ctx, chatID)
	if err != nil {
		return nil, nil, err
	}
	return chat, messages, nil
}

func (s *NegotiationService) getInvite(ctx context.Context, id string) (*model.Invite, error) {
	invite, err := s.invites.GetInvite(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierror.NotFound("invite not found")
	}
	return invite, err
}

func (s *NegotiationService) getChat(ctx context.Context, id string) (*model.Chat, error) {
	chat, err := s.chats.GetChat(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierror.NotFound("chat not found")
	}
	return chat, err
}
