package service

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barterhub-api/internal/repository"
	"barterhub-api/pkg/apierror"
)

func newNegotiationFixture(t *testing.T) *NegotiationService {
	t.Helper()
	store := repository.NewMemoryStore()
	svc := NewNegotiationService(store, store)
	require.NotNil(t, svc)
	return svc
}

func requireAPIError(t *testing.T, err error, status int) {
	t.Helper()
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, status, apiErr.StatusCode)
}

func TestCreateInvite_IdempotentWhilePending(t *testing.T) {
	svc := newNegotiationFixture(t)
	ctx := context.Background()

	first, err := svc.CreateInvite(ctx, "a@x.com", "b@x.com", "item-a", "item-b")
	require.NoError(t, err)

	second, err := svc.CreateInvite(ctx, "a@x.com", "b@x.com", "item-a", "item-b")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "identical pending tuples must reuse the invite")

	// A different tuple is a different invite.
	other, err := svc.CreateInvite(ctx, "a@x.com", "b@x.com", "item-a", "item-c")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestCreateInvite_NewInviteAfterTerminal(t *testing.T) {
	svc := newNegotiationFixture(t)
	ctx := context.Background()

	first, err := svc.CreateInvite(ctx, "a@x.com", "b@x.com", "item-a", "item-b")
	require.NoError(t, err)
	require.NoError(t, svc.RejectInvite(ctx, first.ID))

	// The pending-tuple uniqueness only guards pending invites.
	again, err := svc.CreateInvite(ctx, "a@x.com", "b@x.com", "item-a", "item-b")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, again.ID)
}

func TestAcceptInvite_CreatesChatOnceAndIsIdempotent(t *testing.T) {
	svc := newNegotiationFixture(t)
	ctx := context.Background()

	invite, err := svc.CreateInvite(ctx, "a@x.com", "b@x.com", "item-a", "item-b")
	require.NoError(t, err)

	chatID, err := svc.AcceptInvite(ctx, invite.ID)
	require.NoError(t, err)
	require.NotEmpty(t, chatID)

	chatAgain, err := svc.AcceptInvite(ctx, invite.ID)
	require.NoError(t, err)
	assert.Equal(t, chatID, chatAgain, "re-accepting must return the existing chat")

	chats, err := svc.ListChats(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Len(t, chats, 1)
}

func TestAcceptInvite_MirroredInviteReusesChat(t *testing.T) {
	svc := newNegotiationFixture(t)
	ctx := context.Background()

	forward, err := svc.CreateInvite(ctx, "a@x.com", "b@x.com", "item-a", "item-b")
	require.NoError(t, err)
	chat1, err := svc.AcceptInvite(ctx, forward.ID)
	require.NoError(t, err)

	// The reverse proposal covers the same member and item pair.
	reverse, err := svc.CreateInvite(ctx, "b@x.com", "a@x.com", "item-b", "item-a")
	require.NoError(t, err)
	chat2, err := svc.AcceptInvite(ctx, reverse.ID)
	require.NoError(t, err)

	assert.Equal(t, chat1, chat2)
}

func TestAcceptInvite_NotFound(t *testing.T) {
	svc := newNegotiationFixture(t)

	_, err := svc.AcceptInvite(context.Background(), "missing")
	requireAPIError(t, err, http.StatusNotFound)
}

func TestAcceptInvite_RejectedIsConflict(t *testing.T) {
	svc := newNegotiationFixture(t)
	ctx := context.Background()

	invite, err := svc.CreateInvite(ctx, "a@x.com", "b@x.com", "item-a", "item-b")
	require.NoError(t, err)
	require.NoError(t, svc.RejectInvite(ctx, invite.ID))

	_, err = svc.AcceptInvite(ctx, invite.ID)
	requireAPIError(t, err, http.StatusConflict)
}

func TestRejectInvite_NoopWhenTerminal(t *testing.T) {
	svc := newNegotiationFixture(t)
	ctx := context.Background()

	invite, err := svc.CreateInvite(ctx, "a@x.com", "b@x.com", "item-a", "item-b")
	require.NoError(t, err)

	_, err = svc.AcceptInvite(ctx, invite.ID)
	require.NoError(t, err)

	// Rejecting an accepted invite succeeds without mutating it.
	require.NoError(t, svc.RejectInvite(ctx, invite.ID))

	received, _, err := svc.ListInvites(ctx, "b@x.com")
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, "accepted", string(received[0].Status))
}

func TestRejectInvite_NotFound(t *testing.T) {
	svc := newNegotiationFixture(t)

	err := svc.RejectInvite(context.Background(), "missing")
	requireAPIError(t, err, http.StatusNotFound)
}

func TestListInvites_NewestFirst(t *testing.T) {
	svc := newNegotiationFixture(t)
	ctx := context.Background()

	_, err := svc.CreateInvite(ctx, "a@x.com", "b@x.com", "item-1", "item-9")
	require.NoError(t, err)
	_, err = svc.CreateInvite(ctx, "c@x.com", "b@x.com", "item-2", "item-9")
	require.NoError(t, err)

	received, sent, err := svc.ListInvites(ctx, "b@x.com")
	require.NoError(t, err)
	require.Len(t, received, 2)
	assert.Empty(t, sent)
	assert.False(t, received[0].CreatedAt.Before(received[1].CreatedAt))
}

func TestPostMessage_AppendsInOrder(t *testing.T) {
	svc := newNegotiationFixture(t)
	ctx := context.Background()
	chatID := acceptedChat(t, svc)

	require.NoError(t, svc.PostMessage(ctx, chatID, "a@x.com", "hi, still available?"))
	require.NoError(t, svc.PostMessage(ctx, chatID, "b@x.com", "yes, meet saturday?"))

	_, messages, err := svc.ChatMessages(ctx, chatID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "a@x.com", messages[0].SenderIdentity)
	assert.Equal(t, "b@x.com", messages[1].SenderIdentity)
	assert.False(t, messages[0].SentAt.IsZero())
}

func TestPostMessage_NonMemberForbidden(t *testing.T) {
	svc := newNegotiationFixture(t)
	ctx := context.Background()
	chatID := acceptedChat(t, svc)

	err := svc.PostMessage(ctx, chatID, "stranger@x.com", "let me in")
	requireAPIError(t, err, http.StatusForbidden)

	_, messages, err := svc.ChatMessages(ctx, chatID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestPostMessage_ClosedChatForbidden(t *testing.T) {
	svc := newNegotiationFixture(t)
	ctx := context.Background()
	chatID := acceptedChat(t, svc)

	require.NoError(t, svc.PostMessage(ctx, chatID, "a@x.com", "deal?"))

	_, err := svc.ConfirmDone(ctx, chatID, "a@x.com")
	require.NoError(t, err)
	chat, err := svc.ConfirmDone(ctx, chatID, "b@x.com")
	require.NoError(t, err)
	require.True(t, chat.Closed)

	err = svc.PostMessage(ctx, chatID, "a@x.com", "one more thing")
	requireAPIError(t, err, http.StatusForbidden)

	_, messages, err := svc.ChatMessages(ctx, chatID)
	require.NoError(t, err)
	assert.Len(t, messages, 1, "message log must be unchanged")
}

func TestConfirmDone_ClosesOnlyWhenAllMembersConfirm(t *testing.T) {
	svc := newNegotiationFixture(t)
	ctx := context.Background()
	chatID := acceptedChat(t, svc)

	chat, err := svc.ConfirmDone(ctx, chatID, "a@x.com")
	require.NoError(t, err)
	assert.False(t, chat.Closed)
	assert.Nil(t, chat.ClosedAt)
	assert.Equal(t, []string{"a@x.com"}, chat.DoneConfirmations)

	// Confirming again is a set union, not a duplicate.
	chat, err = svc.ConfirmDone(ctx, chatID, "a@x.com")
	require.NoError(t, err)
	assert.False(t, chat.Closed)
	assert.Len(t, chat.DoneConfirmations, 1)

	chat, err = svc.ConfirmDone(ctx, chatID, "b@x.com")
	require.NoError(t, err)
	assert.True(t, chat.Closed)
	require.NotNil(t, chat.ClosedAt)
	assert.ElementsMatch(t, []string{"a@x.com", "b@x.com"}, chat.DoneConfirmations)

	closedAt := *chat.ClosedAt

	// Closed stays closed and the timestamp is not re-stamped.
	chat, err = svc.ConfirmDone(ctx, chatID, "a@x.com")
	require.NoError(t, err)
	assert.True(t, chat.Closed)
	assert.Equal(t, closedAt, *chat.ClosedAt)
}

func TestConfirmDone_NonMemberForbidden(t *testing.T) {
	svc := newNegotiationFixture(t)
	ctx := context.Background()
	chatID := acceptedChat(t, svc)

	_, err := svc.ConfirmDone(ctx, chatID, "stranger@x.com")
	requireAPIError(t, err, http.StatusForbidden)
}

func TestConfirmDone_NotFound(t *testing.T) {
	svc := newNegotiationFixture(t)

	_, err := svc.ConfirmDone(context.Background(), "missing", "a@x.com")
	requireAPIError(t, err, http.StatusNotFound)
}

func TestConfirmDone_ConcurrentMembersCloseExactlyOnce(t *testing.T) {
	svc := newNegotiationFixture(t)
	ctx := context.Background()
	chatID := acceptedChat(t, svc)

	var wg sync.WaitGroup
	for _, member := range []string{"a@x.com", "b@x.com"} {
		wg.Add(1)
		go func(identity string) {
			defer wg.Done()
			_, err := svc.ConfirmDone(ctx, chatID, identity)
			assert.NoError(t, err)
		}(member)
	}
	wg.Wait()

	chat, _, err := svc.ChatMessages(ctx, chatID)
	require.NoError(t, err)
	assert.True(t, chat.Closed)
	require.NotNil(t, chat.ClosedAt)
	assert.ElementsMatch(t, []string{"a@x.com", "b@x.com"}, chat.DoneConfirmations)
}

func TestListChats_IncludesLastMessage(t *testing.T) {
	svc := newNegotiationFixture(t)
	ctx := context.Background()
	chatID := acceptedChat(t, svc)

	require.NoError(t, svc.PostMessage(ctx, chatID, "a@x.com", "first"))
	require.NoError(t, svc.PostMessage(ctx, chatID, "b@x.com", "second"))

	summaries, err := svc.ListChats(ctx, "a@x.com")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.NotNil(t, summaries[0].LastMessage)
	assert.Equal(t, "second", summaries[0].LastMessage.Text)
	assert.False(t, summaries[0].Chat.Closed)

	// Non-members see nothing.
	none, err := svc.ListChats(ctx, "stranger@x.com")
	require.NoError(t, err)
	assert.Empty(t, none)
}

// acceptedChat creates an a->b invite and accepts it, returning the chat id.
func acceptedChat(t *testing.T, svc *NegotiationService) string {
	t.Helper()
	ctx := context.Background()

	invite, err := svc.CreateInvite(ctx, "a@x.com", "b@x.com", "item-a", "item-b")
	require.NoError(t, err)

	chatID, err := svc.AcceptInvite(ctx, invite.ID)
	require.NoError(t, err)
	return chatID
}
