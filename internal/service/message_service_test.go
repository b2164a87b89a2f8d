package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadpost/threadpost-backend/internal/common"
	"github.com/threadpost/threadpost-backend/internal/dispatch"
	"github.com/threadpost/threadpost-backend/internal/domain"
)

func TestSendCreatesUnreadMessageAndNotification(t *testing.T) {
	f := newFixture(t)

	msg := f.send(t, "alice", "bob", "hello bob", nil)
	assert.False(t, msg.IsRead)
	assert.Equal(t, uint(1), msg.Version)

	items, err := f.feed.GetUnread("bob")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, msg.ID, items[0].MessageID)
	assert.False(t, items[0].IsRead)
}

func TestSendToSelfCreatesNoNotification(t *testing.T) {
	f := newFixture(t)

	f.send(t, "alice", "alice", "note to self", nil)

	assert.Zero(t, f.count(t, &domain.Notification{}, "1 = 1"))
}

func TestSendRejectsBlankContent(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Send("alice", &domain.SendMessageRequest{ReceiverID: "bob", Content: "   \n\t"})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestSendRejectsMissingParent(t *testing.T) {
	f := newFixture(t)

	missing := uint64(9999)
	_, err := f.svc.Send("alice", &domain.SendMessageRequest{ReceiverID: "bob", Content: "reply", ParentID: &missing})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestEditArchivesPriorContentNewestFirst(t *testing.T) {
	f := newFixture(t)
	msg := f.send(t, "alice", "bob", "v1", nil)

	edited, err := f.svc.Edit(msg.ID, "alice", &domain.EditMessageRequest{Content: "v2", Version: 1})
	require.NoError(t, err)
	assert.Equal(t, "v2", edited.Content)
	assert.Equal(t, uint(2), edited.Version)
	assert.NotEmpty(t, edited.EditedAt)
	assert.Equal(t, "alice", edited.EditedBy)

	_, err = f.svc.Edit(msg.ID, "alice", &domain.EditMessageRequest{Content: "v3", Version: 2})
	require.NoError(t, err)

	history, err := f.svc.HistoryFor(msg.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "v2", history[0].Content)
	assert.Equal(t, "v1", history[1].Content)
	assert.Equal(t, "alice", history[0].EditedBy)
}

func TestEditUnchangedContentIsSemanticNoop(t *testing.T) {
	f := newFixture(t)
	msg := f.send(t, "alice", "bob", "stable", nil)

	same, err := f.svc.Edit(msg.ID, "alice", &domain.EditMessageRequest{Content: "stable", Version: 1})
	require.NoError(t, err)
	assert.Empty(t, same.EditedAt)
	assert.Equal(t, uint(1), same.Version)

	assert.Zero(t, f.count(t, &domain.MessageHistory{}, "message_id = ?", msg.ID))
}

func TestEditStaleVersionConflicts(t *testing.T) {
	f := newFixture(t)
	msg := f.send(t, "alice", "bob", "original", nil)

	// Two editors read version 1; the first commit wins.
	_, err := f.svc.Edit(msg.ID, "alice", &domain.EditMessageRequest{Content: "first edit", Version: 1})
	require.NoError(t, err)

	_, err = f.svc.Edit(msg.ID, "bob", &domain.EditMessageRequest{Content: "second edit", Version: 1})
	assert.ErrorIs(t, err, common.ErrConflict)

	current, err := f.messages.FindByID(msg.ID)
	require.NoError(t, err)
	assert.Equal(t, "first edit", current.Content)
	assert.Equal(t, int64(1), f.count(t, &domain.MessageHistory{}, "message_id = ?", msg.ID))
}

func TestEditMissingMessage(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Edit(42, "alice", &domain.EditMessageRequest{Content: "x", Version: 1})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMarkReadReadsThroughToNotifications(t *testing.T) {
	f := newFixture(t)
	msg := f.send(t, "alice", "bob", "hello", nil)

	read, err := f.svc.MarkRead(msg.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	items, err := f.feed.GetUnread("bob")
	require.NoError(t, err)
	assert.Empty(t, items)

	// Second call is a no-op, not an error.
	again, err := f.svc.MarkRead(msg.ID)
	require.NoError(t, err)
	assert.True(t, again.IsRead)
}

func TestThreadRootWalksToTheTop(t *testing.T) {
	f := newFixture(t)
	root := f.send(t, "alice", "bob", "root", nil)
	reply := f.send(t, "bob", "alice", "reply", &root.ID)
	nested := f.send(t, "alice", "bob", "nested", &reply.ID)

	got, err := f.svc.ThreadRoot(nested.ID)
	require.NoError(t, err)
	assert.Equal(t, root.ID, got.ID)
}

func TestThreadRootDetectsCorruptedChain(t *testing.T) {
	f := newFixture(t)
	a := f.send(t, "alice", "bob", "a", nil)
	b := f.send(t, "bob", "alice", "b", &a.ID)

	// Corrupt the chain: a's parent points back at b. The walk must stop
	// at the configured bound instead of hanging.
	require.NoError(t, f.db.Model(&domain.Message{}).Where("id = ?", a.ID).
		Update("parent_id", b.ID).Error)

	_, err := f.svc.ThreadRoot(b.ID)
	assert.ErrorIs(t, err, common.ErrCycle)
}

func TestDeleteForIdentityCascades(t *testing.T) {
	f := newFixture(t)

	root := f.send(t, "alice", "bob", "root", nil)
	reply := f.send(t, "bob", "alice", "reply", &root.ID)
	_, err := f.svc.Edit(root.ID, "alice", &domain.EditMessageRequest{Content: "root edited", Version: 1})
	require.NoError(t, err)
	bystander := f.send(t, "carol", "dave", "unrelated", nil)

	require.NoError(t, f.svc.DeleteForIdentity("bob"))

	// Every message bob sent or received is gone, with its history and
	// notifications; carol and dave's traffic is untouched.
	assert.Zero(t, f.count(t, &domain.Message{}, "sender_id = ? OR receiver_id = ?", "bob", "bob"))
	assert.Zero(t, f.count(t, &domain.MessageHistory{}, "message_id IN ?", []uint64{root.ID, reply.ID}))
	assert.Zero(t, f.count(t, &domain.Notification{}, "recipient_id = ?", "bob"))
	assert.Zero(t, f.count(t, &domain.Notification{}, "message_id IN ?", []uint64{root.ID, reply.ID}))

	assert.Equal(t, int64(1), f.count(t, &domain.Message{}, "id = ?", bystander.ID))
	assert.Equal(t, int64(1), f.count(t, &domain.Notification{}, "recipient_id = ?", "dave"))
}

func TestHookFailureAbortsTheWrite(t *testing.T) {
	f := newFixture(t)
	cause := errors.New("feed unavailable")
	f.dispatcher.Register(dispatch.EventAfterCreate, "failing", func(ctx *dispatch.Context) error {
		return cause
	})

	_, err := f.svc.Send("alice", &domain.SendMessageRequest{ReceiverID: "bob", Content: "doomed"})
	require.Error(t, err)

	var hookErr *common.HookError
	require.ErrorAs(t, err, &hookErr)
	assert.ErrorIs(t, err, cause)

	// Nothing committed: not the message, not the notification.
	assert.Zero(t, f.count(t, &domain.Message{}, "1 = 1"))
	assert.Zero(t, f.count(t, &domain.Notification{}, "1 = 1"))
}

func TestInboxSentUnreadListings(t *testing.T) {
	f := newFixture(t)
	m1 := f.send(t, "alice", "bob", "one", nil)
	f.send(t, "alice", "bob", "two", nil)
	f.send(t, "bob", "alice", "three", nil)

	inbox, meta, err := f.svc.GetInbox("bob", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), meta.Total)
	require.Len(t, inbox, 2)
	assert.Equal(t, "two", inbox[0].Content) // newest first

	sent, _, err := f.svc.GetSent("alice", 1, 20)
	require.NoError(t, err)
	assert.Len(t, sent, 2)

	_, err = f.svc.MarkRead(m1.ID)
	require.NoError(t, err)

	unread, err := f.svc.GetUnread("bob")
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "two", unread[0].Content)
}

func TestConversationsListsOnlyRoots(t *testing.T) {
	f := newFixture(t)
	root := f.send(t, "alice", "bob", "root", nil)
	f.send(t, "bob", "alice", "reply", &root.ID)

	conversations, meta, err := f.svc.GetConversations("alice", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), meta.Total)
	require.Len(t, conversations, 1)
	assert.Equal(t, root.ID, conversations[0].ID)
}
