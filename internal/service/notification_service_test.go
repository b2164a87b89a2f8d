package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadpost/threadpost-backend/internal/common"
	"github.com/threadpost/threadpost-backend/internal/domain"
)

func TestGetUnreadNewestFirst(t *testing.T) {
	f := newFixture(t)

	first := f.send(t, "alice", "bob", "first", nil)
	second := f.send(t, "carol", "bob", "second", nil)

	items, err := f.feed.GetUnread("bob")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, second.ID, items[0].MessageID)
	assert.Equal(t, first.ID, items[1].MessageID)
}

func TestMarkAsReadReadsThroughToMessage(t *testing.T) {
	f := newFixture(t)
	msg := f.send(t, "alice", "bob", "hello", nil)

	items, err := f.feed.GetUnread("bob")
	require.NoError(t, err)
	require.Len(t, items, 1)

	item, err := f.feed.MarkAsRead("bob", items[0].ID)
	require.NoError(t, err)
	assert.True(t, item.IsRead)

	got, err := f.messages.FindByID(msg.ID)
	require.NoError(t, err)
	assert.True(t, got.IsRead)

	// Second call is a no-op.
	again, err := f.feed.MarkAsRead("bob", items[0].ID)
	require.NoError(t, err)
	assert.True(t, again.IsRead)
}

func TestMarkAsReadChecksOwnership(t *testing.T) {
	f := newFixture(t)
	f.send(t, "alice", "bob", "hello", nil)

	items, err := f.feed.GetUnread("bob")
	require.NoError(t, err)
	require.Len(t, items, 1)

	_, err = f.feed.MarkAsRead("mallory", items[0].ID)
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestMarkAsReadMissingNotification(t *testing.T) {
	f := newFixture(t)

	_, err := f.feed.MarkAsRead("bob", 99)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMarkAllAsReadSkipsMessageReadThrough(t *testing.T) {
	f := newFixture(t)

	m1 := f.send(t, "alice", "bob", "one", nil)
	m2 := f.send(t, "carol", "bob", "two", nil)

	require.NoError(t, f.feed.MarkAllAsRead("bob"))

	items, err := f.feed.GetUnread("bob")
	require.NoError(t, err)
	assert.Empty(t, items)

	// The bulk path does not cascade to the source messages.
	for _, id := range []uint64{m1.ID, m2.ID} {
		msg, err := f.messages.FindByID(id)
		require.NoError(t, err)
		assert.False(t, msg.IsRead)
	}
}

func TestGetSummaryCountsUnread(t *testing.T) {
	f := newFixture(t)

	f.send(t, "alice", "bob", "one", nil)
	f.send(t, "carol", "bob", "two", nil)

	summary, err := f.feed.GetSummary("bob")
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.TotalUnread)

	require.NoError(t, f.feed.MarkAllAsRead("bob"))

	summary, err = f.feed.GetSummary("bob")
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.TotalUnread)
}

func TestNotificationSuppressedForSelfMessage(t *testing.T) {
	f := newFixture(t)

	f.send(t, "bob", "bob", "talking to myself", nil)

	assert.Zero(t, f.count(t, &domain.Notification{}, "recipient_id = ?", "bob"))
	items, err := f.feed.GetUnread("bob")
	require.NoError(t, err)
	assert.Empty(t, items)
}
