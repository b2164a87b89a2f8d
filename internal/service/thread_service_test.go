package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadpost/threadpost-backend/internal/domain"
)

func TestAssembleNestedThread(t *testing.T) {
	f := newFixture(t)

	root := f.send(t, "alice", "bob", "R", nil)
	replyA := f.send(t, "bob", "alice", "A", &root.ID)
	replyB := f.send(t, "alice", "bob", "B", &root.ID)
	replyC := f.send(t, "bob", "alice", "C", &replyA.ID)

	thread, err := f.threads.Assemble(root.ID)
	require.NoError(t, err)
	require.Len(t, thread.Roots, 1)

	r := thread.Roots[0]
	assert.Equal(t, root.ID, r.Message.ID)
	require.Len(t, r.Replies, 2)
	assert.Equal(t, replyA.ID, r.Replies[0].Message.ID) // creation order
	assert.Equal(t, replyB.ID, r.Replies[1].Message.ID)

	a := r.Replies[0]
	require.Len(t, a.Replies, 1)
	assert.Equal(t, replyC.ID, a.Replies[0].Message.ID)

	assert.Empty(t, r.Replies[1].Replies)
	assert.Empty(t, a.Replies[0].Replies)
}

func TestAssembleFromAnyMessageInThread(t *testing.T) {
	f := newFixture(t)

	root := f.send(t, "alice", "bob", "R", nil)
	reply := f.send(t, "bob", "alice", "A", &root.ID)
	nested := f.send(t, "alice", "bob", "C", &reply.ID)

	// Assembling from a leaf walks up to the root first.
	thread, err := f.threads.Assemble(nested.ID)
	require.NoError(t, err)
	require.Len(t, thread.Roots, 1)
	assert.Equal(t, root.ID, thread.Roots[0].Message.ID)
}

func TestAssembleHonorsMaxDepth(t *testing.T) {
	f := newFixture(t)
	shallow := NewThreadService(f.messages, 2)

	root := f.send(t, "alice", "bob", "R", nil)
	l1 := f.send(t, "bob", "alice", "L1", &root.ID)
	l2 := f.send(t, "alice", "bob", "L2", &l1.ID)
	f.send(t, "bob", "alice", "L3", &l2.ID)

	thread, err := shallow.Assemble(root.ID)
	require.NoError(t, err)
	require.Len(t, thread.Roots, 1)

	r := thread.Roots[0]
	require.Len(t, r.Replies, 1)
	require.Len(t, r.Replies[0].Replies, 1)
	assert.Empty(t, r.Replies[0].Replies[0].Replies) // L3 is below the bound
}

func TestAssembleInconsistentSetYieldsForest(t *testing.T) {
	f := newFixture(t)

	missing := uint64(424242)
	now := time.Now()
	set := []*domain.Message{
		{ID: 1, SenderID: "a", ReceiverID: "b", Content: "root", CreatedAt: now},
		{ID: 2, SenderID: "b", ReceiverID: "a", Content: "child", ParentID: ptr(uint64(1)), CreatedAt: now.Add(time.Minute)},
		{ID: 3, SenderID: "a", ReceiverID: "b", Content: "orphan", ParentID: &missing, CreatedAt: now.Add(2 * time.Minute)},
	}

	thread := f.threads.assemble(set)
	require.Len(t, thread.Roots, 2)
	assert.Equal(t, uint64(1), thread.Roots[0].Message.ID)
	assert.Equal(t, uint64(3), thread.Roots[1].Message.ID)
	require.Len(t, thread.Roots[0].Replies, 1)
	assert.Equal(t, uint64(2), thread.Roots[0].Replies[0].Message.ID)
}

func ptr[T any](v T) *T {
	return &v
}
