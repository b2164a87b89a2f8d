package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadpost/threadpost-backend/internal/domain"
)

func TestNotificationUniquePerRecipientAndMessage(t *testing.T) {
	db := newTestDB(t)
	repo := NewNotificationRepository(db)

	first := &domain.Notification{RecipientID: "u2", MessageID: 7}
	require.NoError(t, repo.Create(first))

	dup := &domain.Notification{RecipientID: "u2", MessageID: 7}
	assert.Error(t, repo.Create(dup))

	other := &domain.Notification{RecipientID: "u3", MessageID: 7}
	assert.NoError(t, repo.Create(other))
}

func TestMarkReadByMessage(t *testing.T) {
	db := newTestDB(t)
	repo := NewNotificationRepository(db)

	require.NoError(t, repo.Create(&domain.Notification{RecipientID: "u2", MessageID: 1}))
	require.NoError(t, repo.Create(&domain.Notification{RecipientID: "u3", MessageID: 1}))
	require.NoError(t, repo.Create(&domain.Notification{RecipientID: "u2", MessageID: 2}))

	require.NoError(t, repo.MarkReadByMessage(1))

	count, err := repo.CountUnread("u2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = repo.CountUnread("u3")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
