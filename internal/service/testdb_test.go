package service

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/threadpost/threadpost-backend/internal/dispatch"
	"github.com/threadpost/threadpost-backend/internal/domain"
	"github.com/threadpost/threadpost-backend/internal/migration"
	"github.com/threadpost/threadpost-backend/internal/repository"
)

const testMaxDepth = 16

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, migration.Run(db))
	return db
}

// fixture wires the store exactly like the composition root does: repos,
// dispatcher with all three hooks, and the services on top.
type fixture struct {
	db            *gorm.DB
	messages      repository.MessageRepository
	histories     repository.HistoryRepository
	notifications repository.NotificationRepository
	dispatcher    *dispatch.Dispatcher
	svc           MessageService
	threads       *ThreadService
	feed          *NotificationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := newTestDB(t)
	messages := repository.NewMessageRepository(db)
	histories := repository.NewHistoryRepository(db)
	notifications := repository.NewNotificationRepository(db)

	d := dispatch.New()
	d.Register(dispatch.EventBeforeWrite, "archive-edit", dispatch.ArchiveOnEdit(histories))
	d.Register(dispatch.EventAfterCreate, "notify-receiver", dispatch.NotifyOnCreate(notifications))
	d.Register(dispatch.EventAfterDeleteIdentity, "cascade-delete",
		dispatch.CascadeOnIdentityDelete(messages, histories, notifications))

	return &fixture{
		db:            db,
		messages:      messages,
		histories:     histories,
		notifications: notifications,
		dispatcher:    d,
		svc:           NewMessageService(db, messages, histories, notifications, d, testMaxDepth),
		threads:       NewThreadService(messages, testMaxDepth),
		feed:          NewNotificationService(db, notifications, messages, nil),
	}
}

func (f *fixture) send(t *testing.T, sender, receiver, content string, parent *uint64) *domain.MessageResponse {
	t.Helper()
	msg, err := f.svc.Send(sender, &domain.SendMessageRequest{
		ReceiverID: receiver,
		Content:    content,
		ParentID:   parent,
	})
	require.NoError(t, err)
	return msg
}

func (f *fixture) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}
