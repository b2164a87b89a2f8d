package dispatch

import (
	"time"

	"github.com/threadpost/threadpost-backend/internal/domain"
	"github.com/threadpost/threadpost-backend/internal/repository"
)

// ArchiveOnEdit returns the before-write hook: when a content-changing edit
// is about to commit, the prior content is appended to the history log and
// the edit metadata is stamped onto the new state.
func ArchiveOnEdit(histories repository.HistoryRepository) Hook {
	return func(ctx *Context) error {
		prior := ctx.Prior
		if prior == nil || prior.Content == ctx.Message.Content {
			return nil
		}

		h := &domain.MessageHistory{
			MessageID: prior.ID,
			Content:   prior.Content,
		}
		if ctx.Actor != "" {
			actor := ctx.Actor
			h.EditedBy = &actor
		}
		if err := histories.WithTx(ctx.Tx).Create(h); err != nil {
			return err
		}

		now := time.Now()
		ctx.Message.EditedAt = &now
		if ctx.Actor != "" {
			actor := ctx.Actor
			ctx.Message.EditedBy = &actor
		}
		return nil
	}
}

// NotifyOnCreate returns the after-create hook: a notification for the
// receiver of a newly created message. Messages a user sends to themselves
// produce no notification.
func NotifyOnCreate(notifications repository.NotificationRepository) Hook {
	return func(ctx *Context) error {
		msg := ctx.Message
		if msg.SenderID == msg.ReceiverID {
			return nil
		}
		return notifications.WithTx(ctx.Tx).Create(&domain.Notification{
			RecipientID: msg.ReceiverID,
			MessageID:   msg.ID,
		})
	}
}

// CascadeOnIdentityDelete returns the after-delete-identity hook: removes
// every message the user sent or received, the history of those messages,
// and every notification referencing the user or those messages. Runs
// inside one transaction so the cascade is all-or-nothing.
func CascadeOnIdentityDelete(
	messages repository.MessageRepository,
	histories repository.HistoryRepository,
	notifications repository.NotificationRepository,
) Hook {
	return func(ctx *Context) error {
		msgRepo := messages.WithTx(ctx.Tx)
		ids, err := msgRepo.IDsForUser(ctx.UserID)
		if err != nil {
			return err
		}

		notifRepo := notifications.WithTx(ctx.Tx)
		if err := notifRepo.DeleteByRecipient(ctx.UserID); err != nil {
			return err
		}
		if err := notifRepo.DeleteByMessageIDs(ids); err != nil {
			return err
		}
		if err := histories.WithTx(ctx.Tx).DeleteByMessageIDs(ids); err != nil {
			return err
		}
		return msgRepo.DeleteByIDs(ids)
	}
}
