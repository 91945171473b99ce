// Package queue maintains the single summary message that shows how many
// submissions await review, with a button that opens a review session.
package queue

import (
	"context"
	"log"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"codecomp-bot/internal/database"
	"codecomp-bot/internal/database/models"
	"codecomp-bot/internal/locales"
	"codecomp-bot/internal/review"
	"codecomp-bot/pkg/telegoapi"
)

// Reconciler keeps the queue summary message in the review chat current.
type Reconciler struct {
	bot          telegoapi.BotAPI
	submissions  database.SubmissionRepository
	refs         database.QueueRefRepository
	reviewChatID int64
}

// NewReconciler creates a new Reconciler posting into the given review chat.
func NewReconciler(bot telegoapi.BotAPI, submissions database.SubmissionRepository, refs database.QueueRefRepository, reviewChatID int64) *Reconciler {
	return &Reconciler{
		bot:          bot,
		submissions:  submissions,
		refs:         refs,
		reviewChatID: reviewChatID,
	}
}

// Reconcile brings the summary message up to date and returns a reference
// to it. With forceNew it always posts a fresh message; otherwise it edits
// the stored one in place and only posts when none exists. Reconcile never
// fails the caller's flow: when an update cannot be delivered it logs,
// keeps the stale reference, and reports ok=false only when no message is
// known at all.
func (r *Reconciler) Reconcile(ctx context.Context, forceNew bool) (models.QueueRef, bool) {
	count := r.submissions.PendingCount(ctx)
	text := r.summaryText(count)
	keyboard := tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(r.buttonText()).WithCallbackData(review.OpenReviewCallback),
		),
	)

	ref, known := r.refs.Get(ctx)

	if !forceNew && known {
		_, err := r.bot.EditMessageText(ctx, &telego.EditMessageTextParams{
			ChatID:      telego.ChatID{ID: ref.ChatID},
			MessageID:   ref.MessageID,
			Text:        text,
			ReplyMarkup: keyboard,
		})
		if err != nil {
			// The old message may have been deleted by hand. Keep the
			// stale reference so threaded replies still have an anchor.
			log.Printf("[Queue] Failed to edit summary message %d: %v", ref.MessageID, err)
			return ref, true
		}
		return ref, true
	}

	msg, err := r.bot.SendMessage(ctx, tu.Message(tu.ID(r.reviewChatID), text).WithReplyMarkup(keyboard))
	if err != nil {
		log.Printf("[Queue] Failed to send summary message: %v", err)
		return ref, known
	}

	newRef := models.QueueRef{ChatID: msg.Chat.ID, MessageID: msg.MessageID}
	if err := r.refs.Set(ctx, newRef); err != nil {
		log.Printf("[Queue] Failed to store summary reference: %v", err)
	}
	return newRef, true
}

// ClearReference forgets the stored summary message, used when the backing
// data has been reset.
func (r *Reconciler) ClearReference(ctx context.Context) error {
	return r.refs.Clear(ctx)
}

func (r *Reconciler) summaryText(count int) string {
	localizer := locales.NewLocalizer(locales.DefaultLanguage)
	return locales.GetMessage(localizer, "MsgQueueSummary", map[string]interface{}{
		"Count": count,
	}, &count)
}

func (r *Reconciler) buttonText() string {
	localizer := locales.NewLocalizer(locales.DefaultLanguage)
	return locales.GetMessage(localizer, "BtnOpenReview", nil, nil)
}
