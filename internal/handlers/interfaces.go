package handlers

import (
	"context"

	"github.com/mymmrac/telego"

	"codecomp-bot/internal/database/models"
)

// ReviewManagerInterface defines the review workflow operations used by the
// handlers. Allows mocking in tests.
type ReviewManagerInterface interface {
	StartReview(ctx context.Context, adminID int64, chatID int64) error
	ProcessCallback(ctx context.Context, query telego.CallbackQuery) (bool, error)
	HandleReasonMessage(ctx context.Context, message telego.Message) (bool, error)
}

// QueueReconcilerInterface defines the queue summary operations used by the
// handlers.
type QueueReconcilerInterface interface {
	Reconcile(ctx context.Context, forceNew bool) (models.QueueRef, bool)
	ClearReference(ctx context.Context) error
}
