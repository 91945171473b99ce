package database

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/getsentry/sentry-go"

	"codecomp-bot/internal/database/models"
)

const queueSheet = "Queue"

// SheetQueueRefRepository implements QueueRefRepository on the Queue
// worksheet. The worksheet holds a header row and a single data row with
// the chat and message ID of the current queue summary message.
type SheetQueueRefRepository struct {
	client *SheetsClient
}

// NewSheetQueueRefRepository creates a new repository instance.
func NewSheetQueueRefRepository(client *SheetsClient) *SheetQueueRefRepository {
	return &SheetQueueRefRepository{client: client}
}

// Get returns the stored reference.
func (r *SheetQueueRefRepository) Get(ctx context.Context) (models.QueueRef, bool) {
	rows, err := r.client.readRows(ctx, queueSheet+"!A2:B2")
	if err != nil {
		log.Printf("[QueueRepo] Failed to read queue reference: %v", err)
		sentry.CaptureException(err)
		return models.QueueRef{}, false
	}
	if len(rows) == 0 {
		return models.QueueRef{}, false
	}
	ref := models.QueueRef{
		ChatID:    cellInt64(rows[0], 0),
		MessageID: cellInt(rows[0], 1),
	}
	if ref.IsZero() {
		return models.QueueRef{}, false
	}
	return ref, true
}

// Set overwrites the stored reference, writing the header row alongside so
// a freshly created worksheet comes out well-formed.
func (r *SheetQueueRefRepository) Set(ctx context.Context, ref models.QueueRef) error {
	values := [][]interface{}{
		{"chat_id", "message_id"},
		{strconv.FormatInt(ref.ChatID, 10), ref.MessageID},
	}
	if err := r.client.updateRange(ctx, queueSheet+"!A1:B2", values); err != nil {
		return fmt.Errorf("failed to store queue reference: %w", err)
	}
	return nil
}

// Clear removes the stored reference.
func (r *SheetQueueRefRepository) Clear(ctx context.Context) error {
	if err := r.client.clearRange(ctx, queueSheet+"!A2:B2"); err != nil {
		return fmt.Errorf("failed to clear queue reference: %w", err)
	}
	return nil
}
