package handlers

import (
	"context"
	"log"

	"github.com/mymmrac/telego"

	"codecomp-bot/pkg/telegoapi"
)

// HandleCallbackQuery routes callback queries to the review manager. The
// manager answers its own queries; unrecognized callbacks get a bare
// acknowledgment so the button stops spinning.
func (h *MessageHandler) HandleCallbackQuery(ctx context.Context, bot telegoapi.BotAPI, query telego.CallbackQuery) error {
	processed, err := h.reviewManager.ProcessCallback(ctx, query)
	if err != nil {
		log.Printf("Error processing callback query %s: %v", query.ID, err)
		return err
	}
	if !processed {
		log.Printf("Callback query %s not processed. Data: %s", query.ID, query.Data)
		ack := &telego.AnswerCallbackQueryParams{CallbackQueryID: query.ID}
		if ackErr := bot.AnswerCallbackQuery(ctx, ack); ackErr != nil {
			log.Printf("Error answering callback query %s: %v", query.ID, ackErr)
		}
	}
	return nil
}
