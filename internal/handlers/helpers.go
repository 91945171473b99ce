package handlers

import (
	"context"
	"log"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"codecomp-bot/internal/locales"
	"codecomp-bot/pkg/telegoapi"
)

// sendSuccess sends a plain message to the user. Delivery failures are
// logged, not propagated.
func (h *MessageHandler) sendSuccess(ctx context.Context, bot telegoapi.BotAPI, chatID int64, text string) error {
	_, err := bot.SendMessage(ctx, tu.Message(tu.ID(chatID), text))
	if err != nil {
		log.Printf("Error sending message to chat %d: %v", chatID, err)
	}
	return nil
}

// sendError sends a generic localized error message to the user and returns
// the original error so the update loop can report it.
func (h *MessageHandler) sendError(ctx context.Context, bot telegoapi.BotAPI, chatID int64, originalErr error) error {
	log.Printf("Error for user in chat %d: %v", chatID, originalErr)

	localizer := locales.NewLocalizer(locales.DefaultLanguage)
	errMsg := locales.GetMessage(localizer, "MsgErrorGeneral", nil, nil)

	_, sendErr := bot.SendMessage(ctx, tu.Message(tu.ID(chatID), errMsg))
	if sendErr != nil {
		log.Printf("Error sending generic error message to chat %d: %v", chatID, sendErr)
	}
	return originalErr
}

// sendMarkdown sends a MarkdownV2 formatted message. Callers escape any
// user-provided text first.
func (h *MessageHandler) sendMarkdown(ctx context.Context, bot telegoapi.BotAPI, chatID int64, text string) error {
	params := tu.Message(tu.ID(chatID), text).WithParseMode(telego.ModeMarkdownV2)
	_, err := bot.SendMessage(ctx, params)
	return err
}

// sendReply sends a message threaded under the given message.
func (h *MessageHandler) sendReply(ctx context.Context, bot telegoapi.BotAPI, message telego.Message, text string) error {
	params := tu.Message(tu.ID(message.Chat.ID), text)
	params.ReplyParameters = &telego.ReplyParameters{MessageID: message.MessageID}
	_, err := bot.SendMessage(ctx, params)
	if err != nil {
		log.Printf("Error sending reply in chat %d: %v", message.Chat.ID, err)
	}
	return nil
}

// getLocalizer picks a localizer from the user's Telegram language code,
// falling back to the default language.
func (h *MessageHandler) getLocalizer(user *telego.User) *i18n.Localizer {
	lang := locales.DefaultLanguage
	if user != nil && user.LanguageCode != "" {
		lang = user.LanguageCode
	}
	return locales.NewLocalizer(lang)
}

// RecordUserActivity combines updating user info and logging the action.
func (h *MessageHandler) RecordUserActivity(ctx context.Context, user *telego.User, action string, isAdmin bool, details map[string]interface{}) {
	if user == nil {
		log.Printf("Attempted to record activity for nil user, action: %s", action)
		return
	}

	if err := h.userRepo.UpdateUser(ctx, user.ID, user.Username, user.FirstName, user.LastName, isAdmin, action); err != nil {
		log.Printf("Error updating user %d (%s) in DB during action %s: %v", user.ID, user.Username, action, err)
	}

	if err := h.actionLogger.LogUserAction(user.ID, action, details); err != nil {
		log.Printf("Error logging action %s for user %d (%s): %v", action, user.ID, user.Username, err)
	}
}

// isAdmin wraps the admin check, treating check errors as non-admin.
func (h *MessageHandler) isAdmin(ctx context.Context, user *telego.User) bool {
	if user == nil {
		return false
	}
	ok, err := h.adminChecker.IsAdmin(ctx, user.ID)
	if err != nil {
		log.Printf("[AdminCheck User:%d] Check failed: %v", user.ID, err)
		return false
	}
	return ok
}

// requireAdmin sends a localized refusal when the sender is not an admin.
// Returns true when the sender may proceed.
func (h *MessageHandler) requireAdmin(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) bool {
	if h.isAdmin(ctx, message.From) {
		return true
	}
	localizer := h.getLocalizer(message.From)
	msg := locales.GetMessage(localizer, "MsgErrorRequiresAdmin", nil, nil)
	_ = h.sendSuccess(ctx, bot, message.Chat.ID, msg)
	return false
}
