// Package bot wires the Telegram update stream to the handlers: commands,
// submission photos, review callbacks, and rejection reason messages.
package bot

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"go.uber.org/ratelimit"

	"codecomp-bot/internal/handlers"
	"codecomp-bot/internal/locales"
	"codecomp-bot/internal/mediagroups"
	"codecomp-bot/pkg/telegoapi"
)

// Bot runs the update processing loop.
type Bot struct {
	bot           telegoapi.BotAPI
	updatesChan   <-chan telego.Update
	debug         bool
	handler       *handlers.MessageHandler
	mediaGroupMgr *mediagroups.Manager
	ratelimiter   ratelimit.Limiter
}

// BotDeps holds the dependencies required by the Bot.
type BotDeps struct {
	Bot           telegoapi.BotAPI
	UpdatesChan   <-chan telego.Update
	Debug         bool
	Handler       *handlers.MessageHandler
	MediaGroupMgr *mediagroups.Manager
}

// New creates a new Bot instance from its dependencies.
func New(deps BotDeps) (*Bot, error) {
	if deps.Bot == nil {
		return nil, fmt.Errorf("telego bot (BotAPI) instance cannot be nil")
	}
	if deps.UpdatesChan == nil {
		return nil, fmt.Errorf("updates channel cannot be nil")
	}
	if deps.Handler == nil {
		return nil, fmt.Errorf("message handler cannot be nil")
	}
	if deps.MediaGroupMgr == nil {
		return nil, fmt.Errorf("media group manager cannot be nil")
	}
	return &Bot{
		bot:           deps.Bot,
		updatesChan:   deps.UpdatesChan,
		debug:         deps.Debug,
		handler:       deps.Handler,
		mediaGroupMgr: deps.MediaGroupMgr,
		ratelimiter:   ratelimit.New(20),
	}, nil
}

// handleCommandUpdate processes a message identified as a command.
func (b *Bot) handleCommandUpdate(ctx context.Context, message telego.Message) {
	command := "unknown"
	if len(message.Text) > 1 && strings.HasPrefix(message.Text, "/") {
		command = strings.Split(message.Text, " ")[0][1:]
		// Strip the @BotName suffix used in group chats.
		if at := strings.Index(command, "@"); at > 0 {
			command = command[:at]
		}
	}
	logPrefix := fmt.Sprintf("[Cmd:%s User:%d]", command, message.From.ID)

	handlerFunc := b.handler.GetCommandHandler(command)
	if handlerFunc == nil {
		log.Printf("%s No handler found", logPrefix)
		localizer := locales.NewLocalizer(locales.GetDefaultLanguageTag().String())
		unknownCmdMsg := locales.GetMessage(localizer, "MsgErrorUnknownCommand", nil, nil)
		if _, err := b.bot.SendMessage(ctx, tu.Message(tu.ID(message.Chat.ID), unknownCmdMsg)); err != nil {
			log.Printf("%s Failed to send unknown command message: %v", logPrefix, err)
		}
		return
	}

	if b.debug {
		log.Printf("%s Executing handler", logPrefix)
	}
	if err := handlerFunc(ctx, b.bot, message); err != nil {
		log.Printf("%s Handler error: %v", logPrefix, err)
		sentry.CaptureException(fmt.Errorf("%s handler error: %w", logPrefix, err))
	}
}

// handlePhotoUpdate processes an incoming single photo message.
func (b *Bot) handlePhotoUpdate(ctx context.Context, message telego.Message) {
	logPrefix := fmt.Sprintf("[Photo User:%d Msg:%d]", message.From.ID, message.MessageID)
	if err := b.handler.HandlePhoto(ctx, b.bot, message); err != nil {
		log.Printf("%s Handler error: %v", logPrefix, err)
		sentry.CaptureException(fmt.Errorf("%s handler error: %w", logPrefix, err))
	}
}

// handleTextUpdate processes an incoming text message.
func (b *Bot) handleTextUpdate(ctx context.Context, message telego.Message) {
	logPrefix := fmt.Sprintf("[Text User:%d Msg:%d]", message.From.ID, message.MessageID)
	if err := b.handler.HandleText(ctx, b.bot, message); err != nil {
		log.Printf("%s Handler error: %v", logPrefix, err)
		sentry.CaptureException(fmt.Errorf("%s text handler error: %w", logPrefix, err))
	}
}

// handleCallbackQuery processes an incoming callback query.
func (b *Bot) handleCallbackQuery(ctx context.Context, query telego.CallbackQuery) {
	logPrefix := fmt.Sprintf("[Callback User:%d QueryID:%s]", query.From.ID, query.ID)
	if b.debug {
		log.Printf("%s Received callback query with data: %q", logPrefix, query.Data)
	}
	if err := b.handler.HandleCallbackQuery(ctx, b.bot, query); err != nil {
		log.Printf("%s Callback handler error: %v", logPrefix, err)
		sentry.CaptureException(fmt.Errorf("%s callback handler error: %w", logPrefix, err))
		localizer := locales.NewLocalizer(locales.GetDefaultLanguageTag().String())
		errorMsg := locales.GetMessage(localizer, "MsgErrorGeneral", nil, nil)
		_ = b.bot.AnswerCallbackQuery(ctx, &telego.AnswerCallbackQueryParams{CallbackQueryID: query.ID, Text: errorMsg})
	}
}

// handleMediaGroup is the processor passed to the media group manager once
// an album is complete.
func (b *Bot) handleMediaGroup(ctx context.Context, groupID string, messages []telego.Message) error {
	if b.debug {
		log.Printf("[MediaGroup Group:%s] Processing %d messages", groupID, len(messages))
	}
	return b.handler.HandleMediaGroupSubmission(ctx, b.bot, messages)
}

// processUpdate routes incoming updates to the appropriate handlers.
func (b *Bot) processUpdate(ctx context.Context, update telego.Update) {
	b.ratelimiter.Take()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC recovered in processUpdate: %v\n%s", r, debug.Stack())
			sentry.CurrentHub().Recover(r)
			sentry.Flush(time.Second * 2)
		}
	}()

	processingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	switch {
	case update.Message != nil:
		message := *update.Message
		if message.From == nil {
			log.Printf("Ignoring message %d from chat %d without sender", message.MessageID, message.Chat.ID)
			return
		}

		if message.MediaGroupID != "" {
			err := b.mediaGroupMgr.HandleMessage(
				processingCtx,
				message,
				b.handleMediaGroup,
				mediagroups.DefaultProcessDelay,
				mediagroups.DefaultMaxGroupSize,
			)
			if err != nil {
				log.Printf("Error handling media group %s: %v", message.MediaGroupID, err)
			}
			return
		}

		switch {
		case strings.HasPrefix(message.Text, "/"):
			b.handleCommandUpdate(processingCtx, message)
		case message.Photo != nil:
			b.handlePhotoUpdate(processingCtx, message)
		case message.Text != "":
			b.handleTextUpdate(processingCtx, message)
		default:
			if b.debug {
				log.Printf("Ignoring unhandled message type (ID: %d)", message.MessageID)
			}
		}

	case update.CallbackQuery != nil:
		b.handleCallbackQuery(processingCtx, *update.CallbackQuery)

	default:
		if b.debug {
			log.Printf("Ignoring unhandled update type: %+v", update)
		}
	}
}

// Start begins the bot's update processing loop. It returns when the
// context is cancelled and all in-flight updates have finished.
func (b *Bot) Start(ctx context.Context) {
	if b.updatesChan == nil {
		log.Fatal("Bot updates channel is nil, cannot start")
	}
	log.Println("Listening for updates...")

	var wg sync.WaitGroup

	for {
		select {
		case <-ctx.Done():
			log.Println("Context done, stopping update processing...")
			wg.Wait()
			log.Println("All update processing finished.")
			return
		case update, ok := <-b.updatesChan:
			if !ok {
				log.Println("Updates channel closed.")
				wg.Wait()
				return
			}
			wg.Add(1)
			go func(up telego.Update) {
				defer wg.Done()
				b.processUpdate(ctx, up)
			}(update)
		}
	}
}

// Stop performs cleanup. The actual loop stop is triggered by context
// cancellation.
func (b *Bot) Stop() {
	b.mediaGroupMgr.Shutdown()
	log.Println("Bot stopped.")
}
