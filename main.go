package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	sentry "github.com/getsentry/sentry-go"
	telego "github.com/mymmrac/telego"

	appbot "codecomp-bot/bot"
	"codecomp-bot/internal/auth"
	"codecomp-bot/internal/config"
	"codecomp-bot/internal/database"
	"codecomp-bot/internal/handlers"
	"codecomp-bot/internal/locales"
	"codecomp-bot/internal/mediagroups"
	"codecomp-bot/internal/queue"
	"codecomp-bot/internal/review"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	locales.Init(locales.DefaultLanguage)

	err = sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.AppEnv,
		Release:          cfg.Version,
		EnableTracing:    true,
		TracesSampleRate: 1.0,
		Debug:            cfg.Debug,
	})
	if err != nil {
		log.Fatalf("sentry.Init: %s", err)
	}
	defer sentry.Flush(2 * time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Google Sheets backs the challenge data; MongoDB keeps user activity.
	sheetsClient, err := database.NewSheetsClient(ctx, cfg)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatalf("Failed to create sheets client: %v", err)
	}
	submissionRepo := database.NewSheetSubmissionRepository(sheetsClient)
	ledgerRepo := database.NewSheetLedgerRepository(sheetsClient)
	challengeRepo := database.NewSheetChallengeRepository(sheetsClient)
	memberRepo := database.NewSheetMemberRepository(sheetsClient)
	queueRepo := database.NewSheetQueueRefRepository(sheetsClient)

	mongoClient, db, err := database.ConnectDB(ctx, cfg)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal(err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
			sentry.CaptureException(err)
		} else {
			log.Println("Disconnected from MongoDB.")
		}
	}()
	mongoLogger := database.NewMongoLogger(db)

	var bot *telego.Bot
	if cfg.Debug {
		bot, err = telego.NewBot(cfg.BotToken, telego.WithDefaultDebugLogger())
	} else {
		bot, err = telego.NewBot(cfg.BotToken, telego.WithDefaultLogger(false, false))
	}
	if err != nil {
		sentry.CaptureException(err)
		log.Fatalf("Failed to create telego bot: %v", err)
	}

	adminChecker, err := auth.NewAdminChecker(bot, cfg.ReviewChatID)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatalf("Failed to create admin checker: %v", err)
	}

	reconciler := queue.NewReconciler(bot, submissionRepo, queueRepo, cfg.ReviewChatID)

	reviewManager := review.NewManager(
		bot,
		submissionRepo,
		ledgerRepo,
		challengeRepo,
		memberRepo,
		reconciler,
		adminChecker,
		mongoLogger,
		cfg.ChallengeChatID,
		cfg.ReviewChatID,
	)

	messageHandler := handlers.NewMessageHandler(
		cfg.ChallengeChatID,
		cfg.ReviewChatID,
		cfg.Version,
		submissionRepo,
		ledgerRepo,
		challengeRepo,
		memberRepo,
		reconciler,
		reviewManager,
		adminChecker,
		mongoLogger,
		mongoLogger,
	)

	if err := messageHandler.SetupCommands(ctx, bot); err != nil {
		log.Printf("Failed to register bot commands: %v", err)
		sentry.CaptureException(err)
	}

	updates, err := bot.UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatalf("Failed to start long polling: %v", err)
	}

	mediaGroupMgr := mediagroups.NewManager()

	appBot, err := appbot.New(appbot.BotDeps{
		Bot:           bot,
		UpdatesChan:   updates,
		Debug:         cfg.Debug,
		Handler:       messageHandler,
		MediaGroupMgr: mediaGroupMgr,
	})
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal(err)
	}

	// Make sure the summary message exists before updates flow.
	reconciler.Reconcile(ctx, false)

	go appBot.Start(ctx)

	<-ctx.Done()

	log.Println("Shutting down bot...")
	appBot.Stop()

	log.Println("Bot shutdown complete.")
}
