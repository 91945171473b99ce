package handlers

import (
	"context"
	"log"

	"github.com/mymmrac/telego"

	"codecomp-bot/internal/auth"
	"codecomp-bot/internal/database"
	"codecomp-bot/pkg/telegoapi"
)

// Action types for logging and user updates
const (
	ActionCommandStart          = "command_start"
	ActionCommandHelp           = "command_help"
	ActionCommandVersion        = "command_version"
	ActionCommandLeaderboard    = "command_leaderboard"
	ActionCommandChallengesLeft = "command_challengesleft"
	ActionCommandRandomize      = "command_randomize"
	ActionCommandSurprise       = "command_surprise"
	ActionCommandQueue          = "command_queue"
	ActionCommandReset          = "command_resetsemester"
	ActionCommandReview         = "command_review"
	ActionSubmissionCreated     = "submission_created"
	ActionAdminSubmission       = "admin_submission_created"
)

// Command represents a bot command, mapping the command string to its
// description message ID and handler function.
type Command struct {
	Command     string
	Description string
	AdminOnly   bool
	Handler     func(context.Context, telegoapi.BotAPI, telego.Message) error
}

// MessageHandler handles incoming Telegram messages and callbacks. It
// orchestrates commands, submission intake, and delegation to the review
// workflow.
type MessageHandler struct {
	// challengeChatID is the group where teams post submissions;
	// reviewChatID is the admin group holding the queue summary.
	challengeChatID int64
	reviewChatID    int64
	version         string

	commands []Command

	submissions database.SubmissionRepository
	ledger      database.LedgerRepository
	challenges  database.ChallengeRepository
	members     database.MemberRepository

	reconciler    QueueReconcilerInterface
	reviewManager ReviewManagerInterface
	adminChecker  auth.AdminCheckerInterface

	actionLogger database.UserActionLogger
	userRepo     database.UserRepository
}

// NewMessageHandler creates and initializes a new MessageHandler instance.
func NewMessageHandler(
	challengeChatID int64,
	reviewChatID int64,
	version string,
	submissions database.SubmissionRepository,
	ledger database.LedgerRepository,
	challenges database.ChallengeRepository,
	members database.MemberRepository,
	reconciler QueueReconcilerInterface,
	reviewManager ReviewManagerInterface,
	adminChecker auth.AdminCheckerInterface,
	actionLogger database.UserActionLogger,
	userRepo database.UserRepository,
) *MessageHandler {
	if adminChecker == nil {
		log.Fatal("MessageHandler: Admin checker dependency is nil")
	}
	h := &MessageHandler{
		challengeChatID: challengeChatID,
		reviewChatID:    reviewChatID,
		version:         version,
		submissions:     submissions,
		ledger:          ledger,
		challenges:      challenges,
		members:         members,
		reconciler:      reconciler,
		reviewManager:   reviewManager,
		adminChecker:    adminChecker,
		actionLogger:    actionLogger,
		userRepo:        userRepo,
	}
	h.commands = []Command{
		{Command: "start", Description: "CmdStartDesc", Handler: h.HandleStart},
		{Command: "help", Description: "CmdHelpDesc", Handler: h.HandleHelp},
		{Command: "version", Description: "CmdVersionDesc", Handler: h.HandleVersion},
		{Command: "leaderboard", Description: "CmdLeaderboardDesc", Handler: h.HandleLeaderboard},
		{Command: "challengesleft", Description: "CmdChallengesLeftDesc", Handler: h.HandleChallengesLeft},
		{Command: "randomize", Description: "CmdRandomizeDesc", Handler: h.HandleRandomize},
		{Command: "surprise", Description: "CmdSurpriseDesc", AdminOnly: true, Handler: h.HandleSurprise},
		{Command: "queue", Description: "CmdQueueDesc", AdminOnly: true, Handler: h.HandleQueue},
		{Command: "review", Description: "CmdReviewDesc", AdminOnly: true, Handler: h.HandleReview},
		{Command: "resetsemester", Description: "CmdResetDesc", AdminOnly: true, Handler: h.HandleResetSemester},
	}
	return h
}

// GetChallengeChatID returns the configured challenge chat ID.
func (h *MessageHandler) GetChallengeChatID() int64 {
	return h.challengeChatID
}

// GetCommandHandler retrieves the handler function for a command string
// (e.g., "start"). It returns nil if the command is not found.
func (h *MessageHandler) GetCommandHandler(command string) func(context.Context, telegoapi.BotAPI, telego.Message) error {
	for _, cmd := range h.commands {
		if cmd.Command == command {
			return cmd.Handler
		}
	}
	return nil
}
