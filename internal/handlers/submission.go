package handlers

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"

	"github.com/mymmrac/telego"

	"codecomp-bot/internal/database/models"
	"codecomp-bot/internal/locales"
	"codecomp-bot/pkg/telegoapi"
)

// submissionTrigger is the caption prefix that marks a photo as a
// proof-of-completion submission.
const submissionTrigger = "challenge"

// adminSubmitTrigger lets admins record a submission on a team's behalf:
// "admin submit <team> <description>".
const adminSubmitTrigger = "admin submit"

// ackReactions are the emojis used to confirm receipt of a submission.
var ackReactions = []string{"👀", "🫡"}

// IsSubmissionCaption reports whether a caption marks a submission.
func IsSubmissionCaption(caption string) bool {
	lower := strings.ToLower(strings.TrimSpace(caption))
	return strings.HasPrefix(lower, submissionTrigger) || strings.HasPrefix(lower, adminSubmitTrigger)
}

// HandlePhoto processes a single photo message. Photos in the challenge
// chat whose caption starts with the trigger word become pending
// submissions; anything else is ignored.
func (h *MessageHandler) HandlePhoto(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	if len(message.Photo) == 0 || message.MediaGroupID != "" {
		return nil
	}
	if !IsSubmissionCaption(message.Caption) {
		return nil
	}
	fileID := largestPhotoID(message.Photo)
	return h.processSubmission(ctx, bot, message, message.Caption, []string{fileID})
}

// HandleMediaGroupSubmission processes a collected photo album as one
// submission. The caption lives on whichever album message carries it.
func (h *MessageHandler) HandleMediaGroupSubmission(ctx context.Context, bot telegoapi.BotAPI, messages []telego.Message) error {
	if len(messages) == 0 {
		return nil
	}
	caption := ""
	for _, msg := range messages {
		if msg.Caption != "" {
			caption = msg.Caption
			break
		}
	}
	if !IsSubmissionCaption(caption) {
		return nil
	}
	var fileIDs []string
	for _, msg := range messages {
		if len(msg.Photo) > 0 {
			fileIDs = append(fileIDs, largestPhotoID(msg.Photo))
		}
	}
	if len(fileIDs) == 0 {
		return nil
	}
	return h.processSubmission(ctx, bot, messages[0], caption, fileIDs)
}

// HandleText routes plain text messages: rejection reasons go to the review
// manager first, then submission-like text gets a photo reminder.
func (h *MessageHandler) HandleText(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	if processed, err := h.reviewManager.HandleReasonMessage(ctx, message); processed {
		return err
	}

	if message.Chat.ID == h.challengeChatID {
		lower := strings.ToLower(strings.TrimSpace(message.Text))
		if strings.HasPrefix(lower, submissionTrigger+" ") {
			localizer := h.getLocalizer(message.From)
			return h.sendReply(ctx, bot, message, locales.GetMessage(localizer, "MsgSubmissionNeedsPhoto", nil, nil))
		}
	}
	return nil
}

// processSubmission validates and records a submission, then refreshes the
// queue summary.
func (h *MessageHandler) processSubmission(ctx context.Context, bot telegoapi.BotAPI, message telego.Message, caption string, fileIDs []string) error {
	lower := strings.ToLower(strings.TrimSpace(caption))
	if strings.HasPrefix(lower, adminSubmitTrigger) {
		return h.processAdminSubmission(ctx, bot, message, caption, fileIDs)
	}
	if message.Chat.ID != h.challengeChatID || message.From == nil {
		return nil
	}

	origin := models.MessageRef{ChatID: message.Chat.ID, MessageID: message.MessageID}
	// Edited or redelivered messages must not create a second row.
	if h.submissions.ExistsForOrigin(ctx, origin) {
		return nil
	}

	localizer := h.getLocalizer(message.From)
	team, ok := h.members.TeamOf(ctx, message.From.ID)
	if !ok {
		return h.sendReply(ctx, bot, message, locales.GetMessage(localizer, "MsgNotOnRoster", nil, nil))
	}

	sub := &models.Submission{
		ID:           fmt.Sprintf("SUB-%d-%d", message.Chat.ID, message.MessageID),
		UserID:       message.From.ID,
		Team:         team,
		Description:  strings.TrimSpace(caption),
		Origin:       origin,
		MediaFileIDs: fileIDs,
		Status:       models.StatusPending,
	}
	if err := h.submissions.CreateSubmission(ctx, sub); err != nil {
		_ = h.sendReply(ctx, bot, message, locales.GetMessage(localizer, "MsgSubmissionFailed", nil, nil))
		return err
	}

	h.reactToSubmission(ctx, bot, message)
	h.RecordUserActivity(ctx, message.From, ActionSubmissionCreated, false, map[string]interface{}{
		"submission_id": sub.ID,
		"team":          team,
	})
	h.reconciler.Reconcile(ctx, false)
	return nil
}

// processAdminSubmission records a submission on a team's behalf. The
// caption form is "admin submit <team> <description>".
func (h *MessageHandler) processAdminSubmission(ctx context.Context, bot telegoapi.BotAPI, message telego.Message, caption string, fileIDs []string) error {
	if !h.requireAdmin(ctx, bot, message) {
		return nil
	}
	localizer := h.getLocalizer(message.From)

	rest := strings.TrimSpace(caption[len(adminSubmitTrigger):])
	teamToken, description, _ := strings.Cut(rest, " ")
	description = strings.TrimSpace(description)
	if teamToken == "" || description == "" {
		return h.sendReply(ctx, bot, message, locales.GetMessage(localizer, "MsgAdminSubmitUsage", nil, nil))
	}

	team, ok := h.resolveTeam(ctx, teamToken)
	if !ok {
		text := locales.GetMessage(localizer, "MsgUnknownTeam", map[string]interface{}{
			"Team":  teamToken,
			"Teams": strings.Join(h.rosterTeams(ctx), ", "),
		}, nil)
		return h.sendReply(ctx, bot, message, text)
	}

	sub := &models.Submission{
		ID:           fmt.Sprintf("SUB-ADMIN-%d-%d", message.Chat.ID, message.MessageID),
		UserID:       message.From.ID,
		Team:         team,
		Description:  description,
		Origin:       models.MessageRef{ChatID: message.Chat.ID, MessageID: message.MessageID},
		MediaFileIDs: fileIDs,
		Status:       models.StatusPending,
	}
	if err := h.submissions.CreateSubmission(ctx, sub); err != nil {
		_ = h.sendReply(ctx, bot, message, locales.GetMessage(localizer, "MsgSubmissionFailed", nil, nil))
		return err
	}

	h.RecordUserActivity(ctx, message.From, ActionAdminSubmission, true, map[string]interface{}{
		"submission_id": sub.ID,
		"team":          team,
	})
	h.reconciler.Reconcile(ctx, false)
	text := locales.GetMessage(localizer, "MsgAdminSubmitCreated", map[string]interface{}{
		"Team": team,
	}, nil)
	return h.sendReply(ctx, bot, message, text)
}

// reactToSubmission acknowledges receipt with an emoji reaction instead of
// a reply, keeping the challenge chat uncluttered.
func (h *MessageHandler) reactToSubmission(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) {
	emoji := ackReactions[rand.Intn(len(ackReactions))]
	err := bot.SetMessageReaction(ctx, &telego.SetMessageReactionParams{
		ChatID:    telego.ChatID{ID: message.Chat.ID},
		MessageID: message.MessageID,
		Reaction:  []telego.ReactionType{&telego.ReactionTypeEmoji{Type: telego.ReactionEmoji, Emoji: emoji}},
	})
	if err != nil {
		log.Printf("Failed to react to submission message %d: %v", message.MessageID, err)
	}
}

func largestPhotoID(photos []telego.PhotoSize) string {
	return photos[len(photos)-1].FileID
}
