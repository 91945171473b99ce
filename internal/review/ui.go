package review

import (
	"context"
	"fmt"
	"log"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"codecomp-bot/internal/database/models"
	"codecomp-bot/internal/scoring"
)

const maxButtonLabel = 48

// renderSession shows or refreshes the control message for the submission
// under review. The first render also forwards the submission's media so
// the admin sees what they are judging; selection changes after that only
// edit the control message in place.
func (m *Manager) renderSession(ctx context.Context, s *Session, sub *models.Submission) error {
	catalog := m.challenges.Challenges(ctx)
	text := m.controlText(ctx, s, sub)
	keyboard := m.controlKeyboard(s, catalog)

	if s.ControlMessageID != 0 {
		_, err := m.bot.EditMessageText(ctx, &telego.EditMessageTextParams{
			ChatID:      telego.ChatID{ID: s.ChatID},
			MessageID:   s.ControlMessageID,
			Text:        text,
			ReplyMarkup: keyboard,
		})
		if err != nil {
			return fmt.Errorf("failed to edit review controls: %w", err)
		}
		return nil
	}

	m.sendSubmissionMedia(ctx, s, sub)

	msg, err := m.bot.SendMessage(ctx, tu.Message(tu.ID(s.ChatID), text).WithReplyMarkup(keyboard))
	if err != nil {
		return fmt.Errorf("failed to send review controls: %w", err)
	}
	s.ControlMessageID = msg.MessageID
	return nil
}

// sendSubmissionMedia forwards the submission's photos by file ID. Delivery
// failures are logged only; the admin can still follow the origin link.
func (m *Manager) sendSubmissionMedia(ctx context.Context, s *Session, sub *models.Submission) {
	switch {
	case len(sub.MediaFileIDs) == 1:
		_, err := m.bot.SendPhoto(ctx, tu.Photo(tu.ID(s.ChatID), tu.FileFromID(sub.MediaFileIDs[0])))
		if err != nil {
			log.Printf("[Review Admin:%d] Failed to send submission photo: %v", s.AdminID, err)
		}
	case len(sub.MediaFileIDs) > 1:
		media := make([]telego.InputMedia, 0, len(sub.MediaFileIDs))
		for _, id := range sub.MediaFileIDs {
			media = append(media, tu.MediaPhoto(tu.FileFromID(id)))
		}
		_, err := m.bot.SendMediaGroup(ctx, tu.MediaGroup(tu.ID(s.ChatID), media...))
		if err != nil {
			log.Printf("[Review Admin:%d] Failed to send submission album: %v", s.AdminID, err)
		}
	}
}

func (m *Manager) controlText(ctx context.Context, s *Session, sub *models.Submission) string {
	submitter := m.members.DisplayName(ctx, sub.UserID)
	if submitter == "" {
		submitter = fmt.Sprintf("user %d", sub.UserID)
	}
	pending := m.submissions.PendingCount(ctx)
	text := m.msg("MsgReviewControl", map[string]interface{}{
		"Team":        sub.Team,
		"Submitter":   submitter,
		"Description": sub.Description,
		"Pending":     pending,
	})
	if s.ChallengeKey != "" {
		text += "\n\n" + m.msg("MsgReviewSelection", map[string]interface{}{
			"Key":    s.ChallengeKey,
			"Points": s.BasePoints,
			"Bonus":  s.Bonus,
			"Total":  s.TotalPoints(),
		})
	}
	return text
}

// controlKeyboard builds the inline keyboard for the session's current
// step: prefix choice, then challenge choice, then bonus points, with the
// accept/reject row always at the bottom.
func (m *Manager) controlKeyboard(s *Session, catalog []models.Challenge) *telego.InlineKeyboardMarkup {
	var rows [][]telego.InlineKeyboardButton

	switch {
	case s.ChallengeKey != "":
		rows = append(rows, m.bonusRows(s)...)
		rows = append(rows, tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(m.msg("BtnBack", nil)).WithCallbackData(callbackData(s.SubmissionID, "back", "")),
		))
	case s.Prefix != "":
		for _, ch := range scoring.ChallengesByPrefix(catalog, s.Prefix) {
			label := truncateLabel(fmt.Sprintf("%s · %s (%d)", ch.Key, ch.Name, ch.Points))
			rows = append(rows, tu.InlineKeyboardRow(
				tu.InlineKeyboardButton(label).WithCallbackData(callbackData(s.SubmissionID, "pick", ch.Key)),
			))
		}
		rows = append(rows, tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(m.msg("BtnBack", nil)).WithCallbackData(callbackData(s.SubmissionID, "back", "")),
		))
	default:
		rows = append(rows, buttonGrid(scoring.KeyPrefixes(catalog), 3, func(p string) telego.InlineKeyboardButton {
			return tu.InlineKeyboardButton(p).WithCallbackData(callbackData(s.SubmissionID, "prefix", p))
		})...)
	}

	rows = append(rows, tu.InlineKeyboardRow(
		tu.InlineKeyboardButton(m.msg("BtnAccept", nil)).WithCallbackData(callbackData(s.SubmissionID, "accept", "")),
		tu.InlineKeyboardButton(m.msg("BtnReject", nil)).WithCallbackData(callbackData(s.SubmissionID, "reject", "")),
	))
	return &telego.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// bonusRows lays out the 0..8 extra point choices, marking the current one.
func (m *Manager) bonusRows(s *Session) [][]telego.InlineKeyboardButton {
	values := make([]string, 0, maxBonusPoints+1)
	for i := 0; i <= maxBonusPoints; i++ {
		values = append(values, fmt.Sprintf("%d", i))
	}
	return buttonGrid(values, 3, func(v string) telego.InlineKeyboardButton {
		label := "+" + v
		if v == fmt.Sprintf("%d", s.Bonus) {
			label = "• " + label
		}
		return tu.InlineKeyboardButton(label).WithCallbackData(callbackData(s.SubmissionID, "bonus", v))
	})
}

// finalizeControl replaces the keyboard with a one-line outcome so the chat
// history shows what was decided.
func (m *Manager) finalizeControl(ctx context.Context, s *Session, outcome string) {
	if s.ControlMessageID == 0 {
		return
	}
	_, err := m.bot.EditMessageText(ctx, &telego.EditMessageTextParams{
		ChatID:    telego.ChatID{ID: s.ChatID},
		MessageID: s.ControlMessageID,
		Text:      outcome,
	})
	if err != nil {
		log.Printf("[Review Admin:%d] Failed to finalize review controls: %v", s.AdminID, err)
	}
}

func buttonGrid(items []string, perRow int, build func(string) telego.InlineKeyboardButton) [][]telego.InlineKeyboardButton {
	var rows [][]telego.InlineKeyboardButton
	var row []telego.InlineKeyboardButton
	for _, item := range items {
		row = append(row, build(item))
		if len(row) == perRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}

func truncateLabel(s string) string {
	if len(s) <= maxButtonLabel {
		return s
	}
	return s[:maxButtonLabel-1] + "…"
}
