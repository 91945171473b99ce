package review

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"codecomp-bot/internal/database"
	"codecomp-bot/internal/database/models"
)

// handleReject asks the admin for a rejection reason. The decision is not
// final until the reason arrives; rejections always carry one.
func (m *Manager) handleReject(ctx context.Context, query telego.CallbackQuery, s *Session) error {
	s.AwaitingReason = true
	m.answer(ctx, query.ID, "", false)
	_, err := m.bot.SendMessage(ctx, tu.Message(tu.ID(s.ChatID), m.msg("MsgReviewRejectPrompt", nil)))
	return err
}

// HandleReasonMessage consumes the admin's next text message as the
// rejection reason when their session is waiting for one. It returns true
// when the message was consumed by the review flow.
func (m *Manager) HandleReasonMessage(ctx context.Context, message telego.Message) (bool, error) {
	if message.From == nil {
		return false, nil
	}
	s, ok := m.session(message.From.ID)
	if !ok {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	// Re-check under the lock: another update may already have consumed a
	// reason and moved the session on.
	if cur, live := m.session(message.From.ID); !live || cur != s || !s.AwaitingReason {
		return false, nil
	}
	reason := strings.TrimSpace(message.Text)
	if reason == "" {
		return false, nil
	}
	return true, m.finalizeReject(ctx, s, &message, reason)
}

func (m *Manager) finalizeReject(ctx context.Context, s *Session, message *telego.Message, reason string) error {
	sub, err := m.submissions.GetSubmissionByID(ctx, s.SubmissionID)
	if err != nil {
		if errors.Is(err, database.ErrSubmissionNotFound) {
			_, _ = m.bot.SendMessage(ctx, tu.Message(tu.ID(s.ChatID), m.msg("MsgReviewGone", nil)))
			return m.advance(ctx, s)
		}
		return err
	}
	alreadyRejected := sub.Status.Is(models.StatusRejected)

	reviewer := m.reviewerName(ctx, message.From)
	updated := m.submissions.UpdateStatus(ctx, s.SubmissionID, models.StatusRejected, reviewer, nil, nil)
	if !updated {
		_, sendErr := m.bot.SendMessage(ctx, tu.Message(tu.ID(s.ChatID), m.msg("MsgReviewUpdateFailed", nil)))
		return sendErr
	}

	ref, ok := m.reconciler.Reconcile(ctx, false)

	// Rejecting twice must not notify the submitter twice.
	if !alreadyRejected {
		if ok {
			m.postRejectionNote(ctx, ref, sub.Team, reviewer, reason)
		}
		m.notifySubmitter(ctx, sub, reviewer, reason)
		if m.actionLogger != nil {
			_ = m.actionLogger.LogUserAction(s.AdminID, "submission_rejected", map[string]interface{}{
				"submission_id": sub.ID,
				"reason":        reason,
			})
		}
	}

	m.finalizeControl(ctx, s, m.msg("MsgReviewRejectedOutcome", map[string]interface{}{
		"Team":   sub.Team,
		"Reason": reason,
	}))
	return m.advance(ctx, s)
}

// postRejectionNote threads the decision under the queue summary message.
func (m *Manager) postRejectionNote(ctx context.Context, ref models.QueueRef, team, reviewer, reason string) {
	text := m.msg("MsgReviewRejectedNote", map[string]interface{}{
		"Team":     team,
		"Reviewer": reviewer,
		"Reason":   reason,
	})
	params := tu.Message(tu.ID(ref.ChatID), text)
	params.ReplyParameters = &telego.ReplyParameters{MessageID: ref.MessageID}
	if _, err := m.bot.SendMessage(ctx, params); err != nil {
		log.Printf("[Review] Failed to post rejection note: %v", err)
	}
}

// notifySubmitter replies under the original submission message so the team
// learns why it was turned down.
func (m *Manager) notifySubmitter(ctx context.Context, sub *models.Submission, reviewer, reason string) {
	if sub.Origin.IsZero() {
		return
	}
	text := m.msg("MsgReviewRejectedReply", map[string]interface{}{
		"Reviewer": reviewer,
		"Reason":   reason,
	})
	params := tu.Message(tu.ID(sub.Origin.ChatID), text)
	params.ReplyParameters = &telego.ReplyParameters{MessageID: sub.Origin.MessageID}
	if _, err := m.bot.SendMessage(ctx, params); err != nil {
		log.Printf("[Review] Failed to notify submitter for %s: %v", sub.ID, err)
	}
}
