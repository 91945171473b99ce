package review

import (
	"context"
	"errors"
	"log"

	"github.com/getsentry/sentry-go"
	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"codecomp-bot/internal/database"
	"codecomp-bot/internal/database/models"
	"codecomp-bot/internal/scoring"
)

// handleAccept finalizes the submission under review as approved, awards
// the selected points, and advances the session.
func (m *Manager) handleAccept(ctx context.Context, query telego.CallbackQuery, s *Session) error {
	if s.ChallengeKey == "" {
		m.answer(ctx, query.ID, m.msg("MsgReviewPickChallengeFirst", nil), true)
		return nil
	}

	// Re-read right before acting: another admin may have finished this
	// one already, and approving twice must not double-award.
	sub, err := m.submissions.GetSubmissionByID(ctx, s.SubmissionID)
	if err != nil {
		if errors.Is(err, database.ErrSubmissionNotFound) {
			m.answer(ctx, query.ID, m.msg("MsgReviewGone", nil), true)
			return m.advance(ctx, s)
		}
		return err
	}
	alreadyApproved := sub.Status.Is(models.StatusApproved)

	reviewer := m.reviewerName(ctx, &query.From)
	total := s.TotalPoints()
	updated := m.submissions.UpdateStatus(ctx, s.SubmissionID, models.StatusApproved, reviewer, &s.ChallengeKey, &total)
	if !updated {
		m.answer(ctx, query.ID, m.msg("MsgReviewUpdateFailed", nil), true)
		return nil
	}

	if !alreadyApproved {
		entry := models.LedgerEntry{
			Team:         sub.Team,
			Delta:        total,
			ChallengeKey: s.ChallengeKey,
			SubmissionID: sub.ID,
			ReviewedBy:   reviewer,
		}
		if err := m.ledger.AppendEntry(ctx, entry); err != nil {
			log.Printf("[Review Admin:%d] Failed to record points for %s: %v", s.AdminID, sub.ID, err)
			sentry.CaptureException(err)
			m.answer(ctx, query.ID, m.msg("MsgReviewLedgerWriteFailed", nil), true)
		}
	}

	ref, ok := m.reconciler.Reconcile(ctx, false)

	if !alreadyApproved {
		if ok {
			m.postApprovalNote(ctx, ref, sub.Team, s.ChallengeKey, reviewer, total)
		}
		m.announceSurpriseClaim(ctx, sub, s.ChallengeKey)
		if m.actionLogger != nil {
			_ = m.actionLogger.LogUserAction(s.AdminID, "submission_approved", map[string]interface{}{
				"submission_id": sub.ID,
				"challenge_key": s.ChallengeKey,
				"points":        total,
			})
		}
	}

	if alreadyApproved {
		m.answer(ctx, query.ID, m.msg("MsgReviewAlreadyApproved", nil), false)
	} else {
		m.answer(ctx, query.ID, m.msg("MsgReviewApproved", map[string]interface{}{"Total": total}), false)
	}

	m.finalizeControl(ctx, s, m.msg("MsgReviewApprovedOutcome", map[string]interface{}{
		"Team":  sub.Team,
		"Key":   s.ChallengeKey,
		"Total": total,
	}))
	return m.advance(ctx, s)
}

// postApprovalNote threads a confirmation under the queue summary message.
func (m *Manager) postApprovalNote(ctx context.Context, ref models.QueueRef, team, key, reviewer string, total int) {
	text := m.msg("MsgReviewApprovedNote", map[string]interface{}{
		"Team":     team,
		"Key":      key,
		"Total":    total,
		"Reviewer": reviewer,
	})
	params := tu.Message(tu.ID(ref.ChatID), text)
	params.ReplyParameters = &telego.ReplyParameters{MessageID: ref.MessageID}
	if _, err := m.bot.SendMessage(ctx, params); err != nil {
		log.Printf("[Review] Failed to post approval note: %v", err)
	}
}

// announceSurpriseClaim broadcasts to the challenge chat when a surprise
// challenge is claimed for the first time.
func (m *Manager) announceSurpriseClaim(ctx context.Context, sub *models.Submission, key string) {
	catalog := m.challenges.Challenges(ctx)
	ch := scoring.FindChallenge(catalog, key)
	if ch == nil || !ch.IsSurprise() {
		return
	}
	text := m.msg("MsgSurpriseClaimed", map[string]interface{}{
		"Team": sub.Team,
		"Name": ch.Name,
	})
	if _, err := m.bot.SendMessage(ctx, tu.Message(tu.ID(m.challengeChatID), text)); err != nil {
		log.Printf("[Review] Failed to announce surprise claim: %v", err)
	}
}
