package review

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/mymmrac/telego"

	"codecomp-bot/internal/database/models"
	"codecomp-bot/internal/scoring"
)

const (
	callbackPrefix = "review"

	// OpenReviewCallback is the callback data carried by the queue summary
	// message's review button.
	OpenReviewCallback = "review:open"

	// maxBonusPoints bounds the extra points an admin can add on accept.
	maxBonusPoints = 8
)

func callbackData(submissionID, action, arg string) string {
	if arg == "" {
		return fmt.Sprintf("%s:%s:%s", callbackPrefix, submissionID, action)
	}
	return fmt.Sprintf("%s:%s:%s:%s", callbackPrefix, submissionID, action, arg)
}

// ProcessCallback routes review callback queries. It returns true when the
// callback belonged to the review flow, whether or not it succeeded.
func (m *Manager) ProcessCallback(ctx context.Context, query telego.CallbackQuery) (bool, error) {
	if !strings.HasPrefix(query.Data, callbackPrefix+":") {
		return false, nil
	}

	// The summary message button opens a session for whoever pressed it.
	if query.Data == OpenReviewCallback {
		m.answer(ctx, query.ID, "", false)
		chatID := query.From.ID
		if query.Message != nil {
			chatID = query.Message.GetChat().ID
		}
		return true, m.StartReview(ctx, query.From.ID, chatID)
	}

	parts := strings.Split(query.Data, ":")
	if len(parts) < 3 {
		log.Printf("[Review] Malformed callback data: %q", query.Data)
		m.answer(ctx, query.ID, m.msg("MsgErrorGeneral", nil), false)
		return true, nil
	}
	submissionID, action := parts[1], parts[2]
	arg := ""
	if len(parts) > 3 {
		arg = parts[3]
	}

	isAdmin, err := m.adminChecker.IsAdmin(ctx, query.From.ID)
	if err != nil {
		log.Printf("[Review Admin:%d] Admin check failed: %v", query.From.ID, err)
		sentry.CaptureException(err)
	}
	if !isAdmin {
		m.answer(ctx, query.ID, m.msg("MsgErrorRequiresAdmin", nil), true)
		return true, nil
	}

	s, ok := m.session(query.From.ID)
	if !ok {
		m.answer(ctx, query.ID, m.msg("MsgReviewSessionExpired", nil), true)
		return true, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	// Re-check under the lock: a concurrent duplicate update may have
	// finalized this submission and moved the session on, or closed it.
	if cur, live := m.session(query.From.ID); !live || cur != s || s.SubmissionID != submissionID {
		// Stale keyboard from an earlier session, or the queue moved on.
		m.answer(ctx, query.ID, m.msg("MsgReviewSessionExpired", nil), true)
		return true, nil
	}

	switch action {
	case "prefix":
		s.Prefix = arg
		s.ChallengeKey = ""
		s.BasePoints = 0
		m.answer(ctx, query.ID, "", false)
		return true, m.renderSession(ctx, s, m.mustSubmission(ctx, s))
	case "pick":
		catalog := m.challenges.Challenges(ctx)
		ch := scoring.FindChallenge(catalog, arg)
		if ch == nil {
			m.answer(ctx, query.ID, m.msg("MsgReviewUnknownChallenge", nil), true)
			return true, nil
		}
		s.ChallengeKey = ch.Key
		s.BasePoints = ch.Points
		m.answer(ctx, query.ID, "", false)
		return true, m.renderSession(ctx, s, m.mustSubmission(ctx, s))
	case "bonus":
		bonus, err := strconv.Atoi(arg)
		if err != nil || bonus < 0 || bonus > maxBonusPoints {
			m.answer(ctx, query.ID, m.msg("MsgErrorGeneral", nil), false)
			return true, nil
		}
		s.Bonus = bonus
		m.answer(ctx, query.ID, "", false)
		return true, m.renderSession(ctx, s, m.mustSubmission(ctx, s))
	case "back":
		if s.ChallengeKey != "" {
			s.ChallengeKey = ""
			s.BasePoints = 0
			s.Bonus = 0
		} else {
			s.Prefix = ""
		}
		m.answer(ctx, query.ID, "", false)
		return true, m.renderSession(ctx, s, m.mustSubmission(ctx, s))
	case "accept":
		return true, m.handleAccept(ctx, query, s)
	case "reject":
		return true, m.handleReject(ctx, query, s)
	default:
		log.Printf("[Review] Unknown callback action %q", action)
		m.answer(ctx, query.ID, m.msg("MsgErrorGeneral", nil), false)
		return true, nil
	}
}

// mustSubmission re-reads the session's submission for rendering. When the
// row vanished mid-session a placeholder keeps the controls usable long
// enough for accept/reject to notice and advance.
func (m *Manager) mustSubmission(ctx context.Context, s *Session) *models.Submission {
	sub, err := m.submissions.GetSubmissionByID(ctx, s.SubmissionID)
	if err != nil {
		log.Printf("[Review Admin:%d] Submission %s unavailable: %v", s.AdminID, s.SubmissionID, err)
		return &models.Submission{ID: s.SubmissionID, Status: models.StatusPending}
	}
	return sub
}
