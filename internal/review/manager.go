// Package review implements the admin review workflow: per-admin sessions
// that walk the pending queue oldest-first, with inline-keyboard controls
// for challenge selection, bonus points, and the accept/reject decision.
package review

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/getsentry/sentry-go"
	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"codecomp-bot/internal/auth"
	"codecomp-bot/internal/database"
	"codecomp-bot/internal/database/models"
	"codecomp-bot/internal/locales"
	"codecomp-bot/pkg/telegoapi"
)

// QueueReconciler updates the queue summary message after a review outcome.
type QueueReconciler interface {
	Reconcile(ctx context.Context, forceNew bool) (models.QueueRef, bool)
}

// Manager coordinates review sessions across admins.
type Manager struct {
	bot          telegoapi.BotAPI
	submissions  database.SubmissionRepository
	ledger       database.LedgerRepository
	challenges   database.ChallengeRepository
	members      database.MemberRepository
	reconciler   QueueReconciler
	adminChecker auth.AdminCheckerInterface
	actionLogger database.UserActionLogger

	// challengeChatID is where surprise-challenge claims are announced and
	// rejected submitters are notified.
	challengeChatID int64
	reviewChatID    int64

	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewManager creates a new review Manager.
func NewManager(
	bot telegoapi.BotAPI,
	submissions database.SubmissionRepository,
	ledger database.LedgerRepository,
	challenges database.ChallengeRepository,
	members database.MemberRepository,
	reconciler QueueReconciler,
	adminChecker auth.AdminCheckerInterface,
	actionLogger database.UserActionLogger,
	challengeChatID int64,
	reviewChatID int64,
) *Manager {
	return &Manager{
		bot:             bot,
		submissions:     submissions,
		ledger:          ledger,
		challenges:      challenges,
		members:         members,
		reconciler:      reconciler,
		adminChecker:    adminChecker,
		actionLogger:    actionLogger,
		challengeChatID: challengeChatID,
		reviewChatID:    reviewChatID,
		sessions:        make(map[int64]*Session),
	}
}

func (m *Manager) session(adminID int64) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[adminID]
	return s, ok
}

func (m *Manager) setSession(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.AdminID] = s
}

func (m *Manager) dropSession(adminID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, adminID)
}

// StartReview opens (or reopens) a review session for the admin in the
// given chat, showing the oldest pending submission.
func (m *Manager) StartReview(ctx context.Context, adminID int64, chatID int64) error {
	isAdmin, err := m.adminChecker.IsAdmin(ctx, adminID)
	if err != nil {
		log.Printf("[Review Admin:%d] Admin check failed: %v", adminID, err)
		sentry.CaptureException(err)
	}
	if !isAdmin {
		_, sendErr := m.bot.SendMessage(ctx, tu.Message(tu.ID(chatID), m.msg("MsgErrorRequiresAdmin", nil)))
		return sendErr
	}

	sub, err := m.submissions.NextPending(ctx)
	if err != nil {
		if errors.Is(err, database.ErrSubmissionNotFound) {
			m.dropSession(adminID)
			_, sendErr := m.bot.SendMessage(ctx, tu.Message(tu.ID(chatID), m.msg("MsgReviewQueueEmpty", nil)))
			return sendErr
		}
		return err
	}

	s := &Session{AdminID: adminID, ChatID: chatID}
	s.resetSelection(sub.ID)
	// Hold the session through the first render so a fast button press
	// cannot interleave with it.
	s.mu.Lock()
	defer s.mu.Unlock()
	m.setSession(s)
	if m.actionLogger != nil {
		_ = m.actionLogger.LogUserAction(adminID, "review_started", map[string]interface{}{"submission_id": sub.ID})
	}
	return m.renderSession(ctx, s, sub)
}

// advance moves the session to the next pending submission, or closes it
// when the queue is drained.
func (m *Manager) advance(ctx context.Context, s *Session) error {
	sub, err := m.submissions.NextPending(ctx)
	if err != nil {
		if errors.Is(err, database.ErrSubmissionNotFound) {
			m.dropSession(s.AdminID)
			_, sendErr := m.bot.SendMessage(ctx, tu.Message(tu.ID(s.ChatID), m.msg("MsgReviewQueueDrained", nil)))
			return sendErr
		}
		return err
	}
	s.resetSelection(sub.ID)
	return m.renderSession(ctx, s, sub)
}

// reviewerName resolves the display name written into the reviewed_by cell
// and the outcome notifications.
func (m *Manager) reviewerName(ctx context.Context, from *telego.User) string {
	if from == nil {
		return "unknown"
	}
	if name := m.members.DisplayName(ctx, from.ID); name != "" {
		return name
	}
	if from.Username != "" {
		return "@" + from.Username
	}
	if from.FirstName != "" {
		return from.FirstName
	}
	return "unknown"
}

// msg is shorthand for localized message lookup. Review controls always use
// the default language; they are admin-facing.
func (m *Manager) msg(id string, data map[string]interface{}) string {
	return locales.GetMessage(m.localizer(), id, data, nil)
}

func (m *Manager) localizer() *i18n.Localizer {
	return locales.NewLocalizer(locales.DefaultLanguage)
}

// answer acknowledges a callback query, optionally as an alert popup.
func (m *Manager) answer(ctx context.Context, queryID, text string, alert bool) {
	err := m.bot.AnswerCallbackQuery(ctx, &telego.AnswerCallbackQueryParams{
		CallbackQueryID: queryID,
		Text:            text,
		ShowAlert:       alert,
	})
	if err != nil {
		log.Printf("[Review] Failed to answer callback query: %v", err)
	}
}
