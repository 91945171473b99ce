package handlers

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"codecomp-bot/internal/database"
	"codecomp-bot/internal/database/models"
	"codecomp-bot/internal/locales"
)

func TestMain(m *testing.M) {
	locales.Init(locales.DefaultLanguage)
	os.Exit(m.Run())
}

const (
	testChallengeChat = int64(-100111)
	testReviewChat    = int64(-100222)
	testAdminID       = int64(777)
	testMemberID      = int64(5)
)

// MockBotAPI mocks the Telegram API surface used by the handlers.
type MockBotAPI struct {
	mock.Mock
	mu   sync.Mutex
	sent []telego.SendMessageParams
}

func (m *MockBotAPI) SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error) {
	args := m.Called(ctx, params)
	m.mu.Lock()
	m.sent = append(m.sent, *params)
	m.mu.Unlock()
	var msg *telego.Message
	if args.Get(0) != nil {
		msg = args.Get(0).(*telego.Message)
	}
	return msg, args.Error(1)
}

func (m *MockBotAPI) SendPhoto(ctx context.Context, params *telego.SendPhotoParams) (*telego.Message, error) {
	args := m.Called(ctx, params)
	return nil, args.Error(1)
}

func (m *MockBotAPI) SendMediaGroup(ctx context.Context, params *telego.SendMediaGroupParams) ([]telego.Message, error) {
	args := m.Called(ctx, params)
	return nil, args.Error(1)
}

func (m *MockBotAPI) EditMessageText(ctx context.Context, params *telego.EditMessageTextParams) (*telego.Message, error) {
	args := m.Called(ctx, params)
	return nil, args.Error(1)
}

func (m *MockBotAPI) SetMessageReaction(ctx context.Context, params *telego.SetMessageReactionParams) error {
	return m.Called(ctx, params).Error(0)
}

func (m *MockBotAPI) AnswerCallbackQuery(ctx context.Context, params *telego.AnswerCallbackQueryParams) error {
	return m.Called(ctx, params).Error(0)
}

func (m *MockBotAPI) SetMyCommands(ctx context.Context, params *telego.SetMyCommandsParams) error {
	return m.Called(ctx, params).Error(0)
}

func (m *MockBotAPI) GetChatMember(ctx context.Context, params *telego.GetChatMemberParams) (telego.ChatMember, error) {
	args := m.Called(ctx, params)
	var member telego.ChatMember
	if args.Get(0) != nil {
		member = args.Get(0).(telego.ChatMember)
	}
	return member, args.Error(1)
}

func (m *MockBotAPI) lastSent() *telego.SendMessageParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return nil
	}
	return &m.sent[len(m.sent)-1]
}

func (m *MockBotAPI) sentContaining(fragment string) *telego.SendMessageParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.sent {
		if strings.Contains(m.sent[i].Text, fragment) {
			return &m.sent[i]
		}
	}
	return nil
}

// stubSubmissions is an in-memory SubmissionRepository.
type stubSubmissions struct {
	mu      sync.Mutex
	subs    []models.Submission
	created int
	resets  int
	failAdd bool
}

func (r *stubSubmissions) CreateSubmission(ctx context.Context, sub *models.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAdd {
		return assert.AnError
	}
	r.subs = append(r.subs, *sub)
	r.created++
	return nil
}

func (r *stubSubmissions) GetSubmissionByID(ctx context.Context, id string) (*models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.subs {
		if r.subs[i].ID == id {
			copied := r.subs[i]
			return &copied, nil
		}
	}
	return nil, database.ErrSubmissionNotFound
}

func (r *stubSubmissions) NextPending(ctx context.Context) (*models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.subs {
		if r.subs[i].IsPending() {
			copied := r.subs[i]
			return &copied, nil
		}
	}
	return nil, database.ErrSubmissionNotFound
}

func (r *stubSubmissions) PendingCount(ctx context.Context) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for i := range r.subs {
		if r.subs[i].IsPending() {
			count++
		}
	}
	return count
}

func (r *stubSubmissions) ExistsForOrigin(ctx context.Context, origin models.MessageRef) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.subs {
		if r.subs[i].Origin == origin {
			return true
		}
	}
	return false
}

func (r *stubSubmissions) Submissions(ctx context.Context) []models.Submission {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Submission(nil), r.subs...)
}

func (r *stubSubmissions) UpdateStatus(ctx context.Context, id string, status models.SubmissionStatus, reviewedBy string, challengeKey *string, points *int) bool {
	return false
}

func (r *stubSubmissions) ResetAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = nil
	r.resets++
	return nil
}

type stubLedger struct {
	entries []models.LedgerEntry
	resets  int
}

func (l *stubLedger) AppendEntry(ctx context.Context, entry models.LedgerEntry) error {
	l.entries = append(l.entries, entry)
	return nil
}
func (l *stubLedger) Entries(ctx context.Context) []models.LedgerEntry { return l.entries }
func (l *stubLedger) Reset(ctx context.Context) error {
	l.entries = nil
	l.resets++
	return nil
}

type stubChallenges struct {
	catalog []models.Challenge
}

func (s *stubChallenges) Challenges(ctx context.Context) []models.Challenge { return s.catalog }
func (s *stubChallenges) CreateSurpriseChallenge(ctx context.Context, name string, points int) (string, error) {
	key := "SUP-001"
	s.catalog = append(s.catalog, models.Challenge{Key: key, Name: name, Points: points})
	return key, nil
}

type stubMembers struct {
	teams map[int64]string
	names map[int64]string
	all   []string
}

func (s *stubMembers) Members(ctx context.Context) []models.Member { return nil }
func (s *stubMembers) TeamOf(ctx context.Context, userID int64) (string, bool) {
	team, ok := s.teams[userID]
	return team, ok
}
func (s *stubMembers) DisplayName(ctx context.Context, userID int64) string { return s.names[userID] }
func (s *stubMembers) Teams(ctx context.Context) []string                   { return s.all }

type stubReconciler struct {
	reconcileCalls int
	lastForceNew   bool
	clearCalls     int
	fail           bool
}

func (s *stubReconciler) Reconcile(ctx context.Context, forceNew bool) (models.QueueRef, bool) {
	s.reconcileCalls++
	s.lastForceNew = forceNew
	if s.fail {
		return models.QueueRef{}, false
	}
	return models.QueueRef{ChatID: testReviewChat, MessageID: 10}, true
}

func (s *stubReconciler) ClearReference(ctx context.Context) error {
	s.clearCalls++
	return nil
}

type stubReviewManager struct {
	startCalls  int
	reasonTaken bool
}

func (s *stubReviewManager) StartReview(ctx context.Context, adminID int64, chatID int64) error {
	s.startCalls++
	return nil
}
func (s *stubReviewManager) ProcessCallback(ctx context.Context, query telego.CallbackQuery) (bool, error) {
	return false, nil
}
func (s *stubReviewManager) HandleReasonMessage(ctx context.Context, message telego.Message) (bool, error) {
	return s.reasonTaken, nil
}

// stubAdminChecker treats a fixed user ID as the only admin.
type stubAdminChecker struct{ admin int64 }

func (s *stubAdminChecker) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	return userID == s.admin, nil
}

// noopActivity satisfies both activity interfaces without persistence.
type noopActivity struct{}

func (noopActivity) LogUserAction(userID int64, action string, details interface{}) error { return nil }
func (noopActivity) UpdateUser(ctx context.Context, userID int64, username, firstName, lastName string, isAdmin bool, action string) error {
	return nil
}

type handlerSuite struct {
	bot        *MockBotAPI
	subs       *stubSubmissions
	ledger     *stubLedger
	challenges *stubChallenges
	members    *stubMembers
	reconciler *stubReconciler
	review     *stubReviewManager
	handler    *MessageHandler
}

func newHandlerSuite(t *testing.T) *handlerSuite {
	t.Helper()
	bot := new(MockBotAPI)
	bot.On("SendMessage", mock.Anything, mock.Anything).
		Return(&telego.Message{MessageID: 500}, nil).Maybe()
	bot.On("SetMessageReaction", mock.Anything, mock.Anything).Return(nil).Maybe()

	s := &handlerSuite{
		bot:    bot,
		subs:   &stubSubmissions{},
		ledger: &stubLedger{},
		challenges: &stubChallenges{catalog: []models.Challenge{
			{Key: "WEB-001", Name: "Build a site", Points: 5},
			{Key: "WEB-002", Name: "Ship a feature", Points: 5},
			{Key: "ART-001", Name: "Draw the mascot", Points: 3},
		}},
		members: &stubMembers{
			teams: map[int64]string{testMemberID: "Ducks", testAdminID: "admin"},
			names: map[int64]string{testAdminID: "Alice", testMemberID: "Bob"},
			all:   []string{"Ducks", "Geese", "admin"},
		},
		reconciler: &stubReconciler{},
		review:     &stubReviewManager{},
	}
	s.handler = NewMessageHandler(
		testChallengeChat, testReviewChat, "1.2.3",
		s.subs, s.ledger, s.challenges, s.members,
		s.reconciler, s.review, &stubAdminChecker{admin: testAdminID},
		noopActivity{}, noopActivity{},
	)
	return s
}

func commandMessage(from int64, text string) telego.Message {
	return telego.Message{
		MessageID: 77,
		From:      &telego.User{ID: from, Username: "someone"},
		Chat:      telego.Chat{ID: from},
		Text:      text,
	}
}

func TestHelpHidesAdminCommandsFromMembers(t *testing.T) {
	s := newHandlerSuite(t)
	ctx := context.Background()

	require.NoError(t, s.handler.HandleHelp(ctx, s.bot, commandMessage(testMemberID, "/help")))
	help := s.bot.lastSent()
	require.NotNil(t, help)
	assert.Contains(t, help.Text, "/leaderboard")
	assert.NotContains(t, help.Text, "/resetsemester")
	assert.NotContains(t, help.Text, "/surprise")

	require.NoError(t, s.handler.HandleHelp(ctx, s.bot, commandMessage(testAdminID, "/help")))
	help = s.bot.lastSent()
	require.NotNil(t, help)
	assert.Contains(t, help.Text, "/resetsemester")
}

func TestLeaderboardRanksTeamsWithMedals(t *testing.T) {
	s := newHandlerSuite(t)
	s.members.all = []string{"Ducks", "Geese", "Herons", "Owls", "admin"}
	s.ledger.entries = []models.LedgerEntry{
		{Team: "Geese", Delta: 7},
		{Team: "Ducks", Delta: 5},
		{Team: "Ducks", Delta: 7},
		{Team: "Herons", Delta: 3},
	}

	require.NoError(t, s.handler.HandleLeaderboard(context.Background(), s.bot, commandMessage(testMemberID, "/leaderboard")))

	board := s.bot.lastSent()
	require.NotNil(t, board)
	assert.Contains(t, board.Text, "🥇 Ducks — 12")
	assert.Contains(t, board.Text, "🥈 Geese — 7")
	assert.Contains(t, board.Text, "🥉 Herons — 3")
	assert.Contains(t, board.Text, "4. Owls — 0")
	assert.NotContains(t, board.Text, "admin")
}

func TestLeaderboardEmptyBoard(t *testing.T) {
	s := newHandlerSuite(t)
	s.members.all = nil

	require.NoError(t, s.handler.HandleLeaderboard(context.Background(), s.bot, commandMessage(testMemberID, "/leaderboard")))
	assert.NotNil(t, s.bot.sentContaining("No teams on the board"))
}

func TestChallengesLeftDefaultsToSendersTeam(t *testing.T) {
	s := newHandlerSuite(t)
	s.subs.subs = []models.Submission{
		{ID: "SUB-1", Team: "Ducks", Status: models.StatusApproved, ChallengeKey: "WEB-001"},
	}

	require.NoError(t, s.handler.HandleChallengesLeft(context.Background(), s.bot, commandMessage(testMemberID, "/challengesleft")))

	out := s.bot.lastSent()
	require.NotNil(t, out)
	assert.Contains(t, out.Text, "Challenges left for Ducks")
	assert.Contains(t, out.Text, "• 1 worth 3 points")
	assert.Contains(t, out.Text, "• 1 worth 5 points")
}

func TestChallengesLeftPointFilterListsKeys(t *testing.T) {
	s := newHandlerSuite(t)

	require.NoError(t, s.handler.HandleChallengesLeft(context.Background(), s.bot, commandMessage(testMemberID, "/challengesleft Geese 5")))

	out := s.bot.lastSent()
	require.NotNil(t, out)
	assert.Contains(t, out.Text, "worth 5 pts left for Geese")
	assert.Contains(t, out.Text, "WEB-001")
	assert.Contains(t, out.Text, "WEB-002")
	assert.NotContains(t, out.Text, "ART-001")
}

func TestChallengesLeftPointFilterCapsListAndShowsMinimum(t *testing.T) {
	s := newHandlerSuite(t)
	s.challenges.catalog = []models.Challenge{
		{Key: "WEB-001", Name: "Build a site", Points: 5, MinParticipants: 4},
		{Key: "WEB-002", Name: "Ship a feature", Points: 5},
		{Key: "WEB-003", Name: "Write a parser", Points: 5},
		{Key: "WEB-004", Name: "Host a demo", Points: 5},
		{Key: "WEB-005", Name: "Fix a bug", Points: 5},
		{Key: "WEB-006", Name: "Refactor something", Points: 5},
		{Key: "ART-001", Name: "Draw the mascot", Points: 3},
	}

	require.NoError(t, s.handler.HandleChallengesLeft(context.Background(), s.bot, commandMessage(testMemberID, "/challengesleft Geese 5")))

	out := s.bot.lastSent()
	require.NotNil(t, out)
	assert.Contains(t, out.Text, "WEB-001 — Build a site (min 4 ppl)")
	assert.Contains(t, out.Text, "WEB-002 — Ship a feature")
	assert.NotContains(t, out.Text, "Ship a feature (min")
	assert.Contains(t, out.Text, "WEB-005")
	// The listing stops at five entries.
	assert.NotContains(t, out.Text, "WEB-006")
}

func TestChallengesLeftUnknownSender(t *testing.T) {
	s := newHandlerSuite(t)

	require.NoError(t, s.handler.HandleChallengesLeft(context.Background(), s.bot, commandMessage(42, "/challengesleft")))
	assert.NotNil(t, s.bot.sentContaining("not on the team roster"))
}

func TestRandomizeUnknownTeam(t *testing.T) {
	s := newHandlerSuite(t)

	require.NoError(t, s.handler.HandleRandomize(context.Background(), s.bot, commandMessage(testMemberID, "/randomize Llamas")))

	out := s.bot.lastSent()
	require.NotNil(t, out)
	assert.Contains(t, out.Text, `"Llamas"`)
	assert.Contains(t, out.Text, "Ducks, Geese")
	assert.NotContains(t, out.Text, "admin")
}

func TestRandomizeEverythingClaimed(t *testing.T) {
	s := newHandlerSuite(t)
	s.subs.subs = []models.Submission{
		{ID: "SUB-1", Team: "Ducks", Status: models.StatusApproved, ChallengeKey: "WEB-001"},
		{ID: "SUB-2", Team: "Ducks", Status: models.StatusApproved, ChallengeKey: "WEB-002"},
		{ID: "SUB-3", Team: "Ducks", Status: models.StatusApproved, ChallengeKey: "ART-001"},
	}

	require.NoError(t, s.handler.HandleRandomize(context.Background(), s.bot, commandMessage(testMemberID, "/randomize")))
	assert.NotNil(t, s.bot.sentContaining("Nothing left to pick from"))
}

func TestSurpriseRequiresAdmin(t *testing.T) {
	s := newHandlerSuite(t)

	require.NoError(t, s.handler.HandleSurprise(context.Background(), s.bot, commandMessage(testMemberID, "/surprise 10 Scavenger hunt")))

	assert.NotNil(t, s.bot.sentContaining("only available to admins"))
	assert.Len(t, s.challenges.catalog, 3)
}

func TestSurpriseUsageOnBadArgs(t *testing.T) {
	s := newHandlerSuite(t)

	for _, text := range []string{"/surprise", "/surprise ten hunt", "/surprise 10", "/surprise -3 hunt"} {
		require.NoError(t, s.handler.HandleSurprise(context.Background(), s.bot, commandMessage(testAdminID, text)))
	}
	assert.NotNil(t, s.bot.sentContaining("Usage: /surprise"))
	assert.Len(t, s.challenges.catalog, 3)
}

func TestSurpriseCreatesAndAnnounces(t *testing.T) {
	s := newHandlerSuite(t)

	require.NoError(t, s.handler.HandleSurprise(context.Background(), s.bot, commandMessage(testAdminID, "/surprise 10 Scavenger hunt")))

	require.Len(t, s.challenges.catalog, 4)
	created := s.challenges.catalog[3]
	assert.Equal(t, "SUP-001", created.Key)
	assert.Equal(t, 10, created.Points)

	announcement := s.bot.sentContaining("Scavenger hunt")
	require.NotNil(t, announcement)
	assert.Equal(t, testChallengeChat, announcement.ChatID.ID)
	assert.Equal(t, telego.ModeMarkdownV2, announcement.ParseMode)

	assert.NotNil(t, s.bot.sentContaining("created as SUP-001"))
}

func TestQueueRepostForcesNewMessage(t *testing.T) {
	s := newHandlerSuite(t)

	require.NoError(t, s.handler.HandleQueue(context.Background(), s.bot, commandMessage(testAdminID, "/queue")))

	assert.Equal(t, 1, s.reconciler.reconcileCalls)
	assert.True(t, s.reconciler.lastForceNew)
	assert.NotNil(t, s.bot.sentContaining("reposted"))
}

func TestReviewCommandDelegates(t *testing.T) {
	s := newHandlerSuite(t)

	require.NoError(t, s.handler.HandleReview(context.Background(), s.bot, commandMessage(testAdminID, "/review")))
	assert.Equal(t, 1, s.review.startCalls)
}

func TestResetSemesterNeedsConfirm(t *testing.T) {
	s := newHandlerSuite(t)

	require.NoError(t, s.handler.HandleResetSemester(context.Background(), s.bot, commandMessage(testAdminID, "/resetsemester")))

	assert.NotNil(t, s.bot.sentContaining("Run /resetsemester confirm"))
	assert.Zero(t, s.subs.resets)
	assert.Zero(t, s.ledger.resets)
}

func TestResetSemesterConfirmWipesAndReposts(t *testing.T) {
	s := newHandlerSuite(t)
	s.subs.subs = []models.Submission{{ID: "SUB-1", Status: models.StatusPending}}
	s.ledger.entries = []models.LedgerEntry{{Team: "Ducks", Delta: 5}}

	require.NoError(t, s.handler.HandleResetSemester(context.Background(), s.bot, commandMessage(testAdminID, "/resetsemester confirm")))

	assert.Equal(t, 1, s.subs.resets)
	assert.Equal(t, 1, s.ledger.resets)
	assert.Equal(t, 1, s.reconciler.clearCalls)
	assert.Equal(t, 1, s.reconciler.reconcileCalls)
	assert.True(t, s.reconciler.lastForceNew)
	assert.NotNil(t, s.bot.sentContaining("Semester reset"))
}

func TestResetSemesterDeniedForMembers(t *testing.T) {
	s := newHandlerSuite(t)
	s.subs.subs = []models.Submission{{ID: "SUB-1", Status: models.StatusPending}}

	require.NoError(t, s.handler.HandleResetSemester(context.Background(), s.bot, commandMessage(testMemberID, "/resetsemester confirm")))

	assert.Zero(t, s.subs.resets)
	assert.NotNil(t, s.bot.sentContaining("only available to admins"))
}

func TestGetCommandHandler(t *testing.T) {
	s := newHandlerSuite(t)
	assert.NotNil(t, s.handler.GetCommandHandler("leaderboard"))
	assert.Nil(t, s.handler.GetCommandHandler("nosuchcommand"))
}
