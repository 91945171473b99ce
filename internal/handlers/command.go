package handlers

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mymmrac/telego"

	"codecomp-bot/internal/locales"
	"codecomp-bot/internal/scoring"
	"codecomp-bot/pkg/telegoapi"
	"codecomp-bot/pkg/utils"
)

// maxChallengesListed caps the point-filtered /challengesleft listing so a
// big catalog does not flood the chat.
const maxChallengesListed = 5

// commandArgs returns the text after the command token itself.
func commandArgs(message telego.Message) string {
	_, rest, _ := strings.Cut(strings.TrimSpace(message.Text), " ")
	return strings.TrimSpace(rest)
}

// HandleStart handles the /start command.
func (h *MessageHandler) HandleStart(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	localizer := h.getLocalizer(message.From)
	h.RecordUserActivity(ctx, message.From, ActionCommandStart, h.isAdmin(ctx, message.From), map[string]interface{}{
		"chat_id": message.Chat.ID,
	})
	return h.sendSuccess(ctx, bot, message.Chat.ID, locales.GetMessage(localizer, "MsgStart", nil, nil))
}

// HandleHelp handles the /help command, listing commands available to the
// sender. Admin-only commands are shown to admins only.
func (h *MessageHandler) HandleHelp(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	localizer := h.getLocalizer(message.From)
	isAdmin := h.isAdmin(ctx, message.From)

	var sb strings.Builder
	sb.WriteString(locales.GetMessage(localizer, "MsgHelpHeader", nil, nil))
	sb.WriteString("\n")
	for _, cmd := range h.commands {
		if cmd.AdminOnly && !isAdmin {
			continue
		}
		desc := locales.GetMessage(localizer, cmd.Description, nil, nil)
		sb.WriteString(fmt.Sprintf("/%s - %s\n", cmd.Command, desc))
	}
	sb.WriteString("\n")
	sb.WriteString(locales.GetMessage(localizer, "MsgHelpSubmissionHint", nil, nil))

	h.RecordUserActivity(ctx, message.From, ActionCommandHelp, isAdmin, map[string]interface{}{
		"chat_id": message.Chat.ID,
	})
	return h.sendSuccess(ctx, bot, message.Chat.ID, sb.String())
}

// HandleVersion handles the /version command.
func (h *MessageHandler) HandleVersion(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	localizer := h.getLocalizer(message.From)
	text := locales.GetMessage(localizer, "MsgVersion", map[string]interface{}{
		"Version": h.version,
	}, nil)
	h.RecordUserActivity(ctx, message.From, ActionCommandVersion, h.isAdmin(ctx, message.From), nil)
	return h.sendSuccess(ctx, bot, message.Chat.ID, text)
}

// HandleLeaderboard handles the /leaderboard command. Standings come from
// the ledger; roster teams with no entries show at zero.
func (h *MessageHandler) HandleLeaderboard(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	localizer := h.getLocalizer(message.From)
	entries := h.ledger.Entries(ctx)
	teams := h.rosterTeams(ctx)
	standings := scoring.Standings(entries, teams)

	if len(standings) == 0 {
		return h.sendSuccess(ctx, bot, message.Chat.ID, locales.GetMessage(localizer, "MsgLeaderboardEmpty", nil, nil))
	}

	var sb strings.Builder
	sb.WriteString(locales.GetMessage(localizer, "MsgLeaderboardHeader", nil, nil))
	sb.WriteString("\n")
	medals := []string{"🥇", "🥈", "🥉"}
	for i, standing := range standings {
		rank := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			rank = medals[i]
		}
		sb.WriteString(fmt.Sprintf("%s %s — %d\n", rank, standing.Team, standing.Points))
	}

	h.RecordUserActivity(ctx, message.From, ActionCommandLeaderboard, h.isAdmin(ctx, message.From), nil)
	return h.sendSuccess(ctx, bot, message.Chat.ID, sb.String())
}

// HandleChallengesLeft handles the /challengesleft command. With no
// arguments it reports the sender's team grouped by point value; a team
// name narrows to that team, a trailing number lists the challenges worth
// exactly that many points.
func (h *MessageHandler) HandleChallengesLeft(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	localizer := h.getLocalizer(message.From)
	team, points, err := h.parseTeamAndPoints(ctx, message, commandArgs(message))
	if err != nil {
		return h.sendSuccess(ctx, bot, message.Chat.ID, err.Error())
	}

	challenges := h.challenges.Challenges(ctx)
	subs := h.submissions.Submissions(ctx)

	if points != nil {
		matching := scoring.ChallengesAt(challenges, subs, team, *points)
		if len(matching) == 0 {
			text := locales.GetMessage(localizer, "MsgChallengesLeftNoneAtPoints", map[string]interface{}{
				"Team":   team,
				"Points": *points,
			}, nil)
			return h.sendSuccess(ctx, bot, message.Chat.ID, text)
		}
		var sb strings.Builder
		sb.WriteString(locales.GetMessage(localizer, "MsgChallengesLeftAtPointsHeader", map[string]interface{}{
			"Team":   team,
			"Points": *points,
		}, nil))
		sb.WriteString("\n")
		shown := matching
		if len(shown) > maxChallengesListed {
			shown = shown[:maxChallengesListed]
		}
		for _, ch := range shown {
			sb.WriteString(fmt.Sprintf("• %s — %s", ch.Key, ch.Name))
			if ch.MinParticipants > 0 {
				sb.WriteString(fmt.Sprintf(" (min %d ppl)", ch.MinParticipants))
			}
			sb.WriteString("\n")
		}
		return h.sendSuccess(ctx, bot, message.Chat.ID, sb.String())
	}

	remaining := scoring.RemainingByPoints(challenges, subs, team)
	if len(remaining) == 0 {
		text := locales.GetMessage(localizer, "MsgChallengesLeftAllDone", map[string]interface{}{
			"Team": team,
		}, nil)
		return h.sendSuccess(ctx, bot, message.Chat.ID, text)
	}

	values := make([]int, 0, len(remaining))
	for v := range remaining {
		values = append(values, v)
	}
	sort.Ints(values)

	var sb strings.Builder
	sb.WriteString(locales.GetMessage(localizer, "MsgChallengesLeftHeader", map[string]interface{}{
		"Team": team,
	}, nil))
	sb.WriteString("\n")
	for _, v := range values {
		sb.WriteString(fmt.Sprintf("• %d worth %d points\n", remaining[v], v))
	}
	h.RecordUserActivity(ctx, message.From, ActionCommandChallengesLeft, h.isAdmin(ctx, message.From), map[string]interface{}{
		"team": team,
	})
	return h.sendSuccess(ctx, bot, message.Chat.ID, sb.String())
}

// HandleRandomize handles the /randomize command, picking a random
// unclaimed challenge. "all" samples the global unclaimed set; a team name
// samples that team's.
func (h *MessageHandler) HandleRandomize(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	localizer := h.getLocalizer(message.From)
	arg := commandArgs(message)

	team := ""
	switch {
	case strings.EqualFold(arg, "all") || arg == "":
		if arg == "" && message.From != nil {
			if own, ok := h.members.TeamOf(ctx, message.From.ID); ok {
				team = own
			}
		}
	default:
		resolved, ok := h.resolveTeam(ctx, arg)
		if !ok {
			text := locales.GetMessage(localizer, "MsgUnknownTeam", map[string]interface{}{
				"Team":  arg,
				"Teams": strings.Join(h.rosterTeams(ctx), ", "),
			}, nil)
			return h.sendSuccess(ctx, bot, message.Chat.ID, text)
		}
		team = resolved
	}

	challenges := h.challenges.Challenges(ctx)
	subs := h.submissions.Submissions(ctx)
	ch := scoring.RandomUnclaimed(challenges, subs, team)
	if ch == nil {
		return h.sendSuccess(ctx, bot, message.Chat.ID, locales.GetMessage(localizer, "MsgRandomizeNone", nil, nil))
	}

	text := locales.GetMessage(localizer, "MsgRandomizeResult", map[string]interface{}{
		"Key":    ch.Key,
		"Name":   ch.Name,
		"Points": ch.Points,
	}, nil)
	h.RecordUserActivity(ctx, message.From, ActionCommandRandomize, h.isAdmin(ctx, message.From), nil)
	return h.sendSuccess(ctx, bot, message.Chat.ID, text)
}

// HandleSurprise handles the /surprise command: "/surprise <points> <name>"
// creates a surprise catalog entry and announces it in the challenge chat.
func (h *MessageHandler) HandleSurprise(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	if !h.requireAdmin(ctx, bot, message) {
		return nil
	}
	localizer := h.getLocalizer(message.From)

	args := commandArgs(message)
	pointsStr, name, _ := strings.Cut(args, " ")
	points, err := strconv.Atoi(pointsStr)
	name = strings.TrimSpace(name)
	if err != nil || points <= 0 || name == "" {
		return h.sendSuccess(ctx, bot, message.Chat.ID, locales.GetMessage(localizer, "MsgSurpriseUsage", nil, nil))
	}

	key, err := h.challenges.CreateSurpriseChallenge(ctx, name, points)
	if err != nil {
		return h.sendError(ctx, bot, message.Chat.ID, err)
	}

	announcement := locales.GetMessage(localizer, "MsgSurpriseAnnouncement", map[string]interface{}{
		"Name":   utils.EscapeMarkdownV2(name),
		"Points": points,
	}, nil)
	if err := h.sendMarkdown(ctx, bot, h.challengeChatID, announcement); err != nil {
		return h.sendError(ctx, bot, message.Chat.ID, err)
	}

	confirmation := locales.GetMessage(localizer, "MsgSurpriseCreated", map[string]interface{}{
		"Key":    key,
		"Points": points,
	}, nil)
	h.RecordUserActivity(ctx, message.From, ActionCommandSurprise, true, map[string]interface{}{
		"key":    key,
		"points": points,
	})
	return h.sendSuccess(ctx, bot, message.Chat.ID, confirmation)
}

// HandleQueue handles the /queue command, reposting the queue summary as a
// fresh message at the bottom of the review chat.
func (h *MessageHandler) HandleQueue(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	if !h.requireAdmin(ctx, bot, message) {
		return nil
	}
	localizer := h.getLocalizer(message.From)

	if _, ok := h.reconciler.Reconcile(ctx, true); !ok {
		return h.sendSuccess(ctx, bot, message.Chat.ID, locales.GetMessage(localizer, "MsgQueueRepostFailed", nil, nil))
	}
	h.RecordUserActivity(ctx, message.From, ActionCommandQueue, true, nil)
	return h.sendSuccess(ctx, bot, message.Chat.ID, locales.GetMessage(localizer, "MsgQueueReposted", nil, nil))
}

// HandleReview handles the /review command. The review manager does its own
// admin gating.
func (h *MessageHandler) HandleReview(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	if message.From == nil {
		return nil
	}
	h.RecordUserActivity(ctx, message.From, ActionCommandReview, h.isAdmin(ctx, message.From), nil)
	return h.reviewManager.StartReview(ctx, message.From.ID, message.Chat.ID)
}

// HandleResetSemester handles the /resetsemester command. It wipes the
// submissions and ledger worksheets and reposts an empty queue summary. A
// literal "confirm" argument is required; the catalog and roster survive.
func (h *MessageHandler) HandleResetSemester(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	if !h.requireAdmin(ctx, bot, message) {
		return nil
	}
	localizer := h.getLocalizer(message.From)

	if !strings.EqualFold(commandArgs(message), "confirm") {
		return h.sendSuccess(ctx, bot, message.Chat.ID, locales.GetMessage(localizer, "MsgResetConfirmPrompt", nil, nil))
	}

	if err := h.submissions.ResetAll(ctx); err != nil {
		return h.sendError(ctx, bot, message.Chat.ID, err)
	}
	if err := h.ledger.Reset(ctx); err != nil {
		return h.sendError(ctx, bot, message.Chat.ID, err)
	}
	if err := h.reconciler.ClearReference(ctx); err != nil {
		return h.sendError(ctx, bot, message.Chat.ID, err)
	}
	h.reconciler.Reconcile(ctx, true)

	h.RecordUserActivity(ctx, message.From, ActionCommandReset, true, nil)
	return h.sendSuccess(ctx, bot, message.Chat.ID, locales.GetMessage(localizer, "MsgResetDone", nil, nil))
}

// SetupCommands registers the command list with Telegram.
func (h *MessageHandler) SetupCommands(ctx context.Context, bot telegoapi.BotAPI) error {
	localizer := locales.NewLocalizer(locales.DefaultLanguage)
	commands := make([]telego.BotCommand, 0, len(h.commands))
	for _, cmd := range h.commands {
		commands = append(commands, telego.BotCommand{
			Command:     cmd.Command,
			Description: locales.GetMessage(localizer, cmd.Description, nil, nil),
		})
	}
	return bot.SetMyCommands(ctx, &telego.SetMyCommandsParams{Commands: commands})
}

// rosterTeams returns the roster teams, leaving out the internal admin
// pseudo-team used for proxy submissions.
func (h *MessageHandler) rosterTeams(ctx context.Context) []string {
	var teams []string
	for _, team := range h.members.Teams(ctx) {
		if strings.EqualFold(team, "admin") {
			continue
		}
		teams = append(teams, team)
	}
	return teams
}

// resolveTeam matches a user-typed team name against the roster,
// case-insensitively. Returns the canonical spelling.
func (h *MessageHandler) resolveTeam(ctx context.Context, name string) (string, bool) {
	for _, team := range h.members.Teams(ctx) {
		if strings.EqualFold(team, name) {
			return team, true
		}
	}
	return "", false
}

// parseTeamAndPoints splits "/challengesleft [team words] [points]" into a
// resolved team and optional point filter. Errors carry the localized
// message to send back.
func (h *MessageHandler) parseTeamAndPoints(ctx context.Context, message telego.Message, args string) (string, *int, error) {
	localizer := h.getLocalizer(message.From)
	tokens := strings.Fields(args)

	var points *int
	if len(tokens) > 0 {
		if v, err := strconv.Atoi(tokens[len(tokens)-1]); err == nil {
			points = &v
			tokens = tokens[:len(tokens)-1]
		}
	}

	if len(tokens) == 0 {
		if message.From != nil {
			if team, ok := h.members.TeamOf(ctx, message.From.ID); ok {
				return team, points, nil
			}
		}
		return "", nil, fmt.Errorf("%s", locales.GetMessage(localizer, "MsgNotOnRoster", nil, nil))
	}

	typed := strings.Join(tokens, " ")
	team, ok := h.resolveTeam(ctx, typed)
	if !ok {
		return "", nil, fmt.Errorf("%s", locales.GetMessage(localizer, "MsgUnknownTeam", map[string]interface{}{
			"Team":  typed,
			"Teams": strings.Join(h.rosterTeams(ctx), ", "),
		}, nil))
	}
	return team, points, nil
}
