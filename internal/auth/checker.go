package auth

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/mymmrac/telego"

	"codecomp-bot/pkg/telegoapi"
)

// AdminCheckerInterface defines the admin gate used by handlers and the
// review manager. Review actions are only accepted from admins of the
// review chat.
type AdminCheckerInterface interface {
	IsAdmin(ctx context.Context, userID int64) (bool, error)
}

// AdminChecker checks user admin status against the review chat.
type AdminChecker struct {
	bot          telegoapi.BotAPI
	reviewChatID int64
}

// NewAdminChecker creates a new AdminChecker.
// It requires a non-nil bot instance and a non-zero review chat ID.
func NewAdminChecker(bot telegoapi.BotAPI, reviewChatID int64) (*AdminChecker, error) {
	if bot == nil {
		return nil, fmt.Errorf("bot instance cannot be nil")
	}
	if reviewChatID == 0 {
		return nil, fmt.Errorf("review chat ID cannot be zero")
	}
	return &AdminChecker{
		bot:          bot,
		reviewChatID: reviewChatID,
	}, nil
}

// IsAdmin checks if a user is an administrator or creator of the review
// chat.
func (ac *AdminChecker) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	member, err := ac.bot.GetChatMember(ctx, &telego.GetChatMemberParams{
		ChatID: telego.ChatID{ID: ac.reviewChatID},
		UserID: userID,
	})
	if err != nil {
		// A user not found in the chat is simply not an admin.
		// API errors (network, permissions) should be returned.
		if strings.Contains(strings.ToLower(err.Error()), "user not found") {
			return false, nil
		}
		log.Printf("[AdminCheck User:%d Chat:%d] Error checking chat member: %v. Assuming non-admin.", userID, ac.reviewChatID, err)
		return false, fmt.Errorf("failed to get chat member info: %w", err)
	}

	status := member.MemberStatus()
	return status == telego.MemberStatusCreator || status == telego.MemberStatusAdministrator, nil
}
